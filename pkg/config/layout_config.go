package config

import "time"

// 布局与动画常量
// 坐标使用逻辑像素（ebiten Layout 返回的逻辑屏幕尺寸），原点在左上角，Y 轴向下。

// Window defaults (窗口默认值)
const (
	// ScreenWidth 是默认逻辑屏幕宽度
	ScreenWidth = 800

	// ScreenHeight 是默认逻辑屏幕高度
	ScreenHeight = 600

	// TicksPerSecond matches ebiten's default TPS; Update receives 1/TPS each tick.
	TicksPerSecond = 60
)

// Snowflake spawn ranges (雪花生成参数范围)
// 所有区间为半开区间 [Min, Max)
const (
	// OffscreenMargin 是雪花起始/结束位置超出表面的距离（乘以 ScaleFactor）
	// 起点 Y = -(OffscreenMargin * ScaleFactor)，终点 Y = 高度 + OffscreenMargin * ScaleFactor
	OffscreenMargin = 50.0

	ScaleMin = 0.5
	ScaleMax = 1.1

	OpacityMin = 0.5
	OpacityMax = 1.0

	// RotationStartMax 初始旋转角度上限（度）
	RotationStartMax = 270

	// RotationExtraMin/Max 生命周期内额外旋转的角度范围（度）
	RotationExtraMin = 90
	RotationExtraMax = 360

	// DriftMin/Max 水平漂移范围（像素）
	DriftMin = -100
	DriftMax = 100

	// LifetimeSecondsMin/Max 下落时长的整数秒范围（含两端），再除以 ParticleSpeed
	LifetimeSecondsMin = 8
	LifetimeSecondsMax = 9
)

// SnowflakeSpriteSize 雪花贴图边长（逻辑像素，缩放前）
// 雪花的 (X, Y) 是贴图左上角，旋转与缩放以贴图中心为原点。
const SnowflakeSpriteSize = 48

// FadeWindow 是淡出动画的固定时长，淡出在生命周期结束前 FadeWindow 开始
const FadeWindow = 2 * time.Second

// MinEmissionInterval bounds the scheduler interval from below; emission rates
// above 1000/s would otherwise truncate to a zero interval.
const MinEmissionInterval = time.Millisecond
