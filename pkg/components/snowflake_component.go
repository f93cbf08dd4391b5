package components

import (
	"image/color"
	"time"

	"github.com/decker502/snowfall/pkg/timeline"
)

// SnowflakeVariant identifies one of the fixed visual shapes of a snowflake.
type SnowflakeVariant int

const (
	// VariantStar 六角星形雪花
	VariantStar SnowflakeVariant = iota
	// VariantCrystal 带分叉的冰晶
	VariantCrystal

	// SnowflakeVariantCount 变体总数
	SnowflakeVariantCount = 2
)

func (v SnowflakeVariant) String() string {
	switch v {
	case VariantStar:
		return "Star"
	case VariantCrystal:
		return "Crystal"
	default:
		return "Unknown"
	}
}

// Valid 是否为已知变体
func (v SnowflakeVariant) Valid() bool {
	return v >= 0 && v < SnowflakeVariantCount
}

// SnowflakeComponent is one live snowflake.
//
// X, Y, Rotation and Opacity are written by the snowflake's storyboard; the
// animations hold pointers to these fields. Scale and Lifetime are fixed at
// spawn. The transform is applied as rotate, then scale, then translate, all
// around the sprite's center.
//
// This is a pure data component following ECS principles.
type SnowflakeComponent struct {
	Variant SnowflakeVariant
	Tint    color.Color

	// Render transform (渲染变换)
	X        float64 // 平移 X（逻辑像素）
	Y        float64 // 平移 Y
	Rotation float64 // 旋转角度（度）
	Scale    float64 // 统一缩放
	Opacity  float64 // 透明度（可大于 1，渲染时截断）

	// Lifecycle (生命周期)
	Lifetime  time.Duration // 下落总时长
	FadeStart time.Duration // 淡出开始偏移，仅 LeaveAnimation=Fade 时有效
	Fading    bool          // 是否带淡出动画
	Age       time.Duration // 移出存活集合时的实际存在时间

	// Spawn draws, kept for telemetry (生成时的随机值)
	StartX        float64
	StartY        float64
	StartRotation float64
	Drift         float64
	RotationExtra float64
	TargetY       float64

	Storyboard *timeline.Storyboard
}

// EndX 水平终点
func (s *SnowflakeComponent) EndX() float64 {
	return s.StartX + s.Drift
}

// EndRotation 最终旋转角度
func (s *SnowflakeComponent) EndRotation() float64 {
	return s.StartRotation + s.RotationExtra
}
