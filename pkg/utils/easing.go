package utils

// Easing Functions (缓动函数)
//
// 缓动函数接受进度 t ∈ [0, 1]，返回缓动后的进度 ∈ [0, 1]。
// 时间线默认使用线性缓动，与属性动画的匀速插值一致。

// EasingFunc maps linear progress to eased progress.
type EasingFunc func(t float64) float64

// EaseLinear 线性缓动（无缓动）
func EaseLinear(t float64) float64 {
	return t
}

// Clamp01 将进度限制在 [0, 1] 范围内
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
