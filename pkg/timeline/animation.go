// Package timeline drives time-parameterized property animations.
//
// An animation targets a float64 field directly through a pointer handle
// (translation X, rotation angle, opacity, ...). Animations are grouped in a
// Storyboard, which the owner advances with the host loop's delta time and
// which fires its Completed callback once every child has finished.
package timeline

import (
	"time"

	"github.com/decker502/snowfall/pkg/utils"
)

// DoubleAnimation animates *Target towards To.
//
// The start value is captured from *Target when the animation begins (at
// BeginTime into the storyboard), so chained writers see the current value
// rather than a value snapshotted at construction.
type DoubleAnimation struct {
	Target    *float64
	To        float64
	BeginTime time.Duration // 相对 Storyboard 开始的延迟
	Duration  time.Duration
	Easing    utils.EasingFunc // nil 表示线性

	from    float64
	started bool
	done    bool
}

// NewDoubleAnimation 创建从当前值到 to 的动画
func NewDoubleAnimation(target *float64, to float64, duration time.Duration) *DoubleAnimation {
	return &DoubleAnimation{
		Target:   target,
		To:       to,
		Duration: duration,
	}
}

// WithBeginTime 设置开始延迟；负值按 0 处理
func (a *DoubleAnimation) WithBeginTime(begin time.Duration) *DoubleAnimation {
	if begin < 0 {
		begin = 0
	}
	a.BeginTime = begin
	return a
}

// EndTime 返回动画结束时刻（相对 Storyboard 开始）
func (a *DoubleAnimation) EndTime() time.Duration {
	return a.BeginTime + a.Duration
}

// From returns the captured start value; only meaningful once started.
func (a *DoubleAnimation) From() float64 {
	return a.from
}

// Started reports whether the storyboard clock has reached BeginTime.
func (a *DoubleAnimation) Started() bool {
	return a.started
}

// Done reports whether the animation has written its final value.
func (a *DoubleAnimation) Done() bool {
	return a.done
}

func (a *DoubleAnimation) reset() {
	a.started = false
	a.done = false
	a.from = 0
}

// apply writes the value for the storyboard-relative time elapsed.
func (a *DoubleAnimation) apply(elapsed time.Duration) {
	if a.done || a.Target == nil || elapsed < a.BeginTime {
		return
	}
	if !a.started {
		a.from = *a.Target
		a.started = true
	}

	progress := 1.0
	if a.Duration > 0 {
		progress = utils.Clamp01(float64(elapsed-a.BeginTime) / float64(a.Duration))
	}
	if progress >= 1 {
		*a.Target = a.To
		a.done = true
		return
	}

	ease := a.Easing
	if ease == nil {
		ease = utils.EaseLinear
	}
	*a.Target = utils.Lerp(a.from, a.To, ease(progress))
}
