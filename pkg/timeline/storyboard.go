package timeline

import "time"

// State 时间线状态
type State int

const (
	// Idle 尚未开始
	Idle State = iota
	// Running 正在播放
	Running
	// Completed 已完成，Completed 回调已触发
	Completed
)

// Storyboard groups animations that share one clock.
//
// The storyboard finishes when its clock passes the latest EndTime of its
// children. At that point every child has been written to its final value
// and Completed is invoked exactly once.
type Storyboard struct {
	children []*DoubleAnimation
	elapsed  time.Duration
	state    State

	// Completed 在所有动画结束后调用一次
	Completed func()
}

// NewStoryboard 创建时间线
func NewStoryboard(children ...*DoubleAnimation) *Storyboard {
	sb := &Storyboard{}
	sb.Add(children...)
	return sb
}

// Add appends animations; ignored once the storyboard has begun.
func (sb *Storyboard) Add(children ...*DoubleAnimation) {
	if sb.state != Idle {
		return
	}
	for _, c := range children {
		if c != nil {
			sb.children = append(sb.children, c)
		}
	}
}

// Children 返回子动画（只读）
func (sb *Storyboard) Children() []*DoubleAnimation {
	return sb.children
}

// Duration 返回所有子动画中最晚的结束时刻
func (sb *Storyboard) Duration() time.Duration {
	var end time.Duration
	for _, c := range sb.children {
		if e := c.EndTime(); e > end {
			end = e
		}
	}
	return end
}

// Elapsed 返回时间线已播放时长
func (sb *Storyboard) Elapsed() time.Duration {
	return sb.elapsed
}

// State 返回当前状态
func (sb *Storyboard) State() State {
	return sb.state
}

// IsRunning 是否正在播放
func (sb *Storyboard) IsRunning() bool {
	return sb.state == Running
}

// IsCompleted 是否已完成
func (sb *Storyboard) IsCompleted() bool {
	return sb.state == Completed
}

// Begin starts the clock at zero. Animations with BeginTime 0 capture their
// start values immediately. Calling Begin on a running or completed
// storyboard does nothing.
func (sb *Storyboard) Begin() {
	if sb.state != Idle {
		return
	}
	for _, c := range sb.children {
		c.reset()
	}
	sb.elapsed = 0
	sb.state = Running
	sb.applyAll()

	// 空时间线或全部时长为 0 时立即完成
	if sb.Duration() == 0 {
		sb.complete()
	}
}

// Advance moves the clock forward by dt and reports whether this call
// completed the storyboard.
func (sb *Storyboard) Advance(dt time.Duration) bool {
	if sb.state != Running || dt < 0 {
		return false
	}
	sb.elapsed += dt
	total := sb.Duration()
	if sb.elapsed >= total {
		sb.elapsed = total
	}
	sb.applyAll()

	if sb.elapsed >= total {
		sb.complete()
		return true
	}
	return false
}

func (sb *Storyboard) applyAll() {
	for _, c := range sb.children {
		c.apply(sb.elapsed)
	}
}

func (sb *Storyboard) complete() {
	if sb.state == Completed {
		return
	}
	sb.state = Completed
	if sb.Completed != nil {
		sb.Completed()
	}
}
