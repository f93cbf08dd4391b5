package components

import "time"

// TimerComponent 通用重复计时器
// Used by the emission scheduler: CurrentTime accumulates host loop delta
// time and fires once per Interval, carrying the remainder over so the
// cadence does not drift with frame timing.
type TimerComponent struct {
	Name        string        // 计时器名称，如 "snowfall_emission"
	Interval    time.Duration // 触发间隔
	CurrentTime time.Duration // 距上次触发已累计的时间
	Elapsed     time.Duration // 计时器启动以来的总时间
	Fired       int           // 已触发次数
}
