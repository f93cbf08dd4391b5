package systems

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/snowfall/pkg/components"
	"github.com/decker502/snowfall/pkg/config"
)

// SpawnFunc is invoked once per scheduler tick.
type SpawnFunc func() error

// EmissionScheduler fires a spawn callback at a fixed cadence.
//
// Time only moves when the host loop calls Update with its delta time, so
// the scheduler runs on whatever goroutine drives the loop and needs no
// locking. The interval is captured by Start; changing the configured
// emission rate afterwards has no effect until the next Start.
//
// A failing spawn is logged and skipped. It never stops later ticks.
type EmissionScheduler struct {
	timer   components.TimerComponent
	running bool
	spawn   SpawnFunc

	// 连续失败计数，用于避免每个 tick 刷屏
	consecutiveFailures int
	totalFailures       int
}

// NewEmissionScheduler 创建发射调度器，初始状态为 Stopped
func NewEmissionScheduler(spawn SpawnFunc) *EmissionScheduler {
	return &EmissionScheduler{
		timer: components.TimerComponent{Name: "snowfall_emission"},
		spawn: spawn,
	}
}

// EmissionInterval converts a per-second rate into the tick interval
// (whole milliseconds, truncated).
func EmissionInterval(emissionRate int) (time.Duration, error) {
	if emissionRate <= 0 {
		return 0, fmt.Errorf("emission rate %d must be positive: %w", emissionRate, config.ErrInvalidConfiguration)
	}
	interval := time.Duration(1000/emissionRate) * time.Millisecond
	if interval < config.MinEmissionInterval {
		interval = config.MinEmissionInterval
	}
	return interval, nil
}

// Start begins ticking every 1000/emissionRate milliseconds. A non-positive
// rate returns ErrInvalidConfiguration and leaves the scheduler stopped.
// Starting a running scheduler is a no-op.
func (s *EmissionScheduler) Start(emissionRate int) error {
	if s.running {
		return nil
	}
	interval, err := EmissionInterval(emissionRate)
	if err != nil {
		return err
	}

	s.timer.Interval = interval
	s.timer.CurrentTime = 0
	s.timer.Elapsed = 0
	s.timer.Fired = 0
	s.consecutiveFailures = 0
	s.running = true

	log.Printf("[EmissionScheduler] started: rate=%d/s interval=%v", emissionRate, interval)
	return nil
}

// Stop halts ticking. Safe to call repeatedly or before Start.
func (s *EmissionScheduler) Stop() {
	if !s.running {
		return
	}
	s.running = false
	log.Printf("[EmissionScheduler] stopped after %d ticks", s.timer.Fired)
}

// IsRunning 是否处于 Running 状态
func (s *EmissionScheduler) IsRunning() bool {
	return s.running
}

// Interval 返回 Start 时确定的间隔
func (s *EmissionScheduler) Interval() time.Duration {
	return s.timer.Interval
}

// Now returns the scheduler clock since Start. Inside a spawn callback it is
// the logical time of the tick being delivered.
func (s *EmissionScheduler) Now() time.Duration {
	return s.timer.Elapsed
}

// Ticks 返回自 Start 以来触发的次数
func (s *EmissionScheduler) Ticks() int {
	return s.timer.Fired
}

// Failures 返回失败的 spawn 总次数
func (s *EmissionScheduler) Failures() int {
	return s.totalFailures
}

// Update advances the clock by dt and delivers every tick that falls inside
// it, in order. It returns the number of ticks fired.
func (s *EmissionScheduler) Update(dt time.Duration) int {
	if !s.running || dt <= 0 {
		return 0
	}

	target := s.timer.Elapsed + dt
	fired := 0
	for s.running {
		next := s.timer.Elapsed - s.timer.CurrentTime + s.timer.Interval
		if next > target {
			break
		}
		s.timer.Elapsed = next
		s.timer.CurrentTime = 0
		s.timer.Fired++
		fired++
		s.fire()
	}

	if s.running {
		s.timer.CurrentTime += target - s.timer.Elapsed
		s.timer.Elapsed = target
	}
	return fired
}

// fire runs one spawn, isolating errors and panics from the cadence.
func (s *EmissionScheduler) fire() {
	if s.spawn == nil {
		return
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("spawn panicked: %v", r)
			}
		}()
		return s.spawn()
	}()

	if err != nil {
		s.totalFailures++
		s.consecutiveFailures++
		if s.consecutiveFailures == 1 {
			log.Printf("[EmissionScheduler] spawn failed at %v (tick %d): %v", s.timer.Elapsed, s.timer.Fired, err)
		}
		return
	}

	if s.consecutiveFailures > 0 {
		log.Printf("[EmissionScheduler] spawn recovered after %d failed ticks", s.consecutiveFailures)
		s.consecutiveFailures = 0
	}
}
