package systems

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/snowfall/pkg/components"
	"github.com/decker502/snowfall/pkg/config"
	"github.com/decker502/snowfall/pkg/ecs"
	"github.com/decker502/snowfall/pkg/timeline"
)

// Surface is the area snowflakes fall across, in logical pixels.
type Surface interface {
	Size() (width, height float64)
}

// ParticleFactory creates the renderable part of a snowflake. A nil variant
// asks the factory to pick one uniformly at random.
type ParticleFactory interface {
	Create(variant *components.SnowflakeVariant) (*components.SnowflakeComponent, error)
}

// SnowflakeObserver is notified when snowflakes enter and leave the live set.
type SnowflakeObserver interface {
	SnowflakeSpawned(id ecs.EntityID, flake *components.SnowflakeComponent, at time.Duration)
	SnowflakeRemoved(id ecs.EntityID, flake *components.SnowflakeComponent, at time.Duration)
}

// SnowflakeSystem spawns snowflakes and runs their timelines.
//
// Spawn draws the randomized initial state, registers the snowflake in the
// EntityManager (the live set) and begins its storyboard. Update advances
// every live storyboard; a storyboard that completes destroys its snowflake,
// and the entity is flushed from the live set before Update returns.
//
// Configuration is read through the pointer on every spawn, so the host may
// change it between ticks.
type SnowflakeSystem struct {
	EntityManager *ecs.EntityManager

	config   *config.SnowfallConfig
	surface  Surface
	factory  ParticleFactory
	random    Randomizer
	observer  SnowflakeObserver
	lifetimes *LifetimeSystem

	clock   time.Duration
	spawned int
	removed int
	pending map[ecs.EntityID]*components.SnowflakeComponent // 已完成、等待移出的雪花
}

// NewSnowflakeSystem creates a SnowflakeSystem. A nil random uses a
// time-seeded UniformRandomizer.
func NewSnowflakeSystem(em *ecs.EntityManager, cfg *config.SnowfallConfig, surface Surface, factory ParticleFactory, random Randomizer) *SnowflakeSystem {
	if random == nil {
		random = NewUniformRandomizer(nil)
	}
	return &SnowflakeSystem{
		EntityManager: em,
		config:        cfg,
		surface:       surface,
		factory:       factory,
		random:        random,
		pending:       make(map[ecs.EntityID]*components.SnowflakeComponent),
	}
}

// SetObserver 设置生成/移除观察者（可为 nil）
func (s *SnowflakeSystem) SetObserver(o SnowflakeObserver) {
	s.observer = o
}

// SetLifetimes 设置生命周期系统；移除时记录雪花实际存在的时间（可为 nil）
func (s *SnowflakeSystem) SetLifetimes(l *LifetimeSystem) {
	s.lifetimes = l
}

// Clock 返回系统时钟（所有 Update 的 dt 之和）
func (s *SnowflakeSystem) Clock() time.Duration {
	return s.clock
}

// Spawn creates one snowflake with randomized state and starts its timeline.
//
// Invalid configuration or surface size returns ErrInvalidConfiguration and
// spawns nothing. Factory errors are returned unchanged in meaning (wrapped).
func (s *SnowflakeSystem) Spawn() (ecs.EntityID, error) {
	return s.SpawnAt(s.clock)
}

// SpawnAt is Spawn with an explicit spawn time reported to the observer, for
// ticks that fall between frames.
func (s *SnowflakeSystem) SpawnAt(at time.Duration) (ecs.EntityID, error) {
	if s.config == nil || s.surface == nil || s.factory == nil {
		return 0, fmt.Errorf("snowflake system not wired: %w", config.ErrInvalidConfiguration)
	}
	cfg := *s.config
	if err := cfg.ValidateSpawn(); err != nil {
		return 0, err
	}
	width, height := s.surface.Size()
	if err := config.ValidateSurface(width, height); err != nil {
		return 0, err
	}

	// 初始状态
	xStart := float64(s.random.IntRange(0, int(width)))
	scale := s.random.FloatRange(config.ScaleMin, config.ScaleMax) * cfg.ScaleFactor
	rotationStart := float64(s.random.IntRange(0, config.RotationStartMax))
	seconds := s.random.IntRange(config.LifetimeSecondsMin, config.LifetimeSecondsMax+1)
	lifetime := time.Duration(float64(seconds) * float64(time.Second) / cfg.ParticleSpeed)
	opacity := s.random.FloatRange(config.OpacityMin, config.OpacityMax) * cfg.OpacityFactor
	margin := config.OffscreenMargin * cfg.ScaleFactor

	flake, err := s.factory.Create(nil)
	if err != nil {
		return 0, fmt.Errorf("create snowflake: %w", err)
	}

	flake.Tint = cfg.FillColor
	flake.X = xStart
	flake.Y = -margin
	flake.Rotation = rotationStart
	flake.Scale = scale
	flake.Opacity = opacity
	flake.Lifetime = lifetime
	flake.StartX = xStart
	flake.StartY = -margin
	flake.StartRotation = rotationStart

	// 动画目标
	flake.Drift = float64(s.random.IntRange(config.DriftMin, config.DriftMax))
	flake.RotationExtra = float64(s.random.IntRange(config.RotationExtraMin, config.RotationExtraMax))
	flake.TargetY = height + margin
	flake.Fading = cfg.LeaveAnimation == config.LeaveAnimationFade

	// 注册到存活集合（相当于添加到表面）
	id := s.EntityManager.CreateEntity()
	s.EntityManager.AddComponent(id, flake)
	s.EntityManager.AddComponent(id, &components.LifetimeComponent{MaxLifetime: lifetime})

	flake.Storyboard = s.buildStoryboard(flake)
	flake.Storyboard.Completed = func() { s.onTimelineCompleted(id, flake) }

	s.spawned++
	if s.observer != nil {
		s.observer.SnowflakeSpawned(id, flake, at)
	}

	// 只有在注册成功后才开始动画
	if s.EntityManager.IsAlive(id) {
		flake.Storyboard.Begin()
	}
	return id, nil
}

// buildStoryboard creates the drift, fall, rotation and optional fade
// animations. All but the fade span the full lifetime from t=0; the fade
// ends exactly at the end of the lifetime.
func (s *SnowflakeSystem) buildStoryboard(flake *components.SnowflakeComponent) *timeline.Storyboard {
	sb := timeline.NewStoryboard(
		timeline.NewDoubleAnimation(&flake.X, flake.EndX(), flake.Lifetime),
		timeline.NewDoubleAnimation(&flake.Y, flake.TargetY, flake.Lifetime),
		timeline.NewDoubleAnimation(&flake.Rotation, flake.EndRotation(), flake.Lifetime),
	)

	if flake.Fading {
		fadeStart, fadeDuration := FadeTiming(flake.Lifetime)
		flake.FadeStart = fadeStart
		sb.Add(timeline.NewDoubleAnimation(&flake.Opacity, 0, fadeDuration).WithBeginTime(fadeStart))
	}
	return sb
}

// FadeTiming returns the fade offset and length for a lifetime. Lifetimes
// shorter than the fade window fade over their whole length from t=0.
func FadeTiming(lifetime time.Duration) (start, duration time.Duration) {
	if lifetime < config.FadeWindow {
		return 0, lifetime
	}
	return lifetime - config.FadeWindow, config.FadeWindow
}

func (s *SnowflakeSystem) onTimelineCompleted(id ecs.EntityID, flake *components.SnowflakeComponent) {
	if !s.EntityManager.DestroyEntity(id) {
		return
	}
	s.recordAge(id, flake)
	if s.lifetimes != nil && s.lifetimes.Progress(id) < 1 {
		log.Printf("[SnowflakeSystem] snowflake %d finished at %v, before its %v lifetime", id, flake.Age, flake.Lifetime)
	}
	s.pending[id] = flake
}

// recordAge 从生命周期组件读取存在时间，实体被移出前调用
func (s *SnowflakeSystem) recordAge(id ecs.EntityID, flake *components.SnowflakeComponent) {
	if s.lifetimes == nil {
		return
	}
	if age, ok := s.lifetimes.Age(id); ok {
		flake.Age = age
	}
}

// Update advances every live snowflake's storyboard by dt and removes the
// snowflakes whose storyboards completed.
func (s *SnowflakeSystem) Update(dt time.Duration) {
	if dt < 0 {
		return
	}
	s.clock += dt

	entities := ecs.GetEntitiesWith1[*components.SnowflakeComponent](s.EntityManager)
	for _, id := range entities {
		flake, ok := ecs.GetComponent[*components.SnowflakeComponent](s.EntityManager, id)
		if !ok || flake.Storyboard == nil {
			continue
		}
		flake.Storyboard.Advance(dt)
	}

	s.flush()
}

// flush removes destroyed entities from the live set and reports them.
func (s *SnowflakeSystem) flush() {
	for _, id := range s.EntityManager.RemoveMarkedEntities() {
		flake, ok := s.pending[id]
		if !ok {
			continue
		}
		delete(s.pending, id)
		s.removed++
		if s.observer != nil {
			s.observer.SnowflakeRemoved(id, flake, s.clock)
		}
	}
}

// LiveSnowflakes returns the live snowflake IDs, oldest first.
func (s *SnowflakeSystem) LiveSnowflakes() []ecs.EntityID {
	return ecs.GetEntitiesWith1[*components.SnowflakeComponent](s.EntityManager)
}

// LiveCount 返回存活雪花数量
func (s *SnowflakeSystem) LiveCount() int {
	return len(s.LiveSnowflakes())
}

// Spawned 返回累计生成数量
func (s *SnowflakeSystem) Spawned() int {
	return s.spawned
}

// Removed 返回累计移除数量
func (s *SnowflakeSystem) Removed() int {
	return s.removed
}

// Clear drops every live snowflake immediately, without waiting for its
// timeline. Used when the host tears the surface down.
func (s *SnowflakeSystem) Clear() {
	ids := s.LiveSnowflakes()
	for _, id := range ids {
		flake, ok := ecs.GetComponent[*components.SnowflakeComponent](s.EntityManager, id)
		if ok {
			if flake.Storyboard != nil {
				flake.Storyboard.Completed = nil
			}
			s.recordAge(id, flake)
			s.pending[id] = flake
		}
		s.EntityManager.DestroyEntity(id)
	}
	s.flush()
	if len(ids) > 0 {
		log.Printf("[SnowflakeSystem] cleared %d live snowflakes", len(ids))
	}
}
