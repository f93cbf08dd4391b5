package systems

import (
	"time"

	"github.com/decker502/snowfall/pkg/components"
	"github.com/decker502/snowfall/pkg/ecs"
)

// LifetimeSystem 记录实体存在时间
// It only ages entities and flags IsExpired; removal is driven by the
// snowflake storyboard, so an expired flag never destroys anything.
type LifetimeSystem struct {
	entityManager *ecs.EntityManager
}

// NewLifetimeSystem 创建一个新的生命周期系统
func NewLifetimeSystem(em *ecs.EntityManager) *LifetimeSystem {
	return &LifetimeSystem{
		entityManager: em,
	}
}

// Update 更新所有拥有生命周期组件的实体
func (s *LifetimeSystem) Update(dt time.Duration) {
	if dt <= 0 {
		return
	}
	entities := ecs.GetEntitiesWith1[*components.LifetimeComponent](s.entityManager)

	for _, id := range entities {
		lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)
		if !ok {
			continue
		}

		lifetime.CurrentLifetime += dt
		if lifetime.CurrentLifetime >= lifetime.MaxLifetime {
			lifetime.IsExpired = true
		}
	}
}

// Age 返回实体已存在的时间；没有生命周期组件时 ok 为 false
func (s *LifetimeSystem) Age(id ecs.EntityID) (time.Duration, bool) {
	lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)
	if !ok {
		return 0, false
	}
	return lifetime.CurrentLifetime, true
}

// Progress 返回实体生命进度 [0, 1]；没有生命周期组件时返回 0
func (s *LifetimeSystem) Progress(id ecs.EntityID) float64 {
	lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)
	if !ok || lifetime.MaxLifetime <= 0 {
		return 0
	}
	p := float64(lifetime.CurrentLifetime) / float64(lifetime.MaxLifetime)
	if p > 1 {
		return 1
	}
	return p
}
