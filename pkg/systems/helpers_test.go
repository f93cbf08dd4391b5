package systems

import (
	"errors"
	"time"

	"github.com/decker502/snowfall/pkg/components"
	"github.com/decker502/snowfall/pkg/ecs"
)

// fixedSurface 固定尺寸的测试表面
type fixedSurface struct {
	width, height float64
}

func (s *fixedSurface) Size() (float64, float64) {
	return s.width, s.height
}

// scriptedRandomizer 按顺序返回预设值，用尽后返回区间下界
type scriptedRandomizer struct {
	ints   []int
	floats []float64
}

func (r *scriptedRandomizer) IntRange(min, max int) int {
	if len(r.ints) == 0 {
		return min
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v
}

func (r *scriptedRandomizer) FloatRange(min, max float64) float64 {
	if len(r.floats) == 0 {
		return min
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

var errFactoryBroken = errors.New("factory broken")

// testFactory 总是返回星形雪花，可配置为失败
type testFactory struct {
	fail    bool
	created int
}

func (f *testFactory) Create(variant *components.SnowflakeVariant) (*components.SnowflakeComponent, error) {
	if f.fail {
		return nil, errFactoryBroken
	}
	f.created++
	v := components.VariantStar
	if variant != nil {
		v = *variant
	}
	return &components.SnowflakeComponent{Variant: v}, nil
}

type spawnEvent struct {
	id ecs.EntityID
	at time.Duration
}

// recordingObserver 记录生成与移除事件
type recordingObserver struct {
	spawned []spawnEvent
	removed []spawnEvent
}

func (o *recordingObserver) SnowflakeSpawned(id ecs.EntityID, _ *components.SnowflakeComponent, at time.Duration) {
	o.spawned = append(o.spawned, spawnEvent{id: id, at: at})
}

func (o *recordingObserver) SnowflakeRemoved(id ecs.EntityID, _ *components.SnowflakeComponent, at time.Duration) {
	o.removed = append(o.removed, spawnEvent{id: id, at: at})
}

func (o *recordingObserver) removedCount(id ecs.EntityID) int {
	n := 0
	for _, ev := range o.removed {
		if ev.id == id {
			n++
		}
	}
	return n
}

// advance 以固定步长推进时间
func advance(total, step time.Duration, update func(time.Duration)) {
	for elapsed := time.Duration(0); elapsed < total; elapsed += step {
		update(step)
	}
}
