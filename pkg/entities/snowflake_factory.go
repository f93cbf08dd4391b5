package entities

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/decker502/snowfall/pkg/components"
)

// SnowflakeFactory 创建可渲染的雪花粒子
// 未指定变体时在固定变体集合中均匀选择。
type SnowflakeFactory struct {
	mu  sync.Mutex
	rng *rand.Rand

	created [components.SnowflakeVariantCount]int
}

// NewSnowflakeFactory 创建雪花工厂
// 参数:
//   - src: 随机源，nil 时使用时间种子的 PCG
//
// 返回: 工厂实例
func NewSnowflakeFactory(src rand.Source) *SnowflakeFactory {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &SnowflakeFactory{rng: rand.New(src)}
}

// Create 创建一个雪花组件
// variant 为 nil 时随机选择；未知变体返回错误。
// 返回的组件只包含外观信息，变换与动画由 SnowflakeSystem 填充。
func (f *SnowflakeFactory) Create(variant *components.SnowflakeVariant) (*components.SnowflakeComponent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var v components.SnowflakeVariant
	if variant != nil {
		if !variant.Valid() {
			return nil, fmt.Errorf("unknown snowflake variant %d", int(*variant))
		}
		v = *variant
	} else {
		v = components.SnowflakeVariant(f.rng.IntN(components.SnowflakeVariantCount))
	}

	f.created[v]++
	return &components.SnowflakeComponent{
		Variant: v,
		Scale:   1,
		Opacity: 1,
	}, nil
}

// CreatedCount 返回某个变体已创建的数量
func (f *SnowflakeFactory) CreatedCount(v components.SnowflakeVariant) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !v.Valid() {
		return 0
	}
	return f.created[v]
}
