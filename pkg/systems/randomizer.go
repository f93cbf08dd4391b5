package systems

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Randomizer supplies the uniform draws used when spawning a snowflake.
// Both ranges are half-open: [min, max).
type Randomizer interface {
	IntRange(min, max int) int
	FloatRange(min, max float64) float64
}

// UniformRandomizer draws integers from math/rand/v2 and floats from a gonum
// uniform distribution sharing the same source.
type UniformRandomizer struct {
	src rand.Source
	rng *rand.Rand
}

// NewUniformRandomizer creates a randomizer over src; nil uses a
// time-seeded PCG source.
func NewUniformRandomizer(src rand.Source) *UniformRandomizer {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &UniformRandomizer{src: src, rng: rand.New(src)}
}

// IntRange 返回 [min, max) 内的整数；空区间返回 min
func (r *UniformRandomizer) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.rng.IntN(max-min)
}

// FloatRange 返回 [min, max) 内的浮点数；空区间返回 min
func (r *UniformRandomizer) FloatRange(min, max float64) float64 {
	if !(max > min) {
		return min
	}
	u := distuv.Uniform{Min: min, Max: max, Src: r.src}
	v := u.Rand()
	// 防止浮点舍入落到上界
	if v >= max {
		return min
	}
	return v
}
