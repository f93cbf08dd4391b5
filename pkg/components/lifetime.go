package components

import "time"

// LifetimeComponent 记录实体已存在的时间
// Expiry is informational: the snowflake is removed by its storyboard, not by
// the lifetime tracker.
type LifetimeComponent struct {
	MaxLifetime     time.Duration // 预期生命周期
	CurrentLifetime time.Duration // 当前已存在时间
	IsExpired       bool          // 是否已到达预期生命周期
}
