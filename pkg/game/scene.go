package game

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents a host surface (e.g., the snowfall overlay).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update advances the scene by dt of virtual time.
	Update(dt time.Duration)

	// Draw renders the scene to the provided screen.
	// screen is the target image where the scene should be drawn.
	Draw(screen *ebiten.Image)
}

// Lifecycle 是一个可选接口，场景在挂载/卸载时收到通知
//
// SceneManager.SwitchTo 会在切换时调用：
//   - 旧场景的 OnDetached()
//   - 新场景的 OnAttached()
type Lifecycle interface {
	// OnAttached 场景成为当前场景时调用；返回错误时切换失败
	OnAttached() error
	// OnDetached 场景不再是当前场景时调用，必须可重复调用
	OnDetached()
}

// Saveable 是一个可选接口，用于支持场景在退出时保存状态
//
// 实现此接口的场景会在以下时机被调用 SaveOnExit()：
//   - 游戏窗口关闭
//   - 用户通过 OS 命令关闭程序
type Saveable interface {
	// SaveOnExit 在场景退出时保存状态
	// 返回 true 表示保存成功或无需保存
	// 返回 false 表示保存失败（但程序仍会正常退出）
	SaveOnExit() bool
}
