package game

import (
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneManager manages which scene is attached to the host surface.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	currentScene Scene
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SwitchTo changes the active scene to the provided scene.
//
// The previous scene is detached first, then the new scene is attached. If
// the new scene fails to attach, it is detached again and no scene is left
// active. Switching to the current scene is a no-op. A nil scene detaches
// the current one.
func (sm *SceneManager) SwitchTo(scene Scene) error {
	if scene != nil && scene == sm.currentScene {
		return nil
	}

	if old, ok := sm.currentScene.(Lifecycle); ok {
		old.OnDetached()
	}
	sm.currentScene = nil

	if scene == nil {
		return nil
	}

	if next, ok := scene.(Lifecycle); ok {
		if err := next.OnAttached(); err != nil {
			next.OnDetached()
			log.Printf("[SceneManager] 场景挂载失败: %v", err)
			return fmt.Errorf("attach scene: %w", err)
		}
	}
	sm.currentScene = scene
	return nil
}

// Detach 卸载当前场景（例如窗口关闭时）
func (sm *SceneManager) Detach() {
	_ = sm.SwitchTo(nil)
}

// GetCurrentScene 返回当前活动的场景
//
// 返回：
//   - Scene: 当前场景，如果没有活动场景则返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// Update updates the currently active scene.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Update(dt time.Duration) {
	if sm.currentScene != nil {
		sm.currentScene.Update(dt)
	}
}

// Draw renders the currently active scene to the provided screen.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
