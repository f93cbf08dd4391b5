package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/snowfall/pkg/config"
)

// UserSettings 用户调整过的覆盖层设置
// 只持久化配置，不保存任何雪花或动画状态。
type UserSettings struct {
	Snowfall config.SnowfallConfig `yaml:"snowfall"`

	// 显示设置
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
}

// DefaultSettings 返回基于 base 配置的默认设置
func DefaultSettings(base config.SnowfallConfig) *UserSettings {
	return &UserSettings{
		Snowfall:   base,
		Fullscreen: false,
	}
}

// SettingsManager 设置管理器
// 负责设置的加载、保存和内存管理
//
// GetSettings 返回的指针在 Load 之后仍然有效，SnowflakeSystem 可以直接持有
// &GetSettings().Snowfall 并在下一次生成时读到修改。
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	defaults     config.SnowfallConfig
	settings     *UserSettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "snowfall"
)

// MaxEmissionRate 调节发射速率的上限
const MaxEmissionRate = 1000

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//   - defaults: 配置文件（或内置默认值）给出的基础配置
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 保留用于将来的初始化错误，加载失败不会返回错误
func NewSettingsManager(gdataManager *gdata.Manager, defaults config.SnowfallConfig) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		defaults:     defaults,
		settings:     DefaultSettings(defaults),
	}

	// 尝试加载已保存的设置
	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置。
// 已保存的设置覆盖在默认值上；未通过校验时回退到默认设置。
//
// 返回：
//   - error: 如果读取、反序列化或校验失败返回错误
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.reset()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.reset()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.reset()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := *DefaultSettings(sm.defaults)
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		sm.reset()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := loaded.Snowfall.Validate(); err != nil {
		sm.reset()
		return fmt.Errorf("saved settings rejected: %w", err)
	}

	*sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

func (sm *SettingsManager) reset() {
	*sm.settings = *DefaultSettings(sm.defaults)
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
//
// 返回：
//   - error: 如果序列化或保存失败返回错误
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *UserSettings {
	return sm.settings
}

// Snowfall 返回当前雪花配置的指针
func (sm *SettingsManager) Snowfall() *config.SnowfallConfig {
	return &sm.settings.Snowfall
}

// SetEmissionRate 设置发射速率
//
// 速率被限制在 1 ~ MaxEmissionRate 之间。
// 注意：正在运行的调度器不会改变间隔，需要重新启动。
func (sm *SettingsManager) SetEmissionRate(rate int) {
	if rate < 1 {
		rate = 1
	}
	if rate > MaxEmissionRate {
		rate = MaxEmissionRate
	}
	sm.settings.Snowfall.EmissionRate = rate
}

// SetLeaveAnimation 设置离场动画，对之后生成的雪花生效
func (sm *SettingsManager) SetLeaveAnimation(a config.LeaveAnimation) {
	sm.settings.Snowfall.LeaveAnimation = a
}

// ToggleLeaveAnimation 在 None 和 Fade 之间切换，返回新值
func (sm *SettingsManager) ToggleLeaveAnimation() config.LeaveAnimation {
	if sm.settings.Snowfall.LeaveAnimation == config.LeaveAnimationFade {
		sm.settings.Snowfall.LeaveAnimation = config.LeaveAnimationNone
	} else {
		sm.settings.Snowfall.LeaveAnimation = config.LeaveAnimationFade
	}
	return sm.settings.Snowfall.LeaveAnimation
}

// SetFillColor 设置雪花颜色
func (sm *SettingsManager) SetFillColor(c config.HexColor) {
	sm.settings.Snowfall.FillColor = c
}

// SetFullscreen 设置全屏模式
//
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}
