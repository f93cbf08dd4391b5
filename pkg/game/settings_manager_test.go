package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/snowfall/pkg/config"
)

// openTestGdata 在临时 HOME 下打开 gdata 管理器
func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	gdataManager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return gdataManager
}

// TestDefaultSettings 测试 DefaultSettings() 使用基础配置
func TestDefaultSettings(t *testing.T) {
	base := config.DefaultSnowfallConfig()
	settings := DefaultSettings(base)

	if settings.Snowfall != base {
		t.Errorf("Snowfall: got %+v, want %+v", settings.Snowfall, base)
	}
	if settings.Fullscreen {
		t.Error("Fullscreen: got true, want false")
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm, err := NewSettingsManager(nil, config.DefaultSnowfallConfig())
	if err != nil {
		t.Fatalf("NewSettingsManager(nil) error: %v", err)
	}

	if sm.GetSettings().Snowfall.EmissionRate != 5 {
		t.Errorf("Degraded mode EmissionRate: got %d, want 5", sm.GetSettings().Snowfall.EmissionRate)
	}
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail: %v", err)
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 功能
func TestSettingsLoadSave(t *testing.T) {
	gdataManager := openTestGdata(t, "test_snowfall_settings")

	sm1, err := NewSettingsManager(gdataManager, config.DefaultSnowfallConfig())
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}
	sm1.SetEmissionRate(12)
	sm1.SetLeaveAnimation(config.LeaveAnimationFade)
	sm1.SetFillColor(config.HexColor{R: 0xa0, G: 0xc8, B: 0xff, A: 255})
	sm1.SetFullscreen(true)

	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// 新的管理器从存储中读回
	sm2, err := NewSettingsManager(gdataManager, config.DefaultSnowfallConfig())
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}
	got := sm2.GetSettings()
	if got.Snowfall.EmissionRate != 12 {
		t.Errorf("EmissionRate: got %d, want 12", got.Snowfall.EmissionRate)
	}
	if got.Snowfall.LeaveAnimation != config.LeaveAnimationFade {
		t.Errorf("LeaveAnimation: got %v, want Fade", got.Snowfall.LeaveAnimation)
	}
	if got.Snowfall.FillColor != (config.HexColor{R: 0xa0, G: 0xc8, B: 0xff, A: 255}) {
		t.Errorf("FillColor: got %+v", got.Snowfall.FillColor)
	}
	if !got.Fullscreen {
		t.Error("Fullscreen should be restored")
	}
}

// TestSettingsLoadRejectsInvalid 已保存的非法配置回退到默认值
func TestSettingsLoadRejectsInvalid(t *testing.T) {
	gdataManager := openTestGdata(t, "test_snowfall_settings_invalid")

	bad := []byte("snowfall:\n  particle_speed: -1\n")
	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, bad); err != nil {
		t.Fatalf("SaveObjectProp error: %v", err)
	}

	sm, _ := NewSettingsManager(gdataManager, config.DefaultSnowfallConfig())
	if err := sm.Load(); err == nil {
		t.Error("Load() should reject an invalid saved config")
	}
	if sm.GetSettings().Snowfall != config.DefaultSnowfallConfig() {
		t.Errorf("settings should fall back to defaults, got %+v", sm.GetSettings().Snowfall)
	}
}

// TestSnowfallPointerSurvivesLoad SnowflakeSystem 持有的指针在 Load 后依然有效
func TestSnowfallPointerSurvivesLoad(t *testing.T) {
	sm, _ := NewSettingsManager(nil, config.DefaultSnowfallConfig())
	ptr := sm.Snowfall()

	sm.SetEmissionRate(42)
	if ptr.EmissionRate != 42 {
		t.Errorf("pointer should see the change, got %d", ptr.EmissionRate)
	}

	sm.Load()
	if ptr != sm.Snowfall() || ptr.EmissionRate != 5 {
		t.Errorf("Load should reset in place: same=%v rate=%d", ptr == sm.Snowfall(), ptr.EmissionRate)
	}
}

func TestSetEmissionRateClamps(t *testing.T) {
	sm, _ := NewSettingsManager(nil, config.DefaultSnowfallConfig())

	sm.SetEmissionRate(0)
	if got := sm.Snowfall().EmissionRate; got != 1 {
		t.Errorf("rate 0 should clamp to 1, got %d", got)
	}
	sm.SetEmissionRate(5000)
	if got := sm.Snowfall().EmissionRate; got != MaxEmissionRate {
		t.Errorf("rate 5000 should clamp to %d, got %d", MaxEmissionRate, got)
	}
}

func TestToggleLeaveAnimation(t *testing.T) {
	sm, _ := NewSettingsManager(nil, config.DefaultSnowfallConfig())

	if got := sm.ToggleLeaveAnimation(); got != config.LeaveAnimationFade {
		t.Errorf("first toggle: got %v, want Fade", got)
	}
	if got := sm.ToggleLeaveAnimation(); got != config.LeaveAnimationNone {
		t.Errorf("second toggle: got %v, want None", got)
	}
}
