// Package app 提供雪花覆盖层应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/snowfall/pkg/config"
	"github.com/decker502/snowfall/pkg/entities"
	"github.com/decker502/snowfall/pkg/game"
	"github.com/decker502/snowfall/pkg/scenes"
	"github.com/decker502/snowfall/pkg/telemetry"
	"github.com/decker502/snowfall/pkg/utils"
)

// AppName 用于 gdata 存储目录
const AppName = "snowfall"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 用户配置文件路径，为空则使用内置默认值
	ConfigPath string
	// JournalPath 生成日志 CSV 路径，为空则不记录
	JournalPath string
}

// App 是应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	scene        *scenes.SnowfallScene
	settings     *game.SettingsManager
	sprites      *entities.SnowflakeSprites
	window       config.WindowConfig

	verbose                  bool
	mobile                   bool
	showHUD                  bool
	emitting                 bool
	closed                   bool
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
	touchIDs                 []ebiten.TouchID
}

// NewApp 创建并初始化应用
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	fileConfig, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("配置加载失败: %w", err)
	}
	if cfg.ConfigPath != "" {
		log.Printf("[Config] 加载配置文件: %s", cfg.ConfigPath)
	}

	if err := utils.EnsureStorageDir(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}

	// gdata 不可用时降级为仅内存设置
	gdataManager, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable: %v (settings will not persist)", err)
		gdataManager = nil
	}
	settings, err := game.NewSettingsManager(gdataManager, fileConfig.Snowfall)
	if err != nil {
		return nil, fmt.Errorf("设置初始化失败: %w", err)
	}

	journal, err := telemetry.OpenSpawnJournal(cfg.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("生成日志创建失败: %w", err)
	}

	sprites := entities.NewSnowflakeSprites()
	scene := scenes.NewSnowfallScene(scenes.Options{
		Config:  settings.Snowfall(),
		Width:   float64(fileConfig.Window.Width),
		Height:  float64(fileConfig.Window.Height),
		Factory: entities.NewSnowflakeFactory(nil),
		Sprites: sprites,
		Journal: journal,
	})

	sceneManager := game.NewSceneManager()
	if err := sceneManager.SwitchTo(scene); err != nil {
		journal.Close()
		return nil, fmt.Errorf("场景启动失败: %w", err)
	}

	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return &App{
		sceneManager: sceneManager,
		scene:        scene,
		settings:     settings,
		sprites:      sprites,
		window:       fileConfig.Window,
		verbose:      cfg.Verbose,
		mobile:       utils.IsMobile(),
		showHUD:      cfg.Verbose,
		emitting:     true,
	}, nil
}

// Window 返回窗口配置
func (a *App) Window() config.WindowConfig {
	return a.window
}

// Update 更新逻辑
// 每个 tick 调用一次（默认每秒 60 次）
func (a *App) Update() error {
	if ebiten.IsWindowBeingClosed() {
		a.Close()
		return ebiten.Termination
	}

	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.window.Width, a.window.Height)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", a.window.Width, a.window.Height)
			a.pendingWindowSizeReset = false
		}
	}

	a.handleInput()

	tps := ebiten.TPS()
	if tps <= 0 {
		tps = config.TicksPerSecond
	}
	a.sceneManager.Update(time.Second / time.Duration(tps))
	return nil
}

func (a *App) handleInput() {
	// 移动端：点击暂停/恢复发射
	if a.mobile {
		a.touchIDs = inpututil.AppendJustPressedTouchIDs(a.touchIDs[:0])
		if len(a.touchIDs) > 0 {
			a.toggleEmission()
		}
		return
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	// 发射速率
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		a.changeEmissionRate(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		a.changeEmissionRate(-1)
	}

	// 离场动画切换，对之后生成的雪花生效
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		leave := a.settings.ToggleLeaveAnimation()
		log.Printf("[App] LeaveAnimation = %v", leave)
	}

	// 暂停/恢复发射，已有雪花继续下落
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.toggleEmission()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		a.scene.Clear()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := a.settings.Save(); err != nil {
			log.Printf("[App] 保存设置失败: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		a.showHUD = !a.showHUD
	}
}

func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		// 退出全屏
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		a.settings.SetFullscreen(false)
		log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
	} else {
		ebiten.SetFullscreen(true)
		a.settings.SetFullscreen(true)
	}
}

func (a *App) changeEmissionRate(delta int) {
	a.settings.SetEmissionRate(a.settings.Snowfall().EmissionRate + delta)
	if err := a.scene.Restart(); err != nil {
		log.Printf("[App] 重启发射失败: %v", err)
		return
	}
	log.Printf("[App] EmissionRate = %d/s", a.settings.Snowfall().EmissionRate)
}

func (a *App) toggleEmission() {
	if a.emitting {
		a.scene.OnDetached()
		a.emitting = false
		return
	}
	if err := a.scene.OnAttached(); err != nil {
		log.Printf("[App] 恢复发射失败: %v", err)
		return
	}
	a.emitting = true
}

// Draw 绘制画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)

	if a.showHUD {
		cfg := a.settings.Snowfall()
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"TPS %.0f  live %d  rate %d/s  leave %v  emitting %v\n[Up/Down] rate  [F] fade  [Space] pause  [C] clear  [S] save  [H] hud",
			ebiten.ActualTPS(), a.scene.Snowflakes().LiveCount(), cfg.EmissionRate, cfg.LeaveAnimation, a.scene.IsEmitting()))
	}
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 覆盖层跟随窗口大小，表面尺寸随之更新，对之后生成的雪花生效。
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		return a.window.Width, a.window.Height
	}
	a.scene.SetSurfaceSize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Close 保存设置、卸载场景并写出日志；可重复调用
func (a *App) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	if a.settings != nil {
		if err := a.settings.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	if current, ok := a.sceneManager.GetCurrentScene().(game.Saveable); ok {
		if !current.SaveOnExit() {
			errs = append(errs, errors.New("scene failed to save on exit"))
		}
	}
	a.sceneManager.Detach()
	a.sprites.Dispose()
	return errors.Join(errs...)
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
