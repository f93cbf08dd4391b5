package scenes

import (
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/snowfall/pkg/config"
	"github.com/decker502/snowfall/pkg/ecs"
	"github.com/decker502/snowfall/pkg/systems"
	"github.com/decker502/snowfall/pkg/telemetry"
)

// journalFlushInterval 日志文件写入间隔
const journalFlushInterval = time.Second

// DefaultBackground 默认背景色（夜空）
var DefaultBackground = color.RGBA{R: 12, G: 18, B: 38, A: 255}

// surface 可变尺寸的宿主表面，尺寸由 Layout 或终端大小更新
type surface struct {
	width, height float64
}

func (s *surface) Size() (float64, float64) {
	return s.width, s.height
}

// Options 创建 SnowfallScene 的参数
type Options struct {
	// Config 运行时读取的配置，调用方可以在帧之间修改
	Config *config.SnowfallConfig
	// Width, Height 初始表面尺寸（逻辑像素）
	Width, Height float64
	// Factory 雪花工厂（必需）
	Factory systems.ParticleFactory
	// Random 随机数来源，nil 使用默认均匀随机
	Random systems.Randomizer
	// Sprites 贴图来源；nil 时 Draw 只绘制背景（无头/终端模式）
	Sprites systems.SpriteSource
	// Journal 可选的生成日志
	Journal *telemetry.SpawnJournal
	// Background 背景色，nil 使用 DefaultBackground
	Background color.Color
}

// SnowfallScene 雪花覆盖层场景
//
// 组合 EmissionScheduler、SnowflakeSystem、LifetimeSystem 与渲染系统。
// 挂载时启动发射，卸载时停止发射；已存在的雪花继续下落直至动画结束。
//
// 每帧顺序：生命周期 → 动画推进与移除 → 发射新雪花。
// 新雪花在本帧从 t=0 开始，下一帧才推进。
type SnowfallScene struct {
	entityManager *ecs.EntityManager
	config        *config.SnowfallConfig
	surface       *surface

	scheduler  *systems.EmissionScheduler
	snowflakes *systems.SnowflakeSystem
	lifetimes  *systems.LifetimeSystem
	renderer   *systems.SnowflakeRenderSystem

	journal      *telemetry.SpawnJournal
	journalClock time.Duration

	// 本帧发射开始时的两个时钟，用于换算 tick 的实际时间
	frameStart     time.Duration
	schedulerStart time.Duration

	background color.Color
	attached   bool
}

// NewSnowfallScene 创建雪花场景
func NewSnowfallScene(opts Options) *SnowfallScene {
	em := ecs.NewEntityManager()
	cfg := opts.Config
	if cfg == nil {
		defaults := config.DefaultSnowfallConfig()
		cfg = &defaults
	}
	bg := opts.Background
	if bg == nil {
		bg = DefaultBackground
	}

	s := &SnowfallScene{
		entityManager: em,
		config:        cfg,
		surface:       &surface{width: opts.Width, height: opts.Height},
		lifetimes:     systems.NewLifetimeSystem(em),
		journal:       opts.Journal,
		background:    bg,
	}
	s.snowflakes = systems.NewSnowflakeSystem(em, cfg, s.surface, opts.Factory, opts.Random)
	s.snowflakes.SetLifetimes(s.lifetimes)
	if opts.Journal != nil {
		s.snowflakes.SetObserver(opts.Journal)
	}
	s.scheduler = systems.NewEmissionScheduler(s.spawnTick)
	if opts.Sprites != nil {
		s.renderer = systems.NewSnowflakeRenderSystem(em, opts.Sprites)
	}
	return s
}

// OnAttached 开始发射雪花
// EmissionRate 非法时返回 ErrInvalidConfiguration，不会发射。
func (s *SnowfallScene) OnAttached() error {
	if err := s.scheduler.Start(s.config.EmissionRate); err != nil {
		return err
	}
	s.attached = true
	log.Printf("[SnowfallScene] attached: surface=%vx%v rate=%d/s leave=%v",
		s.surface.width, s.surface.height, s.config.EmissionRate, s.config.LeaveAnimation)
	return nil
}

// OnDetached 停止发射；存活的雪花不受影响
func (s *SnowfallScene) OnDetached() {
	s.scheduler.Stop()
	if s.attached {
		s.attached = false
		log.Printf("[SnowfallScene] detached: %d snowflakes still falling", s.snowflakes.LiveCount())
	}
	s.flushJournal()
}

// Restart 以当前配置重新启动发射（例如修改了 EmissionRate）
// 未挂载时不做任何事。
func (s *SnowfallScene) Restart() error {
	if !s.attached {
		return nil
	}
	s.scheduler.Stop()
	if err := s.scheduler.Start(s.config.EmissionRate); err != nil {
		s.attached = false
		return err
	}
	return nil
}

// SetSurfaceSize 更新表面尺寸，对之后生成的雪花生效
func (s *SnowfallScene) SetSurfaceSize(width, height float64) {
	if s.surface.width == width && s.surface.height == height {
		return
	}
	s.surface.width, s.surface.height = width, height
	log.Printf("[SnowfallScene] surface resized to %vx%v", width, height)
}

// SurfaceSize 返回当前表面尺寸
func (s *SnowfallScene) SurfaceSize() (float64, float64) {
	return s.surface.Size()
}

// Update 推进场景
func (s *SnowfallScene) Update(dt time.Duration) {
	if dt <= 0 {
		return
	}
	s.lifetimes.Update(dt)
	s.snowflakes.Update(dt)

	s.frameStart = s.snowflakes.Clock() - dt
	s.schedulerStart = s.scheduler.Now()
	s.scheduler.Update(dt)

	if s.journal != nil {
		s.journalClock += dt
		if s.journalClock >= journalFlushInterval {
			s.journalClock = 0
			s.flushJournal()
		}
	}
}

// spawnTick 生成一片雪花，生成时间为 tick 在场景时钟上的实际时间
func (s *SnowfallScene) spawnTick() error {
	at := s.frameStart + s.scheduler.Now() - s.schedulerStart
	_, err := s.snowflakes.SpawnAt(at)
	return err
}

func (s *SnowfallScene) flushJournal() {
	if err := s.journal.Flush(); err != nil {
		log.Printf("[SnowfallScene] journal flush failed: %v", err)
	}
}

// SaveOnExit 退出时关闭生成日志
// 只写出日志，不保存任何雪花状态。
func (s *SnowfallScene) SaveOnExit() bool {
	if s.journal == nil {
		return true
	}
	log.Printf("[SnowfallScene] journal summary: %v", s.journal.Summary())
	if err := s.journal.Close(); err != nil {
		log.Printf("[SnowfallScene] journal close failed: %v", err)
		return false
	}
	return true
}

// Draw 绘制背景与所有雪花
func (s *SnowfallScene) Draw(screen *ebiten.Image) {
	screen.Fill(s.background)
	if s.renderer != nil {
		s.renderer.Draw(screen)
	}
}

// Clear 立即移除所有存活的雪花
func (s *SnowfallScene) Clear() {
	s.snowflakes.Clear()
}

// IsEmitting 是否正在发射
func (s *SnowfallScene) IsEmitting() bool {
	return s.scheduler.IsRunning()
}

// Config 返回场景使用的配置
func (s *SnowfallScene) Config() *config.SnowfallConfig {
	return s.config
}

// EntityManager 返回存活集合
func (s *SnowfallScene) EntityManager() *ecs.EntityManager {
	return s.entityManager
}

// Snowflakes 返回雪花系统
func (s *SnowfallScene) Snowflakes() *systems.SnowflakeSystem {
	return s.snowflakes
}

// Journal 返回生成日志（可能为 nil）
func (s *SnowfallScene) Journal() *telemetry.SpawnJournal {
	return s.journal
}
