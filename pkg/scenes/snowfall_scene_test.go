package scenes

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/snowfall/pkg/components"
	"github.com/decker502/snowfall/pkg/config"
	"github.com/decker502/snowfall/pkg/ecs"
	"github.com/decker502/snowfall/pkg/entities"
	"github.com/decker502/snowfall/pkg/game"
	"github.com/decker502/snowfall/pkg/telemetry"
)

const frame = time.Second / 60

func newTestScene(cfg *config.SnowfallConfig, journal *telemetry.SpawnJournal) *SnowfallScene {
	return NewSnowfallScene(Options{
		Config:  cfg,
		Width:   config.ScreenWidth,
		Height:  config.ScreenHeight,
		Factory: entities.NewSnowflakeFactory(rand.NewPCG(1, 2)),
		Journal: journal,
	})
}

func runFrames(s *SnowfallScene, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		s.Update(frame)
	}
}

func TestSnowfallSceneEmitsWhileAttached(t *testing.T) {
	cfg := config.DefaultSnowfallConfig()
	s := newTestScene(&cfg, nil)

	// 未挂载时不发射
	runFrames(s, time.Second)
	if n := s.Snowflakes().LiveCount(); n != 0 {
		t.Fatalf("detached scene spawned %d snowflakes", n)
	}

	if err := s.OnAttached(); err != nil {
		t.Fatalf("OnAttached error: %v", err)
	}
	runFrames(s, 2*time.Second)

	live := s.Snowflakes().LiveCount()
	if live < 9 || live > 11 {
		t.Errorf("expected about 10 snowflakes after 2s at 5/s, got %d", live)
	}
}

func TestSnowfallSceneDetachKeepsFallingSnow(t *testing.T) {
	cfg := config.DefaultSnowfallConfig()
	s := newTestScene(&cfg, nil)
	s.OnAttached()
	runFrames(s, time.Second)
	s.OnDetached()

	live := s.Snowflakes().LiveCount()
	if live == 0 {
		t.Fatal("expected live snowflakes before detaching")
	}
	if s.IsEmitting() {
		t.Error("detached scene should stop emitting")
	}

	runFrames(s, 5*time.Second)
	if got := s.Snowflakes().LiveCount(); got != live {
		t.Errorf("in-flight snowflakes should keep falling: %d -> %d", live, got)
	}

	runFrames(s, 6*time.Second)
	if got := s.Snowflakes().LiveCount(); got != 0 {
		t.Errorf("all snowflakes should finish within 9s, %d left", got)
	}
}

func TestSnowfallSceneRejectsInvalidRate(t *testing.T) {
	cfg := config.DefaultSnowfallConfig()
	cfg.EmissionRate = 0
	s := newTestScene(&cfg, nil)

	sm := game.NewSceneManager()
	err := sm.SwitchTo(s)
	if !errors.Is(err, config.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	runFrames(s, time.Second)
	if s.Snowflakes().LiveCount() != 0 {
		t.Error("nothing should spawn with an invalid emission rate")
	}
}

func TestSnowfallSceneRestartAppliesNewRate(t *testing.T) {
	cfg := config.DefaultSnowfallConfig()
	cfg.EmissionRate = 2
	s := newTestScene(&cfg, nil)
	s.OnAttached()

	// 运行中修改速率不会生效
	cfg.EmissionRate = 20
	runFrames(s, time.Second)
	if got := s.Snowflakes().Spawned(); got != 2 {
		t.Fatalf("running scheduler must keep its interval, spawned %d", got)
	}

	if err := s.Restart(); err != nil {
		t.Fatalf("Restart error: %v", err)
	}
	runFrames(s, time.Second)
	if got := s.Snowflakes().Spawned(); got < 21 || got > 23 {
		t.Errorf("after restart at 20/s expected about 22 spawns total, got %d", got)
	}
}

func TestSnowfallSceneSurfaceResize(t *testing.T) {
	cfg := config.DefaultSnowfallConfig()
	s := newTestScene(&cfg, nil)
	s.SetSurfaceSize(40, 300)

	if w, h := s.SurfaceSize(); w != 40 || h != 300 {
		t.Fatalf("SurfaceSize: got %vx%v", w, h)
	}

	for i := 0; i < 50; i++ {
		id, err := s.Snowflakes().Spawn()
		if err != nil {
			t.Fatalf("Spawn error: %v", err)
		}
		flake, _ := ecs.GetComponent[*components.SnowflakeComponent](s.EntityManager(), id)
		if flake.StartX >= 40 {
			t.Errorf("xStart %v outside the resized surface", flake.StartX)
		}
		if flake.TargetY != 300+50*cfg.ScaleFactor {
			t.Errorf("TargetY %v, want %v", flake.TargetY, 300+50*cfg.ScaleFactor)
		}
	}

	s.SetSurfaceSize(0, 0)
	if _, err := s.Snowflakes().Spawn(); !errors.Is(err, config.ErrInvalidConfiguration) {
		t.Errorf("zero-size surface should reject spawns, got %v", err)
	}
}

func TestSnowfallSceneJournal(t *testing.T) {
	cfg := config.DefaultSnowfallConfig()
	journal := telemetry.NewSpawnJournal()
	s := newTestScene(&cfg, journal)
	s.OnAttached()
	runFrames(s, 2*time.Second)
	s.OnDetached()
	runFrames(s, 10*time.Second)

	summary := journal.Summary()
	if summary.Spawned == 0 || summary.Spawned != summary.Removed || summary.Live != 0 {
		t.Errorf("journal summary: %+v", summary)
	}
	if summary.MeanLifetime < 8 || summary.MeanLifetime > 9 {
		t.Errorf("mean lifetime %v outside [8, 9]", summary.MeanLifetime)
	}
}

func TestSnowfallSceneJournalUsesTickTimes(t *testing.T) {
	cfg := config.DefaultSnowfallConfig()
	cfg.EmissionRate = 50 // 20ms
	journal := telemetry.NewSpawnJournal()
	s := newTestScene(&cfg, journal)
	if err := s.OnAttached(); err != nil {
		t.Fatalf("OnAttached error: %v", err)
	}

	// 每帧 100ms，每帧内有 5 个 tick
	s.Update(100 * time.Millisecond)
	s.Update(100 * time.Millisecond)

	var at []int64
	for _, r := range journal.Records() {
		if r.Event == telemetry.EventSpawn {
			at = append(at, r.AtMs)
		}
	}
	if len(at) != 10 {
		t.Fatalf("expected 10 spawns, got %d", len(at))
	}
	for i, got := range at {
		if want := int64(20 * (i + 1)); got != want {
			t.Errorf("spawn %d at %dms, want %dms", i, got, want)
		}
	}
}

func TestSnowfallSceneRecordsAgeOnRemoval(t *testing.T) {
	cfg := config.DefaultSnowfallConfig()
	cfg.LeaveAnimation = config.LeaveAnimationFade
	journal := telemetry.NewSpawnJournal()
	s := newTestScene(&cfg, journal)
	s.OnAttached()
	runFrames(s, time.Second)
	s.OnDetached()
	runFrames(s, 10*time.Second)

	removed := 0
	for _, r := range journal.Records() {
		if r.Event != telemetry.EventRemove {
			continue
		}
		removed++
		// 存在时间至少为生命周期，最多多出一帧
		if r.AgeMs < r.LifetimeMs || r.AgeMs > r.LifetimeMs+frame.Milliseconds()+1 {
			t.Errorf("entity %d: age %dms, lifetime %dms", r.Entity, r.AgeMs, r.LifetimeMs)
		}
	}
	if removed == 0 {
		t.Fatal("expected removal rows")
	}
	if summary := journal.Summary(); summary.MeanAge < 8 || summary.MeanAge > 9.1 {
		t.Errorf("MeanAge %v outside [8, 9.1]", summary.MeanAge)
	}
}

func TestSnowfallSceneClear(t *testing.T) {
	cfg := config.DefaultSnowfallConfig()
	s := newTestScene(&cfg, nil)
	s.OnAttached()
	runFrames(s, time.Second)
	s.Clear()

	if got := s.Snowflakes().LiveCount(); got != 0 {
		t.Errorf("Clear left %d snowflakes", got)
	}
	if !s.IsEmitting() {
		t.Error("Clear must not stop emission")
	}
}

func TestSnowfallSceneDrawHeadless(t *testing.T) {
	cfg := config.DefaultSnowfallConfig()
	s := newTestScene(&cfg, nil)
	s.OnAttached()
	runFrames(s, time.Second)

	screen := ebiten.NewImage(config.ScreenWidth, config.ScreenHeight)
	s.Draw(screen) // 无贴图来源时只绘制背景，不应 panic
}

func TestSnowfallSceneSaveOnExitClosesJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.csv")
	journal, err := telemetry.OpenSpawnJournal(path)
	if err != nil {
		t.Fatalf("OpenSpawnJournal error: %v", err)
	}
	cfg := config.DefaultSnowfallConfig()
	s := newTestScene(&cfg, journal)
	s.OnAttached()
	runFrames(s, time.Second)

	if !s.SaveOnExit() {
		t.Fatal("SaveOnExit should succeed")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if !strings.HasPrefix(string(data), "event,entity") {
		t.Errorf("journal should start with the CSV header, got %q", string(data))
	}
	if strings.Count(string(data), "\nspawn,") != 5 {
		t.Errorf("expected 5 spawn rows:\n%s", data)
	}
}
