// Package main runs the snowfall overlay in a terminal.
//
// Usage:
//
//	go run ./cmd/snowterm [flags]
//
// Flags:
//
//	--config <path>     YAML config overlaid on the built-in defaults
//	--journal <path>    Write spawn/removal events as CSV
//	--log <path>        Write logs to this file (default off)
//
// Controls:
//
//	Up/Down    - Increase/decrease emission rate
//	f          - Toggle fade-out for newly spawned snowflakes
//	Space      - Pause/resume emission
//	c          - Clear all snowflakes
//	q/Escape   - Quit
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/snowfall/pkg/config"
	"github.com/decker502/snowfall/pkg/entities"
	"github.com/decker502/snowfall/pkg/scenes"
	"github.com/decker502/snowfall/pkg/telemetry"
	"github.com/decker502/snowfall/pkg/terminal"
)

var (
	configFlag  = flag.String("config", "", "Path to a YAML config file (defaults built in)")
	journalFlag = flag.String("journal", "", "Write spawn journal CSV to this path")
	logFlag     = flag.String("log", "", "Write logs to this file (default off)")
)

// maxEmissionRate 终端下的速率上限
const maxEmissionRate = 200

type snowterm struct {
	screen   tcell.Screen
	renderer *terminal.Renderer
	scene    *scenes.SnowfallScene
	config   *config.SnowfallConfig
	frame    time.Duration
	paused   bool
}

func newSnowterm(screen tcell.Screen, cfg *config.Config, journal *telemetry.SpawnJournal) *snowterm {
	snowfall := cfg.Snowfall
	renderer := terminal.NewRenderer(screen, cfg.Terminal)
	width, height := renderer.SurfaceSize()

	scene := scenes.NewSnowfallScene(scenes.Options{
		Config:  &snowfall,
		Width:   width,
		Height:  height,
		Factory: entities.NewSnowflakeFactory(nil),
		Journal: journal,
	})

	fps := cfg.Terminal.FPS
	if fps <= 0 {
		fps = 30
	}
	return &snowterm{
		screen:   screen,
		renderer: renderer,
		scene:    scene,
		config:   &snowfall,
		frame:    time.Second / time.Duration(fps),
	}
}

// handleEvent 处理输入事件，返回 false 表示退出
func (s *snowterm) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			s.changeRate(1)
		case tcell.KeyDown:
			s.changeRate(-1)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'f':
				if s.config.LeaveAnimation == config.LeaveAnimationFade {
					s.config.LeaveAnimation = config.LeaveAnimationNone
				} else {
					s.config.LeaveAnimation = config.LeaveAnimationFade
				}
			case ' ':
				s.togglePause()
			case 'c':
				s.scene.Clear()
			}
		}

	case *tcell.EventResize:
		s.screen.Sync()
		s.scene.SetSurfaceSize(s.renderer.SurfaceSize())
	}
	return true
}

func (s *snowterm) changeRate(delta int) {
	rate := s.config.EmissionRate + delta
	if rate < 1 || rate > maxEmissionRate {
		return
	}
	s.config.EmissionRate = rate
	if err := s.scene.Restart(); err != nil {
		log.Printf("[snowterm] restart failed: %v", err)
	}
}

func (s *snowterm) togglePause() {
	if s.paused {
		if err := s.scene.OnAttached(); err != nil {
			log.Printf("[snowterm] resume failed: %v", err)
			return
		}
	} else {
		s.scene.OnDetached()
	}
	s.paused = !s.paused
}

func (s *snowterm) draw() {
	s.renderer.Draw(s.scene.EntityManager())
	status := fmt.Sprintf(" live %d  rate %d/s  leave %v",
		s.scene.Snowflakes().LiveCount(), s.config.EmissionRate, s.config.LeaveAnimation)
	if s.paused {
		status += "  [paused]"
	}
	s.renderer.DrawStatus(status)
	s.screen.Show()
}

func (s *snowterm) run() error {
	if err := s.scene.OnAttached(); err != nil {
		return err
	}
	defer s.scene.OnDetached()

	ticker := time.NewTicker(s.frame)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(s.screen, eventChan, done)

	for {
		select {
		case ev := <-eventChan:
			if !s.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			s.scene.Update(s.frame)
			s.draw()
		}
	}
}

// pollEvents 转发终端事件，直到屏幕结束或 done 关闭
func pollEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func main() {
	flag.Parse()

	log.SetOutput(io.Discard)
	if *logFlag != "" {
		f, err := os.Create(*logFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	journal, err := telemetry.OpenSpawnJournal(*journalFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "journal: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "terminal: %v\n", err)
		os.Exit(1)
	}
	screen.HideCursor()

	app := newSnowterm(screen, cfg, journal)
	runErr := app.run()
	screen.Fini()
	app.scene.SaveOnExit()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "snowterm: %v\n", runErr)
		os.Exit(1)
	}
	if journal != nil {
		fmt.Println(journal.Summary())
	}
}
