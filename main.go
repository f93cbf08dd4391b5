// Snowfall draws a snowfall overlay: snowflakes are emitted at a fixed rate
// above the window, drift and spin down across it and are removed once they
// fall past the bottom edge.
//
// Usage:
//
//	go run . [flags]
//
// Flags:
//
//	--config <path>     YAML config overlaid on the built-in defaults
//	--journal <path>    Write spawn/removal events as CSV
//	--verbose           Enable verbose logging and the HUD
//
// Controls:
//
//	Up/Down    - Increase/decrease emission rate (restarts the emitter)
//	F          - Toggle fade-out for newly spawned snowflakes
//	Space      - Pause/resume emission (falling snow keeps falling)
//	C          - Clear all snowflakes
//	S          - Save settings
//	H          - Toggle HUD
//	F11        - Toggle fullscreen
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/snowfall/pkg/app"
)

var (
	configFlag  = flag.String("config", "", "Path to a YAML config file (defaults built in)")
	journalFlag = flag.String("journal", "", "Write spawn journal CSV to this path")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

func main() {
	flag.Parse()

	snowfall, err := app.NewApp(app.Config{
		Verbose:     *verboseFlag,
		ConfigPath:  *configFlag,
		JournalPath: *journalFlag,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer snowfall.Close()

	window := snowfall.Window()
	ebiten.SetWindowSize(window.Width, window.Height)
	ebiten.SetWindowTitle(window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(window.TPS)

	if err := ebiten.RunGame(snowfall); err != nil {
		log.Fatal(err)
	}
}
