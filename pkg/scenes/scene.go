package scenes

import (
	"github.com/decker502/snowfall/pkg/game"
)

// Scene is a type alias for game.Scene.
// All scene implementations should implement the game.Scene interface.
type Scene = game.Scene

var (
	_ game.Scene     = (*SnowfallScene)(nil)
	_ game.Lifecycle = (*SnowfallScene)(nil)
	_ game.Saveable  = (*SnowfallScene)(nil)
)
