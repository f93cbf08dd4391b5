// Package terminal draws the live snowflakes onto a tcell screen.
//
// Each character cell covers CellWidth x CellHeight logical pixels. A
// snowflake is drawn at the cell under its sprite center, with its tint
// blended towards the background by its render opacity.
package terminal

import (
	"image/color"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/snowfall/pkg/components"
	"github.com/decker502/snowfall/pkg/config"
	"github.com/decker502/snowfall/pkg/ecs"
	"github.com/decker502/snowfall/pkg/utils"
)

// 低于该透明度的雪花不绘制
const minVisibleOpacity = 0.05

// faintOpacity 以下用小点表示
const faintOpacity = 0.35

// DefaultBackground 终端背景色
var DefaultBackground = config.HexColor{R: 12, G: 18, B: 38, A: 255}

var variantGlyphs = [components.SnowflakeVariantCount]rune{
	components.VariantStar:    '*',
	components.VariantCrystal: '❄',
}

// Renderer 在 tcell 屏幕上绘制雪花
type Renderer struct {
	screen     tcell.Screen
	cellWidth  float64
	cellHeight float64

	background colorful.Color
	bgStyle    tcell.Style
}

// NewRenderer 创建终端渲染器
func NewRenderer(screen tcell.Screen, cfg config.TerminalConfig) *Renderer {
	cw, ch := cfg.CellWidth, cfg.CellHeight
	if cw <= 0 {
		cw = 8
	}
	if ch <= 0 {
		ch = 16
	}
	r := &Renderer{
		screen:     screen,
		cellWidth:  cw,
		cellHeight: ch,
	}
	r.SetBackground(DefaultBackground)
	return r
}

// SetBackground 设置背景色
func (r *Renderer) SetBackground(bg color.Color) {
	c, _ := colorful.MakeColor(bg)
	r.background = c
	r.bgStyle = tcell.StyleDefault.Background(toTcell(c))
}

// SurfaceSize 返回屏幕对应的逻辑表面尺寸
func (r *Renderer) SurfaceSize() (float64, float64) {
	cols, rows := r.screen.Size()
	return float64(cols) * r.cellWidth, float64(rows) * r.cellHeight
}

// Cell 返回雪花中心所在的字符单元
func (r *Renderer) Cell(flake *components.SnowflakeComponent) (col, row int) {
	half := float64(config.SnowflakeSpriteSize) / 2
	cx := flake.X + half
	cy := flake.Y + half
	return floorDiv(cx, r.cellWidth), floorDiv(cy, r.cellHeight)
}

func floorDiv(v, size float64) int {
	q := v / size
	i := int(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}

// Glyph 返回雪花对应的字符
func Glyph(flake *components.SnowflakeComponent) rune {
	if utils.Clamp01(flake.Opacity) < faintOpacity {
		return '.'
	}
	if !flake.Variant.Valid() {
		return '*'
	}
	return variantGlyphs[flake.Variant]
}

// Style 返回雪花的前景样式，颜色按透明度向背景混合
func (r *Renderer) Style(flake *components.SnowflakeComponent) tcell.Style {
	tint := colorful.Color{R: 1, G: 1, B: 1}
	if flake.Tint != nil {
		if c, ok := colorful.MakeColor(flake.Tint); ok {
			tint = c
		}
	}
	blended := r.background.BlendLab(tint, utils.Clamp01(flake.Opacity)).Clamped()
	return r.bgStyle.Foreground(toTcell(blended))
}

// Draw 清屏并绘制所有存活的雪花，返回绘制数量
// 按实体 ID 升序绘制，较新的雪花覆盖同一单元中的旧雪花。
func (r *Renderer) Draw(em *ecs.EntityManager) int {
	r.screen.SetStyle(r.bgStyle)
	r.screen.Clear()

	cols, rows := r.screen.Size()
	drawn := 0
	for _, id := range ecs.GetEntitiesWith1[*components.SnowflakeComponent](em) {
		flake, ok := ecs.GetComponent[*components.SnowflakeComponent](em, id)
		if !ok || utils.Clamp01(flake.Opacity) < minVisibleOpacity {
			continue
		}
		col, row := r.Cell(flake)
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		r.screen.SetContent(col, row, Glyph(flake), nil, r.Style(flake))
		drawn++
	}
	return drawn
}

// DrawStatus 在最后一行左侧绘制状态文本
func (r *Renderer) DrawStatus(text string) {
	_, rows := r.screen.Size()
	if rows == 0 {
		return
	}
	style := r.bgStyle.Foreground(tcell.ColorGray)
	col := 0
	for _, ch := range text {
		r.screen.SetContent(col, rows-1, ch, nil, style)
		col++
	}
}

func toTcell(c colorful.Color) tcell.Color {
	cr, cg, cb := c.RGB255()
	return tcell.NewRGBColor(int32(cr), int32(cg), int32(cb))
}
