package entities

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/snowfall/pkg/components"
	"github.com/decker502/snowfall/pkg/config"
)

// SnowflakeSprites 按变体缓存程序生成的雪花贴图
// 贴图为白色，绘制时通过 ColorScale 着色。
// 必须在游戏循环 goroutine 上使用。
type SnowflakeSprites struct {
	images [components.SnowflakeVariantCount]*ebiten.Image
}

// NewSnowflakeSprites 创建空缓存，贴图在首次使用时生成
func NewSnowflakeSprites() *SnowflakeSprites {
	return &SnowflakeSprites{}
}

// Image 返回变体对应的贴图；未知变体返回 nil
func (s *SnowflakeSprites) Image(v components.SnowflakeVariant) *ebiten.Image {
	if !v.Valid() {
		return nil
	}
	if s.images[v] == nil {
		s.images[v] = renderSnowflakeSprite(v)
	}
	return s.images[v]
}

// Dispose 释放所有贴图
func (s *SnowflakeSprites) Dispose() {
	if s == nil {
		return
	}
	for i, img := range s.images {
		if img != nil {
			img.Deallocate()
			s.images[i] = nil
		}
	}
}

func renderSnowflakeSprite(v components.SnowflakeVariant) *ebiten.Image {
	img := ebiten.NewImage(config.SnowflakeSpriteSize, config.SnowflakeSpriteSize)
	c := float32(config.SnowflakeSpriteSize) / 2
	radius := c - 2

	switch v {
	case components.VariantStar:
		drawStar(img, c, radius)
	case components.VariantCrystal:
		drawCrystal(img, c, radius)
	}
	return img
}

// armPoint 返回第 i 条臂（共 6 条）上距中心 dist 处的点
func armPoint(c, dist float32, angle float64) (float32, float32) {
	return c + dist*float32(math.Cos(angle)), c + dist*float32(math.Sin(angle))
}

// drawStar 六条主臂，末端带短分叉
func drawStar(img *ebiten.Image, c, radius float32) {
	for i := 0; i < 6; i++ {
		angle := float64(i) * math.Pi / 3
		x, y := armPoint(c, radius, angle)
		vector.StrokeLine(img, c, c, x, y, 3, color.White, true)

		bx, by := armPoint(c, radius*0.7, angle)
		for _, side := range []float64{-1, 1} {
			tx := bx + radius*0.2*float32(math.Cos(angle+side*math.Pi/4))
			ty := by + radius*0.2*float32(math.Sin(angle+side*math.Pi/4))
			vector.StrokeLine(img, bx, by, tx, ty, 2, color.White, true)
		}
	}
	vector.DrawFilledCircle(img, c, c, radius*0.15, color.White, true)
}

// drawCrystal 六臂冰晶：中心六边形，每条臂两对 V 形分支
func drawCrystal(img *ebiten.Image, c, radius float32) {
	hex := radius * 0.25
	for i := 0; i < 6; i++ {
		angle := float64(i) * math.Pi / 3

		// 中心六边形
		hx0, hy0 := armPoint(c, hex, angle)
		hx1, hy1 := armPoint(c, hex, angle+math.Pi/3)
		vector.StrokeLine(img, hx0, hy0, hx1, hy1, 1.5, color.White, true)

		// 主臂
		x, y := armPoint(c, radius, angle)
		vector.StrokeLine(img, hx0, hy0, x, y, 2, color.White, true)

		for _, at := range []float32{0.5, 0.75} {
			bx, by := armPoint(c, radius*at, angle)
			length := radius * (1.05 - at) * 0.8
			for _, side := range []float64{-1, 1} {
				tx := bx + length*float32(math.Cos(angle+side*math.Pi/3))
				ty := by + length*float32(math.Sin(angle+side*math.Pi/3))
				vector.StrokeLine(img, bx, by, tx, ty, 1.5, color.White, true)
			}
		}
	}
}
