package systems

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/snowfall/pkg/components"
	"github.com/decker502/snowfall/pkg/ecs"
	"github.com/decker502/snowfall/pkg/utils"
)

// SpriteSource 提供雪花变体贴图
type SpriteSource interface {
	Image(v components.SnowflakeVariant) *ebiten.Image
}

// SnowflakeRenderSystem 绘制存活的雪花
//
// 绘制顺序为实体 ID 升序：先生成的在下层，新生成的覆盖在上面。
// 变换顺序与组件一致：绕贴图中心旋转、缩放，再平移到 (X, Y)。
type SnowflakeRenderSystem struct {
	entityManager *ecs.EntityManager
	sprites       SpriteSource

	opts ebiten.DrawImageOptions // 复用，避免每帧分配
}

// NewSnowflakeRenderSystem 创建雪花渲染系统
func NewSnowflakeRenderSystem(em *ecs.EntityManager, sprites SpriteSource) *SnowflakeRenderSystem {
	return &SnowflakeRenderSystem{
		entityManager: em,
		sprites:       sprites,
	}
}

// Draw 绘制所有雪花，返回实际绘制的数量
func (s *SnowflakeRenderSystem) Draw(screen *ebiten.Image) int {
	if s.sprites == nil {
		return 0
	}
	drawn := 0
	for _, id := range ecs.GetEntitiesWith1[*components.SnowflakeComponent](s.entityManager) {
		flake, ok := ecs.GetComponent[*components.SnowflakeComponent](s.entityManager, id)
		if !ok {
			continue
		}
		opacity := RenderOpacity(flake.Opacity)
		if opacity <= 0 {
			continue
		}
		img := s.sprites.Image(flake.Variant)
		if img == nil {
			continue
		}

		s.opts.GeoM = SnowflakeGeoM(flake, float64(img.Bounds().Dx()), float64(img.Bounds().Dy()))
		s.opts.ColorScale.Reset()
		if flake.Tint != nil {
			s.opts.ColorScale.ScaleWithColor(flake.Tint)
		}
		s.opts.ColorScale.ScaleAlpha(float32(opacity))
		s.opts.Filter = ebiten.FilterLinear

		screen.DrawImage(img, &s.opts)
		drawn++
	}
	return drawn
}

// SnowflakeGeoM 计算雪花贴图的变换矩阵
// (X, Y) 是贴图左上角在表面上的位置，旋转与缩放以贴图中心为原点。
func SnowflakeGeoM(flake *components.SnowflakeComponent, width, height float64) ebiten.GeoM {
	var g ebiten.GeoM
	halfW, halfH := width/2, height/2
	g.Translate(-halfW, -halfH)
	g.Rotate(flake.Rotation * math.Pi / 180)
	g.Scale(flake.Scale, flake.Scale)
	g.Translate(halfW, halfH)
	g.Translate(flake.X, flake.Y)
	return g
}

// RenderOpacity 渲染时把透明度截断到 [0, 1]
// OpacityFactor 可以让存储的透明度大于 1。
func RenderOpacity(opacity float64) float64 {
	return utils.Clamp01(opacity)
}
