package minimap

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Texture is a GPU texture created by a Renderer.
type Texture interface {
	Size() image.Point
}

// Material selects the shader a quad is drawn with.
type Material int

const (
	// MaterialTransparent draws the texture with alpha blending.
	MaterialTransparent Material = iota
	// MaterialRelief shades the texture with its heightmap along YawVec.
	MaterialRelief
)

// Quad is one textured quad covering the current viewport.
type Quad struct {
	Texture   Texture
	Heightmap Texture
	Material  Material
	// Rotation about the viewport centre, in degrees.
	Rotation float32
	YawVec   mgl32.Vec3
	// Src is the sampled region of Texture in texels.
	Src image.Rectangle
}

// Sprite is a square marker in screen pixels.
type Sprite struct {
	Center   mgl32.Vec2
	HalfSize float32
}

// Renderer is the texture sink and draw facade the minimap renders through.
// All methods are called on the render thread.
type Renderer interface {
	NewTexture(name string, img image.Image) Texture
	DeleteTexture(tex Texture)
	// Begin sets the viewport to rect and resets the transform state.
	Begin(rect image.Rectangle)
	DrawQuad(q Quad)
	// End restores the state saved by Begin.
	End()
	DrawSprites(tex Texture, sprites []Sprite)
}

func fullRect(tex Texture) image.Rectangle {
	return image.Rectangle{Max: tex.Size()}
}

// YawVec returns the light direction for the relief material.
func (m *Minimap) YawVec() mgl32.Vec3 {
	if m.Shape() {
		a := float64(mgl32.DegToRad(m.render.angle))
		return mgl32.Vec3{float32(math.Cos(a)), float32(math.Sin(a)), 1}
	}
	return mgl32.Vec3{1, 0, 1}
}

// Draw renders the minimap into rect of the current framebuffer: the map
// itself, the shape overlay, the player marker and the object markers.
func (m *Minimap) Draw(rect image.Rectangle) {
	if m.renderer == nil || rect.Empty() {
		return
	}
	mode := m.ModeDef()
	if mode.Type == ModeOff {
		return
	}
	tex := m.MinimapTexture()
	if tex == nil {
		return
	}
	round := m.Shape()
	r := m.renderer

	r.Begin(rect)
	q := Quad{
		Texture:   tex,
		Heightmap: m.render.heightmap,
		Material:  MaterialTransparent,
		YawVec:    m.YawVec(),
		Src:       fullRect(tex),
	}
	if round {
		q.Rotation = 360 - m.render.angle
	}
	switch mode.Type {
	case ModeSurface:
		if q.Heightmap != nil {
			q.Material = MaterialRelief
		}
	case ModeRadar, ModeTexture, ModeOff:
	}
	r.DrawQuad(q)

	if overlay := m.render.overlays[shapeIndex(round)]; overlay != nil {
		r.DrawQuad(Quad{
			Texture:  overlay,
			Material: MaterialTransparent,
			Rotation: q.Rotation,
			Src:      fullRect(overlay),
		})
	}

	if marker := m.render.playerMarker; marker != nil {
		pq := Quad{Texture: marker, Material: MaterialTransparent, Src: fullRect(marker)}
		if !round {
			pq.Rotation = m.render.angle
		}
		r.DrawQuad(pq)
	}
	r.End()

	m.UpdateActiveMarkers(rect)
	if m.render.objectMarker != nil && len(m.render.sprites) > 0 {
		r.DrawSprites(m.render.objectMarker, m.render.sprites)
	}
}

// DrawLegacy draws the minimap in the top right corner of a screen of the
// given size, a square a quarter of the screen height wide.
func (m *Minimap) DrawLegacy(screen image.Point) {
	size := screen.Y / 4
	m.Draw(image.Rect(screen.X-size-10, 10, screen.X-10, size+10))
}
