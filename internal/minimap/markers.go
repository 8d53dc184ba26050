package minimap

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// markerScale is the half size of an object marker relative to the minimap width.
const markerScale = 0.025

// AddMarker tracks an object at a scene-space position.
func (m *Minimap) AddMarker(pos mgl32.Vec3) {
	m.render.markers = append(m.render.markers, pos)
}

// RemoveMarker stops tracking the first marker at pos.
func (m *Minimap) RemoveMarker(pos mgl32.Vec3) bool {
	for i, p := range m.render.markers {
		if p == pos {
			m.render.markers = append(m.render.markers[:i], m.render.markers[i+1:]...)
			return true
		}
	}
	return false
}

// Markers returns the tracked positions.
func (m *Minimap) Markers() []mgl32.Vec3 {
	return m.render.markers
}

// UpdateActiveMarkers projects the tracked markers into the scan volume of
// the current mode and keeps those inside it and inside the shape mask.
// Survivors are laid out as sprites over rect.
func (m *Minimap) UpdateActiveMarkers(rect image.Rectangle) {
	m.render.activeMarkers = m.render.activeMarkers[:0]
	m.render.sprites = m.render.sprites[:0]

	st := &m.scan
	st.mu.Lock()
	mode := st.mode
	pos := st.pos
	round := st.shapeRound
	st.mu.Unlock()

	if mode.MapSize <= 0 || mode.ScanHeight <= 0 {
		return
	}
	origin := mgl32.Vec3{
		float32(pos.X - mode.MapSize/2),
		float32(pos.Y - mode.ScanHeight/2),
		float32(pos.Z - mode.MapSize/2),
	}
	mask := m.render.masks[shapeIndex(round)]
	size := float32(mode.MapSize)

	for _, mk := range m.render.markers {
		p := mk.Add(m.render.camOffset).Sub(origin)
		x := int(math.Floor(float64(p.X())))
		y := int(math.Floor(float64(p.Y())))
		z := int(math.Floor(float64(p.Z())))
		if x < 0 || x >= mode.MapSize ||
			y < 0 || y >= mode.ScanHeight ||
			z < 0 || z >= mode.MapSize {
			continue
		}
		tx := int(float32(x) / size * MinimapMax)
		tz := int(float32(z) / size * MinimapMax)
		if !maskVisible(mask, tx, MinimapMax-1-tz) {
			continue
		}
		m.render.activeMarkers = append(m.render.activeMarkers, mgl32.Vec2{
			float32(tx)/MinimapMax - 0.5,
			(1 - float32(tz)/MinimapMax) - 0.5,
		})
	}

	if rect.Empty() {
		return
	}
	w, h := float32(rect.Dx()), float32(rect.Dy())
	half := markerScale * w
	rot := mgl32.Rotate2D(mgl32.DegToRad(m.render.angle))
	for _, v := range m.render.activeMarkers {
		if round {
			v = rot.Mul2x1(v)
		}
		m.render.sprites = append(m.render.sprites, Sprite{
			Center: mgl32.Vec2{
				float32(rect.Min.X) + (v.X()+0.5)*w,
				float32(rect.Min.Y) + (v.Y()+0.5)*h,
			},
			HalfSize: half,
		})
	}
}

// ActiveMarkers returns the markers kept by the last UpdateActiveMarkers, in
// minimap space: both axes in [-0.5, 0.5], y pointing down the screen.
func (m *Minimap) ActiveMarkers() []mgl32.Vec2 {
	return m.render.activeMarkers
}

// MarkerSprites returns the screen rectangles of the last UpdateActiveMarkers.
func (m *Minimap) MarkerSprites() []Sprite {
	return m.render.sprites
}
