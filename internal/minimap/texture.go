package minimap

import (
	"image"
	"image/color"
	"voxmap/internal/profiling"
	"voxmap/internal/world"

	"github.com/disintegration/imaging"
)

// MinimapTexture returns the minimap texture, rebuilding it from the latest
// published scan when one is pending. Until a scan is ready the previous
// texture is returned; before the first scan that is nil.
func (m *Minimap) MinimapTexture() Texture {
	st := &m.scan
	st.mu.Lock()
	if st.invalidated && st.mode.Type != ModeTexture {
		st.mu.Unlock()
		return m.render.texture
	}
	defer profiling.Track("minimap.texture")()

	mode := st.mode
	round := st.shapeRound
	size := max(mode.MapSize, 1)
	img := imaging.New(size, size, color.NRGBA{})
	heights := imaging.New(size, size, color.NRGBA{})

	switch mode.Type {
	case ModeOff:
	case ModeSurface:
		if len(st.scan) >= size*size {
			m.blitSurface(img, heights, st.scan, size)
		}
	case ModeRadar:
		if len(st.scan) >= size*size {
			blitRadar(img, st.scan, size)
		}
	case ModeTexture:
		img = m.blitTexture(mode, st.pos)
	}
	st.invalidated = true
	rescan := st.needsRescan && mode.Type.scans()
	st.mu.Unlock()

	if rescan {
		m.thread.deferUpdate()
	}

	canvas := imaging.Resize(img, MinimapMax, MinimapMax, imaging.NearestNeighbor)
	applyMask(canvas, m.render.masks[shapeIndex(round)])
	heightmap := imaging.Resize(heights, MinimapMax, MinimapMax, imaging.NearestNeighbor)
	m.render.canvas = canvas
	m.render.heightImg = heightmap

	if m.renderer != nil {
		if m.render.texture != nil {
			m.renderer.DeleteTexture(m.render.texture)
		}
		if m.render.heightmap != nil {
			m.renderer.DeleteTexture(m.render.heightmap)
		}
		m.render.texture = m.renderer.NewTexture("minimap_texture", canvas)
		m.render.heightmap = m.renderer.NewTexture("minimap_heightmap", heightmap)
	}
	return m.render.texture
}

// MinimapImage returns the composited MinimapMax-square image behind the
// current texture and its heightmap; both are nil before the first build.
func (m *Minimap) MinimapImage() (canvas, heightmap *image.NRGBA) {
	return m.render.canvas, m.render.heightImg
}

// blitSurface writes node colours and heights with rows flipped so north is up.
func (m *Minimap) blitSurface(img, heights *image.NRGBA, scan []Pixel, size int) {
	for z := 0; z < size; z++ {
		row := size - z - 1
		for x := 0; x < size; x++ {
			px := scan[x+z*size]
			c := m.nodeDefs.Get(px.Node.Content).MinimapSurfaceColor()
			c.A = pixelAlpha
			img.SetNRGBA(x, row, c)
			heights.SetNRGBA(x, row, heightColor(px.Height))
		}
	}
}

func blitRadar(img *image.NRGBA, scan []Pixel, size int) {
	for z := 0; z < size; z++ {
		row := size - z - 1
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, row, radarColor(scan[x+z*size].AirCount))
		}
	}
}

// blitTexture pastes the mode's image centred on pos over an opaque black square.
func (m *Minimap) blitTexture(mode ModeDef, pos world.Pos) *image.NRGBA {
	size := mode.MapSize
	base := imaging.New(size, size, color.NRGBA{A: 255})
	if m.images == nil {
		return base
	}
	src := m.images.Image(mode.Texture)
	if src == nil {
		return base
	}
	b := src.Bounds()
	at := image.Pt(
		((size-b.Dx())>>1)-pos.X/mode.Scale,
		((size-b.Dy())>>1)+pos.Z/mode.Scale,
	)
	return imaging.Paste(base, src, at)
}
