package minimap

import (
	"image"
	renderer "voxmap/internal/graphics/renderer"
	mm "voxmap/internal/minimap"
	"voxmap/internal/profiling"
)

// HUD draws a minimap in the top right corner every frame.
type HUD struct {
	gl      *GLRenderer
	minimap *mm.Minimap
}

// NewHUD creates a renderable drawing m through r.
func NewHUD(r *GLRenderer, m *mm.Minimap) *HUD {
	return &HUD{gl: r, minimap: m}
}

// Init initializes the GL side of the minimap
func (h *HUD) Init() error {
	return h.gl.Init()
}

// Render draws the minimap
func (h *HUD) Render(ctx renderer.RenderContext) {
	defer profiling.Track("renderer.renderMinimap")()
	h.minimap.DrawLegacy(image.Pt(ctx.Width, ctx.Height))
}

// Dispose releases the GL objects. The minimap must be closed first so its
// textures are already gone.
func (h *HUD) Dispose() {
	h.gl.Dispose()
}

func (h *HUD) SetViewport(width, height int) {
	h.gl.SetFramebufferSize(width, height)
}
