package renderer

import (
	"voxmap/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Renderer orchestrates rendering via renderable features
type Renderer struct {
	renderables []Renderable
	width       int
	height      int

	// ClearColor is used for the background of every frame.
	ClearColor mgl32.Vec4
}

// NewRenderer creates a new renderer with the given renderables
func NewRenderer(width, height int, rs ...Renderable) (*Renderer, error) {
	gl.Disable(gl.CULL_FACE)

	renderer := &Renderer{
		renderables: rs,
		ClearColor:  mgl32.Vec4{0.53, 0.81, 0.92, 1.0},
	}

	for i, r := range rs {
		if err := r.Init(); err != nil {
			// Dispose the ones already initialized
			for j := i - 1; j >= 0; j-- {
				rs[j].Dispose()
			}
			return nil, err
		}
	}
	renderer.UpdateViewport(width, height)

	return renderer, nil
}

// Render clears the frame and renders all features in order
func (r *Renderer) Render(dt float64) {
	defer profiling.Track("renderer.Render")()

	c := r.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	ctx := RenderContext{
		Width:  r.width,
		Height: r.height,
		DT:     dt,
	}
	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// UpdateViewport updates the framebuffer size of all renderables
func (r *Renderer) UpdateViewport(width, height int) {
	r.width, r.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	for _, renderable := range r.renderables {
		renderable.SetViewport(width, height)
	}
}
