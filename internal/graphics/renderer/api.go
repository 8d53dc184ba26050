package renderer

// RenderContext provides shared context for all renderables
type RenderContext struct {
	// Framebuffer size in pixels.
	Width  int
	Height int
	DT     float64
}

// Renderable interface defines the lifecycle for renderable features
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}
