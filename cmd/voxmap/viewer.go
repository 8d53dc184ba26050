package main

import (
	"time"
	"voxmap/internal/config"
	"voxmap/internal/game"
	renderer "voxmap/internal/graphics/renderer"
	"voxmap/internal/input"
	"voxmap/internal/minimap"
	"voxmap/internal/profiling"

	"github.com/fatih/color"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Viewer runs the window loop
type Viewer struct {
	window   *glfw.Window
	renderer *renderer.Renderer
	minimap  *minimap.Minimap
	session  *game.Session
	settings *config.Settings

	fpsLimiter    *game.FPSLimiter
	showProfiling bool

	frames           int
	lastFPSCheckTime time.Time
	lastTime         time.Time
}

func NewViewer(window *glfw.Window, r *renderer.Renderer, m *minimap.Minimap, s *game.Session, settings *config.Settings) *Viewer {
	return &Viewer{
		window:           window,
		renderer:         r,
		minimap:          m,
		session:          s,
		settings:         settings,
		fpsLimiter:       game.NewFPSLimiter(),
		lastFPSCheckTime: time.Now(),
		lastTime:         time.Now(),
	}
}

// Run loops until the window closes or Escape is pressed
func (v *Viewer) Run() {
	for !v.window.ShouldClose() {
		v.tick()
	}
}

func (v *Viewer) tick() {
	profiling.ResetFrame()
	now := time.Now()
	dt := now.Sub(v.lastTime).Seconds()
	v.lastTime = now

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	im := v.session.Input
	if im.JustPressed(input.ActionQuit) {
		v.window.SetShouldClose(true)
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		v.showProfiling = !v.showProfiling
	}
	v.session.Update(dt)

	v.renderer.Render(dt)

	func() { defer profiling.Track("glfw.SwapBuffers")(); v.window.SwapBuffers() }()
	im.PostUpdate()

	v.frames++
	if time.Since(v.lastFPSCheckTime) >= time.Second {
		v.report()
		v.frames = 0
		v.lastFPSCheckTime = time.Now()
	}

	v.fpsLimiter.Wait(v.settings.GetInt(config.KeyFPSLimit, 60))
}

func (v *Viewer) report() {
	if !v.showProfiling {
		return
	}
	st := v.minimap.Stats()
	color.New(color.FgHiBlack).Printf("FPS %d | map wakes %d scans %d cached %d queued %d | %s\n",
		v.frames, st.Wakes, st.Scans, st.Cached, st.Queued, profiling.TopN(4))
}

// Dispose closes the minimap before the GL objects it draws with
func (v *Viewer) Dispose() {
	v.minimap.Close()
	v.renderer.Dispose()
}
