package main

import (
	"fmt"
	"os"
	"path/filepath"
	"voxmap/internal/config"
	"voxmap/internal/game"
	mapgl "voxmap/internal/graphics/renderables/minimap"
	renderer "voxmap/internal/graphics/renderer"
	"voxmap/internal/input"
	"voxmap/internal/minimap"
	"voxmap/internal/registry"
	"voxmap/internal/resources"
	"voxmap/internal/world"

	"github.com/fatih/color"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"golang.org/x/text/language"
)

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(900, 600, "voxmap", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, err
	}

	// Disable V-Sync; we'll use our own FPS limiter
	glfw.SwapInterval(0)

	return window, nil
}

type viewerOptions struct {
	Settings  *config.Settings
	AssetsDir string
	Seed      int64
	Language  string
}

func loadNodeDefs(dir string) (*registry.Registry, error) {
	defs := registry.NewDefault()
	f, err := os.Open(filepath.Join(dir, "nodes.yaml"))
	if os.IsNotExist(err) {
		return defs, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := defs.LoadColorTable(f); err != nil {
		return nil, err
	}
	return defs, nil
}

func loadModes(m *minimap.Minimap, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.LoadModes(f)
}

func setupViewer(window *glfw.Window, opts viewerOptions) (*Viewer, error) {
	defs, err := loadNodeDefs(opts.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("node colours: %w", err)
	}
	tag, err := language.Parse(opts.Language)
	if err != nil {
		color.Yellow("unknown language %q, using English", opts.Language)
		tag = language.English
	}

	glr := mapgl.NewGLRenderer()
	mm, err := minimap.New(minimap.Options{
		NodeDefs: defs,
		Settings: opts.Settings,
		Images:   resources.NewCache(filepath.Join(opts.AssetsDir, "textures")),
		Renderer: glr,
		Language: tag,
	})
	if err != nil {
		return nil, err
	}
	modesFile, _ := opts.Settings.Get(config.KeyMinimapModesFile)
	if err := loadModes(mm, modesFile); err != nil {
		mm.Close()
		return nil, fmt.Errorf("minimap modes: %w", err)
	}
	if !opts.Settings.GetBool(config.KeyEnableMinimap) {
		mm.ClearModes()
	}

	fbWidth, fbHeight := window.GetFramebufferSize()
	r, err := renderer.NewRenderer(fbWidth, fbHeight, mapgl.NewHUD(glr, mm))
	if err != nil {
		mm.Close()
		return nil, err
	}

	im := input.NewInputManager()
	im.SetKeyCallback(window)

	radius := opts.Settings.GetInt(config.KeyRenderDistance, 8)
	streamer := game.NewStreamer(world.NewMap(), world.NewGenerator(opts.Seed), mm, radius)
	session := game.NewSession(mm, streamer, im)
	session.OnModeChanged = printMode

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		r.UpdateViewport(width, height)
	})

	color.Green("voxmap: seed %d, view radius %d blocks", opts.Seed, radius)
	color.Cyan("F9 next minimap mode, Shift+F9 or F10 toggle shape, M/N add/remove marker")
	return NewViewer(window, r, mm, session, opts.Settings), nil
}

func printMode(mode minimap.ModeDef, round bool) {
	shape := "square"
	if round {
		shape = "round"
	}
	color.New(color.FgHiWhite, color.Bold).Printf("%s", mode.Label)
	fmt.Printf(" (%s)\n", shape)
}
