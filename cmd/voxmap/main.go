package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"runtime"
	"voxmap/internal/config"

	"github.com/fatih/color"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		settingsPath = flag.String("config", "voxmap.jsonc", "settings file (JSONC)")
		assetsDir    = flag.String("assets", "assets", "asset directory")
		seed         = flag.Int64("seed", 1, "terrain seed")
		lang         = flag.String("lang", "en", "language of the minimap labels")
	)
	flag.Parse()

	settings := config.Default()
	if err := settings.Load(*settingsPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			color.Red("settings: %v", err)
			os.Exit(1)
		}
		color.Yellow("no settings at %s, using defaults", *settingsPath)
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("glfw: %v", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		log.Fatalf("window: %v", err)
	}

	v, err := setupViewer(window, viewerOptions{
		Settings:  settings,
		AssetsDir: *assetsDir,
		Seed:      *seed,
		Language:  *lang,
	})
	if err != nil {
		log.Fatalf("setup: %v", err)
	}
	v.Run()
	v.Dispose()

	if err := settings.Save(*settingsPath); err != nil {
		color.Red("save settings: %v", err)
	}
}
