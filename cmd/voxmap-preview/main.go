// Command voxmap-preview renders the minimap of a generated world without
// a window, either to a PNG file or to the terminal.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"voxmap/internal/config"
	"voxmap/internal/game"
	"voxmap/internal/minimap"
	"voxmap/internal/registry"
	"voxmap/internal/resources"
	"voxmap/internal/world"

	"github.com/disintegration/imaging"
	fcolor "github.com/fatih/color"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
)

const labelHeight = 20

type preview struct {
	minimap  *minimap.Minimap
	streamer *game.Streamer
	center   world.Pos
}

func main() {
	var (
		mode      = flag.Int("mode", 1, "minimap mode index")
		modesFile = flag.String("modes", "", "YAML file replacing the default modes")
		seed      = flag.Int64("seed", 1, "terrain seed")
		radius    = flag.Int("radius", 10, "generated radius in mapblocks")
		x         = flag.Int("x", 0, "centre x")
		z         = flag.Int("z", 0, "centre z")
		square    = flag.Bool("square", false, "square minimap instead of round")
		out       = flag.String("out", "minimap.png", "output PNG")
		tui       = flag.Bool("tui", false, "interactive terminal view instead of a PNG")
		assetsDir = flag.String("assets", "assets", "asset directory")
		lang      = flag.String("lang", "en", "label language")
	)
	flag.Parse()

	p, err := newPreview(*assetsDir, *lang, *seed, *radius, *modesFile)
	if err != nil {
		fcolor.Red("preview: %v", err)
		os.Exit(1)
	}
	defer p.minimap.Close()

	p.minimap.SetShape(!*square)
	p.minimap.SetModeIndex(*mode)
	p.moveTo(world.Pos{X: *x, Y: world.NewGenerator(*seed).HeightAt(*x, *z) + 2, Z: *z})

	if *tui {
		if err := runTUI(p); err != nil {
			fcolor.Red("terminal: %v", err)
			os.Exit(1)
		}
		return
	}

	img := p.render()
	if img == nil {
		fcolor.Yellow("mode %d draws nothing", p.minimap.ModeIndex())
		return
	}
	if err := imaging.Save(withLabel(img, p.minimap.ModeDef().Label), *out); err != nil {
		fcolor.Red("save: %v", err)
		os.Exit(1)
	}
	st := p.minimap.Stats()
	fcolor.Green("wrote %s", *out)
	fmt.Printf("%s, %d blocks cached, %d scans\n", p.minimap.ModeDef().Label, st.Cached, st.Scans)
}

func newPreview(assetsDir, lang string, seed int64, radius int, modesFile string) (*preview, error) {
	defs := registry.NewDefault()
	if f, err := os.Open(filepath.Join(assetsDir, "nodes.yaml")); err == nil {
		err = defs.LoadColorTable(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}

	m, err := minimap.New(minimap.Options{
		NodeDefs:    defs,
		Settings:    config.New(),
		Images:      resources.NewCache(filepath.Join(assetsDir, "textures")),
		Language:    tag,
		Synchronous: true,
	})
	if err != nil {
		return nil, err
	}
	if modesFile != "" {
		f, err := os.Open(modesFile)
		if err != nil {
			m.Close()
			return nil, err
		}
		err = m.LoadModes(f)
		f.Close()
		if err != nil {
			m.Close()
			return nil, err
		}
	}

	s := game.NewStreamer(world.NewMap(), world.NewGenerator(seed), m, radius)
	s.Budget = 0
	return &preview{minimap: m, streamer: s}, nil
}

func (p *preview) moveTo(pos world.Pos) {
	p.center = pos
	p.minimap.SetPos(pos)
	p.streamer.Step(pos)
}

// render runs an update cycle and returns the composited minimap, or nil
// when the current mode draws nothing.
func (p *preview) render() *image.NRGBA {
	if p.minimap.ModeDef().Type == minimap.ModeOff {
		return nil
	}
	p.minimap.Update()
	p.minimap.MinimapTexture()
	canvas, _ := p.minimap.MinimapImage()
	return canvas
}

// withLabel returns img on a black background with label written below it.
func withLabel(img *image.NRGBA, label string) *image.NRGBA {
	b := img.Bounds()
	dst := imaging.New(b.Dx(), b.Dy()+labelHeight, color.NRGBA{A: 255})
	dst = imaging.Overlay(dst, img, image.Pt(0, 0), 1)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, b.Dy()+labelHeight-5),
	}
	d.DrawString(label)
	return dst
}
