package resources

import (
	"errors"
	"image"
	"image/color"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// Names of the images the minimap loads.
const (
	MinimapMaskRound     = "minimap_mask_round.png"
	MinimapMaskSquare    = "minimap_mask_square.png"
	MinimapOverlayRound  = "minimap_overlay_round.png"
	MinimapOverlaySquare = "minimap_overlay_square.png"
	PlayerMarker         = "player_marker.png"
	ObjectMarkerRed      = "object_marker_red.png"
)

// Cache loads images by name from a directory and keeps them decoded.
// A name that fails to load is logged once and cached as nil.
type Cache struct {
	dir       string
	mu        sync.Mutex
	images    map[string]image.Image
	fallbacks map[string]func() image.Image
}

// NewCache creates a cache reading from dir. An empty dir disables disk
// loading; only built-in images are served.
func NewCache(dir string) *Cache {
	return &Cache{
		dir:       dir,
		images:    make(map[string]image.Image),
		fallbacks: builtinImages(),
	}
}

// Image returns the decoded image, or nil when it is unavailable.
func (c *Cache) Image(name string) image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.images[name]; ok {
		return img
	}
	img, err := c.load(name)
	if err != nil {
		log.Printf("resources: %s not available: %v", name, err)
		img = nil
	}
	c.images[name] = img
	return img
}

// Put stores img under name, replacing anything cached.
func (c *Cache) Put(name string, img image.Image) {
	c.mu.Lock()
	c.images[name] = img
	c.mu.Unlock()
}

func (c *Cache) load(name string) (image.Image, error) {
	if c.dir != "" {
		img, err := imaging.Open(filepath.Join(c.dir, name))
		if err == nil {
			return img, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if gen, ok := c.fallbacks[name]; ok {
		return gen(), nil
	}
	return nil, os.ErrNotExist
}

const maskSize = 512

func builtinImages() map[string]func() image.Image {
	return map[string]func() image.Image{
		MinimapMaskRound:     func() image.Image { return disc(maskSize, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, 0) },
		MinimapMaskSquare:    func() image.Image { return imaging.New(maskSize, maskSize, color.NRGBA{R: 255, G: 255, B: 255, A: 255}) },
		MinimapOverlayRound:  func() image.Image { return disc(maskSize, color.NRGBA{R: 40, G: 40, B: 40, A: 255}, 0.96) },
		MinimapOverlaySquare: func() image.Image { return frame(maskSize, maskSize/64, color.NRGBA{R: 40, G: 40, B: 40, A: 255}) },
		PlayerMarker:         playerArrow,
		ObjectMarkerRed:      func() image.Image { return disc(16, color.NRGBA{R: 220, G: 30, B: 30, A: 255}, 0) },
	}
}

// disc draws a filled circle, or a ring when inner > 0 (fraction of the radius).
func disc(size int, c color.NRGBA, inner float64) *image.NRGBA {
	img := imaging.New(size, size, color.NRGBA{})
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-r, float64(y)+0.5-r) / r
			if d <= 1 && d >= inner {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}

func frame(size, width int, c color.NRGBA) *image.NRGBA {
	img := imaging.New(size, size, color.NRGBA{})
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x < width || y < width || x >= size-width || y >= size-width {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}

// playerArrow is an upward-pointing triangle filling the middle of a 64px square.
func playerArrow() image.Image {
	const size = 64
	img := imaging.New(size, size, color.NRGBA{})
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 24; y < 40; y++ {
		half := (y - 24) / 2
		for x := size/2 - half; x <= size/2+half; x++ {
			img.SetNRGBA(x, y, white)
		}
	}
	return img
}
