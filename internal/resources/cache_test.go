package resources

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestBuiltinImages(t *testing.T) {
	c := NewCache("")
	for _, name := range []string{
		MinimapMaskRound, MinimapMaskSquare,
		MinimapOverlayRound, MinimapOverlaySquare,
		PlayerMarker, ObjectMarkerRed,
	} {
		if c.Image(name) == nil {
			t.Errorf("no built-in image for %s", name)
		}
	}

	round := imaging.Clone(c.Image(MinimapMaskRound))
	if round.NRGBAAt(0, 0).A != 0 || round.NRGBAAt(256, 256).A == 0 {
		t.Error("round mask should be transparent in the corner and opaque in the centre")
	}
	square := imaging.Clone(c.Image(MinimapMaskSquare))
	if square.NRGBAAt(0, 0).A == 0 {
		t.Error("square mask corner is transparent")
	}
}

func TestMissingImageCachedAsNil(t *testing.T) {
	c := NewCache(t.TempDir())
	if c.Image("nope.png") != nil {
		t.Fatal("missing image is not nil")
	}
	if _, ok := c.images["nope.png"]; !ok {
		t.Fatal("miss was not cached")
	}
}

func TestDiskImageOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	img := imaging.New(8, 8, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	if err := imaging.Save(img, filepath.Join(dir, PlayerMarker)); err != nil {
		t.Fatal(err)
	}
	c := NewCache(dir)
	got := c.Image(PlayerMarker)
	if got == nil || got.Bounds() != image.Rect(0, 0, 8, 8) {
		t.Fatalf("loaded %v, want the 8x8 file", got)
	}
	// names without a file still fall back
	if c.Image(ObjectMarkerRed) == nil {
		t.Fatal("fallback missing when a directory is set")
	}
}

func TestPut(t *testing.T) {
	c := NewCache("")
	img := imaging.New(2, 2, color.NRGBA{})
	c.Put("custom.png", img)
	if c.Image("custom.png") != image.Image(img) {
		t.Fatal("Put image not returned")
	}
}
