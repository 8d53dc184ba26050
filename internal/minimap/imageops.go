package minimap

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const pixelAlpha = 240

// radarColor shades a column by how much open air it has.
func radarColor(air uint16) color.NRGBA {
	g := 0
	if air > 0 {
		g = min(32+int(air)*8, 255)
	}
	return color.NRGBA{G: uint8(g), A: pixelAlpha}
}

func heightColor(h uint16) color.NRGBA {
	v := uint8(min(h, 255))
	return color.NRGBA{R: v, G: v, B: v, A: 255}
}

// toMaxSquare returns img as an MinimapMax x MinimapMax NRGBA image,
// scaling with nearest-neighbour sampling when the size differs.
func toMaxSquare(img image.Image) *image.NRGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	if b.Dx() == MinimapMax && b.Dy() == MinimapMax {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, MinimapMax, MinimapMax, imaging.NearestNeighbor)
}

// applyMask clears every pixel of dst whose mask pixel is fully transparent.
// dst and mask must have the same bounds.
func applyMask(dst, mask *image.NRGBA) {
	if mask == nil {
		return
	}
	b := dst.Bounds()
	for y := 0; y < b.Dy(); y++ {
		drow := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()*4]
		mrow := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()*4]
		for i := 3; i < len(mrow); i += 4 {
			if mrow[i] == 0 {
				drow[i-3], drow[i-2], drow[i-1], drow[i] = 0, 0, 0, 0
			}
		}
	}
}

// maskVisible reports whether the mask is opaque at (x, y); a nil mask shows everything.
func maskVisible(mask *image.NRGBA, x, y int) bool {
	if mask == nil {
		return true
	}
	if !(image.Point{X: x, Y: y}).In(mask.Rect) {
		return false
	}
	return mask.NRGBAAt(x, y).A != 0
}
