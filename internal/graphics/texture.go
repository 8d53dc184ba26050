package graphics

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Texture is a 2D RGBA texture living on the GPU.
type Texture struct {
	ID     uint32
	width  int
	height int
}

// Size returns the texture dimensions in texels.
func (t *Texture) Size() image.Point {
	return image.Pt(t.width, t.height)
}

// UploadTexture copies img into a new nearest-filtered, edge-clamped
// texture. Row 0 of the image is stored first, so v=0 samples the top row.
func UploadTexture(img image.Image) *Texture {
	nrgba := imaging.Clone(img)
	size := nrgba.Rect.Size()

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	var pix *uint8
	if len(nrgba.Pix) > 0 {
		pix = &nrgba.Pix[0]
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(size.X),
		int32(size.Y),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(pix),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &Texture{ID: id, width: size.X, height: size.Y}
}

// Delete frees the GPU texture.
func (t *Texture) Delete() {
	if t.ID != 0 {
		gl.DeleteTextures(1, &t.ID)
		t.ID = 0
	}
}
