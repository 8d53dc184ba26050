package minimap

import (
	"image"
	"log"
	"path/filepath"
	"voxmap/internal/graphics"
	mm "voxmap/internal/minimap"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	ShadersDir = "assets/shaders/minimap"

	// position xy + uv
	floatsPerVertex = 4
)

var (
	VertShader       = filepath.Join(ShadersDir, "minimap.vert")
	FragShader       = filepath.Join(ShadersDir, "minimap.frag")
	ReliefFragShader = filepath.Join(ShadersDir, "minimap_relief.frag")
)

// triangle strip order
var quadPositions = [4]mgl32.Vec2{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

// GLRenderer draws minimap quads and sprites with OpenGL. It implements
// the minimap.Renderer facade; all methods must run on the GL thread.
type GLRenderer struct {
	flat   *graphics.Shader
	relief *graphics.Shader
	vao    uint32
	vbo    uint32

	fbWidth  int
	fbHeight int
	saved    [4]int32

	// live textures by debug name, deleted on Dispose
	live map[*graphics.Texture]string
}

var _ mm.Renderer = (*GLRenderer)(nil)

// NewGLRenderer creates a renderer. Textures can be created right away;
// Init must run before anything is drawn.
func NewGLRenderer() *GLRenderer {
	return &GLRenderer{live: make(map[*graphics.Texture]string)}
}

// Init compiles the shaders and sets up the shared quad buffer.
func (r *GLRenderer) Init() error {
	if r.flat != nil {
		return nil
	}
	flat, err := graphics.NewShader(VertShader, FragShader)
	if err != nil {
		return err
	}
	relief, err := graphics.NewShader(VertShader, ReliefFragShader)
	if err != nil {
		flat.Delete()
		return err
	}
	r.flat, r.relief = flat, relief

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadPositions)*floatsPerVertex*4, nil, gl.DYNAMIC_DRAW)

	stride := int32(floatsPerVertex * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 2*4)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return nil
}

// SetFramebufferSize records the framebuffer size used to flip rect
// coordinates into GL window space.
func (r *GLRenderer) SetFramebufferSize(width, height int) {
	r.fbWidth, r.fbHeight = width, height
}

// Dispose releases the GL objects and any texture still alive.
func (r *GLRenderer) Dispose() {
	for tex, name := range r.live {
		log.Printf("minimap: texture %q still alive at shutdown", name)
		tex.Delete()
	}
	r.live = make(map[*graphics.Texture]string)
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.flat != nil {
		r.flat.Delete()
		r.flat = nil
	}
	if r.relief != nil {
		r.relief.Delete()
		r.relief = nil
	}
}

func (r *GLRenderer) NewTexture(name string, img image.Image) mm.Texture {
	tex := graphics.UploadTexture(img)
	r.live[tex] = name
	return tex
}

func (r *GLRenderer) DeleteTexture(tex mm.Texture) {
	t, ok := tex.(*graphics.Texture)
	if !ok || t == nil {
		return
	}
	delete(r.live, t)
	t.Delete()
}

// Begin saves the viewport and restricts drawing to rect, given in window
// pixels with the origin at the top left.
func (r *GLRenderer) Begin(rect image.Rectangle) {
	gl.GetIntegerv(gl.VIEWPORT, &r.saved[0])
	size := rect.Size()
	gl.Viewport(int32(rect.Min.X), int32(r.fbHeight-rect.Max.Y), int32(size.X), int32(size.Y))
	r.beginBlend()
}

func (r *GLRenderer) beginBlend() {
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.BindVertexArray(r.vao)
}

// End restores the state saved by Begin.
func (r *GLRenderer) End() {
	gl.Viewport(r.saved[0], r.saved[1], r.saved[2], r.saved[3])
	r.endBlend()
}

func (r *GLRenderer) endBlend() {
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (r *GLRenderer) DrawQuad(q mm.Quad) {
	tex, ok := q.Texture.(*graphics.Texture)
	if !ok || tex == nil || r.flat == nil {
		return
	}
	shader := r.flat
	heights, _ := q.Heightmap.(*graphics.Texture)
	if q.Material == mm.MaterialRelief && heights != nil {
		shader = r.relief
	}

	shader.Use()
	shader.SetMat3("transform", mgl32.HomogRotate2D(mgl32.DegToRad(q.Rotation)))
	shader.SetInt("tex", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex.ID)
	if shader == r.relief {
		size := heights.Size()
		shader.SetInt("heightmap", 1)
		shader.SetVec3("yawVec", q.YawVec)
		shader.SetVec2("texelSize", mgl32.Vec2{1 / float32(size.X), 1 / float32(size.Y)})
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, heights.ID)
		gl.ActiveTexture(gl.TEXTURE0)
	}

	r.uploadQuad(uvRect(q.Src, tex.Size()))
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, int32(len(quadPositions)))
}

// DrawSprites draws tex once per sprite over the whole framebuffer.
func (r *GLRenderer) DrawSprites(tex mm.Texture, sprites []mm.Sprite) {
	t, ok := tex.(*graphics.Texture)
	if !ok || t == nil || r.flat == nil || r.fbWidth == 0 || r.fbHeight == 0 {
		return
	}
	r.beginBlend()
	defer r.endBlend()

	r.flat.Use()
	r.flat.SetInt("tex", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	r.uploadQuad(uvRect(image.Rectangle{Max: t.Size()}, t.Size()))

	for _, s := range sprites {
		r.flat.SetMat3("transform", spriteTransform(s, r.fbWidth, r.fbHeight))
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, int32(len(quadPositions)))
	}
}

// uvRect maps src to texture coordinates as (u0, v0, u1, v1) with v0 at the
// top row of the image.
func uvRect(src image.Rectangle, size image.Point) mgl32.Vec4 {
	if size.X == 0 || size.Y == 0 {
		return mgl32.Vec4{0, 0, 1, 1}
	}
	w, h := float32(size.X), float32(size.Y)
	return mgl32.Vec4{
		float32(src.Min.X) / w,
		float32(src.Min.Y) / h,
		float32(src.Max.X) / w,
		float32(src.Max.Y) / h,
	}
}

// quadVertices interleaves the fixed corner positions with uv. The bottom
// corners sample the bottom image row.
func quadVertices(uv mgl32.Vec4) []float32 {
	u0, v0, u1, v1 := uv[0], uv[1], uv[2], uv[3]
	coords := [4]mgl32.Vec2{{u0, v1}, {u1, v1}, {u0, v0}, {u1, v0}}
	out := make([]float32, 0, len(quadPositions)*floatsPerVertex)
	for i, p := range quadPositions {
		out = append(out, p[0], p[1], coords[i][0], coords[i][1])
	}
	return out
}

func (r *GLRenderer) uploadQuad(uv mgl32.Vec4) {
	verts := quadVertices(uv)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, gl.Ptr(verts))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// spriteTransform maps the unit quad onto a sprite given in window pixels.
func spriteTransform(s mm.Sprite, fbWidth, fbHeight int) mgl32.Mat3 {
	w, h := float32(fbWidth), float32(fbHeight)
	cx := s.Center.X()/w*2 - 1
	cy := 1 - s.Center.Y()/h*2
	sx := s.HalfSize / w * 2
	sy := s.HalfSize / h * 2
	return mgl32.Translate2D(cx, cy).Mul3(mgl32.Scale2D(sx, sy))
}
