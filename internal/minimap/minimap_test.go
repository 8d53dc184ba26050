package minimap

import (
	"fmt"
	"image"
	"testing"
	"time"
	"voxmap/internal/config"
	"voxmap/internal/registry"
	"voxmap/internal/resources"
	"voxmap/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

type fakeTexture struct {
	name string
	size image.Point
}

func (t *fakeTexture) Size() image.Point { return t.size }

type fakeRenderer struct {
	created int
	deleted int
	calls   []string
	quads   []Quad
	sprites []Sprite
}

func (r *fakeRenderer) NewTexture(name string, img image.Image) Texture {
	r.created++
	return &fakeTexture{name: name, size: img.Bounds().Size()}
}

func (r *fakeRenderer) DeleteTexture(Texture) { r.deleted++ }

func (r *fakeRenderer) Begin(rect image.Rectangle) {
	r.calls = append(r.calls, fmt.Sprintf("begin %v", rect))
}

func (r *fakeRenderer) DrawQuad(q Quad) {
	r.calls = append(r.calls, "quad "+q.Texture.(*fakeTexture).name)
	r.quads = append(r.quads, q)
}

func (r *fakeRenderer) End() { r.calls = append(r.calls, "end") }

func (r *fakeRenderer) DrawSprites(tex Texture, sprites []Sprite) {
	r.calls = append(r.calls, "sprites "+tex.(*fakeTexture).name)
	r.sprites = append(r.sprites, sprites...)
}

func newTestMinimap(t *testing.T, opts Options) *Minimap {
	t.Helper()
	if opts.NodeDefs == nil {
		opts.NodeDefs = registry.NewDefault()
	}
	if opts.Settings == nil {
		opts.Settings = config.New()
	}
	if opts.Images == nil {
		opts.Images = resources.NewCache("")
	}
	opts.Synchronous = true
	m, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

// useMode replaces the mode list with a single mode and activates it.
func useMode(t *testing.T, m *Minimap, mode ModeDef) {
	t.Helper()
	m.ClearModes()
	if err := m.AddMode(mode); err != nil {
		t.Fatalf("AddMode(%+v): %v", mode, err)
	}
	m.SetModeIndex(0)
}

// publishScan installs scan as if the update thread had just produced it.
func publishScan(m *Minimap, scan []Pixel) {
	m.scan.mu.Lock()
	m.scan.scan = append(m.scan.scan[:0], scan...)
	m.scan.invalidated = false
	m.scan.mu.Unlock()
}

func filledMapblock(n world.Node, height, air uint16) *Mapblock {
	mb := &Mapblock{}
	for i := range mb.Data {
		mb.Data[i] = Pixel{Node: n, Height: height, AirCount: air}
	}
	return mb
}

func TestNewRequiresNodeDefs(t *testing.T) {
	if _, err := New(Options{Synchronous: true}); err == nil {
		t.Fatal("expected error without node definitions")
	}
}

func TestNewStartsHidden(t *testing.T) {
	m := newTestMinimap(t, Options{})
	if got := m.ModeDef().Type; got != ModeOff {
		t.Errorf("initial mode = %v, want off", got)
	}
	if m.ModeIndex() != 0 {
		t.Errorf("initial index = %d", m.ModeIndex())
	}
	if m.MaxModeIndex() != 6 {
		t.Errorf("MaxModeIndex = %d, want 6", m.MaxModeIndex())
	}
	if tex := m.MinimapTexture(); tex != nil {
		t.Errorf("texture before first scan = %v, want nil", tex)
	}
}

func TestOnReadyRunsOnce(t *testing.T) {
	calls := 0
	var got *Minimap
	m := newTestMinimap(t, Options{OnReady: []func(*Minimap){func(m *Minimap) {
		calls++
		got = m
	}}})
	if calls != 1 || got != m {
		t.Fatalf("OnReady calls = %d, minimap = %p, want 1, %p", calls, got, m)
	}
}

func TestEndToEndSingleBlock(t *testing.T) {
	const n = world.ContentSand
	wm := world.NewMap()
	b := wm.Block(world.BlockPos{}, true)
	b.Fill(world.Node{Content: n})

	m := newTestMinimap(t, Options{})
	useMode(t, m, ModeDef{Type: ModeSurface, MapSize: 16, ScanHeight: 16})
	m.AddBlock(world.BlockPos{}, ScanMapblock(wm, world.BlockPos{}))
	m.SetPos(world.Pos{X: 8, Y: 8, Z: 8})
	m.Update()

	if s := m.Stats(); s.Cached != 1 || s.Scans != 1 {
		t.Fatalf("stats = %+v, want 1 cached block and 1 scan", s)
	}
	m.scan.mu.Lock()
	defer m.scan.mu.Unlock()
	if len(m.scan.scan) != 16*16 {
		t.Fatalf("scan has %d pixels, want 256", len(m.scan.scan))
	}
	for i, px := range m.scan.scan {
		if px.Node.Content != n || px.Height != 15 {
			t.Fatalf("pixel %d = %+v, want content %d at height 15", i, px, n)
		}
	}
}

func TestEvictionShowsAir(t *testing.T) {
	m := newTestMinimap(t, Options{})
	useMode(t, m, ModeDef{Type: ModeSurface, MapSize: 16, ScanHeight: 16})
	m.SetPos(world.Pos{X: 8, Y: 8, Z: 8})
	m.AddBlock(world.BlockPos{}, filledMapblock(world.Node{Content: world.ContentStone}, 4, 0))
	m.Update()
	if got := m.scan.scan[0].Node.Content; got != world.ContentStone {
		t.Fatalf("before eviction pixel = %d, want stone", got)
	}

	// consume the scan so the next cycle may rescan
	m.MinimapTexture()
	m.AddBlock(world.BlockPos{}, nil)
	m.Update()

	if s := m.Stats(); s.Cached != 0 {
		t.Fatalf("cached = %d after eviction", s.Cached)
	}
	for i, px := range m.scan.scan {
		if px != (Pixel{}) {
			t.Fatalf("pixel %d = %+v after eviction, want air", i, px)
		}
	}
}

func TestSetPosSameValueWakesOnce(t *testing.T) {
	m := newTestMinimap(t, Options{})
	p := world.Pos{X: 3, Y: 4, Z: 5}
	before := m.Stats().Wakes
	m.SetPos(p)
	m.SetPos(p)
	if got := m.Stats().Wakes - before; got != 1 {
		t.Fatalf("wakes = %d, want 1", got)
	}
	if m.Pos() != p {
		t.Fatalf("Pos = %v, want %v", m.Pos(), p)
	}
	m.scan.mu.Lock()
	old := m.scan.oldPos
	m.scan.mu.Unlock()
	if old != (world.Pos{}) {
		t.Errorf("oldPos = %v, want origin", old)
	}
}

func TestShapeFollowsSettings(t *testing.T) {
	s := config.New()
	s.SetBool(config.KeyMinimapShapeRound, false)
	m := newTestMinimap(t, Options{Settings: s})
	if m.Shape() {
		t.Fatal("shape should start square")
	}

	m.ToggleShape()
	if !m.Shape() || !s.GetBool(config.KeyMinimapShapeRound) {
		t.Fatalf("after toggle: shape round %v, setting %v", m.Shape(), s.GetBool(config.KeyMinimapShapeRound))
	}

	s.SetBool(config.KeyMinimapShapeRound, false)
	if m.Shape() {
		t.Fatal("shape did not follow setting change")
	}

	m.Close()
	s.SetBool(config.KeyMinimapShapeRound, true)
	if m.Shape() {
		t.Fatal("closed minimap still follows settings")
	}
}

func TestScanHeightSetting(t *testing.T) {
	for _, double := range []bool{false, true} {
		s := config.New()
		s.SetBool(config.KeyMinimapDoubleScanHeight, double)
		m := newTestMinimap(t, Options{Settings: s})
		m.SetModeIndex(1)
		want := 128
		if double {
			want = 256
		}
		if got := m.ModeDef().ScanHeight; got != want {
			t.Errorf("double=%v: surface scan height = %d, want %d", double, got, want)
		}
		m.SetModeIndex(4)
		if got := m.ModeDef().ScanHeight; got != radarScanHeight {
			t.Errorf("radar scan height = %d, want %d", got, radarScanHeight)
		}
	}
}

func TestYawVec(t *testing.T) {
	m := newTestMinimap(t, Options{})
	m.SetAngle(90)

	m.SetShape(false)
	if diff := cmp.Diff(mgl32.Vec3{1, 0, 1}, m.YawVec()); diff != "" {
		t.Errorf("square yaw vec (-want +got):\n%s", diff)
	}

	m.SetShape(true)
	if got := m.YawVec(); !got.ApproxEqualThreshold(mgl32.Vec3{0, 1, 1}, 1e-5) {
		t.Errorf("round yaw vec = %v, want (0, 1, 1)", got)
	}
}

func TestDrawSequence(t *testing.T) {
	r := &fakeRenderer{}
	m := newTestMinimap(t, Options{Renderer: r})
	m.SetShape(true)
	useMode(t, m, ModeDef{Type: ModeSurface, MapSize: 16, ScanHeight: 16})
	m.SetAngle(30)
	m.AddMarker(mgl32.Vec3{0.5, 0, 0.5})
	publishScan(m, make([]Pixel, 16*16))

	rect := image.Rect(0, 0, 200, 200)
	m.Draw(rect)

	want := []string{
		"begin (0,0)-(200,200)",
		"quad minimap_texture",
		"quad " + resources.MinimapOverlayRound,
		"quad " + resources.PlayerMarker,
		"end",
		"sprites " + resources.ObjectMarkerRed,
	}
	if diff := cmp.Diff(want, r.calls); diff != "" {
		t.Fatalf("draw calls (-want +got):\n%s", diff)
	}
	if q := r.quads[0]; q.Rotation != 330 || q.Material != MaterialRelief || q.Heightmap == nil {
		t.Errorf("minimap quad = %+v, want rotation 330 with relief material", q)
	}
	if q := r.quads[1]; q.Rotation != 330 {
		t.Errorf("overlay rotation = %v, want 330", q.Rotation)
	}
	if q := r.quads[2]; q.Rotation != 0 {
		t.Errorf("round player marker rotation = %v, want 0", q.Rotation)
	}
	wantSprite := Sprite{Center: mgl32.Vec2{100, 100}, HalfSize: 5}
	if len(r.sprites) != 1 || !r.sprites[0].Center.ApproxEqualThreshold(wantSprite.Center, 1e-3) ||
		!mgl32.FloatEqualThreshold(r.sprites[0].HalfSize, wantSprite.HalfSize, 1e-4) {
		t.Errorf("sprites = %+v, want [%+v]", r.sprites, wantSprite)
	}
}

func TestDrawSquareRadar(t *testing.T) {
	r := &fakeRenderer{}
	m := newTestMinimap(t, Options{Renderer: r})
	m.SetShape(false)
	useMode(t, m, ModeDef{Type: ModeRadar, MapSize: 16})
	m.SetAngle(45)
	publishScan(m, make([]Pixel, 16*16))

	m.Draw(image.Rect(10, 10, 110, 110))
	if len(r.quads) != 3 {
		t.Fatalf("drew %d quads, want 3", len(r.quads))
	}
	if q := r.quads[0]; q.Rotation != 0 || q.Material != MaterialTransparent {
		t.Errorf("square radar quad = %+v", q)
	}
	if got := r.quads[1].Texture.(*fakeTexture).name; got != resources.MinimapOverlaySquare {
		t.Errorf("overlay = %s", got)
	}
	if q := r.quads[2]; q.Rotation != 45 {
		t.Errorf("square player marker rotation = %v, want 45", q.Rotation)
	}
}

func TestDrawSkips(t *testing.T) {
	r := &fakeRenderer{}
	m := newTestMinimap(t, Options{Renderer: r})

	m.Draw(image.Rect(0, 0, 100, 100))
	if len(r.calls) != 0 {
		t.Fatalf("off mode drew %v", r.calls)
	}

	m.SetModeIndex(1)
	m.Draw(image.Rect(0, 0, 100, 100))
	if len(r.calls) != 0 {
		t.Fatalf("drew %v before the first scan", r.calls)
	}

	publishScan(m, make([]Pixel, 256*256))
	m.Draw(image.Rectangle{})
	if len(r.calls) != 0 {
		t.Fatalf("empty rect drew %v", r.calls)
	}
}

func TestCloseReleasesTextures(t *testing.T) {
	r := &fakeRenderer{}
	m := newTestMinimap(t, Options{Renderer: r})
	useMode(t, m, ModeDef{Type: ModeRadar, MapSize: 32})
	publishScan(m, make([]Pixel, 32*32))
	m.MinimapTexture()
	m.AddBlock(world.BlockPos{X: 1}, &Mapblock{})

	m.Close()
	if r.deleted != r.created {
		t.Fatalf("deleted %d of %d textures", r.deleted, r.created)
	}
	if s := m.Stats(); s.Queued != 0 || s.Cached != 0 {
		t.Fatalf("stats after close = %+v", s)
	}
	m.Close()
}

func TestUpdateThreadRescansInBackground(t *testing.T) {
	m, err := New(Options{
		NodeDefs: registry.NewDefault(),
		Settings: config.New(),
		Images:   resources.NewCache(""),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	m.ClearModes()
	if err := m.AddMode(ModeDef{Type: ModeSurface, MapSize: 32, ScanHeight: 32}); err != nil {
		t.Fatal(err)
	}
	m.SetModeIndex(0)
	for x := -1; x <= 0; x++ {
		for z := -1; z <= 0; z++ {
			m.AddBlock(world.BlockPos{X: x, Z: z}, filledMapblock(world.Node{Content: world.ContentStone}, 7, 8))
		}
	}
	m.SetPos(world.Pos{Y: 8})

	deadline := time.Now().Add(5 * time.Second)
	for m.MinimapTexture(); m.Stats().Scans == 0 || m.Stats().Cached != 4; m.MinimapTexture() {
		if time.Now().After(deadline) {
			t.Fatalf("no rescan, stats = %+v", m.Stats())
		}
		time.Sleep(time.Millisecond)
	}

	canvas, _ := m.MinimapImage()
	deadline = time.Now().Add(5 * time.Second)
	for canvas == nil {
		if time.Now().After(deadline) {
			t.Fatal("texture never built")
		}
		time.Sleep(time.Millisecond)
		m.MinimapTexture()
		canvas, _ = m.MinimapImage()
	}
}
