// Package minimap maintains a top-down map of the blocks around the player.
//
// Block snapshots (Mapblock) are handed to AddBlock by the world layer and
// merged by a background update thread, which rebuilds the scan buffer of
// the active mode whenever the focus or the mode changes. The render thread
// turns the latest scan into a texture and draws it through a Renderer.
package minimap

import (
	"errors"
	"image"
	"voxmap/internal/config"
	"voxmap/internal/registry"
	"voxmap/internal/resources"
	"voxmap/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NodeDefs resolves node content ids to display attributes.
type NodeDefs interface {
	Get(c world.Content) *registry.NodeDef
}

// ImageSource loads images by name; nil means unavailable.
type ImageSource interface {
	Image(name string) image.Image
}

// Options configures a Minimap.
type Options struct {
	NodeDefs NodeDefs
	// Settings defaults to config.Default().
	Settings *config.Settings
	Images   ImageSource
	// Renderer may be nil for headless use; textures are then never
	// created but MinimapImage still reflects the latest build.
	Renderer Renderer
	// OnReady hooks run once when the minimap is constructed.
	OnReady []func(*Minimap)
	// Language selects the translation of mode labels.
	Language language.Tag
	// Synchronous disables the background goroutine; Update then runs an
	// update cycle on the caller's goroutine.
	Synchronous bool
}

// Minimap owns the update thread and the render side state.
type Minimap struct {
	nodeDefs NodeDefs
	settings *config.Settings
	images   ImageSource
	renderer Renderer
	printer  *message.Printer

	scan   scanState
	render renderState
	thread *updateThread

	modes     []ModeDef
	modeIndex int

	surfaceScanHeight int
	shapeCallback     int
	synchronous       bool
	closed            bool
}

// New creates a minimap in the hidden mode and starts its update thread.
func New(opts Options) (*Minimap, error) {
	if opts.NodeDefs == nil {
		return nil, errors.New("minimap: node definitions are required")
	}
	settings := opts.Settings
	if settings == nil {
		settings = config.Default()
	}
	lang := opts.Language
	if lang == language.Und {
		lang = language.English
	}

	m := &Minimap{
		nodeDefs:    opts.NodeDefs,
		settings:    settings,
		images:      opts.Images,
		renderer:    opts.Renderer,
		printer:     message.NewPrinter(lang),
		synchronous: opts.Synchronous,
	}
	m.surfaceScanHeight = 128
	if settings.GetBool(config.KeyMinimapDoubleScanHeight) {
		m.surfaceScanHeight = 256
	}

	m.scan.scan = make([]Pixel, 0, MinimapMax*MinimapMax)
	m.scan.invalidated = true
	m.scan.shapeRound = settings.GetBool(config.KeyMinimapShapeRound)
	m.thread = newUpdateThread(&m.scan)

	m.loadImages()

	m.ResetModes()
	m.shapeCallback = settings.RegisterChangedCallback(config.KeyMinimapShapeRound, func(string) {
		m.setShapeRound(m.settings.GetBool(config.KeyMinimapShapeRound))
	})

	if !m.synchronous {
		m.thread.Start()
	}
	for _, fn := range opts.OnReady {
		fn(m)
	}
	return m, nil
}

// loadImages fetches the masks and decorations. Missing images leave the
// corresponding layer empty.
func (m *Minimap) loadImages() {
	if m.images == nil {
		return
	}
	m.render.masks[0] = toMaxSquare(m.images.Image(resources.MinimapMaskSquare))
	m.render.masks[1] = toMaxSquare(m.images.Image(resources.MinimapMaskRound))
	if m.renderer == nil {
		return
	}
	m.render.overlays[0] = m.newTexture(resources.MinimapOverlaySquare)
	m.render.overlays[1] = m.newTexture(resources.MinimapOverlayRound)
	m.render.playerMarker = m.newTexture(resources.PlayerMarker)
	m.render.objectMarker = m.newTexture(resources.ObjectMarkerRed)
}

func (m *Minimap) newTexture(name string) Texture {
	img := m.images.Image(name)
	if img == nil {
		return nil
	}
	return m.renderer.NewTexture(name, img)
}

// AddBlock hands a block snapshot to the update thread. A nil data evicts
// the block. The caller must not touch data afterwards.
func (m *Minimap) AddBlock(pos world.BlockPos, data *Mapblock) {
	m.scan.mu.Lock()
	m.scan.needsRescan = true
	m.scan.mu.Unlock()
	m.thread.enqueueBlock(pos, data)
}

// Update runs one update cycle on the calling goroutine when the minimap is
// synchronous; otherwise it wakes the update thread.
func (m *Minimap) Update() {
	if !m.synchronous {
		m.thread.deferUpdate()
		return
	}
	m.thread.doUpdate()
}

// Stats returns the update thread counters.
func (m *Minimap) Stats() Stats {
	return m.thread.stats()
}

// SetPos moves the focus point. The update thread is only woken when the
// position actually changed.
func (m *Minimap) SetPos(pos world.Pos) {
	changed := false
	m.scan.mu.Lock()
	if pos != m.scan.pos {
		m.scan.oldPos = m.scan.pos
		m.scan.pos = pos
		m.scan.needsRescan = true
		changed = true
	}
	m.scan.mu.Unlock()

	if changed {
		m.thread.deferUpdate()
	}
}

// Pos returns the focus point.
func (m *Minimap) Pos() world.Pos {
	m.scan.mu.Lock()
	defer m.scan.mu.Unlock()
	return m.scan.pos
}

// SetAngle sets the view yaw in degrees.
func (m *Minimap) SetAngle(deg float32) {
	m.render.angle = deg
}

// SetCameraOffset sets the offset added to marker positions to get world coordinates.
func (m *Minimap) SetCameraOffset(off mgl32.Vec3) {
	m.render.camOffset = off
}

// Shape reports whether the minimap is round.
func (m *Minimap) Shape() bool {
	m.scan.mu.Lock()
	defer m.scan.mu.Unlock()
	return m.scan.shapeRound
}

// SetShape switches between the round and square minimap and stores the
// choice in the settings.
func (m *Minimap) SetShape(round bool) {
	m.setShapeRound(round)
	m.settings.SetBool(config.KeyMinimapShapeRound, round)
}

// ToggleShape flips the minimap shape.
func (m *Minimap) ToggleShape() {
	m.SetShape(!m.Shape())
}

func (m *Minimap) setShapeRound(round bool) {
	m.scan.mu.Lock()
	if m.scan.shapeRound == round {
		m.scan.mu.Unlock()
		return
	}
	m.scan.shapeRound = round
	m.scan.invalidated = true
	m.scan.mu.Unlock()

	m.thread.deferUpdate()
}

// Close stops the update thread and releases the cache and textures.
func (m *Minimap) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.settings.DeregisterChangedCallback(config.KeyMinimapShapeRound, m.shapeCallback)

	m.thread.Stop()
	m.thread.release()

	if m.renderer != nil {
		for _, tex := range []Texture{
			m.render.texture, m.render.heightmap,
			m.render.overlays[0], m.render.overlays[1],
			m.render.playerMarker, m.render.objectMarker,
		} {
			if tex != nil {
				m.renderer.DeleteTexture(tex)
			}
		}
	}
	m.render = renderState{}
}
