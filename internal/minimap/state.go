package minimap

import (
	"image"
	"sync"
	"voxmap/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// scanState is the part of the minimap shared with the update thread.
// Every field is guarded by mu.
type scanState struct {
	mu sync.Mutex

	pos    world.Pos
	oldPos world.Pos
	mode   ModeDef

	// scan holds mode.MapSize^2 pixels of the last published rescan,
	// indexed x + z*MapSize. Capacity is MinimapMax^2.
	scan    []Pixel
	scanPos world.Pos

	// invalidated is set once the texture has consumed the published scan
	// (or the mode changed) and cleared by the worker when it publishes a
	// fresh scan. While it is set the texture is not regenerated.
	invalidated bool
	// needsRescan records that the focus or cached blocks changed while the
	// worker could not rescan.
	needsRescan bool

	shapeRound bool
	// modeGen changes whenever the mode changes; a rescan started under an
	// older generation is discarded.
	modeGen uint64
}

// renderState is only touched on the render thread; the worker never sees it.
type renderState struct {
	// masks are MinimapMax square; index by shape (0 square, 1 round).
	masks    [2]*image.NRGBA
	overlays [2]Texture

	playerMarker Texture
	objectMarker Texture

	texture   Texture
	heightmap Texture

	canvas    *image.NRGBA
	heightImg *image.NRGBA

	angle     float32
	camOffset mgl32.Vec3

	markers       []mgl32.Vec3
	activeMarkers []mgl32.Vec2
	sprites       []Sprite
}

func shapeIndex(round bool) int {
	if round {
		return 1
	}
	return 0
}
