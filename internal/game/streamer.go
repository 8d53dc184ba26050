package game

import (
	"sort"
	"voxmap/internal/minimap"
	"voxmap/internal/profiling"
	"voxmap/internal/world"
)

// BlockSink receives minimap snapshots of changed mapblocks. A nil
// snapshot means the block was unloaded.
type BlockSink interface {
	AddBlock(pos world.BlockPos, data *minimap.Mapblock)
}

// Streamer keeps the world generated around a focus point and forwards
// every changed mapblock to a BlockSink.
type Streamer struct {
	World     *world.Map
	Generator *world.Generator
	Sink      BlockSink

	// Radius in mapblocks around the focus, horizontally.
	Radius int
	// Vertical mapblock range that is generated.
	MinY, MaxY int
	// Budget caps generated blocks per Step; zero means unlimited.
	Budget int
	// EvictMargin is added to Radius before blocks are unloaded.
	EvictMargin int
}

// NewStreamer creates a streamer with the vertical range used by the viewer.
func NewStreamer(m *world.Map, g *world.Generator, sink BlockSink, radius int) *Streamer {
	return &Streamer{
		World:       m,
		Generator:   g,
		Sink:        sink,
		Radius:      radius,
		MinY:        -2,
		MaxY:        4,
		Budget:      64,
		EvictMargin: 2,
	}
}

// Step generates missing blocks nearest to focus first, publishes dirty
// blocks and unloads blocks that fell out of range. It returns the number
// of blocks generated.
func (s *Streamer) Step(focus world.Pos) int {
	defer profiling.Track("world.Stream")()
	center := world.NodeToBlock(focus)

	generated := 0
	for _, bp := range s.missing(center) {
		if s.Budget > 0 && generated >= s.Budget {
			break
		}
		b := s.World.Block(bp, true)
		s.Generator.PopulateBlock(b)
		generated++
	}

	s.Publish()

	for _, bp := range s.World.EvictFarBlocks(center, s.Radius+s.EvictMargin) {
		s.Sink.AddBlock(bp, nil)
	}
	return generated
}

// Publish scans every dirty block into the sink and marks it clean.
func (s *Streamer) Publish() {
	for _, bp := range s.World.DirtyBlocks() {
		s.Sink.AddBlock(bp, minimap.ScanMapblock(s.World, bp))
		s.World.SetClean(bp)
	}
}

// missing lists the unloaded blocks within a circle of Radius, nearest first.
func (s *Streamer) missing(center world.BlockPos) []world.BlockPos {
	dist := func(b world.BlockPos) int {
		dx, dz := b.X-center.X, b.Z-center.Z
		return dx*dx + dz*dz
	}
	var out []world.BlockPos
	for x := center.X - s.Radius; x <= center.X+s.Radius; x++ {
		for z := center.Z - s.Radius; z <= center.Z+s.Radius; z++ {
			if dist(world.BlockPos{X: x, Z: z}) > s.Radius*s.Radius {
				continue
			}
			for y := s.MinY; y <= s.MaxY; y++ {
				bp := world.BlockPos{X: x, Y: y, Z: z}
				if !s.World.HasBlock(bp) {
					out = append(out, bp)
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return dist(out[i]) < dist(out[j]) })
	return out
}
