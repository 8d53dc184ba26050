package world

import (
	"sort"
	"sync"
	"voxmap/internal/profiling"
)

// Map stores the loaded blocks of the world, keyed by block position.
// It is the voxel manipulator the minimap scans from.
type Map struct {
	blocks   map[BlockPos]*Block
	mu       sync.RWMutex
	modCount uint64 // increases on any block add/remove
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{
		blocks: make(map[BlockPos]*Block),
	}
}

// Block returns the block at pos. If the block doesn't exist and create is
// true, an empty block is created and stored.
func (m *Map) Block(pos BlockPos, create bool) *Block {
	m.mu.RLock()
	b, ok := m.blocks[pos]
	m.mu.RUnlock()
	if ok || !create {
		return b
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another goroutine might have created it while we were waiting for the lock
	if existing, ok := m.blocks[pos]; ok {
		return existing
	}
	b = NewBlock(pos)
	m.blocks[pos] = b
	m.modCount++
	return b
}

// HasBlock checks if a block is loaded without creating it.
func (m *Map) HasBlock(pos BlockPos) bool {
	m.mu.RLock()
	_, ok := m.blocks[pos]
	m.mu.RUnlock()
	return ok
}

// AddBlock stores a pre-generated block, replacing any previous one.
func (m *Map) AddBlock(b *Block) {
	m.mu.Lock()
	m.blocks[b.Pos] = b
	m.modCount++
	m.mu.Unlock()
}

// GetNode returns the node at world position p; unloaded blocks read as ContentIgnore.
func (m *Map) GetNode(p Pos) Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blocks[NodeToBlock(p)]
	if !ok {
		return Node{Content: ContentIgnore}
	}
	x, y, z := Local(p)
	return b.Node(x, y, z)
}

// SetNode writes n at world position p and returns the block that changed.
func (m *Map) SetNode(p Pos, n Node) BlockPos {
	bp := NodeToBlock(p)
	b := m.Block(bp, true)
	x, y, z := Local(p)
	m.mu.Lock()
	b.SetNode(x, y, z, n)
	m.mu.Unlock()
	return bp
}

// DirtyBlocks returns the positions of blocks changed since their last
// SetClean, sorted bottom-up so scanners see lower blocks first.
func (m *Map) DirtyBlocks() []BlockPos {
	m.mu.RLock()
	out := make([]BlockPos, 0)
	for pos, b := range m.blocks {
		if b.IsDirty() {
			out = append(out, pos)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
	return out
}

// SetClean marks the block at pos as consumed.
func (m *Map) SetClean(pos BlockPos) {
	m.mu.Lock()
	if b, ok := m.blocks[pos]; ok {
		b.SetClean()
	}
	m.mu.Unlock()
}

// EvictFarBlocks removes blocks whose XZ distance from center exceeds radius
// (in blocks) and returns their positions.
func (m *Map) EvictFarBlocks(center BlockPos, radius int) []BlockPos {
	defer profiling.Track("world.EvictFarBlocks")()
	var removed []BlockPos
	m.mu.Lock()
	for pos := range m.blocks {
		dx := pos.X - center.X
		dz := pos.Z - center.Z
		if dx*dx+dz*dz > radius*radius {
			delete(m.blocks, pos)
			m.modCount++
			removed = append(removed, pos)
		}
	}
	m.mu.Unlock()
	return removed
}

// Len returns the number of loaded blocks.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocks)
}

// ModCount returns the current modification count of the block map.
func (m *Map) ModCount() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.modCount
}
