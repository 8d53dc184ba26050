package world

const blockVolume = BlockSize * BlockSize * BlockSize

// Block is a 16x16x16 cube of nodes. Storage is allocated on the first
// non-air write so that empty sky blocks stay cheap.
type Block struct {
	Pos   BlockPos
	nodes []Node
	dirty bool
}

// NewBlock creates an all-air block at pos.
func NewBlock(pos BlockPos) *Block {
	return &Block{Pos: pos, dirty: true}
}

func blockIndex(x, y, z int) int {
	return z*BlockSize*BlockSize + y*BlockSize + x
}

func inBlock(x, y, z int) bool {
	return x >= 0 && x < BlockSize && y >= 0 && y < BlockSize && z >= 0 && z < BlockSize
}

// Node returns the node at local coordinates; out-of-range reads yield air.
func (b *Block) Node(x, y, z int) Node {
	if !inBlock(x, y, z) || b.nodes == nil {
		return Node{Content: ContentAir}
	}
	return b.nodes[blockIndex(x, y, z)]
}

// SetNode stores n at local coordinates and marks the block dirty when it changes.
func (b *Block) SetNode(x, y, z int, n Node) {
	if !inBlock(x, y, z) {
		return
	}
	if b.nodes == nil {
		if n.Content == ContentAir {
			return
		}
		b.nodes = make([]Node, blockVolume)
	}
	idx := blockIndex(x, y, z)
	if b.nodes[idx] != n {
		b.nodes[idx] = n
		b.dirty = true
	}
}

// Fill sets every node of the block to n.
func (b *Block) Fill(n Node) {
	if n.Content == ContentAir {
		b.nodes = nil
		b.dirty = true
		return
	}
	if b.nodes == nil {
		b.nodes = make([]Node, blockVolume)
	}
	for i := range b.nodes {
		b.nodes[i] = n
	}
	b.dirty = true
}

// IsEmpty reports whether the block holds only air.
func (b *Block) IsEmpty() bool {
	return b.nodes == nil
}

// IsDirty returns whether the block changed since the last SetClean.
func (b *Block) IsDirty() bool {
	return b.dirty
}

// SetClean marks the block as consumed by downstream scanners.
func (b *Block) SetClean() {
	b.dirty = false
}
