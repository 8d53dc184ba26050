package world

// Content identifies a node type in the node definition registry.
type Content uint16

const (
	ContentAir Content = iota
	ContentStone
	ContentDirt
	ContentGrass
	ContentSand
	ContentWater
	ContentSnow
	ContentTree
	ContentLeaves

	// ContentIgnore is returned for positions whose block is not loaded.
	ContentIgnore Content = 0xffff
)

// Node is a single voxel.
type Node struct {
	Content Content
	Param1  uint8
	Param2  uint8
}

// IsAir reports whether n is air or unloaded space.
func (n Node) IsAir() bool {
	return n.Content == ContentAir || n.Content == ContentIgnore
}

// NodeSource answers node lookups over some volume of the world.
type NodeSource interface {
	GetNode(p Pos) Node
}
