package world

// BlockSize is the edge length of a map block in nodes.
const BlockSize = 16

// Pos is a node position in world space.
type Pos struct {
	X, Y, Z int
}

// BlockPos identifies a map block; block (0,0,0) spans nodes 0..15 on every axis.
type BlockPos struct {
	X, Y, Z int
}

// Add returns p+q.
func (p Pos) Add(q Pos) Pos {
	return Pos{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns p-q.
func (p Pos) Sub(q Pos) Pos {
	return Pos{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Min returns the componentwise minimum of p and q.
func (p Pos) Min(q Pos) Pos {
	return Pos{X: min(p.X, q.X), Y: min(p.Y, q.Y), Z: min(p.Z, q.Z)}
}

// Max returns the componentwise maximum of p and q.
func (p Pos) Max(q Pos) Pos {
	return Pos{X: max(p.X, q.X), Y: max(p.Y, q.Y), Z: max(p.Z, q.Z)}
}

// NodeToBlock returns the block containing the node at p.
func NodeToBlock(p Pos) BlockPos {
	return BlockPos{
		X: floorDiv(p.X, BlockSize),
		Y: floorDiv(p.Y, BlockSize),
		Z: floorDiv(p.Z, BlockSize),
	}
}

// Origin returns the position of the block's lowest corner node.
func (b BlockPos) Origin() Pos {
	return Pos{X: b.X * BlockSize, Y: b.Y * BlockSize, Z: b.Z * BlockSize}
}

// Local returns p relative to the origin of the block containing it.
func Local(p Pos) (x, y, z int) {
	return mod(p.X, BlockSize), mod(p.Y, BlockSize), mod(p.Z, BlockSize)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
