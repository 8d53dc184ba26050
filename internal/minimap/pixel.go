package minimap

import (
	"voxmap/internal/world"
)

// Pixel is the scan result for one node column.
type Pixel struct {
	// Node is the topmost non-air node of the column, or air.
	Node world.Node
	// Height is the Y offset of Node within the scanned column.
	Height uint16
	// AirCount is the number of air nodes seen in the column.
	AirCount uint16
}

// Mapblock holds the column scan of one 16x16x16 map block, indexed z*16+x.
// A *Mapblock has exactly one owner at a time: the producer until it is
// passed to AddBlock, then the update queue, then the worker's cache.
type Mapblock struct {
	Data [world.BlockSize * world.BlockSize]Pixel
}

// At returns the pixel of column (x, z).
func (b *Mapblock) At(x, z int) Pixel {
	return b.Data[z*world.BlockSize+x]
}

// ScanMapblock builds the minimap snapshot of the block at pos by scanning
// every column top-down: the first non-air node is the surface, every air
// node counts towards AirCount. Unloaded nodes count as air.
func ScanMapblock(src world.NodeSource, pos world.BlockPos) *Mapblock {
	mb := &Mapblock{}
	origin := pos.Origin()
	for z := 0; z < world.BlockSize; z++ {
		for x := 0; x < world.BlockSize; x++ {
			px := &mb.Data[z*world.BlockSize+x]
			found := false
			for y := world.BlockSize - 1; y >= 0; y-- {
				n := src.GetNode(origin.Add(world.Pos{X: x, Y: y, Z: z}))
				if n.IsAir() {
					px.AirCount++
					continue
				}
				if !found {
					px.Node = n
					px.Height = uint16(y)
					found = true
				}
			}
		}
	}
	return mb
}
