package world

import (
	"math"
)

// Generator fills blocks from a deterministic value-noise height field.
type Generator struct {
	seed        int64
	scale       float64
	baseHeight  int
	amp         float64
	octaves     int
	persistence float64
	lacunarity  float64
	seaLevel    int
}

// NewGenerator creates a generator with default terrain parameters.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:        seed,
		scale:       1.0 / 64.0,
		baseHeight:  8,
		amp:         24,
		octaves:     4,
		persistence: 0.5,
		lacunarity:  2.0,
		seaLevel:    4,
	}
}

// HeightAt computes the surface height (node Y) at world X,Z.
func (g *Generator) HeightAt(x, z int) int {
	n := octaveNoise2D(float64(x)*g.scale, float64(z)*g.scale, g.seed, g.octaves, g.persistence, g.lacunarity)
	return int(math.Floor(float64(g.baseHeight) + (n*2-1)*g.amp))
}

// PopulateBlock fills b with terrain.
func (g *Generator) PopulateBlock(b *Block) {
	origin := b.Pos.Origin()
	for lx := 0; lx < BlockSize; lx++ {
		for lz := 0; lz < BlockSize; lz++ {
			h := g.HeightAt(origin.X+lx, origin.Z+lz)
			for ly := 0; ly < BlockSize; ly++ {
				y := origin.Y + ly
				if c := g.contentAt(y, h); c != ContentAir {
					b.SetNode(lx, ly, lz, Node{Content: c})
				}
			}
		}
	}
	b.dirty = true
}

func (g *Generator) contentAt(y, surface int) Content {
	switch {
	case y > surface:
		if y <= g.seaLevel {
			return ContentWater
		}
		return ContentAir
	case y == surface:
		switch {
		case surface <= g.seaLevel+1:
			return ContentSand
		case surface >= g.baseHeight+18:
			return ContentSnow
		default:
			return ContentGrass
		}
	case y > surface-3:
		return ContentDirt
	default:
		return ContentStone
	}
}

// Generate populates every block in a square of radius blocks around
// center, from block layer minY to maxY inclusive.
func (g *Generator) Generate(m *Map, center BlockPos, radius, minY, maxY int) {
	for bx := center.X - radius; bx <= center.X+radius; bx++ {
		for bz := center.Z - radius; bz <= center.Z+radius; bz++ {
			for by := minY; by <= maxY; by++ {
				pos := BlockPos{X: bx, Y: by, Z: bz}
				if m.HasBlock(pos) {
					continue
				}
				b := NewBlock(pos)
				g.PopulateBlock(b)
				m.AddBlock(b)
			}
		}
	}
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// latticeValue hashes a lattice point into [0,1] (SplitMix64 finaliser).
func latticeValue(x, z, seed int64) float64 {
	v := uint64(x) + (uint64(z) << 1) + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v ^= v >> 31
	return float64(v&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func valueNoise2D(x, z float64, seed int64) float64 {
	x0, z0 := math.Floor(x), math.Floor(z)
	fx, fz := fade(x-x0), fade(z-z0)
	ix, iz := int64(x0), int64(z0)
	top := lerp(latticeValue(ix, iz, seed), latticeValue(ix+1, iz, seed), fx)
	bottom := lerp(latticeValue(ix, iz+1, seed), latticeValue(ix+1, iz+1, seed), fx)
	return lerp(top, bottom, fz)
}

// octaveNoise2D sums octaves of value noise, normalised to [0,1].
func octaveNoise2D(x, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		sum += valueNoise2D(x*freq, z*freq, seed+int64(i)*1013) * amp
		norm += amp
		amp *= persistence
		freq *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
