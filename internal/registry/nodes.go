package registry

import (
	"fmt"
	"image/color"
	"io"
	"sync"
	"voxmap/internal/world"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// NodeDef holds the display attributes of a node type.
type NodeDef struct {
	ID   world.Content
	Name string
	// Color is the average colour of the node's textures.
	Color color.NRGBA
	// TileColor overrides Color for the topmost tile when HasTileColor is set.
	TileColor    color.NRGBA
	HasTileColor bool
	// MinimapColor tints the node on the surface minimap; white leaves it unchanged.
	MinimapColor color.NRGBA

	minimap color.NRGBA
}

// SurfaceColor returns the colour of the node's top tile.
func (d *NodeDef) SurfaceColor() color.NRGBA {
	if d.HasTileColor {
		return d.TileColor
	}
	return d.Color
}

// MinimapSurfaceColor returns the top tile colour multiplied by the minimap tint.
func (d *NodeDef) MinimapSurfaceColor() color.NRGBA {
	return d.minimap
}

func tint(base, by color.NRGBA) color.NRGBA {
	b, _ := colorful.MakeColor(color.NRGBA{R: base.R, G: base.G, B: base.B, A: 255})
	t, _ := colorful.MakeColor(color.NRGBA{R: by.R, G: by.G, B: by.B, A: 255})
	r, g, bl := colorful.Color{R: b.R * t.R, G: b.G * t.G, B: b.B * t.B}.RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: base.A}
}

var unknownNode = &NodeDef{
	Name:         "unknown",
	Color:        color.NRGBA{R: 255, G: 0, B: 255, A: 255},
	MinimapColor: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	minimap:      color.NRGBA{R: 255, G: 0, B: 255, A: 255},
}

// Registry maps content ids to node definitions.
type Registry struct {
	mu    sync.RWMutex
	defs  map[world.Content]*NodeDef
	names map[string]world.Content
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		defs:  make(map[world.Content]*NodeDef),
		names: make(map[string]world.Content),
	}
}

// NewDefault creates a registry holding the built-in node set.
func NewDefault() *Registry {
	r := New()
	r.RegisterDefaults()
	return r
}

// Register adds or replaces a definition.
func (r *Registry) Register(def *NodeDef) {
	if def.MinimapColor == (color.NRGBA{}) {
		def.MinimapColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	def.minimap = tint(def.SurfaceColor(), def.MinimapColor)
	r.mu.Lock()
	r.defs[def.ID] = def
	r.names[def.Name] = def.ID
	r.mu.Unlock()
}

// Get returns the definition for c; unknown ids resolve to a magenta placeholder.
func (r *Registry) Get(c world.Content) *NodeDef {
	r.mu.RLock()
	def, ok := r.defs[c]
	r.mu.RUnlock()
	if !ok {
		return unknownNode
	}
	return def
}

// ID looks a node up by name.
func (r *Registry) ID(name string) (world.Content, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.names[name]
	return id, ok
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

func rgb(hex string) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// RegisterDefaults registers the node set produced by world.Generator.
func (r *Registry) RegisterDefaults() {
	r.Register(&NodeDef{ID: world.ContentAir, Name: "air", Color: color.NRGBA{}})
	r.Register(&NodeDef{ID: world.ContentStone, Name: "stone", Color: rgb("#7d7d7d")})
	r.Register(&NodeDef{ID: world.ContentDirt, Name: "dirt", Color: rgb("#7a5436")})
	r.Register(&NodeDef{
		ID:           world.ContentGrass,
		Name:         "grass",
		Color:        rgb("#7a5436"),
		TileColor:    rgb("#6b9a3c"),
		HasTileColor: true,
		MinimapColor: rgb("#7dff5c"),
	})
	r.Register(&NodeDef{ID: world.ContentSand, Name: "sand", Color: rgb("#dbd3a0")})
	r.Register(&NodeDef{ID: world.ContentWater, Name: "water", Color: rgb("#2f5bd0")})
	r.Register(&NodeDef{ID: world.ContentSnow, Name: "snow", Color: rgb("#f0f4f8")})
	r.Register(&NodeDef{ID: world.ContentTree, Name: "tree", Color: rgb("#66512d")})
	r.Register(&NodeDef{ID: world.ContentLeaves, Name: "leaves", Color: rgb("#3a6b1e")})
}

type colorTable struct {
	Nodes []struct {
		ID           uint16 `yaml:"id"`
		Name         string `yaml:"name"`
		Color        string `yaml:"color"`
		TileColor    string `yaml:"tile_color"`
		MinimapColor string `yaml:"minimap_color"`
	} `yaml:"nodes"`
}

func parseColor(field, hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%s %q: %w", field, hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// LoadColorTable registers the node definitions listed in a YAML colour table:
//
//	nodes:
//	  - {id: 3, name: grass, color: "#7a5436", tile_color: "#6b9a3c", minimap_color: "#7dff5c"}
func (r *Registry) LoadColorTable(in io.Reader) error {
	var table colorTable
	if err := yaml.NewDecoder(in).Decode(&table); err != nil {
		return fmt.Errorf("decode color table: %w", err)
	}
	for _, n := range table.Nodes {
		def := &NodeDef{ID: world.Content(n.ID), Name: n.Name}
		var err error
		if n.Color != "" {
			if def.Color, err = parseColor("color", n.Color); err != nil {
				return fmt.Errorf("node %s: %w", n.Name, err)
			}
		}
		if n.TileColor != "" {
			if def.TileColor, err = parseColor("tile_color", n.TileColor); err != nil {
				return fmt.Errorf("node %s: %w", n.Name, err)
			}
			def.HasTileColor = true
		}
		if n.MinimapColor != "" {
			if def.MinimapColor, err = parseColor("minimap_color", n.MinimapColor); err != nil {
				return fmt.Errorf("node %s: %w", n.Name, err)
			}
		}
		r.Register(def)
	}
	return nil
}
