package minimap

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type modeFile struct {
	Modes []struct {
		Type       string `yaml:"type"`
		Label      string `yaml:"label"`
		Size       int    `yaml:"size"`
		ScanHeight int    `yaml:"scan_height"`
		Texture    string `yaml:"texture"`
		Scale      int    `yaml:"scale"`
	} `yaml:"modes"`
}

// LoadModes replaces the mode cycle with the modes listed in a YAML file:
//
//	modes:
//	  - {type: off}
//	  - {type: surface, size: 128}
//	  - {type: texture, size: 256, texture: world_map.png, scale: 4}
//
// The current modes are kept if any entry is invalid.
func (m *Minimap) LoadModes(in io.Reader) error {
	var f modeFile
	if err := yaml.NewDecoder(in).Decode(&f); err != nil {
		return fmt.Errorf("decode minimap modes: %w", err)
	}
	old := m.modes
	m.modes = nil
	for i, e := range f.Modes {
		t, err := ParseModeType(e.Type)
		if err == nil {
			err = m.AddMode(ModeDef{
				Type:       t,
				Label:      e.Label,
				MapSize:    e.Size,
				ScanHeight: e.ScanHeight,
				Texture:    e.Texture,
				Scale:      e.Scale,
			})
		}
		if err != nil {
			m.modes = old
			return fmt.Errorf("minimap mode %d: %w", i, err)
		}
	}
	m.SetModeIndex(0)
	return nil
}
