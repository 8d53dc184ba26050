package minimap

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MinimapMax is the edge length of the composited minimap texture and the
// largest supported scan size.
const MinimapMax = 512

// ErrInvalidMode is returned by AddMode for definitions that cannot be scanned or drawn.
var ErrInvalidMode = errors.New("minimap: invalid mode")

// ModeType selects how the minimap acquires and renders its image.
type ModeType int

const (
	ModeOff ModeType = iota
	ModeSurface
	ModeRadar
	ModeTexture
)

func (t ModeType) String() string {
	switch t {
	case ModeOff:
		return "off"
	case ModeSurface:
		return "surface"
	case ModeRadar:
		return "radar"
	case ModeTexture:
		return "texture"
	}
	return fmt.Sprintf("ModeType(%d)", int(t))
}

// ParseModeType is the inverse of ModeType.String.
func ParseModeType(s string) (ModeType, error) {
	switch strings.ToLower(s) {
	case "off":
		return ModeOff, nil
	case "surface":
		return ModeSurface, nil
	case "radar":
		return ModeRadar, nil
	case "texture":
		return ModeTexture, nil
	}
	return ModeOff, fmt.Errorf("%w: unknown type %q", ErrInvalidMode, s)
}

// scans reports whether the mode is fed from the block scan.
func (t ModeType) scans() bool {
	switch t {
	case ModeSurface, ModeRadar:
		return true
	case ModeOff, ModeTexture:
		return false
	}
	return false
}

// ModeDef describes one selectable minimap mode.
type ModeDef struct {
	Type       ModeType
	Label      string
	MapSize    int // edge of the scanned square in nodes
	ScanHeight int // nodes scanned around the focus height
	Texture    string
	Scale      int // nodes per texture pixel, Texture mode only
}

var offMode = ModeDef{Type: ModeOff, Label: labelHidden}

const (
	labelHidden  = "Minimap hidden"
	labelSurface = "Minimap in surface mode, Zoom x%d"
	labelRadar   = "Minimap in radar mode, Zoom x%d"
	labelTexture = "Minimap in texture mode"

	radarScanHeight = 32
)

func init() {
	for _, tr := range []struct {
		tag      language.Tag
		key, msg string
	}{
		{language.German, labelHidden, "Übersichtskarte verborgen"},
		{language.German, labelSurface, "Übersichtskarte im Bodenmodus, Zoom ×%d"},
		{language.German, labelRadar, "Übersichtskarte im Radarmodus, Zoom ×%d"},
		{language.German, labelTexture, "Übersichtskarte im Texturmodus"},
	} {
		_ = message.SetString(tr.tag, tr.key, tr.msg)
	}
}

// scanHeightFor returns the default scan height of a mode type.
func (m *Minimap) scanHeightFor(t ModeType) int {
	switch t {
	case ModeSurface:
		return m.surfaceScanHeight
	case ModeRadar:
		return radarScanHeight
	case ModeOff, ModeTexture:
		return 0
	}
	return 0
}

// buildLabel fills in the default label and zoom factor of mode.
func (m *Minimap) buildLabel(mode ModeDef) string {
	label := mode.Label
	zoom := -1
	switch mode.Type {
	case ModeOff:
		if label == "" {
			label = labelHidden
		}
	case ModeSurface:
		if label == "" {
			label = labelSurface
		}
		zoom = 256 / mode.MapSize
	case ModeRadar:
		if label == "" {
			label = labelRadar
		}
		zoom = 512 / mode.MapSize
	case ModeTexture:
		if label == "" {
			label = labelTexture
		}
	}
	if zoom >= 0 && strings.Contains(label, "%d") {
		return m.printer.Sprintf(label, zoom)
	}
	return m.printer.Sprintf(label)
}

func validateMode(mode *ModeDef) error {
	switch mode.Type {
	case ModeOff:
		mode.MapSize, mode.ScanHeight = 0, 0
	case ModeSurface, ModeRadar:
		if mode.MapSize <= 0 || mode.MapSize > MinimapMax {
			return fmt.Errorf("%w: %s map size %d out of range (1..%d)", ErrInvalidMode, mode.Type, mode.MapSize, MinimapMax)
		}
		if mode.ScanHeight <= 0 {
			return fmt.Errorf("%w: %s scan height %d", ErrInvalidMode, mode.Type, mode.ScanHeight)
		}
	case ModeTexture:
		if mode.Texture == "" {
			return fmt.Errorf("%w: texture mode without texture", ErrInvalidMode)
		}
		if mode.MapSize <= 0 || mode.MapSize > MinimapMax {
			return fmt.Errorf("%w: texture map size %d out of range (1..%d)", ErrInvalidMode, mode.MapSize, MinimapMax)
		}
		if mode.Scale < 1 {
			mode.Scale = 1
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMode, mode.Type)
	}
	return nil
}

// AddMode appends a mode to the cycle. A zero ScanHeight is replaced by the
// type's default.
func (m *Minimap) AddMode(mode ModeDef) error {
	if mode.ScanHeight == 0 {
		mode.ScanHeight = m.scanHeightFor(mode.Type)
	}
	if err := validateMode(&mode); err != nil {
		return err
	}
	mode.Label = m.buildLabel(mode)
	m.modes = append(m.modes, mode)
	return nil
}

// ClearModes removes every mode and switches the minimap off.
func (m *Minimap) ClearModes() {
	m.modes = m.modes[:0]
	m.SetModeIndex(0)
}

// ResetModes restores the built-in mode cycle: off, surface x1/x2/x4,
// radar x1/x2/x4.
func (m *Minimap) ResetModes() {
	m.modes = m.modes[:0]
	_ = m.AddMode(ModeDef{Type: ModeOff})
	for _, size := range []int{256, 128, 64} {
		_ = m.AddMode(ModeDef{Type: ModeSurface, MapSize: size})
	}
	for _, size := range []int{512, 256, 128} {
		_ = m.AddMode(ModeDef{Type: ModeRadar, MapSize: size})
	}
	m.SetModeIndex(0)
}

// SetModeIndex activates modes[index]; an out-of-range index selects the
// hidden mode and resets the index to 0.
func (m *Minimap) SetModeIndex(index int) {
	m.scan.mu.Lock()
	if index >= 0 && index < len(m.modes) {
		m.scan.mode = m.modes[index]
		m.modeIndex = index
	} else {
		off := offMode
		off.Label = m.buildLabel(off)
		m.scan.mode = off
		m.modeIndex = 0
	}
	m.scan.invalidated = true
	m.scan.modeGen++
	m.scan.mu.Unlock()

	m.thread.deferUpdate()
}

// NextMode cycles to the next mode, wrapping to the first.
func (m *Minimap) NextMode() {
	if len(m.modes) == 0 {
		return
	}
	next := m.modeIndex + 1
	if next >= len(m.modes) {
		next = 0
	}
	m.SetModeIndex(next)
}

// ModeIndex returns the index of the active mode.
func (m *Minimap) ModeIndex() int {
	return m.modeIndex
}

// MaxModeIndex returns the index of the last registered mode.
func (m *Minimap) MaxModeIndex() int {
	return len(m.modes) - 1
}

// ModeDef returns the active mode.
func (m *Minimap) ModeDef() ModeDef {
	m.scan.mu.Lock()
	defer m.scan.mu.Unlock()
	return m.scan.mode
}
