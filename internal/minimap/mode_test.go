package minimap

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func TestDefaultModes(t *testing.T) {
	m := newTestMinimap(t, Options{})
	want := []ModeDef{
		{Type: ModeOff, Label: "Minimap hidden"},
		{Type: ModeSurface, Label: "Minimap in surface mode, Zoom x1", MapSize: 256, ScanHeight: 256},
		{Type: ModeSurface, Label: "Minimap in surface mode, Zoom x2", MapSize: 128, ScanHeight: 256},
		{Type: ModeSurface, Label: "Minimap in surface mode, Zoom x4", MapSize: 64, ScanHeight: 256},
		{Type: ModeRadar, Label: "Minimap in radar mode, Zoom x1", MapSize: 512, ScanHeight: 32},
		{Type: ModeRadar, Label: "Minimap in radar mode, Zoom x2", MapSize: 256, ScanHeight: 32},
		{Type: ModeRadar, Label: "Minimap in radar mode, Zoom x4", MapSize: 128, ScanHeight: 32},
	}
	if diff := cmp.Diff(want, m.modes); diff != "" {
		t.Fatalf("default modes (-want +got):\n%s", diff)
	}
}

func TestGermanLabels(t *testing.T) {
	m := newTestMinimap(t, Options{Language: language.German})
	m.SetModeIndex(2)
	if got, want := m.ModeDef().Label, "Übersichtskarte im Bodenmodus, Zoom ×2"; got != want {
		t.Fatalf("label = %q, want %q", got, want)
	}
}

func TestModeBounds(t *testing.T) {
	m := newTestMinimap(t, Options{})

	for _, idx := range []int{m.MaxModeIndex() + 1, 100, -1} {
		m.SetModeIndex(3)
		m.SetModeIndex(idx)
		if m.ModeIndex() != 0 || m.ModeDef().Type != ModeOff {
			t.Errorf("SetModeIndex(%d): index %d mode %v, want 0 and off", idx, m.ModeIndex(), m.ModeDef().Type)
		}
		if m.ModeDef().Label != "Minimap hidden" {
			t.Errorf("SetModeIndex(%d): label %q", idx, m.ModeDef().Label)
		}
	}

	m.SetModeIndex(m.MaxModeIndex())
	m.NextMode()
	if m.ModeIndex() != 0 {
		t.Fatalf("NextMode from the last mode gave %d, want 0", m.ModeIndex())
	}
	m.NextMode()
	if m.ModeIndex() != 1 || m.ModeDef().Type != ModeSurface {
		t.Fatalf("NextMode gave %d (%v)", m.ModeIndex(), m.ModeDef().Type)
	}
}

func TestSetModeIndexInvalidates(t *testing.T) {
	m := newTestMinimap(t, Options{})
	publishScan(m, nil)
	before := m.Stats().Wakes
	m.SetModeIndex(1)
	m.scan.mu.Lock()
	invalidated := m.scan.invalidated
	m.scan.mu.Unlock()
	if !invalidated {
		t.Error("mode change did not invalidate the scan")
	}
	if m.Stats().Wakes != before+1 {
		t.Error("mode change did not wake the update thread")
	}
}

func TestAddModeValidation(t *testing.T) {
	m := newTestMinimap(t, Options{})
	bad := []ModeDef{
		{Type: ModeSurface},
		{Type: ModeSurface, MapSize: MinimapMax + 1},
		{Type: ModeRadar, MapSize: 64, ScanHeight: -1},
		{Type: ModeTexture, MapSize: 64},
		{Type: ModeTexture, Texture: "x.png"},
		{Type: ModeType(42), MapSize: 64},
	}
	for _, mode := range bad {
		if err := m.AddMode(mode); !errors.Is(err, ErrInvalidMode) {
			t.Errorf("AddMode(%+v) = %v, want ErrInvalidMode", mode, err)
		}
	}
	if got := m.MaxModeIndex(); got != 6 {
		t.Fatalf("invalid modes were added: max index %d", got)
	}

	if err := m.AddMode(ModeDef{Type: ModeTexture, MapSize: 64, Texture: "x.png"}); err != nil {
		t.Fatal(err)
	}
	m.SetModeIndex(m.MaxModeIndex())
	if got := m.ModeDef(); got.Scale != 1 || got.Label != "Minimap in texture mode" {
		t.Fatalf("texture mode = %+v, want scale 1 and default label", got)
	}

	if err := m.AddMode(ModeDef{Type: ModeRadar, MapSize: 64, Label: "Radar x%d"}); err != nil {
		t.Fatal(err)
	}
	m.SetModeIndex(m.MaxModeIndex())
	if got := m.ModeDef().Label; got != "Radar x8" {
		t.Fatalf("custom label = %q", got)
	}
}

func TestClearAndResetModes(t *testing.T) {
	m := newTestMinimap(t, Options{})
	m.SetModeIndex(2)
	m.ClearModes()
	if m.MaxModeIndex() != -1 || m.ModeDef().Type != ModeOff {
		t.Fatalf("after ClearModes: max %d mode %v", m.MaxModeIndex(), m.ModeDef().Type)
	}
	m.NextMode()
	if m.ModeIndex() != 0 {
		t.Fatal("NextMode without modes changed the index")
	}
	m.ResetModes()
	if m.MaxModeIndex() != 6 || m.ModeIndex() != 0 {
		t.Fatalf("after ResetModes: max %d index %d", m.MaxModeIndex(), m.ModeIndex())
	}
}

func TestParseModeType(t *testing.T) {
	for _, mt := range []ModeType{ModeOff, ModeSurface, ModeRadar, ModeTexture} {
		got, err := ParseModeType(mt.String())
		if err != nil || got != mt {
			t.Errorf("ParseModeType(%q) = %v, %v", mt.String(), got, err)
		}
	}
	if _, err := ParseModeType("sonar"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("ParseModeType(sonar) error = %v", err)
	}
}

func TestLoadModes(t *testing.T) {
	m := newTestMinimap(t, Options{})
	err := m.LoadModes(strings.NewReader(`
modes:
  - {type: off}
  - {type: surface, size: 128}
  - {type: radar, size: 64, scan_height: 16, label: "Sonar x%d"}
  - {type: texture, size: 256, texture: world_map.png, scale: 4}
`))
	if err != nil {
		t.Fatal(err)
	}
	want := []ModeDef{
		{Type: ModeOff, Label: "Minimap hidden"},
		{Type: ModeSurface, Label: "Minimap in surface mode, Zoom x2", MapSize: 128, ScanHeight: 256},
		{Type: ModeRadar, Label: "Sonar x8", MapSize: 64, ScanHeight: 16},
		{Type: ModeTexture, Label: "Minimap in texture mode", MapSize: 256, Texture: "world_map.png", Scale: 4},
	}
	if diff := cmp.Diff(want, m.modes); diff != "" {
		t.Fatalf("modes (-want +got):\n%s", diff)
	}

	err = m.LoadModes(strings.NewReader("modes: [{type: surface, size: 128}, {type: sonar}]"))
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("invalid file error = %v", err)
	}
	if m.MaxModeIndex() != 3 {
		t.Fatalf("failed load changed the modes: %v", m.modes)
	}
}
