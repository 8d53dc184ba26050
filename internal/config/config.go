package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/muhammadmuzzammil1998/jsonc"
)

// Setting keys read by the client.
const (
	KeyMinimapShapeRound       = "minimap_shape_round"
	KeyMinimapDoubleScanHeight = "minimap_double_scan_height"
	KeyEnableMinimap           = "enable_minimap"
	KeyRenderDistance          = "viewing_range_blocks"
	KeyMinimapModesFile        = "minimap_modes_file"
	KeyFPSLimit                = "fps_max"
)

// ErrUnknownKey is returned when reading a key that has neither a value nor a default.
var ErrUnknownKey = errors.New("config: unknown setting")

var defaults = map[string]string{
	KeyMinimapShapeRound:       "true",
	KeyMinimapDoubleScanHeight: "true",
	KeyEnableMinimap:           "true",
	KeyRenderDistance:          "8",
	KeyMinimapModesFile:        "",
	KeyFPSLimit:                "60",
}

// ChangedCallback is invoked after a key's value changes.
type ChangedCallback func(key string)

type callbackEntry struct {
	id int
	fn ChangedCallback
}

// Settings is a string-valued key/value store with typed accessors and
// change notification. Values are persisted as a JSONC object.
type Settings struct {
	mu        sync.RWMutex
	values    map[string]string
	callbacks map[string][]callbackEntry
	nextID    int
}

// New creates a settings store seeded with the built-in defaults.
func New() *Settings {
	s := &Settings{
		values:    make(map[string]string, len(defaults)),
		callbacks: make(map[string][]callbackEntry),
	}
	for k, v := range defaults {
		s.values[k] = v
	}
	return s
}

var globalSettings = New()

// Default returns the process-wide settings store.
func Default() *Settings {
	return globalSettings
}

// Get returns the raw value of key.
func (s *Settings) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return v, nil
}

// GetBool returns key parsed as a bool; unknown or malformed values read as false.
func (s *Settings) GetBool(key string) bool {
	v, err := s.Get(key)
	if err != nil {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// GetInt returns key parsed as an int, or def when unset or malformed.
func (s *Settings) GetInt(key string, def int) int {
	v, err := s.Get(key)
	if err != nil {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// Set stores value under key and notifies the key's callbacks when it changed.
func (s *Settings) Set(key, value string) {
	s.mu.Lock()
	old, had := s.values[key]
	s.values[key] = value
	var fns []callbackEntry
	if !had || old != value {
		fns = append(fns, s.callbacks[key]...)
	}
	s.mu.Unlock()

	// callbacks run without the lock so they may read settings back
	for _, cb := range fns {
		cb.fn(key)
	}
}

// SetBool stores a bool value.
func (s *Settings) SetBool(key string, value bool) {
	s.Set(key, strconv.FormatBool(value))
}

// SetInt stores an int value.
func (s *Settings) SetInt(key string, value int) {
	s.Set(key, strconv.Itoa(value))
}

// RegisterChangedCallback subscribes fn to changes of key and returns a
// handle for DeregisterChangedCallback.
func (s *Settings) RegisterChangedCallback(key string, fn ChangedCallback) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.callbacks[key] = append(s.callbacks[key], callbackEntry{id: s.nextID, fn: fn})
	return s.nextID
}

// DeregisterChangedCallback removes a subscription made by RegisterChangedCallback.
func (s *Settings) DeregisterChangedCallback(key string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.callbacks[key]
	for i, cb := range list {
		if cb.id == id {
			s.callbacks[key] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Load merges the settings stored in a JSONC file. Comments are accepted;
// scalar values of any JSON type are stored as text.
func (s *Settings) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return fmt.Errorf("parse settings %s: %w", path, err)
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			s.Set(k, v)
		case bool:
			s.SetBool(k, v)
		case float64:
			s.Set(k, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			return fmt.Errorf("parse settings %s: %s: unsupported value %v", path, k, v)
		}
	}
	return nil
}

// Save writes every value that differs from its default.
func (s *Settings) Save(path string) error {
	s.mu.RLock()
	out := make(map[string]string)
	for k, v := range s.values {
		if d, ok := defaults[k]; ok && d == v {
			continue
		}
		out[k] = v
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(out, "", "\t")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
