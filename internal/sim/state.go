package sim

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vovakirdan/tidepool/internal/core"
)

// State is a per-entity string-backed key/value store.
// Typed getters parse on read and report absence for missing or unparsable values.
//
// Every Set fires the update listeners, including re-sets to an equal value.
// Receivers that care about transitions compare old and new values themselves.
type State struct {
	values    map[string]string
	listeners []func(key, value string)
}

// NewState creates an empty state store.
func NewState() *State {
	return &State{values: make(map[string]string)}
}

// NewStateFrom creates a state store seeded with the given values.
// Seeding does not fire listeners.
func NewStateFrom(values map[string]string) *State {
	s := NewState()
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// OnUpdated registers a listener called after every Set.
func (s *State) OnUpdated(fn func(key, value string)) {
	s.listeners = append(s.listeners, fn)
}

// SetString stores a raw value and notifies listeners.
func (s *State) SetString(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	for _, fn := range s.listeners {
		fn(key, value)
	}
}

// Set is shorthand for SetString.
func (s *State) Set(key, value string) {
	s.SetString(key, value)
}

// SetInt stores an integer value.
func (s *State) SetInt(key string, value int) {
	s.SetString(key, strconv.Itoa(value))
}

// SetBool stores a boolean value as "true" or "false".
func (s *State) SetBool(key string, value bool) {
	s.SetString(key, strconv.FormatBool(value))
}

// SetColor stores a palette color by name.
func (s *State) SetColor(key string, value core.Color) {
	s.SetString(key, value.String())
}

// Has reports whether a key is present, regardless of whether it parses.
func (s *State) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Delete removes a key without notifying listeners.
func (s *State) Delete(key string) {
	delete(s.values, key)
}

// GetString returns the raw value for key.
func (s *State) GetString(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetInt parses the value for key as a base-10 integer.
func (s *State) GetInt(key string) (int, bool) {
	v, ok := s.values[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetBool parses the value for key. Accepts true/false, 1/0, yes/no, on/off.
func (s *State) GetBool(key string) (bool, bool) {
	v, ok := s.values[key]
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on", "t":
		return true, true
	case "false", "0", "no", "off", "f":
		return false, true
	default:
		return false, false
	}
}

// GetColor parses the value for key as a palette name or #rrggbb.
func (s *State) GetColor(key string) (core.Color, bool) {
	v, ok := s.values[key]
	if !ok {
		return core.ColorDefault, false
	}
	return core.ParseColor(v)
}

// GetStringOrFallback returns the value for key or fallback when absent.
func (s *State) GetStringOrFallback(key, fallback string) string {
	if v, ok := s.GetString(key); ok {
		return v
	}
	return fallback
}

// GetIntOrFallback returns the parsed value for key or fallback.
func (s *State) GetIntOrFallback(key string, fallback int) int {
	if v, ok := s.GetInt(key); ok {
		return v
	}
	return fallback
}

// GetBoolOrFallback returns the parsed value for key or fallback.
func (s *State) GetBoolOrFallback(key string, fallback bool) bool {
	if v, ok := s.GetBool(key); ok {
		return v
	}
	return fallback
}

// GetColorOrFallback returns the parsed value for key or fallback.
func (s *State) GetColorOrFallback(key string, fallback core.Color) core.Color {
	if v, ok := s.GetColor(key); ok {
		return v
	}
	return fallback
}

// Keys returns all keys in sorted order.
func (s *State) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (s *State) Len() int {
	return len(s.values)
}

// Values returns a copy of the raw values.
func (s *State) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Clone copies the values. Listeners are not copied.
func (s *State) Clone() *State {
	return NewStateFrom(s.values)
}
