// Package prefs stores per-user client preferences that never touch the
// document store: the meals view mode and the display theme.
package prefs

import (
	"fmt"
	"sync"
)

// ViewMode is how the meals page lays out the plan.
type ViewMode string

const (
	ViewList ViewMode = "list"
	ViewWeek ViewMode = "week"
)

// ParseViewMode validates s.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ViewList, ViewWeek:
		return ViewMode(s), nil
	default:
		return "", fmt.Errorf("unknown view mode %q (want list or week)", s)
	}
}

// Theme is the display theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates s.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
	}
}

// Preferences is one user's settings.
type Preferences struct {
	ViewMode ViewMode `toml:"view_mode"`
	Theme    Theme    `toml:"theme"`
}

// Defaults returns list view with the light theme.
func Defaults() Preferences {
	return Preferences{ViewMode: ViewList, Theme: ThemeLight}
}

// normalize replaces unknown values with defaults.
func (p Preferences) normalize() Preferences {
	d := Defaults()
	if _, err := ParseViewMode(string(p.ViewMode)); err != nil {
		p.ViewMode = d.ViewMode
	}
	if _, err := ParseTheme(string(p.Theme)); err != nil {
		p.Theme = d.Theme
	}
	return p
}

// Store persists preferences per uid.
type Store interface {
	Get(uid string) (Preferences, error)
	Update(uid string, fn func(*Preferences)) error
}

// MemoryStore keeps preferences for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]Preferences
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]Preferences)}
}

func (m *MemoryStore) Get(uid string) (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.users[uid]
	if !ok {
		return Defaults(), nil
	}
	return p, nil
}

func (m *MemoryStore) Update(uid string, fn func(*Preferences)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.users[uid]
	if !ok {
		p = Defaults()
	}
	fn(&p)
	m.users[uid] = p.normalize()
	return nil
}
