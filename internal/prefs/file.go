package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

type fileContents struct {
	Users map[string]Preferences `toml:"users"`
}

// FileStore keeps preferences in a TOML file, one table per uid.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the XDG-compliant preferences path.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "unimeal", "preferences.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "unimeal", "preferences.toml")
}

func (f *FileStore) Get(uid string) (Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contents, err := f.load()
	if err != nil {
		return Defaults(), err
	}
	p, ok := contents.Users[uid]
	if !ok {
		return Defaults(), nil
	}
	return p.normalize(), nil
}

func (f *FileStore) Update(uid string, fn func(*Preferences)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contents, err := f.load()
	if err != nil {
		return err
	}
	p, ok := contents.Users[uid]
	if !ok {
		p = Defaults()
	}
	fn(&p)
	contents.Users[uid] = p.normalize()
	return f.save(contents)
}

func (f *FileStore) load() (fileContents, error) {
	contents := fileContents{Users: make(map[string]Preferences)}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return contents, nil
		}
		return contents, fmt.Errorf("reading preferences: %w", err)
	}
	if err := toml.Unmarshal(data, &contents); err != nil {
		return contents, fmt.Errorf("parsing preferences: %w", err)
	}
	if contents.Users == nil {
		contents.Users = make(map[string]Preferences)
	}
	return contents, nil
}

func (f *FileStore) save(contents fileContents) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}
	out, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating preferences file: %w", err)
	}
	defer out.Close()

	return toml.NewEncoder(out).Encode(contents)
}
