// Package persist stores the fusion engine's opaque state blob between
// runs. The blob has engine-private structure and is always replaced
// wholesale.
package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store loads and saves an opaque state blob.
type Store interface {
	// LoadState returns the persisted blob, or nil when no prior state
	// exists. Absence is a cold start, not an error.
	LoadState() ([]byte, error)

	// SaveState replaces the persisted blob with state.
	SaveState(state []byte) error
}

// StateFile persists the blob in a single file, replaced atomically on
// every save.
type StateFile struct {
	path string
}

var _ Store = (*StateFile)(nil)

func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

func (s *StateFile) LoadState() ([]byte, error) {
	state, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading state from %s: %w", s.path, err)
	}
	return state, nil
}

func (s *StateFile) SaveState(state []byte) error {
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("saving state to %s: %w", s.path, err)
	}
	if err := os.WriteFile(tmp, state, 0o644); err != nil {
		return fmt.Errorf("saving state to %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("saving state to %s: %w", s.path, err)
	}
	return nil
}

// Noop discards saves and never has prior state.
type Noop struct{}

var _ Store = Noop{}

func (Noop) LoadState() ([]byte, error) { return nil, nil }

func (Noop) SaveState([]byte) error { return nil }

// LoadEngineConfig reads an engine configuration file and strips the
// 4-byte length prefix the vendor distribution puts in front of the
// blob.
func LoadEngineConfig(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading engine configuration from %s: %w", path, err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("engine configuration %s: file too short for length prefix", path)
	}
	return raw[4:], nil
}
