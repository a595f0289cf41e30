package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StateStore keeps the API base across runs.
type StateStore interface {
	Load() (string, error)
	Save(apiBase string) error
}

type state struct {
	APIBase string `yaml:"api_base"`
}

// FileState persists the API base as YAML.
type FileState struct {
	path string
}

func NewFileState(path string) *FileState {
	return &FileState{path: path}
}

// DefaultStatePath は $XDG_CONFIG_HOME/device-query/state.yaml
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("UserConfigDir failed: %w", err)
	}
	return filepath.Join(dir, "device-query", "state.yaml"), nil
}

// Load returns "" without error when nothing has been saved yet.
func (f *FileState) Load() (string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read state: %w", err)
	}
	var st state
	if err := yaml.Unmarshal(b, &st); err != nil {
		return "", fmt.Errorf("failed to parse state %s: %w", f.path, err)
	}
	return st.APIBase, nil
}

func (f *FileState) Save(apiBase string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	b, err := yaml.Marshal(state{APIBase: apiBase})
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}
