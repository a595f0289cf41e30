package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "device-query", "state.yaml")
	st := NewFileState(path)

	got, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, st.Save("https://api.example.com"))
	assert.FileExists(t, path)

	got, err = NewFileState(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", got)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "api_base: https://api.example.com")
}

func TestFileState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base: [unterminated"), 0o600))

	_, err := NewFileState(path).Load()
	assert.Error(t, err)
}

func TestDefaultStatePath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")

	p, err := DefaultStatePath()
	require.NoError(t, err)
	assert.Equal(t, "device-query", filepath.Base(filepath.Dir(p)))
	assert.Equal(t, "state.yaml", filepath.Base(p))
}
