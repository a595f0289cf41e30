package client

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryState struct {
	value   string
	saved   []string
	loadErr error
}

func (m *memoryState) Load() (string, error) {
	return m.value, m.loadErr
}

func (m *memoryState) Save(apiBase string) error {
	m.saved = append(m.saved, apiBase)
	m.value = apiBase
	return nil
}

func TestNewCredentials(t *testing.T) {
	tests := []struct {
		name                                 string
		apiKey, authDomain, projectID, appID string
		want                                 Credentials
	}{
		{
			name:   "complete",
			apiKey: "key", authDomain: "demo.firebaseapp.com", projectID: "demo", appID: "1:2:web:3",
			want: Configured{APIKey: "key", AuthDomain: "demo.firebaseapp.com", ProjectID: "demo", AppID: "1:2:web:3"},
		},
		{
			name:   "auth domain is optional",
			apiKey: " key ", projectID: "demo", appID: "app",
			want: Configured{APIKey: "key", ProjectID: "demo", AppID: "app"},
		},
		{name: "missing api key", projectID: "demo", appID: "app", want: Unconfigured{}},
		{name: "missing project", apiKey: "key", appID: "app", want: Unconfigured{}},
		{name: "blank app id", apiKey: "key", projectID: "demo", appID: "  ", want: Unconfigured{}},
		{name: "nothing", want: Unconfigured{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewCredentials(tt.apiKey, tt.authDomain, tt.projectID, tt.appID))
		})
	}
}

func TestLoadSettings(t *testing.T) {
	defaults := PageDefaults{APIBase: "https://default.example.com"}

	t.Run("override wins and is persisted without trailing slash", func(t *testing.T) {
		st := &memoryState{value: "https://stored.example.com"}
		s := LoadSettings("https://override.example.com/", st, defaults)
		assert.Equal(t, "https://override.example.com", s.APIBase)
		assert.Equal(t, []string{"https://override.example.com"}, st.saved)
	})

	t.Run("only one trailing slash is stripped", func(t *testing.T) {
		st := &memoryState{}
		s := LoadSettings("https://override.example.com//", st, defaults)
		assert.Equal(t, "https://override.example.com/", s.APIBase)
	})

	t.Run("persisted value beats page default", func(t *testing.T) {
		st := &memoryState{value: "https://stored.example.com"}
		s := LoadSettings("", st, defaults)
		assert.Equal(t, "https://stored.example.com", s.APIBase)
		assert.Empty(t, st.saved)
	})

	t.Run("page default", func(t *testing.T) {
		s := LoadSettings("", &memoryState{}, defaults)
		assert.Equal(t, "https://default.example.com", s.APIBase)
	})

	t.Run("state errors fall through to default", func(t *testing.T) {
		s := LoadSettings("", &memoryState{loadErr: errors.New("corrupt")}, defaults)
		assert.Equal(t, "https://default.example.com", s.APIBase)
	})

	t.Run("nil state", func(t *testing.T) {
		s := LoadSettings("", nil, defaults)
		assert.Equal(t, "https://default.example.com", s.APIBase)
	})

	t.Run("override is reused on the next run", func(t *testing.T) {
		st := &memoryState{}
		LoadSettings("https://once.example.com/", st, PageDefaults{})
		s := LoadSettings("", st, PageDefaults{})
		assert.Equal(t, "https://once.example.com", s.APIBase)
	})

	t.Run("credentials come from page defaults", func(t *testing.T) {
		s := LoadSettings("", nil, PageDefaults{Firebase: FirebaseDefaults{APIKey: "k", ProjectID: "p", AppID: "a"}})
		assert.Equal(t, Configured{APIKey: "k", ProjectID: "p", AppID: "a"}, s.Credentials)
		assert.Empty(t, s.APIBase)
	})
}

func clearPageEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"DEVICE_QUERY_API_BASE",
		"DEVICE_QUERY_FIREBASE_API_KEY",
		"DEVICE_QUERY_FIREBASE_AUTH_DOMAIN",
		"DEVICE_QUERY_FIREBASE_PROJECT_ID",
		"DEVICE_QUERY_FIREBASE_APP_ID",
	} {
		t.Setenv(env, "")
	}
}

func TestLoadPageDefaults(t *testing.T) {
	clearPageEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base: https://api.example.com
firebase:
  api_key: file-key
  auth_domain: demo.firebaseapp.com
  project_id: demo
  app_id: "1:2:web:3"
`), 0o600))

	d, err := LoadPageDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, PageDefaults{
		APIBase: "https://api.example.com",
		Firebase: FirebaseDefaults{
			APIKey:     "file-key",
			AuthDomain: "demo.firebaseapp.com",
			ProjectID:  "demo",
			AppID:      "1:2:web:3",
		},
	}, d)

	t.Setenv("DEVICE_QUERY_FIREBASE_API_KEY", "env-key")
	t.Setenv("DEVICE_QUERY_API_BASE", "https://env.example.com")
	d, err = LoadPageDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", d.Firebase.APIKey)
	assert.Equal(t, "https://env.example.com", d.APIBase)
}

func TestLoadPageDefaults_NoFile(t *testing.T) {
	clearPageEnv(t)
	t.Setenv("DEVICE_QUERY_FIREBASE_PROJECT_ID", "demo")

	d, err := LoadPageDefaults("")
	require.NoError(t, err)
	assert.Equal(t, "", d.APIBase)
	assert.Equal(t, "demo", d.Firebase.ProjectID)

	_, err = LoadPageDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
