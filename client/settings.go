package client

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Credentials は document store の接続情報。Unconfigured か Configured のどちらか
type Credentials interface {
	isCredentials()
}

type Unconfigured struct{}

type Configured struct {
	APIKey     string
	AuthDomain string
	ProjectID  string
	AppID      string
}

func (Unconfigured) isCredentials() {}
func (Configured) isCredentials()   {}

// NewCredentials returns Configured only when the api key, project id and app id are all set.
// The auth domain is optional.
func NewCredentials(apiKey, authDomain, projectID, appID string) Credentials {
	c := Configured{
		APIKey:     strings.TrimSpace(apiKey),
		AuthDomain: strings.TrimSpace(authDomain),
		ProjectID:  strings.TrimSpace(projectID),
		AppID:      strings.TrimSpace(appID),
	}
	if c.APIKey == "" || c.ProjectID == "" || c.AppID == "" {
		return Unconfigured{}
	}
	return c
}

type FirebaseDefaults struct {
	APIKey     string
	AuthDomain string
	ProjectID  string
	AppID      string
}

// PageDefaults are the values baked into the deployment, the lowest priority source.
type PageDefaults struct {
	APIBase  string
	Firebase FirebaseDefaults
}

var pageKeys = []string{
	"api_base",
	"firebase.api_key",
	"firebase.auth_domain",
	"firebase.project_id",
	"firebase.app_id",
}

// LoadPageDefaults reads a YAML file (optional) and DEVICE_QUERY_* env vars.
// DEVICE_QUERY_FIREBASE_API_KEY overrides firebase.api_key and so on.
func LoadPageDefaults(path string) (PageDefaults, error) {
	v := viper.New()
	v.SetEnvPrefix("DEVICE_QUERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range pageKeys {
		if err := v.BindEnv(key); err != nil {
			return PageDefaults{}, fmt.Errorf("BindEnv failed: %w", err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return PageDefaults{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	return PageDefaults{
		APIBase: strings.TrimSpace(v.GetString("api_base")),
		Firebase: FirebaseDefaults{
			APIKey:     v.GetString("firebase.api_key"),
			AuthDomain: v.GetString("firebase.auth_domain"),
			ProjectID:  v.GetString("firebase.project_id"),
			AppID:      v.GetString("firebase.app_id"),
		},
	}, nil
}

// Settings is computed once per submission attempt and never changed afterwards.
type Settings struct {
	APIBase     string
	Credentials Credentials
}

// LoadSettings resolves the API base from, in order, the override, the persisted
// value and the page default. A non-empty override is persisted with one trailing
// slash removed. State errors are logged and treated as an empty source.
func LoadSettings(override string, state StateStore, defaults PageDefaults) Settings {
	s := Settings{
		Credentials: NewCredentials(
			defaults.Firebase.APIKey,
			defaults.Firebase.AuthDomain,
			defaults.Firebase.ProjectID,
			defaults.Firebase.AppID,
		),
	}

	if cleaned := strings.TrimSuffix(strings.TrimSpace(override), "/"); cleaned != "" {
		if state != nil {
			if err := state.Save(cleaned); err != nil {
				slog.Warn("failed to persist api base", slog.Any("err", err))
			}
		}
		s.APIBase = cleaned
		return s
	}

	if state != nil {
		stored, err := state.Load()
		if err != nil {
			slog.Warn("failed to load persisted api base", slog.Any("err", err))
		}
		if stored != "" {
			s.APIBase = stored
			return s
		}
	}

	s.APIBase = defaults.APIBase
	return s
}
