package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultPort       = 3000
	DefaultCORSOrigin = "https://asimraza138.github.io"
)

// Config is the server configuration. Flags win over the environment, which wins over defaults.
type Config struct {
	Port        int
	AdminToken  string
	CORSOrigins []string
	StaticDir   string
}

// keys と環境変数の対応
var envKeys = map[string]string{
	"port":         "PORT",
	"admin_token":  "ADMIN_TOKEN",
	"cors_origins": "CORS_ORIGINS",
	"static_dir":   "STATIC_DIR",
}

// Load reads the configuration out of v. Flags should already be bound with BindPFlag.
func Load(v *viper.Viper) (*Config, error) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("cors_origins", DefaultCORSOrigin)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("BindEnv failed: %w", err)
		}
	}

	cfg := &Config{
		Port:        v.GetInt("port"),
		AdminToken:  v.GetString("admin_token"),
		CORSOrigins: splitOrigins(v.GetString("cors_origins")),
		StaticDir:   v.GetString("static_dir"),
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitOrigins(raw string) []string {
	origins := []string{}
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
