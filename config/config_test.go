package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envKeys {
		t.Setenv(env, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "", cfg.AdminToken)
	assert.Equal(t, []string{"https://asimraza138.github.io"}, cfg.CORSOrigins)
	assert.Equal(t, "", cfg.StaticDir)
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("ADMIN_TOKEN", "secret")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com/ ,")
	t.Setenv("STATIC_DIR", "./public")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "secret", cfg.AdminToken)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "./public", cfg.StaticDir)
}

func TestLoad_FlagWinsOverEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")

	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.Int("port", DefaultPort, "")
	require.NoError(t, fs.Parse([]string{"--port", "9090"}))

	v := viper.New()
	require.NoError(t, v.BindPFlag("port", fs.Lookup("port")))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "70000")

	_, err := Load(viper.New())
	assert.Error(t, err)
}
