package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/collegedash/internal/logging"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(v *viper.Viper)
		expectError bool
		check       func(t *testing.T, c *Config)
	}{
		{
			name:  "defaults",
			setup: func(v *viper.Viper) {},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "localhost", c.Server.Host)
				assert.Equal(t, 8080, c.Server.Port)
				assert.Equal(t, "development", c.Server.Environment)
				assert.Equal(t, DefaultShutdownTimeout, c.Server.ShutdownTimeout)
				assert.Equal(t, []string{"http://localhost:8080", "http://127.0.0.1:8080"}, c.Server.AllowedOrigins)
				assert.Equal(t, DefaultDebounce, c.Navigation.Debounce)
				assert.False(t, c.Navigation.WatchAliases)
				assert.Equal(t, DefaultCookieName, c.Session.CookieName)
				assert.Equal(t, DefaultIdleTimeout, c.Session.IdleTimeout)
				assert.Equal(t, "info", c.Log.Level)
				assert.Equal(t, "text", c.Log.Format)
			},
		},
		{
			name: "explicit values",
			setup: func(v *viper.Viper) {
				v.Set("server.port", 3000)
				v.Set("server.host", "0.0.0.0")
				v.Set("server.allowed_origins", []string{"https://dash.example.ac.uk"})
				v.Set("navigation.aliases_file", "aliases.yml")
				v.Set("navigation.debounce", "1s")
				v.Set("session.idle_timeout", "30m")
				v.Set("log.level", "debug")
				v.Set("log.format", "json")
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "0.0.0.0:3000", c.Server.Addr())
				assert.Equal(t, []string{"https://dash.example.ac.uk"}, c.Server.AllowedOrigins)
				assert.True(t, c.Navigation.WatchAliases, "watching defaults on with a file")
				assert.Equal(t, time.Second, c.Navigation.Debounce)
				assert.Equal(t, 30*time.Minute, c.Session.IdleTimeout)
				assert.Equal(t, "json", c.Log.Format)
			},
		},
		{
			name: "port zero and no expiry",
			setup: func(v *viper.Viper) {
				v.Set("server.port", 0)
				v.Set("session.idle_timeout", 0)
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 0, c.Server.Port)
				assert.Equal(t, time.Duration(0), c.Session.IdleTimeout)
			},
		},
		{
			name: "watching disabled explicitly",
			setup: func(v *viper.Viper) {
				v.Set("navigation.aliases_file", "aliases.yml")
				v.Set("navigation.watch_aliases", false)
			},
			check: func(t *testing.T, c *Config) {
				assert.False(t, c.Navigation.WatchAliases)
			},
		},
		{
			name: "log-level flag",
			setup: func(v *viper.Viper) {
				v.Set("log.level", "debug")
				v.Set("log-level", "warn")
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "warn", c.Log.Level)
			},
		},
		{
			name:        "invalid port type",
			setup:       func(v *viper.Viper) { v.Set("server.port", "invalid_port") },
			expectError: true,
		},
		{
			name:        "port out of range",
			setup:       func(v *viper.Viper) { v.Set("server.port", 70000) },
			expectError: true,
		},
		{
			name:        "dangerous host",
			setup:       func(v *viper.Viper) { v.Set("server.host", "localhost; rm -rf /") },
			expectError: true,
		},
		{
			name:        "bad origin",
			setup:       func(v *viper.Viper) { v.Set("server.allowed_origins", []string{"ftp://example.com"}) },
			expectError: true,
		},
		{
			name:        "watch without file",
			setup:       func(v *viper.Viper) { v.Set("navigation.watch_aliases", true) },
			expectError: true,
		},
		{
			name:        "bad cookie name",
			setup:       func(v *viper.Viper) { v.Set("session.cookie_name", "bad name") },
			expectError: true,
		},
		{
			name:        "bad log level",
			setup:       func(v *viper.Viper) { v.Set("log.level", "loud") },
			expectError: true,
		},
		{
			name:        "bad log format",
			setup:       func(v *viper.Viper) { v.Set("log.format", "xml") },
			expectError: true,
		},
		{
			name:        "negative debounce",
			setup:       func(v *viper.Viper) { v.Set("navigation.debounce", "-1s") },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			tt.setup(v)

			config, err := LoadFrom(v)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, config)
			tt.check(t, config)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".collegedash.yml")
	content := `server:
  port: 9090
  environment: production
navigation:
  aliases_file: ./aliases.yml
  debounce: 150ms
session:
  cookie_name: cd_session
log:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	config, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "production", config.Server.Environment)
	assert.Equal(t, "./aliases.yml", config.Navigation.AliasesFile)
	assert.Equal(t, 150*time.Millisecond, config.Navigation.Debounce)
	assert.Equal(t, "cd_session", config.Session.CookieName)
	assert.Equal(t, "warn", config.Log.Level)
}

func TestLoadWithEnvironment(t *testing.T) {
	t.Setenv("COLLEGEDASH_SERVER_PORT", "7070")
	t.Setenv("COLLEGEDASH_LOG_FORMAT", "json")

	v := viper.New()
	v.SetEnvPrefix("COLLEGEDASH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	require.NoError(t, BindEnv(v))

	config, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "json", config.Log.Format)
}

func TestLoadUsesGlobalViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("server.port", 4321)

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4321, config.Server.Port)
}

func TestLoggerConfig(t *testing.T) {
	lc, err := (&LogConfig{Level: "debug", Format: "json"}).LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, "json", lc.Format)

	_, err = (&LogConfig{Level: "verbose"}).LoggerConfig()
	assert.Error(t, err)
}

func TestDefaultOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://localhost:80", "http://127.0.0.1:80"}, defaultOrigins("localhost", 80))
	assert.Equal(t,
		[]string{"http://dash.local:80", "http://localhost:80", "http://127.0.0.1:80"},
		defaultOrigins("dash.local", 80))
}

func TestResolveSkipsValidation(t *testing.T) {
	v := viper.New()
	v.Set("server.port", 70000)

	config, err := Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 70000, config.Server.Port)
	assert.Equal(t, DefaultCookieName, config.Session.CookieName, "defaults still apply")

	_, err = LoadFrom(v)
	assert.Error(t, err)
}
