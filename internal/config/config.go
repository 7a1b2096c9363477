// Package config provides configuration management for collegedash using
// Viper: a YAML file (.collegedash.yml), COLLEGEDASH_ environment overrides
// and command-line flags bound by the cmd package.
//
// Load applies defaults for anything left unset and rejects values that
// would make the server unsafe or unusable.
package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/collegedash/internal/logging"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server" json:"server"`
	Navigation NavigationConfig `mapstructure:"navigation" yaml:"navigation" json:"navigation"`
	Session    SessionConfig    `mapstructure:"session" yaml:"session" json:"session"`
	Log        LogConfig        `mapstructure:"log" yaml:"log" json:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port" json:"port"`
	Host            string        `mapstructure:"host" yaml:"host" json:"host"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins"`
	Environment     string        `mapstructure:"environment" yaml:"environment" json:"environment"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

type NavigationConfig struct {
	AliasesFile  string        `mapstructure:"aliases_file" yaml:"aliases_file" json:"aliases_file"`
	WatchAliases bool          `mapstructure:"watch_aliases" yaml:"watch_aliases" json:"watch_aliases"`
	Debounce     time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

type SessionConfig struct {
	CookieName    string        `mapstructure:"cookie_name" yaml:"cookie_name" json:"cookie_name"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" json:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval" json:"sweep_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Defaults
const (
	DefaultHost            = "localhost"
	DefaultPort            = 8080
	DefaultEnvironment     = "development"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultDebounce        = 300 * time.Millisecond
	DefaultCookieName      = "collegedash_session"
	DefaultIdleTimeout     = 2 * time.Hour
	DefaultSweepInterval   = 5 * time.Minute
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Keys lists every configuration key, for environment binding.
var Keys = []string{
	"server.host",
	"server.port",
	"server.allowed_origins",
	"server.environment",
	"server.shutdown_timeout",
	"navigation.aliases_file",
	"navigation.watch_aliases",
	"navigation.debounce",
	"session.cookie_name",
	"session.idle_timeout",
	"session.sweep_interval",
	"log.level",
	"log.format",
}

// BindEnv makes every key answerable from the environment, so that
// COLLEGEDASH_SERVER_PORT works without a config file mentioning the key.
func BindEnv(v *viper.Viper) error {
	for _, key := range Keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the process-wide viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom builds a Config from v, applying defaults and validating.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config, err := Resolve(v)
	if err != nil {
		return nil, err
	}
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Resolve builds a Config from v and applies defaults without validating,
// for callers that report problems themselves.
func Resolve(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slices and bools set via env or flags (workaround for viper
	// unmarshal only seeing keys it knows about from the file)
	if v.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("navigation.watch_aliases") {
		config.Navigation.WatchAliases = v.GetBool("navigation.watch_aliases")
	}
	// The root --log-level flag is bound to the flat "log-level" key and
	// beats the file.
	if flagLevel := v.GetString("log-level"); flagLevel != "" {
		config.Log.Level = flagLevel
	}

	applyDefaults(&config, v)
	return &config, nil
}

func applyDefaults(config *Config, v *viper.Viper) {
	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if !v.IsSet("server.port") {
		config.Server.Port = DefaultPort
	}
	if config.Server.Environment == "" {
		config.Server.Environment = DefaultEnvironment
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = defaultOrigins(config.Server.Host, config.Server.Port)
	}

	if config.Navigation.Debounce == 0 {
		config.Navigation.Debounce = DefaultDebounce
	}
	if !v.IsSet("navigation.watch_aliases") && config.Navigation.AliasesFile != "" {
		config.Navigation.WatchAliases = true
	}

	if config.Session.CookieName == "" {
		config.Session.CookieName = DefaultCookieName
	}
	if !v.IsSet("session.idle_timeout") {
		config.Session.IdleTimeout = DefaultIdleTimeout
	}
	if config.Session.SweepInterval == 0 {
		config.Session.SweepInterval = DefaultSweepInterval
	}

	if config.Log.Level == "" {
		config.Log.Level = DefaultLogLevel
	}
	if config.Log.Format == "" {
		config.Log.Format = DefaultLogFormat
	}
}

func defaultOrigins(host string, port int) []string {
	origins := []string{fmt.Sprintf("http://%s:%d", host, port)}
	if host != "localhost" {
		origins = append(origins, fmt.Sprintf("http://localhost:%d", port))
	}
	if host != "127.0.0.1" {
		origins = append(origins, fmt.Sprintf("http://127.0.0.1:%d", port))
	}
	return origins
}

// Addr is the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggerConfig translates the log section for the logging package.
func (c *LogConfig) LoggerConfig() (*logging.LoggerConfig, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = c.Format
	return lc, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateNavigationConfig(&config.Navigation); err != nil {
		return fmt.Errorf("navigation config: %w", err)
	}
	if err := validateSessionConfig(&config.Session); err != nil {
		return fmt.Errorf("session config: %w", err)
	}
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	for _, origin := range config.AllowedOrigins {
		if err := validateOrigin(origin); err != nil {
			return fmt.Errorf("allowed origin %q: %w", origin, err)
		}
	}

	if config.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must not be negative")
	}

	return nil
}

func validateOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("origin must not carry a path, query or fragment")
	}
	return nil
}

func validateNavigationConfig(config *NavigationConfig) error {
	if strings.ContainsRune(config.AliasesFile, 0) {
		return fmt.Errorf("aliases_file contains a NUL byte")
	}
	if config.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	if config.WatchAliases && config.AliasesFile == "" {
		return fmt.Errorf("watch_aliases requires aliases_file")
	}
	return nil
}

func validateSessionConfig(config *SessionConfig) error {
	// Reuse net/http's cookie name rules.
	if err := (&http.Cookie{Name: config.CookieName, Value: "x"}).Valid(); err != nil {
		return fmt.Errorf("cookie_name: %w", err)
	}
	if config.IdleTimeout < 0 {
		return fmt.Errorf("idle_timeout must not be negative")
	}
	if config.SweepInterval < 0 {
		return fmt.Errorf("sweep_interval must not be negative")
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return err
	}
	if config.Format != "text" && config.Format != "json" {
		return fmt.Errorf("format %q is not one of text, json", config.Format)
	}
	return nil
}
