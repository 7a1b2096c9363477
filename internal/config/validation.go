package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("❌ Validation Errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("⚠️  Validation Warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, message string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, message string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

// ValidateConfigWithDetails performs comprehensive validation with detailed
// feedback. Unlike Load it also reports warnings, such as a missing aliases
// file, that do not stop the server from starting.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateServerConfigDetails(&config.Server, result)
	validateNavigationConfigDetails(&config.Navigation, result)
	validateSessionConfigDetails(&config.Session, result)
	validateLogConfigDetails(&config.Log, result)

	result.Valid = !result.HasErrors()
	return result
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.addError("server.port", config.Port,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Use a port between 1024-65535 for non-privileged access",
			"Port 0 allows system to assign an available port",
		)
	} else if config.Port > 0 && config.Port < 1024 {
		result.addWarning("server.port", config.Port,
			"port below 1024 requires elevated privileges",
			"Consider using a port above 1024, such as 8080",
		)
	}

	if err := validateServerConfig(&ServerConfig{Host: config.Host}); err != nil {
		result.addError("server.host", config.Host, err.Error(),
			"Use 'localhost' for local use",
			"Use '0.0.0.0' to bind to all interfaces",
		)
	} else if config.Host != "" && net.ParseIP(config.Host) == nil && strings.ContainsAny(config.Host, " /") {
		result.addError("server.host", config.Host, "host is neither an IP address nor a hostname",
			"Use a valid IP address or hostname",
		)
	}

	for _, origin := range config.AllowedOrigins {
		if err := validateOrigin(origin); err != nil {
			result.addError("server.allowed_origins", origin, err.Error(),
				"Origins look like http://localhost:8080",
			)
		}
	}

	validEnvs := []string{"development", "production", "testing"}
	if config.Environment != "" && !contains(validEnvs, config.Environment) {
		result.addWarning("server.environment", config.Environment, "unknown environment type",
			"Use 'development' for local use",
			"Use 'production' for deployments",
		)
	}
	if config.Environment == "production" && config.Host == "0.0.0.0" {
		for _, origin := range config.AllowedOrigins {
			if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
				result.addWarning("server.allowed_origins", origin,
					"production server still allows a loopback origin",
					"List only the public origin the dashboard is served from",
				)
				break
			}
		}
	}
}

func validateNavigationConfigDetails(config *NavigationConfig, result *ValidationResult) {
	if err := validateNavigationConfig(config); err != nil {
		result.addError("navigation", config.AliasesFile, err.Error(),
			"Set navigation.aliases_file to a YAML file with an 'aliases' mapping",
		)
		return
	}

	if config.AliasesFile != "" {
		if info, err := os.Stat(config.AliasesFile); err != nil {
			result.addWarning("navigation.aliases_file", config.AliasesFile,
				"aliases file does not exist, built-in aliases only",
				"Create it with: aliases: {hods: tutors}",
			)
		} else if info.IsDir() {
			result.addError("navigation.aliases_file", config.AliasesFile, "aliases file is a directory")
		}
	}

	if config.Debounce > 5*time.Second {
		result.addWarning("navigation.debounce", config.Debounce.String(),
			"long debounce delays alias reloads",
			"300ms is usually enough to coalesce editor writes",
		)
	}
}

func validateSessionConfigDetails(config *SessionConfig, result *ValidationResult) {
	if err := validateSessionConfig(config); err != nil {
		result.addError("session", config.CookieName, err.Error(),
			"Cookie names may contain letters, digits and _ or -",
		)
		return
	}
	if config.IdleTimeout == 0 {
		result.addWarning("session.idle_timeout", "0",
			"sessions never expire",
			"Set an idle timeout such as 2h to bound memory use",
		)
	}
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if err := validateLogConfig(config); err != nil {
		result.addError("log", config.Level+"/"+config.Format, err.Error(),
			"Levels: debug, info, warn, error",
			"Formats: text, json",
		)
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
