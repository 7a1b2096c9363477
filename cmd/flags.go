package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats accepted by -o.
var outputFormats = []string{"table", "json", "yaml"}

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Server flags
	Port int
	Host string

	// Navigation flags
	AliasesFile string

	// Output flags
	OutputFormat string
	Quiet        bool
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "server":
			addServerFlags(cmd, flags)
		case "navigation":
			addNavigationFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addServerFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 8080, "Port to serve on")
	cmd.Flags().StringVar(&flags.Host, "host", "localhost", "Host to bind to")
	AddFlagValidation(cmd, "port", ValidatePort)
}

func addNavigationFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.AliasesFile, "aliases", "a", "", "Extra aliases file (YAML)")
	AddFlagValidation(cmd, "aliases", ValidateFileExists)
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Only print identifiers")
	AddFlagValidation(cmd, "output", ValidateOutputFormat)
}

// ViperBindings maps standard flag names to configuration keys.
var ViperBindings = map[string]string{
	"port":    "server.port",
	"host":    "server.host",
	"aliases": "navigation.aliases_file",
}

// SetViperBindings binds the standard flags present on cmd to their
// configuration keys, so a flag given on the command line beats the file.
func SetViperBindings(cmd *cobra.Command, v *viper.Viper) error {
	for flagName, configKey := range ViperBindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(configKey, flag); err != nil {
			return fmt.Errorf("binding --%s: %w", flagName, err)
		}
	}
	return nil
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.Port < 0 || f.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", f.Port)
	}
	if f.OutputFormat != "" {
		if err := ValidateOutputFormat(f.OutputFormat); err != nil {
			return err
		}
	}
	if f.Quiet && f.OutputFormat != "" && f.OutputFormat != "table" {
		return fmt.Errorf("--quiet only applies to table output")
	}
	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidatePort checks a port flag value.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}

	return nil
}

// ValidateFileExists checks an optional file flag value.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}
	if err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	return nil
}

// ValidateOutputFormat checks an -o value.
func ValidateOutputFormat(format string) error {
	for _, valid := range outputFormats {
		if format == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %s, must be one of: %s",
		format, strings.Join(outputFormats, ", "))
}
