package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/collegedash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect collegedash configuration",
	Long: `Inspect collegedash configuration files and resolved settings.

Examples:
  collegedash config validate                       # Validate .collegedash.yml
  collegedash config validate --file prod.yml       # Validate another file
  collegedash config show --format json             # Show resolved settings`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file: port range, allowed origins, the aliases
file path, session timings and log settings. Unset values take their defaults
before checking.

Examples:
  collegedash config validate                  # Validate .collegedash.yml
  collegedash config validate --file cfg.yml   # Validate a specific file
  collegedash config validate --strict         # Treat warnings as errors`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long: `Display the configuration after the file, COLLEGEDASH_ environment
variables, flags and defaults have all been applied.

Examples:
  collegedash config show                 # YAML
  collegedash config show --format json   # JSON`,
	RunE: runConfigShow,
}

var (
	configFile   string
	configFormat string
	configStrict bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configValidateCmd.Flags().
		StringVarP(&configFile, "file", "f", "", "Configuration file to validate (default: .collegedash.yml)")
	AddFlagValidation(configValidateCmd, "file", ValidateFileExists)
	configValidateCmd.Flags().BoolVar(&configStrict, "strict", false, "Treat warnings as errors")

	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "Output format (yaml, json)")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	targetFile := configFile
	if targetFile == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return errors.New("no configuration file found. Use --file to specify a config file")
		}
		targetFile = defaultConfigFile
	}

	v := viper.New()
	v.SetConfigFile(targetFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", targetFile, err)
	}

	cfg, err := config.Resolve(v)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s\n\n", targetFile)

	result := config.ValidateConfigWithDetails(cfg)
	if result.HasErrors() || result.HasWarnings() {
		fmt.Fprint(out, result.String())
	}

	if result.HasErrors() {
		return errors.New("configuration validation failed")
	}
	if configStrict && result.HasWarnings() {
		return errors.New("configuration has warnings (strict mode)")
	}

	fmt.Fprintln(out, "Configuration is valid")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		return outputJSON(out, cfg)
	case "yaml":
		return outputYAML(out, cfg)
	default:
		return fmt.Errorf("unsupported format: %s (supported: yaml, json)", configFormat)
	}
}
