// Package cmd provides the command-line interface for collegedash.
//
// Configuration System:
//
//	Settings are resolved from, highest priority first:
//	1. Command-line flags (--config, --port, --log-level, ...)
//	2. COLLEGEDASH_CONFIG_FILE: path to a custom configuration file
//	3. Individual environment variables (COLLEGEDASH_SERVER_PORT, ...)
//	4. The configuration file (.collegedash.yml in the working directory)
//
// Environment Variables:
//
//	COLLEGEDASH_CONFIG_FILE: Path to custom configuration file
//	COLLEGEDASH_SERVER_PORT: Override server port
//	COLLEGEDASH_NAVIGATION_ALIASES_FILE: Extra aliases file
//	And every other key following the COLLEGEDASH_<SECTION>_<OPTION> pattern
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/collegedash/internal/config"
	"github.com/conneroisu/collegedash/internal/errors"
	"github.com/conneroisu/collegedash/internal/logging"
	"github.com/conneroisu/collegedash/internal/sections"
)

const (
	envPrefix         = "COLLEGEDASH"
	defaultConfigName = ".collegedash"
	defaultConfigFile = ".collegedash.yml"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "collegedash",
	Short: "Section navigation for the college dashboard",
	Long: `collegedash serves the college dashboard: an overview, four hubs
(People, Curriculum, Assessment, Resources) with their sections, and a few
standalone areas. Free-form input such as "learners" or "EPA" is resolved to
a canonical section through the alias table.

Quick Start:
  collegedash serve               Start the web dashboard
  collegedash tui                 Open the terminal dashboard
  collegedash sections            List every section and its aliases
  collegedash resolve learners    Show where an input navigates to
  collegedash back tutors         Show the back chain from a section`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .collegedash.yml, can also use COLLEGEDASH_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig points viper at the configuration file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(envPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(defaultConfigName)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := config.BindEnv(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	// A missing file is fine; defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Warning: cannot read config file:", err)
	}
}

// configPath is the file the configuration was read from, or the default
// name when none was found.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigFile
}

// loadConfig loads the configuration, wrapping failures with suggestions.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		path := configPath()
		suggestions := errors.ConfigurationError(err.Error(), path, &errors.SuggestionContext{ConfigPath: path})
		return nil, errors.NewEnhancedError("Failed to load configuration", err, suggestions)
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	lc, err := cfg.Log.LoggerConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(lc), nil
}

// loadAliases builds the alias table, merging the configured aliases file.
// Problems with individual entries are logged; an unreadable file is an
// error.
func loadAliases(cfg *config.Config, logger logging.Logger) (*sections.AliasTable, error) {
	table := sections.NewAliasTable()
	path := cfg.Navigation.AliasesFile
	if path == "" {
		return table, nil
	}

	collector, err := table.LoadFile(path)
	if err != nil {
		return nil, err
	}
	problems := collector.AliasErrors()
	for i := range problems {
		logger.Warn(context.Background(), &problems[i], "Alias entry skipped or overridden", "path", path)
	}
	return table, nil
}
