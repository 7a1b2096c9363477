package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/collegedash/internal/config"
	"github.com/conneroisu/collegedash/internal/logging"
	"github.com/conneroisu/collegedash/internal/navigation"
	"github.com/conneroisu/collegedash/internal/tui"
	"github.com/conneroisu/collegedash/internal/watcher"
)

var (
	tuiSection string
	tuiLogFile string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal dashboard",
	Long: `Open the dashboard in the terminal. It navigates exactly like the web
dashboard: ctrl+k opens a palette that accepts section ids, aliases and
titles, esc goes back, h goes home and 1-4 jump to the hubs.

Logs would garble the screen, so they are discarded unless --log-file is set.

Examples:
  collegedash tui                     # Start on the overview
  collegedash tui --section learners  # Start on the learners section
  collegedash tui --log-file tui.log  # Keep logs`,
	PreRunE: bindStandardFlags,
	RunE:    runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	AddStandardFlags(tuiCmd, "navigation")
	tuiCmd.Flags().StringVarP(&tuiSection, "section", "s", "", "Section, alias or id to start on")
	tuiCmd.Flags().StringVar(&tuiLogFile, "log-file", "", "Write logs to this file")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logOutput := io.Discard
	if tuiLogFile != "" {
		f, err := os.OpenFile(tuiLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOutput = f
	}
	logger, err := tuiLogger(cfg, logOutput)
	if err != nil {
		return err
	}

	aliases, err := loadAliases(cfg, logger)
	if err != nil {
		return err
	}

	var opts []navigation.Option
	opts = append(opts, navigation.WithLogger(logger))
	if tuiSection != "" {
		opts = append(opts, navigation.WithInitial(tuiSection))
	}
	router := navigation.NewRouter(aliases, opts...)
	defer router.Close()

	ctx := contextOrBackground(cmd)

	var modelOpts []tui.Option
	if cfg.Navigation.AliasesFile != "" && cfg.Navigation.WatchAliases {
		reloader, err := watcher.NewAliasReloader(cfg.Navigation.AliasesFile, aliases, cfg.Navigation.Debounce, logger)
		if err != nil {
			return fmt.Errorf("watching aliases file: %w", err)
		}
		reloads := make(chan int, 1)
		reloader.OnReload(func(entries int) {
			select {
			case reloads <- entries:
			default:
			}
		})
		if err := reloader.Start(ctx); err != nil {
			return fmt.Errorf("watching aliases file: %w", err)
		}
		defer func() { _ = reloader.Stop() }()
		modelOpts = append(modelOpts, tui.WithReloads(reloads))
	}

	return tui.Run(ctx, tui.New(router, aliases, modelOpts...))
}

func tuiLogger(cfg *config.Config, output io.Writer) (logging.Logger, error) {
	lc, err := cfg.Log.LoggerConfig()
	if err != nil {
		return nil, err
	}
	lc.Output = output
	return logging.NewLogger(lc), nil
}
