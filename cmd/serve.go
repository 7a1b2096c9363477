package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/collegedash/internal/errors"
	"github.com/conneroisu/collegedash/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Start the web dashboard. Each browser gets its own navigation session
through a cookie; open pages follow navigation over a WebSocket.

When navigation.watch_aliases is set, the aliases file is reloaded on change
and connected pages are told about it.

Examples:
  collegedash serve                      # Serve on localhost:8080
  collegedash serve --port 3000          # Serve on another port
  collegedash serve --aliases extra.yml  # Merge extra aliases`,
	PreRunE: bindStandardFlags,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	AddStandardFlags(serveCmd, "server", "navigation")
}

// bindStandardFlags binds the command's standard flags into viper once the
// command to run is known.
func bindStandardFlags(cmd *cobra.Command, _ []string) error {
	return SetViperBindings(cmd, viper.GetViper())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	aliases, err := loadAliases(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, aliases, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Starting college dashboard at http://%s\n", cfg.Server.Addr())

	if err := srv.Start(ctx); err != nil {
		if isAddrError(err) {
			path := configPath()
			suggestions := errors.ServerStartError(err, cfg.Server.Port, &errors.SuggestionContext{ConfigPath: path})
			return errors.NewEnhancedError(
				fmt.Sprintf("Failed to start server on port %d", cfg.Server.Port),
				err,
				suggestions,
			)
		}
		return fmt.Errorf("server error: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Server stopped")
	return nil
}

func isAddrError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "address already in use") ||
		strings.Contains(msg, "bind") ||
		strings.Contains(msg, "permission denied")
}

// contextOrBackground guards commands run directly in tests, where cobra has
// not set a context.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
