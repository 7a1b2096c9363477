package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/collegedash/internal/navigation"
	"github.com/conneroisu/collegedash/internal/sections"
)

var backCmd = &cobra.Command{
	Use:   "back <section>",
	Short: "Show the back chain from a section",
	Long: `Print where repeated back presses lead from a section: a section goes
to its hub, a hub or standalone area goes to the overview, and the overview
stays put. The input is resolved through the alias table first.

Examples:
  collegedash back tutors    # tutors > peoplehub > overview
  collegedash back gateway   # epatracking > assessmenthub > overview
  collegedash back assistant # aiassistant > overview`,
	Args:    cobra.ExactArgs(1),
	PreRunE: bindStandardFlags,
	RunE:    runBack,
}

func init() {
	rootCmd.AddCommand(backCmd)
	AddStandardFlags(backCmd, "navigation")
}

func runBack(cmd *cobra.Command, args []string) error {
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

	id, _ := aliases.Resolve(args[0])
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(backChain(id), " > "))
	return nil
}

// backChain lists id followed by every back target until the overview.
func backChain(id string) []string {
	chain := []string{id}
	for id != sections.Overview.String() {
		id = navigation.BackTarget(id).String()
		chain = append(chain, id)
	}
	return chain
}
