package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/collegedash/internal/errors"
	"github.com/conneroisu/collegedash/internal/navigation"
	"github.com/conneroisu/collegedash/internal/sections"
)

var (
	resolveFlags  *StandardFlags
	resolveStrict bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <input...>",
	Short: "Show where navigation input leads",
	Long: `Resolve free-form input the way the dashboard does: case-insensitively
against section ids and aliases. Input that matches nothing is kept as typed
and shows the overview.

Examples:
  collegedash resolve learners EPA     # Two lookups
  collegedash resolve --strict tutorz  # Fail with suggestions on a miss
  collegedash resolve -o json gateway  # The state the router would hold`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: bindStandardFlags,
	RunE:    runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveFlags = AddStandardFlags(resolveCmd, "navigation", "output")
	resolveCmd.Flags().BoolVar(&resolveStrict, "strict", false, "Fail when an input names no section")
}

// Resolution is the outcome of one input.
type Resolution struct {
	Input            string `json:"input" yaml:"input"`
	navigation.State `yaml:",inline"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	if err := resolveFlags.ValidateFlags(); err != nil {
		return err
	}

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

	results := resolveInputs(aliases, args)

	if resolveStrict {
		for _, r := range results {
			if r.Known {
				continue
			}
			suggestions := errors.UnknownSectionError(r.Input, &errors.SuggestionContext{
				AliasesFile:   cfg.Navigation.AliasesFile,
				KnownSections: knownInputs(aliases),
			})
			return errors.NewEnhancedError(
				fmt.Sprintf("No section named %q", r.Input),
				errors.ErrUnknownSection(r.Input),
				suggestions,
			)
		}
	}

	out := cmd.OutOrStdout()
	switch resolveFlags.OutputFormat {
	case "json":
		return outputJSON(out, results)
	case "yaml":
		return outputYAML(out, results)
	default:
		if resolveFlags.Quiet {
			for _, r := range results {
				fmt.Fprintln(out, r.Section)
			}
			return nil
		}
		return outputResolveTable(out, results)
	}
}

func resolveInputs(aliases *sections.AliasTable, inputs []string) []Resolution {
	results := make([]Resolution, 0, len(inputs))
	for _, input := range inputs {
		router := navigation.NewRouter(aliases, navigation.WithInitial(input))
		results = append(results, Resolution{Input: input, State: router.State()})
		router.Close()
	}
	return results
}

func outputResolveTable(out io.Writer, results []Resolution) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INPUT\tSTORED\tSHOWS\tBACK\tTRAIL")
	fmt.Fprintln(w, "-----\t------\t-----\t----\t-----")
	for _, r := range results {
		shows := r.Section
		if !r.Known {
			shows += " (unknown)"
		}
		trail := make([]string, 0, len(r.Breadcrumbs))
		for _, crumb := range r.Breadcrumbs {
			trail = append(trail, crumb.Title)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Input, r.Active, shows, r.Back, strings.Join(trail, " > "))
	}
	return w.Flush()
}
