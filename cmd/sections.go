package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/collegedash/internal/sections"
)

var (
	sectionsFlags *StandardFlags
	sectionsKind  string
)

var sectionsCmd = &cobra.Command{
	Use:     "sections",
	Aliases: []string{"ls", "list"},
	Short:   "List every section and its aliases",
	Long: `List the section catalogue in navigation order: the overview, each hub
followed by its sections, then the standalone areas. Aliases include any
configured aliases file.

Examples:
  collegedash sections                # Table
  collegedash sections -o json        # JSON, as served by /api/sections
  collegedash sections --kind hub     # Only the hubs
  collegedash sections -q             # Only ids`,
	PreRunE: bindStandardFlags,
	RunE:    runSections,
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
	sectionsFlags = AddStandardFlags(sectionsCmd, "navigation", "output")
	sectionsCmd.Flags().StringVarP(&sectionsKind, "kind", "k", "", "Only list one kind (root, hub, leaf, standalone)")
}

func runSections(cmd *cobra.Command, args []string) error {
	if err := sectionsFlags.ValidateFlags(); err != nil {
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

	infos, err := filterKind(sections.Describe(aliases), sectionsKind)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch sectionsFlags.OutputFormat {
	case "json":
		return outputJSON(out, infos)
	case "yaml":
		return outputYAML(out, infos)
	default:
		if sectionsFlags.Quiet {
			for _, info := range infos {
				fmt.Fprintln(out, info.ID)
			}
			return nil
		}
		return outputSectionsTable(out, infos)
	}
}

func filterKind(infos []sections.Info, kind string) ([]sections.Info, error) {
	if kind == "" {
		return infos, nil
	}
	kind = strings.ToLower(kind)
	switch kind {
	case "root", "hub", "leaf", "standalone":
	default:
		return nil, fmt.Errorf("unknown kind %q, must be one of: root, hub, leaf, standalone", kind)
	}

	filtered := infos[:0:0]
	for _, info := range infos {
		if info.Kind == kind {
			filtered = append(filtered, info)
		}
	}
	return filtered, nil
}

func outputSectionsTable(out io.Writer, infos []sections.Info) error {
	title := cases.Title(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tTITLE\tKIND\tPARENT\tALIASES")
	fmt.Fprintln(w, "--\t-----\t----\t------\t-------")
	for _, info := range infos {
		parent := info.Parent
		if parent == "" {
			parent = "-"
		}
		aliases := strings.Join(info.Aliases, ", ")
		if aliases == "" {
			aliases = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", info.ID, info.Title, title.String(info.Kind), parent, aliases)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d sections\n", len(infos))
	return nil
}

func outputJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputYAML(out io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(v)
}

// knownInputs lists every id and alias, for suggestions.
func knownInputs(table *sections.AliasTable) []string {
	seen := make(map[string]bool)
	var known []string
	add := func(input string) {
		if !seen[input] {
			seen[input] = true
			known = append(known, input)
		}
	}
	for _, s := range sections.All() {
		add(s.String())
	}
	for alias := range table.Snapshot() {
		add(alias)
	}
	sort.Strings(known)
	return known
}
