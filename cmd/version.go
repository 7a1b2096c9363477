package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/collegedash/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for collegedash: version, git commit,
build time, Go version and platform.

Examples:
  collegedash version                # Full text
  collegedash version --short        # One line
  collegedash version --format json  # JSON`,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json, yaml)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	info := version.Get()

	switch versionFormat {
	case "json":
		return outputJSON(out, info)
	case "yaml":
		return outputYAML(out, info)
	case "text":
		if versionShort {
			fmt.Fprintln(out, version.Short())
			return nil
		}
		fmt.Fprintln(out, "collegedash")
		fmt.Fprintln(out, info.String())
		if version.IsRelease() {
			fmt.Fprintln(out, "Build type: release")
		} else {
			fmt.Fprintln(out, "Build type: development")
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", versionFormat)
	}
}
