package cmd

import (
	"fmt"

	"github.com/pders01/domainsnap/internal/diff"
	"github.com/pders01/domainsnap/internal/format"
	"github.com/spf13/cobra"
)

var (
	diffFormat         string
	diffFailOnBreaking bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <before> <after>",
	Short: "Compare two snapshots",
	Long: `Compare two snapshots and report every added, removed and modified
entity, value object, enum, rule set and configuration, each classified
as breaking or non-breaking.

A snapshot is either a file path or a store reference: <domain>@<version>
or <domain>@latest.

Output formats:
  md     Markdown report (default)
  json   JSON for CI
  toon   LLM-friendly toon
  patch  unified diff of the canonical manifests

Exits with code 2 when breaking changes are found, unless
--fail-on-breaking=false or diff.fail_on_breaking = false.

Examples:
  domainsnap diff snapshots/Sales/v1.0.0.json snapshots/Sales/v2.0.0.json
  domainsnap diff Sales@1.0.0 Sales@latest --format json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&diffFormat, "format", "", "Output format: md, json, toon or patch (default: diff.format)")
	diffCmd.Flags().BoolVar(&diffFailOnBreaking, "fail-on-breaking", true, "Exit with code 2 when breaking changes are found")
}

func runDiff(cmd *cobra.Command, args []string) error {
	st, settings, err := defaultStore()
	if err != nil {
		return err
	}

	before, _, err := loadSnapshot(st, args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	after, _, err := loadSnapshot(st, args[1])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[1], err)
	}

	name := diffFormat
	if name == "" {
		name = settings.DiffFormat
	}
	f, err := format.ParseFormat(name)
	if err != nil {
		return err
	}

	d, err := diff.Compare(before, after)
	if err != nil {
		return err
	}

	var output string
	switch f {
	case format.JSON:
		output, err = format.FormatAsJSON(d)
	case format.Toon:
		output, err = format.FormatAsToon(d)
	case format.Patch:
		output, err = format.FormatCanonicalPatch(before, after)
	default:
		output, err = format.FormatAsMarkdown(d)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout(cmd), output)

	failOnBreaking := settings.FailOnBreaking
	if cmd != nil && cmd.Flags().Changed("fail-on-breaking") {
		failOnBreaking = diffFailOnBreaking
	}
	if failOnBreaking && d.HasBreakingChanges() {
		return fmt.Errorf("%s %s → %s: %w", d.Domain, d.BeforeVersion, d.AfterVersion, errBreakingChanges)
	}
	return nil
}
