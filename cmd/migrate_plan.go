package cmd

import (
	"fmt"
	"os"

	"github.com/pders01/domainsnap/internal/diff"
	"github.com/pders01/domainsnap/internal/plan"
	"github.com/spf13/cobra"
)

var migratePlanOutput string

var migratePlanCmd = &cobra.Command{
	Use:   "migrate-plan <before> <after>",
	Short: "Generate a migration plan between two snapshots",
	Long: `Diff two snapshots and turn the result into a Markdown migration plan:
a summary, the breaking changes with a remediation for each, the
non-breaking changes and a numbered list of recommended actions.

Snapshots are file paths or <domain>@<version> / <domain>@latest.

Examples:
  domainsnap migrate-plan Sales@1.0.0 Sales@2.0.0
  domainsnap migrate-plan before.json after.json --output MIGRATION.md`,
	Args: cobra.ExactArgs(2),
	RunE: runMigratePlan,
}

func init() {
	rootCmd.AddCommand(migratePlanCmd)

	migratePlanCmd.Flags().StringVar(&migratePlanOutput, "output", "", "Write the plan to this file instead of stdout")
}

func runMigratePlan(cmd *cobra.Command, args []string) error {
	st, _, err := defaultStore()
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

	d, err := diff.Compare(before, after)
	if err != nil {
		return err
	}
	text, err := plan.Generate(d)
	if err != nil {
		return err
	}

	if migratePlanOutput == "" {
		fmt.Fprint(stdout(cmd), text)
		return nil
	}
	if err := os.WriteFile(migratePlanOutput, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	fmt.Fprintf(stdout(cmd), "✓ Migration plan written to %s\n", migratePlanOutput)
	return nil
}
