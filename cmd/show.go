package cmd

import (
	"fmt"

	"github.com/pders01/domainsnap/internal/codec"
	"github.com/pders01/domainsnap/internal/models"
	"github.com/spf13/cobra"
)

var showSummary bool

var showCmd = &cobra.Command{
	Use:   "show <path|domain@version> | show <domain> <version>",
	Short: "Print a stored snapshot",
	Long: `Print a snapshot as stored (pretty JSON), or a short summary with
--summary.

Examples:
  domainsnap show snapshots/Sales/v1.2.0.json
  domainsnap show Sales 1.2.0
  domainsnap show Sales@latest --summary`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showSummary, "summary", false, "Print element counts instead of the full snapshot")
}

func runShow(cmd *cobra.Command, args []string) error {
	st, _, err := defaultStore()
	if err != nil {
		return err
	}

	ref := args[0]
	if len(args) == 2 {
		ref = args[0] + "@" + args[1]
	}
	snap, path, err := loadSnapshot(st, ref)
	if err != nil {
		return err
	}

	out := stdout(cmd)
	if !showSummary {
		data, err := codec.Marshal(snap)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	s := models.Summarize(snap, path)
	fmt.Fprintf(out, "Domain:         %s\n", s.Name)
	fmt.Fprintf(out, "Version:        %s\n", s.Version)
	fmt.Fprintf(out, "Hash:           %s\n", s.Hash)
	fmt.Fprintf(out, "Created:        %s\n", s.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Path:           %s\n", s.Path)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Entities:       %d\n", s.Entities)
	fmt.Fprintf(out, "Properties:     %d\n", s.Properties)
	fmt.Fprintf(out, "Value objects:  %d\n", s.ValueObjects)
	fmt.Fprintf(out, "Enums:          %d\n", s.Enums)
	fmt.Fprintf(out, "Rule sets:      %d (%d rules)\n", s.RuleSets, s.Rules)
	fmt.Fprintf(out, "Configurations: %d\n", s.Configurations)
	return nil
}
