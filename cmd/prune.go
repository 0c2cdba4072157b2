package cmd

import (
	"fmt"
	"io"

	"github.com/pders01/domainsnap/internal/store"
	"github.com/spf13/cobra"
)

var (
	pruneKeep   int
	pruneDryRun bool
	pruneForce  bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune <domain>",
	Short: "Remove old snapshot versions of a domain",
	Long: `Keep the N newest versions of a domain and remove the rest.

N comes from --keep or prune.keep in ~/.config/domainsnap/config.toml.
--keep 0 removes every version:
  [prune]
  keep = 10

Example:
  domainsnap prune Sales              # Show what would be pruned
  domainsnap prune Sales --force      # Actually prune snapshots`,
	Args: cobra.ExactArgs(1),
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().IntVar(&pruneKeep, "keep", 0, "Number of newest versions to keep (default: prune.keep)")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", true, "Show what would be pruned without deleting")
	pruneCmd.Flags().BoolVar(&pruneForce, "force", false, "Actually delete snapshots (overrides dry-run)")
}

func runPrune(cmd *cobra.Command, args []string) error {
	st, settings, err := defaultStore()
	if err != nil {
		return err
	}
	name := args[0]

	keep := settings.PruneKeep
	if cmd != nil && cmd.Flags().Changed("keep") {
		keep = pruneKeep
	}

	out := stdout(cmd)
	fmt.Fprintf(out, "Retention policy: keep %d newest version(s) of %s\n\n", keep, name)

	candidates, err := st.PruneCandidates(name, keep)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(out, "No snapshots to prune")
		return nil
	}

	fmt.Fprintf(out, "Snapshots to prune (%d):\n\n", len(candidates))
	for _, c := range candidates {
		fmt.Fprintf(out, "  %s %s\n", c.Name, c.Version)
		fmt.Fprintf(out, "    Path: %s\n", c.Path)
	}

	if pruneDryRun && !pruneForce {
		fmt.Fprintln(out, "\nThis is a dry run. Use --force to actually prune snapshots.")
		return nil
	}

	fmt.Fprintln(out, "\nPruning snapshots...")
	pruned, err := deleteEntries(st, candidates, out)
	fmt.Fprintf(out, "\n✓ Pruned %d snapshot(s)\n", pruned)
	return err
}

func deleteEntries(st *store.Store, entries []store.Entry, out io.Writer) (int, error) {
	pruned := 0
	var failed int
	for _, e := range entries {
		fmt.Fprintf(out, "  Deleting %s %s...\n", e.Name, e.Version)
		ok, err := st.Remove(e)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(out, "    Error: %v\n", err)
		case !ok:
			fmt.Fprintf(out, "    Already gone\n")
		default:
			pruned++
			fmt.Fprintf(out, "    ✓ Deleted\n")
		}
	}
	if failed > 0 {
		return pruned, fmt.Errorf("failed to delete %d snapshot(s)", failed)
	}
	return pruned, nil
}
