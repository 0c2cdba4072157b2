package cmd

import (
	"fmt"

	"github.com/pders01/domainsnap/internal/codec"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <snapshot>...",
	Short: "Check that snapshots still match their content hash",
	Long: `Recompute the content hash of each snapshot and compare it with the
stored one. Fails if any snapshot was edited after it was captured.

Examples:
  domainsnap verify snapshots/Sales/*.json
  domainsnap verify Sales@latest Billing@2.0.0`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	st, _, err := defaultStore()
	if err != nil {
		return err
	}

	out := stdout(cmd)
	failed := 0
	for _, ref := range args {
		snap, path, err := loadSnapshot(st, ref)
		if err == nil {
			err = codec.Verify(snap)
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n", ref, err)
			continue
		}
		fmt.Fprintf(out, "✓ %s %s (%s) %s\n", snap.Name, snap.Version, snap.Hash, path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d snapshot(s) failed verification", failed, len(args))
	}
	return nil
}
