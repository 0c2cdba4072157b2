package cmd

import (
	"errors"
	"fmt"

	"github.com/pders01/domainsnap/internal/codec"
	"github.com/pders01/domainsnap/internal/models"
	"github.com/pders01/domainsnap/internal/store"
	"github.com/spf13/cobra"
)

var (
	snapshotManifest string
	snapshotOutput   string
	snapshotForce    bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture a manifest as an immutable snapshot",
	Long: `Read a domain manifest (JSON or YAML), validate it and store it as a
hashed snapshot named after its domain and version.

Snapshots are immutable: saving a different manifest under an existing
domain and version fails unless --force is given. Saving identical content
again is a no-op.

Examples:
  domainsnap snapshot --manifest sales.manifest.json
  domainsnap snapshot --manifest sales.yaml --output build/snapshots`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVar(&snapshotManifest, "manifest", "", "Path to the manifest file (.json, .yaml or .yml)")
	snapshotCmd.Flags().StringVar(&snapshotOutput, "output", "", "Store directory to write to (default: store.root)")
	snapshotCmd.Flags().BoolVar(&snapshotForce, "force", false, "Overwrite an existing snapshot with different content")
	snapshotCmd.MarkFlagRequired("manifest")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if snapshotManifest == "" {
		return fmt.Errorf("--manifest is required")
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	root := settings.StoreRoot
	if snapshotOutput != "" {
		root = snapshotOutput
	}
	st, err := openStore(root, settings)
	if err != nil {
		return err
	}

	m, err := models.LoadManifestFile(snapshotManifest)
	if err != nil {
		return err
	}
	hash, err := codec.Hash(m)
	if err != nil {
		return err
	}

	out := stdout(cmd)
	existing, err := st.LoadVersion(m.Name, m.Version)
	switch {
	case err == nil && existing.Hash == hash:
		fmt.Fprintf(out, "Snapshot %s %s is unchanged (hash %s)\n", m.Name, m.Version, hash)
		fmt.Fprintf(out, "  Path: %s\n", st.Path(m.Name, m.Version))
		return nil
	case err == nil && !snapshotForce:
		return fmt.Errorf("snapshot %s %s already exists with hash %s (new content hashes to %s); bump the version or use --force",
			m.Name, m.Version, existing.Hash, hash)
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("failed to check existing snapshot: %w", err)
	}

	snap, path, err := st.SaveManifest(m)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Snapshot saved: %s\n", path)
	fmt.Fprintf(out, "  Domain:  %s\n", snap.Name)
	fmt.Fprintf(out, "  Version: %s\n", snap.Version)
	fmt.Fprintf(out, "  Hash:    %s\n", snap.Hash)
	return nil
}
