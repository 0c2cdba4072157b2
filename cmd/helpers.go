package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pders01/domainsnap/internal/config"
	"github.com/pders01/domainsnap/internal/models"
	"github.com/pders01/domainsnap/internal/store"
	"github.com/spf13/cobra"
)

// errBreakingChanges makes Execute exit with config.ExitBreaking.
var errBreakingChanges = errors.New("breaking changes detected")

// loadSettings resolves config file, environment and the --store flag, in
// increasing order of precedence.
func loadSettings() (config.Settings, error) {
	s, err := config.Load()
	if err != nil {
		return s, err
	}
	if storeRoot != "" {
		s.StoreRoot = storeRoot
	}
	return s, nil
}

func openStore(root string, s config.Settings) (*store.Store, error) {
	opts := store.Options{
		Layout:          store.Layout(s.Layout),
		FilenamePattern: s.FilenamePattern,
	}
	if s.Verbose {
		opts.Logger = log.New(os.Stderr, "domainsnap: ", log.LstdFlags)
	}
	st, err := store.New(root, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

func defaultStore() (*store.Store, config.Settings, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, s, err
	}
	st, err := openStore(s.StoreRoot, s)
	return st, s, err
}

// loadSnapshot resolves ref as a snapshot file path, or as name@version or
// name@latest in the store.
func loadSnapshot(st *store.Store, ref string) (*models.Snapshot, string, error) {
	if _, err := os.Stat(ref); err == nil {
		snap, err := st.Load(ref)
		return snap, ref, err
	}

	name, version, ok := strings.Cut(ref, "@")
	if !ok {
		return nil, "", &store.NotFoundError{Path: ref}
	}
	if version == "latest" {
		return st.GetLatest(name)
	}
	v, err := models.ParseVersion(version)
	if err != nil {
		return nil, "", fmt.Errorf("invalid snapshot reference %q: %w", ref, err)
	}
	snap, err := st.LoadVersion(name, v)
	return snap, st.Path(name, v), err
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}
