package config

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// File mirrors the layout of config.toml.
type File struct {
	Store StoreSection `toml:"store"`
	Diff  DiffSection  `toml:"diff"`
	Prune PruneSection `toml:"prune"`
}

type StoreSection struct {
	Root            string `toml:"root"`
	Layout          string `toml:"layout"`
	FilenamePattern string `toml:"filename_pattern"`
	Verbose         bool   `toml:"verbose"`
}

type DiffSection struct {
	Format         string `toml:"format"`
	FailOnBreaking bool   `toml:"fail_on_breaking"`
}

type PruneSection struct {
	Keep int `toml:"keep"`
}

// DefaultFile returns the configuration matching SetDefaults.
func DefaultFile() File {
	return File{
		Store: StoreSection{
			Root:            DefaultStoreRoot,
			Layout:          DefaultLayout,
			FilenamePattern: DefaultFilenamePattern,
		},
		Diff:  DiffSection{Format: DefaultDiffFormat, FailOnBreaking: true},
		Prune: PruneSection{Keep: DefaultPruneKeep},
	}
}

// WriteDefault writes the default config.toml to w.
func WriteDefault(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(DefaultFile()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
