package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitBreaking = 2
)

// Defaults.
const (
	DefaultStoreRoot       = "snapshots"
	DefaultLayout          = "domain"
	DefaultFilenamePattern = "v{major}.{minor}.{patch}.json"
	DefaultDiffFormat      = "md"
	DefaultPruneKeep       = 10
)

// SetDefaults registers every default with viper.
func SetDefaults() {
	viper.SetDefault("store.root", DefaultStoreRoot)
	viper.SetDefault("store.layout", DefaultLayout)
	viper.SetDefault("store.filename_pattern", DefaultFilenamePattern)
	viper.SetDefault("store.verbose", false)
	viper.SetDefault("diff.format", DefaultDiffFormat)
	viper.SetDefault("diff.fail_on_breaking", true)
	viper.SetDefault("prune.keep", DefaultPruneKeep)
}

// GetStoreRoot returns the snapshot store directory
func GetStoreRoot() string {
	return viper.GetString("store.root")
}

// GetLayout returns the store layout, "domain" or "flat"
func GetLayout() string {
	return viper.GetString("store.layout")
}

// GetFilenamePattern returns the snapshot filename pattern
func GetFilenamePattern() string {
	return viper.GetString("store.filename_pattern")
}

// IsVerbose reports whether store operations should be logged
func IsVerbose() bool {
	return viper.GetBool("store.verbose")
}

// GetDiffFormat returns the default diff output format
func GetDiffFormat() string {
	return viper.GetString("diff.format")
}

// FailOnBreaking reports whether a breaking diff should exit with ExitBreaking
func FailOnBreaking() bool {
	return viper.GetBool("diff.fail_on_breaking")
}

// GetPruneKeep returns how many versions prune keeps per domain
func GetPruneKeep() int {
	return viper.GetInt("prune.keep")
}

// Settings is the effective configuration after the environment overlay.
// Unset variables leave the value from the config file or defaults.
type Settings struct {
	StoreRoot       string `env:"DOMAINSNAP_STORE_ROOT"`
	Layout          string `env:"DOMAINSNAP_STORE_LAYOUT"`
	FilenamePattern string `env:"DOMAINSNAP_FILENAME_PATTERN"`
	Verbose         bool   `env:"DOMAINSNAP_VERBOSE"`
	DiffFormat      string `env:"DOMAINSNAP_DIFF_FORMAT"`
	FailOnBreaking  bool   `env:"DOMAINSNAP_FAIL_ON_BREAKING"`
	PruneKeep       int    `env:"DOMAINSNAP_PRUNE_KEEP"`
}

// Load reads the viper configuration and overlays DOMAINSNAP_* variables.
func Load() (Settings, error) {
	s := Settings{
		StoreRoot:       GetStoreRoot(),
		Layout:          GetLayout(),
		FilenamePattern: GetFilenamePattern(),
		Verbose:         IsVerbose(),
		DiffFormat:      GetDiffFormat(),
		FailOnBreaking:  FailOnBreaking(),
		PruneKeep:       GetPruneKeep(),
	}
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
