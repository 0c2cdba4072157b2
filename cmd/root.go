package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pders01/domainsnap/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	storeRoot string
)

var rootCmd = &cobra.Command{
	Use:   "domainsnap",
	Short: "Versioned snapshots and breaking-change diffs for domain manifests",
	Long: `domainsnap captures a domain manifest (entities, value objects, enums,
rule sets and persistence configuration) as an immutable, hashed snapshot
and compares two snapshots to answer: what changed, and is it safe?

  - snapshot:     capture a manifest into the snapshot store
  - diff:         compare two snapshots (exit code 2 on breaking changes)
  - migrate-plan: turn a diff into an actionable migration plan`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a non-zero code on error.
// A diff with breaking changes exits with config.ExitBreaking.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, errBreakingChanges) {
			os.Exit(config.ExitBreaking)
		}
		os.Exit(config.ExitError)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/domainsnap/config.toml)")
	rootCmd.PersistentFlags().StringVar(&storeRoot, "store", "", "snapshot store directory (overrides store.root)")
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "domainsnap"), nil
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(config.ExitError)
		}

		viper.AddConfigPath(dir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	config.SetDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
