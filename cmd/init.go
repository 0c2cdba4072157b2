package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pders01/domainsnap/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the snapshot store and a default config",
	Long: `Set up domainsnap for the current project.

This command:
  - Creates the snapshot store directory (store.root or --store)
  - Creates a default config file if it doesn't exist

Running it again is safe: existing files are left alone.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	out := stdout(cmd)

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(settings.StoreRoot, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	fmt.Fprintf(out, "✓ Snapshot store: %s\n", settings.StoreRoot)

	dir, err := configDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	configPath := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := writeDefaultConfig(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		fmt.Fprintf(out, "✓ Created default config: %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Config already exists: %s\n", configPath)
	}

	fmt.Fprintln(out, "\n✓ domainsnap initialized successfully!")
	fmt.Fprintln(out, "  You can now use: domainsnap snapshot --manifest <file>")
	return nil
}

func writeDefaultConfig(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if err := config.WriteDefault(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
