package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pders01/domainsnap/internal/config"
	"github.com/pders01/domainsnap/internal/models"
	"github.com/pders01/domainsnap/internal/store"
	"github.com/pders01/domainsnap/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// setupStore points the configuration at a fresh store directory.
func setupStore(t *testing.T) string {
	t.Helper()
	viper.Reset()
	config.SetDefaults()
	dir := t.TempDir()
	viper.Set("store.root", dir)
	storeRoot = ""
	t.Cleanup(viper.Reset)
	return dir
}

// saveFixture stores m in the configured store and returns the file path.
func saveFixture(t *testing.T, m *models.Manifest) string {
	t.Helper()
	st, err := store.New(viper.GetString("store.root"), store.Options{})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	_, path, err := st.SaveManifest(m)
	if err != nil {
		t.Fatalf("failed to save fixture: %v", err)
	}
	return path
}

// writeManifest writes m as a JSON manifest file and returns its path.
func writeManifest(t *testing.T, m *models.Manifest) string {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	return testutil.CreateFile(t, t.TempDir(), "manifest.json", string(data))
}

// breakingUpdate returns Sample at 2.0.0 with Customer.Email retyped.
func breakingUpdate(t *testing.T) *models.Manifest {
	t.Helper()
	m := testutil.Sample(t)
	m.Version = models.Version{Major: 2}
	m.Entities[0].Properties[1].Type = "EmailAddress"
	return m
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	return c, &buf
}

func TestLoadSnapshotReferences(t *testing.T) {
	dir := setupStore(t)
	path := saveFixture(t, testutil.Sample(t))
	saveFixture(t, breakingUpdate(t))

	st, err := store.New(dir, store.Options{})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	tests := []struct {
		name    string
		ref     string
		version string
		wantErr bool
		is      error
	}{
		{"file path", path, "1.2.0", false, nil},
		{"name at version", "Sales@1.2.0", "1.2.0", false, nil},
		{"name at latest", "Sales@latest", "2.0.0", false, nil},
		{"missing version", "Sales@9.9.9", "", true, store.ErrNotFound},
		{"missing domain", "Billing@latest", "", true, store.ErrNotFound},
		{"not a reference", filepath.Join(dir, "nope.json"), "", true, store.ErrNotFound},
		{"bad version", "Sales@one", "", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, _, err := loadSnapshot(st, tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.ref)
				}
				if tt.is != nil && !errors.Is(err, tt.is) {
					t.Fatalf("expected %v, got %v", tt.is, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadSnapshot(%q) failed: %v", tt.ref, err)
			}
			if snap.Version.String() != tt.version {
				t.Errorf("expected version %s, got %s", tt.version, snap.Version)
			}
		})
	}
}

func TestStoreFlagOverridesConfig(t *testing.T) {
	setupStore(t)
	other := t.TempDir()
	storeRoot = other
	defer func() { storeRoot = "" }()

	s, err := loadSettings()
	if err != nil {
		t.Fatalf("loadSettings failed: %v", err)
	}
	if s.StoreRoot != other {
		t.Errorf("expected store root %s, got %s", other, s.StoreRoot)
	}
}
