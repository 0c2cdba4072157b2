package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pders01/domainsnap/internal/testutil"
)

func resetSnapshotFlags() {
	snapshotManifest = ""
	snapshotOutput = ""
	snapshotForce = false
}

func TestSnapshotCommand(t *testing.T) {
	dir := setupStore(t)
	resetSnapshotFlags()
	snapshotManifest = writeManifest(t, testutil.Sample(t))

	c, out := newTestCommand()
	if err := runSnapshot(c, nil); err != nil {
		t.Fatalf("snapshot command failed: %v", err)
	}

	path := filepath.Join(dir, "Sales", "v1.2.0.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file was not created: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Snapshot saved: "+path) {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestSnapshotUnchanged(t *testing.T) {
	setupStore(t)
	resetSnapshotFlags()
	saveFixture(t, testutil.Sample(t))
	// Same content in a different order hashes the same.
	snapshotManifest = writeManifest(t, testutil.Shuffled(testutil.Sample(t)))

	c, out := newTestCommand()
	if err := runSnapshot(c, nil); err != nil {
		t.Fatalf("snapshot command failed: %v", err)
	}
	if !strings.Contains(out.String(), "unchanged") {
		t.Errorf("expected unchanged notice, got:\n%s", out.String())
	}
}

func TestSnapshotImmutable(t *testing.T) {
	setupStore(t)
	resetSnapshotFlags()
	saveFixture(t, testutil.Sample(t))

	m := testutil.Sample(t)
	m.Entities[0].Properties[1].IsRequired = true
	snapshotManifest = writeManifest(t, m)

	c, _ := newTestCommand()
	err := runSnapshot(c, nil)
	if err == nil {
		t.Fatal("expected error when overwriting a snapshot with different content")
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Errorf("expected hint about --force, got: %v", err)
	}

	snapshotForce = true
	defer resetSnapshotFlags()
	if err := runSnapshot(c, nil); err != nil {
		t.Fatalf("snapshot with --force failed: %v", err)
	}
}

func TestSnapshotOutputDirectory(t *testing.T) {
	setupStore(t)
	resetSnapshotFlags()
	defer resetSnapshotFlags()
	snapshotManifest = writeManifest(t, testutil.Sample(t))
	snapshotOutput = t.TempDir()

	c, _ := newTestCommand()
	if err := runSnapshot(c, nil); err != nil {
		t.Fatalf("snapshot command failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(snapshotOutput, "Sales", "v1.2.0.json")); err != nil {
		t.Errorf("snapshot was not written to --output: %v", err)
	}
}

func TestSnapshotYAMLManifest(t *testing.T) {
	dir := setupStore(t)
	resetSnapshotFlags()
	defer resetSnapshotFlags()

	yamlManifest := `name: Billing
version: 0.1.0
entities:
  - name: Invoice
    keys: [Id]
    properties:
      - name: Id
        type: Guid
        isRequired: true
      - name: Amount
        type: Decimal
        precision: 18
        scale: 2
enums:
  - name: InvoiceState
    values:
      Draft: 0
      Sent: 1
`
	snapshotManifest = testutil.CreateFile(t, t.TempDir(), "billing.yaml", yamlManifest)

	c, _ := newTestCommand()
	if err := runSnapshot(c, nil); err != nil {
		t.Fatalf("snapshot command failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Billing", "v0.1.0.json")); err != nil {
		t.Errorf("YAML manifest was not stored: %v", err)
	}
}

func TestSnapshotInvalidManifest(t *testing.T) {
	setupStore(t)
	resetSnapshotFlags()
	defer resetSnapshotFlags()

	m := testutil.Sample(t)
	m.Entities = append(m.Entities, m.Entities[0])
	snapshotManifest = writeManifest(t, m)

	c, _ := newTestCommand()
	if err := runSnapshot(c, nil); err == nil {
		t.Fatal("expected error for duplicate entity names")
	}
}

func TestSnapshotMissingManifestFlag(t *testing.T) {
	setupStore(t)
	resetSnapshotFlags()

	if err := runSnapshot(nil, nil); err == nil {
		t.Fatal("expected error without --manifest")
	}
}
