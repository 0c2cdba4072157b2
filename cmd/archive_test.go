package cmd

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pders01/domainsnap/internal/testutil"
)

// archiveNames lists the entry names in a tar.gz file.
func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("failed to read gzip: %v", err)
	}
	tr := tar.NewReader(gz)

	var names []string
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read tar: %v", err)
		}
		names = append(names, h.Name)
	}
	return names
}

func TestArchiveNoSnapshots(t *testing.T) {
	setupStore(t)
	archiveOutput = ""

	c, _ := newTestCommand()
	if err := runArchive(c, []string{"all"}); err != nil {
		t.Fatalf("archive command failed: %v", err)
	}
}

func TestArchiveDomain(t *testing.T) {
	setupStore(t)
	saveFixture(t, testutil.Sample(t))
	saveFixture(t, breakingUpdate(t))
	saveFixture(t, testutil.Manifest(t, "Billing", "0.1.0"))

	archiveOutput = filepath.Join(t.TempDir(), "sales.tar.gz")
	defer func() { archiveOutput = "" }()

	c, _ := newTestCommand()
	if err := runArchive(c, []string{"Sales"}); err != nil {
		t.Fatalf("archive command failed: %v", err)
	}

	got := archiveNames(t, archiveOutput)
	want := []string{"Sales/v1.2.0.json", "Sales/v2.0.0.json"}
	if !slices.Equal(got, want) {
		t.Errorf("expected entries %v, got %v", want, got)
	}
}

func TestArchiveAll(t *testing.T) {
	setupStore(t)
	saveFixture(t, testutil.Sample(t))
	saveFixture(t, testutil.Manifest(t, "Billing", "0.1.0"))

	archiveOutput = filepath.Join(t.TempDir(), "all.tar.gz")
	defer func() { archiveOutput = "" }()

	c, _ := newTestCommand()
	if err := runArchive(c, []string{"all"}); err != nil {
		t.Fatalf("archive command failed: %v", err)
	}

	got := archiveNames(t, archiveOutput)
	want := []string{"Billing/v0.1.0.json", "Sales/v1.2.0.json"}
	if !slices.Equal(got, want) {
		t.Errorf("expected entries %v, got %v", want, got)
	}
}
