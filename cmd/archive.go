package cmd

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pders01/domainsnap/internal/store"
	"github.com/spf13/cobra"
)

var archiveOutput string

var archiveCmd = &cobra.Command{
	Use:   "archive <domain|all>",
	Short: "Bundle snapshots for external storage",
	Long: `Create a tar.gz archive of snapshot files for backup or transfer.
Entries are stored as <domain>/<file> regardless of the store layout.

Examples:
  domainsnap archive Sales               # Archive every version of Sales
  domainsnap archive all                 # Archive the whole store
  domainsnap archive all --output my-snapshots.tar.gz`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVar(&archiveOutput, "output", "", "Output file path (default: domainsnap-<domain>.tar.gz)")
}

func runArchive(cmd *cobra.Command, args []string) error {
	st, _, err := defaultStore()
	if err != nil {
		return err
	}
	out := stdout(cmd)
	target := args[0]

	domains := []string{target}
	if target == "all" {
		if domains, err = st.Domains(); err != nil {
			return err
		}
	}

	var selected []store.Entry
	for _, name := range domains {
		entries, err := st.ListVersions(name)
		if err != nil {
			return err
		}
		selected = append(selected, entries...)
	}

	if len(selected) == 0 {
		fmt.Fprintln(out, "No snapshots found")
		return nil
	}

	outputFile := archiveOutput
	if outputFile == "" {
		outputFile = fmt.Sprintf("domainsnap-%s.tar.gz", target)
	}

	fmt.Fprintf(out, "Archiving %d snapshot(s) to: %s\n\n", len(selected), outputFile)

	if err := createArchive(outputFile, selected, out); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	fileInfo, err := os.Stat(outputFile)
	if err == nil {
		fmt.Fprintf(out, "\n✓ Archive created: %s (%.2f KB)\n", outputFile, float64(fileInfo.Size())/1024)
	} else {
		fmt.Fprintf(out, "\n✓ Archive created: %s\n", outputFile)
	}
	return nil
}

func createArchive(filename string, entries []store.Entry, out io.Writer) (err error) {
	outFile, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := outFile.Close(); err == nil {
			err = cerr
		}
	}()

	gzWriter := gzip.NewWriter(outFile)
	defer func() {
		if cerr := gzWriter.Close(); err == nil {
			err = cerr
		}
	}()

	tarWriter := tar.NewWriter(gzWriter)
	defer func() {
		if cerr := tarWriter.Close(); err == nil {
			err = cerr
		}
	}()

	for i, e := range entries {
		fmt.Fprintf(out, "  [%d/%d] Adding %s %s...\n", i+1, len(entries), e.Name, e.Version)
		if err := addFile(tarWriter, e.Path, filepath.ToSlash(filepath.Join(e.Name, filepath.Base(e.Path)))); err != nil {
			return fmt.Errorf("failed to archive %s: %w", e.Path, err)
		}
	}
	return nil
}

func addFile(tw *tar.Writer, path, name string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, file)
	return err
}
