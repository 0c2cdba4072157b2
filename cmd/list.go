package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alpkeskin/gotoon"
	"github.com/pders01/domainsnap/internal/models"
	"github.com/spf13/cobra"
)

var (
	listJSON bool
	listToon bool
)

var listCmd = &cobra.Command{
	Use:   "list [domain]",
	Short: "List stored domains or the versions of one domain",
	Long: `Without arguments, list every domain in the store with its version
count and latest version. With a domain name, list its versions oldest
first with hash and element counts.

Examples:
  domainsnap list
  domainsnap list Sales
  domainsnap list Sales --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().BoolVar(&listToon, "toon", false, "Output in LLM-friendly toon format")
}

type domainSummary struct {
	Name     string `json:"name"`
	Versions int    `json:"versions"`
	Latest   string `json:"latest"`
}

func runList(cmd *cobra.Command, args []string) error {
	st, _, err := defaultStore()
	if err != nil {
		return err
	}
	out := stdout(cmd)

	if len(args) == 0 {
		domains, err := st.Domains()
		if err != nil {
			return err
		}
		if len(domains) == 0 {
			fmt.Fprintln(out, "No snapshots found")
			return nil
		}

		summaries := make([]domainSummary, 0, len(domains))
		for _, name := range domains {
			entries, err := st.ListVersions(name)
			if err != nil {
				return err
			}
			summaries = append(summaries, domainSummary{
				Name:     name,
				Versions: len(entries),
				Latest:   entries[len(entries)-1].Version.String(),
			})
		}
		if handled, err := printStructured(out, summaries, listJSON, listToon); handled || err != nil {
			return err
		}

		fmt.Fprintf(out, "Found %d domain(s):\n\n", len(summaries))
		for _, s := range summaries {
			fmt.Fprintf(out, "  %-24s %3d version(s)  latest %s\n", s.Name, s.Versions, s.Latest)
		}
		return nil
	}

	name := args[0]
	entries, err := st.ListVersions(name)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No snapshots found for %s\n", name)
		return nil
	}

	summaries := make([]models.Summary, 0, len(entries))
	for _, e := range entries {
		snap, err := st.Load(e.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", e.Path, err)
			continue
		}
		summaries = append(summaries, models.Summarize(snap, e.Path))
	}
	if handled, err := printStructured(out, summaries, listJSON, listToon); handled || err != nil {
		return err
	}

	fmt.Fprintf(out, "Found %d snapshot(s) of %s:\n\n", len(summaries), name)
	for _, s := range summaries {
		fmt.Fprintf(out, "  %s\n", s.Version)
		fmt.Fprintf(out, "    Hash:     %s\n", s.Hash)
		fmt.Fprintf(out, "    Created:  %s\n", s.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "    Entities: %d (%d properties), value objects: %d, enums: %d, rule sets: %d\n",
			s.Entities, s.Properties, s.ValueObjects, s.Enums, s.RuleSets)
		fmt.Fprintf(out, "    Path:     %s\n", s.Path)
		fmt.Fprintln(out)
	}
	return nil
}

// printStructured writes v as JSON or toon when requested and reports
// whether it did.
func printStructured(out io.Writer, v any, asJSON, asToon bool) (bool, error) {
	switch {
	case asJSON:
		output, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(output))
		return true, nil
	case asToon:
		output, err := gotoon.Encode(v)
		if err != nil {
			return true, fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Fprintln(out, output)
		return true, nil
	}
	return false, nil
}
