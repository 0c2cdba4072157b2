package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pders01/domainsnap/internal/diff"
	"github.com/pders01/domainsnap/internal/models"
	"github.com/spf13/cobra"
)

var (
	statsJSON bool
	statsToon bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [domain]",
	Short: "Show snapshot statistics and change history",
	Long: `Display statistics about the snapshots of a domain including:
  - Version count and date range
  - Element counts of the latest version
  - Changes between consecutive versions, with breaking counts

Without a domain, statistics are shown for every domain in the store.

Examples:
  domainsnap stats Sales
  domainsnap stats --json
  domainsnap stats Sales --toon`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().BoolVar(&statsToon, "toon", false, "Output in LLM-friendly toon format")
}

type domainStats struct {
	Domain          string           `json:"domain"`
	TotalVersions   int              `json:"total_versions"`
	Oldest          string           `json:"oldest"`
	Latest          string           `json:"latest"`
	LatestSummary   models.Summary   `json:"latest_summary"`
	BreakingUpdates int              `json:"breaking_updates"`
	Transitions     []versionChanges `json:"transitions"`
}

type versionChanges struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Changes  int    `json:"changes"`
	Breaking int    `json:"breaking"`
}

func runStats(cmd *cobra.Command, args []string) error {
	st, _, err := defaultStore()
	if err != nil {
		return err
	}
	out := stdout(cmd)

	domains := args
	if len(domains) == 0 {
		if domains, err = st.Domains(); err != nil {
			return err
		}
	}

	all := make([]domainStats, 0, len(domains))
	for _, name := range domains {
		entries, err := st.ListVersions(name)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			continue
		}

		stats := domainStats{
			Domain:      name,
			Transitions: []versionChanges{},
		}
		var prev *models.Snapshot
		for _, e := range entries {
			snap, err := st.Load(e.Path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", e.Path, err)
				continue
			}
			stats.TotalVersions++
			if stats.Oldest == "" {
				stats.Oldest = snap.Version.String()
			}
			stats.Latest = snap.Version.String()
			stats.LatestSummary = models.Summarize(snap, e.Path)

			if prev != nil {
				d, err := diff.Compare(prev, snap)
				if err != nil {
					return err
				}
				stats.Transitions = append(stats.Transitions, versionChanges{
					From:     prev.Version.String(),
					To:       snap.Version.String(),
					Changes:  d.TotalChanges(),
					Breaking: d.BreakingCount(),
				})
				if d.HasBreakingChanges() {
					stats.BreakingUpdates++
				}
			}
			prev = snap
		}
		if stats.TotalVersions > 0 {
			all = append(all, stats)
		}
	}

	if len(all) == 0 {
		fmt.Fprintln(out, "No snapshots found")
		return nil
	}
	if handled, err := printStructured(out, all, statsJSON, statsToon); handled || err != nil {
		return err
	}

	for i, s := range all {
		if i > 0 {
			fmt.Fprintln(out)
		}
		title := "Snapshot Statistics: " + s.Domain
		fmt.Fprintln(out, title)
		fmt.Fprintln(out, strings.Repeat("━", len([]rune(title))))
		fmt.Fprintln(out)

		fmt.Fprintf(out, "Versions:         %d (%s to %s)\n", s.TotalVersions, s.Oldest, s.Latest)
		fmt.Fprintf(out, "Breaking updates: %d\n", s.BreakingUpdates)
		fmt.Fprintln(out)

		l := s.LatestSummary
		fmt.Fprintf(out, "Latest (%s):\n", l.Version)
		fmt.Fprintf(out, "  %-15s %3d\n", "Entities", l.Entities)
		fmt.Fprintf(out, "  %-15s %3d\n", "Properties", l.Properties)
		fmt.Fprintf(out, "  %-15s %3d\n", "Value objects", l.ValueObjects)
		fmt.Fprintf(out, "  %-15s %3d\n", "Enums", l.Enums)
		fmt.Fprintf(out, "  %-15s %3d\n", "Rule sets", l.RuleSets)
		fmt.Fprintf(out, "  %-15s %3d\n", "Rules", l.Rules)
		fmt.Fprintf(out, "  %-15s %3d\n", "Configurations", l.Configurations)

		if len(s.Transitions) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "History:")
			for _, t := range s.Transitions {
				bar := strings.Repeat("█", min(t.Changes, 20))
				marker := ""
				if t.Breaking > 0 {
					marker = fmt.Sprintf("  (%d breaking)", t.Breaking)
				}
				fmt.Fprintf(out, "  %s → %s  %3d  %s%s\n", t.From, t.To, t.Changes, bar, marker)
			}
		}
	}
	return nil
}
