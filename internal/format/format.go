// Package format renders a computed diff for humans (Markdown), CI (JSON),
// LLM tooling (toon) and reviewers (a unified patch of canonical texts).
package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alpkeskin/gotoon"
	difflib "github.com/pmezard/go-difflib/difflib"

	"github.com/pders01/domainsnap/internal/codec"
	"github.com/pders01/domainsnap/internal/diff"
	"github.com/pders01/domainsnap/internal/models"
)

// Format names an output format accepted by the diff command.
type Format string

const (
	Markdown Format = "md"
	JSON     Format = "json"
	Toon     Format = "toon"
	Patch    Format = "patch"
)

// ParseFormat accepts the names above plus "markdown".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return Markdown, nil
	case "json":
		return JSON, nil
	case "toon":
		return Toon, nil
	case "patch":
		return Patch, nil
	}
	return "", fmt.Errorf("unknown format %q (want md, json, toon or patch): %w", s, models.ErrInvalidArgument)
}

type section struct {
	title   string
	records []diff.Record
}

func sections(d *diff.Diff) []section {
	all := d.Records()
	titles := []string{"Entities", "Value Objects", "Enums", "Rule Sets", "Configurations"}
	counts := []int{
		len(d.EntityChanges), len(d.ValueObjectChanges), len(d.EnumChanges),
		len(d.RuleSetChanges), len(d.ConfigurationChanges),
	}
	out := make([]section, 0, len(titles))
	offset := 0
	for i, title := range titles {
		out = append(out, section{title: title, records: all[offset : offset+counts[i]]})
		offset += counts[i]
	}
	return out
}

// headline renders a top-level change as "Entity 'Order' added".
func headline(c diff.Change) string {
	return fmt.Sprintf("%s '%s' %s", c.Element.Label(), c.Name, strings.ToLower(string(c.ChangeType)))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// FormatAsMarkdown renders d as a Markdown report.
func FormatAsMarkdown(d *diff.Diff) (string, error) {
	if d == nil {
		return "", fmt.Errorf("diff is nil: %w", models.ErrInvalidArgument)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Domain Diff: %s\n\n", d.Domain)
	if d.PreviousDomain != "" {
		fmt.Fprintf(&b, "Previous domain: %s\n\n", d.PreviousDomain)
	}
	fmt.Fprintf(&b, "Version: %s → %s\n\n", d.BeforeVersion, d.AfterVersion)
	fmt.Fprintf(&b, "Breaking Changes: %s\n\n", yesNo(d.HasBreakingChanges()))

	if !d.HasChanges() {
		b.WriteString("No changes detected.\n")
		return b.String(), nil
	}
	fmt.Fprintf(&b, "Total Changes: %d\n", d.TotalChanges())

	for _, s := range sections(d) {
		if len(s.records) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", s.title)
		for _, r := range s.records {
			fmt.Fprintf(&b, "- %s%s\n", headline(r.Change), breakingMark(r.IsBreaking))
			for _, delta := range r.Deltas {
				fmt.Fprintf(&b, "  - %s%s\n", delta, breakingMark(delta.IsBreaking))
			}
			for _, n := range r.Nested {
				fmt.Fprintf(&b, "  - %s%s\n", n.Description, breakingMark(n.IsBreaking))
			}
		}
	}
	return b.String(), nil
}

func breakingMark(breaking bool) string {
	if breaking {
		return " **(breaking)**"
	}
	return ""
}

type jsonDiff struct {
	*diff.Diff
	HasBreakingChanges bool `json:"hasBreakingChanges"`
	TotalChanges       int  `json:"totalChanges"`
}

// FormatAsJSON renders d as an indented JSON object. Key order is not
// canonical; the output is not meant for hashing.
func FormatAsJSON(d *diff.Diff) (string, error) {
	if d == nil {
		return "", fmt.Errorf("diff is nil: %w", models.ErrInvalidArgument)
	}
	out, err := json.MarshalIndent(jsonDiff{
		Diff:               d,
		HasBreakingChanges: d.HasBreakingChanges(),
		TotalChanges:       d.TotalChanges(),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(out), nil
}

// toonRow is one change, top-level or nested, as a flat record. Parent is
// empty for top-level changes.
type toonRow struct {
	Element     string `json:"element"`
	Name        string `json:"name"`
	Parent      string `json:"parent"`
	ChangeType  string `json:"changeType"`
	IsBreaking  bool   `json:"isBreaking"`
	Description string `json:"description"`
}

type toonDiff struct {
	Domain             string    `json:"domain"`
	BeforeVersion      string    `json:"beforeVersion"`
	AfterVersion       string    `json:"afterVersion"`
	HasBreakingChanges bool      `json:"hasBreakingChanges"`
	TotalChanges       int       `json:"totalChanges"`
	Changes            []toonRow `json:"changes"`
}

// FormatAsToon renders d in toon, a compact tabular format for LLM
// prompts. Nested changes are flattened into rows that name their parent.
func FormatAsToon(d *diff.Diff) (string, error) {
	if d == nil {
		return "", fmt.Errorf("diff is nil: %w", models.ErrInvalidArgument)
	}
	doc := toonDiff{
		Domain:             d.Domain,
		BeforeVersion:      d.BeforeVersion.String(),
		AfterVersion:       d.AfterVersion.String(),
		HasBreakingChanges: d.HasBreakingChanges(),
		TotalChanges:       d.TotalChanges(),
		Changes:            []toonRow{},
	}
	for _, r := range d.Records() {
		doc.Changes = append(doc.Changes, row(r.Change, ""))
		for _, n := range r.Nested {
			doc.Changes = append(doc.Changes, row(n, r.Name))
		}
	}
	out, err := gotoon.Encode(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode Toon: %w", err)
	}
	return out, nil
}

func row(c diff.Change, parent string) toonRow {
	return toonRow{
		Element:     string(c.Element),
		Name:        c.Name,
		Parent:      parent,
		ChangeType:  string(c.ChangeType),
		IsBreaking:  c.IsBreaking,
		Description: c.Description,
	}
}

// FormatCanonicalPatch returns a unified diff between the canonical texts
// of two snapshots' manifests. Identical manifests yield an empty string.
func FormatCanonicalPatch(before, after *models.Snapshot) (string, error) {
	if before == nil || after == nil {
		return "", fmt.Errorf("patch requires two snapshots: %w", models.ErrInvalidArgument)
	}
	a, err := codec.CanonicalText(&before.Manifest)
	if err != nil {
		return "", err
	}
	b, err := codec.CanonicalText(&after.Manifest)
	if err != nil {
		return "", err
	}

	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: fmt.Sprintf("%s@%s", before.Name, before.Version),
		ToFile:   fmt.Sprintf("%s@%s", after.Name, after.Version),
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("failed to build patch: %w", err)
	}
	return out, nil
}
