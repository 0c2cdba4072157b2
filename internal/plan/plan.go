// Package plan turns a diff into an ordered, human-readable migration plan.
package plan

import (
	"fmt"
	"strings"

	"github.com/pders01/domainsnap/internal/breaking"
	"github.com/pders01/domainsnap/internal/diff"
	"github.com/pders01/domainsnap/internal/models"
)

// Warning prefixes every breaking change line.
const Warning = "⚠️"

// item is one line of the plan: a change and the action it calls for.
type item struct {
	change diff.Change
	parent string
	hint   string
}

// Generate renders the migration plan for d as Markdown. When d has no
// changes it returns a single line saying no migration is needed.
func Generate(d *diff.Diff) (string, error) {
	if d == nil {
		return "", fmt.Errorf("diff is nil: %w", models.ErrInvalidArgument)
	}
	if !d.HasChanges() {
		return fmt.Sprintf("No changes detected between %s %s and %s; no migration is necessary.\n",
			d.Domain, d.BeforeVersion, d.AfterVersion), nil
	}

	breakingItems, safeItems := collect(d)

	var b strings.Builder
	fmt.Fprintf(&b, "# Migration Plan: %s\n\n", d.Domain)
	fmt.Fprintf(&b, "Version: %s → %s\n\n", d.BeforeVersion, d.AfterVersion)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Total changes: %d\n", d.TotalChanges())
	fmt.Fprintf(&b, "- Breaking changes: %d\n", len(breakingItems))
	fmt.Fprintf(&b, "- Non-breaking changes: %d\n", len(safeItems))

	if len(breakingItems) > 0 {
		b.WriteString("\n## Breaking Changes\n\n")
		for _, it := range breakingItems {
			fmt.Fprintf(&b, "- %s %s\n", Warning, it.line())
			fmt.Fprintf(&b, "  - Remediation: %s\n", it.hint)
		}
	}

	if len(safeItems) > 0 {
		b.WriteString("\n## Non-Breaking Changes\n\n")
		for _, it := range safeItems {
			fmt.Fprintf(&b, "- %s\n", it.line())
		}
	}

	b.WriteString("\n## Recommended Actions\n\n")
	for i, step := range actions(d, breakingItems, safeItems) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	fmt.Fprintf(&b, "\n> **Testing:** re-run the full test suite against both manifest versions (%s and %s) before deploying.\n",
		d.BeforeVersion, d.AfterVersion)
	return b.String(), nil
}

func (it item) line() string {
	if it.parent == "" {
		return it.change.Description
	}
	return fmt.Sprintf("%s (in %s)", it.change.Description, it.parent)
}

// collect splits the diff into breaking and non-breaking plan items. A
// modified element is listed through its nested changes when it has any,
// so each line maps to one actionable change.
func collect(d *diff.Diff) (breakingItems, safeItems []item) {
	add := func(c diff.Change, parent string) {
		if c.IsBreaking {
			breakingItems = append(breakingItems, item{change: c, parent: parent, hint: remediation(c)})
		} else {
			safeItems = append(safeItems, item{change: c, parent: parent})
		}
	}

	for _, r := range d.Records() {
		if r.ChangeType != breaking.Modified || len(r.Nested) == 0 {
			add(r.Change, "")
			continue
		}
		if len(r.Deltas) > 0 {
			own := r.Change
			own.IsBreaking = false
			for _, delta := range own.Deltas {
				own.IsBreaking = own.IsBreaking || delta.IsBreaking
			}
			own.Description = ownDescription(r.Change)
			add(own, "")
		}
		parent := fmt.Sprintf("%s '%s'", r.Element.Label(), r.Name)
		for _, n := range r.Nested {
			add(n, parent)
		}
	}
	return breakingItems, safeItems
}

// ownDescription describes only the element's own field deltas, leaving
// the nested changes to their own lines.
func ownDescription(c diff.Change) string {
	parts := make([]string, len(c.Deltas))
	for i, delta := range c.Deltas {
		parts[i] = delta.String()
	}
	return fmt.Sprintf("%s '%s' modified: %s", c.Element.Label(), c.Name, strings.Join(parts, "; "))
}

// remediation returns the recommended action for a breaking change.
func remediation(c diff.Change) string {
	switch c.ChangeType {
	case breaking.Removed:
		switch c.Element {
		case breaking.Entity, breaking.Configuration:
			return "archive or export the existing data before dropping the table, and remove all references first."
		case breaking.Property, breaking.Column:
			return "archive the column data and remove every read and write of the member before dropping it."
		case breaking.Enum, breaking.EnumValue:
			return "migrate stored values that use it to a replacement before removal; keep the code reserved."
		case breaking.ValueObject:
			return "inline or replace the value object in every owning type before removing it."
		}
	case breaking.Added:
		if c.Element == breaking.Property {
			return "add the column as nullable, backfill a default value for existing rows, then enforce the constraint."
		}
	case breaking.Modified:
		if hint := modifiedRemediation(c); hint != "" {
			return hint
		}
	}
	return "review consumers and stored data for this change and schedule a coordinated release."
}

func modifiedRemediation(c diff.Change) string {
	for _, delta := range c.Deltas {
		if !delta.IsBreaking {
			continue
		}
		switch delta.Aspect {
		case breaking.AspectType:
			return "add a new member with the target type, convert existing data, switch readers, then drop the old one."
		case breaking.AspectRequiredTightened:
			return "backfill a default value for rows where it is missing before enforcing the required constraint."
		case breaking.AspectLengthNarrowed, breaking.AspectPrecisionNarrowed, breaking.AspectScaleNarrowed:
			return "find and fix values that exceed the new limit before applying it."
		case breaking.AspectCollection:
			return "convert existing data between the single and collection shapes with a data migration."
		case breaking.AspectKeys:
			return "rebuild primary keys and every foreign key that references them in a maintenance window."
		case breaking.AspectTable, breaking.AspectSchema, breaking.AspectColumnName:
			return "rename in two phases: create an alias or view for the old name, migrate readers (dual-read), then drop the alias."
		case breaking.AspectCode:
			return "rewrite stored numeric codes to the new value in the same release that ships the change."
		}
	}
	return ""
}

// actions synthesizes the numbered steps of the plan.
func actions(d *diff.Diff, breakingItems, safeItems []item) []string {
	var steps []string
	if len(breakingItems) > 0 {
		steps = append(steps,
			fmt.Sprintf("Bump the major version: %d breaking change(s) will affect existing consumers or stored data.", len(breakingItems)),
			"Back up affected tables before running any migration.",
			"Apply the remediation for each breaking change above, in the order listed.",
		)
	}
	if hasStructural(safeItems) {
		steps = append(steps, "Generate and review the database migration for the non-breaking schema additions.")
	}
	if len(d.RuleSetChanges) > 0 {
		steps = append(steps, "Review updated rule sets with their owners; rule changes take effect on the next validation run.")
	}
	if len(breakingItems) > 0 {
		steps = append(steps, "Notify downstream consumers of the breaking changes and agree on a release window.")
	} else {
		steps = append(steps, "Release as a minor or patch version; no coordinated rollout is required.")
	}
	steps = append(steps, fmt.Sprintf("Capture a new snapshot of %s %s once the migration is applied.", d.Domain, d.AfterVersion))
	return steps
}

func hasStructural(items []item) bool {
	for _, it := range items {
		switch it.change.Element {
		case breaking.Rule, breaking.RuleSet:
			continue
		}
		return true
	}
	return false
}
