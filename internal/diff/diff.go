// Package diff compares two snapshots and produces a nested change graph.
//
// Elements are matched by name within each category; there is no rename
// detection. Every change consults the breaking package for its verdict.
package diff

import (
	"fmt"
	"slices"

	"github.com/pders01/domainsnap/internal/breaking"
	"github.com/pders01/domainsnap/internal/models"
)

// FieldDelta is a single differing field of a modified element.
type FieldDelta struct {
	Aspect     breaking.Aspect `json:"aspect"`
	Field      string          `json:"field"`
	Before     string          `json:"before,omitempty"`
	After      string          `json:"after,omitempty"`
	IsBreaking bool            `json:"isBreaking"`
}

// Change is one Added, Removed or Modified element at any nesting level.
type Change struct {
	Element     breaking.Element `json:"element"`
	Name        string           `json:"name"`
	ChangeType  breaking.Change  `json:"changeType"`
	Description string           `json:"description"`
	IsBreaking  bool             `json:"isBreaking"`
	Deltas      []FieldDelta     `json:"deltas,omitempty"`
}

// EntityChange is a top-level change to an entity or value object.
type EntityChange struct {
	Change
	PropertyChanges []Change `json:"propertyChanges,omitempty"`
}

// EnumChange is a top-level change to an enum.
type EnumChange struct {
	Change
	ValueChanges []Change `json:"valueChanges,omitempty"`
}

// RuleSetChange is a top-level change to a rule set.
type RuleSetChange struct {
	Change
	RuleChanges []Change `json:"ruleChanges,omitempty"`
}

// ConfigurationChange is a top-level change to an entity's persistence mapping.
type ConfigurationChange struct {
	Change
	ColumnChanges       []Change `json:"columnChanges,omitempty"`
	IndexChanges        []Change `json:"indexChanges,omitempty"`
	RelationshipChanges []Change `json:"relationshipChanges,omitempty"`
}

// Diff is the immutable result of comparing two snapshots.
type Diff struct {
	Domain         string         `json:"domain"`
	PreviousDomain string         `json:"previousDomain,omitempty"`
	BeforeVersion  models.Version `json:"beforeVersion"`
	AfterVersion   models.Version `json:"afterVersion"`
	BeforeHash     string         `json:"beforeHash"`
	AfterHash      string         `json:"afterHash"`

	EntityChanges        []EntityChange        `json:"entityChanges"`
	ValueObjectChanges   []EntityChange        `json:"valueObjectChanges"`
	EnumChanges          []EnumChange          `json:"enumChanges"`
	RuleSetChanges       []RuleSetChange       `json:"ruleSetChanges"`
	ConfigurationChanges []ConfigurationChange `json:"configurationChanges"`
}

// Record is a top-level change together with its nested changes.
type Record struct {
	Change
	Nested []Change
}

// Records flattens the diff into top-level records in category order:
// entities, value objects, enums, rule sets, configurations.
func (d *Diff) Records() []Record {
	var out []Record
	for _, c := range d.EntityChanges {
		out = append(out, Record{Change: c.Change, Nested: c.PropertyChanges})
	}
	for _, c := range d.ValueObjectChanges {
		out = append(out, Record{Change: c.Change, Nested: c.PropertyChanges})
	}
	for _, c := range d.EnumChanges {
		out = append(out, Record{Change: c.Change, Nested: c.ValueChanges})
	}
	for _, c := range d.RuleSetChanges {
		out = append(out, Record{Change: c.Change, Nested: c.RuleChanges})
	}
	for _, c := range d.ConfigurationChanges {
		nested := slices.Concat(c.ColumnChanges, c.IndexChanges, c.RelationshipChanges)
		out = append(out, Record{Change: c.Change, Nested: nested})
	}
	return out
}

// TotalChanges counts top-level changes only. Nested changes never add to
// the count.
func (d *Diff) TotalChanges() int {
	return len(d.EntityChanges) + len(d.ValueObjectChanges) + len(d.EnumChanges) +
		len(d.RuleSetChanges) + len(d.ConfigurationChanges)
}

// HasChanges reports whether anything differs between the two snapshots.
func (d *Diff) HasChanges() bool {
	return d.TotalChanges() > 0
}

// HasBreakingChanges reports whether any change at any level is breaking.
func (d *Diff) HasBreakingChanges() bool {
	for _, r := range d.Records() {
		if r.IsBreaking {
			return true
		}
		for _, n := range r.Nested {
			if n.IsBreaking {
				return true
			}
		}
	}
	return false
}

// BreakingCount returns the number of top-level breaking changes.
func (d *Diff) BreakingCount() int {
	n := 0
	for _, r := range d.Records() {
		if r.IsBreaking {
			n++
		}
	}
	return n
}

// Compare computes the diff from before to after.
func Compare(before, after *models.Snapshot) (*Diff, error) {
	if before == nil || after == nil {
		return nil, fmt.Errorf("compare requires two snapshots: %w", models.ErrInvalidArgument)
	}

	d := &Diff{
		Domain:        after.Name,
		BeforeVersion: before.Version,
		AfterVersion:  after.Version,
		BeforeHash:    before.Hash,
		AfterHash:     after.Hash,
	}
	if before.Name != after.Name {
		d.PreviousDomain = before.Name
	}

	b, a := &before.Manifest, &after.Manifest
	d.EntityChanges = compareEntities(b.Entities, a.Entities)
	d.ValueObjectChanges = compareValueObjects(b.ValueObjects, a.ValueObjects)
	d.EnumChanges = compareEnums(b.Enums, a.Enums)
	d.RuleSetChanges = compareRuleSets(b.RuleSets, a.RuleSets)
	d.ConfigurationChanges = compareConfigurations(b.Configurations, a.Configurations)
	return d, nil
}
