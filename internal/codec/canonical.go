// Package codec turns manifests into byte-stable canonical text and content
// hashes, and reads/writes snapshot documents.
//
// Canonical form:
//   - every named collection is sorted by name (ordinal comparison)
//   - key sets and rule-set includes are sorted; index and foreign-key
//     property lists keep their declared order
//   - empty collections and unset optional fields are omitted
//   - timestamps are UTC
//
// The content hash is xxHash64 over the canonical text with every
// timestamp removed, rendered as 16 lowercase hex digits.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/pders01/domainsnap/internal/models"
)

// Canonicalize returns a sorted deep copy of m. The input is not modified.
func Canonicalize(m models.Manifest) models.Manifest {
	out := models.Manifest{
		Name:     m.Name,
		Version:  m.Version,
		Metadata: cloneMeta(m.Metadata),
	}
	if m.CreatedAt != nil {
		t := m.CreatedAt.UTC()
		out.CreatedAt = &t
	}

	for _, e := range m.Entities {
		out.Entities = append(out.Entities, models.Entity{
			Name:       e.Name,
			Type:       e.Type,
			Properties: canonicalProperties(e.Properties),
			Keys:       sortedStrings(e.Keys),
			Table:      e.Table,
			Schema:     e.Schema,
			Metadata:   cloneMeta(e.Metadata),
		})
	}
	sortByName(out.Entities, func(e models.Entity) string { return e.Name })

	for _, v := range m.ValueObjects {
		out.ValueObjects = append(out.ValueObjects, models.ValueObject{
			Name:       v.Name,
			Type:       v.Type,
			Properties: canonicalProperties(v.Properties),
			Metadata:   cloneMeta(v.Metadata),
		})
	}
	sortByName(out.ValueObjects, func(v models.ValueObject) string { return v.Name })

	for _, e := range m.Enums {
		var values map[string]int64
		if len(e.Values) > 0 {
			values = maps.Clone(e.Values)
		}
		out.Enums = append(out.Enums, models.Enum{
			Name:     e.Name,
			Type:     e.Type,
			Values:   values,
			Metadata: cloneMeta(e.Metadata),
		})
	}
	sortByName(out.Enums, func(e models.Enum) string { return e.Name })

	for _, rs := range m.RuleSets {
		var rules []models.Rule
		if len(rs.Rules) > 0 {
			rules = slices.Clone(rs.Rules)
			sortByName(rules, func(r models.Rule) string { return r.ID })
		}
		out.RuleSets = append(out.RuleSets, models.RuleSet{
			Name:       rs.Name,
			TargetType: rs.TargetType,
			Rules:      rules,
			Includes:   sortedStrings(rs.Includes),
		})
	}
	sortByName(out.RuleSets, func(rs models.RuleSet) string { return rs.Name })

	for _, c := range m.Configurations {
		out.Configurations = append(out.Configurations, canonicalConfiguration(c))
	}
	sortByName(out.Configurations, func(c models.Configuration) string { return c.Entity })

	if len(m.Sources) > 0 {
		out.Sources = slices.Clone(m.Sources)
		sortByName(out.Sources, func(s models.Source) string { return s.Name })
	}
	return out
}

func canonicalProperties(props []models.Property) []models.Property {
	if len(props) == 0 {
		return nil
	}
	out := make([]models.Property, len(props))
	for i, p := range props {
		out[i] = p
		out[i].MaxLength = cloneInt(p.MaxLength)
		out[i].Precision = cloneInt(p.Precision)
		out[i].Scale = cloneInt(p.Scale)
	}
	sortByName(out, func(p models.Property) string { return p.Name })
	return out
}

func canonicalConfiguration(c models.Configuration) models.Configuration {
	out := models.Configuration{
		Entity:     c.Entity,
		EntityType: c.EntityType,
		Table:      c.Table,
		Schema:     c.Schema,
	}
	if len(c.Columns) > 0 {
		out.Columns = slices.Clone(c.Columns)
		sortByName(out.Columns, func(col models.ColumnMapping) string { return col.Property })
	}
	for _, ix := range c.Indexes {
		out.Indexes = append(out.Indexes, models.Index{
			Name:       ix.Name,
			Properties: cloneStrings(ix.Properties),
			IsUnique:   ix.IsUnique,
		})
	}
	sortByName(out.Indexes, func(ix models.Index) string { return ix.Name })
	for _, r := range c.Relationships {
		r.ForeignKeys = cloneStrings(r.ForeignKeys)
		out.Relationships = append(out.Relationships, r)
	}
	sortByName(out.Relationships, func(r models.Relationship) string { return r.Name })
	return out
}

// CanonicalText returns the canonical JSON of m with all timestamps removed.
// It is the exact input of the content hash.
func CanonicalText(m *models.Manifest) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest is nil: %w", models.ErrInvalidArgument)
	}
	c := Canonicalize(*m)
	c.CreatedAt = nil
	return marshalIndent(c)
}

// Hash returns the content hash of m.
func Hash(m *models.Manifest) (string, error) {
	text, err := CanonicalText(m)
	if err != nil {
		return "", err
	}
	return hashBytes(text), nil
}

// Encode returns the canonical text of m and its content hash.
func Encode(m *models.Manifest) ([]byte, string, error) {
	text, err := CanonicalText(m)
	if err != nil {
		return nil, "", err
	}
	return text, hashBytes(text), nil
}

func hashBytes(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// NewSnapshot validates m and captures it as a snapshot taken at createdAt.
func NewSnapshot(m *models.Manifest, createdAt time.Time) (*models.Snapshot, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest is nil: %w", models.ErrInvalidArgument)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	hash, err := Hash(m)
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{
		Schema:    models.SchemaURL,
		Name:      m.Name,
		Version:   m.Version,
		Hash:      hash,
		CreatedAt: createdAt.UTC(),
		Manifest:  Canonicalize(*m),
	}, nil
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortByName[T any](s []T, name func(T) string) {
	slices.SortStableFunc(s, func(a, b T) int {
		return strings.Compare(name(a), name(b))
	})
}

func sortedStrings(s []string) []string {
	out := cloneStrings(s)
	slices.Sort(out)
	return out
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

func cloneMeta(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
