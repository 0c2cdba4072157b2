package models

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError names the offending field of a manifest.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Path + ": " + e.Reason
}

// Validate checks the input contract of a manifest: non-empty names, a
// non-negative version and unique names within each collection. All problems are reported together.
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("manifest is nil: %w", ErrInvalidArgument)
	}
	var v validator
	if strings.TrimSpace(m.Name) == "" {
		v.add("name", "must be non-empty")
	}
	if m.Version.Major < 0 || m.Version.Minor < 0 || m.Version.Patch < 0 {
		v.add("version", "components must be non-negative")
	}

	seen := v.names("entities")
	for i, e := range m.Entities {
		p := fmt.Sprintf("entities[%d]", i)
		seen.check(p, e.Name)
		v.properties(p, e.Properties)
		keys := v.names(p + ".keys")
		for j, k := range e.Keys {
			keys.check(fmt.Sprintf("%s.keys[%d]", p, j), k)
		}
	}

	seen = v.names("valueObjects")
	for i, vo := range m.ValueObjects {
		p := fmt.Sprintf("valueObjects[%d]", i)
		seen.check(p, vo.Name)
		v.properties(p, vo.Properties)
	}

	seen = v.names("enums")
	for i, e := range m.Enums {
		p := fmt.Sprintf("enums[%d]", i)
		seen.check(p, e.Name)
		for name := range e.Values {
			if strings.TrimSpace(name) == "" {
				v.add(p+".values", "value names must be non-empty")
			}
		}
	}

	seen = v.names("ruleSets")
	for i, rs := range m.RuleSets {
		p := fmt.Sprintf("ruleSets[%d]", i)
		seen.check(p, rs.Name)
		ids := v.names(p + ".rules")
		for j, r := range rs.Rules {
			ids.checkField(fmt.Sprintf("%s.rules[%d].id", p, j), r.ID)
		}
	}

	seen = v.names("configurations")
	for i, c := range m.Configurations {
		p := fmt.Sprintf("configurations[%d]", i)
		seen.checkField(p+".entity", c.Entity)
		cols := v.names(p + ".columns")
		for j, col := range c.Columns {
			cols.checkField(fmt.Sprintf("%s.columns[%d].property", p, j), col.Property)
		}
		idx := v.names(p + ".indexes")
		for j, ix := range c.Indexes {
			idx.check(fmt.Sprintf("%s.indexes[%d]", p, j), ix.Name)
		}
		rels := v.names(p + ".relationships")
		for j, r := range c.Relationships {
			rels.check(fmt.Sprintf("%s.relationships[%d]", p, j), r.Name)
		}
	}

	seen = v.names("sources")
	for i, s := range m.Sources {
		seen.check(fmt.Sprintf("sources[%d]", i), s.Name)
	}

	return v.err()
}

type validator struct {
	errs []error
}

func (v *validator) add(path, reason string) {
	v.errs = append(v.errs, &ValidationError{Path: path, Reason: reason})
}

func (v *validator) err() error {
	return errors.Join(v.errs...)
}

func (v *validator) properties(prefix string, props []Property) {
	seen := v.names(prefix + ".properties")
	for i, p := range props {
		path := fmt.Sprintf("%s.properties[%d]", prefix, i)
		seen.check(path, p.Name)
		if strings.TrimSpace(p.Type) == "" {
			v.add(path+".type", "must be non-empty")
		}
	}
}

func (v *validator) names(collection string) *nameSet {
	return &nameSet{v: v, collection: collection, seen: make(map[string]struct{})}
}

// nameSet tracks names already used within one collection.
type nameSet struct {
	v          *validator
	collection string
	seen       map[string]struct{}
}

func (s *nameSet) check(path, name string) {
	s.checkField(path+".name", name)
}

func (s *nameSet) checkField(path, name string) {
	if strings.TrimSpace(name) == "" {
		s.v.add(path, "must be non-empty")
		return
	}
	if _, dup := s.seen[name]; dup {
		s.v.add(path, fmt.Sprintf("duplicate name %q in %s", name, s.collection))
		return
	}
	s.seen[name] = struct{}{}
}
