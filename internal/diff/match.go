package diff

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/pders01/domainsnap/internal/breaking"
)

// pair holds the before and after versions of one named element. A nil
// side means the element does not exist in that snapshot.
type pair[T any] struct {
	name   string
	before *T
	after  *T
}

func indexByName[T any](items []T, key func(T) string) map[string]*T {
	m := make(map[string]*T, len(items))
	for i := range items {
		m[key(items[i])] = &items[i]
	}
	return m
}

// match pairs two collections by name. The result is sorted by name so
// change lists come out in a stable order.
func match[T any](before, after []T, key func(T) string) []pair[T] {
	prev := indexByName(before, key)
	curr := indexByName(after, key)

	names := make([]string, 0, len(prev)+len(curr))
	for name := range prev {
		names = append(names, name)
	}
	for name := range curr {
		if _, ok := prev[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	out := make([]pair[T], len(names))
	for i, name := range names {
		out[i] = pair[T]{name: name, before: prev[name], after: curr[name]}
	}
	return out
}

func added(el breaking.Element, name string, aspect breaking.Aspect) Change {
	desc := fmt.Sprintf("%s '%s' added", el.Label(), name)
	if aspect != breaking.AspectNone {
		desc += " (" + string(aspect) + ")"
	}
	return Change{
		Element:     el,
		Name:        name,
		ChangeType:  breaking.Added,
		Description: desc,
		IsBreaking:  breaking.Classify(el, breaking.Added, aspect),
	}
}

func removed(el breaking.Element, name string) Change {
	return Change{
		Element:     el,
		Name:        name,
		ChangeType:  breaking.Removed,
		Description: fmt.Sprintf("%s '%s' removed", el.Label(), name),
		IsBreaking:  breaking.Classify(el, breaking.Removed, breaking.AspectNone),
	}
}

// modified builds a Modified change from the field deltas of the element
// and its nested changes. It reports false when nothing differs.
func modified(el breaking.Element, name string, deltas []FieldDelta, nested []Change, noun string) (Change, bool) {
	if len(deltas) == 0 && len(nested) == 0 {
		return Change{}, false
	}

	c := Change{
		Element:    el,
		Name:       name,
		ChangeType: breaking.Modified,
		Deltas:     deltas,
	}
	parts := make([]string, 0, len(deltas)+1)
	for _, d := range deltas {
		parts = append(parts, d.String())
		c.IsBreaking = c.IsBreaking || d.IsBreaking
	}
	for _, n := range nested {
		c.IsBreaking = c.IsBreaking || n.IsBreaking
	}
	if len(nested) > 0 {
		parts = append(parts, plural(len(nested), noun+" change"))
	}
	c.Description = fmt.Sprintf("%s '%s' modified: %s", el.Label(), name, strings.Join(parts, "; "))
	return c, true
}

func delta(el breaking.Element, aspect breaking.Aspect, field, before, after string) FieldDelta {
	return FieldDelta{
		Aspect:     aspect,
		Field:      field,
		Before:     before,
		After:      after,
		IsBreaking: breaking.Classify(el, breaking.Modified, aspect),
	}
}

// String renders the delta as "field changed from X to Y".
func (d FieldDelta) String() string {
	return fmt.Sprintf("%s changed from %s to %s", d.Field, orNone(d.Before), orNone(d.After))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

func compareString(ds []FieldDelta, el breaking.Element, aspect breaking.Aspect, field, before, after string) []FieldDelta {
	if before == after {
		return ds
	}
	return append(ds, delta(el, aspect, field, before, after))
}

func compareBool(ds []FieldDelta, el breaking.Element, aspect breaking.Aspect, field string, before, after bool) []FieldDelta {
	if before == after {
		return ds
	}
	return append(ds, delta(el, aspect, field, strconv.FormatBool(before), strconv.FormatBool(after)))
}

// compareSet treats both lists as unordered sets.
func compareSet(ds []FieldDelta, el breaking.Element, aspect breaking.Aspect, field string, before, after []string) []FieldDelta {
	b, a := sortedCopy(before), sortedCopy(after)
	if slices.Equal(b, a) {
		return ds
	}
	return append(ds, delta(el, aspect, field, formatList(b), formatList(a)))
}

// compareList treats both lists as ordered.
func compareList(ds []FieldDelta, el breaking.Element, aspect breaking.Aspect, field string, before, after []string) []FieldDelta {
	if slices.Equal(before, after) {
		return ds
	}
	return append(ds, delta(el, aspect, field, formatList(before), formatList(after)))
}

// compareFacet compares an optional size facet such as MaxLength. Removing
// a limit or raising it widens; imposing or lowering one narrows.
func compareFacet(ds []FieldDelta, field string, before, after *int, widened, narrowed breaking.Aspect) []FieldDelta {
	switch {
	case before == nil && after == nil:
		return ds
	case before != nil && after != nil && *before == *after:
		return ds
	}
	aspect := narrowed
	if after == nil || (before != nil && *after > *before) {
		aspect = widened
	}
	return append(ds, delta(breaking.Property, aspect, field, formatInt(before), formatInt(after)))
}

func compareMetadata(ds []FieldDelta, el breaking.Element, before, after map[string]string) []FieldDelta {
	if maps.Equal(before, after) {
		return ds
	}
	return append(ds, delta(el, breaking.AspectMetadata, "metadata", formatMap(before), formatMap(after)))
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

func formatList(s []string) string {
	return "[" + strings.Join(s, ", ") + "]"
}

func formatInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func formatMap(m map[string]string) string {
	keys := slices.Sorted(maps.Keys(m))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
