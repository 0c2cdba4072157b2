package diff

import (
	"maps"
	"slices"
	"strconv"

	"github.com/pders01/domainsnap/internal/breaking"
	"github.com/pders01/domainsnap/internal/models"
)

func compareEntities(before, after []models.Entity) []EntityChange {
	out := make([]EntityChange, 0)
	for _, p := range match(before, after, func(e models.Entity) string { return e.Name }) {
		switch {
		case p.before == nil:
			out = append(out, EntityChange{Change: added(breaking.Entity, p.name, breaking.AspectNone)})
		case p.after == nil:
			out = append(out, EntityChange{Change: removed(breaking.Entity, p.name)})
		default:
			b, a := p.before, p.after
			var ds []FieldDelta
			ds = compareString(ds, breaking.Entity, breaking.AspectType, "type", b.Type, a.Type)
			ds = compareSet(ds, breaking.Entity, breaking.AspectKeys, "keys", b.Keys, a.Keys)
			ds = compareString(ds, breaking.Entity, breaking.AspectTable, "table", b.Table, a.Table)
			ds = compareString(ds, breaking.Entity, breaking.AspectSchema, "schema", b.Schema, a.Schema)
			ds = compareMetadata(ds, breaking.Entity, b.Metadata, a.Metadata)
			props := compareProperties(b.Properties, a.Properties)
			if c, ok := modified(breaking.Entity, p.name, ds, props, "property"); ok {
				out = append(out, EntityChange{Change: c, PropertyChanges: props})
			}
		}
	}
	return out
}

func compareValueObjects(before, after []models.ValueObject) []EntityChange {
	out := make([]EntityChange, 0)
	for _, p := range match(before, after, func(v models.ValueObject) string { return v.Name }) {
		switch {
		case p.before == nil:
			out = append(out, EntityChange{Change: added(breaking.ValueObject, p.name, breaking.AspectNone)})
		case p.after == nil:
			out = append(out, EntityChange{Change: removed(breaking.ValueObject, p.name)})
		default:
			b, a := p.before, p.after
			var ds []FieldDelta
			ds = compareString(ds, breaking.ValueObject, breaking.AspectType, "type", b.Type, a.Type)
			ds = compareMetadata(ds, breaking.ValueObject, b.Metadata, a.Metadata)
			props := compareProperties(b.Properties, a.Properties)
			if c, ok := modified(breaking.ValueObject, p.name, ds, props, "property"); ok {
				out = append(out, EntityChange{Change: c, PropertyChanges: props})
			}
		}
	}
	return out
}

func compareProperties(before, after []models.Property) []Change {
	var out []Change
	for _, p := range match(before, after, func(p models.Property) string { return p.Name }) {
		switch {
		case p.before == nil:
			aspect := breaking.AspectOptional
			if p.after.IsRequired {
				aspect = breaking.AspectRequired
			}
			out = append(out, added(breaking.Property, p.name, aspect))
		case p.after == nil:
			out = append(out, removed(breaking.Property, p.name))
		default:
			if c, ok := modified(breaking.Property, p.name, propertyDeltas(*p.before, *p.after), nil, ""); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func propertyDeltas(b, a models.Property) []FieldDelta {
	const el = breaking.Property
	var ds []FieldDelta
	ds = compareString(ds, el, breaking.AspectType, "type", b.Type, a.Type)
	if b.IsRequired != a.IsRequired {
		aspect := breaking.AspectRequiredRelaxed
		if a.IsRequired {
			aspect = breaking.AspectRequiredTightened
		}
		ds = append(ds, delta(el, aspect, "required", requiredness(b.IsRequired), requiredness(a.IsRequired)))
	}
	ds = compareBool(ds, el, breaking.AspectCollection, "collection", b.IsCollection, a.IsCollection)
	ds = compareFacet(ds, "maxLength", b.MaxLength, a.MaxLength, breaking.AspectLengthWidened, breaking.AspectLengthNarrowed)
	ds = compareFacet(ds, "precision", b.Precision, a.Precision, breaking.AspectPrecisionWidened, breaking.AspectPrecisionNarrowed)
	ds = compareFacet(ds, "scale", b.Scale, a.Scale, breaking.AspectScaleWidened, breaking.AspectScaleNarrowed)
	ds = compareBool(ds, el, breaking.AspectConcurrencyToken, "concurrencyToken", b.IsConcurrencyToken, a.IsConcurrencyToken)
	ds = compareBool(ds, el, breaking.AspectComputed, "computed", b.IsComputed, a.IsComputed)
	return ds
}

func requiredness(required bool) string {
	if required {
		return "required"
	}
	return "optional"
}

type enumValue struct {
	name string
	code int64
}

func enumValues(values map[string]int64) []enumValue {
	out := make([]enumValue, 0, len(values))
	for _, name := range slices.Sorted(maps.Keys(values)) {
		out = append(out, enumValue{name: name, code: values[name]})
	}
	return out
}

func compareEnums(before, after []models.Enum) []EnumChange {
	out := make([]EnumChange, 0)
	for _, p := range match(before, after, func(e models.Enum) string { return e.Name }) {
		switch {
		case p.before == nil:
			out = append(out, EnumChange{Change: added(breaking.Enum, p.name, breaking.AspectNone)})
		case p.after == nil:
			out = append(out, EnumChange{Change: removed(breaking.Enum, p.name)})
		default:
			b, a := p.before, p.after
			var ds []FieldDelta
			ds = compareString(ds, breaking.Enum, breaking.AspectType, "type", b.Type, a.Type)
			ds = compareMetadata(ds, breaking.Enum, b.Metadata, a.Metadata)

			var values []Change
			for _, v := range match(enumValues(b.Values), enumValues(a.Values), func(v enumValue) string { return v.name }) {
				switch {
				case v.before == nil:
					values = append(values, added(breaking.EnumValue, v.name, breaking.AspectNone))
				case v.after == nil:
					values = append(values, removed(breaking.EnumValue, v.name))
				case v.before.code != v.after.code:
					d := delta(breaking.EnumValue, breaking.AspectCode, "code",
						strconv.FormatInt(v.before.code, 10), strconv.FormatInt(v.after.code, 10))
					c, _ := modified(breaking.EnumValue, v.name, []FieldDelta{d}, nil, "")
					values = append(values, c)
				}
			}
			if c, ok := modified(breaking.Enum, p.name, ds, values, "value"); ok {
				out = append(out, EnumChange{Change: c, ValueChanges: values})
			}
		}
	}
	return out
}

func compareRuleSets(before, after []models.RuleSet) []RuleSetChange {
	out := make([]RuleSetChange, 0)
	for _, p := range match(before, after, func(rs models.RuleSet) string { return rs.Name }) {
		switch {
		case p.before == nil:
			out = append(out, RuleSetChange{Change: added(breaking.RuleSet, p.name, breaking.AspectNone)})
		case p.after == nil:
			out = append(out, RuleSetChange{Change: removed(breaking.RuleSet, p.name)})
		default:
			b, a := p.before, p.after
			var ds []FieldDelta
			ds = compareString(ds, breaking.RuleSet, breaking.AspectType, "targetType", b.TargetType, a.TargetType)
			ds = compareSet(ds, breaking.RuleSet, breaking.AspectIncludes, "includes", b.Includes, a.Includes)

			var rules []Change
			for _, r := range match(b.Rules, a.Rules, func(r models.Rule) string { return r.ID }) {
				switch {
				case r.before == nil:
					rules = append(rules, added(breaking.Rule, r.name, breaking.AspectNone))
				case r.after == nil:
					rules = append(rules, removed(breaking.Rule, r.name))
				default:
					var rds []FieldDelta
					rds = compareString(rds, breaking.Rule, breaking.AspectContent, "category", r.before.Category, r.after.Category)
					rds = compareString(rds, breaking.Rule, breaking.AspectContent, "severity", r.before.Severity, r.after.Severity)
					rds = compareString(rds, breaking.Rule, breaking.AspectContent, "message", r.before.Message, r.after.Message)
					if c, ok := modified(breaking.Rule, r.name, rds, nil, ""); ok {
						rules = append(rules, c)
					}
				}
			}
			if c, ok := modified(breaking.RuleSet, p.name, ds, rules, "rule"); ok {
				out = append(out, RuleSetChange{Change: c, RuleChanges: rules})
			}
		}
	}
	return out
}

func compareConfigurations(before, after []models.Configuration) []ConfigurationChange {
	out := make([]ConfigurationChange, 0)
	for _, p := range match(before, after, func(c models.Configuration) string { return c.Entity }) {
		switch {
		case p.before == nil:
			out = append(out, ConfigurationChange{Change: added(breaking.Configuration, p.name, breaking.AspectNone)})
		case p.after == nil:
			out = append(out, ConfigurationChange{Change: removed(breaking.Configuration, p.name)})
		default:
			b, a := p.before, p.after
			var ds []FieldDelta
			ds = compareString(ds, breaking.Configuration, breaking.AspectType, "entityType", b.EntityType, a.EntityType)
			ds = compareString(ds, breaking.Configuration, breaking.AspectTable, "table", b.Table, a.Table)
			ds = compareString(ds, breaking.Configuration, breaking.AspectSchema, "schema", b.Schema, a.Schema)

			columns := compareColumns(b.Columns, a.Columns)
			indexes := compareIndexes(b.Indexes, a.Indexes)
			relationships := compareRelationships(b.Relationships, a.Relationships)

			nested := slices.Concat(columns, indexes, relationships)
			if c, ok := modified(breaking.Configuration, p.name, ds, nested, "mapping"); ok {
				out = append(out, ConfigurationChange{
					Change:              c,
					ColumnChanges:       columns,
					IndexChanges:        indexes,
					RelationshipChanges: relationships,
				})
			}
		}
	}
	return out
}

func compareColumns(before, after []models.ColumnMapping) []Change {
	var out []Change
	for _, p := range match(before, after, func(c models.ColumnMapping) string { return c.Property }) {
		switch {
		case p.before == nil:
			out = append(out, added(breaking.Column, p.name, breaking.AspectNone))
		case p.after == nil:
			out = append(out, removed(breaking.Column, p.name))
		default:
			var ds []FieldDelta
			ds = compareString(ds, breaking.Column, breaking.AspectColumnName, "column", p.before.Column, p.after.Column)
			ds = compareString(ds, breaking.Column, breaking.AspectColumnType, "columnType", p.before.ColumnType, p.after.ColumnType)
			if c, ok := modified(breaking.Column, p.name, ds, nil, ""); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func compareIndexes(before, after []models.Index) []Change {
	var out []Change
	for _, p := range match(before, after, func(ix models.Index) string { return ix.Name }) {
		switch {
		case p.before == nil:
			out = append(out, added(breaking.Index, p.name, breaking.AspectNone))
		case p.after == nil:
			out = append(out, removed(breaking.Index, p.name))
		default:
			var ds []FieldDelta
			ds = compareList(ds, breaking.Index, breaking.AspectIndexDefinition, "properties", p.before.Properties, p.after.Properties)
			ds = compareBool(ds, breaking.Index, breaking.AspectIndexDefinition, "unique", p.before.IsUnique, p.after.IsUnique)
			if c, ok := modified(breaking.Index, p.name, ds, nil, ""); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func compareRelationships(before, after []models.Relationship) []Change {
	var out []Change
	for _, p := range match(before, after, func(r models.Relationship) string { return r.Name }) {
		switch {
		case p.before == nil:
			out = append(out, added(breaking.Relationship, p.name, breaking.AspectNone))
		case p.after == nil:
			out = append(out, removed(breaking.Relationship, p.name))
		default:
			b, a := p.before, p.after
			var ds []FieldDelta
			ds = compareString(ds, breaking.Relationship, breaking.AspectRelationship, "kind", b.Kind, a.Kind)
			ds = compareString(ds, breaking.Relationship, breaking.AspectRelationship, "target", b.Target, a.Target)
			ds = compareList(ds, breaking.Relationship, breaking.AspectRelationship, "foreignKeys", b.ForeignKeys, a.ForeignKeys)
			ds = compareBool(ds, breaking.Relationship, breaking.AspectRelationship, "required", b.IsRequired, a.IsRequired)
			ds = compareString(ds, breaking.Relationship, breaking.AspectRelationship, "onDelete", b.OnDelete, a.OnDelete)
			if c, ok := modified(breaking.Relationship, p.name, ds, nil, ""); ok {
				out = append(out, c)
			}
		}
	}
	return out
}
