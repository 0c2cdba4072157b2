// Package breaking holds the policy that decides whether a structural change
// can invalidate existing consumers or stored data.
//
// Classify is total: any combination missing from the policy table is
// reported as breaking.
package breaking

// Element is the kind of manifest element that changed.
type Element string

const (
	Entity        Element = "entity"
	ValueObject   Element = "valueObject"
	Enum          Element = "enum"
	EnumValue     Element = "enumValue"
	Property      Element = "property"
	RuleSet       Element = "ruleSet"
	Rule          Element = "rule"
	Configuration Element = "configuration"
	Index         Element = "index"
	Column        Element = "column"
	Relationship  Element = "relationship"
)

var labels = map[Element]string{
	Entity:        "Entity",
	ValueObject:   "Value object",
	Enum:          "Enum",
	EnumValue:     "Enum value",
	Property:      "Property",
	RuleSet:       "Rule set",
	Rule:          "Rule",
	Configuration: "Configuration",
	Index:         "Index",
	Column:        "Column",
	Relationship:  "Relationship",
}

// Label returns the human-readable name of e, e.g. "Value object".
func (e Element) Label() string {
	if l, ok := labels[e]; ok {
		return l
	}
	return string(e)
}

// Change is the structural kind of a change.
type Change string

const (
	Added    Change = "Added"
	Removed  Change = "Removed"
	Modified Change = "Modified"
)

// Aspect narrows a change to the field that differs. Added and Removed
// changes use AspectNone except for property additions, which carry
// whether the new property is required.
type Aspect string

const (
	AspectNone Aspect = ""

	// Property additions.
	AspectRequired Aspect = "required"
	AspectOptional Aspect = "optional"

	// Field deltas.
	AspectType              Aspect = "type"
	AspectRequiredTightened Aspect = "requiredTightened"
	AspectRequiredRelaxed   Aspect = "requiredRelaxed"
	AspectCollection        Aspect = "collection"
	AspectLengthWidened     Aspect = "lengthWidened"
	AspectLengthNarrowed    Aspect = "lengthNarrowed"
	AspectPrecisionWidened  Aspect = "precisionWidened"
	AspectPrecisionNarrowed Aspect = "precisionNarrowed"
	AspectScaleWidened      Aspect = "scaleWidened"
	AspectScaleNarrowed     Aspect = "scaleNarrowed"
	AspectConcurrencyToken  Aspect = "concurrencyToken"
	AspectComputed          Aspect = "computed"
	AspectKeys              Aspect = "keys"
	AspectTable             Aspect = "table"
	AspectSchema            Aspect = "schema"
	AspectCode              Aspect = "code"
	AspectIncludes          Aspect = "includes"
	AspectContent           Aspect = "content"
	AspectColumnName        Aspect = "columnName"
	AspectColumnType        Aspect = "columnType"
	AspectIndexDefinition   Aspect = "indexDefinition"
	AspectRelationship      Aspect = "relationship"
	AspectMetadata          Aspect = "metadata"
)

type rule struct {
	element Element
	change  Change
	aspect  Aspect
}

// policy lists every combination with a decided verdict.
var policy = map[rule]bool{
	{Entity, Removed, AspectNone}:      true,
	{Entity, Added, AspectNone}:        false,
	{Entity, Modified, AspectKeys}:     true,
	{Entity, Modified, AspectTable}:    true,
	{Entity, Modified, AspectSchema}:   true,
	{Entity, Modified, AspectMetadata}: false,

	{ValueObject, Removed, AspectNone}:      true,
	{ValueObject, Added, AspectNone}:        false,
	{ValueObject, Modified, AspectMetadata}: false,

	{Enum, Removed, AspectNone}:      true,
	{Enum, Added, AspectNone}:        false,
	{Enum, Modified, AspectMetadata}: false,

	{EnumValue, Removed, AspectNone}:  true,
	{EnumValue, Added, AspectNone}:    false,
	{EnumValue, Modified, AspectCode}: true,

	{Property, Removed, AspectNone}:               true,
	{Property, Added, AspectRequired}:             true,
	{Property, Added, AspectOptional}:             false,
	{Property, Modified, AspectType}:              true,
	{Property, Modified, AspectRequiredTightened}: true,
	{Property, Modified, AspectRequiredRelaxed}:   false,
	{Property, Modified, AspectCollection}:        true,
	{Property, Modified, AspectLengthWidened}:     false,
	{Property, Modified, AspectLengthNarrowed}:    true,
	{Property, Modified, AspectPrecisionWidened}:  false,
	{Property, Modified, AspectPrecisionNarrowed}: true,
	{Property, Modified, AspectScaleWidened}:      false,
	{Property, Modified, AspectScaleNarrowed}:     true,

	{Configuration, Added, AspectNone}:       false,
	{Configuration, Removed, AspectNone}:     true,
	{Configuration, Modified, AspectTable}:   true,
	{Configuration, Modified, AspectSchema}:  true,
	{Index, Added, AspectNone}:               false,
	{Index, Removed, AspectNone}:             false,
	{Index, Modified, AspectIndexDefinition}: false,
	{Column, Added, AspectNone}:              false,
	{Column, Modified, AspectColumnName}:     true,
}

// Classify reports whether the described change is breaking. Rule and rule
// set changes are never breaking; everything absent from the policy table is.
func Classify(element Element, change Change, aspect Aspect) bool {
	if element == Rule || element == RuleSet {
		return false
	}
	if verdict, ok := policy[rule{element, change, aspect}]; ok {
		return verdict
	}
	return true
}
