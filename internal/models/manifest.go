package models

import (
	"errors"
	"time"
)

// ErrInvalidArgument is returned when a public entry point receives a nil
// manifest, snapshot or diff. It always indicates a caller bug.
var ErrInvalidArgument = errors.New("invalid argument")

// Manifest is the versioned structural description of a domain. It is
// produced by an external modeling tool and consumed read-only here.
//
// Within each named collection, Name is unique (case-sensitive).
type Manifest struct {
	Name           string            `json:"name"`
	Version        Version           `json:"version"`
	Entities       []Entity          `json:"entities,omitempty"`
	ValueObjects   []ValueObject     `json:"valueObjects,omitempty"`
	Enums          []Enum            `json:"enums,omitempty"`
	RuleSets       []RuleSet         `json:"ruleSets,omitempty"`
	Configurations []Configuration   `json:"configurations,omitempty"`
	Sources        []Source          `json:"sources,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      *time.Time        `json:"createdAt,omitempty"`
}

// Entity is an identity-bearing domain type.
type Entity struct {
	Name       string            `json:"name"`
	Type       string            `json:"type,omitempty"`
	Properties []Property        `json:"properties,omitempty"`
	Keys       []string          `json:"keys,omitempty"`
	Table      string            `json:"table,omitempty"`
	Schema     string            `json:"schema,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Property is a single member of an entity or value object.
type Property struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	IsRequired         bool   `json:"isRequired,omitempty"`
	IsCollection       bool   `json:"isCollection,omitempty"`
	MaxLength          *int   `json:"maxLength,omitempty"`
	Precision          *int   `json:"precision,omitempty"`
	Scale              *int   `json:"scale,omitempty"`
	IsConcurrencyToken bool   `json:"isConcurrencyToken,omitempty"`
	IsComputed         bool   `json:"isComputed,omitempty"`
}

// ValueObject is an entity without identity or persistence binding.
type ValueObject struct {
	Name       string            `json:"name"`
	Type       string            `json:"type,omitempty"`
	Properties []Property        `json:"properties,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Enum maps member names to their underlying numeric codes.
type Enum struct {
	Name     string            `json:"name"`
	Type     string            `json:"type,omitempty"`
	Values   map[string]int64  `json:"values,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RuleSet groups validation rules targeting a single type. Includes names
// other rule sets it composes.
type RuleSet struct {
	Name       string   `json:"name"`
	TargetType string   `json:"targetType,omitempty"`
	Rules      []Rule   `json:"rules,omitempty"`
	Includes   []string `json:"includes,omitempty"`
}

// Rule is identified by ID within its rule set.
type Rule struct {
	ID       string `json:"id"`
	Category string `json:"category,omitempty"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Configuration is the persistence mapping for one entity. It is keyed by
// Entity.
type Configuration struct {
	Entity        string          `json:"entity"`
	EntityType    string          `json:"entityType,omitempty"`
	Table         string          `json:"table,omitempty"`
	Schema        string          `json:"schema,omitempty"`
	Columns       []ColumnMapping `json:"columns,omitempty"`
	Indexes       []Index         `json:"indexes,omitempty"`
	Relationships []Relationship  `json:"relationships,omitempty"`
}

// ColumnMapping binds a property to a column.
type ColumnMapping struct {
	Property   string `json:"property"`
	Column     string `json:"column"`
	ColumnType string `json:"columnType,omitempty"`
}

// Index is a named index. Property order is significant.
type Index struct {
	Name       string   `json:"name"`
	Properties []string `json:"properties,omitempty"`
	IsUnique   bool     `json:"isUnique,omitempty"`
}

// Relationship describes a navigation from the configured entity to Target.
type Relationship struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind,omitempty"`
	Target      string   `json:"target"`
	ForeignKeys []string `json:"foreignKeys,omitempty"`
	IsRequired  bool     `json:"isRequired,omitempty"`
	OnDelete    string   `json:"onDelete,omitempty"`
}

// Source records where part of the manifest was produced from.
type Source struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Hash     string `json:"hash,omitempty"`
}
