package models

import "time"

// SchemaURL is written as "$schema" in snapshot files.
const SchemaURL = "https://domainsnap.dev/schema/snapshot-v1.json"

// Snapshot is an immutable, hashed capture of a manifest.
//
// Hash is a pure function of the manifest's canonical content. Snapshots
// are built by codec.NewSnapshot or codec.Decode and must not be mutated;
// a new manifest state needs a new Snapshot.
type Snapshot struct {
	Schema    string    `json:"$schema,omitempty"`
	Name      string    `json:"name"`
	Version   Version   `json:"version"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"createdAt"`
	Manifest  Manifest  `json:"manifest"`
}

// Summary is a flat view of a snapshot used by list and stats output.
type Summary struct {
	Name           string    `json:"name"`
	Version        string    `json:"version"`
	Hash           string    `json:"hash"`
	CreatedAt      time.Time `json:"created_at"`
	Path           string    `json:"path,omitempty"`
	Entities       int       `json:"entities"`
	Properties     int       `json:"properties"`
	ValueObjects   int       `json:"value_objects"`
	Enums          int       `json:"enums"`
	RuleSets       int       `json:"rule_sets"`
	Rules          int       `json:"rules"`
	Configurations int       `json:"configurations"`
}

// Summarize counts the elements of a snapshot's manifest.
func Summarize(s *Snapshot, path string) Summary {
	m := s.Manifest
	sum := Summary{
		Name:           s.Name,
		Version:        s.Version.String(),
		Hash:           s.Hash,
		CreatedAt:      s.CreatedAt,
		Path:           path,
		Entities:       len(m.Entities),
		ValueObjects:   len(m.ValueObjects),
		Enums:          len(m.Enums),
		RuleSets:       len(m.RuleSets),
		Configurations: len(m.Configurations),
	}
	for _, e := range m.Entities {
		sum.Properties += len(e.Properties)
	}
	for _, v := range m.ValueObjects {
		sum.Properties += len(v.Properties)
	}
	for _, rs := range m.RuleSets {
		sum.Rules += len(rs.Rules)
	}
	return sum
}
