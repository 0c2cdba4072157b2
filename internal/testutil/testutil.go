// Package testutil provides manifest fixtures and file helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/pders01/domainsnap/internal/models"
)

// FixedTime is the creation time used by fixtures.
var FixedTime = time.Date(2025, 11, 14, 9, 30, 0, 0, time.UTC)

// Prop builds a property of the given type.
func Prop(name, typ string, required bool) models.Property {
	return models.Property{Name: name, Type: typ, IsRequired: required}
}

// Entity builds an entity named name with a Guid key "Id" already declared
// in keys if props contains it.
func Entity(name string, props ...models.Property) models.Entity {
	e := models.Entity{Name: name, Type: "Domain." + name, Properties: props}
	for _, p := range props {
		if p.Name == "Id" {
			e.Keys = []string{"Id"}
		}
	}
	return e
}

// Manifest builds a manifest holding the given entities.
func Manifest(t *testing.T, name, version string, entities ...models.Entity) *models.Manifest {
	t.Helper()
	v, err := models.ParseVersion(version)
	if err != nil {
		t.Fatalf("invalid fixture version: %v", err)
	}
	return &models.Manifest{Name: name, Version: v, Entities: entities}
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// Sample returns a manifest that populates every collection.
func Sample(t *testing.T) *models.Manifest {
	t.Helper()
	created := FixedTime
	m := Manifest(t, "Sales", "1.2.0",
		Entity("Customer",
			Prop("Id", "Guid", true),
			Prop("Email", "String", false),
			models.Property{Name: "Name", Type: "String", IsRequired: true, MaxLength: IntPtr(200)},
			models.Property{Name: "RowVersion", Type: "Byte[]", IsConcurrencyToken: true},
		),
		Entity("Order",
			Prop("Id", "Guid", true),
			models.Property{Name: "Total", Type: "Decimal", IsRequired: true, Precision: IntPtr(18), Scale: IntPtr(2)},
			models.Property{Name: "Lines", Type: "OrderLine", IsCollection: true},
		),
	)
	m.Entities[1].Table = "Orders"
	m.Entities[1].Schema = "sales"
	m.ValueObjects = []models.ValueObject{
		{Name: "Address", Type: "Domain.Address", Properties: []models.Property{Prop("Street", "String", true), Prop("City", "String", true)}},
		{Name: "Money", Type: "Domain.Money", Properties: []models.Property{Prop("Amount", "Decimal", true), Prop("Currency", "String", true)}},
	}
	m.Enums = []models.Enum{
		{Name: "OrderStatus", Type: "Domain.OrderStatus", Values: map[string]int64{"Pending": 0, "Paid": 1, "Shipped": 2}},
	}
	m.RuleSets = []models.RuleSet{
		{Name: "CustomerRules", TargetType: "Customer", Rules: []models.Rule{
			{ID: "CUST-002", Category: "Format", Severity: "Warning", Message: "Email should be valid"},
			{ID: "CUST-001", Category: "Required", Severity: "Error", Message: "Name is required"},
		}, Includes: []string{"CommonRules"}},
		{Name: "CommonRules", TargetType: "Entity", Rules: []models.Rule{{ID: "COM-001", Severity: "Error", Message: "Id must be set"}}},
	}
	m.Configurations = []models.Configuration{
		{
			Entity: "Order", EntityType: "Domain.Order", Table: "Orders", Schema: "sales",
			Columns: []models.ColumnMapping{{Property: "Total", Column: "total_amount", ColumnType: "decimal(18,2)"}},
			Indexes: []models.Index{{Name: "IX_Order_Total", Properties: []string{"Total"}}},
			Relationships: []models.Relationship{
				{Name: "Customer", Kind: "ManyToOne", Target: "Customer", ForeignKeys: []string{"CustomerId"}, IsRequired: true, OnDelete: "Restrict"},
			},
		},
	}
	m.Sources = []models.Source{{Name: "Sales.Domain", Location: "src/Sales.Domain"}}
	m.Metadata = map[string]string{"owner": "sales-team", "generator": "fluent-dsl"}
	m.CreatedAt = &created
	return m
}

// Shuffled returns a copy of m with every named collection reversed.
func Shuffled(m *models.Manifest) *models.Manifest {
	out := *m
	out.Entities = slices.Clone(m.Entities)
	slices.Reverse(out.Entities)
	for i := range out.Entities {
		out.Entities[i].Properties = slices.Clone(out.Entities[i].Properties)
		slices.Reverse(out.Entities[i].Properties)
		out.Entities[i].Keys = slices.Clone(out.Entities[i].Keys)
		slices.Reverse(out.Entities[i].Keys)
	}
	out.ValueObjects = slices.Clone(m.ValueObjects)
	slices.Reverse(out.ValueObjects)
	out.Enums = slices.Clone(m.Enums)
	slices.Reverse(out.Enums)
	out.RuleSets = slices.Clone(m.RuleSets)
	slices.Reverse(out.RuleSets)
	for i := range out.RuleSets {
		out.RuleSets[i].Rules = slices.Clone(out.RuleSets[i].Rules)
		slices.Reverse(out.RuleSets[i].Rules)
	}
	out.Configurations = slices.Clone(m.Configurations)
	slices.Reverse(out.Configurations)
	out.Sources = slices.Clone(m.Sources)
	slices.Reverse(out.Sources)
	return &out
}

// CreateFile writes content to dir/name, creating parent directories.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	return path
}
