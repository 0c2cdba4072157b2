package plan

import (
	"errors"
	"strings"
	"testing"

	"github.com/pders01/domainsnap/internal/codec"
	"github.com/pders01/domainsnap/internal/diff"
	"github.com/pders01/domainsnap/internal/models"
	"github.com/pders01/domainsnap/internal/testutil"
)

func computeDiff(t *testing.T, before, after *models.Manifest) *diff.Diff {
	t.Helper()
	b, err := codec.NewSnapshot(before, testutil.FixedTime)
	if err != nil {
		t.Fatalf("before snapshot: %v", err)
	}
	a, err := codec.NewSnapshot(after, testutil.FixedTime)
	if err != nil {
		t.Fatalf("after snapshot: %v", err)
	}
	d, err := diff.Compare(b, a)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	return d
}

func TestGenerateNoChanges(t *testing.T) {
	d := computeDiff(t, testutil.Manifest(t, "Sales", "1.0.0"), testutil.Manifest(t, "Sales", "1.0.0"))

	out, err := Generate(d)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(out, "No changes detected") {
		t.Errorf("expected 'No changes detected', got %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected a single line, got %q", out)
	}
}

func TestGeneratePropertyTypeChange(t *testing.T) {
	before := testutil.Manifest(t, "Sales", "1.0.0",
		testutil.Entity("Customer", testutil.Prop("Id", "Guid", true), testutil.Prop("Age", "String", false)))
	after := testutil.Manifest(t, "Sales", "2.0.0",
		testutil.Entity("Customer", testutil.Prop("Id", "Guid", true), testutil.Prop("Age", "Int32", false)))

	out, err := Generate(computeDiff(t, before, after))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	for _, want := range []string{
		"# Migration Plan: Sales",
		"## Summary",
		"## Breaking Changes",
		Warning + " Property 'Age' modified: type changed from String to Int32 (in Entity 'Customer')",
		"convert existing data",
		"## Recommended Actions",
		"1. Bump the major version",
		"**Testing:**",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in plan:\n%s", want, out)
		}
	}
	if strings.Contains(out, "## Non-Breaking Changes") {
		t.Errorf("no non-breaking section expected:\n%s", out)
	}
}

func TestGenerateSectionOrder(t *testing.T) {
	before := testutil.Sample(t)
	after := testutil.Sample(t)
	after.Version = models.Version{Major: 2}
	after.Entities[0].Properties = append(after.Entities[0].Properties, testutil.Prop("Phone", "String", true))
	after.Entities = append(after.Entities, testutil.Entity("Invoice", testutil.Prop("Id", "Guid", true)))
	after.RuleSets[1].Rules[0].Message = "Id must never be empty"

	out, err := Generate(computeDiff(t, before, after))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	headings := []string{"# Migration Plan: Sales", "## Summary", "## Breaking Changes", "## Non-Breaking Changes", "## Recommended Actions", "**Testing:**"}
	last := -1
	for _, h := range headings {
		idx := strings.Index(out, h)
		if idx < 0 {
			t.Fatalf("missing %q in plan:\n%s", h, out)
		}
		if idx < last {
			t.Errorf("%q is out of order:\n%s", h, out)
		}
		last = idx
	}

	if !strings.Contains(out, "backfill a default value") {
		t.Errorf("required property addition should recommend a backfill:\n%s", out)
	}
	if !strings.Contains(out, "Entity 'Invoice' added") {
		t.Errorf("entity addition should be listed as non-breaking:\n%s", out)
	}
	if !strings.Contains(out, "Review updated rule sets") {
		t.Errorf("rule changes should produce a review step:\n%s", out)
	}
	if !strings.Contains(out, "- Breaking changes: 1") {
		t.Errorf("expected one breaking change in summary:\n%s", out)
	}
}

func TestGenerateRemovalAndRename(t *testing.T) {
	before := testutil.Sample(t)
	after := testutil.Sample(t)
	after.Version = models.Version{Major: 2}
	after.Entities = after.Entities[1:]
	after.Entities[0].Table = "PurchaseOrders"
	after.Configurations = nil

	out, err := Generate(computeDiff(t, before, after))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(out, "archive or export the existing data") {
		t.Errorf("entity removal should recommend archiving:\n%s", out)
	}
	if !strings.Contains(out, "dual-read") {
		t.Errorf("table rename should recommend a dual-read period:\n%s", out)
	}
}

func TestGenerateNilDiff(t *testing.T) {
	if _, err := Generate(nil); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
