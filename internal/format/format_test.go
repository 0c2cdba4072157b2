package format

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/pders01/domainsnap/internal/codec"
	"github.com/pders01/domainsnap/internal/diff"
	"github.com/pders01/domainsnap/internal/models"
	"github.com/pders01/domainsnap/internal/testutil"
)

func snapshots(t *testing.T, before, after *models.Manifest) (*models.Snapshot, *models.Snapshot) {
	t.Helper()
	b, err := codec.NewSnapshot(before, testutil.FixedTime)
	if err != nil {
		t.Fatalf("before snapshot: %v", err)
	}
	a, err := codec.NewSnapshot(after, testutil.FixedTime)
	if err != nil {
		t.Fatalf("after snapshot: %v", err)
	}
	return b, a
}

func computeDiff(t *testing.T, before, after *models.Manifest) *diff.Diff {
	t.Helper()
	b, a := snapshots(t, before, after)
	d, err := diff.Compare(b, a)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	return d
}

// breakingDiff removes Email from Customer and adds Order.
func breakingDiff(t *testing.T) *diff.Diff {
	before := testutil.Manifest(t, "Sales", "1.0.0",
		testutil.Entity("Customer", testutil.Prop("Id", "Guid", true), testutil.Prop("Email", "String", false)))
	after := testutil.Manifest(t, "Sales", "2.0.0",
		testutil.Entity("Customer", testutil.Prop("Id", "Guid", true)),
		testutil.Entity("Order", testutil.Prop("Id", "Guid", true)))
	return computeDiff(t, before, after)
}

func TestMarkdownNoChanges(t *testing.T) {
	m := testutil.Manifest(t, "Sales", "1.0.0")
	d := computeDiff(t, m, testutil.Manifest(t, "Sales", "1.0.0"))

	out, err := FormatAsMarkdown(d)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if !strings.Contains(out, "No changes") {
		t.Errorf("expected 'No changes' in output:\n%s", out)
	}
	if !strings.Contains(out, "Breaking Changes: No") {
		t.Errorf("expected breaking summary in output:\n%s", out)
	}
}

func TestMarkdown(t *testing.T) {
	out, err := FormatAsMarkdown(breakingDiff(t))
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}

	for _, want := range []string{
		"# Domain Diff: Sales",
		"Version: 1.0.0 → 2.0.0",
		"Breaking Changes: Yes",
		"## Entities",
		"- Entity 'Customer' modified **(breaking)**",
		"  - Property 'Email' removed **(breaking)**",
		"- Entity 'Order' added\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "## Enums") {
		t.Errorf("empty categories should be skipped:\n%s", out)
	}
}

func TestJSON(t *testing.T) {
	out, err := FormatAsJSON(breakingDiff(t))
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if doc["domain"] != "Sales" || doc["beforeVersion"] != "1.0.0" || doc["afterVersion"] != "2.0.0" {
		t.Errorf("unexpected header fields: %v", doc)
	}
	if doc["hasBreakingChanges"] != true {
		t.Errorf("expected hasBreakingChanges=true, got %v", doc["hasBreakingChanges"])
	}
	if doc["totalChanges"] != float64(2) {
		t.Errorf("expected totalChanges=2, got %v", doc["totalChanges"])
	}
	for _, key := range []string{"entityChanges", "valueObjectChanges", "enumChanges", "ruleSetChanges", "configurationChanges"} {
		if _, ok := doc[key].([]any); !ok {
			t.Errorf("expected %s to be an array, got %T", key, doc[key])
		}
	}
	entities := doc["entityChanges"].([]any)
	first := entities[0].(map[string]any)
	if first["name"] != "Customer" || first["changeType"] != "Modified" {
		t.Errorf("unexpected first entity change: %v", first)
	}
	if props, ok := first["propertyChanges"].([]any); !ok || len(props) != 1 {
		t.Errorf("expected nested property changes, got %v", first["propertyChanges"])
	}
}

func TestToon(t *testing.T) {
	out, err := FormatAsToon(breakingDiff(t))
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	for _, want := range []string{"Sales", "Customer", "Email", "Order"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in toon output:\n%s", want, out)
		}
	}
}

func TestCanonicalPatch(t *testing.T) {
	before := testutil.Sample(t)
	after := testutil.Sample(t)
	after.Entities[0].Properties[1].Type = "EmailAddress"
	b, a := snapshots(t, before, after)

	out, err := FormatCanonicalPatch(b, a)
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	for _, want := range []string{"--- Sales@1.2.0", "+++ Sales@1.2.0", `-          "type": "String"`, `+          "type": "EmailAddress"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in patch:\n%s", want, out)
		}
	}

	same, err := FormatCanonicalPatch(b, b)
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if same != "" {
		t.Errorf("expected empty patch for identical snapshots, got:\n%s", same)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"md", Markdown},
		{"Markdown", Markdown},
		{"json", JSON},
		{" toon ", Toon},
		{"patch", Patch},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if _, err := ParseFormat("html"); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown format, got %v", err)
	}
}

func TestNilDiff(t *testing.T) {
	if _, err := FormatAsMarkdown(nil); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("markdown: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := FormatAsJSON(nil); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("json: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := FormatAsToon(nil); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("toon: expected ErrInvalidArgument, got %v", err)
	}
}
