package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pders01/domainsnap/internal/models"
	"github.com/pders01/domainsnap/internal/testutil"
)

func resetListFlags() {
	listJSON = false
	listToon = false
}

func TestListNoSnapshots(t *testing.T) {
	setupStore(t)
	resetListFlags()

	c, out := newTestCommand()
	if err := runList(c, []string{}); err != nil {
		t.Fatalf("list command failed: %v", err)
	}
	if !strings.Contains(out.String(), "No snapshots found") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestListDomains(t *testing.T) {
	setupStore(t)
	resetListFlags()
	saveFixture(t, testutil.Sample(t))
	saveFixture(t, breakingUpdate(t))
	saveFixture(t, testutil.Manifest(t, "Billing", "0.1.0", testutil.Entity("Invoice", testutil.Prop("Id", "Guid", true))))

	c, out := newTestCommand()
	if err := runList(c, []string{}); err != nil {
		t.Fatalf("list command failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Found 2 domain(s)") {
		t.Errorf("expected two domains, got:\n%s", output)
	}
	if !strings.Contains(output, "latest 2.0.0") {
		t.Errorf("expected latest Sales version, got:\n%s", output)
	}
	if strings.Index(output, "Billing") > strings.Index(output, "Sales") {
		t.Errorf("domains should be sorted by name:\n%s", output)
	}
}

func TestListVersionsJSON(t *testing.T) {
	setupStore(t)
	resetListFlags()
	listJSON = true
	defer resetListFlags()

	saveFixture(t, breakingUpdate(t))
	saveFixture(t, testutil.Sample(t))

	c, out := newTestCommand()
	if err := runList(c, []string{"Sales"}); err != nil {
		t.Fatalf("list command failed: %v", err)
	}

	var got []models.Summary
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(got))
	}
	if got[0].Version != "1.2.0" || got[1].Version != "2.0.0" {
		t.Errorf("versions should be oldest first, got %s, %s", got[0].Version, got[1].Version)
	}
	if got[0].Entities != 2 || got[0].Properties != 11 {
		t.Errorf("unexpected counts: %+v", got[0])
	}
}

func TestListToon(t *testing.T) {
	setupStore(t)
	resetListFlags()
	listToon = true
	defer resetListFlags()
	saveFixture(t, testutil.Sample(t))

	c, out := newTestCommand()
	if err := runList(c, []string{}); err != nil {
		t.Fatalf("list command failed: %v", err)
	}
	if !strings.Contains(out.String(), "Sales") {
		t.Errorf("expected domain in toon output:\n%s", out.String())
	}
}

func TestListUnknownDomain(t *testing.T) {
	setupStore(t)
	resetListFlags()

	c, out := newTestCommand()
	if err := runList(c, []string{"Billing"}); err != nil {
		t.Fatalf("list command failed: %v", err)
	}
	if !strings.Contains(out.String(), "No snapshots found for Billing") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
