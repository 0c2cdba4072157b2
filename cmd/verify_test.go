package cmd

import (
	"os"
	"strings"
	"testing"

	"github.com/pders01/domainsnap/internal/testutil"
)

func TestVerifyIntact(t *testing.T) {
	setupStore(t)
	path := saveFixture(t, testutil.Sample(t))
	saveFixture(t, breakingUpdate(t))

	c, out := newTestCommand()
	if err := runVerify(c, []string{path, "Sales@2.0.0"}); err != nil {
		t.Fatalf("verify command failed: %v", err)
	}
	if strings.Count(out.String(), "✓") != 2 {
		t.Errorf("expected two verified snapshots:\n%s", out.String())
	}
}

func TestVerifyTampered(t *testing.T) {
	setupStore(t)
	path := saveFixture(t, testutil.Sample(t))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}
	tampered := strings.Replace(string(data), "total_amount", "amount_total", 1)
	if tampered == string(data) {
		t.Fatal("fixture does not contain the column to tamper with")
	}
	if err := os.WriteFile(path, []byte(tampered), 0644); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}

	c, out := newTestCommand()
	err = runVerify(c, []string{path})
	if err == nil {
		t.Fatal("expected verification failure")
	}
	if !strings.Contains(out.String(), "✗") || !strings.Contains(out.String(), "hash mismatch") {
		t.Errorf("expected mismatch report:\n%s", out.String())
	}
}

func TestVerifyMissing(t *testing.T) {
	setupStore(t)

	c, out := newTestCommand()
	if err := runVerify(c, []string{"Sales@1.0.0"}); err == nil {
		t.Fatal("expected error for missing snapshot")
	}
	if !strings.Contains(out.String(), "✗ Sales@1.0.0") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
