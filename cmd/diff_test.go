package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/pders01/domainsnap/internal/testutil"
	"github.com/spf13/viper"
)

func resetDiffFlags() {
	diffFormat = ""
	diffFailOnBreaking = true
}

func TestDiffNoChanges(t *testing.T) {
	setupStore(t)
	resetDiffFlags()
	saveFixture(t, testutil.Sample(t))

	c, out := newTestCommand()
	if err := runDiff(c, []string{"Sales@1.2.0", "Sales@1.2.0"}); err != nil {
		t.Fatalf("diff command failed: %v", err)
	}
	if !strings.Contains(out.String(), "No changes detected.") {
		t.Errorf("expected no-changes report, got:\n%s", out.String())
	}
}

func TestDiffBreakingExitCode(t *testing.T) {
	setupStore(t)
	resetDiffFlags()
	before := saveFixture(t, testutil.Sample(t))
	after := saveFixture(t, breakingUpdate(t))

	c, out := newTestCommand()
	err := runDiff(c, []string{before, after})
	if !errors.Is(err, errBreakingChanges) {
		t.Fatalf("expected breaking-changes error, got %v", err)
	}
	if !strings.Contains(out.String(), "Breaking Changes: Yes") {
		t.Errorf("report should be printed before failing, got:\n%s", out.String())
	}
}

func TestDiffFailOnBreakingDisabled(t *testing.T) {
	setupStore(t)
	resetDiffFlags()
	viper.Set("diff.fail_on_breaking", false)
	saveFixture(t, testutil.Sample(t))
	saveFixture(t, breakingUpdate(t))

	c, _ := newTestCommand()
	if err := runDiff(c, []string{"Sales@1.2.0", "Sales@latest"}); err != nil {
		t.Fatalf("diff should not fail when fail_on_breaking is off: %v", err)
	}
}

func TestDiffFormats(t *testing.T) {
	setupStore(t)
	viper.Set("diff.fail_on_breaking", false)
	saveFixture(t, testutil.Sample(t))
	saveFixture(t, breakingUpdate(t))

	tests := []struct {
		format string
		want   string
	}{
		{"md", "# Domain Diff: Sales"},
		{"markdown", "Version: 1.2.0 → 2.0.0"},
		{"toon", "Email"},
		{"patch", "@@"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resetDiffFlags()
			diffFormat = tt.format
			defer resetDiffFlags()

			c, out := newTestCommand()
			if err := runDiff(c, []string{"Sales@1.2.0", "Sales@2.0.0"}); err != nil {
				t.Fatalf("diff command failed: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("expected %q in output:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestDiffJSON(t *testing.T) {
	setupStore(t)
	resetDiffFlags()
	viper.Set("diff.format", "json")
	viper.Set("diff.fail_on_breaking", false)
	saveFixture(t, testutil.Sample(t))
	saveFixture(t, breakingUpdate(t))

	c, out := newTestCommand()
	if err := runDiff(c, []string{"Sales@1.2.0", "Sales@2.0.0"}); err != nil {
		t.Fatalf("diff command failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got["hasBreakingChanges"] != true {
		t.Errorf("expected hasBreakingChanges true, got %v", got["hasBreakingChanges"])
	}
}

func TestDiffInvalidFormat(t *testing.T) {
	setupStore(t)
	resetDiffFlags()
	diffFormat = "html"
	defer resetDiffFlags()
	saveFixture(t, testutil.Sample(t))

	if err := runDiff(nil, []string{"Sales@1.2.0", "Sales@1.2.0"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestDiffMissingSnapshot(t *testing.T) {
	setupStore(t)
	resetDiffFlags()

	if err := runDiff(nil, []string{"Sales@1.0.0", "Sales@2.0.0"}); err == nil {
		t.Fatal("expected error for missing snapshots")
	}
}
