package pipeline

import (
	"strings"
	"testing"

	"github.com/lanish19/ravint22-sub001/internal/invoker"
)

// TestDescribeValue tests the short shape descriptions in summaries.
func TestDescribeValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"empty list", []any{}, "0 items"},
		{"single item", []any{1}, "1 item"},
		{"several items", []any{1, 2, 3}, "3 items"},
		{"object", map[string]any{"a": 1, "b": 2}, "2 fields"},
		{"single field", map[string]any{"a": 1}, "1 field"},
		{"string", "hello", "text"},
		{"nil", nil, "empty"},
		{"scalar", 42, "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeValue(tt.value); got != tt.want {
				t.Errorf("describeValue(%#v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

// TestSummaryUsesStatusFlagNotValueEquality verifies a task that
// genuinely produced a value identical to its default is still
// reported as provided: availability comes from the outcome's status
// flag, not from comparing values against defaults.
func TestSummaryUsesStatusFlagNotValueEquality(t *testing.T) {
	g, err := NewGraph(
		testTask("answer", RoleCritical),
		testTask("evidence", RoleIndependent),
	)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	outcomes := map[string]invoker.Outcome{
		"answer": {TaskName: "answer", Status: invoker.StatusSucceeded, Value: map[string]any{"answer": "X"}, Attempts: 1},
		// Succeeded with a value that happens to equal the default.
		"evidence": {TaskName: "evidence", Status: invoker.StatusSucceeded, Value: []any{}, Attempts: 1},
	}

	res := buildResult("run-1", g, outcomes, StatusComplete, "")

	if !strings.Contains(res.Summary, "- evidence: provided (0 items)") {
		t.Errorf("empty-but-successful result should read as provided:\n%s", res.Summary)
	}
	if strings.Contains(res.Summary, "unavailable") {
		t.Errorf("nothing degraded, summary should not say unavailable:\n%s", res.Summary)
	}
}

// TestSummaryHaltedNote verifies the halt reason lands in the summary.
func TestSummaryHaltedNote(t *testing.T) {
	g, err := NewGraph(testTask("answer", RoleCritical))
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	outcomes := map[string]invoker.Outcome{
		"answer": {TaskName: "answer", Status: invoker.StatusDegraded, Value: map[string]any{}, Attempts: 3, LastError: "provider failure: boom"},
	}

	res := buildResult("run-1", g, outcomes, StatusHalted, `critical task "answer" exhausted retries`)

	if !strings.Contains(res.Summary, "pipeline halted: critical task") {
		t.Errorf("summary should carry the halt note:\n%s", res.Summary)
	}
	if !strings.Contains(res.Summary, "- answer: unavailable") {
		t.Errorf("degraded task line missing:\n%s", res.Summary)
	}
}
