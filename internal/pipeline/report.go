package pipeline

import (
	"fmt"
	"strings"

	"github.com/lanish19/ravint22-sub001/internal/invoker"
)

// Status is the overall result of a run.
type Status int

const (
	StatusComplete           Status = iota // every task succeeded
	StatusPartialDegradation               // critical succeeded, at least one task degraded
	StatusHalted                           // critical task failed or input was rejected
)

// String returns the status label used in summaries and persistence.
func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusPartialDegradation:
		return "partial-degradation"
	case StatusHalted:
		return "halted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the aggregate of one run. Values holds every task's
// resolved value regardless of failures; degradation is visible only
// through Status, Summary, and the per-task Outcomes, never through
// missing fields. Immutable once returned.
type Result struct {
	RunID    string
	Status   Status
	Summary  string
	Values   map[string]any
	Outcomes map[string]invoker.Outcome
}

// buildResult merges all outcomes into the final record plus a
// human-readable summary. Availability is judged by each outcome's
// explicit status flag, never by comparing values to defaults, so a
// genuine empty result is still reported as provided.
func buildResult(runID string, g *Graph, outcomes map[string]invoker.Outcome, status Status, note string) *Result {
	values := make(map[string]any, len(outcomes))
	for name, out := range outcomes {
		values[name] = out.Value
	}

	var b strings.Builder
	switch status {
	case StatusComplete:
		b.WriteString("pipeline complete: all tasks provided results")
	case StatusPartialDegradation:
		degraded := 0
		for _, out := range outcomes {
			if out.Status == invoker.StatusDegraded {
				degraded++
			}
		}
		fmt.Fprintf(&b, "pipeline degraded: %d of %d tasks unavailable", degraded, len(outcomes))
	case StatusHalted:
		b.WriteString("pipeline halted")
		if note != "" {
			b.WriteString(": ")
			b.WriteString(note)
		}
	}

	for _, t := range g.Tasks() {
		out := outcomes[t.Name]
		b.WriteString("\n- ")
		b.WriteString(t.Name)
		b.WriteString(": ")
		if out.Status == invoker.StatusDegraded {
			b.WriteString("unavailable")
			if out.LastError != "" {
				fmt.Fprintf(&b, " (%s)", out.LastError)
			}
		} else {
			fmt.Fprintf(&b, "provided (%s)", describeValue(out.Value))
		}
	}

	return &Result{
		RunID:    runID,
		Status:   status,
		Summary:  b.String(),
		Values:   values,
		Outcomes: outcomes,
	}
}

// describeValue renders a short shape description of a real result.
func describeValue(v any) string {
	switch val := v.(type) {
	case []any:
		if len(val) == 1 {
			return "1 item"
		}
		return fmt.Sprintf("%d items", len(val))
	case map[string]any:
		if len(val) == 1 {
			return "1 field"
		}
		return fmt.Sprintf("%d fields", len(val))
	case string:
		return "text"
	case nil:
		return "empty"
	default:
		return "value"
	}
}
