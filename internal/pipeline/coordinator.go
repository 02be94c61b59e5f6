package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lanish19/ravint22-sub001/internal/events"
	"github.com/lanish19/ravint22-sub001/internal/invoker"
	"github.com/lanish19/ravint22-sub001/internal/schema"
)

// Stage is the coordinator's position in a run.
type Stage int

const (
	StageNotStarted Stage = iota
	StageRunningCritical
	StageHalted
	StageRunningFanOut
	StageRunningDependentChain
	StageRunningTerminal
	StageDone
)

// String returns the stage label used in events.
func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not-started"
	case StageRunningCritical:
		return "running-critical"
	case StageHalted:
		return "halted"
	case StageRunningFanOut:
		return "running-fan-out"
	case StageRunningDependentChain:
		return "running-dependent-chain"
	case StageRunningTerminal:
		return "running-terminal"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Coordinator drives one graph through the stage sequence. It owns
// each run's outcome slots: every slot is written exactly once, then
// only read, so the fan-out needs no per-slot locking beyond the map
// mutex.
type Coordinator struct {
	graph       *Graph
	inv         *invoker.Invoker
	bus         *events.Bus
	inputSchema schema.Validator
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithInputSchema validates the caller's pipeline input before any
// task is invoked. Invalid input yields a fully-default Halted result.
func WithInputSchema(v schema.Validator) CoordinatorOption {
	return func(c *Coordinator) { c.inputSchema = v }
}

// NewCoordinator creates a Coordinator for a validated graph. A nil
// bus disables event emission.
func NewCoordinator(graph *Graph, inv *invoker.Invoker, bus *events.Bus, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{graph: graph, inv: inv, bus: bus}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the pipeline once. It never returns an error and never
// panics: every task failure is absorbed into a degraded outcome, and
// the result always carries a schema-valid value for every task.
func (c *Coordinator) Run(ctx context.Context, input any) *Result {
	runID := uuid.NewString()
	stage := StageNotStarted
	outcomes := make(map[string]invoker.Outcome, len(c.graph.declared))

	// Fail fast on invalid caller input: no task is invoked.
	if c.inputSchema != nil {
		if res := c.inputSchema.Validate(input); !res.OK {
			reason := "input rejected: " + strings.Join(res.Errors, "; ")
			c.fillDefaults(outcomes, reason)
			c.transition(runID, stage, StageHalted)
			return c.finish(runID, outcomes, StatusHalted, reason)
		}
	}

	stage = c.transition(runID, stage, StageRunningCritical)
	crit := c.graph.Critical()
	critOut := c.invokeTask(ctx, crit, Input{Run: input})
	outcomes[crit.Name] = critOut

	// The critical task is the only one whose failure is fatal: halt
	// before any other task starts.
	if critOut.Status == invoker.StatusDegraded {
		reason := fmt.Sprintf("critical task %q exhausted retries: %s", crit.Name, critOut.LastError)
		c.fillDefaults(outcomes, reason)
		c.transition(runID, stage, StageHalted)
		return c.finish(runID, outcomes, StatusHalted, reason)
	}

	seed := critOut.Value

	// Fan out the independent tasks; each failure is isolated in its
	// own outcome slot. Wait is the synchronization barrier: nothing
	// downstream starts until every independent task has resolved.
	stage = c.transition(runID, stage, StageRunningFanOut)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range c.graph.Independents() {
		t := t
		g.Go(func() error {
			out := c.invokeTask(gctx, t, Input{Run: input, Seed: seed})
			mu.Lock()
			outcomes[t.Name] = out
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Dependent chain in declared order. Upstream values are passed
	// as resolved, degraded defaults included; no task is skipped
	// because an upstream task degraded.
	stage = c.transition(runID, stage, StageRunningDependentChain)
	for _, t := range c.graph.DependentsInOrder() {
		upstream := make(map[string]any, len(t.DependsOn))
		for _, dep := range t.DependsOn {
			upstream[dep] = outcomes[dep].Value
		}
		outcomes[t.Name] = c.invokeTask(ctx, t, Input{Run: input, Seed: seed, Upstream: upstream})
	}

	if term := c.graph.Terminal(); term != nil {
		stage = c.transition(runID, stage, StageRunningTerminal)
		upstream := make(map[string]any, len(outcomes))
		for name, out := range outcomes {
			upstream[name] = out.Value
		}
		outcomes[term.Name] = c.invokeTask(ctx, term, Input{Run: input, Seed: seed, Upstream: upstream})
	}

	c.transition(runID, stage, StageDone)
	return c.finish(runID, outcomes, statusFor(outcomes), "")
}

// invokeTask runs one task through the shared invoker.
func (c *Coordinator) invokeTask(ctx context.Context, t *Task, in Input) invoker.Outcome {
	return c.inv.Invoke(ctx, t.spec(), t.request(in))
}

// fillDefaults synthesizes degraded outcomes for every task that has
// no outcome slot yet. Used on halt paths, where remaining providers
// are never called.
func (c *Coordinator) fillDefaults(outcomes map[string]invoker.Outcome, reason string) {
	for _, t := range c.graph.declared {
		if _, done := outcomes[t.Name]; done {
			continue
		}
		outcomes[t.Name] = invoker.Outcome{
			TaskName:  t.Name,
			Status:    invoker.StatusDegraded,
			Value:     t.Default(),
			Attempts:  0,
			LastError: "not invoked: " + reason,
		}
	}
}

// finish builds the result and publishes the closing event.
func (c *Coordinator) finish(runID string, outcomes map[string]invoker.Outcome, status Status, note string) *Result {
	res := buildResult(runID, c.graph, outcomes, status, note)

	if c.bus != nil {
		var degraded []string
		for _, t := range c.graph.declared {
			if outcomes[t.Name].Status == invoker.StatusDegraded {
				degraded = append(degraded, t.Name)
			}
		}
		c.bus.Publish(events.TopicRun, events.RunFinishedEvent{
			RunID:     runID,
			Status:    status.String(),
			Degraded:  degraded,
			Timestamp: time.Now(),
		})
	}

	return res
}

// transition publishes a stage change and returns the new stage.
func (c *Coordinator) transition(runID string, from, to Stage) Stage {
	if c.bus != nil {
		c.bus.Publish(events.TopicRun, events.StageChangedEvent{
			RunID:     runID,
			From:      from.String(),
			To:        to.String(),
			Timestamp: time.Now(),
		})
	}
	return to
}

// statusFor folds per-task statuses into the overall run status for
// non-halted runs.
func statusFor(outcomes map[string]invoker.Outcome) Status {
	for _, out := range outcomes {
		if out.Status == invoker.StatusDegraded {
			return StatusPartialDegradation
		}
	}
	return StatusComplete
}
