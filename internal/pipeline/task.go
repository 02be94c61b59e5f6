package pipeline

import (
	"fmt"

	"github.com/lanish19/ravint22-sub001/internal/invoker"
	"github.com/lanish19/ravint22-sub001/internal/provider"
	"github.com/lanish19/ravint22-sub001/internal/schema"
)

// Role determines where a task runs in the stage sequence.
type Role int

const (
	RoleCritical    Role = iota // runs first; its failure halts the run
	RoleIndependent             // fans out concurrently over the critical output
	RoleDependent               // runs after the fan-out, in declared order
	RoleTerminal                // runs last, consuming every resolved value
)

// String returns the role label used in validation errors and events.
func (r Role) String() string {
	switch r {
	case RoleCritical:
		return "critical"
	case RoleIndependent:
		return "independent"
	case RoleDependent:
		return "dependent"
	case RoleTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Input is what a task receives when invoked. Run is the caller's
// pipeline input, Seed the critical task's resolved value (nil for the
// critical task itself), and Upstream the resolved values the task
// declared in DependsOn (every value, for the terminal task). Upstream
// values may be degraded defaults; tasks must tolerate empty input.
type Input struct {
	Run      any
	Seed     any
	Upstream map[string]any
}

// Task is an immutable descriptor for one pipeline step. Build all
// tasks up front and hand them to NewGraph; nothing mutates them at
// run time.
type Task struct {
	Name        string
	Role        Role
	DependsOn   []string              // names of upstream tasks whose values this task consumes
	Provider    provider.Provider     // the opaque model operation
	Schema      schema.Validator      // output contract
	Default     func() any            // fallback constructor; must satisfy Schema
	MaxAttempts int                   // <= 0 means invoker.DefaultMaxAttempts
	Breaker     string                // shared circuit breaker key; empty disables
	Prompt      func(in Input) string // instruction renderer; nil yields an empty prompt
}

// spec projects the descriptor into the invoker's view of the task.
func (t *Task) spec() invoker.Spec {
	return invoker.Spec{
		Name:        t.Name,
		Provider:    t.Provider,
		Schema:      t.Schema,
		Default:     t.Default,
		MaxAttempts: t.MaxAttempts,
		Breaker:     t.Breaker,
	}
}

// request renders the provider request for one invocation.
func (t *Task) request(in Input) provider.Request {
	prompt := ""
	if t.Prompt != nil {
		prompt = t.Prompt(in)
	}
	return provider.Request{Task: t.Name, Prompt: prompt, Input: in}
}
