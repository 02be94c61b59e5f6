package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/lanish19/ravint22-sub001/internal/config"
	"github.com/lanish19/ravint22-sub001/internal/pipeline"
	"github.com/lanish19/ravint22-sub001/internal/provider"
)

func testProvider() provider.Provider {
	return provider.Func(func(ctx context.Context, req provider.Request) (provider.Response, error) {
		return provider.Response{Raw: []any{}}, nil
	})
}

// TestGraphShape verifies the seven-task graph builds and partitions
// into the expected roles.
func TestGraphShape(t *testing.T) {
	g, err := Graph(testProvider(), "model", config.DefaultConfig())
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}

	if g.Critical().Name != TaskAnswer {
		t.Errorf("critical = %q, want %q", g.Critical().Name, TaskAnswer)
	}
	if g.Terminal().Name != TaskSynthesis {
		t.Errorf("terminal = %q, want %q", g.Terminal().Name, TaskSynthesis)
	}
	if len(g.Independents()) != 3 {
		t.Errorf("independents = %d, want 3", len(g.Independents()))
	}

	deps := g.DependentsInOrder()
	if len(deps) != 2 || deps[0].Name != TaskCritique || deps[1].Name != TaskChallenge {
		t.Errorf("dependent chain order wrong: %v", deps)
	}
}

// TestDefaultsSatisfySchemas verifies the core invariant that every
// task's default value passes its own output contract.
func TestDefaultsSatisfySchemas(t *testing.T) {
	g, err := Graph(testProvider(), "", config.DefaultConfig())
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}

	for _, task := range g.Tasks() {
		t.Run(task.Name, func(t *testing.T) {
			def := task.Default()
			if res := task.Schema.Validate(def); !res.OK {
				t.Errorf("default %#v fails its own schema: %v", def, res.Errors)
			}
		})
	}
}

// TestMaxAttemptsFromConfig verifies per-task overrides apply.
func TestMaxAttemptsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tasks[TaskAnswer] = config.TaskConfig{MaxAttempts: 5}

	g, err := Graph(testProvider(), "", cfg)
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}

	if g.Critical().MaxAttempts != 5 {
		t.Errorf("answer MaxAttempts = %d, want 5", g.Critical().MaxAttempts)
	}
	if ev, _ := g.Get(TaskEvidence); ev.MaxAttempts != 0 {
		t.Errorf("evidence MaxAttempts = %d, want 0 (invoker default)", ev.MaxAttempts)
	}
}

// TestInputSchema verifies the pipeline input contract.
func TestInputSchema(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		wantOK bool
	}{
		{"valid question", map[string]any{"question": "why"}, true},
		{"empty question", map[string]any{"question": ""}, false},
		{"missing question", map[string]any{}, false},
		{"not an object", "why", false},
	}

	v := InputSchema()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := v.Validate(tt.input); res.OK != tt.wantOK {
				t.Errorf("Validate(%#v) OK = %v, want %v", tt.input, res.OK, tt.wantOK)
			}
		})
	}
}

// TestPromptsEmbedContext verifies prompts carry the question and the
// declared upstream values.
func TestPromptsEmbedContext(t *testing.T) {
	in := pipeline.Input{
		Run:  map[string]any{"question": "is the sky blue"},
		Seed: map[string]any{"answer": "yes"},
		Upstream: map[string]any{
			TaskEvidence: []any{map[string]any{"claim": "rayleigh scattering"}},
			TaskCritique: []any{map[string]any{"point": "too terse"}},
		},
	}

	if p := promptAnswer(in); !strings.Contains(p, "is the sky blue") {
		t.Errorf("answer prompt missing question:\n%s", p)
	}
	if p := promptAssumptions(in); !strings.Contains(p, `"answer":"yes"`) {
		t.Errorf("assumptions prompt missing seed answer:\n%s", p)
	}
	if p := promptCritique(in); !strings.Contains(p, "rayleigh scattering") {
		t.Errorf("critique prompt missing evidence:\n%s", p)
	}
	if p := promptChallenge(in); !strings.Contains(p, "too terse") {
		t.Errorf("challenge prompt missing critique:\n%s", p)
	}
}
