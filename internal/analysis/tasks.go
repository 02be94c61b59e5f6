// Package analysis defines the standard critical-thinking pipeline: a
// direct answer seeds concurrent assumption, bias, and evidence
// checks, a critique consumes the evidence, a challenge pushes back on
// the critique, and a synthesis folds every result together. Each task
// declares its output contract and an empty-but-valid default so the
// pipeline can always produce a well-typed result.
package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/lanish19/ravint22-sub001/internal/config"
	"github.com/lanish19/ravint22-sub001/internal/pipeline"
	"github.com/lanish19/ravint22-sub001/internal/provider"
	"github.com/lanish19/ravint22-sub001/internal/schema"
)

// Task names, in pipeline order.
const (
	TaskAnswer      = "answer"
	TaskAssumptions = "assumptions"
	TaskBiases      = "biases"
	TaskEvidence    = "evidence"
	TaskCritique    = "critique"
	TaskChallenge   = "challenge"
	TaskSynthesis   = "synthesis"
)

// InputSchema validates the caller's pipeline input: an object with a
// non-empty question string.
func InputSchema() schema.Validator {
	return schema.ValidatorFunc(func(v any) schema.Result {
		m, ok := v.(map[string]any)
		if !ok {
			return schema.Result{OK: false, Errors: []string{"input must be an object"}}
		}
		q, ok := m["question"].(string)
		if !ok || q == "" {
			return schema.Result{OK: false, Errors: []string{"question is required"}}
		}
		return schema.Result{OK: true, Value: v}
	})
}

// Graph builds the seven-task analysis graph. All tasks share the
// given provider and breaker key; per-task attempt bounds come from
// cfg.
func Graph(p provider.Provider, breaker string, cfg *config.Config) (*pipeline.Graph, error) {
	task := func(name string, role pipeline.Role, sch schema.Validator, def func() any, prompt func(pipeline.Input) string, deps ...string) *pipeline.Task {
		return &pipeline.Task{
			Name:        name,
			Role:        role,
			DependsOn:   deps,
			Provider:    p,
			Schema:      sch,
			Default:     def,
			MaxAttempts: cfg.MaxAttempts(name),
			Breaker:     breaker,
			Prompt:      prompt,
		}
	}

	return pipeline.NewGraph(
		task(TaskAnswer, pipeline.RoleCritical,
			answerShape(), defaultAnswer, promptAnswer),
		task(TaskAssumptions, pipeline.RoleIndependent,
			findingsShape("assumption"), defaultList, promptAssumptions),
		task(TaskBiases, pipeline.RoleIndependent,
			findingsShape("bias"), defaultList, promptBiases),
		task(TaskEvidence, pipeline.RoleIndependent,
			findingsShape("claim"), defaultList, promptEvidence),
		task(TaskCritique, pipeline.RoleDependent,
			findingsShape("point"), defaultList, promptCritique, TaskEvidence),
		task(TaskChallenge, pipeline.RoleDependent,
			findingsShape("challenge"), defaultList, promptChallenge, TaskCritique),
		task(TaskSynthesis, pipeline.RoleTerminal,
			synthesisShape(), defaultSynthesis, promptSynthesis),
	)
}

func answerShape() schema.Validator {
	return schema.ObjectOf(map[string]*openapi3.Schema{
		"answer": openapi3.NewStringSchema(),
	})
}

// findingsShape accepts a possibly empty list of findings, each an
// object with at least the given text field.
func findingsShape(field string) schema.Validator {
	item := openapi3.NewObjectSchema().
		WithProperty(field, openapi3.NewStringSchema()).
		WithAnyAdditionalProperties()
	item.Required = []string{field}
	return schema.ArrayOf(item)
}

func synthesisShape() schema.Validator {
	return schema.ObjectOf(map[string]*openapi3.Schema{
		"summary": openapi3.NewStringSchema(),
	})
}

func defaultAnswer() any    { return map[string]any{"answer": ""} }
func defaultList() any      { return []any{} }
func defaultSynthesis() any { return map[string]any{"summary": ""} }

// question extracts the caller's question from the run input.
func question(in pipeline.Input) string {
	if m, ok := in.Run.(map[string]any); ok {
		if q, ok := m["question"].(string); ok {
			return q
		}
	}
	return fmt.Sprint(in.Run)
}

// asJSON renders a value for prompt embedding; unmarshalable values
// degrade to fmt formatting rather than failing the prompt.
func asJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func promptAnswer(in pipeline.Input) string {
	return fmt.Sprintf(`Answer the question below as directly as you can.

Question: %s

Respond with JSON only: {"answer": "<your answer>"}`, question(in))
}

func promptAssumptions(in pipeline.Input) string {
	return fmt.Sprintf(`List the unstated assumptions behind this answer. An empty list is a valid response.

Question: %s
Answer: %s

Respond with a JSON array of {"assumption": "<text>", "criticality": "<low|medium|high>"}.`,
		question(in), asJSON(in.Seed))
}

func promptBiases(in pipeline.Input) string {
	return fmt.Sprintf(`Identify cognitive biases that may distort this answer. An empty list is a valid response.

Question: %s
Answer: %s

Respond with a JSON array of {"bias": "<name>", "rationale": "<text>"}.`,
		question(in), asJSON(in.Seed))
}

func promptEvidence(in pipeline.Input) string {
	return fmt.Sprintf(`List the factual claims this answer rests on, with supporting evidence where known. An empty list is a valid response.

Question: %s
Answer: %s

Respond with a JSON array of {"claim": "<text>", "support": "<text>"}.`,
		question(in), asJSON(in.Seed))
}

func promptCritique(in pipeline.Input) string {
	return fmt.Sprintf(`Critique the answer below using its evidence. The evidence list may be empty; critique what remains.

Question: %s
Answer: %s
Evidence: %s

Respond with a JSON array of {"point": "<text>", "severity": "<low|medium|high>"}.`,
		question(in), asJSON(in.Seed), asJSON(in.Upstream[TaskEvidence]))
}

func promptChallenge(in pipeline.Input) string {
	return fmt.Sprintf(`Push back on the critique below: which points are weak, overstated, or wrong? The critique may be empty.

Question: %s
Answer: %s
Critique: %s

Respond with a JSON array of {"challenge": "<text>"}.`,
		question(in), asJSON(in.Seed), asJSON(in.Upstream[TaskCritique]))
}

func promptSynthesis(in pipeline.Input) string {
	return fmt.Sprintf(`Synthesize the analysis below into a final assessment. Some sections may be empty; work with what is present.

Question: %s
Analysis: %s

Respond with JSON only: {"summary": "<text>", "confidence": "<low|medium|high>"}.`,
		question(in), asJSON(in.Upstream))
}
