// Package invoker wraps every task invocation in one retry-with-
// validation policy: bounded attempts, exponential backoff, text
// payload coercion, schema validation, and a guaranteed schema-valid
// fallback value on exhaustion. Invoke never returns an error and
// never panics; failure surfaces only as a Degraded outcome.
package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/lanish19/ravint22-sub001/internal/events"
	"github.com/lanish19/ravint22-sub001/internal/provider"
	"github.com/lanish19/ravint22-sub001/internal/schema"
)

// DefaultMaxAttempts applies when a Spec leaves MaxAttempts unset.
const DefaultMaxAttempts = 3

// Status classifies an Outcome.
type Status int

const (
	StatusSucceeded Status = iota // provider result passed validation
	StatusDegraded                // default value substituted after exhaustion
)

// String returns the status label used in events and persistence.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Spec is the invoker's view of a task: the operation, its output
// contract, and its fallback. Immutable once built.
type Spec struct {
	Name        string
	Provider    provider.Provider
	Schema      schema.Validator
	Default     func() any // constructor, so each fallback is a fresh value
	MaxAttempts int        // <= 0 means DefaultMaxAttempts
	Breaker     string     // circuit breaker key; empty disables the breaker
}

// Outcome is the resolved result of one task invocation. Value always
// satisfies the task's schema: either validation succeeded, or Value is
// the task's default, which satisfies the schema by construction.
type Outcome struct {
	TaskName  string
	Status    Status
	Value     any
	Attempts  int
	LastError string
}

// Invoker executes Specs under one shared retry and breaker policy.
type Invoker struct {
	bus      *events.Bus
	retry    RetryConfig
	breakers *BreakerRegistry
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithRetryConfig overrides the default backoff settings.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(inv *Invoker) { inv.retry = cfg }
}

// WithBreakers enables circuit breaking for specs that carry a
// breaker key.
func WithBreakers(reg *BreakerRegistry) Option {
	return func(inv *Invoker) { inv.breakers = reg }
}

// New creates an Invoker publishing diagnostics to bus. A nil bus
// disables event emission.
func New(bus *events.Bus, opts ...Option) *Invoker {
	inv := &Invoker{bus: bus, retry: DefaultRetryConfig()}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke runs spec against req with bounded retries. A permanently
// failing task is attempted exactly MaxAttempts times and then
// degraded to its default; a validated result returns immediately.
func (inv *Invoker) Invoke(ctx context.Context, spec Spec, req provider.Request) Outcome {
	maxAttempts := spec.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var (
		attempts int
		value    any
		lastErr  error
	)

	op := func() error {
		attempt := attempts
		attempts++

		raw, err := inv.call(ctx, spec, req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrProviderFailure, err)
			inv.publishAttempt(spec.Name, attempt, lastErr)
			// An open breaker or a dead context will not heal within
			// this invocation; stop retrying.
			if ctx.Err() != nil || errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(lastErr)
			}
			return lastErr
		}

		val, err := coerce(raw)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrOutputShape, err)
			inv.publishAttempt(spec.Name, attempt, lastErr)
			return lastErr
		}

		res := spec.Schema.Validate(val)
		if !res.OK {
			lastErr = fmt.Errorf("%w: %s", ErrSchemaValidation, strings.Join(res.Errors, "; "))
			inv.publishAttempt(spec.Name, attempt, lastErr)
			return lastErr
		}

		value = res.Value
		inv.publishAttempt(spec.Name, attempt, nil)
		return nil
	}

	policy := backoff.WithMaxRetries(inv.retry.policy(), uint64(maxAttempts-1))
	err := backoff.Retry(op, backoff.WithContext(policy, ctx))

	if err == nil {
		inv.publish(events.TaskSucceededEvent{
			TaskName:  spec.Name,
			Attempts:  attempts,
			Timestamp: time.Now(),
		})
		return Outcome{TaskName: spec.Name, Status: StatusSucceeded, Value: value, Attempts: attempts}
	}

	// The context may die before the first attempt runs.
	if lastErr == nil {
		lastErr = fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	var def any
	if spec.Default != nil {
		def = spec.Default()
	}

	inv.publish(events.TaskDegradedEvent{
		TaskName:  spec.Name,
		Attempts:  attempts,
		LastError: lastErr.Error(),
		Timestamp: time.Now(),
	})

	return Outcome{
		TaskName:  spec.Name,
		Status:    StatusDegraded,
		Value:     def,
		Attempts:  attempts,
		LastError: lastErr.Error(),
	}
}

// call executes one provider attempt, optionally through a breaker.
func (inv *Invoker) call(ctx context.Context, spec Spec, req provider.Request) (any, error) {
	if inv.breakers != nil && spec.Breaker != "" {
		result, err := inv.breakers.Get(spec.Breaker).Execute(func() (any, error) {
			return inv.complete(ctx, spec, req)
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return inv.complete(ctx, spec, req)
}

// complete calls the provider, converting panics into errors so no
// task can crash the pipeline.
func (inv *Invoker) complete(ctx context.Context, spec Spec, req provider.Request) (raw any, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()

	resp, err := spec.Provider.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Raw, nil
}

// coerce turns a raw provider payload into a JSON-decoded value. Text
// payloads are decoded, stripping a Markdown code fence if present;
// anything else passes through untouched for the schema to judge.
func coerce(raw any) (any, error) {
	text, ok := raw.(string)
	if !ok {
		return raw, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty text payload")
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("decoding text payload: %w", err)
	}
	return decoded, nil
}

func (inv *Invoker) publishAttempt(task string, attempt int, attemptErr error) {
	msg := ""
	if attemptErr != nil {
		msg = attemptErr.Error()
	}
	inv.publish(events.TaskAttemptEvent{
		TaskName:  task,
		Attempt:   attempt,
		Err:       msg,
		Timestamp: time.Now(),
	})
}

func (inv *Invoker) publish(ev events.Event) {
	if inv.bus == nil {
		return
	}
	inv.bus.Publish(events.TopicTask, ev)
}
