package provider

import (
	"context"
	"fmt"
	"sync"
)

// Scripted replays a fixed sequence of responses and errors, one per
// call, and records how many calls were made. It is the standard test
// double for retry and coordination behavior.
type Scripted struct {
	mu    sync.Mutex
	steps []any // each entry is a Response or an error
	calls int
}

// NewScripted creates a Scripted provider. Each step must be a
// Response or an error; calls past the end of the script fail.
func NewScripted(steps ...any) *Scripted {
	return &Scripted{steps: steps}
}

// Complete returns the next scripted step.
func (s *Scripted) Complete(ctx context.Context, req Request) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calls >= len(s.steps) {
		s.calls++
		return Response{}, fmt.Errorf("unexpected call %d to task %q (only %d steps scripted)", s.calls, req.Task, len(s.steps))
	}

	step := s.steps[s.calls]
	s.calls++

	switch v := step.(type) {
	case Response:
		return v, nil
	case error:
		return Response{}, v
	default:
		return Response{}, fmt.Errorf("invalid scripted step type %T", v)
	}
}

// Calls returns the number of Complete invocations so far.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
