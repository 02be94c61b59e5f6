package provider

import (
	"context"
	"errors"
	"testing"
)

// TestScriptedReplay verifies steps are returned in order and calls are counted.
func TestScriptedReplay(t *testing.T) {
	boom := errors.New("boom")
	s := NewScripted(
		Response{Raw: "first"},
		boom,
		Response{Raw: "third"},
	)

	ctx := context.Background()

	resp, err := s.Complete(ctx, Request{Task: "t"})
	if err != nil || resp.Raw != "first" {
		t.Fatalf("step 1: got (%v, %v), want (first, nil)", resp.Raw, err)
	}

	if _, err := s.Complete(ctx, Request{Task: "t"}); !errors.Is(err, boom) {
		t.Fatalf("step 2: got %v, want scripted error", err)
	}

	resp, err = s.Complete(ctx, Request{Task: "t"})
	if err != nil || resp.Raw != "third" {
		t.Fatalf("step 3: got (%v, %v), want (third, nil)", resp.Raw, err)
	}

	if got := s.Calls(); got != 3 {
		t.Errorf("Calls() = %d, want 3", got)
	}
}

// TestScriptedExhausted verifies calls past the script fail loudly.
func TestScriptedExhausted(t *testing.T) {
	s := NewScripted(Response{Raw: "only"})
	ctx := context.Background()

	if _, err := s.Complete(ctx, Request{Task: "t"}); err != nil {
		t.Fatalf("first call should succeed: %v", err)
	}
	if _, err := s.Complete(ctx, Request{Task: "t"}); err == nil {
		t.Fatal("call past end of script should fail")
	}
}

// TestFuncAdapter verifies a bare function satisfies Provider.
func TestFuncAdapter(t *testing.T) {
	var p Provider = Func(func(ctx context.Context, req Request) (Response, error) {
		return Response{Raw: req.Task}, nil
	})

	resp, err := p.Complete(context.Background(), Request{Task: "echo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Raw != "echo" {
		t.Errorf("Raw = %v, want echo", resp.Raw)
	}
}
