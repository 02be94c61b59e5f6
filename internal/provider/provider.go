// Package provider defines the narrow contract through which the
// pipeline talks to a generative model. The transport behind a
// Provider is opaque: it may return structured data, a JSON string
// that still needs decoding, nil, or an error.
package provider

import "context"

// Request carries one task invocation to a provider.
type Request struct {
	Task   string // task name, for routing and diagnostics
	Prompt string // rendered instruction text
	Input  any    // structured input the prompt was built from
}

// Response is the raw provider result before any coercion or
// validation. Raw may be a decoded structure, a string payload, or nil.
type Response struct {
	Raw any
}

// Provider executes one model call. Implementations may block on the
// network and must honor ctx cancellation.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Func adapts a plain function to the Provider interface.
type Func func(ctx context.Context, req Request) (Response, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
