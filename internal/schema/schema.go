// Package schema declares the structural contract a task's output must
// satisfy before the pipeline accepts it. Validators are pluggable per
// task; the default implementation wraps an OpenAPI schema.
package schema

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Result is the outcome of validating a value against a contract.
// When OK is true, Value holds the (possibly normalized) accepted value.
// When OK is false, Errors lists human-readable reasons.
type Result struct {
	OK     bool
	Value  any
	Errors []string
}

// Validator checks a decoded value against a structural contract.
// Implementations must be safe for concurrent use.
type Validator interface {
	Validate(value any) Result
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(value any) Result

// Validate calls f.
func (f ValidatorFunc) Validate(value any) Result { return f(value) }

// Shape validates JSON-decoded values (map[string]any, []any, string,
// float64, bool, nil) against an OpenAPI schema.
type Shape struct {
	schema *openapi3.Schema
}

// FromOpenAPI wraps an OpenAPI schema as a Validator.
func FromOpenAPI(s *openapi3.Schema) *Shape {
	return &Shape{schema: s}
}

// Validate checks value against the wrapped schema. A nil value never
// validates: providers returning nothing are treated as shape failures,
// not as empty results.
func (s *Shape) Validate(value any) Result {
	if value == nil {
		return Result{OK: false, Errors: []string{"value is nil"}}
	}

	if err := s.schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return Result{OK: false, Errors: flatten(err)}
	}

	return Result{OK: true, Value: value}
}

// flatten expands a MultiError into individual messages.
func flatten(err error) []string {
	if me, ok := err.(openapi3.MultiError); ok {
		msgs := make([]string, 0, len(me))
		for _, e := range me {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}

// ObjectOf builds a Shape for an object with the given properties, all
// of which are required. Additional properties are allowed so providers
// may return more than the contract demands.
func ObjectOf(props map[string]*openapi3.Schema) *Shape {
	obj := openapi3.NewObjectSchema().WithAnyAdditionalProperties()
	required := make([]string, 0, len(props))
	for name, prop := range props {
		obj = obj.WithProperty(name, prop)
		required = append(required, name)
	}
	obj.Required = required
	return FromOpenAPI(obj)
}

// ArrayOf builds a Shape for an array of the given item schema. An
// empty array satisfies the shape: absence of findings is a legitimate
// result.
func ArrayOf(item *openapi3.Schema) *Shape {
	return FromOpenAPI(openapi3.NewArraySchema().WithItems(item))
}
