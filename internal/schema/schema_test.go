package schema

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// TestShapeValidate tests structural validation of decoded values.
func TestShapeValidate(t *testing.T) {
	tests := []struct {
		name      string
		validator Validator
		value     any
		wantOK    bool
	}{
		{
			name:      "object with required string field",
			validator: ObjectOf(map[string]*openapi3.Schema{"answer": openapi3.NewStringSchema()}),
			value:     map[string]any{"answer": "forty-two"},
			wantOK:    true,
		},
		{
			name:      "object missing required field",
			validator: ObjectOf(map[string]*openapi3.Schema{"answer": openapi3.NewStringSchema()}),
			value:     map[string]any{"other": "x"},
			wantOK:    false,
		},
		{
			name:      "object with wrong field type",
			validator: ObjectOf(map[string]*openapi3.Schema{"answer": openapi3.NewStringSchema()}),
			value:     map[string]any{"answer": float64(3)},
			wantOK:    false,
		},
		{
			name:      "extra properties are tolerated",
			validator: ObjectOf(map[string]*openapi3.Schema{"answer": openapi3.NewStringSchema()}),
			value:     map[string]any{"answer": "x", "confidence": "high"},
			wantOK:    true,
		},
		{
			name:      "array of objects",
			validator: ArrayOf(openapi3.NewObjectSchema().WithProperty("claim", openapi3.NewStringSchema())),
			value:     []any{map[string]any{"claim": "a"}, map[string]any{"claim": "b"}},
			wantOK:    true,
		},
		{
			name:      "empty array is valid",
			validator: ArrayOf(openapi3.NewObjectSchema()),
			value:     []any{},
			wantOK:    true,
		},
		{
			name:      "scalar where array expected",
			validator: ArrayOf(openapi3.NewObjectSchema()),
			value:     "not an array",
			wantOK:    false,
		},
		{
			name:      "nil never validates",
			validator: ObjectOf(map[string]*openapi3.Schema{"answer": openapi3.NewStringSchema()}),
			value:     nil,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.validator.Validate(tt.value)
			if res.OK != tt.wantOK {
				t.Fatalf("Validate() OK = %v, want %v (errors: %v)", res.OK, tt.wantOK, res.Errors)
			}
			if !res.OK && len(res.Errors) == 0 {
				t.Error("failed validation should carry at least one error message")
			}
			if res.OK && res.Value == nil {
				t.Error("successful validation should carry the accepted value")
			}
		})
	}
}

// TestValidatorFunc verifies the function adapter satisfies Validator.
func TestValidatorFunc(t *testing.T) {
	var v Validator = ValidatorFunc(func(value any) Result {
		return Result{OK: value == "ok", Value: value}
	})

	if res := v.Validate("ok"); !res.OK {
		t.Error("expected OK result")
	}
	if res := v.Validate("nope"); res.OK {
		t.Error("expected failed result")
	}
}
