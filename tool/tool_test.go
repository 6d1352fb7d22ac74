package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davidvonthenen/a2a-simple/logging"
)

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	// Properties present
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"a"}, req)
	// Descriptions carried over from struct tags
	aProp, _ := props["a"].(map[string]any)
	assert.Equal(t, "Field A", aProp["description"])
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror the JSON decoded schema shape
		"required": []any{"x"},
	}

	// Success
	err := ValidateParameters(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	// Missing required
	err = ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Equal(t, "x", vErr.Field)
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Wrong type
	err = ValidateParameters(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Contains(t, vErr.Message, "expected type integer")
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestValidateParameters_RequiredStringSlice(t *testing.T) {
	// Hand-written and struct-derived schemas carry required as []string.
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{"type": "string"},
		},
		"required": []string{"city"},
	}

	err := ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)

	err = ValidateParameters(map[string]any{"city": "LA"}, schema)
	assert.NoError(t, err)
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ context.Context, args map[string]any) (any, error) {
		a := args["a"].(float64)
		b := args["b"].(float64)
		return a + b, nil
	}, func(o *Options) {
		o.Logger = logging.NoOpLogger{}
	})

	result, err := sumTool.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []any{"a"},
	}
	tTool := NewFunctionTool("test", "Test", params, func(_ context.Context, _ map[string]any) (any, error) {
		return 0, nil
	})
	_, err := tTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	execTool := NewFunctionTool("fail", "Fails", params, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})
	_, err := execTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
}

func TestFunctionTool_CustomToolErrorPassthrough(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	custom := NewToolError("lookup", "upstream unavailable", "UPSTREAM_ERROR")
	lookupTool := NewFunctionTool("lookup", "Looks up", params, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, custom
	})
	_, err := lookupTool.Call(context.Background(), map[string]any{})
	assert.Same(t, custom, err)
}

func TestFunctionToolFromStruct(t *testing.T) {
	type forecastArgs struct {
		City  string `json:"city" description:"City name"`
		State string `json:"state" description:"Two-letter state code"`
	}

	ft := NewFunctionToolFromStruct("get_forecast", "Get a forecast", forecastArgs{}, func(_ context.Context, args map[string]any) (any, error) {
		return args["city"], nil
	})

	props, _ := ft.Parameters()["properties"].(map[string]any)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "state")

	// Struct-derived required fields are enforced.
	_, err := ft.Call(context.Background(), map[string]any{"city": "LA"})
	assert.Error(t, err)

	res, err := ft.Call(context.Background(), map[string]any{"city": "LA", "state": "CA"})
	assert.NoError(t, err)
	assert.Equal(t, "LA", res)
}

// -------------------- Definition Bridge --------------------

func TestDefinitions(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	a := NewFunctionTool("alpha", "First", params, func(_ context.Context, _ map[string]any) (any, error) { return nil, nil })
	b := NewFunctionTool("beta", "Second", params, func(_ context.Context, _ map[string]any) (any, error) { return nil, nil })

	defs := Definitions([]Tool{a, b})
	assert.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "First", defs[0].Description)
	assert.Equal(t, "beta", defs[1].Name)

	assert.Nil(t, Definitions(nil))
}

// -------------------- ToolError Formatting --------------------

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")

	plain := NewToolError("demo", "something failed", "")
	assert.NotContains(t, plain.Error(), "[")
}
