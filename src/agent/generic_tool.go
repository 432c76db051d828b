package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/swaggest/jsonschema-go"

	"github.com/villaops/villaops/src/aisdk"
)

// GenericTool is a type-safe tool whose argument schema is reflected from the
// input struct. Malformed or incomplete arguments become an error response
// for the model to react to, never a hard failure of the loop.
type GenericTool[TInput any, TOutput any] struct {
	Type        string
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Handler     GenericToolHandler[TInput, TOutput]
}

// GenericToolHandler is a type-safe handler function.
type GenericToolHandler[TInput any, TOutput any] func(ctx context.Context, input TInput) (TOutput, error)

// GetType returns the tool type (always "function" for now).
func (gt *GenericTool[TInput, TOutput]) GetType() string { return gt.Type }

// GetName returns the tool's name.
func (gt *GenericTool[TInput, TOutput]) GetName() string { return gt.Name }

// GetDescription returns the tool's description.
func (gt *GenericTool[TInput, TOutput]) GetDescription() string { return gt.Description }

// GetParameters returns the JSON schema for the tool's parameters.
func (gt *GenericTool[TInput, TOutput]) GetParameters() *jsonschema.Schema { return gt.Schema }

// Execute runs the tool with the given parameters. Unknown argument fields
// are rejected so the model learns the declared schema is exhaustive.
func (gt *GenericTool[TInput, TOutput]) Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	var input TInput
	if err := decodeStrict(call.Function.Arguments, &input); err != nil {
		return errorResponse(fmt.Sprintf("failed to parse input: %v", err)), nil
	}

	if err := gt.validateRequired(input); err != nil {
		return errorResponse(fmt.Sprintf("validation failed: %v", err)), nil
	}

	output, err := gt.Handler(ctx, input)
	if err != nil {
		return errorResponse(err.Error()), nil
	}

	content, err := json.Marshal(output)
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return &aisdk.ToolResponse{
		Type:    "success",
		Content: content,
	}, nil
}

// validateRequired checks that required fields are not zero-valued.
func (gt *GenericTool[TInput, TOutput]) validateRequired(input TInput) error {
	if gt.Schema == nil || gt.Schema.Required == nil {
		return nil
	}

	val := reflect.ValueOf(input)
	typ := val.Type()

	for _, requiredField := range gt.Schema.Required {
		found := false
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			fieldName := strings.Split(field.Tag.Get("json"), ",")[0]
			if fieldName != requiredField {
				continue
			}
			found = true
			if val.Field(i).IsZero() {
				return fmt.Errorf("required field '%s' is missing", requiredField)
			}
			break
		}
		if !found {
			return fmt.Errorf("required field '%s' not found in struct", requiredField)
		}
	}

	return nil
}

// decodeStrict unmarshals JSON arguments, failing on fields the target type
// does not declare.
func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func errorResponse(message string) *aisdk.ToolResponse {
	return &aisdk.ToolResponse{
		Type:    "error",
		Content: []byte(message),
		IsError: true,
	}
}

// NewGenericTool creates a generic tool with a schema reflected from TInput.
func NewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput]) (Tool, error) {
	var input TInput
	if err := mustBeStruct(reflect.TypeOf(input), "input"); err != nil {
		return nil, err
	}
	var output TOutput
	if err := mustBeStruct(reflect.TypeOf(output), "output"); err != nil {
		return nil, err
	}

	reflector := jsonschema.Reflector{}
	schema, err := reflector.Reflect(input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	return &GenericTool[TInput, TOutput]{
		Type:        "function",
		Name:        name,
		Description: description,
		Schema:      &schema,
		Handler:     handler,
	}, nil
}

// MustNewGenericTool creates a new generic tool and panics on error.
func MustNewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput]) Tool {
	tool, err := NewGenericTool(name, description, handler)
	if err != nil {
		panic(fmt.Sprintf("failed to create generic tool: %v", err))
	}
	return tool
}

func mustBeStruct(typ reflect.Type, which string) error {
	if typ == nil {
		return fmt.Errorf("tool %s type must be a struct", which)
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return fmt.Errorf("tool %s type must be a struct, got %s", which, typ.Kind())
	}
	return nil
}

var _ Tool = (*GenericTool[struct{}, struct{}])(nil)
