// Package toolsutil holds helpers shared by the agent tool executors.
package toolsutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/villaops/villaops/src/agent"
	"github.com/villaops/villaops/src/aisdk"
)

// Package-level logger for tools
var logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
	Level: slog.LevelError, // Default to only showing errors
}))

// SetLogger allows setting a custom logger for the tools package
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// GetLogger returns the tools logger
func GetLogger() *slog.Logger {
	return logger
}

// RequireIdentity extracts the caller identity from the run context.
func RequireIdentity(ctx context.Context) (agent.Identity, error) {
	id, ok := agent.IdentityFrom(ctx)
	if !ok {
		return agent.Identity{}, fmt.Errorf("no caller identity on context")
	}
	return id, nil
}

// DecodeStrict unmarshals tool arguments, rejecting fields the input struct
// does not declare.
func DecodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// SuccessResponse marshals v as a successful tool response.
func SuccessResponse(v interface{}) (*aisdk.ToolResponse, error) {
	content, err := json.Marshal(v)
	if err != nil {
		return ErrorResponse(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return &aisdk.ToolResponse{Type: "success", Content: content}, nil
}

// ErrorResponse builds an error tool response the model can read and react
// to. Tool failures are conversation content, not loop failures.
func ErrorResponse(message string) *aisdk.ToolResponse {
	return &aisdk.ToolResponse{
		Type:    "error",
		Content: []byte(message),
		IsError: true,
	}
}
