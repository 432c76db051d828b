package aisdk

import (
	"context"
)

// ModelClient represents a client bound to a specific model.
type ModelClient interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req *ChatCompletionRequest) (StreamInterface, error)
	GetModelInfo() *ModelInfo
}
