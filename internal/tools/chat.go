package tools

import (
	"context"
	"fmt"
	"strings"
)

// ChatCompleter is the slice of the inference client the vllm_chat tool
// needs.
type ChatCompleter interface {
	CompleteOnce(ctx context.Context, message string, maxTokens int) (string, error)
}

// VLLMChatInput is the argument object for the vllm_chat tool.
type VLLMChatInput struct {
	Message   string `json:"message" jsonschema:"The message to send"`
	MaxTokens int    `json:"max_tokens,omitempty" jsonschema:"Maximum answer length in tokens"`
}

// ChatTool builds the vllm_chat tool: a one-off completion against the
// inference endpoint, outside the agent's own conversation and without tool
// schemas.
func ChatTool(completer ChatCompleter) Tool {
	return New("vllm_chat",
		"Send a standalone chat message to the inference endpoint and return its answer.",
		func(ctx context.Context, in VLLMChatInput) (string, error) {
			if strings.TrimSpace(in.Message) == "" {
				return "", fmt.Errorf("message is required")
			}
			out, err := completer.CompleteOnce(ctx, in.Message, in.MaxTokens)
			if err != nil {
				return "", fmt.Errorf("chat completion: %w", err)
			}
			return out, nil
		})
}
