package vllm

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/daecheol96/funcagent/internal/conversation"
)

// FunctionSchema describes one callable tool to the model. Parameters is a
// JSON-schema object for the tool's arguments.
type FunctionSchema struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// toolSchema wraps a FunctionSchema in the modern tools-field envelope.
type toolSchema struct {
	Type     string         `json:"type"`
	Function FunctionSchema `json:"function"`
}

// chatRequest is the wire body for POST /v1/chat/completions. Exactly one of
// Tools or Functions is populated, depending on the negotiated schema shape.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`

	// Modern tool-calling shape.
	Tools      []toolSchema `json:"tools,omitempty"`
	ToolChoice string       `json:"tool_choice,omitempty"`

	// Legacy function-calling shape.
	Functions    []FunctionSchema `json:"functions,omitempty"`
	FunctionCall string           `json:"function_call,omitempty"`
}

// wireMessage is the request-side message encoding. It diverges from
// conversation.Message because the legacy shape uses role "function" plus a
// function_call field instead of tool messages and tool_calls.
type wireMessage struct {
	Role         string            `json:"role"`
	Content      string            `json:"content"`
	ToolCalls    []wireToolCall    `json:"tool_calls,omitempty"`
	ToolCallID   string            `json:"tool_call_id,omitempty"`
	Name         string            `json:"name,omitempty"`
	FunctionCall *wireFunctionCall `json:"function_call,omitempty"`
}

type wireToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function wireFunctionCall `json:"function"`
}

type wireFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// chatResponse is the wire body of a completion response.
type chatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Error   *apiErr  `json:"error,omitempty"`
}

type choice struct {
	Index        int             `json:"index"`
	Message      responseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// responseMessage carries both the modern tool_calls array and the legacy
// function_call object; whichever the server sent is normalized into
// Response.ToolCalls.
type responseMessage struct {
	Role         string            `json:"role"`
	Content      string            `json:"content"`
	ToolCalls    []wireToolCall    `json:"tool_calls"`
	FunctionCall *wireFunctionCall `json:"function_call"`
}

type apiErr struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// Response is the normalized model answer consumed by the agent loop.
// ToolCalls is empty when the model produced a final text answer.
type Response struct {
	Content      string
	ToolCalls    []conversation.ToolCall
	FinishReason string
}

// Model is one entry of the endpoint's /v1/models listing.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

type modelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}
