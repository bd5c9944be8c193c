// Package vllm is the HTTP client for an OpenAI-compatible vLLM inference
// endpoint.
//
// The client speaks the modern tools-field shape by default. Some vLLM builds
// predate it and only accept the legacy functions field; when the endpoint
// rejects a tools request with a schema-shape complaint (see fallback.go) the
// client retries that request once with the legacy shape and then sticks to
// it for its lifetime. The agent loop never sees the difference: both shapes
// normalize into the same Response.
package vllm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/daecheol96/funcagent/internal/conversation"
	"github.com/daecheol96/funcagent/internal/log"
)

const (
	completionsPath = "/v1/chat/completions"
	modelsPath      = "/v1/models"

	// maxErrorBodyBytes bounds how much of an error body is read for the
	// fallback heuristic and error messages.
	maxErrorBodyBytes = 8 * 1024
)

// Config carries the client construction parameters, typically sourced from
// internal/config.
type Config struct {
	BaseURL     string
	Model       string
	APIKey      string // optional bearer token, empty = no Authorization header
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration

	// HTTPClient overrides the transport; nil uses a default client. The
	// per-request timeout comes from Timeout, not from the http.Client.
	HTTPClient *http.Client
}

// Client issues chat-completion and model-listing requests.
// Safe for concurrent use.
type Client struct {
	baseURL     string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	httpClient  *http.Client
	logger      log.Logger

	// legacy flips to true once the endpoint has rejected the tools shape;
	// from then on requests are built with the functions shape directly.
	legacy atomic.Bool
}

// New creates a Client. cfg.BaseURL and cfg.Model must already be validated.
func New(cfg Config, logger log.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = log.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string {
	return c.model
}

// UsesLegacyFunctions reports whether the client has negotiated down to the
// legacy functions shape.
func (c *Client) UsesLegacyFunctions() bool {
	return c.legacy.Load()
}

// Complete sends the conversation plus tool schemas and returns the
// normalized model answer.
//
// Failure modes: ErrTimeout when the per-request deadline expires,
// ErrMalformedResponse when a 200 body cannot be decoded, and
// ErrEndpointUnavailable for everything else. The only retry is the single
// tools→functions fallback; transient network errors are not retried.
func (c *Client) Complete(ctx context.Context, msgs []conversation.Message, tools []FunctionSchema) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	legacy := c.legacy.Load()
	resp, status, body, err := c.postCompletion(ctx, msgs, tools, legacy)
	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}

	// Non-200. Check for the one permitted fallback retry.
	if !legacy && len(tools) > 0 && legacyFallbackApplies(status, body) {
		c.logger.Warn("endpoint rejected tools field, retrying with legacy functions shape",
			"status", status)
		c.legacy.Store(true)

		resp, status, body, err = c.postCompletion(ctx, msgs, tools, true)
		if err != nil {
			return nil, err
		}
		if resp != nil {
			return resp, nil
		}
	}

	return nil, fmt.Errorf("%w: status %d: %s", ErrEndpointUnavailable, status, truncate(body, 200))
}

// CompleteOnce sends a single standalone user message, outside any
// conversation and without tool schemas, and returns the text answer.
// maxTokens overrides the configured cap when positive. Backs the vllm_chat
// tool.
func (c *Client) CompleteOnce(ctx context.Context, message string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	reqBody := chatRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
		Messages: []wireMessage{{
			Role:    string(conversation.RoleUser),
			Content: message,
		}},
	}

	resp, status, body, err := c.doCompletion(ctx, reqBody, c.legacy.Load())
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("%w: status %d: %s", ErrEndpointUnavailable, status, truncate(body, 200))
	}
	return resp.Content, nil
}

// postCompletion performs one completion request. It returns a non-nil
// Response on success, or the status and error body on a non-200 answer so
// the caller can run the fallback heuristic.
func (c *Client) postCompletion(ctx context.Context, msgs []conversation.Message, tools []FunctionSchema, legacy bool) (*Response, int, []byte, error) {
	return c.doCompletion(ctx, c.buildRequest(msgs, tools, legacy), legacy)
}

func (c *Client) doCompletion(ctx context.Context, reqBody chatRequest, legacy bool) (*Response, int, []byte, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, 0, nil, fmt.Errorf("%w: %v", ErrEndpointUnavailable, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		c.logger.Debug("completion request rejected",
			"status", res.StatusCode,
			"legacy", legacy,
			"duration", time.Since(start))
		return nil, res.StatusCode, body, nil
	}

	var decoded chatResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, 0, nil, fmt.Errorf("%w: decoding body: %v", ErrMalformedResponse, err)
	}
	if len(decoded.Choices) == 0 {
		return nil, 0, nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	resp := normalizeResponse(decoded.Choices[0])
	c.logger.Debug("completion request succeeded",
		"tool_calls", len(resp.ToolCalls),
		"legacy", legacy,
		"duration", time.Since(start))
	return resp, res.StatusCode, nil, nil
}

// buildRequest assembles the wire body in the modern or legacy shape.
func (c *Client) buildRequest(msgs []conversation.Message, tools []FunctionSchema, legacy bool) chatRequest {
	req := chatRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	if legacy {
		req.Messages = legacyMessages(msgs)
		if len(tools) > 0 {
			req.Functions = tools
			req.FunctionCall = "auto"
		}
		return req
	}

	req.Messages = modernMessages(msgs)
	if len(tools) > 0 {
		req.Tools = make([]toolSchema, len(tools))
		for i, t := range tools {
			req.Tools[i] = toolSchema{Type: "function", Function: t}
		}
		req.ToolChoice = "auto"
	}
	return req
}

// modernMessages maps the conversation log onto the tools-era wire shape.
func modernMessages(msgs []conversation.Message) []wireMessage {
	out := make([]wireMessage, len(msgs))
	for i, m := range msgs {
		wm := wireMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		for _, tc := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:       tc.ID,
				Type:     "function",
				Function: wireFunctionCall{Name: tc.Name, Arguments: tc.Arguments},
			})
		}
		out[i] = wm
	}
	return out
}

// legacyMessages maps the conversation log onto the functions-era wire shape:
// assistant tool calls become a function_call object (the legacy protocol
// carries at most one) and tool results become role "function" messages.
func legacyMessages(msgs []conversation.Message) []wireMessage {
	out := make([]wireMessage, len(msgs))
	for i, m := range msgs {
		wm := wireMessage{Role: string(m.Role), Content: m.Content}
		switch m.Role {
		case conversation.RoleAssistant:
			if len(m.ToolCalls) > 0 {
				wm.FunctionCall = &wireFunctionCall{
					Name:      m.ToolCalls[0].Name,
					Arguments: m.ToolCalls[0].Arguments,
				}
			}
		case conversation.RoleTool:
			wm.Role = "function"
			wm.Name = m.Name
		}
		out[i] = wm
	}
	return out
}

// normalizeResponse folds both response shapes into one Response. Legacy
// function_call answers carry no call ID, so one is synthesized to keep the
// conversation invariant (tool messages reference an assistant call ID).
func normalizeResponse(ch choice) *Response {
	resp := &Response{
		Content:      ch.Message.Content,
		FinishReason: ch.FinishReason,
	}

	for i, tc := range ch.Message.ToolCalls {
		id := tc.ID
		if id == "" {
			id = "call_" + strconv.Itoa(i)
		}
		resp.ToolCalls = append(resp.ToolCalls, conversation.ToolCall{
			ID:        id,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	if len(resp.ToolCalls) == 0 && ch.Message.FunctionCall != nil {
		resp.ToolCalls = append(resp.ToolCalls, conversation.ToolCall{
			ID:        "call_0",
			Name:      ch.Message.FunctionCall.Name,
			Arguments: ch.Message.FunctionCall.Arguments,
		})
	}

	return resp
}

// Models lists the models served by the endpoint. Used by the health endpoint
// as a connectivity probe and exposed as the vllm_models tool.
func (c *Client) Models(ctx context.Context) ([]Model, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrEndpointUnavailable, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("%w: status %d: %s", ErrEndpointUnavailable, res.StatusCode, truncate(body, 200))
	}

	var list modelList
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: decoding body: %v", ErrMalformedResponse, err)
	}
	return list.Data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
