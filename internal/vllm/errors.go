package vllm

import "errors"

// Sentinel errors for model-client failures. The agent loop surfaces them to
// the API layer, which maps them to HTTP status codes; match with errors.Is().
var (
	// ErrEndpointUnavailable indicates the endpoint could not be reached or
	// answered with a non-retriable server error (after the one schema-shape
	// fallback attempt, if it applied).
	ErrEndpointUnavailable = errors.New("vllm endpoint unavailable")

	// ErrTimeout indicates the configured per-request deadline was exceeded.
	ErrTimeout = errors.New("vllm request timed out")

	// ErrMalformedResponse indicates the endpoint answered 200 but the body
	// could not be parsed into a usable completion.
	ErrMalformedResponse = errors.New("malformed vllm response")
)
