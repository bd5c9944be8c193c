package vllm

import "strings"

// Substrings that mark a rejection as a schema-shape complaint rather than a
// genuine server failure. Matched case-insensitively against the error body.
var (
	fallbackFieldMarkers  = []string{"tools", "tool_choice"}
	fallbackReasonMarkers = []string{"unsupported", "unexpected", "unknown", "extra", "not allowed", "invalid"}
)

// legacyFallbackApplies decides whether a rejected request should be retried
// with the legacy functions-field shape.
//
// Detection rule: the HTTP status is 400 or 422 AND the error body mentions
// "tools" or "tool_choice" together with one of: "unsupported", "unexpected",
// "unknown", "extra", "not allowed", "invalid". Older vLLM builds reject the
// tools field with bodies like `{"error":{"message":"unexpected keyword
// argument 'tools'"}}`, which this rule accepts, while plain 500s and
// validation failures of other fields are left to fail as endpoint errors.
func legacyFallbackApplies(status int, body []byte) bool {
	if status != 400 && status != 422 {
		return false
	}

	text := strings.ToLower(string(body))

	var field bool
	for _, marker := range fallbackFieldMarkers {
		if strings.Contains(text, marker) {
			field = true
			break
		}
	}
	if !field {
		return false
	}

	for _, marker := range fallbackReasonMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
