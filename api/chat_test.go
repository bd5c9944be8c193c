package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daecheol96/funcagent/internal/agent"
	"github.com/daecheol96/funcagent/internal/session"
	"github.com/daecheol96/funcagent/internal/vllm"
)

func TestChat(t *testing.T) {
	f := newFixture(t)
	f.agent.result = agent.Result{Response: "the answer", ToolsUsed: []string{"echo"}}

	w := f.do(http.MethodPost, "/api/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "the answer", resp.Response)
	assert.Equal(t, session.DefaultID, resp.ConversationID)
	assert.Equal(t, []string{"echo"}, resp.ToolsUsed)
	assert.False(t, resp.Partial)
}

func TestChat_ToolsUsedNeverNull(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tools_used":[]`)
}

func TestChat_ExplicitSession(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/chat", `{"message":"hi","session_id":"abc"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "abc", resp.ConversationID)
	assert.NotNil(t, f.sessions.Get("abc"))
}

func TestChat_ClearHistory(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/chat", `{"message":"first"}`)
	require.Equal(t, http.StatusOK, w.Code)

	sess := f.sessions.Get(session.DefaultID)
	require.NotNil(t, sess)
	lenAfterFirst := sess.Conv.Len()

	w = f.do(http.MethodPost, "/api/chat", `{"message":"second","clear_history":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	// system + user + assistant only: the first turn was wiped.
	assert.Equal(t, lenAfterFirst, sess.Conv.Len())
}

func TestChat_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"broken json", `{"message":`},
		{"missing message", `{}`},
		{"blank message", `{"message":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"timeout", vllm.ErrTimeout, http.StatusGatewayTimeout},
		{"endpoint unavailable", vllm.ErrEndpointUnavailable, http.StatusBadGateway},
		{"malformed response", vllm.ErrMalformedResponse, http.StatusBadGateway},
		{"other", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.agent.err = tt.err

			w := f.do(http.MethodPost, "/api/chat", `{"message":"hello"}`)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
