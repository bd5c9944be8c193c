package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/daecheol96/funcagent/internal/log"
	"github.com/daecheol96/funcagent/internal/session"
	"github.com/daecheol96/funcagent/internal/vllm"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message      string `json:"message"`
	SessionID    string `json:"session_id,omitempty"`
	ClearHistory bool   `json:"clear_history,omitempty"`
}

// ChatResponse is the body of a successful chat turn.
type ChatResponse struct {
	Response       string   `json:"response"`
	ConversationID string   `json:"conversation_id"`
	ToolsUsed      []string `json:"tools_used"`
	Partial        bool     `json:"partial,omitempty"`
}

type chatHandler struct {
	agent    ChatAgent
	sessions *session.Store
	logger   log.Logger
}

// send drives one agent turn. The session's turn lock is held for the whole
// turn so concurrent requests against the same session run one at a time.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = session.DefaultID
	}
	sess := h.sessions.GetOrCreate(sessionID)

	sess.LockTurn()
	defer sess.UnlockTurn()

	if req.ClearHistory {
		sess.Conv.Reset()
		h.logger.Info("conversation cleared", "session_id", sess.ID)
	}

	start := time.Now()
	res, err := h.agent.Chat(r.Context(), sess.Conv, req.Message)
	if err != nil {
		h.writeAgentError(w, r, err)
		return
	}

	h.logger.Info("chat turn completed",
		"session_id", sess.ID,
		"tools_used", len(res.ToolsUsed),
		"partial", res.Partial,
		"duration", time.Since(start),
		"request_id", requestIDFromContext(r.Context()),
	)

	toolsUsed := res.ToolsUsed
	if toolsUsed == nil {
		toolsUsed = []string{}
	}
	writeJSON(w, http.StatusOK, ChatResponse{
		Response:       res.Response,
		ConversationID: sess.ID,
		ToolsUsed:      toolsUsed,
		Partial:        res.Partial,
	})
}

// writeAgentError maps agent failures onto HTTP statuses: timeouts become
// 504, endpoint and protocol failures become 502, anything else 500.
func (h *chatHandler) writeAgentError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("chat turn failed",
		"error", err,
		"request_id", requestIDFromContext(r.Context()),
	)

	switch {
	case errors.Is(err, vllm.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "model_timeout", "the model did not answer in time")
	case errors.Is(err, vllm.ErrEndpointUnavailable), errors.Is(err, vllm.ErrMalformedResponse):
		writeError(w, http.StatusBadGateway, "model_unavailable", "the inference endpoint is unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "chat_failed", "chat turn failed")
	}
}
