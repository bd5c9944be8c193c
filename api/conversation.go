package api

import (
	"net/http"

	"github.com/daecheol96/funcagent/internal/conversation"
	"github.com/daecheol96/funcagent/internal/log"
	"github.com/daecheol96/funcagent/internal/session"
)

// ConversationResponse is the body of GET /api/conversation.
type ConversationResponse struct {
	SessionID string                 `json:"session_id"`
	Messages  []conversation.Message `json:"messages"`
	Length    int                    `json:"length"`
}

type conversationHandler struct {
	sessions *session.Store
	logger   log.Logger
}

func sessionIDFromQuery(r *http.Request) string {
	if id := r.URL.Query().Get("session"); id != "" {
		return id
	}
	return session.DefaultID
}

// get returns the session's history. The default conversation always exists,
// seeded with the system prompt; named sessions exist only once they have
// chatted.
func (h *conversationHandler) get(w http.ResponseWriter, r *http.Request) {
	id := sessionIDFromQuery(r)
	sess := h.sessions.Get(id)
	if sess == nil {
		if id != session.DefaultID {
			writeError(w, http.StatusNotFound, "session_not_found", "no conversation for session "+id)
			return
		}
		sess = h.sessions.GetOrCreate(id)
	}

	msgs := sess.Conv.History()
	writeJSON(w, http.StatusOK, ConversationResponse{
		SessionID: sess.ID,
		Messages:  msgs,
		Length:    len(msgs),
	})
}

// reset clears the session's history back to the system prompt. Resetting an
// unknown session is a no-op success, matching DELETE semantics.
func (h *conversationHandler) reset(w http.ResponseWriter, r *http.Request) {
	id := sessionIDFromQuery(r)
	if sess := h.sessions.Get(id); sess != nil {
		sess.LockTurn()
		sess.Conv.Reset()
		sess.UnlockTurn()
		h.logger.Info("conversation reset", "session_id", id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "session_id": id})
}
