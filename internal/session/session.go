// Package session owns the per-session conversation state. Sessions are
// in-memory only and keyed by caller-supplied or generated UUIDs; each one
// carries a turn lock so concurrent requests against the same session are
// serialized into whole turns.
package session

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/daecheol96/funcagent/internal/conversation"
)

// DefaultID is the session used when a request names none.
const DefaultID = "default"

// Session is one conversation plus its turn lock.
type Session struct {
	ID   string
	Conv *conversation.Conversation

	// turnMu serializes agent turns. Held for the whole turn, model calls
	// included, so interleaved requests cannot corrupt the alternation of
	// the history.
	turnMu sync.Mutex
}

// LockTurn acquires the session's turn lock.
func (s *Session) LockTurn() { s.turnMu.Lock() }

// UnlockTurn releases the session's turn lock.
func (s *Session) UnlockTurn() { s.turnMu.Unlock() }

// Store maps session ids to live sessions. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	systemPrompt string
}

// NewStore creates an empty store. New sessions seed their conversation with
// systemPrompt.
func NewStore(systemPrompt string) *Store {
	return &Store{
		sessions:     make(map[string]*Session),
		systemPrompt: systemPrompt,
	}
}

// GetOrCreate returns the session for id, creating it on first use. An empty
// id allocates a fresh UUID session.
func (st *Store) GetOrCreate(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := &Session{
		ID:   id,
		Conv: conversation.New(st.systemPrompt),
	}
	st.sessions[id] = s
	return s
}

// Get returns the session for id, or nil when it does not exist.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

// Delete removes the session for id. Deleting a missing session is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// IDs returns the live session ids, sorted.
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
