// Package conversation holds the in-memory message log for a single chat
// session.
//
// A Conversation is owned by exactly one session. Appends are serialized with
// a mutex so a surrounding system that allows concurrent turns cannot corrupt
// the log; ordering within a turn is the agent loop's responsibility.
package conversation

import "sync"

// Role identifies the author of a message.
type Role string

// Message roles used on the chat-completions wire.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by an assistant message.
// Arguments is the raw JSON object string produced by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry in the conversation log. Messages are immutable once
// appended. A tool message must reference the tool-call ID of a preceding
// assistant message via ToolCallID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// Conversation is an ordered, reset-capable message log.
type Conversation struct {
	mu           sync.Mutex
	systemPrompt string
	messages     []Message
}

// New creates a conversation seeded with the system prompt. An empty prompt
// starts the log empty.
func New(systemPrompt string) *Conversation {
	c := &Conversation{systemPrompt: systemPrompt}
	c.seed()
	return c
}

// seed re-installs the system prompt. Caller must hold mu or have exclusive
// access (construction).
func (c *Conversation) seed() {
	c.messages = c.messages[:0]
	if c.systemPrompt != "" {
		c.messages = append(c.messages, Message{Role: RoleSystem, Content: c.systemPrompt})
	}
}

// Append adds messages to the end of the log in the given order.
func (c *Conversation) Append(msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msgs...)
}

// History returns a copy of the log in insertion order. The copy is safe to
// iterate repeatedly and is not affected by later appends or resets.
func (c *Conversation) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages currently in the log.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Reset clears all turns and re-seeds the system prompt.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seed()
}
