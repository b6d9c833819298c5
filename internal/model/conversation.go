package model

// Message roles within a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single turn entry in a conversation history.
// The ID is unique within the conversation and is the handle used
// when pruning messages after summarization.
type Message struct {
	ID      int64  `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationState is the persisted checkpoint for one thread.
// ThreadID is the partition key; Version supports optimistic
// concurrency in the store.
type ConversationState struct {
	ThreadID string    `json:"thread_id"`
	Messages []Message `json:"messages"`
	Summary  string    `json:"summary"`
	Version  int64     `json:"version"`
}

// Clone returns a deep copy so pipeline steps can produce a new state
// without mutating the one they were given.
func (s *ConversationState) Clone() *ConversationState {
	out := &ConversationState{
		ThreadID: s.ThreadID,
		Summary:  s.Summary,
		Version:  s.Version,
	}
	if len(s.Messages) > 0 {
		out.Messages = make([]Message, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	return out
}

// LastMessage returns the most recent message, or nil for an empty history.
func (s *ConversationState) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}
