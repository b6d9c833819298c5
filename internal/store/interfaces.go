package store

import (
	"context"
	"errors"

	"github.com/wwwxxch/linebot-genai/internal/model"
)

// ErrNotFound is returned when no checkpoint exists for a thread
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned when a save races with another writer
// for the same thread. The caller should reload and retry the turn.
var ErrVersionConflict = errors.New("version conflict")

// ConversationStore persists conversation checkpoints keyed by thread ID.
type ConversationStore interface {
	// Load returns the checkpoint for the thread, or ErrNotFound.
	Load(ctx context.Context, threadID string) (*model.ConversationState, error)

	// Save writes the checkpoint. The state's Version must match the stored
	// one (0 for a new thread); on success the stored version is incremented.
	Save(ctx context.Context, state *model.ConversationState) error

	// RemoveMessages deletes the given messages from the stored checkpoint.
	// Used by the summarization commit to prune history by message ID.
	RemoveMessages(ctx context.Context, threadID string, messageIDs []int64) error
}
