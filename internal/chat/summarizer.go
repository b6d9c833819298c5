package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wwwxxch/linebot-genai/common/llm"
	"github.com/wwwxxch/linebot-genai/internal/model"
)

// summarizeThreshold is the strict message-count bound: summarization runs
// only when the post-append history is longer than this.
const summarizeThreshold = 6

// keepRecentMessages is how many raw messages survive a pruning pass.
const keepRecentMessages = 2

// Summarizer condenses older history into a rolling summary once the
// message count crosses the threshold, so prompt size stays bounded.
type Summarizer struct {
	client llm.CompletionClient
}

func NewSummarizer(client llm.CompletionClient) *Summarizer {
	return &Summarizer{client: client}
}

// SummarizeResult is the outcome of a summarization pass. When Triggered,
// State carries the new summary with only the most recent messages, and
// PruneIDs lists the messages the store must delete to match.
type SummarizeResult struct {
	State     *model.ConversationState
	PruneIDs  []int64
	Triggered bool
}

// MaybeSummarize condenses the conversation when it has grown past the
// threshold. Below the threshold it is a no-op returning the state
// unchanged. On completion failure the pass is abandoned: the prior summary
// and messages are left exactly as they were.
func (s *Summarizer) MaybeSummarize(ctx context.Context, state *model.ConversationState) (SummarizeResult, error) {
	if len(state.Messages) <= summarizeThreshold {
		return SummarizeResult{State: state}, nil
	}

	messages := make([]llm.Message, 0, len(state.Messages)+1)
	for _, msg := range state.Messages {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{
		Role:    model.RoleUser,
		Content: s.instruction(state.Summary),
	})

	summary, err := s.client.Complete(ctx, "", messages)
	if err != nil {
		return SummarizeResult{State: state}, fmt.Errorf("%w: %v", ErrSummarization, err)
	}

	cut := len(state.Messages) - keepRecentMessages
	pruneIDs := make([]int64, 0, cut)
	for _, msg := range state.Messages[:cut] {
		pruneIDs = append(pruneIDs, msg.ID)
	}

	next := state.Clone()
	next.Summary = summary
	next.Messages = next.Messages[cut:]

	slog.InfoContext(ctx, "conversation summarized",
		"pruned", len(pruneIDs),
		"kept", len(next.Messages))

	return SummarizeResult{State: next, PruneIDs: pruneIDs, Triggered: true}, nil
}

// instruction builds the summarization request: extend an existing summary
// or create a fresh one, in both cases ignoring non-cat content.
func (s *Summarizer) instruction(summary string) string {
	if summary != "" {
		return fmt.Sprintf("This is summary of the conversation to date: %s \n"+
			"Extend the summary by taking into account the new messages above "+
			"and ignore the content that is not related to cat or cat care:", summary)
	}
	return "Create a summary of the conversation above, " +
		"ignoring the content that is not related to cat or cat health care"
}
