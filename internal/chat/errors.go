package chat

import "errors"

// FallbackReply is the only error text that ever reaches the messaging
// channel. Raw errors stay in the logs.
const FallbackReply = "Sorry, I am unable to process your query at the moment."

// Error taxonomy for a conversation turn. Completion and summarization
// failures are recovered locally by the orchestrator; store failures abort
// the turn.
var (
	ErrCompletionService = errors.New("completion service failed")
	ErrSummarization     = errors.New("summarization failed")
	ErrStore             = errors.New("conversation store failed")
)
