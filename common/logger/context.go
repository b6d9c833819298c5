package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a
// context. Fields flow through context enrichment, so business context
// (thread_id, reply_token, etc.) shows up in every log statement without
// being threaded through call sites by hand.
type LogFields struct {
	ThreadID   *string // Conversation thread (LINE user/group id)
	ReplyToken *string // LINE reply token for the in-flight event
	EventType  *string // Webhook event type (e.g., "message")
	MessageID  *int64  // Snowflake ID of the message being processed
	Component  string  // Component name (e.g., "chat.orchestrator")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.ThreadID != nil {
		result.ThreadID = new.ThreadID
	}
	if new.ReplyToken != nil {
		result.ReplyToken = new.ReplyToken
	}
	if new.EventType != nil {
		result.EventType = new.EventType
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{ThreadID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like message bodies.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
