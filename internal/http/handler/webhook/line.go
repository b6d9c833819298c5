package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wwwxxch/linebot-genai/common/logger"
	"github.com/wwwxxch/linebot-genai/internal/chat"
	"github.com/wwwxxch/linebot-genai/internal/http/dto"
	"github.com/wwwxxch/linebot-genai/internal/line"
)

// ChatService runs one conversation turn and returns the assistant reply.
type ChatService interface {
	HandleMessage(ctx context.Context, threadID, text string) (string, error)
}

// LineWebhookHandler verifies, parses, and dispatches LINE webhook events.
type LineWebhookHandler struct {
	channelSecret string
	chatService   ChatService
	messenger     line.Messenger
}

func NewLineWebhookHandler(channelSecret string, chatService ChatService, messenger line.Messenger) *LineWebhookHandler {
	return &LineWebhookHandler{
		channelSecret: channelSecret,
		chatService:   chatService,
		messenger:     messenger,
	}
}

// HandleEvents is the POST /webhook endpoint. The signature is verified
// against the raw body before anything is parsed. LINE expects a 200 once
// the events are accepted; per-event processing failures are logged and
// answered with the fallback reply, never surfaced as webhook errors.
func (h *LineWebhookHandler) HandleEvents(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	signature := c.GetHeader("X-Line-Signature")
	if !line.ValidateSignature(h.channelSecret, body, signature) {
		slog.WarnContext(ctx, "webhook signature rejected", "remote_addr", c.ClientIP())
		respondError(c, http.StatusBadRequest,
			"Invalid signature. Please check your channel access token or channel secret.")
		return
	}

	var payload dto.LineWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	for i := range payload.Events {
		h.handleEvent(ctx, &payload.Events[i])
	}

	c.String(http.StatusOK, "OK")
}

// handleEvent processes one event. A turn qualifies when it is a text
// message from a direct chat, or from a group chat that mentions the bot.
func (h *LineWebhookHandler) handleEvent(ctx context.Context, event *dto.LineEvent) {
	if !event.IsTextMessage() {
		return
	}

	qualifies := event.Source.Type == "user" ||
		(event.Source.Type == "group" && event.MentionsSelf())
	if !qualifies {
		return
	}

	threadID := event.Source.UserID
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ThreadID:   logger.Ptr(threadID),
		ReplyToken: logger.Ptr(event.ReplyToken),
		EventType:  logger.Ptr(event.Type),
		Component:  "http.webhook.line",
	})

	slog.InfoContext(ctx, "handling inbound message",
		"source_type", event.Source.Type,
		"text", logger.Truncate(event.Message.Text, 200))

	reply, err := h.chatService.HandleMessage(ctx, threadID, event.Message.Text)
	if err != nil {
		slog.ErrorContext(ctx, "turn failed", "error", err)
		reply = chat.FallbackReply
	}

	if err := h.messenger.Reply(ctx, event.ReplyToken, reply); err != nil {
		slog.ErrorContext(ctx, "failed to deliver reply", "error", err)
	}
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
