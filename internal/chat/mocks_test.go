package chat_test

import (
	"context"

	"github.com/wwwxxch/linebot-genai/common/llm"
	"github.com/wwwxxch/linebot-genai/internal/model"
)

type completionCall struct {
	system   string
	messages []llm.Message
}

type mockCompletionClient struct {
	completeFn func(ctx context.Context, system string, messages []llm.Message) (string, error)
	calls      []completionCall
}

func (m *mockCompletionClient) Complete(ctx context.Context, system string, messages []llm.Message) (string, error) {
	m.calls = append(m.calls, completionCall{system: system, messages: messages})
	if m.completeFn != nil {
		return m.completeFn(ctx, system, messages)
	}
	return "ok", nil
}

func (m *mockCompletionClient) Model() string {
	return "mock-model"
}

type mockConversationStore struct {
	loadFn   func(ctx context.Context, threadID string) (*model.ConversationState, error)
	saveFn   func(ctx context.Context, state *model.ConversationState) error
	removeFn func(ctx context.Context, threadID string, messageIDs []int64) error
}

func (m *mockConversationStore) Load(ctx context.Context, threadID string) (*model.ConversationState, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, threadID)
	}
	return nil, nil
}

func (m *mockConversationStore) Save(ctx context.Context, state *model.ConversationState) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, state)
	}
	return nil
}

func (m *mockConversationStore) RemoveMessages(ctx context.Context, threadID string, messageIDs []int64) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, threadID, messageIDs)
	}
	return nil
}
