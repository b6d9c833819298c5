package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wwwxxch/linebot-genai/common/id"
	"github.com/wwwxxch/linebot-genai/common/llm"
	"github.com/wwwxxch/linebot-genai/common/logger"
	"github.com/wwwxxch/linebot-genai/internal/model"
	"github.com/wwwxxch/linebot-genai/internal/store"
)

// Orchestrator drives one conversation turn through the fixed sequence:
// load state, classify relevance, build prompt, invoke the completion
// service, summarize when the history has grown too long, persist.
type Orchestrator struct {
	store      store.ConversationStore
	client     llm.CompletionClient
	classifier *RelevanceClassifier
	prompts    *PromptBuilder
	summarizer *Summarizer
	locks      threadLocks
}

func NewOrchestrator(
	convStore store.ConversationStore,
	client llm.CompletionClient,
	classifier *RelevanceClassifier,
	prompts *PromptBuilder,
	summarizer *Summarizer,
) *Orchestrator {
	return &Orchestrator{
		store:      convStore,
		client:     client,
		classifier: classifier,
		prompts:    prompts,
		summarizer: summarizer,
	}
}

// HandleMessage runs one turn for a thread and returns the assistant reply.
// Completion failures are recovered here: the caller gets FallbackReply and
// the turn is discarded, so no user message is left in history without its
// paired reply. Store failures are returned to the caller as errors.
//
// Turns for the same thread are serialized; racing webhook deliveries
// cannot interleave their read-modify-write cycles.
func (o *Orchestrator) HandleMessage(ctx context.Context, threadID, text string) (string, error) {
	lock := o.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()

	sc := logger.StartSpan(ctx, "chat.handle_message")
	defer sc.End()
	ctx = logger.WithLogFields(sc.Context(), logger.LogFields{
		ThreadID:  logger.Ptr(threadID),
		Component: "chat.orchestrator",
	})

	state, err := o.loadOrCreate(ctx, threadID)
	if err != nil {
		sc.RecordError(err)
		return "", err
	}

	state = state.Clone()
	state.Messages = append(state.Messages, model.Message{
		ID:      id.New(),
		Role:    model.RoleUser,
		Content: text,
	})

	// Derived fresh each turn, never persisted.
	isSpecific := o.classifier.Classify(text)

	system, messages := o.prompts.Build(state, isSpecific)

	reply, err := o.client.Complete(ctx, system, messages)
	if err != nil {
		slog.ErrorContext(ctx, "completion service failed, replying with fallback",
			"error", fmt.Errorf("%w: %v", ErrCompletionService, err))
		return FallbackReply, nil
	}

	state.Messages = append(state.Messages, model.Message{
		ID:      id.New(),
		Role:    model.RoleAssistant,
		Content: reply,
	})

	result, sumErr := o.summarizer.MaybeSummarize(ctx, state)
	if sumErr != nil {
		// Summarization is abandoned for this turn; the reply stands and
		// the unpruned history is persisted as-is.
		slog.WarnContext(ctx, "summarization abandoned", "error", sumErr)
	}

	if err := o.persist(ctx, state, result); err != nil {
		sc.RecordError(err)
		return "", err
	}

	slog.InfoContext(ctx, "turn completed",
		"is_specific", isSpecific,
		"history_len", len(result.State.Messages),
		"summarized", result.Triggered)

	return reply, nil
}

func (o *Orchestrator) loadOrCreate(ctx context.Context, threadID string) (*model.ConversationState, error) {
	state, err := o.store.Load(ctx, threadID)
	if errors.Is(err, store.ErrNotFound) {
		return &model.ConversationState{ThreadID: threadID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return state, nil
}

// persist commits the turn. When summarization triggered, the full state is
// saved with the new summary and the pruned messages are then deleted
// through the store's removal primitive.
func (o *Orchestrator) persist(ctx context.Context, full *model.ConversationState, result SummarizeResult) error {
	toSave := full
	if result.Triggered {
		toSave = full.Clone()
		toSave.Summary = result.State.Summary
	}

	if err := o.store.Save(ctx, toSave); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	if result.Triggered {
		if err := o.store.RemoveMessages(ctx, full.ThreadID, result.PruneIDs); err != nil {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
	}

	return nil
}

// threadLocks hands out one mutex per thread ID so concurrent turns for the
// same conversation are serialized within this process.
type threadLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (t *threadLocks) get(threadID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.locks == nil {
		t.locks = make(map[string]*sync.Mutex)
	}
	if lock, ok := t.locks[threadID]; ok {
		return lock
	}

	lock := &sync.Mutex{}
	t.locks[threadID] = lock
	return lock
}
