package chat_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wwwxxch/linebot-genai/common/id"
	"github.com/wwwxxch/linebot-genai/common/llm"
	"github.com/wwwxxch/linebot-genai/internal/chat"
	"github.com/wwwxxch/linebot-genai/internal/model"
	"github.com/wwwxxch/linebot-genai/internal/profile"
	"github.com/wwwxxch/linebot-genai/internal/store"
)

var _ = Describe("Orchestrator", func() {
	var (
		ctx       context.Context
		client    *mockCompletionClient
		convStore store.ConversationStore
	)

	cat := &profile.CatProfile{
		Name:      "花花",
		BirthYear: 2018,
		Sex:       "male",
		Breed:     "米克斯",
		Marker:    "花花",
	}

	newOrchestrator := func(s store.ConversationStore) *chat.Orchestrator {
		return chat.NewOrchestrator(
			s,
			client,
			chat.NewRelevanceClassifier(cat.Marker),
			chat.NewPromptBuilder(cat),
			chat.NewSummarizer(client),
		)
	}

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockCompletionClient{}
		convStore = store.NewMemoryStore()

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("first message on a new thread without the marker", func() {
		It("uses the generic prompt and persists user and assistant messages", func() {
			client.completeFn = func(_ context.Context, _ string, _ []llm.Message) (string, error) {
				return "貓咪的名字要問主人喔", nil
			}

			orch := newOrchestrator(convStore)
			reply, err := orch.HandleMessage(ctx, "U_alice", "我的貓叫什麼名字")

			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal("貓咪的名字要問主人喔"))

			Expect(client.calls).To(HaveLen(1))
			Expect(client.calls[0].system).NotTo(ContainSubstring("花花"))

			state, err := convStore.Load(ctx, "U_alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Messages).To(HaveLen(2))
			Expect(state.Messages[0].Role).To(Equal(model.RoleUser))
			Expect(state.Messages[1].Role).To(Equal(model.RoleAssistant))
			Expect(state.Summary).To(BeEmpty())
		})
	})

	Context("short conversations", func() {
		It("grows the history by exactly 2 per turn and never summarizes", func() {
			orch := newOrchestrator(convStore)

			for turn := 1; turn <= 3; turn++ {
				_, err := orch.HandleMessage(ctx, "U_bob", fmt.Sprintf("問題 %d", turn))
				Expect(err).NotTo(HaveOccurred())

				state, err := convStore.Load(ctx, "U_bob")
				Expect(err).NotTo(HaveOccurred())
				Expect(state.Messages).To(HaveLen(turn * 2))
				Expect(state.Summary).To(BeEmpty())
			}
		})
	})

	Context("a marker message that pushes the history past the threshold", func() {
		It("uses the specific prompt, summarizes, and prunes to 2 messages", func() {
			seed := &model.ConversationState{ThreadID: "U_carol", Messages: historyOfLength(5)}
			Expect(convStore.Save(ctx, seed)).To(Succeed())

			client.completeFn = func(_ context.Context, system string, msgs []llm.Message) (string, error) {
				// Second call is the summarization request (no system prompt).
				if system == "" {
					return "聊了花花的健康", nil
				}
				return "花花是 2018 年出生的米克斯", nil
			}

			orch := newOrchestrator(convStore)
			reply, err := orch.HandleMessage(ctx, "U_carol", "花花幾歲了")

			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal("花花是 2018 年出生的米克斯"))

			Expect(client.calls).To(HaveLen(2))
			Expect(client.calls[0].system).To(ContainSubstring("花花"))
			Expect(client.calls[1].system).To(BeEmpty())

			state, err := convStore.Load(ctx, "U_carol")
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Messages).To(HaveLen(2))
			Expect(state.Summary).To(Equal("聊了花花的健康"))
			Expect(state.Messages[0].Role).To(Equal(model.RoleUser))
			Expect(state.Messages[0].Content).To(Equal("花花幾歲了"))
			Expect(state.Messages[1].Role).To(Equal(model.RoleAssistant))
		})
	})

	Context("when the completion service fails on the main call", func() {
		It("returns the fallback reply and discards the turn", func() {
			client.completeFn = func(_ context.Context, _ string, _ []llm.Message) (string, error) {
				return "", errors.New("timeout")
			}

			orch := newOrchestrator(convStore)
			reply, err := orch.HandleMessage(ctx, "U_dave", "花花好嗎")

			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal(chat.FallbackReply))

			_, err = convStore.Load(ctx, "U_dave")
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Context("when summarization fails after a successful reply", func() {
		It("keeps the reply and persists the unpruned history", func() {
			seed := &model.ConversationState{ThreadID: "U_erin", Messages: historyOfLength(5)}
			Expect(convStore.Save(ctx, seed)).To(Succeed())

			client.completeFn = func(_ context.Context, system string, _ []llm.Message) (string, error) {
				if system == "" {
					return "", errors.New("quota exceeded")
				}
				return "好的", nil
			}

			orch := newOrchestrator(convStore)
			reply, err := orch.HandleMessage(ctx, "U_erin", "再問一題")

			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal("好的"))

			state, err := convStore.Load(ctx, "U_erin")
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Messages).To(HaveLen(7))
			Expect(state.Summary).To(BeEmpty())
		})
	})

	Context("when the store fails", func() {
		It("surfaces a load failure as a turn error", func() {
			failing := &mockConversationStore{
				loadFn: func(_ context.Context, _ string) (*model.ConversationState, error) {
					return nil, errors.New("connection refused")
				},
			}

			orch := newOrchestrator(failing)
			_, err := orch.HandleMessage(ctx, "U_frank", "hi")

			Expect(err).To(MatchError(chat.ErrStore))
			Expect(client.calls).To(BeEmpty())
		})

		It("surfaces a save failure as a turn error", func() {
			failing := &mockConversationStore{
				loadFn: func(_ context.Context, _ string) (*model.ConversationState, error) {
					return nil, store.ErrNotFound
				},
				saveFn: func(_ context.Context, _ *model.ConversationState) error {
					return errors.New("write failed")
				},
			}

			orch := newOrchestrator(failing)
			_, err := orch.HandleMessage(ctx, "U_grace", "hi")

			Expect(err).To(MatchError(chat.ErrStore))
		})
	})
})
