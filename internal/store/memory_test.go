package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wwwxxch/linebot-genai/internal/model"
	"github.com/wwwxxch/linebot-genai/internal/store"
)

var _ = Describe("MemoryStore", func() {
	var (
		s   store.ConversationStore
		ctx context.Context
	)

	BeforeEach(func() {
		s = store.NewMemoryStore()
		ctx = context.Background()
	})

	It("returns ErrNotFound for an unknown thread", func() {
		_, err := s.Load(ctx, "U_missing")
		Expect(err).To(MatchError(store.ErrNotFound))
	})

	It("round-trips a checkpoint and bumps the version", func() {
		state := &model.ConversationState{
			ThreadID: "U1",
			Summary:  "早先的對話摘要",
			Messages: []model.Message{
				{ID: 1, Role: model.RoleUser, Content: "hi"},
			},
		}

		Expect(s.Save(ctx, state)).To(Succeed())
		Expect(state.Version).To(Equal(int64(1)))

		loaded, err := s.Load(ctx, "U1")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Summary).To(Equal("早先的對話摘要"))
		Expect(loaded.Messages).To(HaveLen(1))
		Expect(loaded.Version).To(Equal(int64(1)))
	})

	It("returns copies that do not alias the stored state", func() {
		state := &model.ConversationState{
			ThreadID: "U1",
			Messages: []model.Message{{ID: 1, Role: model.RoleUser, Content: "hi"}},
		}
		Expect(s.Save(ctx, state)).To(Succeed())

		loaded, err := s.Load(ctx, "U1")
		Expect(err).NotTo(HaveOccurred())
		loaded.Messages[0].Content = "mutated"

		again, err := s.Load(ctx, "U1")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Messages[0].Content).To(Equal("hi"))
	})

	Describe("optimistic versioning", func() {
		It("rejects a save based on a stale version", func() {
			state := &model.ConversationState{ThreadID: "U1"}
			Expect(s.Save(ctx, state)).To(Succeed())

			stale := &model.ConversationState{ThreadID: "U1", Version: 0}
			Expect(s.Save(ctx, stale)).To(MatchError(store.ErrVersionConflict))
		})

		It("rejects creating a thread that already exists", func() {
			first := &model.ConversationState{ThreadID: "U1"}
			Expect(s.Save(ctx, first)).To(Succeed())

			second := &model.ConversationState{ThreadID: "U1"}
			Expect(s.Save(ctx, second)).To(MatchError(store.ErrVersionConflict))
		})
	})

	Describe("RemoveMessages", func() {
		It("deletes exactly the given message IDs", func() {
			state := &model.ConversationState{
				ThreadID: "U1",
				Messages: []model.Message{
					{ID: 1, Role: model.RoleUser, Content: "a"},
					{ID: 2, Role: model.RoleAssistant, Content: "b"},
					{ID: 3, Role: model.RoleUser, Content: "c"},
					{ID: 4, Role: model.RoleAssistant, Content: "d"},
				},
			}
			Expect(s.Save(ctx, state)).To(Succeed())

			Expect(s.RemoveMessages(ctx, "U1", []int64{1, 2})).To(Succeed())

			loaded, err := s.Load(ctx, "U1")
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Messages).To(HaveLen(2))
			Expect(loaded.Messages[0].ID).To(Equal(int64(3)))
			Expect(loaded.Messages[1].ID).To(Equal(int64(4)))
		})

		It("is a no-op for an empty ID list", func() {
			Expect(s.RemoveMessages(ctx, "U_missing", nil)).To(Succeed())
		})

		It("returns ErrNotFound for an unknown thread", func() {
			Expect(s.RemoveMessages(ctx, "U_missing", []int64{1})).To(MatchError(store.ErrNotFound))
		})
	})
})
