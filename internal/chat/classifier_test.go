package chat_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wwwxxch/linebot-genai/internal/chat"
)

var _ = Describe("RelevanceClassifier", func() {
	classifier := chat.NewRelevanceClassifier("花花")

	DescribeTable("detects the tracked-subject marker by substring containment",
		func(text string, expected bool) {
			Expect(classifier.Classify(text)).To(Equal(expected))
		},
		Entry("empty string", "", false),
		Entry("unrelated text", "我的貓叫什麼名字", false),
		Entry("marker alone", "花花", true),
		Entry("marker at start", "花花今天吃了什麼", true),
		Entry("marker at end", "這是花花", true),
		Entry("marker inside a longer run of characters", "大花花貓", true),
		Entry("partial marker only", "花", false),
	)

	It("never matches when the marker is empty", func() {
		empty := chat.NewRelevanceClassifier("")
		Expect(empty.Classify("花花")).To(BeFalse())
	})
})
