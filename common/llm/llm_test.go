package llm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wwwxxch/linebot-genai/common/llm"
)

var _ = Describe("NewCompletionClient", func() {
	It("requires an API key", func() {
		_, err := llm.NewCompletionClient(llm.Config{Provider: llm.ProviderOpenAI})
		Expect(err).To(MatchError(ContainSubstring("API key is required")))
	})

	It("rejects an unknown provider", func() {
		_, err := llm.NewCompletionClient(llm.Config{Provider: "anthropic", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	It("defaults to the Gemini backend", func() {
		client, err := llm.NewCompletionClient(llm.Config{APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Model()).To(Equal("gemini-2.0-flash"))
	})

	It("builds an OpenAI client with the default model", func() {
		client, err := llm.NewCompletionClient(llm.Config{Provider: llm.ProviderOpenAI, APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Model()).To(Equal("gpt-4o-mini"))
	})

	It("honors an explicit model", func() {
		client, err := llm.NewCompletionClient(llm.Config{
			Provider: llm.ProviderGemini,
			APIKey:   "k",
			Model:    "gemini-2.5-pro",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Model()).To(Equal("gemini-2.5-pro"))
	})
})
