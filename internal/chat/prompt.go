package chat

import (
	"fmt"
	"time"

	"github.com/wwwxxch/linebot-genai/common/llm"
	"github.com/wwwxxch/linebot-genai/internal/model"
	"github.com/wwwxxch/linebot-genai/internal/profile"
)

// RefusalReply is the fixed answer for questions outside cat care.
// It is embedded in the system prompt and must stay byte-identical.
const RefusalReply = "這與貓咪照護無關，我無法回答"

// summaryPrefix introduces the rolling summary when it is injected as a
// system message ahead of the raw history.
const summaryPrefix = "Summary of conversation earlier: "

// PromptBuilder composes the system instructions and the ordered message
// sequence for a completion call.
type PromptBuilder struct {
	cat *profile.CatProfile
	now func() time.Time
}

func NewPromptBuilder(cat *profile.CatProfile) *PromptBuilder {
	return &PromptBuilder{cat: cat, now: time.Now}
}

// Build returns the system instructions for this turn and the messages to
// send: the summary (as a leading system message, when present) followed by
// the raw history in chronological order.
func (b *PromptBuilder) Build(state *model.ConversationState, isSpecific bool) (string, []llm.Message) {
	messages := make([]llm.Message, 0, len(state.Messages)+1)

	if state.Summary != "" {
		messages = append(messages, llm.Message{
			Role:    model.RoleSystem,
			Content: summaryPrefix + state.Summary,
		})
	}

	for _, msg := range state.Messages {
		messages = append(messages, llm.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	return b.systemPrompt(isSpecific), messages
}

func (b *PromptBuilder) systemPrompt(isSpecific bool) string {
	if !isSpecific {
		return fmt.Sprintf(`You are an AI assistant specialized in cat health care
Guidelines:
    - Only answer questions related to cats
    - Answer the questions in 繁體中文
    - If a question is not cat-related, respond: "%s"`, RefusalReply)
	}

	cat := b.cat
	return fmt.Sprintf(`You are an AI assistant specialized in cat health care for %s
Cat-Specific Information:
    - Name: %s
    - Birth Year: %d
    - Basic Information: sex is %s, breed is %s
    - Medical History: %s
Guidelines:
    - Identify whether the question is related to cat and is related to the specific cat %s, if no, answer as a general cat health expert without mentioning specific cats.
    - For questions about %s, use his specific information to answer
    - If you don't have some information about %s, you can directly answer you don't have the information
    - Answer the questions in 繁體中文
    - If a question is not cat-related, respond: "%s"
Current year is %d`,
		cat.Name, cat.Name, cat.BirthYear, cat.Sex, cat.Breed, cat.MedicalHistoryLine(),
		cat.Name, cat.Name, cat.Name, RefusalReply, b.now().Year())
}
