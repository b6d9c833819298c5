package dto

// LineWebhookPayload is the envelope LINE posts to the webhook endpoint.
type LineWebhookPayload struct {
	Destination string      `json:"destination"`
	Events      []LineEvent `json:"events"`
}

// LineEvent is a single webhook event. Only message events carry a Message.
type LineEvent struct {
	Type       string       `json:"type"`
	ReplyToken string       `json:"replyToken"`
	Source     LineSource   `json:"source"`
	Message    *LineMessage `json:"message"`
}

// LineSource identifies where the event came from.
type LineSource struct {
	Type    string `json:"type"` // "user", "group", "room"
	UserID  string `json:"userId"`
	GroupID string `json:"groupId"`
}

// LineMessage is the message content of a message event.
type LineMessage struct {
	Type    string       `json:"type"` // "text", "image", ...
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Mention *LineMention `json:"mention"`
}

// LineMention lists users mentioned in a group message.
type LineMention struct {
	Mentionees []LineMentionee `json:"mentionees"`
}

// LineMentionee marks one mention; IsSelf is set when the bot itself
// was mentioned.
type LineMentionee struct {
	Index  int  `json:"index"`
	Length int  `json:"length"`
	IsSelf bool `json:"isSelf"`
}

// IsTextMessage reports whether the event is a text message event.
func (e *LineEvent) IsTextMessage() bool {
	return e.Type == "message" && e.Message != nil && e.Message.Type == "text"
}

// MentionsSelf reports whether the bot itself is mentioned in the message.
func (e *LineEvent) MentionsSelf() bool {
	if e.Message == nil || e.Message.Mention == nil {
		return false
	}
	for _, m := range e.Message.Mention.Mentionees {
		if m.IsSelf {
			return true
		}
	}
	return false
}
