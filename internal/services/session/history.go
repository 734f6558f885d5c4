package session

import "github.com/thomas-vilte/promptcache/internal/models"

// DefaultHistoryLimit is the number of messages (not turns) kept for chat context.
const DefaultHistoryLimit = 10

// History is a sliding window over the most recent conversation messages.
type History struct {
	limit    int
	messages []models.Message
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append records a completed turn and drops the oldest messages beyond the limit.
func (h *History) Append(user, assistant string) {
	h.messages = append(h.messages,
		models.Message{Role: models.RoleUser, Content: user},
		models.Message{Role: models.RoleAssistant, Content: assistant},
	)
	if over := len(h.messages) - h.limit; over > 0 {
		h.messages = append([]models.Message(nil), h.messages[over:]...)
	}
}

// Messages returns a copy of the window.
func (h *History) Messages() []models.Message {
	out := make([]models.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// WithUser returns the window followed by a new user message, ready to send.
func (h *History) WithUser(content string) []models.Message {
	return append(h.Messages(), models.Message{Role: models.RoleUser, Content: content})
}

func (h *History) Len() int {
	return len(h.messages)
}

func (h *History) Limit() int {
	return h.limit
}
