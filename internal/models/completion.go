package models

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemSegment is one block of the system prompt. Cacheable segments carry an
// ephemeral cache breakpoint.
type SystemSegment struct {
	Text      string
	Cacheable bool
}

type CompletionRequest struct {
	Model     string
	MaxTokens int
	System    []SystemSegment
	Messages  []Message
}

type CompletionResult struct {
	Text       string
	Model      string
	StopReason string
	Usage      UsageRecord
}
