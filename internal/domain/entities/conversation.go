package entities

// ConversationRole is the author of a conversation turn
type ConversationRole string

const (
	RoleUser      ConversationRole = "user"
	RoleAssistant ConversationRole = "assistant"
)

// ConversationTurn is one caller-supplied chat message
type ConversationTurn struct {
	Role    ConversationRole `json:"role"`
	Content string           `json:"content"`
}

// LastTurns keeps the most recent n turns. Older turns are dropped.
func LastTurns(turns []ConversationTurn, n int) []ConversationTurn {
	if n <= 0 {
		return nil
	}
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
