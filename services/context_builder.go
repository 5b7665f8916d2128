package services

import "classroom/models"

const (
	// ContextWindowSize is how many stored messages precede the new one.
	ContextWindowSize = 10

	SystemPrompt = "You are a helpful college assistant. Keep responses concise and relevant to education."

	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// BuildContext assembles the prompt: the system turn, the most recent
// ContextWindowSize history entries oldest first, then the new user message.
func BuildContext(history []models.Message, newMessage string) []models.Turn {
	if len(history) > ContextWindowSize {
		history = history[len(history)-ContextWindowSize:]
	}

	turns := make([]models.Turn, 0, len(history)+2)
	turns = append(turns, models.Turn{Role: RoleSystem, Content: SystemPrompt})
	for _, msg := range history {
		role := RoleAssistant
		if msg.Sender == models.SenderUser {
			role = RoleUser
		}
		turns = append(turns, models.Turn{Role: role, Content: msg.Text})
	}
	turns = append(turns, models.Turn{Role: RoleUser, Content: newMessage})
	return turns
}
