package models

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is one entry of a conversation history. Entries are never modified
// after they are appended.
type Message struct {
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// Turn is a role-tagged prompt entry sent to the completion service.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
