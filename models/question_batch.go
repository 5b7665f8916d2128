package models

import "time"

const (
	KindQuiz = "quiz"

	CollectionQuizzes              = "quizzes"
	CollectionAssignments          = "assignments"
	CollectionScheduledAssignments = "scheduled_assignments"

	DefaultQuestionType = "text_response"
)

// QuestionBatch is a set of generated questions saved from the chat UI.
type QuestionBatch struct {
	ColID     any       `json:"colid" bson:"colid"`
	Questions any       `json:"questions" bson:"questions"`
	Context   string    `json:"context" bson:"context"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Title     string    `json:"title" bson:"title"`
}

// CollectionForKind maps a batch type onto its destination collection.
func CollectionForKind(kind string) string {
	if kind == KindQuiz {
		return CollectionQuizzes
	}
	return CollectionAssignments
}
