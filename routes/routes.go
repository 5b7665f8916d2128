package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"classroom/controllers"
	"classroom/middlewares"
)

func SetupRouter(chat *controllers.ChatController, questions *controllers.QuestionController, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.Logger(logger))
	r.Use(middlewares.CORS())

	r.GET("/", controllers.Root)

	// Conversational assistant
	r.POST("/chat", chat.HandleChat)
	r.POST("/chat/history", chat.GetHistory)
	r.POST("/chat/clear", chat.ClearChat)

	// Generated question batches
	r.POST("/quizzes", questions.SaveQuestions)

	// Assignments
	r.POST("/assignments", questions.CreateAssignment)
	r.GET("/assignments", questions.ListAssignments)
	r.POST("/scheduled-assignments", questions.CreateScheduledAssignment)
	r.GET("/scheduled-assignments", questions.ListScheduledAssignments)

	return r
}
