package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"classroom/models"
	"classroom/services"
)

type ChatController struct {
	chat   *services.ChatService
	logger *slog.Logger
}

func NewChatController(chat *services.ChatService, logger *slog.Logger) *ChatController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatController{chat: chat, logger: logger}
}

type chatRequest struct {
	ColID   models.ColID `json:"colid"`
	Message string       `json:"message"`
}

// HandleChat answers one user message and records both sides of the exchange.
func (cc *ChatController) HandleChat(c *gin.Context) {
	var request chatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		cc.logger.Debug("error binding JSON", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	message := strings.TrimSpace(request.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	reply, err := cc.chat.Send(c.Request.Context(), request.ColID, message)
	if err != nil {
		cc.logger.Error("error handling chat", "colid", request.ColID.Key(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply": reply,
		"colid": request.ColID,
	})
}

func (cc *ChatController) GetHistory(c *gin.Context) {
	var request chatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	messages, err := cc.chat.History(c.Request.Context(), request.ColID)
	if err != nil {
		cc.logger.Error("error fetching history", "colid", request.ColID.Key(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"colid":    request.ColID,
	})
}

func (cc *ChatController) ClearChat(c *gin.Context) {
	var request chatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := cc.chat.Clear(c.Request.Context(), request.ColID); err != nil {
		cc.logger.Error("error clearing history", "colid", request.ColID.Key(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear chat history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "colid": request.ColID})
}
