package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"classroom/models"
	"classroom/services"
)

type QuestionController struct {
	store  services.QuestionStore
	now    func() time.Time
	logger *slog.Logger
}

func NewQuestionController(store services.QuestionStore, logger *slog.Logger) *QuestionController {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionController{store: store, now: time.Now, logger: logger}
}

// SaveQuestions stores a generated batch in the quizzes or assignments
// collection depending on its type.
func (qc *QuestionController) SaveQuestions(c *gin.Context) {
	doc, err := readDocument(c)
	if err != nil {
		qc.logger.Error("error saving questions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save questions"})
		return
	}

	questions, ok := doc["questions"]
	if !ok {
		questions = []any{}
	}
	kind := models.KindQuiz
	if raw, ok := doc["type"]; ok {
		kind, _ = raw.(string)
	}

	batch := models.QuestionBatch{
		ColID:     doc["colid"],
		Questions: questions,
		Context:   stringField(doc, "context"),
		CreatedAt: qc.now().UTC(),
		Title:     stringField(doc, "title"),
	}

	id, err := qc.store.SaveBatch(c.Request.Context(), kind, batch)
	if err != nil {
		qc.logger.Error("error saving questions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save questions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "inserted_id": id})
}

func (qc *QuestionController) CreateAssignment(c *gin.Context) {
	id, err := qc.createAssignment(c, models.CollectionAssignments, models.DefaultQuestionType)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment created successfully", "id": id})
}

func (qc *QuestionController) CreateScheduledAssignment(c *gin.Context) {
	if _, err := qc.createAssignment(c, models.CollectionScheduledAssignments, ""); err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scheduled assignment created successfully"})
}

// createAssignment writes the error response itself and returns a non-nil
// error when the handler must stop.
func (qc *QuestionController) createAssignment(c *gin.Context, collection, defaultType string) (string, error) {
	doc, err := readDocument(c)
	if err == nil {
		err = services.PrepareAssignment(doc, defaultType)
	}
	if err != nil {
		qc.logger.Warn("rejected assignment", "collection", collection, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return "", err
	}

	id, err := qc.store.Insert(c.Request.Context(), collection, doc)
	if err != nil {
		qc.logger.Error("error creating assignment", "collection", collection, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return "", err
	}
	qc.logger.Debug("inserted assignment", "collection", collection, "id", id)
	return id, nil
}

func (qc *QuestionController) ListAssignments(c *gin.Context) {
	qc.list(c, models.CollectionAssignments)
}

func (qc *QuestionController) ListScheduledAssignments(c *gin.Context) {
	qc.list(c, models.CollectionScheduledAssignments)
}

func (qc *QuestionController) list(c *gin.Context, collection string) {
	docs, err := qc.store.List(c.Request.Context(), collection, services.QueryColID(c.Query("colid")))
	if err != nil {
		qc.logger.Error("error listing assignments", "collection", collection, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, docs)
}

func readDocument(c *gin.Context) (map[string]any, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("request body is empty")
	}
	return services.DecodeDocument(body)
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}
