package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom/models"
)

type savedBatch struct {
	kind  string
	batch models.QuestionBatch
}

type fakeQuestionStore struct {
	batches  []savedBatch
	inserted map[string][]map[string]any
	listed   []any
	err      error
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{inserted: make(map[string][]map[string]any)}
}

func (f *fakeQuestionStore) SaveBatch(_ context.Context, kind string, batch models.QuestionBatch) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.batches = append(f.batches, savedBatch{kind: kind, batch: batch})
	return "665f1c2b9a1e4a3d2c1b0a99", nil
}

func (f *fakeQuestionStore) Insert(_ context.Context, collection string, doc map[string]any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.inserted[collection] = append(f.inserted[collection], doc)
	return "generated-id", nil
}

func (f *fakeQuestionStore) List(_ context.Context, collection string, colID any) ([]map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.listed = append(f.listed, colID)
	docs := make([]map[string]any, 0)
	for _, doc := range f.inserted[collection] {
		if colID == nil || doc["colid"] == colID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (f *fakeQuestionStore) Close(context.Context) error { return nil }

func newQuestionRouter(store *fakeQuestionStore) *gin.Engine {
	qc := NewQuestionController(store, discard)
	qc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }

	r := gin.New()
	r.POST("/quizzes", qc.SaveQuestions)
	r.POST("/assignments", qc.CreateAssignment)
	r.GET("/assignments", qc.ListAssignments)
	r.POST("/scheduled-assignments", qc.CreateScheduledAssignment)
	r.GET("/scheduled-assignments", qc.ListScheduledAssignments)
	return r
}

func TestSaveQuestions(t *testing.T) {
	store := newFakeQuestionStore()
	r := newQuestionRouter(store)

	w, out := post(t, r, "/quizzes", `{
		"colid": 7,
		"questions": [{"q": "What is 2+2?", "options": ["3", "4"]}],
		"type": "quiz",
		"context": "arithmetic",
		"title": "Warm-up"
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "665f1c2b9a1e4a3d2c1b0a99", out["inserted_id"])

	require.Len(t, store.batches, 1)
	saved := store.batches[0]
	assert.Equal(t, "quiz", saved.kind)
	assert.Equal(t, int64(7), saved.batch.ColID)
	assert.Len(t, saved.batch.Questions, 1)
	assert.Equal(t, "arithmetic", saved.batch.Context)
	assert.Equal(t, "Warm-up", saved.batch.Title)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), saved.batch.CreatedAt)
}

func TestSaveQuestionsDefaults(t *testing.T) {
	store := newFakeQuestionStore()
	r := newQuestionRouter(store)

	w, _ := post(t, r, "/quizzes", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.KindQuiz, store.batches[0].kind)
	assert.Nil(t, store.batches[0].batch.ColID)

	w, _ = post(t, r, "/quizzes", `{"type":"assignment"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.CollectionAssignments, models.CollectionForKind(store.batches[1].kind))
}

func TestSaveQuestionsStoresQuestionsAsGiven(t *testing.T) {
	store := newFakeQuestionStore()
	r := newQuestionRouter(store)

	w, _ := post(t, r, "/quizzes", `{"colid":1,"questions":{"set":"A","items":[1,2]}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"set": "A", "items": []any{int64(1), int64(2)}}, store.batches[0].batch.Questions)

	w, _ = post(t, r, "/quizzes", `{"colid":1,"questions":"free text"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "free text", store.batches[1].batch.Questions)

	w, _ = post(t, r, "/quizzes", `{"colid":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, store.batches[2].batch.Questions)
}

func TestSaveQuestionsFailure(t *testing.T) {
	store := newFakeQuestionStore()
	store.err = errors.New("server selection timeout")
	r := newQuestionRouter(store)

	w, out := post(t, r, "/quizzes", `{"colid":1}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to save questions", out["error"])
}

func TestCreateAndListAssignments(t *testing.T) {
	store := newFakeQuestionStore()
	r := newQuestionRouter(store)

	w, out := post(t, r, "/assignments", `{"colid":"12","questions":[{"text":"Explain TCP"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Assignment created successfully", out["message"])
	assert.Equal(t, "generated-id", out["id"])

	doc := store.inserted[models.CollectionAssignments][0]
	assert.Equal(t, int64(12), doc["colid"])
	question := doc["questions"].([]any)[0].(map[string]any)
	assert.Equal(t, models.DefaultQuestionType, question["type"])
	assert.NotEmpty(t, question["id"])

	req := httptest.NewRequest(http.MethodGet, "/assignments?colid=12", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	assert.Len(t, docs, 1)
	assert.Equal(t, int64(12), store.listed[0])
}

func TestCreateAssignmentRejectsBadColID(t *testing.T) {
	store := newFakeQuestionStore()
	r := newQuestionRouter(store)

	w, out := post(t, r, "/assignments", `{"colid":"twelve","questions":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "colid must be an integer", out["detail"])
	assert.Empty(t, store.inserted)
}

func TestScheduledAssignments(t *testing.T) {
	store := newFakeQuestionStore()
	r := newQuestionRouter(store)

	w, out := post(t, r, "/scheduled-assignments", `{"colid":3,"questions":[{"text":"x"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Scheduled assignment created successfully", out["message"])

	question := store.inserted[models.CollectionScheduledAssignments][0]["questions"].([]any)[0].(map[string]any)
	assert.NotContains(t, question, "type")

	req := httptest.NewRequest(http.MethodGet, "/scheduled-assignments", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, store.listed[0])
}

func TestListAssignmentsFailure(t *testing.T) {
	store := newFakeQuestionStore()
	store.err = errors.New("connection refused")
	r := newQuestionRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/assignments", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
