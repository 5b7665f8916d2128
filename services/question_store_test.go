package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom/models"
)

func TestDecodeDocumentKeepsIntegers(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"colid": 9007199254740993, "score": 2.5, "questions": [{"points": 3}]}`))
	require.NoError(t, err)

	assert.Equal(t, int64(9007199254740993), doc["colid"])
	assert.Equal(t, 2.5, doc["score"])
	question := doc["questions"].([]any)[0].(map[string]any)
	assert.Equal(t, int64(3), question["points"])
}

func TestDecodeDocumentRejectsNonObjects(t *testing.T) {
	for _, body := range []string{`null`, `[1,2]`, `"quiz"`, `{`, `{"a":1} junk`, `{"a":1}{"b":2}`} {
		_, err := DecodeDocument([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestDecodeDocumentAllowsTrailingWhitespace(t *testing.T) {
	doc, err := DecodeDocument([]byte("{\"a\":1}\n  "))
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc["a"])
}

func TestCoerceColID(t *testing.T) {
	tests := []struct {
		in      any
		want    int64
		wantErr bool
	}{
		{in: int64(12), want: 12},
		{in: 12.9, want: 12},
		{in: " 42 ", want: 42},
		{in: true, want: 1},
		{in: "cs-101", wantErr: true},
		{in: nil, wantErr: true},
		{in: []any{1}, wantErr: true},
	}
	for _, tc := range tests {
		got, err := CoerceColID(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidColID, "%v", tc.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestQueryColID(t *testing.T) {
	assert.Nil(t, QueryColID(""))
	assert.Equal(t, int64(7), QueryColID("7"))
	assert.Equal(t, "cs-101", QueryColID("cs-101"))
}

func TestPrepareAssignment(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{
		"colid": "12",
		"title": "Week 3",
		"questions": [
			{"text": "Define entropy"},
			{"id": "q-2", "type": "mcq", "text": "Pick one"}
		]
	}`))
	require.NoError(t, err)

	require.NoError(t, PrepareAssignment(doc, models.DefaultQuestionType))
	assert.Equal(t, int64(12), doc["colid"])

	questions := doc["questions"].([]any)
	first := questions[0].(map[string]any)
	assert.NotEmpty(t, first["id"])
	assert.Equal(t, models.DefaultQuestionType, first["type"])

	second := questions[1].(map[string]any)
	assert.Equal(t, "q-2", second["id"])
	assert.Equal(t, "mcq", second["type"])
}

func TestPrepareAssignmentReplacesEmptyContainers(t *testing.T) {
	doc := map[string]any{"questions": []any{
		map[string]any{"id": []any{}, "type": map[string]any{}},
	}}
	require.NoError(t, PrepareAssignment(doc, models.DefaultQuestionType))

	question := doc["questions"].([]any)[0].(map[string]any)
	assert.IsType(t, "", question["id"])
	assert.NotEmpty(t, question["id"])
	assert.Equal(t, models.DefaultQuestionType, question["type"])
}

func TestPrepareScheduledAssignmentLeavesType(t *testing.T) {
	doc := map[string]any{"questions": []any{map[string]any{"text": "x"}}}
	require.NoError(t, PrepareAssignment(doc, ""))

	question := doc["questions"].([]any)[0].(map[string]any)
	assert.NotEmpty(t, question["id"])
	assert.NotContains(t, question, "type")
}

func TestPrepareAssignmentRejects(t *testing.T) {
	require.ErrorIs(t, PrepareAssignment(map[string]any{"colid": "abc"}, ""), ErrInvalidColID)
	require.Error(t, PrepareAssignment(map[string]any{"questions": "nope"}, ""))
	require.Error(t, PrepareAssignment(map[string]any{"questions": []any{"nope"}}, ""))
	require.NoError(t, PrepareAssignment(map[string]any{"title": "no questions"}, ""))
}

func TestCheckCollection(t *testing.T) {
	require.NoError(t, checkCollection(models.CollectionQuizzes))
	require.Error(t, checkCollection("users; DROP TABLE quizzes"))
}
