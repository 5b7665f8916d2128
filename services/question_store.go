package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"classroom/models"
)

// ErrInvalidColID is returned when an assignment's colid is not an integer.
var ErrInvalidColID = errors.New("colid must be an integer")

// QuestionStore persists question batches and assignment documents.
type QuestionStore interface {
	SaveBatch(ctx context.Context, kind string, batch models.QuestionBatch) (string, error)
	Insert(ctx context.Context, collection string, doc map[string]any) (string, error)
	List(ctx context.Context, collection string, colID any) ([]map[string]any, error)
	Close(ctx context.Context) error
}

var knownCollections = map[string]bool{
	models.CollectionQuizzes:              true,
	models.CollectionAssignments:          true,
	models.CollectionScheduledAssignments: true,
}

func checkCollection(name string) error {
	if !knownCollections[name] {
		return fmt.Errorf("unknown collection %q", name)
	}
	return nil
}

// DecodeDocument parses a JSON object keeping integers intact.
func DecodeDocument(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}
	normalized, _ := normalizeNumbers(doc).(map[string]any)
	return normalized, nil
}

// normalizeNumbers replaces json.Number values with int64 or float64 so
// document stores see real numbers.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalizeNumbers(item)
		}
		return t
	default:
		return v
	}
}

// CoerceColID converts a posted colid into an integer the way int() would.
func CoerceColID(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, ErrInvalidColID
		}
		return int64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, ErrInvalidColID
		}
		return n, nil
	default:
		return 0, ErrInvalidColID
	}
}

// QueryColID interprets a colid query parameter: integers when they parse,
// the raw string otherwise, nil when absent.
func QueryColID(raw string) any {
	if raw == "" {
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

// PrepareAssignment coerces colid and fills in missing question ids. When
// defaultType is set, questions without a type get it.
func PrepareAssignment(doc map[string]any, defaultType string) error {
	if raw, ok := doc["colid"]; ok {
		n, err := CoerceColID(raw)
		if err != nil {
			return err
		}
		doc["colid"] = n
	}

	questions, ok := doc["questions"].([]any)
	if !ok {
		if _, present := doc["questions"]; present && doc["questions"] != nil {
			return errors.New("questions must be a list")
		}
		return nil
	}
	for i, raw := range questions {
		question, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("question %d must be an object", i+1)
		}
		if isEmpty(question["id"]) {
			question["id"] = uuid.NewString()
		}
		if defaultType != "" && isEmpty(question["type"]) {
			question["type"] = defaultType
		}
	}
	return nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int64:
		return t == 0
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
