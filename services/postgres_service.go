package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"classroom/models"
)

// PostgresStore keeps question batches and assignments as jsonb documents,
// one table per collection.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens uri, disabling SSL unless the URI says otherwise,
// and pings the server.
func NewPostgresStore(ctx context.Context, uri string) (*PostgresStore, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("POSTGRES_URI is not set")
	}

	connStr := uri
	if !strings.Contains(uri, "sslmode=") {
		switch {
		case strings.Contains(uri, "://") && strings.Contains(uri, "?"):
			connStr += "&sslmode=disable"
		case strings.Contains(uri, "://"):
			connStr += "?sslmode=disable"
		default:
			connStr += " sslmode=disable"
		}
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// EnsureSchema creates the document tables when they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for name := range knownCollections {
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         uuid PRIMARY KEY,
				colid      text,
				document   jsonb NOT NULL,
				created_at timestamptz NOT NULL DEFAULT now()
			)`, name)
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
		index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_colid_idx ON %s (colid)`, name, name)
		if _, err := s.db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("create index on %s: %w", name, err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveBatch(ctx context.Context, kind string, batch models.QuestionBatch) (string, error) {
	doc := map[string]any{
		"colid":      batch.ColID,
		"questions":  batch.Questions,
		"context":    batch.Context,
		"created_at": batch.CreatedAt,
		"title":      batch.Title,
	}
	return s.insert(ctx, models.CollectionForKind(kind), doc, batch.CreatedAt)
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, doc map[string]any) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", err
	}
	return s.insert(ctx, collection, doc, time.Now())
}

func (s *PostgresStore) insert(ctx context.Context, table string, doc map[string]any, createdAt time.Time) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	colID, err := colIDText(doc["colid"])
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	query := fmt.Sprintf(`INSERT INTO %s (id, colid, document, created_at) VALUES ($1, $2, $3, $4)`, table)
	if _, err := s.db.ExecContext(ctx, query, id, colID, body, createdAt); err != nil {
		return "", fmt.Errorf("failed to save to postgres: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) List(ctx context.Context, collection string, colID any) ([]map[string]any, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, document FROM %s`, collection)
	var args []any
	if colID != nil {
		key, err := colIDText(colID)
		if err != nil {
			return nil, err
		}
		query += ` WHERE colid = $1`
		args = append(args, key)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make([]map[string]any, 0)
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		doc, err := DecodeDocument(body)
		if err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		doc["_id"] = id
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Close(context.Context) error {
	return s.db.Close()
}

// colIDText is the JSON text of a colid, so 7 and "7" stay distinct.
func colIDText(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode colid: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
