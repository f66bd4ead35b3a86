// Package postgres is the remote mirror backed by a PostgreSQL JSONB table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/models"
	"github.com/vocabuddy/progress/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const createTable = `
CREATE TABLE IF NOT EXISTS mirror_documents (
	user_id TEXT PRIMARY KEY,
	data JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

type mirror struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to dsn and creates the documents table when missing.
func Open(ctx context.Context, dsn string) (repository.RemoteMirror, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create %s: %w", repository.MirrorTable, err)
	}
	return New(db), nil
}

// New wraps an open connection whose schema already exists.
func New(db *sql.DB) repository.RemoteMirror {
	return &mirror{db: db, now: time.Now}
}

func (m *mirror) ReadDocument(ctx context.Context, userID string) (*models.Document, error) {
	log := logger.FromContext(ctx).WithPrefix("postgres_mirror")
	log.Debug("reading document for %s", userID)

	query, args, err := sqlBuilder.Select("data").
		From(repository.MirrorTable).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var data []byte
	err = m.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no document for %s", userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to read document for %s: %v", userID, err)
		return nil, err
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Error("failed to decode document for %s: %v", userID, err)
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func (m *mirror) WriteDocument(ctx context.Context, userID string, doc models.Document) error {
	log := logger.FromContext(ctx).WithPrefix("postgres_mirror")
	log.Debug("writing document for %s", userID)

	doc.UserID = userID
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	query, args, err := sqlBuilder.Insert(repository.MirrorTable).
		Columns("user_id", "data", "updated_at").
		Values(userID, string(data), m.now().UTC()).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := m.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to write document for %s: %v", userID, err)
		return err
	}
	return nil
}

func (m *mirror) UpdateFields(ctx context.Context, userID string, fields map[string]any) error {
	log := logger.FromContext(ctx).WithPrefix("postgres_mirror")
	log.Debug("updating %d field(s) for %s", len(fields), userID)

	query, args, err := updateFieldsQuery(userID, fields, m.now().UTC())
	if err != nil {
		return err
	}
	if _, err := m.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to update fields for %s: %v", userID, err)
		return err
	}
	return nil
}

func (m *mirror) Close() error {
	return m.db.Close()
}

// updateFieldsQuery upserts the user's document. A missing one is created
// from the fields. An existing one is first merged with the nested fields so
// absent top-level parents exist, then gets one jsonb_set per field path.
// Field paths are at most two keys deep, so top-level parents are enough.
func updateFieldsQuery(userID string, fields map[string]any, now time.Time) (string, []interface{}, error) {
	updates, err := repository.EncodeFields(fields)
	if err != nil {
		return "", nil, err
	}
	if len(updates) == 0 {
		return "", nil, errors.New("no fields to update")
	}
	initial, err := repository.NestFields(updates)
	if err != nil {
		return "", nil, err
	}

	expr := "(EXCLUDED.data || " + repository.MirrorTable + ".data)"
	var setArgs []interface{}
	for _, u := range updates {
		expr = fmt.Sprintf("jsonb_set(%s, ?::text[], ?::jsonb, true)", expr)
		setArgs = append(setArgs, pq.Array(u.Keys), string(u.Value))
	}
	setArgs = append(setArgs, now)

	return sqlBuilder.Insert(repository.MirrorTable).
		Columns("user_id", "data", "updated_at").
		Values(userID, string(initial), now).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET data = "+expr+", updated_at = ?", setArgs...).
		ToSql()
}
