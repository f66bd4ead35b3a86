// Package mysql is the remote mirror backed by a MySQL JSON column.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/models"
	"github.com/vocabuddy/progress/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const createTable = "CREATE TABLE IF NOT EXISTS mirror_documents (" +
	"user_id VARCHAR(191) NOT NULL PRIMARY KEY, " +
	"data JSON NOT NULL, " +
	"updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6))"

type mirror struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to dsn and creates the documents table when missing. Time
// values are parsed into time.Time regardless of the DSN.
func Open(ctx context.Context, dsn string) (repository.RemoteMirror, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
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
	log := logger.FromContext(ctx).WithPrefix("mysql_mirror")
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
	log := logger.FromContext(ctx).WithPrefix("mysql_mirror")
	log.Debug("writing document for %s", userID)

	doc.UserID = userID
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	query, args, err := sqlBuilder.Insert(repository.MirrorTable).
		Columns("user_id", "data", "updated_at").
		Values(userID, string(data), m.now().UTC()).
		Suffix("ON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = VALUES(updated_at)").
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
	log := logger.FromContext(ctx).WithPrefix("mysql_mirror")
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

// jsonPath turns keys into a MySQL JSON path such as $."profile"."achievements".
func jsonPath(keys []string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, k := range keys {
		b.WriteString(`."`)
		b.WriteString(strings.ReplaceAll(k, `"`, `\"`))
		b.WriteString(`"`)
	}
	return b.String()
}

// updateFieldsQuery upserts the user's document, applying every field path
// in one JSON_SET call when the document exists. JSON_SET skips paths whose
// parent is missing, so the stored document is first patched over the nested
// fields to fill in absent parents.
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

	pairs := make([]string, 0, len(updates))
	setArgs := make([]interface{}, 0, 2*len(updates))
	for _, u := range updates {
		pairs = append(pairs, "?, CAST(? AS JSON)")
		setArgs = append(setArgs, jsonPath(u.Keys), string(u.Value))
	}

	return sqlBuilder.Insert(repository.MirrorTable).
		Columns("user_id", "data", "updated_at").
		Values(userID, string(initial), now).
		Suffix("ON DUPLICATE KEY UPDATE data = JSON_SET(JSON_MERGE_PATCH(VALUES(data), data), "+strings.Join(pairs, ", ")+"), updated_at = VALUES(updated_at)", setArgs...).
		ToSql()
}
