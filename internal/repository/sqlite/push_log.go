package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/repository"
)

type pushLog struct {
	db *sql.DB
}

// NewPushLog creates a PushLog backed by the push_log table.
func NewPushLog(db *sql.DB) repository.PushLog {
	return &pushLog{db: db}
}

func (r *pushLog) Record(ctx context.Context, rec repository.PushRecord) error {
	log := logger.FromContext(ctx).WithPrefix("push_log")

	if rec.PushedAt.IsZero() {
		rec.PushedAt = time.Now()
	}
	query, args, err := sqlBuilder.Insert("push_log").
		Columns("user_id", "field_path", "status", "error", "pushed_at").
		Values(rec.UserID, rec.FieldPath, rec.Status, rec.Error, rec.PushedAt.UTC()).
		Suffix(`ON CONFLICT(user_id, field_path) DO UPDATE SET
    status = excluded.status, error = excluded.error, pushed_at = excluded.pushed_at`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to record push for %s/%s: %v", rec.UserID, rec.FieldPath, err)
		return err
	}
	return nil
}

func (r *pushLog) List(ctx context.Context, userID string) ([]repository.PushRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("push_log")

	query, args, err := sqlBuilder.Select("user_id", "field_path", "status", "error", "pushed_at").
		From("push_log").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("field_path").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list pushes: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []repository.PushRecord
	for rows.Next() {
		var rec repository.PushRecord
		if err := rows.Scan(&rec.UserID, &rec.FieldPath, &rec.Status, &rec.Error, &rec.PushedAt); err != nil {
			log.Error("failed to scan push row: %v", err)
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
