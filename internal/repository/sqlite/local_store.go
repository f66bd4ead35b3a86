package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/repository"
)

type localStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewLocalStore creates a LocalStore backed by the local_state table.
func NewLocalStore(db *sql.DB) repository.LocalStore {
	return &localStore{db: db, now: time.Now}
}

func (r *localStore) Get(ctx context.Context, storeName string) ([]byte, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("local_store")
	log.Debug("reading store: %s", storeName)

	query, args, err := sqlBuilder.Select("value").
		From("local_state").
		Where(squirrel.Eq{"store_name": storeName}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, false, err
	}

	var value []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("store not found: %s", storeName)
		return nil, false, nil
	}
	if err != nil {
		log.Error("failed to read store %s: %v", storeName, err)
		return nil, false, err
	}
	return value, true, nil
}

func (r *localStore) Set(ctx context.Context, storeName string, value []byte) error {
	log := logger.FromContext(ctx).WithPrefix("local_store")
	log.Debug("writing store: %s (%d bytes)", storeName, len(value))

	query, args, err := sqlBuilder.Insert("local_state").
		Columns("store_name", "value", "updated_at").
		Values(storeName, value, r.now().UTC()).
		Suffix("ON CONFLICT(store_name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to write store %s: %v", storeName, err)
		return err
	}
	return nil
}

func (r *localStore) Delete(ctx context.Context, storeName string) error {
	log := logger.FromContext(ctx).WithPrefix("local_store")
	log.Debug("deleting store: %s", storeName)

	query, args, err := sqlBuilder.Delete("local_state").
		Where(squirrel.Eq{"store_name": storeName}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to delete store %s: %v", storeName, err)
		return err
	}
	return nil
}

func (r *localStore) List(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("local_store")

	query, args, err := sqlBuilder.Select("store_name").
		From("local_state").
		OrderBy("store_name").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list stores: %v", err)
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			log.Error("failed to scan store row: %v", err)
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
