package repository

import (
	"context"
	"time"

	"github.com/vocabuddy/progress/internal/models"
)

// LocalStore is durable key-value persistence on the device, addressed by store name.
type LocalStore interface {
	Get(ctx context.Context, storeName string) ([]byte, bool, error)
	Set(ctx context.Context, storeName string, value []byte) error
	Delete(ctx context.Context, storeName string) error
	List(ctx context.Context) ([]string, error)
}

// RemoteMirror is the per-user cloud document. ReadDocument returns nil, nil
// when the user has no document yet.
type RemoteMirror interface {
	ReadDocument(ctx context.Context, userID string) (*models.Document, error)
	WriteDocument(ctx context.Context, userID string, doc models.Document) error
	UpdateFields(ctx context.Context, userID string, fields map[string]any) error
	Close() error
}

// PushRecord is the last known outcome of pushing one field path.
type PushRecord struct {
	UserID    string    `json:"userId"`
	FieldPath string    `json:"fieldPath"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	PushedAt  time.Time `json:"pushedAt"`
}

const (
	PushStatusOK     = "ok"
	PushStatusFailed = "failed"
)

// PushLog keeps diagnostics about fire-and-forget mirror pushes.
type PushLog interface {
	Record(ctx context.Context, rec PushRecord) error
	List(ctx context.Context, userID string) ([]PushRecord, error)
}
