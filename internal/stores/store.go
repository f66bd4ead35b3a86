// Package stores holds the domain collections (words, exercises, games and
// calendar events). Every mutation that is a learning event reports into a
// ledger.Recorder before it returns.
package stores

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vocabuddy/progress/internal/ledger"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/snapshot"
)

// Syncable is implemented by every store whose collection lives in the
// remote document under its own top-level field.
type Syncable interface {
	Field() string
	Snapshot(ctx context.Context) (json.RawMessage, error)
	Replace(ctx context.Context, raw json.RawMessage) error
	Load(ctx context.Context)
	Discard()
}

type options struct {
	now   func() time.Time
	newID func() string
}

// Option configures a store.
type Option func(*options)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDs replaces the random id generator.
func WithIDs(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

func newOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// persister writes one store's state to the local store and pushes its
// document field to the mirror.
type persister struct {
	name   string
	field  string
	schema snapshot.Schema
	local  repository.LocalStore
	pub    ledger.Publisher
}

func newPersister(name, field string, schema snapshot.Schema, local repository.LocalStore, pub ledger.Publisher) persister {
	if pub == nil {
		pub = ledger.NopPublisher
	}
	return persister{name: name, field: field, schema: schema, local: local, pub: pub}
}

func (p persister) log(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx).WithPrefix(p.name + "-store")
}

// load decodes the stored state into v. Failures are logged and reported as
// not found so that the caller starts from an empty collection.
func (p persister) load(ctx context.Context, v any) bool {
	found, err := snapshot.Load(ctx, p.local, p.name, p.schema, v)
	if err != nil {
		p.log(ctx).Error("failed to load %s, starting empty: %v", p.name, err)
		return false
	}
	return found
}

func (p persister) save(ctx context.Context, v any) {
	if err := snapshot.Save(ctx, p.local, p.name, p.schema, v); err != nil {
		p.log(ctx).Error("failed to persist %s: %v", p.name, err)
	}
}

func (p persister) push(ctx context.Context, v any) {
	p.pub.Publish(ctx, map[string]any{p.field: v})
}

// unwrapState is a version 0 migration for blobs written as
// {"state": {key: ...}, "version": n}. Anything else passes through.
func unwrapState(key string) snapshot.Migration {
	return func(data json.RawMessage) (json.RawMessage, error) {
		var wrapped struct {
			State map[string]json.RawMessage `json:"state"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil || wrapped.State == nil {
			return data, nil
		}
		if v, ok := wrapped.State[key]; ok {
			return v, nil
		}
		return json.RawMessage("[]"), nil
	}
}

// legacyCollection unwraps key like unwrapState and converts the named
// fields from epoch milliseconds to RFC 3339 timestamps.
func legacyCollection(key string, timeFields ...string) snapshot.Migration {
	unwrap := unwrapState(key)
	return func(data json.RawMessage) (json.RawMessage, error) {
		data, err := unwrap(data)
		if err != nil {
			return nil, err
		}
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return data, nil
		}
		for _, item := range items {
			for _, f := range timeFields {
				var ms float64
				if v, ok := item[f]; ok && json.Unmarshal(v, &ms) == nil {
					converted, err := json.Marshal(time.UnixMilli(int64(ms)).UTC())
					if err != nil {
						return nil, err
					}
					item[f] = converted
				}
			}
		}
		return json.Marshal(items)
	}
}

var (
	_ Syncable = (*WordStore)(nil)
	_ Syncable = (*ExerciseStore)(nil)
	_ Syncable = (*GameStore)(nil)
	_ Syncable = (*CalendarStore)(nil)
)
