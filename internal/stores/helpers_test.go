package stores_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/vocabuddy/progress/internal/ledger"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/repository/sqlite"
	"github.com/vocabuddy/progress/internal/stores"
	"github.com/vocabuddy/progress/internal/testutil"
	"github.com/vocabuddy/progress/internal/testutil/mocks"
)

type pushes struct {
	mu     sync.Mutex
	fields []map[string]any
}

func (p *pushes) Publish(_ context.Context, fields map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fields = append(p.fields, fields)
}

func (p *pushes) has(field string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range p.fields {
		if _, ok := f[field]; ok {
			return true
		}
	}
	return false
}

type env struct {
	local  repository.LocalStore
	ledger *ledger.Ledger
	pub    *pushes
	now    time.Time
}

func newEnv(t *testing.T) *env {
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })

	local := sqlite.NewLocalStore(db)
	pub := &pushes{}
	return &env{
		local:  local,
		ledger: ledger.New(local, pub),
		pub:    pub,
		now:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

// sequentialIDs returns ids "id-1", "id-2", ...
func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

func (e *env) opts(prefix string) []stores.Option {
	return []stores.Option{
		stores.WithClock(func() time.Time { return e.now }),
		stores.WithIDs(sequentialIDs(prefix)),
	}
}

// callsWith counts calls of method whose second argument equals arg.
func callsWith(m *mocks.MockRecorder, method string, arg any) int {
	n := 0
	for _, c := range m.Calls {
		if c.Method == method && len(c.Arguments) > 1 && c.Arguments[1] == arg {
			n++
		}
	}
	return n
}
