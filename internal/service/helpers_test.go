package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/clinic-booking/core/internal/db"
	"github.com/clinic-booking/core/internal/model"
	"github.com/clinic-booking/core/internal/repository"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "core.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewStore(gdb)
}

func seedService(t *testing.T, store *repository.Store, name string, minutes int) *model.Service {
	t.Helper()
	svc := &model.Service{Name: name, DurationMinutes: minutes, Price: 100, Active: true}
	if err := store.Services.Create(context.Background(), svc); err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return svc
}

func fixedNow(s string) func() time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts }
}

// memoryCache records cache traffic for assertions. beforeSet, when set,
// runs ahead of every Set so a test can interleave a write with a reader.
type memoryCache struct {
	mu          sync.Mutex
	versions    map[string]int64
	data        map[string][]byte
	invalidated []string
	beforeSet   func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{versions: map[string]int64{}, data: map[string][]byte{}}
}

func cacheKey(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func viewKey(year int, month time.Month, version int64) string {
	return fmt.Sprintf("%s:v%d", cacheKey(year, month), version)
}

func (c *memoryCache) Version(_ context.Context, year int, month time.Month) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[cacheKey(year, month)], nil
}

func (c *memoryCache) Get(_ context.Context, year int, month time.Month, version int64) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[viewKey(year, month, version)]
	return d, ok, nil
}

func (c *memoryCache) Set(_ context.Context, year int, month time.Month, version int64, payload []byte) error {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[viewKey(year, month, version)] = payload
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, year int, month time.Month) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(year, month)
	c.versions[key]++
	c.invalidated = append(c.invalidated, key)
	return nil
}

// cached reports whether a view is stored under the month's current version.
func (c *memoryCache) cached(year int, month time.Month) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[viewKey(year, month, c.versions[cacheKey(year, month)])]
	return ok
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
