package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/soteriahealth/soteria/stats"
	"github.com/soteriahealth/soteria/testutil"
	"github.com/soteriahealth/soteria/utils"
)

var day1 = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type testEnv struct {
	engine *Engine
	db     *gorm.DB
	clock  *stats.FakeClock
	cache  *memCache
	user   uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	clock := stats.NewFakeClock(day1)
	cache := newMemCache()
	e := NewEngine(db, EngineConfig{
		Clock:           clock,
		Sessions:        utils.NewSessionStore(nil, time.Hour),
		Cache:           cache,
		DefaultTimezone: "UTC",
	})
	return &testEnv{engine: e, db: db, clock: clock, cache: cache, user: uuid.New()}
}

func (env *testEnv) complete(t *testing.T, routine string, c stats.Category) *CompletionResult {
	t.Helper()
	res, err := env.engine.RecordCompletion(context.Background(), CompletionInput{
		UserID:    env.user,
		RoutineID: routine,
		Category:  c,
	})
	require.NoError(t, err)
	return res
}

func (env *testEnv) today() stats.Date {
	return stats.LocalDate(env.clock.Now(), time.UTC)
}

// memCache is a process-local Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, out any) bool {
	c.mu.Lock()
	b, ok := c.data[key]
	c.mu.Unlock()
	return ok && json.Unmarshal(b, out) == nil
}

func (c *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.data[key] = b
	c.mu.Unlock()
}

func (c *memCache) InvalidatePrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
}

func (c *memCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
