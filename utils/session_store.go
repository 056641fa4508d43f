package utils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/soteriahealth/soteria/stats"
)

const defaultSessionTTL = 30 * time.Minute

// SessionStore remembers which categories a user is executing right now.
// Entries expire after the TTL so an abandoned routine stops counting.
// Redis is preferred for multi-instance deployments; without it the store
// falls back to process memory.
type SessionStore struct {
	rc  *redis.Client
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time
}

// NewSessionStore creates a store. rc may be nil.
func NewSessionStore(rc *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{rc: rc, ttl: ttl, now: time.Now, entries: map[string]time.Time{}}
}

func sessionKey(userID uuid.UUID, c stats.Category) string {
	return "exec:session:" + userID.String() + ":" + string(c)
}

// Start marks c as executing, refreshing the TTL when already set.
func (s *SessionStore) Start(ctx context.Context, userID uuid.UUID, c stats.Category) error {
	key := sessionKey(userID, c)
	if s.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return s.rc.Set(ctx, key, s.now().UTC().Format(time.RFC3339), s.ttl).Err()
	}
	s.mu.Lock()
	s.entries[key] = s.now().Add(s.ttl)
	s.mu.Unlock()
	return nil
}

// Stop clears the marker for c. Stopping an idle category is not an error.
func (s *SessionStore) Stop(ctx context.Context, userID uuid.UUID, c stats.Category) error {
	key := sessionKey(userID, c)
	if s.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return s.rc.Del(ctx, key).Err()
	}
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Active reports the executing flag of every category.
func (s *SessionStore) Active(ctx context.Context, userID uuid.UUID) (map[stats.Category]bool, error) {
	out := make(map[stats.Category]bool, len(stats.Categories))
	if s.rc != nil {
		keys := make([]string, 0, len(stats.Categories))
		for _, c := range stats.Categories {
			keys = append(keys, sessionKey(userID, c))
		}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		vals, err := s.rc.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, err
		}
		for i, c := range stats.Categories {
			out[c] = vals[i] != nil
		}
		return out, nil
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range stats.Categories {
		key := sessionKey(userID, c)
		exp, ok := s.entries[key]
		if ok && !now.Before(exp) {
			delete(s.entries, key)
			ok = false
		}
		out[c] = ok
	}
	return out, nil
}

// Clear drops every marker of the user.
func (s *SessionStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if s.rc != nil {
		keys := make([]string, 0, len(stats.Categories))
		for _, c := range stats.Categories {
			keys = append(keys, sessionKey(userID, c))
		}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return s.rc.Del(ctx, keys...).Err()
	}
	s.mu.Lock()
	for _, c := range stats.Categories {
		delete(s.entries, sessionKey(userID, c))
	}
	s.mu.Unlock()
	return nil
}
