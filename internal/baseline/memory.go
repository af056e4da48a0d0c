package baseline

import (
	"context"

	"github.com/patrickmn/go-cache"
)

type MemoryStore struct {
	cache       *cache.Cache
	keyTemplate string
}

func NewMemoryStore(cfg Config) *MemoryStore {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{cache: cache.New(ttl, ttl/2), keyTemplate: cfg.KeyTemplate}
}

func (s *MemoryStore) Capture(_ context.Context, session, course string, mark float64) (bool, error) {
	// Add refuses existing keys, which gives first-write-wins
	if err := s.cache.Add(s.key(session, course), mark, cache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Lookup(_ context.Context, session, course string) (float64, bool, error) {
	v, ok := s.cache.Get(s.key(session, course))
	if !ok {
		return 0, false, nil
	}
	return v.(float64), true, nil
}

func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}

func (s *MemoryStore) key(session, course string) string {
	return formatKey(s.keyTemplate, session, course)
}
