package draft

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/civic-report/report-assistant/internal/model"
	"github.com/civic-report/report-assistant/pkg/metrics"
)

// DefaultMaxEntries bounds the in-process store.
const DefaultMaxEntries = 10000

// MemoryConfig configures a MemoryStore.
type MemoryConfig struct {
	TTL        time.Duration
	MaxEntries int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// MemoryStore is an in-process Store. When full, the least recently used
// draft is evicted.
type MemoryStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *model.Draft]
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore creates a MemoryStore.
func NewMemoryStore(cfg MemoryConfig) (*MemoryStore, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	cache, err := lru.New[string, *model.Draft](cfg.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft cache: %w", err)
	}

	return &MemoryStore{
		cache: cache,
		ttl:   cfg.TTL,
		now:   cfg.Now,
	}, nil
}

// Get returns the owner's live draft. An expired draft is removed.
func (s *MemoryStore) Get(_ context.Context, ownerID string) (*model.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.cache.Get(ownerID)
	if !ok {
		return nil, nil
	}
	if d.Expired(s.now()) {
		s.cache.Remove(ownerID)
		s.updateGauge()
		metrics.RecordDraft("expired")
		return nil, nil
	}
	return copyDraft(d), nil
}

// Put replaces the owner's draft with a new one built from fields.
func (s *MemoryStore) Put(_ context.Context, ownerID string, fields model.ReportFields) (*model.Draft, error) {
	d := newDraft(ownerID, fields, s.now(), s.ttl)

	s.mu.Lock()
	s.cache.Add(ownerID, d)
	s.updateGauge()
	s.mu.Unlock()

	return copyDraft(d), nil
}

// Delete removes the owner's draft.
func (s *MemoryStore) Delete(_ context.Context, ownerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.cache.Peek(ownerID)
	if !ok {
		return false, nil
	}
	s.cache.Remove(ownerID)
	s.updateGauge()
	return !d.Expired(s.now()), nil
}

// Sweep removes every expired draft and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for _, owner := range s.cache.Keys() {
		if d, ok := s.cache.Peek(owner); ok && d.Expired(now) {
			s.cache.Remove(owner)
			removed++
		}
	}
	if removed > 0 {
		s.updateGauge()
		metrics.RecordDrafts("expired", removed)
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done. A non-positive
// interval disables sweeping; expired drafts are then removed on access.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// Len returns the number of drafts held, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

func (s *MemoryStore) updateGauge() {
	metrics.DraftStoreEntries.Set(float64(s.cache.Len()))
}
