package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civic-report/report-assistant/internal/model"
)

const keyPrefix = "draft:"

// RedisStore is a Store shared between replicas. Drafts expire through the
// key TTL and are also checked against the clock on read.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a RedisStore. A zero ttl means DefaultTTL.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func key(ownerID string) string {
	return keyPrefix + ownerID
}

// Get returns the owner's live draft.
func (s *RedisStore) Get(ctx context.Context, ownerID string) (*model.Draft, error) {
	data, err := s.client.Get(ctx, key(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var d model.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	if d.Expired(s.now()) {
		if err := s.client.Del(ctx, key(ownerID)).Err(); err != nil {
			return nil, fmt.Errorf("failed to delete expired draft: %w", err)
		}
		return nil, nil
	}
	return &d, nil
}

// Put replaces the owner's draft with a new one built from fields.
func (s *RedisStore) Put(ctx context.Context, ownerID string, fields model.ReportFields) (*model.Draft, error) {
	d := newDraft(ownerID, fields, s.now(), s.ttl)

	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := s.client.Set(ctx, key(ownerID), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store draft: %w", err)
	}
	return d, nil
}

// Delete removes the owner's draft.
func (s *RedisStore) Delete(ctx context.Context, ownerID string) (bool, error) {
	n, err := s.client.Del(ctx, key(ownerID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete draft: %w", err)
	}
	return n > 0, nil
}

// Ping checks the connection, for readiness probes.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
