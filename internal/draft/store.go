// Package draft holds pending report drafts, at most one per owner, each
// living for a fixed TTL.
package draft

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/civic-report/report-assistant/internal/model"
)

// DefaultTTL is how long a draft survives without being confirmed.
const DefaultTTL = 10 * time.Minute

// Store keeps the pending draft for each owner.
//
// Get returns nil and no error when the owner has no live draft. A draft past
// its expiry is never returned.
type Store interface {
	Get(ctx context.Context, ownerID string) (*model.Draft, error)
	Put(ctx context.Context, ownerID string, fields model.ReportFields) (*model.Draft, error)
	// Delete removes the owner's draft and reports whether one existed.
	Delete(ctx context.Context, ownerID string) (bool, error)
}

func newDraft(ownerID string, fields model.ReportFields, now time.Time, ttl time.Duration) *model.Draft {
	return &model.Draft{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Fields:    fields.Normalize(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func copyDraft(d *model.Draft) *model.Draft {
	c := *d
	return &c
}
