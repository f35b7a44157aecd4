package policy

import (
	"context"
	"fmt"

	"marketplace/internal/apperr"
)

const DefaultListingQuota = 5

// OwnedCounter reports how many resources an account currently owns.
type OwnedCounter interface {
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// QuotaGuard caps the number of listings per account.
//
// The check is count-then-create with no lock around the following insert, so
// two concurrent creations from one account can both pass at limit-1. The
// limit is soft in that window.
type QuotaGuard struct {
	counter OwnedCounter
	limit   int
}

func NewQuotaGuard(counter OwnedCounter, limit int) *QuotaGuard {
	if limit < 1 {
		limit = DefaultListingQuota
	}
	return &QuotaGuard{counter: counter, limit: limit}
}

func (g *QuotaGuard) Limit() int {
	return g.limit
}

// Check returns ErrQuotaExceeded when ownerID already owns limit or more.
func (g *QuotaGuard) Check(ctx context.Context, ownerID string) error {
	count, err := g.counter.CountByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("count owned listings: %w", err)
	}
	if count >= g.limit {
		return apperr.QuotaExceeded(g.limit)
	}
	return nil
}
