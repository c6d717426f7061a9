package donation

import (
	"context"
	"errors"

	"github.com/woofi-pets/donation-server/pkg/database/query"
)

var (
	ErrRecordNotFound = errors.New("donation record not found")
)

type Store interface {
	// Save upserts the mirrored record for a subject. Aggregates only
	// move forward: a save with a lower donation count than the stored
	// row is ignored.
	Save(ctx context.Context, record *Record) error

	// Get gets the mirrored record for a subject
	Get(ctx context.Context, subjectID string) (*Record, error)

	// GetTopBySubject gets up to limit records ordered by cumulative
	// amount descending
	GetTopBySubject(ctx context.Context, limit uint64) ([]*Record, error)

	// GetAllByLastUpdated gets up to limit records ordered by last
	// update time
	GetAllByLastUpdated(ctx context.Context, ordering query.Ordering, limit uint64) ([]*Record, error)

	// GetAllByMint gets paged records for one asset (empty mint is
	// native). Supports query.WithCursor, query.WithLimit and
	// query.WithDirection.
	//
	// Returns ErrRecordNotFound if no records are available.
	GetAllByMint(ctx context.Context, mint string, opts ...query.Option) ([]*Record, error)
}
