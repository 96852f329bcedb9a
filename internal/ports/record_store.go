package ports

import (
	"context"

	"github.com/bnema/growth-dashboard/internal/domain"
)

// RecordStore is the remote side of the dashboard. Insert keeps a non-zero id
// and assigns one otherwise. Update and Delete of a missing record return
// domain.ErrRecordNotFound.
type RecordStore interface {
	List(ctx context.Context, kind domain.Kind) ([]domain.Item, error)
	Insert(ctx context.Context, item domain.Item) (domain.Item, error)
	Update(ctx context.Context, item domain.Item) error
	Delete(ctx context.Context, key domain.Key) error
}
