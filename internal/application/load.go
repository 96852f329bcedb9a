package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/ports"
	"golang.org/x/sync/errgroup"
)

var ErrStoreNotEmpty = errors.New("record store is not empty")

// LoadSnapshot lists the three collections concurrently and assembles the
// seed snapshot for a session.
func LoadSnapshot(ctx context.Context, store ports.RecordStore) (domain.Snapshot, error) {
	kinds := domain.Kinds()
	lists := make([][]domain.Item, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			items, err := store.List(gctx, kind)
			if err != nil {
				return fmt.Errorf("list %s: %w", kind.Collection(), err)
			}
			lists[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}

	var all []domain.Item
	for _, items := range lists {
		all = append(all, items...)
	}

	return domain.SnapshotFromItems(all), nil
}

// SeedStore writes snap into an empty store. It refuses to touch a store that
// already holds records.
func SeedStore(ctx context.Context, store ports.RecordStore, snap domain.Snapshot) (int, error) {
	existing, err := LoadSnapshot(ctx, store)
	if err != nil {
		return 0, err
	}
	if existing.Total() > 0 {
		return 0, fmt.Errorf("%w: %d records", ErrStoreNotEmpty, existing.Total())
	}

	written := 0
	for _, item := range snap.AllItems() {
		if _, err := store.Insert(ctx, item); err != nil {
			return written, fmt.Errorf("insert %s: %w", item.Key(), err)
		}
		written++
	}

	return written, nil
}
