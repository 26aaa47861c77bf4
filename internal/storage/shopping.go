package storage

import (
	"context"
	"fmt"

	"chefmate/internal/shared"
	"chefmate/internal/shopping"
)

func itemID(r shopping.Row) string { return string(r.ID) }

// ListItems returns the stored shopping items, newest first.
func (s *Store) ListItems(_ context.Context) ([]shopping.Row, error) {
	return read[shopping.Row](s, itemsFile)
}

// InsertItems stores rows under new ids. The returned rows keep the input
// order; the blob keeps the last inserted row first.
func (s *Store) InsertItems(_ context.Context, in []shopping.NewRow) ([]shopping.Row, error) {
	if len(in) == 0 {
		return []shopping.Row{}, nil
	}

	now := s.now()
	out := make([]shopping.Row, 0, len(in))
	for _, nr := range in {
		name, unit := nr.Name, nr.Unit
		out = append(out, shopping.Row{
			ID:           shared.ID(s.newID()),
			Name:         &name,
			Quantity:     shared.Float(nr.Quantity),
			Unit:         &unit,
			Completed:    shared.Bool(nr.Completed),
			FromRecipeID: nr.FromRecipeID,
			CreatedAt:    shared.Time{Time: now},
		})
	}

	err := mutate(s, itemsFile, func(rows []shopping.Row) ([]shopping.Row, bool, error) {
		next := make([]shopping.Row, 0, len(out)+len(rows))
		for i := len(out) - 1; i >= 0; i-- {
			next = append(next, out[i])
		}
		return append(next, rows...), true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert shopping items: %w", err)
	}
	return out, nil
}

// UpdateItem applies p to id. A missing id yields a nil row.
func (s *Store) UpdateItem(_ context.Context, id string, p shopping.Patch) (*shopping.Row, error) {
	var updated *shopping.Row
	err := mutate(s, itemsFile, func(rows []shopping.Row) ([]shopping.Row, bool, error) {
		for i := range rows {
			if itemID(rows[i]) != id {
				continue
			}
			if p.Quantity != nil {
				rows[i].Quantity = shared.Float(*p.Quantity)
			}
			if p.Completed != nil {
				rows[i].Completed = shared.Bool(*p.Completed)
			}
			row := rows[i]
			updated = &row
			return rows, true, nil
		}
		return rows, false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update shopping item %s: %w", id, err)
	}
	return updated, nil
}

// DeleteItem removes id when present.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return s.DeleteItems(ctx, []string{id})
}

// DeleteCompleted removes every completed item.
func (s *Store) DeleteCompleted(_ context.Context) error {
	err := mutate(s, itemsFile, func(rows []shopping.Row) ([]shopping.Row, bool, error) {
		n := len(rows)
		kept := rows[:0]
		for _, r := range rows {
			if !bool(r.Completed) {
				kept = append(kept, r)
			}
		}
		return kept, len(kept) != n, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete completed shopping items: %w", err)
	}
	return nil
}

// DeleteItems removes every id in ids.
func (s *Store) DeleteItems(_ context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := mutate(s, itemsFile, func(rows []shopping.Row) ([]shopping.Row, bool, error) {
		rows, changed := removeIDs(rows, itemID, ids)
		return rows, changed, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete shopping items: %w", err)
	}
	return nil
}
