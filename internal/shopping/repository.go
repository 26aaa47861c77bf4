package shopping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chefmate/internal/shared"
	db "chefmate/internal/shopping/shoppingdb"

	"github.com/google/uuid"
)

// Repository is a SQLite-backed Store for shopping items.
type Repository struct {
	queries *db.Queries
	db      *sql.DB
	now     func() time.Time
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: db.New(d),
		db:      d,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ListItems retrieves all items, newest first.
func (r *Repository) ListItems(ctx context.Context) ([]Row, error) {
	dbItems, err := r.queries.ListShoppingItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping items: %w", err)
	}

	rows := make([]Row, 0, len(dbItems))
	for _, it := range dbItems {
		rows = append(rows, rowFromDB(it))
	}
	return rows, nil
}

// InsertItems stores all rows in one transaction.
func (r *Repository) InsertItems(ctx context.Context, rows []NewRow) ([]Row, error) {
	if len(rows) == 0 {
		return []Row{}, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	now := r.now()
	ids := make([]string, 0, len(rows))
	for _, nr := range rows {
		id := uuid.NewString()
		err := qtx.InsertShoppingItem(ctx, db.InsertShoppingItemParams{
			ID:           id,
			Name:         nr.Name,
			Quantity:     nr.Quantity,
			Unit:         nr.Unit,
			Completed:    nr.Completed,
			FromRecipeID: nullString(nr.FromRecipeID),
			CreatedAt:    now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to insert shopping item %q: %w", nr.Name, err)
		}
		ids = append(ids, id)
	}

	out := make([]Row, 0, len(ids))
	for _, id := range ids {
		it, err := qtx.GetShoppingItem(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read back shopping item %s: %w", id, err)
		}
		out = append(out, rowFromDB(it))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit shopping items: %w", err)
	}
	return out, nil
}

// UpdateItem applies p to id. A missing id yields a nil row and no error.
func (r *Repository) UpdateItem(ctx context.Context, id string, p Patch) (*Row, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	if p.Quantity != nil {
		n, err := qtx.UpdateShoppingItemQuantity(ctx, db.UpdateShoppingItemQuantityParams{Quantity: *p.Quantity, ID: id})
		if err != nil {
			return nil, fmt.Errorf("failed to update quantity of %s: %w", id, err)
		}
		if n == 0 {
			return nil, nil
		}
	}
	if p.Completed != nil {
		n, err := qtx.UpdateShoppingItemCompleted(ctx, db.UpdateShoppingItemCompletedParams{Completed: *p.Completed, ID: id})
		if err != nil {
			return nil, fmt.Errorf("failed to update completed of %s: %w", id, err)
		}
		if n == 0 {
			return nil, nil
		}
	}

	it, err := qtx.GetShoppingItem(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read back shopping item %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit shopping item %s: %w", id, err)
	}
	row := rowFromDB(it)
	return &row, nil
}

// DeleteItem removes an item by id.
func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	if err := r.queries.DeleteShoppingItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete shopping item %s: %w", id, err)
	}
	return nil
}

// DeleteCompleted removes every completed item.
func (r *Repository) DeleteCompleted(ctx context.Context) error {
	if err := r.queries.DeleteCompletedShoppingItems(ctx); err != nil {
		return fmt.Errorf("failed to delete completed shopping items: %w", err)
	}
	return nil
}

// DeleteItems removes the given ids. An empty set is a no-op.
func (r *Repository) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.queries.DeleteShoppingItemsByIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to delete %d shopping items: %w", len(ids), err)
	}
	return nil
}

func rowFromDB(it db.ShoppingItem) Row {
	return Row{
		ID:           shared.ID(it.ID),
		Name:         &it.Name,
		Quantity:     shared.Float(it.Quantity),
		Unit:         &it.Unit,
		Completed:    shared.Bool(it.Completed),
		FromRecipeID: stringPtr(it.FromRecipeID),
		CreatedAt:    shared.Time{Time: it.CreatedAt},
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
