package shopping

import (
	"context"
	"time"

	"chefmate/internal/shared"
)

// Store is the persistence boundary for the shopping_items table.
type Store interface {
	// ListItems returns every row, newest created_at first.
	ListItems(ctx context.Context) ([]Row, error)
	// InsertItems stores rows and returns them with their assigned id and created_at.
	InsertItems(ctx context.Context, rows []NewRow) ([]Row, error)
	// UpdateItem applies p and returns the stored row, or nil when id does not exist.
	UpdateItem(ctx context.Context, id string, p Patch) (*Row, error)
	// DeleteItem succeeds when id does not exist.
	DeleteItem(ctx context.Context, id string) error
	DeleteCompleted(ctx context.Context) error
	// DeleteItems removes every row whose id is in ids.
	DeleteItems(ctx context.Context, ids []string) error
}

// Row is a shopping_items row as returned by a store.
type Row struct {
	ID           shared.ID    `json:"id"`
	Name         *string      `json:"name"`
	Quantity     shared.Float `json:"quantity"`
	Unit         *string      `json:"unit"`
	Completed    shared.Bool  `json:"completed"`
	FromRecipeID *string      `json:"from_recipe_id"`
	CreatedAt    shared.Time  `json:"created_at"`
}

// Item maps the row to its canonical form: null quantity is 0, null unit and
// name are empty, null completed is false.
func (r Row) Item() Item {
	return Item{
		ID:           string(r.ID),
		Name:         shared.StringOr(r.Name, ""),
		Quantity:     float64(r.Quantity),
		Unit:         shared.StringOr(r.Unit, ""),
		Completed:    bool(r.Completed),
		FromRecipeID: shared.StringOr(r.FromRecipeID, ""),
		CreatedAt:    r.CreatedAt.Or(time.Now),
	}
}

// Items maps a slice of rows.
func Items(rows []Row) []Item {
	out := make([]Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Item())
	}
	return out
}

// NewRow is the insert payload of a shopping_items row.
type NewRow struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Completed    bool    `json:"completed"`
	FromRecipeID *string `json:"from_recipe_id"`
}

// NewRow builds the insert payload for a new, active entry.
func (i Item) NewRow() NewRow {
	row := NewRow{
		Name:     i.Name,
		Quantity: i.Quantity,
		Unit:     i.Unit,
	}
	if i.FromRecipeID != "" {
		id := i.FromRecipeID
		row.FromRecipeID = &id
	}
	return row
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Quantity  *float64 `json:"quantity,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
}
