package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"chefmate/internal/shared"
)

// Store is the persistence boundary for the recipes table. Rows come back in
// wire shape and are mapped with Row.Recipe.
type Store interface {
	// ListRecipes returns every row, newest created_at first.
	ListRecipes(ctx context.Context) ([]Row, error)
	InsertRecipe(ctx context.Context, d Draft) (Row, error)
	// UpdateRecipe returns nil without error when id does not exist.
	UpdateRecipe(ctx context.Context, id string, d Draft) (*Row, error)
	// DeleteRecipe succeeds when id does not exist.
	DeleteRecipe(ctx context.Context, id string) error
}

// Row is a recipes row as returned by a store. Nullable columns are pointers.
type Row struct {
	ID           shared.ID       `json:"id"`
	Name         *string         `json:"name"`
	Course       *string         `json:"course"`
	Servings     shared.Float    `json:"servings"`
	Ingredients  json.RawMessage `json:"ingredients"`
	Instructions *string         `json:"instructions"`
	ExternalLink *string         `json:"external_link"`
	CreatedAt    shared.Time     `json:"created_at"`
}

// Recipe maps the row to a Recipe, applying the defaults for missing values:
// an empty course becomes DefaultCourse, ingredients that are not a JSON array
// become an empty list and a missing created_at becomes the current time.
func (r Row) Recipe() Recipe {
	course := shared.StringOr(r.Course, "")
	if course == "" {
		course = DefaultCourse
	}
	return Recipe{
		ID:           string(r.ID),
		Name:         shared.StringOr(r.Name, ""),
		Course:       course,
		Servings:     int(r.Servings),
		Ingredients:  decodeIngredients(r.Ingredients),
		Instructions: shared.StringOr(r.Instructions, ""),
		ExternalLink: shared.StringOr(r.ExternalLink, ""),
		CreatedAt:    r.CreatedAt.Or(time.Now),
	}
}

// Recipes maps a slice of rows.
func Recipes(rows []Row) []Recipe {
	out := make([]Recipe, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Recipe())
	}
	return out
}

func decodeIngredients(raw json.RawMessage) []Ingredient {
	raw = bytes.TrimSpace(raw)
	// Text columns hand back the array encoded as a JSON string.
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return []Ingredient{}
		}
		raw = bytes.TrimSpace([]byte(inner))
	}
	if len(raw) == 0 || raw[0] != '[' {
		return []Ingredient{}
	}
	var ingredients []Ingredient
	if err := json.Unmarshal(raw, &ingredients); err != nil {
		return []Ingredient{}
	}
	return ingredients
}
