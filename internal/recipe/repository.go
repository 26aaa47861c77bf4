package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	db "chefmate/internal/recipe/recipedb"
	"chefmate/internal/shared"

	"github.com/google/uuid"
)

// Repository is a SQLite-backed Store for recipes.
type Repository struct {
	queries *db.Queries
	db      *sql.DB // Direct database access for transactions if needed
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

// ListRecipes retrieves all recipes, newest first.
func (r *Repository) ListRecipes(ctx context.Context) ([]Row, error) {
	dbRecipes, err := r.queries.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	rows := make([]Row, 0, len(dbRecipes))
	for _, dbRec := range dbRecipes {
		rows = append(rows, rowFromDB(dbRec))
	}
	return rows, nil
}

// InsertRecipe stores a new recipe and returns the stored row.
func (r *Repository) InsertRecipe(ctx context.Context, d Draft) (Row, error) {
	ingredientsJSON, err := json.Marshal(ingredientsOrEmpty(d.Ingredients))
	if err != nil {
		return Row{}, fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	id := uuid.NewString()
	err = r.queries.InsertRecipe(ctx, db.InsertRecipeParams{
		ID:           id,
		Name:         d.Name,
		Course:       nullString(&d.Course),
		Servings:     int64(d.Servings),
		Ingredients:  string(ingredientsJSON),
		Instructions: nullString(&d.Instructions),
		ExternalLink: nullString(d.ExternalLink),
		CreatedAt:    r.now(),
	})
	if err != nil {
		return Row{}, fmt.Errorf("failed to insert recipe: %w", err)
	}

	dbRec, err := r.queries.GetRecipe(ctx, id)
	if err != nil {
		return Row{}, fmt.Errorf("failed to read back recipe %s: %w", id, err)
	}
	return rowFromDB(dbRec), nil
}

// UpdateRecipe replaces the writable fields of a recipe. A missing id yields
// a nil row and no error.
func (r *Repository) UpdateRecipe(ctx context.Context, id string, d Draft) (*Row, error) {
	ingredientsJSON, err := json.Marshal(ingredientsOrEmpty(d.Ingredients))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	affected, err := r.queries.UpdateRecipe(ctx, db.UpdateRecipeParams{
		Name:         d.Name,
		Course:       nullString(&d.Course),
		Servings:     int64(d.Servings),
		Ingredients:  string(ingredientsJSON),
		Instructions: nullString(&d.Instructions),
		ExternalLink: nullString(d.ExternalLink),
		ID:           id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe %s: %w", id, err)
	}
	if affected == 0 {
		return nil, nil
	}

	dbRec, err := r.queries.GetRecipe(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Deleted in between
		}
		return nil, fmt.Errorf("failed to read back recipe %s: %w", id, err)
	}
	row := rowFromDB(dbRec)
	return &row, nil
}

// DeleteRecipe removes a recipe by id.
func (r *Repository) DeleteRecipe(ctx context.Context, id string) error {
	if err := r.queries.DeleteRecipe(ctx, id); err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	return nil
}

func rowFromDB(rec db.Recipe) Row {
	return Row{
		ID:           shared.ID(rec.ID),
		Name:         &rec.Name,
		Course:       stringPtr(rec.Course),
		Servings:     shared.Float(rec.Servings),
		Ingredients:  json.RawMessage(rec.Ingredients),
		Instructions: stringPtr(rec.Instructions),
		ExternalLink: stringPtr(rec.ExternalLink),
		CreatedAt:    shared.Time{Time: rec.CreatedAt},
	}
}

func ingredientsOrEmpty(ingredients []Ingredient) []Ingredient {
	if ingredients == nil {
		return []Ingredient{}
	}
	return ingredients
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
