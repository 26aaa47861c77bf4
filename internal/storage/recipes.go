package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"chefmate/internal/recipe"
	"chefmate/internal/shared"

	"github.com/google/uuid"
)

func newID() string { return uuid.NewString() }

func recipeID(r recipe.Row) string { return string(r.ID) }

// ListRecipes returns the stored recipes, newest first.
func (s *Store) ListRecipes(_ context.Context) ([]recipe.Row, error) {
	return read[recipe.Row](s, recipesFile)
}

// InsertRecipe stores d under a new id.
func (s *Store) InsertRecipe(_ context.Context, d recipe.Draft) (recipe.Row, error) {
	row, err := recipeRow(d)
	if err != nil {
		return recipe.Row{}, err
	}
	row.ID = shared.ID(s.newID())
	row.CreatedAt = shared.Time{Time: s.now()}

	err = mutate(s, recipesFile, func(rows []recipe.Row) ([]recipe.Row, bool, error) {
		return append([]recipe.Row{row}, rows...), true, nil
	})
	if err != nil {
		return recipe.Row{}, fmt.Errorf("failed to insert recipe: %w", err)
	}
	return row, nil
}

// UpdateRecipe replaces the writable fields of id, keeping id and created_at.
func (s *Store) UpdateRecipe(_ context.Context, id string, d recipe.Draft) (*recipe.Row, error) {
	next, err := recipeRow(d)
	if err != nil {
		return nil, err
	}

	var updated *recipe.Row
	err = mutate(s, recipesFile, func(rows []recipe.Row) ([]recipe.Row, bool, error) {
		for i := range rows {
			if recipeID(rows[i]) != id {
				continue
			}
			next.ID = rows[i].ID
			next.CreatedAt = rows[i].CreatedAt
			rows[i] = next
			updated = &next
			return rows, true, nil
		}
		return rows, false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe %s: %w", id, err)
	}
	return updated, nil
}

// DeleteRecipe removes id when present.
func (s *Store) DeleteRecipe(_ context.Context, id string) error {
	err := mutate(s, recipesFile, func(rows []recipe.Row) ([]recipe.Row, bool, error) {
		rows, changed := removeIDs(rows, recipeID, []string{id})
		return rows, changed, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	return nil
}

func recipeRow(d recipe.Draft) (recipe.Row, error) {
	ingredients := d.Ingredients
	if ingredients == nil {
		ingredients = []recipe.Ingredient{}
	}
	raw, err := json.Marshal(ingredients)
	if err != nil {
		return recipe.Row{}, fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	name, course, instructions := d.Name, d.Course, d.Instructions
	return recipe.Row{
		Name:         &name,
		Course:       &course,
		Servings:     shared.Float(d.Servings),
		Ingredients:  raw,
		Instructions: &instructions,
		ExternalLink: d.ExternalLink,
	}, nil
}
