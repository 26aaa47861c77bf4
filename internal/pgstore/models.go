package pgstore

import (
	"database/sql"
	"encoding/json"
	"time"

	"chefmate/internal/recipe"
	"chefmate/internal/shared"
	"chefmate/internal/shopping"
)

// RecipeModel is the recipes table.
type RecipeModel struct {
	ID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string         `gorm:"type:text;not null"`
	Course       sql.NullString `gorm:"type:text"`
	Servings     int            `gorm:"not null;default:1"`
	Ingredients  string         `gorm:"type:jsonb;not null;default:'[]'"`
	Instructions sql.NullString `gorm:"type:text"`
	ExternalLink sql.NullString `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"not null;default:now();index"`
}

func (RecipeModel) TableName() string {
	return "recipes"
}

// ShoppingItemModel is the shopping_items table.
type ShoppingItemModel struct {
	ID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string         `gorm:"type:text;not null"`
	Quantity     float64        `gorm:"type:double precision;not null;default:0"`
	Unit         string         `gorm:"type:text;not null;default:''"`
	Completed    bool           `gorm:"not null;default:false;index"`
	FromRecipeID sql.NullString `gorm:"type:uuid"`
	CreatedAt    time.Time      `gorm:"not null;default:now();index"`
}

func (ShoppingItemModel) TableName() string {
	return "shopping_items"
}

func recipeModel(d recipe.Draft) (RecipeModel, error) {
	ingredients := d.Ingredients
	if ingredients == nil {
		ingredients = []recipe.Ingredient{}
	}
	raw, err := json.Marshal(ingredients)
	if err != nil {
		return RecipeModel{}, err
	}
	return RecipeModel{
		Name:         d.Name,
		Course:       nullString(&d.Course),
		Servings:     d.Servings,
		Ingredients:  string(raw),
		Instructions: nullString(&d.Instructions),
		ExternalLink: nullString(d.ExternalLink),
	}, nil
}

func (m RecipeModel) row() recipe.Row {
	name := m.Name
	return recipe.Row{
		ID:           shared.ID(m.ID),
		Name:         &name,
		Course:       stringPtr(m.Course),
		Servings:     shared.Float(m.Servings),
		Ingredients:  json.RawMessage(m.Ingredients),
		Instructions: stringPtr(m.Instructions),
		ExternalLink: stringPtr(m.ExternalLink),
		CreatedAt:    shared.Time{Time: m.CreatedAt},
	}
}

func itemModel(nr shopping.NewRow) ShoppingItemModel {
	return ShoppingItemModel{
		Name:         nr.Name,
		Quantity:     nr.Quantity,
		Unit:         nr.Unit,
		Completed:    nr.Completed,
		FromRecipeID: nullString(nr.FromRecipeID),
	}
}

func (m ShoppingItemModel) row() shopping.Row {
	name, unit := m.Name, m.Unit
	return shopping.Row{
		ID:           shared.ID(m.ID),
		Name:         &name,
		Quantity:     shared.Float(m.Quantity),
		Unit:         &unit,
		Completed:    shared.Bool(m.Completed),
		FromRecipeID: stringPtr(m.FromRecipeID),
		CreatedAt:    shared.Time{Time: m.CreatedAt},
	}
}

// patchColumns maps a patch to the columns it changes.
func patchColumns(p shopping.Patch) map[string]interface{} {
	cols := make(map[string]interface{}, 2)
	if p.Quantity != nil {
		cols["quantity"] = *p.Quantity
	}
	if p.Completed != nil {
		cols["completed"] = *p.Completed
	}
	return cols
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
