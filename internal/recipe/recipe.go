package recipe

import (
	"encoding/json"
	"strings"
	"time"

	"chefmate/internal/shared"

	"github.com/google/uuid"
)

// DefaultCourse is the category assigned to recipes stored without one.
const DefaultCourse = "main"

// Ingredient is a single line of a recipe. Quantities are per Recipe.Servings.
type Ingredient struct {
	ID       string  `json:"id" yaml:"id,omitempty"`
	Name     string  `json:"name" yaml:"name"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	Unit     string  `json:"unit" yaml:"unit"`
}

// UnmarshalJSON accepts the loosely typed ingredient objects found in stored
// rows: quantities may arrive as strings or null, names and units as null.
func (i *Ingredient) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID       shared.ID    `json:"id"`
		Name     *string      `json:"name"`
		Quantity shared.Float `json:"quantity"`
		Unit     *string      `json:"unit"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*i = Ingredient{
		ID:       string(raw.ID),
		Name:     shared.StringOr(raw.Name, ""),
		Quantity: float64(raw.Quantity),
		Unit:     shared.StringOr(raw.Unit, ""),
	}
	return nil
}

// Recipe is a stored recipe. Servings is the base scale for Scale.
type Recipe struct {
	ID           string       `json:"id" yaml:"id,omitempty"`
	Name         string       `json:"name" yaml:"name"`
	Course       string       `json:"course" yaml:"course,omitempty"`
	Servings     int          `json:"servings" yaml:"servings"`
	Ingredients  []Ingredient `json:"ingredients" yaml:"ingredients"`
	Instructions string       `json:"instructions" yaml:"instructions,omitempty"`
	ExternalLink string       `json:"externalLink,omitempty" yaml:"external_link,omitempty"`
	CreatedAt    time.Time    `json:"createdAt" yaml:"created_at,omitempty"`
}

// Draft is the writable part of a recipe, shaped as the insert/update payload
// of the recipes table.
type Draft struct {
	Name         string       `json:"name"`
	Course       string       `json:"course"`
	Servings     int          `json:"servings"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions string       `json:"instructions"`
	ExternalLink *string      `json:"external_link"`
}

// Draft normalizes r into a payload ready to be written. Blank ingredient rows
// are dropped, missing ingredient ids are assigned, an empty course falls back
// to DefaultCourse and servings below one become one. A recipe without a name
// is rejected with shared.ErrInvalidInput.
func (r Recipe) Draft() (Draft, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return Draft{}, shared.ErrInvalidInput
	}

	course := strings.TrimSpace(r.Course)
	if course == "" {
		course = DefaultCourse
	}

	servings := r.Servings
	if servings < 1 {
		servings = 1
	}

	ingredients := make([]Ingredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			continue
		}
		if ing.ID == "" {
			ing.ID = uuid.NewString()
		}
		ingredients = append(ingredients, ing)
	}

	d := Draft{
		Name:         name,
		Course:       course,
		Servings:     servings,
		Ingredients:  ingredients,
		Instructions: r.Instructions,
	}
	if link := strings.TrimSpace(r.ExternalLink); link != "" {
		d.ExternalLink = &link
	}
	return d, nil
}

// MatchesCourse reports whether r belongs to course, compared trimmed and
// case-insensitively. An empty filter or "all" matches every recipe.
func (r Recipe) MatchesCourse(course string) bool {
	course = strings.TrimSpace(course)
	if course == "" || strings.EqualFold(course, "all") {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Course), course)
}
