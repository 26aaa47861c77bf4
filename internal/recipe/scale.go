package recipe

import (
	"errors"
	"math"
	"strings"
)

// ErrNoValidIngredients is returned by Scale when no ingredient survives
// filtering, so nothing could be added to a shopping list.
var ErrNoValidIngredients = errors.New("recipe has no valid ingredients")

// Portion is an ingredient scaled to a serving count.
type Portion struct {
	Name     string
	Quantity float64
	Unit     string
}

// Scale converts the ingredients of r to desiredServings. A non-positive base
// serving count is treated as one and desiredServings is raised to at least
// one. Ingredients with a blank name or a quantity that is not a finite
// positive number are skipped.
func Scale(r Recipe, desiredServings int) ([]Portion, error) {
	base := r.Servings
	if base <= 0 {
		base = 1
	}
	desired := max(1, desiredServings)
	factor := float64(desired) / float64(base)

	portions := make([]Portion, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" || !validQuantity(ing.Quantity) {
			continue
		}
		portions = append(portions, Portion{
			Name:     name,
			Quantity: ing.Quantity * factor,
			Unit:     strings.TrimSpace(ing.Unit),
		})
	}

	if len(portions) == 0 {
		return nil, ErrNoValidIngredients
	}
	return portions, nil
}

func validQuantity(q float64) bool {
	return !math.IsNaN(q) && !math.IsInf(q, 0) && q > 0
}
