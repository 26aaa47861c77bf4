package shopping

import (
	"strings"
	"time"

	"chefmate/internal/recipe"
)

// Item is an entry of the shopping list. Name, Unit and FromRecipeID are fixed
// at creation; Quantity changes only by merging and Completed by toggling.
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	Completed    bool      `json:"completed"`
	FromRecipeID string    `json:"fromRecipeId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MergeKey identifies "the same thing to buy": name and unit, trimmed and
// compared case-insensitively.
func MergeKey(name, unit string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + strings.ToLower(strings.TrimSpace(unit))
}

// Key returns the merge key of the item.
func (i Item) Key() string {
	return MergeKey(i.Name, i.Unit)
}

// Active reports whether the item can still receive merged quantities.
func (i Item) Active() bool {
	return !i.Completed
}

// FromPortions turns scaled recipe portions into list candidates that remember
// which recipe produced them.
func FromPortions(recipeID string, portions []recipe.Portion) []Item {
	items := make([]Item, 0, len(portions))
	for _, p := range portions {
		items = append(items, Item{
			Name:         p.Name,
			Quantity:     p.Quantity,
			Unit:         p.Unit,
			FromRecipeID: recipeID,
		})
	}
	return items
}

// ActiveCount returns the number of items not yet completed.
func ActiveCount(items []Item) int {
	n := 0
	for _, it := range items {
		if it.Active() {
			n++
		}
	}
	return n
}
