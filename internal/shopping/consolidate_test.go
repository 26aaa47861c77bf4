package shopping

import (
	"testing"

	"chefmate/internal/recipe"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestMergeKey(t *testing.T) {
	if MergeKey(" Flour ", "G") != MergeKey("flour", "g") {
		t.Error("Expected keys to ignore case and surrounding whitespace")
	}
	if MergeKey("flour", "g") == MergeKey("flour", "kg") {
		t.Error("Expected different units to produce different keys")
	}
	if MergeKey("ab", "c") == MergeKey("a", "bc") {
		t.Error("Expected name/unit boundary to be part of the key")
	}
}

func TestConsolidate(t *testing.T) {
	ignoreTime := cmpopts.IgnoreFields(Item{}, "CreatedAt")

	tests := []struct {
		name     string
		existing []Item
		incoming []Item
		want     Plan
	}{
		{
			name:     "empty list inserts everything",
			incoming: []Item{{Name: "flour", Quantity: 400, Unit: "g"}, {Name: "egg", Quantity: 4, Unit: "db"}},
			want: Plan{Inserts: []Item{
				{Name: "flour", Quantity: 400, Unit: "g"},
				{Name: "egg", Quantity: 4, Unit: "db"},
			}},
		},
		{
			name: "matching active entries are updated",
			existing: []Item{
				{ID: "1", Name: "egg", Quantity: 4, Unit: "db"},
				{ID: "2", Name: "flour", Quantity: 400, Unit: "g"},
			},
			incoming: []Item{{Name: "Flour", Quantity: 400, Unit: "G"}, {Name: "egg", Quantity: 4, Unit: "db"}},
			want: Plan{Updates: []Update{
				{ID: "2", Quantity: 800},
				{ID: "1", Quantity: 8},
			}},
		},
		{
			name:     "two equal incoming items on an empty list become one insert",
			incoming: []Item{{Name: "milk", Quantity: 1, Unit: "l"}, {Name: "MILK", Quantity: 2, Unit: "L"}},
			want:     Plan{Inserts: []Item{{Name: "milk", Quantity: 3, Unit: "l"}}},
		},
		{
			name:     "completed match creates a new entry",
			existing: []Item{{ID: "1", Name: "milk", Quantity: 1, Unit: "l", Completed: true}},
			incoming: []Item{{Name: "milk", Quantity: 2, Unit: "l"}},
			want:     Plan{Inserts: []Item{{Name: "milk", Quantity: 2, Unit: "l"}}},
		},
		{
			name:     "active entry wins over completed duplicate",
			existing: []Item{{ID: "1", Name: "milk", Quantity: 1, Unit: "l", Completed: true}, {ID: "2", Name: "milk", Quantity: 1, Unit: "l"}},
			incoming: []Item{{Name: "milk", Quantity: 2, Unit: "l"}},
			want:     Plan{Updates: []Update{{ID: "2", Quantity: 3}}},
		},
		{
			name:     "several merges into one row yield one update",
			existing: []Item{{ID: "1", Name: "sugar", Quantity: 10, Unit: "g"}},
			incoming: []Item{
				{Name: "sugar", Quantity: 5, Unit: "g"},
				{Name: "salt", Quantity: 1, Unit: "tk"},
				{Name: "sugar", Quantity: 7, Unit: "g"},
			},
			want: Plan{
				Updates: []Update{{ID: "1", Quantity: 22}},
				Inserts: []Item{{Name: "salt", Quantity: 1, Unit: "tk"}},
			},
		},
		{
			name:     "different units never merge",
			existing: []Item{{ID: "1", Name: "flour", Quantity: 1, Unit: "kg"}},
			incoming: []Item{{Name: "flour", Quantity: 200, Unit: "g"}},
			want:     Plan{Inserts: []Item{{Name: "flour", Quantity: 200, Unit: "g"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Consolidate(tt.existing, tt.incoming)
			if diff := cmp.Diff(tt.want, got, ignoreTime, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Consolidate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConsolidateDoesNotMutateInputs(t *testing.T) {
	existing := []Item{{ID: "1", Name: "egg", Quantity: 2, Unit: "db"}}
	incoming := []Item{{Name: "egg", Quantity: 2, Unit: "db"}, {Name: "egg", Quantity: 1, Unit: "db"}}

	Consolidate(existing, incoming)

	if existing[0].Quantity != 2 {
		t.Errorf("Expected existing quantity to stay 2, got %v", existing[0].Quantity)
	}
	if incoming[0].Quantity != 2 || incoming[1].Quantity != 1 {
		t.Errorf("Expected incoming to stay untouched, got %+v", incoming)
	}
}

// applyLocally folds a plan into a list the way a store would.
func applyLocally(list []Item, plan Plan, nextID func() string) []Item {
	out := make([]Item, 0, len(list)+len(plan.Inserts))
	byID := make(map[string]float64)
	for _, u := range plan.Updates {
		byID[u.ID] = u.Quantity
	}
	for _, in := range plan.Inserts {
		in.ID = nextID()
		out = append(out, in)
	}
	for _, it := range list {
		if q, ok := byID[it.ID]; ok {
			it.Quantity = q
		}
		out = append(out, it)
	}
	return out
}

func quantitiesByKey(items []Item) map[string]float64 {
	m := make(map[string]float64)
	for _, it := range items {
		if it.Active() {
			m[it.Key()] += it.Quantity
		}
	}
	return m
}

func TestConsolidateSplitBatches(t *testing.T) {
	existing := []Item{{ID: "a", Name: "flour", Quantity: 100, Unit: "g"}}
	batch := []Item{
		{Name: "flour", Quantity: 50, Unit: "g"},
		{Name: "egg", Quantity: 2, Unit: "db"},
		{Name: "Egg", Quantity: 1, Unit: "DB"},
		{Name: "milk", Quantity: 1, Unit: "l"},
	}

	n := 0
	nextID := func() string { n++; return string(rune('A' + n)) }

	whole := applyLocally(existing, Consolidate(existing, batch), nextID)

	first := applyLocally(existing, Consolidate(existing, batch[:2]), nextID)
	split := applyLocally(first, Consolidate(first, batch[2:]), nextID)

	if diff := cmp.Diff(quantitiesByKey(whole), quantitiesByKey(split)); diff != "" {
		t.Errorf("Split batches disagree with one batch (-whole +split):\n%s", diff)
	}
	if len(whole) != len(split) {
		t.Errorf("Expected %d entries, got %d", len(whole), len(split))
	}
}

func TestConsolidateRecipeTwice(t *testing.T) {
	r := recipe.Recipe{
		ID:       "r1",
		Name:     "Pancakes",
		Servings: 2,
		Ingredients: []recipe.Ingredient{
			{Name: "flour", Quantity: 200, Unit: "g"},
			{Name: "egg", Quantity: 2, Unit: "db"},
		},
	}
	portions, err := recipe.Scale(r, 4)
	if err != nil {
		t.Fatalf("Scale failed: %v", err)
	}
	incoming := FromPortions(r.ID, portions)

	n := 0
	nextID := func() string { n++; return string(rune('0' + n)) }

	list := applyLocally(nil, Consolidate(nil, incoming), nextID)
	if len(list) != 2 {
		t.Fatalf("Expected 2 entries after first add, got %d", len(list))
	}

	plan := Consolidate(list, incoming)
	if len(plan.Inserts) != 0 {
		t.Errorf("Expected no inserts on second add, got %+v", plan.Inserts)
	}
	list = applyLocally(list, plan, nextID)

	want := map[string]float64{
		MergeKey("flour", "g"): 800,
		MergeKey("egg", "db"):  8,
	}
	if diff := cmp.Diff(want, quantitiesByKey(list)); diff != "" {
		t.Errorf("Unexpected quantities (-want +got):\n%s", diff)
	}
	for _, it := range list {
		if it.FromRecipeID != "r1" {
			t.Errorf("Expected fromRecipeId r1, got %q", it.FromRecipeID)
		}
	}
}
