package shopping

import "slices"

// Update sets the quantity of an existing list entry.
type Update struct {
	ID       string
	Quantity float64
}

// Plan is the set of writes that brings the persisted list in line with a
// consolidated batch.
type Plan struct {
	Updates []Update
	Inserts []Item
}

// Empty reports whether the plan has nothing to write.
func (p Plan) Empty() bool {
	return len(p.Updates) == 0 && len(p.Inserts) == 0
}

// Consolidate folds incoming into existing. Each incoming item, in order, is
// added to the first active entry with the same merge key; if there is none it
// becomes a new entry that later items of the same batch can merge into.
// Completed entries never receive quantities. Every existing entry touched by
// the batch appears in Updates once, carrying its final quantity.
func Consolidate(existing, incoming []Item) Plan {
	working := slices.Clone(existing)
	// insertAt maps a working index to its position in plan.Inserts, -1 for
	// entries that were already persisted.
	insertAt := make([]int, len(working), len(working)+len(incoming))
	for i := range insertAt {
		insertAt[i] = -1
	}
	updateAt := make(map[int]int)

	var plan Plan
	for _, in := range incoming {
		key := in.Key()
		idx := slices.IndexFunc(working, func(it Item) bool {
			return it.Active() && it.Key() == key
		})

		if idx < 0 {
			in.Completed = false
			working = append(working, in)
			insertAt = append(insertAt, len(plan.Inserts))
			plan.Inserts = append(plan.Inserts, in)
			continue
		}

		working[idx].Quantity += in.Quantity
		qty := working[idx].Quantity

		if pos := insertAt[idx]; pos >= 0 {
			plan.Inserts[pos].Quantity = qty
			continue
		}
		if pos, ok := updateAt[idx]; ok {
			plan.Updates[pos].Quantity = qty
			continue
		}
		updateAt[idx] = len(plan.Updates)
		plan.Updates = append(plan.Updates, Update{ID: working[idx].ID, Quantity: qty})
	}
	return plan
}
