package shopping

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"chefmate/internal/shared"

	"go.uber.org/zap"
)

// ErrItemGone means a list entry the plan wanted to update no longer exists
// in the store, so the plan was computed from a stale list.
var ErrItemGone = errors.New("shopping item no longer exists")

// User-facing messages attached to persistence failures.
const (
	MsgSyncFailed   = "Could not update the shopping list."
	MsgToggleFailed = "Could not change the item."
	MsgDeleteFailed = "Could not delete the item."
	MsgClearFailed  = "Could not clear the list."
)

// Reconciler writes list changes through a Store and maps the rows it gets
// back into Items. It never mutates the slices it is given; callers replace
// their list with the returned one only when the error is nil.
type Reconciler struct {
	store  Store
	logger *zap.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(store Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, logger: logger}
}

// Load reads the persisted list.
func (r *Reconciler) Load(ctx context.Context) ([]Item, error) {
	rows, err := r.store.ListItems(ctx)
	if err != nil {
		return nil, r.fail("list", MsgSyncFailed, err)
	}
	return Items(rows), nil
}

type appliedWrite struct {
	id          string
	inserted    bool
	oldQuantity float64
}

// Apply executes plan one row at a time, updates first. If any write fails
// the remaining ones are skipped, the writes already made are rolled back on
// a best-effort basis and a *shared.PersistenceError is returned; current is
// then still the list to display. On success the returned list holds the
// inserted rows first, newest first, followed by current with updated rows
// replaced in place.
func (r *Reconciler) Apply(ctx context.Context, current []Item, plan Plan) ([]Item, error) {
	if plan.Empty() {
		return slices.Clone(current), nil
	}

	before := make(map[string]Item, len(current))
	for _, it := range current {
		before[it.ID] = it
	}

	var done []appliedWrite
	abort := func(op string, err error) ([]Item, error) {
		r.rollback(ctx, done)
		return nil, r.fail(op, MsgSyncFailed, err)
	}

	updated := make(map[string]Item, len(plan.Updates))
	for _, u := range plan.Updates {
		qty := u.Quantity
		row, err := r.store.UpdateItem(ctx, u.ID, Patch{Quantity: &qty})
		if err != nil {
			return abort("update "+u.ID, err)
		}
		if row == nil {
			return abort("update "+u.ID, ErrItemGone)
		}
		done = append(done, appliedWrite{id: u.ID, oldQuantity: before[u.ID].Quantity})
		updated[u.ID] = row.Item()
	}

	inserted := make([]Item, 0, len(plan.Inserts))
	for _, in := range plan.Inserts {
		rows, err := r.store.InsertItems(ctx, []NewRow{in.NewRow()})
		if err != nil {
			return abort("insert "+in.Name, err)
		}
		if len(rows) != 1 {
			return abort("insert "+in.Name, fmt.Errorf("expected 1 inserted row, got %d", len(rows)))
		}
		item := rows[0].Item()
		done = append(done, appliedWrite{id: item.ID, inserted: true})
		inserted = append(inserted, item)
	}

	next := make([]Item, 0, len(inserted)+len(current))
	for i := len(inserted) - 1; i >= 0; i-- {
		next = append(next, inserted[i])
	}
	for _, it := range current {
		if u, ok := updated[it.ID]; ok {
			it = u
		}
		next = append(next, it)
	}

	r.logger.Debug("shopping list batch applied",
		zap.Int("updated", len(plan.Updates)),
		zap.Int("inserted", len(plan.Inserts)))
	return next, nil
}

// rollback undoes writes of an aborted batch, newest first. Failures are
// logged only: the batch error has already been decided.
func (r *Reconciler) rollback(ctx context.Context, done []appliedWrite) {
	ctx = context.WithoutCancel(ctx)
	for i := len(done) - 1; i >= 0; i-- {
		w := done[i]
		var err error
		if w.inserted {
			err = r.store.DeleteItem(ctx, w.id)
		} else {
			qty := w.oldQuantity
			_, err = r.store.UpdateItem(ctx, w.id, Patch{Quantity: &qty})
		}
		if err != nil {
			r.logger.Warn("failed to roll back shopping item", zap.String("id", w.id), zap.Bool("inserted", w.inserted), zap.Error(err))
		}
	}
}

// Toggle flips the completion flag of id. Unknown ids leave the list as is.
func (r *Reconciler) Toggle(ctx context.Context, current []Item, id string) ([]Item, error) {
	idx := slices.IndexFunc(current, func(it Item) bool { return it.ID == id })
	if idx < 0 {
		return slices.Clone(current), nil
	}

	completed := !current[idx].Completed
	row, err := r.store.UpdateItem(ctx, id, Patch{Completed: &completed})
	if err != nil {
		return nil, r.fail("toggle "+id, MsgToggleFailed, err)
	}

	next := slices.Clone(current)
	if row != nil {
		next[idx] = row.Item()
	}
	return next, nil
}

// Remove deletes id from the store and the list.
func (r *Reconciler) Remove(ctx context.Context, current []Item, id string) ([]Item, error) {
	if err := r.store.DeleteItem(ctx, id); err != nil {
		return nil, r.fail("delete "+id, MsgDeleteFailed, err)
	}
	return slices.DeleteFunc(slices.Clone(current), func(it Item) bool { return it.ID == id }), nil
}

// ClearCompleted deletes every completed item.
func (r *Reconciler) ClearCompleted(ctx context.Context, current []Item) ([]Item, error) {
	if err := r.store.DeleteCompleted(ctx); err != nil {
		return nil, r.fail("delete completed", MsgClearFailed, err)
	}
	return slices.DeleteFunc(slices.Clone(current), func(it Item) bool { return it.Completed }), nil
}

// ClearAll deletes every item currently in the list.
func (r *Reconciler) ClearAll(ctx context.Context, current []Item) ([]Item, error) {
	if len(current) == 0 {
		return []Item{}, nil
	}
	ids := make([]string, 0, len(current))
	for _, it := range current {
		ids = append(ids, it.ID)
	}
	if err := r.store.DeleteItems(ctx, ids); err != nil {
		return nil, r.fail("delete all", MsgClearFailed, err)
	}
	return []Item{}, nil
}

func (r *Reconciler) fail(op, msg string, err error) error {
	r.logger.Error("shopping list persistence failed", zap.String("op", op), zap.Error(err))
	return &shared.PersistenceError{Op: op, Message: msg, Err: err}
}
