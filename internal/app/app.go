package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"chefmate/internal/metrics"
	"chefmate/internal/recipe"
	"chefmate/internal/shared"
	"chefmate/internal/shopping"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrBusy is returned when a mutating action starts while another one is
	// still in flight.
	ErrBusy = errors.New("another change is still in progress")
	// ErrRecipeNotFound is returned for an unknown recipe id.
	ErrRecipeNotFound = errors.New("recipe not found")
)

// User-facing messages for recipe persistence failures.
const (
	MsgLoadFailed         = "Could not load data."
	MsgSaveRecipeFailed   = "Could not save the recipe."
	MsgDeleteRecipeFailed = "Could not delete the recipe."
)

// Action names recorded as metrics.
const (
	ActionLoad           = "load"
	ActionAddRecipe      = "add_recipe_to_list"
	ActionAddItem        = "add_item"
	ActionToggle         = "toggle_item"
	ActionRemove         = "remove_item"
	ActionClearCompleted = "clear_completed"
	ActionClearAll       = "clear_all"
	ActionSaveRecipe     = "save_recipe"
	ActionDeleteRecipe   = "delete_recipe"
)

// Recorder stores action metrics.
type Recorder interface {
	Record(ctx context.Context, m metrics.ActionMetric) error
}

// Options configures an App.
type Options struct {
	// DefaultUnit is used for manually added items without a unit.
	DefaultUnit string
	Logger      *zap.Logger
	Metrics     Recorder
}

// App holds the recipes and the shopping list in memory and is the only
// writer of both. The displayed state changes only after the store has
// confirmed a change.
type App struct {
	recipes     recipe.Store
	reconciler  *shopping.Reconciler
	metrics     Recorder
	logger      *zap.Logger
	defaultUnit string

	// busy serializes mutating actions.
	busy sync.Mutex

	mu         sync.RWMutex
	recipeList []recipe.Recipe
	items      []shopping.Item
}

// NewApp creates and initializes a new App instance.
func NewApp(recipes recipe.Store, items shopping.Store, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	unit := strings.TrimSpace(opts.DefaultUnit)
	if unit == "" {
		unit = "db"
	}
	return &App{
		recipes:     recipes,
		reconciler:  shopping.NewReconciler(items, logger),
		metrics:     opts.Metrics,
		logger:      logger,
		defaultUnit: unit,
		recipeList:  []recipe.Recipe{},
		items:       []shopping.Item{},
	}
}

// Load reads recipes and the shopping list concurrently and replaces the
// in-memory state.
func (a *App) Load(ctx context.Context) (err error) {
	if !a.busy.TryLock() {
		return ErrBusy
	}
	defer a.busy.Unlock()
	defer a.record(ctx, ActionLoad, 0, time.Now(), &err)

	var (
		rows  []recipe.Row
		items []shopping.Item
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = a.recipes.ListRecipes(gctx)
		if err != nil {
			a.logger.Error("failed to load recipes", zap.Error(err))
			return &shared.PersistenceError{Op: "list recipes", Message: MsgLoadFailed, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = a.reconciler.Load(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	a.mu.Lock()
	a.recipeList = recipe.Recipes(rows)
	a.items = items
	a.mu.Unlock()

	a.logger.Info("state loaded", zap.Int("recipes", len(rows)), zap.Int("items", len(items)))
	return nil
}

// AddRecipeToList scales a recipe to servings and merges its ingredients into
// the shopping list.
func (a *App) AddRecipeToList(ctx context.Context, recipeID string, servings int) (err error) {
	if !a.busy.TryLock() {
		return ErrBusy
	}
	defer a.busy.Unlock()

	began := time.Now()
	var incoming []shopping.Item
	defer func() { a.record(ctx, ActionAddRecipe, len(incoming), began, &err) }()

	r, ok := a.Recipe(recipeID)
	if !ok {
		return ErrRecipeNotFound
	}
	portions, err := recipe.Scale(r, servings)
	if err != nil {
		return err
	}
	incoming = shopping.FromPortions(r.ID, portions)
	return a.merge(ctx, incoming)
}

// AddItem adds a manual entry. A non-positive or non-finite quantity becomes
// one and an empty unit becomes the default unit.
func (a *App) AddItem(ctx context.Context, name string, quantity float64, unit string) (err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("item name is empty: %w", shared.ErrInvalidInput)
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		quantity = 1
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = a.defaultUnit
	}

	if !a.busy.TryLock() {
		return ErrBusy
	}
	defer a.busy.Unlock()
	defer a.record(ctx, ActionAddItem, 1, time.Now(), &err)

	return a.merge(ctx, []shopping.Item{{Name: name, Quantity: quantity, Unit: unit}})
}

// merge consolidates incoming into the current list and applies the plan.
// The caller holds busy.
func (a *App) merge(ctx context.Context, incoming []shopping.Item) error {
	current := a.snapshot()
	plan := shopping.Consolidate(current, incoming)
	next, err := a.reconciler.Apply(ctx, current, plan)
	if err != nil {
		return err
	}
	a.replaceItems(next)
	return nil
}

// ToggleItem flips the completion state of id.
func (a *App) ToggleItem(ctx context.Context, id string) error {
	return a.mutateList(ctx, ActionToggle, func(current []shopping.Item) ([]shopping.Item, error) {
		return a.reconciler.Toggle(ctx, current, id)
	})
}

// RemoveItem deletes id from the list.
func (a *App) RemoveItem(ctx context.Context, id string) error {
	return a.mutateList(ctx, ActionRemove, func(current []shopping.Item) ([]shopping.Item, error) {
		return a.reconciler.Remove(ctx, current, id)
	})
}

// ClearCompleted deletes every completed item.
func (a *App) ClearCompleted(ctx context.Context) error {
	return a.mutateList(ctx, ActionClearCompleted, func(current []shopping.Item) ([]shopping.Item, error) {
		return a.reconciler.ClearCompleted(ctx, current)
	})
}

// ClearAll deletes every item in the list.
func (a *App) ClearAll(ctx context.Context) error {
	return a.mutateList(ctx, ActionClearAll, func(current []shopping.Item) ([]shopping.Item, error) {
		return a.reconciler.ClearAll(ctx, current)
	})
}

func (a *App) mutateList(ctx context.Context, action string, fn func([]shopping.Item) ([]shopping.Item, error)) (err error) {
	if !a.busy.TryLock() {
		return ErrBusy
	}
	defer a.busy.Unlock()
	defer a.record(ctx, action, 1, time.Now(), &err)

	next, err := fn(a.snapshot())
	if err != nil {
		return err
	}
	a.replaceItems(next)
	return nil
}

// SaveRecipe inserts r when it has no id and updates it otherwise. It returns
// the stored recipe.
func (a *App) SaveRecipe(ctx context.Context, r recipe.Recipe) (saved recipe.Recipe, err error) {
	draft, err := r.Draft()
	if err != nil {
		return recipe.Recipe{}, err
	}

	if !a.busy.TryLock() {
		return recipe.Recipe{}, ErrBusy
	}
	defer a.busy.Unlock()
	defer a.record(ctx, ActionSaveRecipe, len(draft.Ingredients), time.Now(), &err)

	if r.ID == "" {
		row, err := a.recipes.InsertRecipe(ctx, draft)
		if err != nil {
			return recipe.Recipe{}, a.recipeFailure("insert recipe", MsgSaveRecipeFailed, err)
		}
		saved = row.Recipe()
		a.mu.Lock()
		a.recipeList = append([]recipe.Recipe{saved}, a.recipeList...)
		a.mu.Unlock()
		return saved, nil
	}

	row, err := a.recipes.UpdateRecipe(ctx, r.ID, draft)
	if err != nil {
		return recipe.Recipe{}, a.recipeFailure("update recipe "+r.ID, MsgSaveRecipeFailed, err)
	}
	if row == nil {
		return recipe.Recipe{}, ErrRecipeNotFound
	}
	saved = row.Recipe()

	a.mu.Lock()
	defer a.mu.Unlock()
	if i := slices.IndexFunc(a.recipeList, func(x recipe.Recipe) bool { return x.ID == saved.ID }); i >= 0 {
		a.recipeList[i] = saved
	} else {
		a.recipeList = append([]recipe.Recipe{saved}, a.recipeList...)
	}
	return saved, nil
}

// DeleteRecipe removes a recipe. Shopping items derived from it stay.
func (a *App) DeleteRecipe(ctx context.Context, id string) (err error) {
	if !a.busy.TryLock() {
		return ErrBusy
	}
	defer a.busy.Unlock()
	defer a.record(ctx, ActionDeleteRecipe, 0, time.Now(), &err)

	if err := a.recipes.DeleteRecipe(ctx, id); err != nil {
		return a.recipeFailure("delete recipe "+id, MsgDeleteRecipeFailed, err)
	}

	a.mu.Lock()
	a.recipeList = slices.DeleteFunc(a.recipeList, func(r recipe.Recipe) bool { return r.ID == id })
	a.mu.Unlock()
	return nil
}

// Recipes returns the recipes of course, newest first. An empty course or
// "all" returns every recipe.
func (a *App) Recipes(course string) []recipe.Recipe {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]recipe.Recipe, 0, len(a.recipeList))
	for _, r := range a.recipeList {
		if r.MatchesCourse(course) {
			out = append(out, r)
		}
	}
	return out
}

// Courses returns the distinct courses in first-seen order.
func (a *App) Courses() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	seen := make(map[string]bool)
	var courses []string
	for _, r := range a.recipeList {
		c := strings.TrimSpace(r.Course)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		courses = append(courses, c)
	}
	return courses
}

// Recipe returns the recipe with id.
func (a *App) Recipe(id string) (recipe.Recipe, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, r := range a.recipeList {
		if r.ID == id {
			return r, true
		}
	}
	return recipe.Recipe{}, false
}

// Items returns a copy of the shopping list with active items first. The
// relative order within each group is kept.
func (a *App) Items() []shopping.Item {
	items := a.snapshot()
	slices.SortStableFunc(items, func(x, y shopping.Item) int {
		switch {
		case x.Completed == y.Completed:
			return 0
		case !x.Completed:
			return -1
		default:
			return 1
		}
	})
	return items
}

// ActiveCount returns the number of items not yet completed.
func (a *App) ActiveCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return shopping.ActiveCount(a.items)
}

func (a *App) snapshot() []shopping.Item {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.items)
}

func (a *App) replaceItems(items []shopping.Item) {
	a.mu.Lock()
	a.items = items
	a.mu.Unlock()
}

func (a *App) recipeFailure(op, msg string, err error) error {
	a.logger.Error("recipe persistence failed", zap.String("op", op), zap.Error(err))
	return &shared.PersistenceError{Op: op, Message: msg, Err: err}
}

// record stores an action metric. Failures to record are logged only.
func (a *App) record(ctx context.Context, action string, items int, started time.Time, errp *error) {
	if a.metrics == nil {
		return
	}
	m := metrics.ActionMetric{
		Action:  action,
		Items:   items,
		Success: *errp == nil,
		Latency: time.Since(started),
	}
	if err := a.metrics.Record(context.WithoutCancel(ctx), m); err != nil {
		a.logger.Warn("failed to record metric", zap.String("action", action), zap.Error(err))
	}
}
