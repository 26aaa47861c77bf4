package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"chefmate/internal/config"
	"chefmate/internal/metrics"
	"chefmate/internal/recipe"
	"chefmate/internal/shared"
	"chefmate/internal/shopping"
	"chefmate/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memRecorder struct {
	mu      sync.Mutex
	records []metrics.ActionMetric
}

func (r *memRecorder) Record(_ context.Context, m metrics.ActionMetric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, m)
	return nil
}

func newTestApp(t *testing.T) (*App, *storage.Store, *memRecorder) {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)
	rec := &memRecorder{}
	a := NewApp(store, store, Options{Metrics: rec})
	require.NoError(t, a.Load(context.Background()))
	return a, store, rec
}

func pancakes() recipe.Recipe {
	return recipe.Recipe{
		Name:     "Pancakes",
		Course:   "Dessert",
		Servings: 2,
		Ingredients: []recipe.Ingredient{
			{Name: "flour", Quantity: 200, Unit: "g"},
			{Name: "egg", Quantity: 2, Unit: "db"},
		},
	}
}

func quantities(items []shopping.Item) map[string]float64 {
	out := make(map[string]float64)
	for _, it := range items {
		out[it.Name+"/"+it.Unit] = it.Quantity
	}
	return out
}

func TestAddRecipeToListTwice(t *testing.T) {
	ctx := context.Background()
	a, _, rec := newTestApp(t)

	saved, err := a.SaveRecipe(ctx, pancakes())
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	require.NoError(t, a.AddRecipeToList(ctx, saved.ID, 4))
	assert.Equal(t, map[string]float64{"flour/g": 400, "egg/db": 4}, quantities(a.Items()))

	require.NoError(t, a.AddRecipeToList(ctx, saved.ID, 4))
	items := a.Items()
	assert.Len(t, items, 2)
	assert.Equal(t, map[string]float64{"flour/g": 800, "egg/db": 8}, quantities(items))
	for _, it := range items {
		assert.Equal(t, saved.ID, it.FromRecipeID)
	}

	// A fresh App sees the same persisted list.
	reloaded := reloadApp(t, a)
	assert.Equal(t, quantities(items), quantities(reloaded.Items()))

	assert.NotEmpty(t, rec.records)
	last := rec.records[len(rec.records)-1]
	assert.Equal(t, ActionAddRecipe, last.Action)
	assert.Equal(t, 2, last.Items)
	assert.True(t, last.Success)
}

func reloadApp(t *testing.T, a *App) *App {
	t.Helper()
	store := a.recipes.(*storage.Store)
	b := NewApp(store, store, Options{})
	require.NoError(t, b.Load(context.Background()))
	return b
}

func TestAddRecipeToListErrors(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	err := a.AddRecipeToList(ctx, "missing", 2)
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	r := pancakes()
	r.Ingredients = []recipe.Ingredient{{Name: "water", Quantity: 0, Unit: "l"}}
	saved, err := a.SaveRecipe(ctx, r)
	require.NoError(t, err)

	err = a.AddRecipeToList(ctx, saved.ID, 2)
	assert.ErrorIs(t, err, recipe.ErrNoValidIngredients)
	assert.Empty(t, a.Items())
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	err := a.AddItem(ctx, "   ", 1, "kg")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	require.NoError(t, a.AddItem(ctx, "Milk", -3, ""))
	require.NoError(t, a.AddItem(ctx, "milk", 2, "DB"))

	items := a.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Milk", items[0].Name)
	assert.Equal(t, "db", items[0].Unit)
	assert.Equal(t, 3.0, items[0].Quantity)
	assert.Equal(t, 1, a.ActiveCount())
}

func TestCompletedItemsDoNotMerge(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	require.NoError(t, a.AddItem(ctx, "milk", 1, "l"))
	milk := a.Items()[0]
	require.NoError(t, a.ToggleItem(ctx, milk.ID))
	require.NoError(t, a.AddItem(ctx, "milk", 2, "l"))

	items := a.Items()
	require.Len(t, items, 2)
	assert.False(t, items[0].Completed, "active items come first")
	assert.Equal(t, 2.0, items[0].Quantity)
	assert.True(t, items[1].Completed)
	assert.Equal(t, 1.0, items[1].Quantity)

	require.NoError(t, a.ClearCompleted(ctx))
	assert.Len(t, a.Items(), 1)

	require.NoError(t, a.RemoveItem(ctx, "unknown"))
	require.NoError(t, a.ToggleItem(ctx, "unknown"))
	assert.Len(t, a.Items(), 1)

	require.NoError(t, a.ClearAll(ctx))
	assert.Empty(t, a.Items())
	require.NoError(t, a.ClearAll(ctx))
}

func TestRecipes(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	soup := recipe.Recipe{Name: "Goulash", Course: "soup", Servings: 4}
	_, err := a.SaveRecipe(ctx, soup)
	require.NoError(t, err)
	dessert, err := a.SaveRecipe(ctx, pancakes())
	require.NoError(t, err)
	_, err = a.SaveRecipe(ctx, recipe.Recipe{Name: "Toast"})
	require.NoError(t, err)

	_, err = a.SaveRecipe(ctx, recipe.Recipe{Name: " "})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	assert.Len(t, a.Recipes("all"), 3)
	assert.Len(t, a.Recipes(" SOUP "), 1)
	assert.Equal(t, []string{"main", "Dessert", "soup"}, a.Courses())

	dessert.Servings = 6
	updated, err := a.SaveRecipe(ctx, dessert)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Servings)
	got, ok := a.Recipe(dessert.ID)
	require.True(t, ok)
	assert.Equal(t, 6, got.Servings)

	_, err = a.SaveRecipe(ctx, recipe.Recipe{ID: "missing", Name: "Ghost"})
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	require.NoError(t, a.DeleteRecipe(ctx, dessert.ID))
	_, ok = a.Recipe(dessert.ID)
	assert.False(t, ok)
	assert.Len(t, a.Recipes(""), 2)
}

// failingItems fails every insert.
type failingItems struct {
	*storage.Store
}

var errOffline = errors.New("offline")

func (f failingItems) InsertItems(context.Context, []shopping.NewRow) ([]shopping.Row, error) {
	return nil, errOffline
}

func TestPersistenceFailureKeepsList(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	a := NewApp(store, store, Options{})
	require.NoError(t, a.AddItem(ctx, "egg", 2, "db"))
	before := a.Items()

	b := NewApp(store, failingItems{store}, Options{})
	require.NoError(t, b.Load(ctx))
	saved, err := b.SaveRecipe(ctx, pancakes())
	require.NoError(t, err)

	err = b.AddRecipeToList(ctx, saved.ID, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrPersistence)
	assert.ErrorIs(t, err, errOffline)
	assert.NotEmpty(t, shared.UserMessage(err))

	after := b.Items()
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, quantities(before), quantities(after))
	rows, err := store.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.0, rows[0].Item().Quantity, "merged update was rolled back")
}

// blockingItems holds inserts until release is closed.
type blockingItems struct {
	*storage.Store
	entered chan struct{}
	release chan struct{}
}

func (b blockingItems) InsertItems(ctx context.Context, rows []shopping.NewRow) ([]shopping.Row, error) {
	close(b.entered)
	<-b.release
	return b.Store.InsertItems(ctx, rows)
}

func TestConcurrentActionsAreRejected(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	items := blockingItems{Store: store, entered: make(chan struct{}), release: make(chan struct{})}
	a := NewApp(store, items, Options{})

	done := make(chan error)
	go func() { done <- a.AddItem(ctx, "bread", 1, "db") }()

	<-items.entered
	assert.ErrorIs(t, a.AddItem(ctx, "bread", 1, "db"), ErrBusy)
	assert.ErrorIs(t, a.ClearAll(ctx), ErrBusy)

	close(items.release)
	require.NoError(t, <-done)
	assert.Len(t, a.Items(), 1)
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{config.BackendSQLite, config.BackendLocal} {
		t.Run(backend, func(t *testing.T) {
			cfg := &config.Config{StoreBackend: backend, DataDir: dir, DatabasePath: dir + "/chefmate.db"}
			b, err := OpenBackend(cfg, nil)
			require.NoError(t, err)
			t.Cleanup(func() { b.Close() })

			a := NewApp(b.Recipes, b.Items, Options{})
			require.NoError(t, a.Load(context.Background()))
			require.NoError(t, a.AddItem(context.Background(), "salt", 1, "tk"))
		})
	}

	_, err := OpenBackend(&config.Config{StoreBackend: "redis"}, nil)
	assert.Error(t, err)
}

func TestStart(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		StoreBackend:  config.BackendLocal,
		DataDir:       dir,
		MetricsDBPath: dir + "/metrics.db",
	}
	ctx := context.Background()

	rt, err := Start(ctx, cfg, nil)
	require.NoError(t, err)
	defer rt.Close()

	require.NotNil(t, rt.Metrics)
	require.NotNil(t, rt.Clipper)
	require.NoError(t, rt.App.AddItem(ctx, "salt", 1, ""))
	assert.Equal(t, "db", rt.App.Items()[0].Unit)

	usage, err := rt.Metrics.GetDailyUsage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].Actions)

	// The bot keeps its sessions next to the metrics.
	var sessions int
	require.NoError(t, rt.Metrics.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&sessions))
	assert.Zero(t, sessions)
}
