package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"chefmate/internal/recipe"
	"chefmate/internal/shopping"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create Store: %v", err)
	}
	return store
}

func TestRecipeStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	draft := recipe.Draft{
		Name:        "Pancakes",
		Course:      "dessert",
		Servings:    2,
		Ingredients: []recipe.Ingredient{{ID: "i1", Name: "flour", Quantity: 200, Unit: "g"}},
	}

	t.Run("List-Empty", func(t *testing.T) {
		rows, err := store.ListRecipes(ctx)
		if err != nil {
			t.Fatalf("ListRecipes failed: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("Expected no recipes, got %d", len(rows))
		}
	})

	var id string
	t.Run("Insert", func(t *testing.T) {
		row, err := store.InsertRecipe(ctx, draft)
		if err != nil {
			t.Fatalf("InsertRecipe failed: %v", err)
		}
		id = string(row.ID)
		if id == "" {
			t.Fatal("Expected a generated id")
		}
		if _, err := os.Stat(filepath.Join(store.basePath, recipesFile)); err != nil {
			t.Errorf("Expected blob file to exist: %v", err)
		}
	})

	t.Run("Reopen", func(t *testing.T) {
		reopened, err := NewStore(store.basePath)
		if err != nil {
			t.Fatalf("Failed to reopen store: %v", err)
		}
		rows, err := reopened.ListRecipes(ctx)
		if err != nil {
			t.Fatalf("ListRecipes failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("Expected 1 recipe, got %d", len(rows))
		}
		rec := rows[0].Recipe()
		if rec.Name != "Pancakes" || rec.Course != "dessert" || rec.Servings != 2 {
			t.Errorf("Unexpected recipe: %+v", rec)
		}
		if len(rec.Ingredients) != 1 || rec.Ingredients[0].Name != "flour" {
			t.Errorf("Expected flour ingredient, got %+v", rec.Ingredients)
		}
		if rec.CreatedAt.IsZero() {
			t.Error("Expected created_at to survive a reload")
		}
	})

	t.Run("Update", func(t *testing.T) {
		draft.Servings = 4
		row, err := store.UpdateRecipe(ctx, id, draft)
		if err != nil {
			t.Fatalf("UpdateRecipe failed: %v", err)
		}
		if row == nil || row.Recipe().Servings != 4 || string(row.ID) != id {
			t.Errorf("Expected updated row with 4 servings, got %+v", row)
		}
	})

	t.Run("Update-NotFound", func(t *testing.T) {
		row, err := store.UpdateRecipe(ctx, "missing", draft)
		if err != nil {
			t.Fatalf("UpdateRecipe failed: %v", err)
		}
		if row != nil {
			t.Errorf("Expected nil row, got %+v", row)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.DeleteRecipe(ctx, id); err != nil {
			t.Fatalf("DeleteRecipe failed: %v", err)
		}
		if err := store.DeleteRecipe(ctx, id); err != nil {
			t.Errorf("Expected second delete to succeed, got %v", err)
		}
		rows, _ := store.ListRecipes(ctx)
		if len(rows) != 0 {
			t.Errorf("Expected no recipes, got %d", len(rows))
		}
	})
}

func TestItemStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rows, err := store.InsertItems(ctx, []shopping.NewRow{
		{Name: "flour", Quantity: 400, Unit: "g"},
		{Name: "egg", Quantity: 4, Unit: "db"},
	})
	if err != nil {
		t.Fatalf("InsertItems failed: %v", err)
	}
	if len(rows) != 2 || rows[0].Item().Name != "flour" {
		t.Fatalf("Expected rows in input order, got %+v", rows)
	}
	egg := rows[1].Item()

	listed, err := store.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if listed[0].Item().Name != "egg" {
		t.Errorf("Expected last inserted item first, got '%s'", listed[0].Item().Name)
	}

	done := true
	row, err := store.UpdateItem(ctx, egg.ID, shopping.Patch{Completed: &done})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if row == nil || !row.Item().Completed {
		t.Errorf("Expected egg to be completed, got %+v", row)
	}

	if err := store.DeleteCompleted(ctx); err != nil {
		t.Fatalf("DeleteCompleted failed: %v", err)
	}
	listed, _ = store.ListItems(ctx)
	if len(listed) != 1 || listed[0].Item().Name != "flour" {
		t.Errorf("Expected only flour to remain, got %+v", listed)
	}

	if err := store.DeleteItems(ctx, []string{string(listed[0].ID)}); err != nil {
		t.Fatalf("DeleteItems failed: %v", err)
	}
	listed, _ = store.ListItems(ctx)
	if len(listed) != 0 {
		t.Errorf("Expected empty list, got %d items", len(listed))
	}
}

func TestStoreWithReconciler(t *testing.T) {
	ctx := context.Background()
	rec := shopping.NewReconciler(newTestStore(t), nil)

	batch := []shopping.Item{{Name: "milk", Quantity: 1, Unit: "l"}}
	list, err := rec.Apply(ctx, nil, shopping.Consolidate(nil, batch))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	list, err = rec.Apply(ctx, list, shopping.Consolidate(list, batch))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	loaded, err := rec.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Quantity != 2 {
		t.Errorf("Expected one milk entry of 2, got %+v", loaded)
	}
	if len(list) != 1 || list[0].ID != loaded[0].ID {
		t.Errorf("Expected displayed list to match the store, got %+v", list)
	}
}
