package database

import (
	"path/filepath"
	"testing"
)

func TestNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "chefmate.db")

	db, err := NewDB(dbPath, nil)
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"recipes", "shopping_items", "action_metrics", "sessions"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}

	t.Run("Reopen", func(t *testing.T) {
		again, err := NewDB(dbPath, nil)
		if err != nil {
			t.Fatalf("Expected reopening a migrated database to succeed, got %v", err)
		}
		again.Close()
	})
}
