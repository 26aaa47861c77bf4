package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chefmate/internal/recipe"
	"chefmate/internal/shopping"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store keeps recipes and shopping items in Postgres through gorm. Ids and
// created_at are assigned by the database.
type Store struct {
	db *gorm.DB
}

var (
	_ recipe.Store   = (*Store)(nil)
	_ shopping.Store = (*Store)(nil)
)

// Open connects to dsn, verifies the connection and migrates the schema.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	gormLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(&RecipeModel{}, &ShoppingItemModel{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListRecipes returns all recipes, newest first.
func (s *Store) ListRecipes(ctx context.Context) ([]recipe.Row, error) {
	var models []RecipeModel
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	rows := make([]recipe.Row, 0, len(models))
	for _, m := range models {
		rows = append(rows, m.row())
	}
	return rows, nil
}

// InsertRecipe stores d and returns the row with its database defaults.
func (s *Store) InsertRecipe(ctx context.Context, d recipe.Draft) (recipe.Row, error) {
	m, err := recipeModel(d)
	if err != nil {
		return recipe.Row{}, fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return recipe.Row{}, fmt.Errorf("failed to insert recipe: %w", err)
	}
	return m.row(), nil
}

// UpdateRecipe replaces the writable fields of id. A missing id yields nil.
func (s *Store) UpdateRecipe(ctx context.Context, id string, d recipe.Draft) (*recipe.Row, error) {
	m, err := recipeModel(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&RecipeModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":          m.Name,
		"course":        m.Course,
		"servings":      m.Servings,
		"ingredients":   m.Ingredients,
		"instructions":  m.Instructions,
		"external_link": m.ExternalLink,
	})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update recipe %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var stored RecipeModel
	if err := s.db.WithContext(ctx).First(&stored, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read back recipe %s: %w", id, err)
	}
	row := stored.row()
	return &row, nil
}

// DeleteRecipe removes id.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&RecipeModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	return nil
}

// ListItems returns all shopping items, newest first.
func (s *Store) ListItems(ctx context.Context) ([]shopping.Row, error) {
	var models []ShoppingItemModel
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list shopping items: %w", err)
	}
	rows := make([]shopping.Row, 0, len(models))
	for _, m := range models {
		rows = append(rows, m.row())
	}
	return rows, nil
}

// InsertItems stores rows in a single statement.
func (s *Store) InsertItems(ctx context.Context, in []shopping.NewRow) ([]shopping.Row, error) {
	if len(in) == 0 {
		return []shopping.Row{}, nil
	}
	models := make([]ShoppingItemModel, 0, len(in))
	for _, nr := range in {
		models = append(models, itemModel(nr))
	}
	if err := s.db.WithContext(ctx).Create(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to insert shopping items: %w", err)
	}
	rows := make([]shopping.Row, 0, len(models))
	for _, m := range models {
		rows = append(rows, m.row())
	}
	return rows, nil
}

// UpdateItem applies p to id. A missing id yields nil.
func (s *Store) UpdateItem(ctx context.Context, id string, p shopping.Patch) (*shopping.Row, error) {
	cols := patchColumns(p)
	if len(cols) > 0 {
		res := s.db.WithContext(ctx).Model(&ShoppingItemModel{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update shopping item %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
	}

	var stored ShoppingItemModel
	if err := s.db.WithContext(ctx).First(&stored, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read back shopping item %s: %w", id, err)
	}
	row := stored.row()
	return &row, nil
}

// DeleteItem removes id.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&ShoppingItemModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete shopping item %s: %w", id, err)
	}
	return nil
}

// DeleteCompleted removes every completed item.
func (s *Store) DeleteCompleted(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("completed = ?", true).Delete(&ShoppingItemModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete completed shopping items: %w", err)
	}
	return nil
}

// DeleteItems removes every id in ids.
func (s *Store) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&ShoppingItemModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete shopping items: %w", err)
	}
	return nil
}
