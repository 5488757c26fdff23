package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for local data access. Methods accept
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetPreferences retrieves the stored user preferences. Returns an
	// empty Preferences value (not an error) when none have been saved.
	GetPreferences(ctx context.Context) (*Preferences, error)

	// SavePreferences inserts or replaces the single preferences row.
	SavePreferences(ctx context.Context, prefs *Preferences) error

	// AddFavorite saves a recipe to the favorites list. Saving an already
	// favorited recipe updates its title and thumbnail.
	AddFavorite(ctx context.Context, fav *Favorite) error

	// RemoveFavorite deletes a favorite by recipe ID.
	RemoveFavorite(ctx context.Context, recipeID string) error

	// ListFavorites retrieves all favorites, most recently added first.
	ListFavorites(ctx context.Context) ([]Favorite, error)

	// AddShoppingItem appends an item to the shopping list.
	AddShoppingItem(ctx context.Context, item *ShoppingItem) error

	// ToggleShoppingItem flips an item's checked state.
	ToggleShoppingItem(ctx context.Context, id uint) error

	// RemoveShoppingItem deletes a single shopping list item.
	RemoveShoppingItem(ctx context.Context, id uint) error

	// ClearCheckedShoppingItems deletes all checked items.
	ClearCheckedShoppingItems(ctx context.Context) error

	// ListShoppingItems retrieves the shopping list in insertion order.
	ListShoppingItems(ctx context.Context) ([]ShoppingItem, error)

	// GetCredential retrieves a stored credential by name. Returns an
	// empty string (not an error) when the credential is absent.
	GetCredential(ctx context.Context, name string) (string, error)

	// SetCredential inserts or replaces a stored credential.
	SetCredential(ctx context.Context, name, value string) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetPreferences(ctx context.Context) (*Preferences, error) {
	prefs := &Preferences{}
	err := s.db.GetContext(ctx, prefs, `SELECT * FROM preferences WHERE id = 1;`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Preferences{}, nil
		}
		s.logger.ErrorContext(ctx, "Error retrieving preferences", "error", err)
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return prefs, nil
}

func (s *sqlxStore) SavePreferences(ctx context.Context, prefs *Preferences) error {
	if prefs == nil {
		return fmt.Errorf("cannot save nil preferences")
	}

	now := time.Now().UTC()
	prefs.ID = 1
	prefs.CreatedAt = now
	prefs.UpdatedAt = now

	query := `
        INSERT INTO preferences (id, created_at, updated_at, dietary_restrictions, allergies, skill_level, spice_level, favorite_cuisines)
        VALUES (:id, :created_at, :updated_at, :dietary_restrictions, :allergies, :skill_level, :spice_level, :favorite_cuisines)
        ON CONFLICT(id) DO UPDATE SET
            updated_at = excluded.updated_at,
            dietary_restrictions = excluded.dietary_restrictions,
            allergies = excluded.allergies,
            skill_level = excluded.skill_level,
            spice_level = excluded.spice_level,
            favorite_cuisines = excluded.favorite_cuisines;
    `

	if _, err := s.db.NamedExecContext(ctx, query, prefs); err != nil {
		s.logger.ErrorContext(ctx, "Error saving preferences", "error", err)
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	s.logger.DebugContext(ctx, "Preferences saved")
	return nil
}

func (s *sqlxStore) AddFavorite(ctx context.Context, fav *Favorite) error {
	if fav == nil {
		return fmt.Errorf("cannot save nil favorite")
	}
	if fav.RecipeID == "" {
		return fmt.Errorf("favorite must have a non-empty recipe_id")
	}
	if fav.Title == "" {
		return fmt.Errorf("favorite must have a non-empty title")
	}

	now := time.Now().UTC()
	fav.CreatedAt = now
	fav.UpdatedAt = now

	query := `
        INSERT INTO favorites (created_at, updated_at, recipe_id, title, thumbnail_url)
        VALUES (:created_at, :updated_at, :recipe_id, :title, :thumbnail_url)
        ON CONFLICT(recipe_id) DO UPDATE SET
            updated_at = excluded.updated_at,
            title = excluded.title,
            thumbnail_url = excluded.thumbnail_url;
    `

	result, err := s.db.NamedExecContext(ctx, query, fav)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving favorite", "recipe_id", fav.RecipeID, "error", err)
		return fmt.Errorf("failed to save favorite %q: %w", fav.RecipeID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		fav.ID = uint(id)
	}

	return nil
}

func (s *sqlxStore) RemoveFavorite(ctx context.Context, recipeID string) error {
	if recipeID == "" {
		return fmt.Errorf("recipe_id must not be empty")
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE recipe_id = ?;`, recipeID); err != nil {
		s.logger.ErrorContext(ctx, "Error removing favorite", "recipe_id", recipeID, "error", err)
		return fmt.Errorf("failed to remove favorite %q: %w", recipeID, err)
	}
	return nil
}

func (s *sqlxStore) ListFavorites(ctx context.Context) ([]Favorite, error) {
	var favorites []Favorite
	err := s.db.SelectContext(ctx, &favorites, `SELECT * FROM favorites ORDER BY created_at DESC, id DESC;`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing favorites", "error", err)
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}

func (s *sqlxStore) AddShoppingItem(ctx context.Context, item *ShoppingItem) error {
	if item == nil {
		return fmt.Errorf("cannot save nil shopping item")
	}
	if item.Ingredient == "" {
		return fmt.Errorf("shopping item must have a non-empty ingredient")
	}

	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := `
        INSERT INTO shopping_list (created_at, updated_at, ingredient, quantity, checked)
        VALUES (:created_at, :updated_at, :ingredient, :quantity, :checked);
    `

	result, err := s.db.NamedExecContext(ctx, query, item)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error adding shopping item", "ingredient", item.Ingredient, "error", err)
		return fmt.Errorf("failed to add shopping item %q: %w", item.Ingredient, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		item.ID = uint(id)
	}

	return nil
}

func (s *sqlxStore) ToggleShoppingItem(ctx context.Context, id uint) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE shopping_list SET checked = NOT checked, updated_at = ? WHERE id = ?;`,
		time.Now().UTC(), id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error toggling shopping item", "id", id, "error", err)
		return fmt.Errorf("failed to toggle shopping item %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return fmt.Errorf("shopping item %d not found", id)
	}
	return nil
}

func (s *sqlxStore) RemoveShoppingItem(ctx context.Context, id uint) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM shopping_list WHERE id = ?;`, id); err != nil {
		s.logger.ErrorContext(ctx, "Error removing shopping item", "id", id, "error", err)
		return fmt.Errorf("failed to remove shopping item %d: %w", id, err)
	}
	return nil
}

func (s *sqlxStore) ClearCheckedShoppingItems(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM shopping_list WHERE checked = 1;`); err != nil {
		s.logger.ErrorContext(ctx, "Error clearing checked shopping items", "error", err)
		return fmt.Errorf("failed to clear checked shopping items: %w", err)
	}
	return nil
}

func (s *sqlxStore) ListShoppingItems(ctx context.Context) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := s.db.SelectContext(ctx, &items, `SELECT * FROM shopping_list ORDER BY id ASC;`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing shopping items", "error", err)
		return nil, fmt.Errorf("failed to list shopping items: %w", err)
	}
	return items, nil
}

func (s *sqlxStore) GetCredential(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM credentials WHERE name = ?;`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		s.logger.ErrorContext(ctx, "Error retrieving credential", "name", name, "error", err)
		return "", fmt.Errorf("failed to get credential %q: %w", name, err)
	}
	return value, nil
}

func (s *sqlxStore) SetCredential(ctx context.Context, name, value string) error {
	if name == "" {
		return fmt.Errorf("credential name must not be empty")
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO credentials (name, created_at, updated_at, value)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            updated_at = excluded.updated_at,
            value = excluded.value;
    `

	if _, err := s.db.ExecContext(ctx, query, name, now, now, value); err != nil {
		s.logger.ErrorContext(ctx, "Error saving credential", "name", name, "error", err)
		return fmt.Errorf("failed to save credential %q: %w", name, err)
	}
	return nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	startTime := time.Now()
	if _, err := s.db.ExecContext(ctx, `VACUUM;`); err != nil {
		s.logger.ErrorContext(ctx, "VACUUM failed", "error", err)
		return fmt.Errorf("vacuum failed: %w", err)
	}

	s.logger.InfoContext(ctx, "SQL maintenance completed", "duration", time.Since(startTime))
	return nil
}
