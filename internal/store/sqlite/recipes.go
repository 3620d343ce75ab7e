package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/store"
)

// recipeColumns is the ordered list of columns selected in recipe queries.
// Must match the scan order in scanRecipe.
const recipeColumns = `id, created_at, updated_at, name, place, ingredients,
	portions, season_id, category_id, photo, kinds, specials`

// scanRecipe scans a sql.Row (or sql.Rows via its Scan method) into a domain.Recipe.
func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var r domain.Recipe

	var (
		createdAt  string
		updatedAt  string
		seasonID   sql.NullString
		categoryID sql.NullString
		photo      []byte
		kinds      int
		specials   int
	)

	err := scanner.Scan(
		&r.ID,
		&createdAt,
		&updatedAt,
		&r.Name,
		&r.Place,
		&r.Ingredients,
		&r.Portions,
		&seasonID,
		&categoryID,
		&photo,
		&kinds,
		&specials,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	// Optional references.
	if seasonID.Valid {
		r.SeasonID = seasonID.String
	}
	if categoryID.Valid {
		r.CategoryID = categoryID.String
	}

	r.Photo = photo
	r.Kinds = domain.Kind(kinds)
	r.Specials = domain.Special(specials)

	return &r, nil
}

// CreateRecipe inserts a new recipe.
// Returns store.ErrAlreadyExists if the recipe ID already exists.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recipes (
			id, created_at, updated_at, name, place, ingredients,
			portions, season_id, category_id, photo, kinds, specials
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
		r.Name,
		r.Place,
		r.Ingredients,
		r.Portions,
		nullString(r.SeasonID),
		nullString(r.CategoryID),
		r.Photo,
		int(r.Kinds),
		int(r.Specials),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetRecipe retrieves a recipe by ID.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)

	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRecipes returns all recipes ordered by name.
func (s *Store) ListRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*domain.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

// UpdateRecipe replaces all mutable fields of an existing recipe.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) UpdateRecipe(ctx context.Context, r *domain.Recipe) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recipes SET
			updated_at = ?, name = ?, place = ?, ingredients = ?,
			portions = ?, season_id = ?, category_id = ?, photo = ?,
			kinds = ?, specials = ?
		WHERE id = ?`,
		formatTime(r.UpdatedAt),
		r.Name,
		r.Place,
		r.Ingredients,
		r.Portions,
		nullString(r.SeasonID),
		nullString(r.CategoryID),
		r.Photo,
		int(r.Kinds),
		int(r.Specials),
		r.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteRecipe removes a recipe.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CountRecipes returns the total number of recipes.
func (s *Store) CountRecipes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n)
	return n, err
}
