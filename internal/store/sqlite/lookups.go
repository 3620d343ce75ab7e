package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/store"
)

// seasonColumns is the ordered list of columns selected in season queries.
// Must match the scan order in scanSeason.
const seasonColumns = `id, created_at, updated_at, title`

// scanSeason scans a sql.Row (or sql.Rows via its Scan method) into a domain.Season.
func scanSeason(scanner interface{ Scan(dest ...any) error }) (*domain.Season, error) {
	var s domain.Season

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(&s.ID, &createdAt, &updatedAt, &s.Title)
	if err != nil {
		return nil, err
	}

	s.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	s.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// CreateSeason inserts a new season.
// Returns store.ErrAlreadyExists if the season ID or title already exists.
func (s *Store) CreateSeason(ctx context.Context, season *domain.Season) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO seasons (id, created_at, updated_at, title)
		VALUES (?, ?, ?, ?)`,
		season.ID,
		formatTime(season.CreatedAt),
		formatTime(season.UpdatedAt),
		season.Title,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetSeason retrieves a season by ID.
// Returns store.ErrNotFound if the season does not exist.
func (s *Store) GetSeason(ctx context.Context, id string) (*domain.Season, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+seasonColumns+` FROM seasons WHERE id = ?`, id)

	season, err := scanSeason(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return season, nil
}

// GetSeasonByTitle retrieves a season by its exact title.
// Returns store.ErrNotFound if no season carries the title.
func (s *Store) GetSeasonByTitle(ctx context.Context, title string) (*domain.Season, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+seasonColumns+` FROM seasons WHERE title = ?`, title)

	season, err := scanSeason(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return season, nil
}

// ListSeasons returns all seasons ordered by title.
func (s *Store) ListSeasons(ctx context.Context) ([]*domain.Season, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+seasonColumns+` FROM seasons ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seasons []*domain.Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, season)
	}
	return seasons, rows.Err()
}

// categoryColumns is the ordered list of columns selected in category queries.
// Must match the scan order in scanCategory.
const categoryColumns = `id, created_at, updated_at, title`

func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var c domain.Category

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(&c.ID, &createdAt, &updatedAt, &c.Title)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// CreateCategory inserts a new category.
// Returns store.ErrAlreadyExists if the category ID or title already exists.
func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, created_at, updated_at, title)
		VALUES (?, ?, ?, ?)`,
		category.ID,
		formatTime(category.CreatedAt),
		formatTime(category.UpdatedAt),
		category.Title,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetCategory retrieves a category by ID.
// Returns store.ErrNotFound if the category does not exist.
func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)

	category, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategoryByTitle retrieves a category by its exact title.
// Returns store.ErrNotFound if no category carries the title.
func (s *Store) GetCategoryByTitle(ctx context.Context, title string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE title = ?`, title)

	category, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns all categories ordered by title.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
