package service

import (
	"context"
	"log/slog"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/id"
	"github.com/cookbookapp/cookbook-server/internal/store"
	"github.com/cookbookapp/cookbook-server/internal/store/sqlite"
)

// LookupService manages the season and category lookup tables. Lookups are
// append-only from the pipeline's point of view: fetch-or-create never
// deletes, and titles match by exact string comparison.
type LookupService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewLookupService creates a new lookup service.
func NewLookupService(s *sqlite.Store, logger *slog.Logger) *LookupService {
	return &LookupService{store: s, logger: logger}
}

// FetchOrCreateSeason returns the season with the given title, creating it
// if absent. Concurrent callers racing on the same title are arbitrated by
// the store's unique title constraint: the loser re-fetches the winner's row,
// so both callers observe the same season.
func (s *LookupService) FetchOrCreateSeason(ctx context.Context, title string) (*domain.Season, error) {
	existing, err := s.store.GetSeasonByTitle(ctx, title)
	if err == nil {
		return existing, nil
	}
	if err != store.ErrNotFound {
		return nil, err
	}

	season := &domain.Season{Title: title}
	seasonID, err := id.Generate("ssn")
	if err != nil {
		return nil, err
	}
	season.ID = seasonID
	season.InitTimestamps()

	err = s.store.CreateSeason(ctx, season)
	if err == store.ErrAlreadyExists {
		return s.store.GetSeasonByTitle(ctx, title)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created season", "id", season.ID, "title", title)
	return season, nil
}

// FetchOrCreateCategory returns the category with the given title, creating
// it if absent. Same race semantics as FetchOrCreateSeason.
func (s *LookupService) FetchOrCreateCategory(ctx context.Context, title string) (*domain.Category, error) {
	existing, err := s.store.GetCategoryByTitle(ctx, title)
	if err == nil {
		return existing, nil
	}
	if err != store.ErrNotFound {
		return nil, err
	}

	category := &domain.Category{Title: title}
	categoryID, err := id.Generate("cat")
	if err != nil {
		return nil, err
	}
	category.ID = categoryID
	category.InitTimestamps()

	err = s.store.CreateCategory(ctx, category)
	if err == store.ErrAlreadyExists {
		return s.store.GetCategoryByTitle(ctx, title)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created category", "id", category.ID, "title", title)
	return category, nil
}

// ListSeasons returns all seasons ordered by title.
func (s *LookupService) ListSeasons(ctx context.Context) ([]*domain.Season, error) {
	return s.store.ListSeasons(ctx)
}

// ListCategories returns all categories ordered by title.
func (s *LookupService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.store.ListCategories(ctx)
}
