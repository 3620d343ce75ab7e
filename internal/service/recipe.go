package service

import (
	"context"
	"log/slog"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/id"
	"github.com/cookbookapp/cookbook-server/internal/store/sqlite"
	"github.com/cookbookapp/cookbook-server/internal/validation"
)

// RecipeService orchestrates recipe CRUD operations.
type RecipeService struct {
	store     *sqlite.Store
	lookups   *LookupService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(s *sqlite.Store, lookups *LookupService, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		store:     s,
		lookups:   lookups,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateRecipeRequest contains fields for creating a recipe.
// Empty season or category titles synthesize the defaults; a persisted
// recipe always references both.
type CreateRecipeRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=200"`
	Place         string `json:"place" validate:"max=200"`
	Ingredients   string `json:"ingredients"`
	Portions      string `json:"portions" validate:"max=50"`
	SeasonTitle   string `json:"season_title" validate:"max=100"`
	CategoryTitle string `json:"category_title" validate:"max=100"`
	Photo         []byte `json:"photo,omitempty"`
	Kinds         int    `json:"kinds" validate:"min=0,max=15"`
	Specials      int    `json:"specials" validate:"min=0,max=7"`
}

// CreateRecipe creates a new recipe.
func (s *RecipeService) CreateRecipe(ctx context.Context, req CreateRecipeRequest) (*domain.Recipe, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	seasonTitle := req.SeasonTitle
	if seasonTitle == "" {
		seasonTitle = domain.DefaultSeasonTitle
	}
	season, err := s.lookups.FetchOrCreateSeason(ctx, seasonTitle)
	if err != nil {
		return nil, err
	}

	categoryTitle := req.CategoryTitle
	if categoryTitle == "" {
		categoryTitle = domain.DefaultCategoryTitle
	}
	category, err := s.lookups.FetchOrCreateCategory(ctx, categoryTitle)
	if err != nil {
		return nil, err
	}

	recipe := &domain.Recipe{
		Name:        req.Name,
		Place:       req.Place,
		Ingredients: req.Ingredients,
		Portions:    req.Portions,
		SeasonID:    season.ID,
		CategoryID:  category.ID,
		Photo:       req.Photo,
		Kinds:       domain.Kind(req.Kinds),
		Specials:    domain.Special(req.Specials),
	}
	recipeID, err := id.Generate("rcp")
	if err != nil {
		return nil, err
	}
	recipe.ID = recipeID
	recipe.InitTimestamps()

	if err := s.store.CreateRecipe(ctx, recipe); err != nil {
		return nil, err
	}

	s.logger.Info("created recipe", "id", recipe.ID, "name", recipe.Name)
	return recipe, nil
}

// GetRecipe returns a single recipe.
func (s *RecipeService) GetRecipe(ctx context.Context, recipeID string) (*domain.Recipe, error) {
	return s.store.GetRecipe(ctx, recipeID)
}

// ListRecipes returns all recipes ordered by name.
func (s *RecipeService) ListRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	return s.store.ListRecipes(ctx)
}

// UpdateRecipeRequest contains fields for an in-place edit. Nil pointers
// leave the stored value untouched.
type UpdateRecipeRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Place         *string `json:"place,omitempty" validate:"omitempty,max=200"`
	Ingredients   *string `json:"ingredients,omitempty"`
	Portions      *string `json:"portions,omitempty" validate:"omitempty,max=50"`
	SeasonTitle   *string `json:"season_title,omitempty" validate:"omitempty,min=1,max=100"`
	CategoryTitle *string `json:"category_title,omitempty" validate:"omitempty,min=1,max=100"`
	Photo         []byte  `json:"photo,omitempty"`
	Kinds         *int    `json:"kinds,omitempty" validate:"omitempty,min=0,max=15"`
	Specials      *int    `json:"specials,omitempty" validate:"omitempty,min=0,max=7"`
}

// UpdateRecipe applies a partial edit to an existing recipe.
func (s *RecipeService) UpdateRecipe(ctx context.Context, recipeID string, req UpdateRecipeRequest) (*domain.Recipe, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	recipe, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		recipe.Name = *req.Name
	}
	if req.Place != nil {
		recipe.Place = *req.Place
	}
	if req.Ingredients != nil {
		recipe.Ingredients = *req.Ingredients
	}
	if req.Portions != nil {
		recipe.Portions = *req.Portions
	}
	if req.SeasonTitle != nil {
		season, err := s.lookups.FetchOrCreateSeason(ctx, *req.SeasonTitle)
		if err != nil {
			return nil, err
		}
		recipe.SeasonID = season.ID
	}
	if req.CategoryTitle != nil {
		category, err := s.lookups.FetchOrCreateCategory(ctx, *req.CategoryTitle)
		if err != nil {
			return nil, err
		}
		recipe.CategoryID = category.ID
	}
	if req.Photo != nil {
		recipe.Photo = req.Photo
	}
	if req.Kinds != nil {
		recipe.Kinds = domain.Kind(*req.Kinds)
	}
	if req.Specials != nil {
		recipe.Specials = domain.Special(*req.Specials)
	}
	recipe.Touch()

	if err := s.store.UpdateRecipe(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// DeleteRecipe removes a recipe by explicit user action.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID string) error {
	if err := s.store.DeleteRecipe(ctx, recipeID); err != nil {
		return err
	}
	s.logger.Info("deleted recipe", "id", recipeID)
	return nil
}
