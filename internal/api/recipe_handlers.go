package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/http/response"
	"github.com/cookbookapp/cookbook-server/internal/service"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes",
		Summary:     "List recipes",
		Description: "Returns all recipes ordered by name",
		Tags:        []string{"Recipes"},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "createRecipe",
		Method:      http.MethodPost,
		Path:        "/api/v1/recipes",
		Summary:     "Create recipe",
		Description: "Creates a new recipe; missing season/category synthesize the defaults",
		Tags:        []string{"Recipes"},
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Returns a recipe by ID",
		Tags:        []string{"Recipes"},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecipe",
		Method:      http.MethodPatch,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Update recipe",
		Description: "Applies a partial edit to a recipe",
		Tags:        []string{"Recipes"},
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteRecipe",
		Method:      http.MethodDelete,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Delete recipe",
		Description: "Deletes a recipe",
		Tags:        []string{"Recipes"},
	}, s.handleDeleteRecipe)

	// Binary photo payload, served outside huma.
	s.router.Get("/api/v1/recipes/{id}/photo", s.handleGetRecipePhoto)
}

// === DTOs ===

type RecipeResponse struct {
	ID           string    `json:"id" doc:"Recipe ID"`
	Name         string    `json:"name" doc:"Recipe name"`
	Place        string    `json:"place,omitempty" doc:"Where the recipe came from"`
	Ingredients  string    `json:"ingredients" doc:"Combined ingredients and instructions text"`
	Portions     string    `json:"portions" doc:"Serving count"`
	SeasonID     string    `json:"season_id" doc:"Season reference"`
	CategoryID   string    `json:"category_id" doc:"Category reference"`
	Kinds        int       `json:"kinds" doc:"Kind flag bits"`
	KindTitle    string    `json:"kind_title,omitempty" doc:"Display names of set kind flags"`
	Specials     int       `json:"specials" doc:"Special flag bits"`
	SpecialTitle string    `json:"special_title,omitempty" doc:"Display names of set special flags"`
	HasPhoto     bool      `json:"has_photo" doc:"Whether a photo is attached"`
	CreatedAt    time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time `json:"updated_at" doc:"Last update time"`
}

func mapRecipeResponse(r *domain.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:           r.ID,
		Name:         r.Name,
		Place:        r.Place,
		Ingredients:  r.Ingredients,
		Portions:     r.Portions,
		SeasonID:     r.SeasonID,
		CategoryID:   r.CategoryID,
		Kinds:        int(r.Kinds),
		KindTitle:    r.Kinds.Title(),
		Specials:     int(r.Specials),
		SpecialTitle: r.Specials.Title(),
		HasPhoto:     r.HasPhoto(),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type ListRecipesResponse struct {
	Recipes []RecipeResponse `json:"recipes" doc:"List of recipes"`
}

type ListRecipesOutput struct {
	Body ListRecipesResponse
}

type CreateRecipeInput struct {
	Body service.CreateRecipeRequest
}

type RecipeOutput struct {
	Body RecipeResponse
}

type GetRecipeInput struct {
	ID string `path:"id" doc:"Recipe ID"`
}

type UpdateRecipeInput struct {
	ID   string `path:"id" doc:"Recipe ID"`
	Body service.UpdateRecipeRequest
}

type DeleteRecipeInput struct {
	ID string `path:"id" doc:"Recipe ID"`
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, _ *struct{}) (*ListRecipesOutput, error) {
	recipes, err := s.services.Recipe.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]RecipeResponse, len(recipes))
	for i, r := range recipes {
		resp[i] = mapRecipeResponse(r)
	}
	return &ListRecipesOutput{Body: ListRecipesResponse{Recipes: resp}}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	r, err := s.services.Recipe.CreateRecipe(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: mapRecipeResponse(r)}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *GetRecipeInput) (*RecipeOutput, error) {
	r, err := s.services.Recipe.GetRecipe(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: mapRecipeResponse(r)}, nil
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *UpdateRecipeInput) (*RecipeOutput, error) {
	r, err := s.services.Recipe.UpdateRecipe(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: mapRecipeResponse(r)}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *DeleteRecipeInput) (*struct{}, error) {
	if err := s.services.Recipe.DeleteRecipe(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

// handleGetRecipePhoto streams the stored photo bytes.
func (s *Server) handleGetRecipePhoto(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.services.Recipe.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if !recipe.HasPhoto() {
		response.NotFound(w, "recipe has no photo", s.logger)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := w.Write(recipe.Photo); err != nil {
		s.logger.Error("writing photo response", "error", err)
	}
}
