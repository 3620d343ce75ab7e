package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerLookupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSeasons",
		Method:      http.MethodGet,
		Path:        "/api/v1/seasons",
		Summary:     "List seasons",
		Description: "Returns all seasons ordered by title",
		Tags:        []string{"Lookups"},
	}, s.handleListSeasons)

	huma.Register(s.api, huma.Operation{
		OperationID: "createSeason",
		Method:      http.MethodPost,
		Path:        "/api/v1/seasons",
		Summary:     "Create season",
		Description: "Returns the season with the given title, creating it if needed",
		Tags:        []string{"Lookups"},
	}, s.handleCreateSeason)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns all categories ordered by title",
		Tags:        []string{"Lookups"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Description: "Returns the category with the given title, creating it if needed",
		Tags:        []string{"Lookups"},
	}, s.handleCreateCategory)
}

// CreateLookupInput carries the title for a fetch-or-create request.
type CreateLookupInput struct {
	Body struct {
		Title string `json:"title" minLength:"1" maxLength:"100" doc:"Exact lookup title"`
	}
}

type LookupOutput struct {
	Body LookupResponse
}

// LookupResponse is a season or category in API responses.
type LookupResponse struct {
	ID    string `json:"id" doc:"Lookup ID"`
	Title string `json:"title" doc:"Display title"`
}

type ListSeasonsOutput struct {
	Body struct {
		Seasons []LookupResponse `json:"seasons" doc:"List of seasons"`
	}
}

type ListCategoriesOutput struct {
	Body struct {
		Categories []LookupResponse `json:"categories" doc:"List of categories"`
	}
}

func (s *Server) handleListSeasons(ctx context.Context, _ *struct{}) (*ListSeasonsOutput, error) {
	seasons, err := s.services.Lookup.ListSeasons(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListSeasonsOutput{}
	out.Body.Seasons = make([]LookupResponse, len(seasons))
	for i, season := range seasons {
		out.Body.Seasons[i] = mapLookupResponse(season.ID, season.Title)
	}
	return out, nil
}

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	categories, err := s.services.Lookup.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListCategoriesOutput{}
	out.Body.Categories = make([]LookupResponse, len(categories))
	for i, category := range categories {
		out.Body.Categories[i] = mapLookupResponse(category.ID, category.Title)
	}
	return out, nil
}

func (s *Server) handleCreateSeason(ctx context.Context, input *CreateLookupInput) (*LookupOutput, error) {
	season, err := s.services.Lookup.FetchOrCreateSeason(ctx, input.Body.Title)
	if err != nil {
		return nil, err
	}
	return &LookupOutput{Body: mapLookupResponse(season.ID, season.Title)}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateLookupInput) (*LookupOutput, error) {
	category, err := s.services.Lookup.FetchOrCreateCategory(ctx, input.Body.Title)
	if err != nil {
		return nil, err
	}
	return &LookupOutput{Body: mapLookupResponse(category.ID, category.Title)}, nil
}

func mapLookupResponse(id, title string) LookupResponse {
	return LookupResponse{ID: id, Title: title}
}
