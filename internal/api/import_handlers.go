package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/service"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "importFromText",
		Method:      http.MethodPost,
		Path:        "/api/v1/import/text",
		Summary:     "Import recipe from text",
		Description: "Runs the text import pipeline and returns the created recipe",
		Tags:        []string{"Import"},
	}, s.handleImportFromText)

	huma.Register(s.api, huma.Operation{
		OperationID: "importFromPhoto",
		Method:      http.MethodPost,
		Path:        "/api/v1/import/photo",
		Summary:     "Import recipe from photo",
		Description: "Runs the photo import pipeline and returns the created recipe",
		Tags:        []string{"Import"},
	}, s.handleImportFromPhoto)

	huma.Register(s.api, huma.Operation{
		OperationID: "importStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/import/status",
		Summary:     "Import pipeline status",
		Description: "Returns a snapshot of the import pipeline state",
		Tags:        []string{"Import"},
	}, s.handleImportStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "dismissImportError",
		Method:      http.MethodDelete,
		Path:        "/api/v1/import/error",
		Summary:     "Dismiss import error",
		Description: "Clears a visible import error message",
		Tags:        []string{"Import"},
	}, s.handleDismissImportError)
}

// === DTOs ===

type ImportTextInput struct {
	Body struct {
		Text string `json:"text" minLength:"1" doc:"Free-form recipe text"`
	}
}

type ImportPhotoInput struct {
	Body struct {
		Image []byte `json:"image" doc:"Image bytes, base64-encoded on the wire"`
	}
}

type ImportStatusOutput struct {
	Body service.ImportStatus
}

// === Handlers ===

func (s *Server) handleImportFromText(ctx context.Context, input *ImportTextInput) (*RecipeOutput, error) {
	var created *domain.Recipe
	err := s.services.Import.RecipeFromText(ctx, input.Body.Text, func(r *domain.Recipe) {
		created = r
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		// Pipeline completed but saving failed; the status carries details.
		return nil, huma.Error502BadGateway("recipe could not be saved")
	}
	return &RecipeOutput{Body: mapRecipeResponse(created)}, nil
}

func (s *Server) handleImportFromPhoto(ctx context.Context, input *ImportPhotoInput) (*RecipeOutput, error) {
	var created *domain.Recipe
	err := s.services.Import.RecipeFromPhoto(ctx, input.Body.Image, func(r *domain.Recipe) {
		created = r
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, huma.Error502BadGateway("recipe could not be saved")
	}
	return &RecipeOutput{Body: mapRecipeResponse(created)}, nil
}

func (s *Server) handleImportStatus(ctx context.Context, _ *struct{}) (*ImportStatusOutput, error) {
	return &ImportStatusOutput{Body: s.services.Import.Status()}, nil
}

func (s *Server) handleDismissImportError(ctx context.Context, _ *struct{}) (*struct{}, error) {
	s.services.Import.DismissError()
	return nil, nil
}
