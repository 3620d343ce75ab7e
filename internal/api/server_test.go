package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookbookapp/cookbook-server/internal/extract"
	"github.com/cookbookapp/cookbook-server/internal/service"
	"github.com/cookbookapp/cookbook-server/internal/store/sqlite"
)

type fakeStructurer struct {
	recipe *extract.Recipe
	err    error
}

func (f *fakeStructurer) FromText(ctx context.Context, text string) (*extract.Recipe, error) {
	return f.recipe, f.err
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) RecognizeText(ctx context.Context, imageBytes []byte) (string, error) {
	return f.text, f.err
}

// setupTestServer builds a server over a temp database with stubbed
// recognition and extraction.
func setupTestServer(t *testing.T, structurer service.RecipeStructurer) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	testStore, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { testStore.Close() })

	lookups := service.NewLookupService(testStore, logger)
	recipes := service.NewRecipeService(testStore, lookups, logger)
	imports := service.NewImportService(&fakeRecognizer{text: "Zutaten"}, structurer, recipes, 0, logger)

	return NewServer(testStore, &Services{
		Lookup: lookups,
		Recipe: recipes,
		Import: imports,
	}, logger)
}

// doJSON performs a request against the server and decodes the envelope.
func doJSON(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec.Code, envelope
}

func TestCreateAndGetRecipe(t *testing.T) {
	s := setupTestServer(t, &fakeStructurer{})

	status, envelope := doJSON(t, s, http.MethodPost, "/api/v1/recipes",
		`{"name":"Flammkuchen","place":"Elsass","kinds":8}`)
	require.Equal(t, http.StatusOK, status, "envelope: %v", envelope)
	assert.Equal(t, true, envelope["success"])

	data := envelope["data"].(map[string]any)
	assert.Equal(t, "Flammkuchen", data["name"])
	assert.Equal(t, "Fleisch", data["kind_title"])
	assert.NotEmpty(t, data["season_id"])

	recipeID := data["id"].(string)
	status, envelope = doJSON(t, s, http.MethodGet, "/api/v1/recipes/"+recipeID, "")
	require.Equal(t, http.StatusOK, status)
	data = envelope["data"].(map[string]any)
	assert.Equal(t, "Flammkuchen", data["name"])
}

func TestGetRecipeNotFound(t *testing.T) {
	s := setupTestServer(t, &fakeStructurer{})

	status, envelope := doJSON(t, s, http.MethodGet, "/api/v1/recipes/rcp-missing", "")
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, envelope["success"])
	assert.NotNil(t, envelope["error"])
}

func TestCreateRecipeValidationError(t *testing.T) {
	s := setupTestServer(t, &fakeStructurer{})

	status, envelope := doJSON(t, s, http.MethodPost, "/api/v1/recipes", `{"name":""}`)
	assert.GreaterOrEqual(t, status, 400)
	assert.Equal(t, false, envelope["success"])
}

func TestListLookups(t *testing.T) {
	s := setupTestServer(t, &fakeStructurer{})

	_, _ = doJSON(t, s, http.MethodPost, "/api/v1/recipes", `{"name":"Brot"}`)

	status, envelope := doJSON(t, s, http.MethodGet, "/api/v1/seasons", "")
	require.Equal(t, http.StatusOK, status)
	data := envelope["data"].(map[string]any)
	seasons := data["seasons"].([]any)
	require.Len(t, seasons, 1)
	assert.Equal(t, "immer", seasons[0].(map[string]any)["title"])
}

func TestCreateSeasonIsFetchOrCreate(t *testing.T) {
	s := setupTestServer(t, &fakeStructurer{})

	status, envelope := doJSON(t, s, http.MethodPost, "/api/v1/seasons", `{"title":"Sommer"}`)
	require.Equal(t, http.StatusOK, status)
	first := envelope["data"].(map[string]any)["id"]

	status, envelope = doJSON(t, s, http.MethodPost, "/api/v1/seasons", `{"title":"Sommer"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, first, envelope["data"].(map[string]any)["id"])
}

func TestImportFromText(t *testing.T) {
	s := setupTestServer(t, &fakeStructurer{recipe: &extract.Recipe{
		Title:        "Cake",
		Ingredients:  []string{"200g flour"},
		Instructions: "Bake",
		Servings:     "4",
	}})

	status, envelope := doJSON(t, s, http.MethodPost, "/api/v1/import/text",
		`{"text":"200g flour. Bake."}`)
	require.Equal(t, http.StatusOK, status, "envelope: %v", envelope)

	data := envelope["data"].(map[string]any)
	assert.Equal(t, "Cake", data["name"])
	assert.Equal(t, "4", data["portions"])
	assert.Equal(t, "200g flour\n\nBake", data["ingredients"])

	// Pipeline is idle again afterwards.
	status, envelope = doJSON(t, s, http.MethodGet, "/api/v1/import/status", "")
	require.Equal(t, http.StatusOK, status)
	data = envelope["data"].(map[string]any)
	assert.Equal(t, "idle", data["state"])
	assert.Equal(t, false, data["is_processing"])
}

func TestImportFromTextFailure(t *testing.T) {
	s := setupTestServer(t, &fakeStructurer{err: &extract.Error{
		Op:     "fromText",
		Status: http.StatusTooManyRequests,
		Err:    extract.ErrRequestFailed,
	}})

	status, envelope := doJSON(t, s, http.MethodPost, "/api/v1/import/text", `{"text":"x"}`)
	assert.GreaterOrEqual(t, status, 400)
	assert.Equal(t, false, envelope["success"])

	// The error stays visible in the status until dismissed.
	_, envelope = doJSON(t, s, http.MethodGet, "/api/v1/import/status", "")
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "error", data["state"])
	assert.Equal(t, true, data["error_visible"])

	status, _ = doJSON(t, s, http.MethodDelete, "/api/v1/import/error", "")
	assert.Less(t, status, 300)

	_, envelope = doJSON(t, s, http.MethodGet, "/api/v1/import/status", "")
	data = envelope["data"].(map[string]any)
	assert.Equal(t, "idle", data["state"])
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t, &fakeStructurer{})

	status, envelope := doJSON(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "healthy", data["status"])
}
