package extract

import (
	"context"
	"encoding/json/v2"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewClient(srv.URL, "test-key", "gpt-4o-mini", 5*time.Second, logger)
}

// envelopeWith wraps schema JSON the way the service nests it.
func envelopeWith(text string) response {
	return response{Output: []outputItem{{Content: []contentBlock{{Text: text}}}}}
}

func TestFromText(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("authorization: got %q", r.Header.Get("Authorization"))
		}
		if err := json.UnmarshalRead(r.Body, &gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := envelopeWith(`{"title":"Cake","ingredients":["200g flour","100g sugar"],"instructions":"Mix and bake at 180°C","servings":"4"}`)
		if err := json.MarshalWrite(w, resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	})

	recipe, err := c.FromText(context.Background(), "200g flour, 100g sugar. Mix and bake at 180°C, serves 4.")
	if err != nil {
		t.Fatalf("FromText: %v", err)
	}
	if recipe.Title != "Cake" {
		t.Errorf("Title: got %q, want %q", recipe.Title, "Cake")
	}
	if len(recipe.Ingredients) != 2 || recipe.Ingredients[0] != "200g flour" {
		t.Errorf("Ingredients: got %v", recipe.Ingredients)
	}
	if recipe.Servings != "4" {
		t.Errorf("Servings: got %q, want %q", recipe.Servings, "4")
	}

	// Request carries model, prompt-prefixed input, and the strict schema.
	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("model: got %v", gotBody["model"])
	}
	input, _ := gotBody["input"].(string)
	if !strings.Contains(input, "200g flour") || !strings.Contains(input, "Zutaten") {
		t.Errorf("input: got %q", input)
	}
	text, _ := gotBody["text"].(map[string]any)
	format, _ := text["format"].(map[string]any)
	if format["type"] != "json_schema" || format["name"] != "recipe_response" || format["strict"] != true {
		t.Errorf("format: got %v", format)
	}
	schema, _ := format["schema"].(map[string]any)
	required, _ := schema["required"].([]any)
	if len(required) != 3 {
		t.Errorf("required: got %v, want title/ingredients/instructions", required)
	}
}

func TestFromImageURLRequiresServings(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.UnmarshalRead(r.Body, &gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := envelopeWith(`{"title":"Suppe","ingredients":["Wasser"],"instructions":"Kochen","servings":"2"}`)
		if err := json.MarshalWrite(w, resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	})

	recipe, err := c.FromImageURL(context.Background(), "https://example.com/rezept.jpg")
	if err != nil {
		t.Fatalf("FromImageURL: %v", err)
	}
	if recipe.Servings != "2" {
		t.Errorf("Servings: got %q, want %q", recipe.Servings, "2")
	}

	// The image variant adds servings to the required schema fields.
	text, _ := gotBody["text"].(map[string]any)
	format, _ := text["format"].(map[string]any)
	schema, _ := format["schema"].(map[string]any)
	required, _ := schema["required"].([]any)
	if len(required) != 4 {
		t.Errorf("required: got %v, want four fields", required)
	}

	// Input is a message list carrying the image URL.
	input, _ := gotBody["input"].([]any)
	if len(input) != 1 {
		t.Fatalf("input: got %v", gotBody["input"])
	}
	msg, _ := input[0].(map[string]any)
	content, _ := msg["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("content: got %v", content)
	}
	img, _ := content[1].(map[string]any)
	if img["image_url"] != "https://example.com/rezept.jpg" {
		t.Errorf("image_url: got %v", img["image_url"])
	}
}

func TestFromTextRequestFailed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := c.FromText(context.Background(), "irrelevant")
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("got %v, want ErrRequestFailed", err)
	}
	var extractErr *Error
	if !errors.As(err, &extractErr) {
		t.Fatalf("got %T, want *Error", err)
	}
	if extractErr.Status != http.StatusNotFound {
		t.Errorf("Status: got %d, want %d", extractErr.Status, http.StatusNotFound)
	}
}

func TestFromTextEmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.MarshalWrite(w, response{}); err != nil {
			t.Errorf("encode response: %v", err)
		}
	})

	_, err := c.FromText(context.Background(), "irrelevant")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("got %v, want ErrEmptyResponse", err)
	}
}

func TestFromTextUndecodableContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.MarshalWrite(w, envelopeWith("this is not schema JSON")); err != nil {
			t.Errorf("encode response: %v", err)
		}
	})

	_, err := c.FromText(context.Background(), "irrelevant")
	if !errors.Is(err, ErrUndecodableContent) {
		t.Errorf("got %v, want ErrUndecodableContent", err)
	}
}
