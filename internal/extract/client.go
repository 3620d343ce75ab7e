package extract

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// textPrompt directs the model to reproduce only what the source text
// carries, in German, with the conventional section headings.
const textPrompt = `You are a helpful assistant that extracts recipe details from a text.
The following text is extracted from a recipe book. It contains ingredients and instructions for preparing a dish and may be some more text. The ingredients and instructions may be mixed up.
Please extract the recipe in German language. Give it a title and headlines for "Zutaten" and "Zubereitung".
Only use the terms from the text; do not add any new ones. All content directly related to the preparation, e.g., the number of servings or headings in the ingredient list, should be retained. Please combine words that are separated into one word. Here is the text:
`

// imagePrompt is the variant for photo input, where the model also reads
// the serving count off the page.
const imagePrompt = `You are a helpful assistant that extracts recipe details from a photo.
The image shows a page from a recipe book. It contains ingredients and instructions for preparing a dish and may be some more text. The ingredients and instructions may be mixed up.
Please extract the recipe in German language. Give it a title and headlines for "Zutaten" and "Zubereitung".
Only use the terms from the image; do not add any new ones. All content directly related to the preparation, e.g., the number of servings or headings in the ingredient list, should be retained. Please combine words that are separated into one word.`

// Client calls a structured-completion endpoint to turn free recipe text
// into schema-shaped data. No retries; transient failures surface to the
// caller immediately.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	logger  *slog.Logger
}

// NewClient creates an extraction client. baseURL carries scheme and host,
// without a trailing slash.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		logger:  logger,
	}
}

// recipeSchema builds the strict response schema. The image variant also
// requires a servings field, since there is no separate OCR text the user
// could have edited the serving count into.
func recipeSchema(withServings bool) map[string]any {
	properties := map[string]any{
		"title": map[string]any{
			"type":        "string",
			"description": "The title of the recipe",
		},
		"ingredients": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "List of ingredients for the recipe",
		},
		"instructions": map[string]any{
			"type":        "string",
			"description": "Step-by-step cooking instructions",
		},
	}
	required := []string{"title", "ingredients", "instructions"}
	if withServings {
		properties["servings"] = map[string]any{
			"type":        "string",
			"description": "Number of servings the recipe yields",
		}
		required = append(required, "servings")
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// FromText extracts a structured recipe from free-form text.
func (c *Client) FromText(ctx context.Context, text string) (*Recipe, error) {
	req := request{
		Model: c.model,
		Input: textPrompt + text,
		Text: textConfig{Format: responseFormat{
			Type:   "json_schema",
			Name:   "recipe_response",
			Schema: recipeSchema(false),
			Strict: true,
		}},
	}
	return c.do(ctx, "fromText", req)
}

// FromImageURL extracts a structured recipe from a photo reachable at url.
func (c *Client) FromImageURL(ctx context.Context, url string) (*Recipe, error) {
	req := request{
		Model: c.model,
		Input: []message{{
			Role: "user",
			Content: []contentPart{
				{Type: "input_text", Text: imagePrompt},
				{Type: "input_image", ImageURL: url},
			},
		}},
		Text: textConfig{Format: responseFormat{
			Type:   "json_schema",
			Name:   "recipe_response",
			Schema: recipeSchema(true),
			Strict: true,
		}},
	}
	return c.do(ctx, "fromImageURL", req)
}

func (c *Client) do(ctx context.Context, op string, payload request) (*Recipe, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, wrapError(op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/responses", bytes.NewReader(body))
	if err != nil {
		return nil, wrapError(op, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("extracting recipe", "op", op, "model", c.model)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, wrapError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Op: op, Status: resp.StatusCode, Err: ErrRequestFailed}
	}

	var envelope response
	if err := json.UnmarshalRead(resp.Body, &envelope); err != nil {
		return nil, wrapError(op, fmt.Errorf("parse envelope: %w", err))
	}

	if len(envelope.Output) == 0 || len(envelope.Output[0].Content) == 0 {
		return nil, wrapError(op, ErrEmptyResponse)
	}

	var recipe Recipe
	text := envelope.Output[0].Content[0].Text
	if err := json.Unmarshal([]byte(text), &recipe); err != nil {
		return nil, wrapError(op, fmt.Errorf("%w: %v", ErrUndecodableContent, err))
	}

	return &recipe, nil
}
