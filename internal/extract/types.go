package extract

// Recipe is the structured extraction result.
type Recipe struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Servings     string   `json:"servings,omitempty"`
}

// request is the /v1/responses wire request.
type request struct {
	Model string     `json:"model"`
	Input any        `json:"input"` // plain string, or message list for image input
	Text  textConfig `json:"text"`
}

type textConfig struct {
	Format responseFormat `json:"format"`
}

type responseFormat struct {
	Type   string         `json:"type"` // always "json_schema"
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

// message and contentPart build the multimodal input for image extraction.
type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string `json:"type"` // "input_text" or "input_image"
	Text     string `json:"text,omitzero"`
	ImageURL string `json:"image_url,omitzero"`
}

// response is the /v1/responses wire envelope. The schema JSON sits as a
// string inside the first output item's first content block.
type response struct {
	Output []outputItem `json:"output"`
}

type outputItem struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Text string `json:"text"`
}
