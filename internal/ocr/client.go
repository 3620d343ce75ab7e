package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json/v2"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	// 2 requests per second, burst of 4. The recognition endpoint is
	// slow enough that callers never sustain more than this anyway.
	defaultRPS   = 2
	defaultBurst = 4
)

// Client calls a remote text recognition service.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewClient creates a recognition client. baseURL carries scheme and host,
// without a trailing slash.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

// RecognizeText extracts the text visible in the given image.
//
// The result is best-effort: for each detected text region only the single
// highest-confidence candidate is kept, regions are joined with newlines in
// engine order, and no confidence threshold is applied, so low-confidence
// misreads pass through unfiltered.
func (c *Client) RecognizeText(ctx context.Context, imageBytes []byte) (string, error) {
	if err := c.validateImage(imageBytes); err != nil {
		return "", err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody, err := json.Marshal(recognizeRequest{
		Image: base64.StdEncoding.EncodeToString(imageBytes),
	})
	if err != nil {
		return "", wrapError("recognize", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/text:recognize", bytes.NewReader(reqBody))
	if err != nil {
		return "", wrapError("recognize", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	c.logger.Debug("recognizing text", "image_bytes", len(imageBytes))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", wrapError("recognize", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", wrapError("recognize", fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode))
	}

	var recognized recognizeResponse
	if err := json.UnmarshalRead(resp.Body, &recognized); err != nil {
		return "", wrapError("recognize", fmt.Errorf("parse response: %w", err))
	}

	if len(recognized.Observations) == 0 {
		return "", ErrNoTextFound
	}

	lines := make([]string, 0, len(recognized.Observations))
	for _, obs := range recognized.Observations {
		if best, ok := obs.top(); ok {
			lines = append(lines, best.Text)
		}
	}
	if len(lines) == 0 {
		return "", ErrNoTextFound
	}

	return strings.Join(lines, "\n"), nil
}

// validateImage checks that the bytes decode as a supported image.
func (c *Client) validateImage(imageBytes []byte) error {
	_, _, err := image.DecodeConfig(bytes.NewReader(imageBytes))
	if err == image.ErrFormat {
		return wrapError("decode", ErrInvalidImage)
	}
	if err != nil {
		return wrapError("decode", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err))
	}
	return nil
}
