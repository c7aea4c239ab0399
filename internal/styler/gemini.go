// internal/styler/gemini.go - Gemini image styling client
package styler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aerial-to-topo/internal"
	"aerial-to-topo/internal/config"
)

// Styler turns a source raster into a styled raster
type Styler interface {
	Style(ctx context.Context, image []byte, prompt string) ([]byte, error)
}

// GeminiClient calls the Gemini generateContent endpoint with an inline
// image and a style instruction, and extracts the generated image.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxRetries int
	httpClient *http.Client
}

// NewGeminiClient creates a client from the resolved configuration
func NewGeminiClient(cfg *config.GeminiConfig, apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// geminiRequest is the generateContent request payload
type geminiRequest struct {
	Contents []content `json:"contents"`
}

// content groups the parts of one message
type content struct {
	Parts []part `json:"parts"`
}

// part carries either text or inline binary data
type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

// inlineData is a base64-encoded media payload
type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"` // encoding/json base64-encodes []byte
}

// geminiResponse is the generateContent response payload
type geminiResponse struct {
	Candidates []candidate `json:"candidates"`
}

// candidate is one generated alternative
type candidate struct {
	Content content `json:"content"`
}

// Style submits the source image with the style prompt and returns the
// generated image bytes. Rate limiting and server errors are retried with a
// growing delay; other failures surface immediately.
func (c *GeminiClient) Style(ctx context.Context, image []byte, prompt string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * 10 * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		styled, retryable, err := c.generate(ctx, image, prompt)
		if err == nil {
			return styled, nil
		}

		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("style transfer failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// generate performs one generateContent call
func (c *GeminiClient) generate(ctx context.Context, image []byte, prompt string) ([]byte, bool, error) {
	payload := geminiRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: "image/jpeg", Data: image}},
				{Text: prompt},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, false, fmt.Errorf("failed to serialize request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, internal.NewError(internal.ErrorCodeNetwork, "generateContent request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, internal.NewError(internal.ErrorCodeNetwork, "failed to read generateContent response", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, internal.NewError(internal.ErrorCodeNetwork,
			fmt.Sprintf("generateContent returned HTTP %d: %s", resp.StatusCode, truncate(respBody, 200)), nil)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, false, internal.NewError(internal.ErrorCodeProcessing, "failed to parse generateContent response", err)
	}

	for _, cand := range parsed.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return p.InlineData.Data, false, nil
			}
		}
	}

	return nil, false, internal.NewError(internal.ErrorCodeProcessing, "no image in generateContent response", nil)
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
