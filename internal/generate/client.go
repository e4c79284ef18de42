// ABOUTME: Completion provider contract and the Gemini generateContent client.
// ABOUTME: Any non-2xx status or missing candidate text is a GenerationError.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harperreed/fitlog/internal/models"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"
)

// Provider turns a prompt into generated text. When schema is non-nil the
// text is expected to be JSON matching it, but callers must still validate.
type Provider interface {
	Complete(ctx context.Context, prompt string, schema *Schema) (string, error)
}

// Schema is the subset of the OpenAPI schema accepted as responseSchema.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

// GeminiClient calls the Generative Language REST API.
type GeminiClient struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Complete sends a single-turn prompt and returns the first candidate's text.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, schema *Schema) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", &models.GenerationError{Op: "complete", Err: errors.New("missing Gemini API key")}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(c.Model)
	if model == "" {
		model = DefaultModel
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	if schema != nil {
		reqBody.GenerationConfig.ResponseMimeType = "application/json"
		reqBody.GenerationConfig.ResponseSchema = schema
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &models.GenerationError{Op: "complete", Err: fmt.Errorf("marshal payload: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", baseURL, url.PathEscape(model), url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &models.GenerationError{Op: "complete", Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", &models.GenerationError{Op: "complete", Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.GenerationError{Op: "complete", Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &models.GenerationError{Op: "complete", Err: fmt.Errorf("API call failed with status %d", resp.StatusCode)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &models.GenerationError{Op: "complete", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 || parsed.Candidates[0].Content.Parts[0].Text == "" {
		return "", &models.GenerationError{Op: "complete", Err: errors.New("response has no candidate text")}
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
