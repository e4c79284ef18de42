// ABOUTME: Tests for the Gemini client against an httptest server.
// ABOUTME: Checks the request payload and every failure mode.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harperreed/fitlog/internal/models"
)

func TestGeminiCompleteSendsSchema(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v1beta/models/gemini-2.0-flash:generateContent" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Fatalf("unexpected key: %s", got)
		}

		var body generateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Contents[0].Role != "user" || body.Contents[0].Parts[0].Text != "hello" {
			t.Fatalf("unexpected contents: %+v", body.Contents)
		}
		if body.GenerationConfig.ResponseMimeType != "application/json" || body.GenerationConfig.ResponseSchema == nil {
			t.Fatalf("schema not sent: %+v", body.GenerationConfig)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"calories\":300,\"protein\":20}"}]}}]}`))
	}))
	defer server.Close()

	client := &GeminiClient{APIKey: "test-key", BaseURL: server.URL, HTTPClient: server.Client()}
	text, err := client.Complete(context.Background(), "hello", NutritionSchema)
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if !strings.Contains(text, `"calories":300`) {
		t.Fatalf("unexpected text: %s", text)
	}
}

func TestGeminiCompleteWithoutSchema(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body["generationConfig"]) != 0 {
			t.Fatalf("expected empty generationConfig, got %v", body["generationConfig"])
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Keep going!"}]}}]}`))
	}))
	defer server.Close()

	client := &GeminiClient{APIKey: "k", BaseURL: server.URL, HTTPClient: server.Client()}
	text, err := client.Complete(context.Background(), "summary", nil)
	if err != nil || text != "Keep going!" {
		t.Fatalf("Complete() = %q, %v", text, err)
	}
}

func TestGeminiCompleteFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"forbidden", http.StatusForbidden, `{}`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"no parts", http.StatusOK, `{"candidates":[{"content":{"parts":[]}}]}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := &GeminiClient{APIKey: "k", BaseURL: server.URL, HTTPClient: server.Client()}
			_, err := client.Complete(context.Background(), "x", nil)
			var ge *models.GenerationError
			if !errors.As(err, &ge) {
				t.Fatalf("expected GenerationError, got %v", err)
			}
		})
	}
}

func TestGeminiCompleteMissingKey(t *testing.T) {
	t.Parallel()

	client := &GeminiClient{}
	_, err := client.Complete(context.Background(), "x", nil)
	var ge *models.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}
