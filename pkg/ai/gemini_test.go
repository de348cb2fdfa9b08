package ai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

func newTestGemini(t *testing.T, ts *httptest.Server, dims int) *GeminiClient {
	t.Helper()
	g, err := NewGeminiClient(context.Background(), &config.LLMConfig{
		APIKey:              "test-key",
		BaseURL:             ts.URL,
		ChatModel:           "test-chat",
		EmbeddingModel:      "test-embed",
		EmbeddingDimensions: dims,
	}, option.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestGeminiDefaults(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	g, err := NewGeminiClient(context.Background(), &config.LLMConfig{APIKey: "k", BaseURL: ts.URL},
		option.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer g.Close()

	if g.ModelName() != "gemini-1.5-flash" || g.embeddingModel != "gemini-embedding-001" {
		t.Fatalf("unexpected defaults chat=%s embed=%s", g.ModelName(), g.embeddingModel)
	}
	if g.Dimensions() != 1536 {
		t.Fatalf("unexpected dimensions %d", g.Dimensions())
	}
}

func TestGeminiEmbed_TruncatesToConfiguredWidth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/test-embed:batchEmbedContents" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var payload struct {
			Requests []json.RawMessage `json:"requests"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("invalid payload: %v", err)
		}
		if len(payload.Requests) != 2 {
			t.Errorf("expected 2 requests in one batch, got %d", len(payload.Requests))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embeddings": []map[string]interface{}{
				{"values": []float32{3, 4, 12}},
				{"values": []float32{1, 0}},
			},
		})
	}))
	defer ts.Close()

	g := newTestGemini(t, ts, 2)
	vectors, err := g.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if len(vectors[0]) != 2 || math.Abs(float64(vectors[0][0])-0.6) > 1e-6 || math.Abs(float64(vectors[0][1])-0.8) > 1e-6 {
		t.Fatalf("expected truncated unit vector [0.6 0.8], got %v", vectors[0])
	}
	if len(vectors[1]) != 2 || vectors[1][0] != 1 {
		t.Fatalf("vector at the configured width must be unchanged, got %v", vectors[1])
	}
}

func TestGeminiEmbed_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer ts.Close()

	g := newTestGemini(t, ts, 2)
	_, err := g.Embed(context.Background(), []string{"x"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests || statusErr.Provider != "gemini" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestGeminiComplete_SystemInstructionAndUsage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/test-chat:streamGenerateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var payload struct {
			Contents          []json.RawMessage `json:"contents"`
			SystemInstruction *struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"systemInstruction"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("invalid payload: %v", err)
		}
		if payload.SystemInstruction == nil || len(payload.SystemInstruction.Parts) != 1 ||
			payload.SystemInstruction.Parts[0].Text != "be brief" {
			t.Errorf("system message must become the system instruction")
		}
		if len(payload.Contents) != 3 {
			t.Errorf("expected history plus the last user turn, got %d contents", len(payload.Contents))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Hello"}]}}],
			"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 2, "totalTokenCount": 5}
		}]`))
	}))
	defer ts.Close()

	g := newTestGemini(t, ts, 2)
	out, err := g.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
			{Role: RoleUser, Content: "again"},
		},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.Content != "Hello" || out.Model != "test-chat" {
		t.Fatalf("unexpected completion %+v", out)
	}
	if out.Usage == nil || out.Usage.TotalTokens != 5 {
		t.Fatalf("unexpected usage %+v", out.Usage)
	}
}
