package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

func newTestClient(url string, retries int) *OpenAIClient {
	return NewOpenAIClient(&config.LLMConfig{
		APIKey:              "test-key",
		BaseURL:             url,
		ChatModel:           "test-chat",
		EmbeddingModel:      "test-embed",
		EmbeddingDimensions: 3,
		MaxRetries:          retries,
		Timeout:             5 * time.Second,
	}, nil)
}

func TestComplete_SendsSchemaAndReadsUsage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload["model"] != "test-chat" {
			t.Fatalf("unexpected model %v", payload["model"])
		}
		rf, ok := payload["response_format"].(map[string]interface{})
		if !ok || rf["type"] != "json_schema" {
			t.Fatalf("expected json_schema response format, got %v", payload["response_format"])
		}
		schema := rf["json_schema"].(map[string]interface{})
		if schema["name"] != "meeting_insights" {
			t.Fatalf("unexpected schema name %v", schema["name"])
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "test-chat-0613",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"ok":true}`}},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, 0)
	out, err := client.Complete(context.Background(), CompletionRequest{
		Messages:   []Message{{Role: RoleUser, Content: "hi"}},
		SchemaName: "meeting_insights",
		Schema:     map[string]interface{}{"type": "object"},
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if out.Content != `{"ok":true}` {
		t.Fatalf("unexpected content %q", out.Content)
	}
	if out.Model != "test-chat-0613" {
		t.Fatalf("unexpected model %q", out.Model)
	}
	if out.Usage == nil || out.Usage.TotalTokens != 15 {
		t.Fatalf("unexpected usage %+v", out.Usage)
	}
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"content": "done"}}},
		})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, 2)
	out, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if out.Content != "done" {
		t.Fatalf("unexpected content %q", out.Content)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestComplete_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad"}`))
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, 3)
	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", statusErr.StatusCode)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls)
	}
}

func TestEmbed_ReordersByIndex(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if len(payload.Input) != 2 || payload.Dimensions != 3 {
			t.Fatalf("unexpected payload %+v", payload)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"index": 1, "embedding": []float32{0, 1, 0}},
				{"index": 0, "embedding": []float32{1, 0, 0}},
			},
		})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, 0)
	out, err := client.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(out) != 2 || out[0][0] != 1 || out[1][1] != 1 {
		t.Fatalf("unexpected vectors %v", out)
	}
}

func TestEmbed_CountMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"index": 0, "embedding": []float32{1, 0, 0}}},
		})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, 0)
	if _, err := client.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected count mismatch error")
	}
}
