package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// OpenAIClient talks to any OpenAI-compatible chat and embeddings API
type OpenAIClient struct {
	apiKey         string
	baseURL        string
	chatModel      string
	embeddingModel string
	dimensions     int
	maxRetries     int
	client         *http.Client
	logger         *zap.Logger
}

var (
	_ ChatModel = (*OpenAIClient)(nil)
	_ Embedder  = (*OpenAIClient)(nil)
)

// NewOpenAIClient creates a client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewOpenAIClient(cfg *config.LLMConfig, logger *zap.Logger) *OpenAIClient {
	c := &OpenAIClient{
		baseURL:        "https://api.openai.com",
		chatModel:      "gpt-4o-mini",
		embeddingModel: "text-embedding-3-small",
		dimensions:     1536,
		maxRetries:     3,
		logger:         logger,
	}
	timeout := 60 * time.Second

	if cfg != nil {
		c.apiKey = cfg.APIKey
		if cfg.BaseURL != "" {
			c.baseURL = cfg.BaseURL
		}
		if cfg.ChatModel != "" {
			c.chatModel = cfg.ChatModel
		}
		if cfg.EmbeddingModel != "" {
			c.embeddingModel = cfg.EmbeddingModel
		}
		if cfg.EmbeddingDimensions > 0 {
			c.dimensions = cfg.EmbeddingDimensions
		}
		if cfg.MaxRetries >= 0 {
			c.maxRetries = cfg.MaxRetries
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("OPENAI_API_KEY")
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	c.client = &http.Client{Timeout: timeout}
	return c
}

// ModelName returns the default chat model
func (c *OpenAIClient) ModelName() string {
	return c.chatModel
}

// Dimensions returns the requested embedding width
func (c *OpenAIClient) Dimensions() int {
	return c.dimensions
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string                 `json:"name"`
	Schema map[string]interface{} `json:"schema"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// Complete sends a chat completion request
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("completion request has no messages")
	}

	body := chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if body.Model == "" {
		body.Model = c.chatModel
	}
	if req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		body.ResponseFormat = &responseFormat{
			Type:       "json_schema",
			JSONSchema: &jsonSchema{Name: name, Schema: req.Schema},
		}
	}

	var cr chatResponse
	if err := c.post(ctx, "/v1/chat/completions", body, &cr); err != nil {
		return nil, err
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("empty response from chat completion")
	}

	model := cr.Model
	if model == "" {
		model = body.Model
	}
	return &Completion{
		Content: cr.Choices[0].Message.Content,
		Model:   model,
		Usage:   cr.Usage,
	}, nil
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input text, in input order
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	body := embeddingRequest{
		Model:      c.embeddingModel,
		Input:      texts,
		Dimensions: c.dimensions,
	}

	var er embeddingResponse
	if err := c.post(ctx, "/v1/embeddings", body, &er); err != nil {
		return nil, err
	}
	if len(er.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(er.Data))
	}

	sort.Slice(er.Data, func(i, j int) bool { return er.Data[i].Index < er.Data[j].Index })
	out := make([][]float32, len(er.Data))
	for i, d := range er.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// post marshals payload, retries transient failures and decodes the response into out
func (c *OpenAIClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	endpoint := c.baseURL + path

	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			statusErr := &StatusError{Provider: "openai", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
			if !statusErr.Retryable() {
				return backoff.Permanent(statusErr)
			}
			if c.logger != nil {
				c.logger.Warn("⚠️ LLM provider returned retryable status",
					zap.String("path", path),
					zap.Int("status", resp.StatusCode),
					zap.Int("attempt", attempt),
				)
			}
			return statusErr
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode %s response: %w", path, err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 2 * time.Minute

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx))
}
