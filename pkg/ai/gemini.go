package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// GeminiClient serves chat and embeddings through the Gemini API
type GeminiClient struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
	dimensions     int
}

var (
	_ ChatModel = (*GeminiClient)(nil)
	_ Embedder  = (*GeminiClient)(nil)
)

// NewGeminiClient creates a Gemini client. Falls back to GEMINI_API_KEY.
// A non-empty cfg.BaseURL replaces the API endpoint.
func NewGeminiClient(ctx context.Context, cfg *config.LLMConfig, opts ...option.ClientOption) (*GeminiClient, error) {
	var apiKey, endpoint string
	g := &GeminiClient{
		chatModel:      "gemini-1.5-flash",
		embeddingModel: "gemini-embedding-001",
		dimensions:     1536,
	}
	if cfg != nil {
		apiKey = cfg.APIKey
		endpoint = cfg.BaseURL
		if cfg.ChatModel != "" {
			g.chatModel = cfg.ChatModel
		}
		if cfg.EmbeddingModel != "" {
			g.embeddingModel = cfg.EmbeddingModel
		}
		if cfg.EmbeddingDimensions > 0 {
			g.dimensions = cfg.EmbeddingDimensions
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	cl, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.client = cl
	return g, nil
}

// Close releases the underlying client
func (g *GeminiClient) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiClient) ModelName() string { return g.chatModel }

func (g *GeminiClient) Dimensions() int { return g.dimensions }

// Complete maps system messages to the system instruction and replays the
// rest as chat history
func (g *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = g.chatModel
	}
	m := g.client.GenerativeModel(modelName)
	m.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.Schema != nil {
		m.ResponseMIMEType = "application/json"
	}

	var system []string
	var contents []*genai.Content
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		case RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	if len(system) > 0 {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))},
		}
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("completion request has no user message")
	}

	cs := m.StartChat()
	cs.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", statusError(err))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	out := &Completion{Content: b.String(), Model: modelName}
	if resp.UsageMetadata != nil {
		out.Usage = &Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

// Embed batches all texts in one BatchEmbedContents request
func (g *GeminiClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	em := g.client.EmbeddingModel(g.embeddingModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed: %w", statusError(err))
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Embeddings))
	}

	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		out = append(out, truncate(e.Values, g.dimensions))
	}
	return out, nil
}

// truncate shortens a Matryoshka embedding to dims values and rescales it
// to unit length. Shorter vectors are returned as is.
func truncate(v []float32, dims int) []float32 {
	if dims <= 0 || len(v) <= dims {
		return v
	}
	out := make([]float32, dims)
	copy(out, v[:dims])

	var sum float64
	for _, x := range out {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return out
	}
	norm := float32(math.Sqrt(sum))
	for i := range out {
		out[i] /= norm
	}
	return out
}

// statusError surfaces Google API failures as *StatusError
func statusError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &StatusError{Provider: "gemini", StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	return err
}
