// Package embedding turns chunk text into vectors through an injected provider.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/infrastructure/cache"
	ucerrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
)

// DefaultBatchSize is the number of texts sent per provider request
const DefaultBatchSize = 50

const dimensionSample = "meeting insights dimension check"

// VectorCache stores query vectors by key
type VectorCache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, value []float32) error
}

// Generator batches texts through an Embedder. A failed batch or a response
// with the wrong count or width fails the whole call.
type Generator struct {
	embedder   ai.Embedder
	batchSize  int
	dimensions int
	cache      VectorCache
	logger     *zap.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithBatchSize overrides DefaultBatchSize
func WithBatchSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.batchSize = n
		}
	}
}

// WithDimensions sets the expected vector width. 0 disables the check.
func WithDimensions(n int) Option {
	return func(g *Generator) { g.dimensions = n }
}

// WithCache enables the query vector cache
func WithCache(c VectorCache) Option {
	return func(g *Generator) { g.cache = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a generator. The expected width defaults to the
// embedder's Dimensions.
func NewGenerator(embedder ai.Embedder, opts ...Option) *Generator {
	g := &Generator{
		embedder:   embedder,
		batchSize:  DefaultBatchSize,
		dimensions: embedder.Dimensions(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Embed returns one vector per text, in input order
func (g *Generator) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	for start := 0; start < len(texts); start += g.batchSize {
		end := start + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		vectors, err := g.embedder.Embed(ctx, batch)
		if err != nil {
			if g.logger != nil {
				g.logger.Error("❌ Embedding batch failed",
					zap.Int("batch_start", start),
					zap.Int("batch_size", len(batch)),
					zap.Error(err),
				)
			}
			return nil, fmt.Errorf("%w: batch starting at %d: %w", ucerrors.ErrEmbeddingFailed, start, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: batch starting at %d returned %d vectors for %d texts",
				ucerrors.ErrEmbeddingFailed, start, len(vectors), len(batch))
		}
		for i, v := range vectors {
			if err := g.checkWidth(v); err != nil {
				return nil, fmt.Errorf("%w: text %d: %v", ucerrors.ErrEmbeddingFailed, start+i, err)
			}
		}
		out = append(out, vectors...)
	}

	if g.logger != nil {
		g.logger.Debug("🧮 Embedded texts",
			zap.Int("count", len(texts)),
			zap.String("model", g.embedder.ModelName()),
		)
	}
	return out, nil
}

// EmbedQuery embeds a single query, consulting the cache first
func (g *Generator) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty query", ucerrors.ErrEmbeddingFailed)
	}

	key := cache.EmbeddingKey(g.embedder.ModelName(), text)
	if g.cache != nil {
		v, ok, err := g.cache.Get(ctx, key)
		if err != nil && g.logger != nil {
			g.logger.Warn("⚠️ Query vector cache read failed", zap.Error(err))
		}
		if ok && g.checkWidth(v) == nil {
			return v, nil
		}
	}

	vectors, err := g.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	v := vectors[0]

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, v); err != nil && g.logger != nil {
			g.logger.Warn("⚠️ Query vector cache write failed", zap.Error(err))
		}
	}
	return v, nil
}

// CheckDimensions embeds a sample text and fails when the provider's vectors
// do not have the expected width
func (g *Generator) CheckDimensions(ctx context.Context) error {
	vectors, err := g.embedder.Embed(ctx, []string{dimensionSample})
	if err != nil {
		return fmt.Errorf("%w: dimension check: %w", ucerrors.ErrEmbeddingFailed, err)
	}
	if len(vectors) != 1 {
		return fmt.Errorf("%w: dimension check returned %d vectors", ucerrors.ErrEmbeddingFailed, len(vectors))
	}
	if err := g.checkWidth(vectors[0]); err != nil {
		return fmt.Errorf("%w: model %s: %v", ucerrors.ErrEmbeddingFailed, g.embedder.ModelName(), err)
	}
	return nil
}

func (g *Generator) checkWidth(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("empty vector")
	}
	if g.dimensions > 0 && len(v) != g.dimensions {
		return fmt.Errorf("vector has %d dimensions, expected %d", len(v), g.dimensions)
	}
	return nil
}
