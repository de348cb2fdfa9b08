// Package rag answers questions over stored meeting chunks.
package rag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// Retriever ranks stored chunks against a query vector
type Retriever struct {
	store     repo.ChunkRepository
	overFetch int
	logger    *zap.Logger
}

// NewRetriever creates a retriever. overFetch multiplies the number of
// candidates read from the store before the per-meeting pass; values below 1
// read exactly limit candidates.
func NewRetriever(store repo.ChunkRepository, overFetch int, logger *zap.Logger) *Retriever {
	if overFetch < 1 {
		overFetch = 1
	}
	return &Retriever{
		store:     store,
		overFetch: overFetch,
		logger:    logger,
	}
}

// Fetch returns at most limit chunks matching filter, most similar first.
// Once limit chunks are selected, further candidates from a meeting that is
// already represented are skipped. Repeats from one meeting are allowed while
// there is room.
func (r *Retriever) Fetch(ctx context.Context, vector []float32, filter entities.RetrievalFilter, limit int) ([]entities.Chunk, error) {
	if limit <= 0 {
		return []entities.Chunk{}, nil
	}

	candidates, err := r.store.QueryByVector(ctx, vector, filter, limit*r.overFetch)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}

	selected := make([]entities.Chunk, 0, limit)
	represented := make(map[int64]struct{})
	skipped := 0
	for _, c := range candidates {
		if _, seen := represented[c.MeetingID]; seen && len(selected) >= limit {
			skipped++
			continue
		}
		represented[c.MeetingID] = struct{}{}
		selected = append(selected, c)
	}
	if len(selected) > limit {
		selected = selected[:limit]
	}

	if r.logger != nil {
		r.logger.Debug("🔎 Retrieved chunks",
			zap.Int("candidates", len(candidates)),
			zap.Int("selected", len(selected)),
			zap.Int("skipped", skipped),
			zap.Int("limit", limit),
		)
	}
	return selected, nil
}
