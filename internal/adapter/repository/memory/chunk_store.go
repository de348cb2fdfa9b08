// Package memory provides in-process implementations of the repository ports.
// They honor the same contracts as the PostgreSQL repositories and back the
// usecase tests and local runs without a database.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// ChunkStore keeps chunks in a map guarded by a RWMutex
type ChunkStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*entities.Chunk
}

var _ repo.ChunkRepository = (*ChunkStore)(nil)

// NewChunkStore creates an empty chunk store
func NewChunkStore() *ChunkStore {
	return &ChunkStore{rows: make(map[int64]*entities.Chunk)}
}

// ReplaceTranscriptChunks deletes and recreates the transcript chunks of a meeting
func (s *ChunkStore) ReplaceTranscriptChunks(ctx context.Context, meetingID int64, chunks []*entities.Chunk) error {
	batch, err := entities.PrepareChunkBatch(meetingID, chunks, entities.ChunkTypeTranscript)
	if err != nil {
		return err
	}
	for i, c := range batch {
		if !c.HasEmbedding() {
			return fmt.Errorf("transcript chunk %d: %w", i, entities.ErrMissingEmbedding)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, row := range s.rows {
		if row.MeetingID == meetingID && row.ChunkType == entities.ChunkTypeTranscript {
			delete(s.rows, id)
		}
	}
	now := time.Now()
	for _, c := range batch {
		s.insertLocked(c, now)
	}
	return nil
}

// UpsertInsightChunks upserts insight and action item chunks by fingerprint
func (s *ChunkStore) UpsertInsightChunks(ctx context.Context, meetingID int64, chunks []*entities.Chunk) error {
	batch, err := entities.PrepareChunkBatch(meetingID, chunks, entities.ChunkTypeInsight, entities.ChunkTypeActionItem)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]*entities.Chunk)
	for _, row := range s.rows {
		if row.MeetingID == meetingID && isInsightType(row.ChunkType) {
			existing[row.ChunkHash] = row
		}
	}

	keep := make(map[string]struct{}, len(batch))
	for i, c := range batch {
		keep[c.ChunkHash] = struct{}{}
		if _, ok := existing[c.ChunkHash]; !ok && !c.HasEmbedding() {
			return fmt.Errorf("insight chunk %d: %w", i, entities.ErrMissingEmbedding)
		}
	}

	for hash, row := range existing {
		if _, ok := keep[hash]; !ok {
			delete(s.rows, row.ID)
		}
	}

	now := time.Now()
	for _, c := range batch {
		row, ok := existing[c.ChunkHash]
		switch {
		case ok && !c.HasEmbedding():
			c.ID = row.ID
		case ok:
			updated := cloneChunk(c)
			updated.ID = row.ID
			updated.CreatedAt = row.CreatedAt
			updated.UpdatedAt = now
			s.rows[row.ID] = updated
			c.ID = row.ID
		default:
			s.insertLocked(c, now)
		}
	}
	return nil
}

// ListFingerprints returns fingerprint -> chunk id for the meeting
func (s *ChunkStore) ListFingerprints(ctx context.Context, meetingID int64, types ...entities.ChunkType) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64)
	for _, row := range s.rows {
		if row.MeetingID != meetingID {
			continue
		}
		if len(types) > 0 && !typeIn(row.ChunkType, types) {
			continue
		}
		out[row.ChunkHash] = row.ID
	}
	return out, nil
}

// QueryByVector ranks every matching chunk by cosine similarity
func (s *ChunkStore) QueryByVector(ctx context.Context, vector []float32, filter entities.RetrievalFilter, limit int) ([]entities.Chunk, error) {
	out := make([]entities.Chunk, 0)
	if limit <= 0 || len(vector) == 0 {
		return out, nil
	}

	s.mu.RLock()
	for _, row := range s.rows {
		if !row.HasEmbedding() || !filter.Matches(row) {
			continue
		}
		c := *cloneChunk(row)
		c.Similarity = CosineSimilarity(vector, row.Vector())
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountByMeeting counts chunks of one type for a meeting
func (s *ChunkStore) CountByMeeting(ctx context.Context, meetingID int64, chunkType entities.ChunkType) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, row := range s.rows {
		if row.MeetingID == meetingID && row.ChunkType == chunkType {
			n++
		}
	}
	return n, nil
}

// All returns a snapshot of every stored chunk ordered by id
func (s *ChunkStore) All() []entities.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Chunk, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, *cloneChunk(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *ChunkStore) insertLocked(c *entities.Chunk, now time.Time) {
	s.nextID++
	row := cloneChunk(c)
	row.ID = s.nextID
	row.CreatedAt = now
	row.UpdatedAt = now
	s.rows[row.ID] = row
	c.ID = row.ID
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length or zero norm score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func cloneChunk(c *entities.Chunk) *entities.Chunk {
	cp := *c
	if v := c.Vector(); v != nil {
		cp.SetVector(append([]float32(nil), v...))
	}
	if c.Topics != nil {
		cp.Topics = append(cp.Topics[:0:0], c.Topics...)
	}
	return &cp
}

func isInsightType(t entities.ChunkType) bool {
	return t == entities.ChunkTypeInsight || t == entities.ChunkTypeActionItem
}

func typeIn(t entities.ChunkType, types []entities.ChunkType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}
