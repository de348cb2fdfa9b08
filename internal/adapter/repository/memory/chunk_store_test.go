package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func chunk(meetingID int64, t entities.ChunkType, text string, v ...float32) *entities.Chunk {
	c := &entities.Chunk{MeetingID: meetingID, ChunkType: t, Text: text}
	if len(v) > 0 {
		c.SetVector(v)
	}
	return c
}

func TestUpsertInsightChunks_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := NewChunkStore()

	batch := func() []*entities.Chunk {
		return []*entities.Chunk{
			chunk(1, entities.ChunkTypeInsight, "Overview: ship v2", 1, 0, 0),
			chunk(1, entities.ChunkTypeActionItem, "Alice writes the release notes", 0, 1, 0),
		}
	}

	require.NoError(t, store.UpsertInsightChunks(ctx, 1, batch()))
	first := store.All()
	require.Len(t, first, 2)

	require.NoError(t, store.UpsertInsightChunks(ctx, 1, batch()))
	second := store.All()
	require.Len(t, second, 2)

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].ChunkHash, second[i].ChunkHash)
	}
}

func TestUpsertInsightChunks_KeepsStableChunkWithoutEmbedding(t *testing.T) {
	ctx := context.Background()
	store := NewChunkStore()

	require.NoError(t, store.UpsertInsightChunks(ctx, 1, []*entities.Chunk{
		chunk(1, entities.ChunkTypeInsight, "Blocker: no staging env", 1, 0),
	}))
	before := store.All()
	require.Len(t, before, 1)

	require.NoError(t, store.UpsertInsightChunks(ctx, 1, []*entities.Chunk{
		chunk(1, entities.ChunkTypeInsight, "Blocker: no staging env"),
	}))
	after := store.All()
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, []float32{1, 0}, after[0].Vector())
}

func TestUpsertInsightChunks_NewChunkWithoutEmbeddingFails(t *testing.T) {
	store := NewChunkStore()
	err := store.UpsertInsightChunks(context.Background(), 1, []*entities.Chunk{
		chunk(1, entities.ChunkTypeInsight, "fresh text"),
	})
	assert.ErrorIs(t, err, entities.ErrMissingEmbedding)
	assert.Empty(t, store.All())
}

func TestUpsertInsightChunks_PrunesStale(t *testing.T) {
	ctx := context.Background()
	store := NewChunkStore()

	require.NoError(t, store.ReplaceTranscriptChunks(ctx, 1, []*entities.Chunk{
		chunk(1, entities.ChunkTypeTranscript, "hello", 1, 1),
	}))
	require.NoError(t, store.UpsertInsightChunks(ctx, 1, []*entities.Chunk{
		chunk(1, entities.ChunkTypeInsight, "old overview", 1, 0),
		chunk(1, entities.ChunkTypeActionItem, "old action", 0, 1),
	}))
	require.NoError(t, store.UpsertInsightChunks(ctx, 1, []*entities.Chunk{
		chunk(1, entities.ChunkTypeInsight, "new overview", 1, 0),
	}))

	n, err := store.CountByMeeting(ctx, 1, entities.ChunkTypeInsight)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.CountByMeeting(ctx, 1, entities.ChunkTypeActionItem)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	n, err = store.CountByMeeting(ctx, 1, entities.ChunkTypeTranscript)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "transcript chunks are not touched by insight upserts")
}

func TestUpsertInsightChunks_RejectsTranscriptType(t *testing.T) {
	store := NewChunkStore()
	err := store.UpsertInsightChunks(context.Background(), 1, []*entities.Chunk{
		chunk(1, entities.ChunkTypeTranscript, "hello", 1),
	})
	assert.ErrorIs(t, err, entities.ErrInvalidChunkType)
}

func TestReplaceTranscriptChunks_ReplacesOnlyThatMeeting(t *testing.T) {
	ctx := context.Background()
	store := NewChunkStore()

	require.NoError(t, store.ReplaceTranscriptChunks(ctx, 1, []*entities.Chunk{
		chunk(1, entities.ChunkTypeTranscript, "a", 1, 0),
		chunk(1, entities.ChunkTypeTranscript, "b", 0, 1),
	}))
	require.NoError(t, store.ReplaceTranscriptChunks(ctx, 2, []*entities.Chunk{
		chunk(2, entities.ChunkTypeTranscript, "other meeting", 1, 1),
	}))
	require.NoError(t, store.ReplaceTranscriptChunks(ctx, 1, []*entities.Chunk{
		chunk(1, entities.ChunkTypeTranscript, "c", 1, 1),
		chunk(1, entities.ChunkTypeTranscript, "c", 1, 1),
	}))

	n, err := store.CountByMeeting(ctx, 1, entities.ChunkTypeTranscript)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "duplicate fingerprints collapse")

	n, err = store.CountByMeeting(ctx, 2, entities.ChunkTypeTranscript)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	fps, err := store.ListFingerprints(ctx, 1, entities.ChunkTypeTranscript)
	require.NoError(t, err)
	_, ok := fps[entities.Fingerprint(1, entities.ChunkTypeTranscript, "c")]
	assert.True(t, ok)
}

func TestReplaceTranscriptChunks_RequiresEmbedding(t *testing.T) {
	store := NewChunkStore()
	err := store.ReplaceTranscriptChunks(context.Background(), 1, []*entities.Chunk{
		chunk(1, entities.ChunkTypeTranscript, "no vector"),
	})
	assert.ErrorIs(t, err, entities.ErrMissingEmbedding)
}

func TestQueryByVector_OrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	store := NewChunkStore()

	day := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	m1 := &entities.Meeting{ID: 1, Platform: "google_meet", StartTime: &day}

	c1 := chunk(1, entities.ChunkTypeTranscript, "exact", 1, 0)
	c1.ApplyMeeting(m1)
	c2 := chunk(1, entities.ChunkTypeTranscript, "tied", 0, 1)
	c2.ApplyMeeting(m1)
	c3 := chunk(1, entities.ChunkTypeTranscript, "also tied", 0, -1)
	c3.ApplyMeeting(m1)
	require.NoError(t, store.ReplaceTranscriptChunks(ctx, 1, []*entities.Chunk{c1, c2, c3}))
	require.NoError(t, store.ReplaceTranscriptChunks(ctx, 2, []*entities.Chunk{
		chunk(2, entities.ChunkTypeTranscript, "meeting two", 1, 0),
	}))

	got, err := store.QueryByVector(ctx, []float32{1, 0}, entities.RetrievalFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.InDelta(t, 1.0, got[0].Similarity, 1e-9)
	assert.InDelta(t, 1.0, got[1].Similarity, 1e-9)
	assert.Less(t, got[0].ID, got[1].ID, "ties break by id ascending")
	assert.Equal(t, "tied", got[2].Text)
	assert.Equal(t, "also tied", got[3].Text)

	mid := int64(2)
	got, err = store.QueryByVector(ctx, []float32{1, 0}, entities.RetrievalFilter{MeetingID: &mid}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].MeetingID)

	got, err = store.QueryByVector(ctx, []float32{1, 0}, entities.RetrievalFilter{DateFrom: &day, DateTo: &day}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3, "meeting two has no meeting date")

	got, err = store.QueryByVector(ctx, []float32{1, 0}, entities.RetrievalFilter{}, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = store.QueryByVector(ctx, []float32{1, 0}, entities.RetrievalFilter{}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQueryByVector_SelfIsTopResult(t *testing.T) {
	ctx := context.Background()
	store := NewChunkStore()

	vectors := [][]float32{
		{0.9, 0.1, 0.0, 0.2},
		{0.1, 0.8, 0.3, 0.0},
		{0.0, 0.2, 0.9, 0.4},
		{0.3, 0.3, 0.3, 0.9},
	}
	batch := make([]*entities.Chunk, 0, len(vectors))
	for i, v := range vectors {
		batch = append(batch, chunk(7, entities.ChunkTypeTranscript, string(rune('a'+i)), v...))
	}
	require.NoError(t, store.ReplaceTranscriptChunks(ctx, 7, batch))

	for _, c := range store.All() {
		got, err := store.QueryByVector(ctx, c.Vector(), entities.RetrievalFilter{}, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, c.ID, got[0].ID)
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
