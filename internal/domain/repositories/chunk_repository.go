package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// ChunkRepository defines persistence for retrievable chunks.
// Writes are scoped to one meeting and run in one transaction, so readers
// never observe a half-replaced chunk set.
type ChunkRepository interface {
	// ReplaceTranscriptChunks deletes every transcript chunk of the meeting and
	// inserts the given set. Chunks with an identical fingerprint collapse to
	// the first occurrence.
	ReplaceTranscriptChunks(ctx context.Context, meetingID int64, chunks []*entities.Chunk) error

	// UpsertInsightChunks upserts insight and action item chunks by fingerprint.
	// A chunk without an embedding whose fingerprint already exists keeps the
	// stored row untouched. Stored insight and action item chunks whose
	// fingerprint is absent from the new set are removed.
	UpsertInsightChunks(ctx context.Context, meetingID int64, chunks []*entities.Chunk) error

	// ListFingerprints returns fingerprint -> chunk id for the meeting
	ListFingerprints(ctx context.Context, meetingID int64, types ...entities.ChunkType) (map[string]int64, error)

	// QueryByVector returns up to limit chunks nearest to vector by cosine
	// similarity, highest first, ties broken by id ascending.
	QueryByVector(ctx context.Context, vector []float32, filter entities.RetrievalFilter, limit int) ([]entities.Chunk, error)

	// CountByMeeting counts chunks of one type for a meeting
	CountByMeeting(ctx context.Context, meetingID int64, chunkType entities.ChunkType) (int64, error)
}
