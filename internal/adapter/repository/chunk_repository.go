package repository

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

var insightChunkTypes = []entities.ChunkType{entities.ChunkTypeInsight, entities.ChunkTypeActionItem}

// ChunkRepository stores meeting chunks in PostgreSQL with pgvector
type ChunkRepository struct {
	db *gorm.DB
}

var _ repo.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ReplaceTranscriptChunks deletes and recreates the transcript chunks of a meeting
func (r *ChunkRepository) ReplaceTranscriptChunks(ctx context.Context, meetingID int64, chunks []*entities.Chunk) error {
	batch, err := entities.PrepareChunkBatch(meetingID, chunks, entities.ChunkTypeTranscript)
	if err != nil {
		return err
	}
	for i, c := range batch {
		if !c.HasEmbedding() {
			return fmt.Errorf("transcript chunk %d: %w", i, entities.ErrMissingEmbedding)
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("meeting_id = ? AND chunk_type = ?", meetingID, entities.ChunkTypeTranscript).
			Delete(&entities.Chunk{}).Error; err != nil {
			return fmt.Errorf("failed to delete transcript chunks: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(batch, 100).Error; err != nil {
			return fmt.Errorf("failed to insert transcript chunks: %w", err)
		}
		return nil
	})
}

// UpsertInsightChunks upserts insight and action item chunks by fingerprint
func (r *ChunkRepository) UpsertInsightChunks(ctx context.Context, meetingID int64, chunks []*entities.Chunk) error {
	batch, err := entities.PrepareChunkBatch(meetingID, chunks, insightChunkTypes...)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := listFingerprints(tx, meetingID, insightChunkTypes)
		if err != nil {
			return err
		}

		keep := make([]string, 0, len(batch))
		toWrite := make([]*entities.Chunk, 0, len(batch))
		for i, c := range batch {
			keep = append(keep, c.ChunkHash)
			if c.HasEmbedding() {
				toWrite = append(toWrite, c)
				continue
			}
			id, ok := existing[c.ChunkHash]
			if !ok {
				return fmt.Errorf("insight chunk %d: %w", i, entities.ErrMissingEmbedding)
			}
			c.ID = id
		}

		prune := tx.Where("meeting_id = ? AND chunk_type IN ?", meetingID, insightChunkTypes)
		if len(keep) > 0 {
			prune = prune.Where("chunk_hash NOT IN ?", keep)
		}
		if err := prune.Delete(&entities.Chunk{}).Error; err != nil {
			return fmt.Errorf("failed to prune insight chunks: %w", err)
		}

		if len(toWrite) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}, {Name: "chunk_type"}, {Name: "chunk_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"text", "embedding", "segment_start", "segment_end", "timestamp",
				"speaker", "language", "topics", "meeting_native_id", "platform",
				"meeting_date", "updated_at",
			}),
		}).Create(&toWrite).Error; err != nil {
			return fmt.Errorf("failed to upsert insight chunks: %w", err)
		}
		return nil
	})
}

// ListFingerprints returns fingerprint -> chunk id for the meeting
func (r *ChunkRepository) ListFingerprints(ctx context.Context, meetingID int64, types ...entities.ChunkType) (map[string]int64, error) {
	return listFingerprints(r.db.WithContext(ctx), meetingID, types)
}

func listFingerprints(db *gorm.DB, meetingID int64, types []entities.ChunkType) (map[string]int64, error) {
	var rows []struct {
		ID        int64
		ChunkHash string
	}
	q := db.Model(&entities.Chunk{}).Select("id, chunk_hash").Where("meeting_id = ?", meetingID)
	if len(types) > 0 {
		q = q.Where("chunk_type IN ?", types)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list fingerprints: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ChunkHash] = row.ID
	}
	return out, nil
}

// QueryByVector returns the nearest chunks by cosine similarity
func (r *ChunkRepository) QueryByVector(ctx context.Context, vector []float32, filter entities.RetrievalFilter, limit int) ([]entities.Chunk, error) {
	chunks := make([]entities.Chunk, 0)
	if limit <= 0 || len(vector) == 0 {
		return chunks, nil
	}

	q := r.db.WithContext(ctx).
		Model(&entities.Chunk{}).
		Select("meeting_chunks.*, 1 - (embedding <=> ?) AS similarity", pgvector.NewVector(vector)).
		Where("embedding IS NOT NULL")
	q = applyChunkFilter(q, filter)

	if err := q.Order("similarity DESC").Order("id ASC").Limit(limit).Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("failed to query chunks by vector: %w", err)
	}
	return chunks, nil
}

// CountByMeeting counts chunks of one type for a meeting
func (r *ChunkRepository) CountByMeeting(ctx context.Context, meetingID int64, chunkType entities.ChunkType) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&entities.Chunk{}).
		Where("meeting_id = ? AND chunk_type = ?", meetingID, chunkType).
		Count(&n).Error
	return n, err
}

// applyChunkFilter pushes the retrieval filter into the query
func applyChunkFilter(q *gorm.DB, f entities.RetrievalFilter) *gorm.DB {
	if f.MeetingID != nil {
		q = q.Where("meeting_id = ?", *f.MeetingID)
	}
	if len(f.MeetingIDs) > 0 {
		q = q.Where("meeting_id IN ?", f.MeetingIDs)
	}
	if len(f.ExcludeMeetingIDs) > 0 {
		q = q.Where("meeting_id NOT IN ?", f.ExcludeMeetingIDs)
	}
	if f.Platform != "" {
		q = q.Where("platform = ?", f.Platform)
	}
	if f.Speaker != "" {
		q = q.Where("speaker = ?", f.Speaker)
	}
	if f.Language != "" {
		q = q.Where("language = ?", f.Language)
	}
	if f.ChunkType != "" {
		q = q.Where("chunk_type = ?", f.ChunkType)
	}
	if from := f.DateFromBound(); from != nil {
		q = q.Where("meeting_date >= ?", from.Format("2006-01-02"))
	}
	if to := f.DateToBound(); to != nil {
		q = q.Where("meeting_date < ?", to.Format("2006-01-02"))
	}
	return q
}
