package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// TranscriptRepository reads transcript segments written by the capture pipeline
type TranscriptRepository struct {
	db *gorm.DB
}

var _ repo.TranscriptRepository = (*TranscriptRepository)(nil)

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// ListSegments returns the meeting's segments ordered by start time
func (r *TranscriptRepository) ListSegments(ctx context.Context, meetingID int64) ([]*entities.TranscriptSegment, error) {
	var segments []*entities.TranscriptSegment
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("start_time ASC").
		Order("id ASC").
		Find(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}
