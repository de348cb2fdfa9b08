package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// MeetingRepository handles meeting lookups and summary state transitions
type MeetingRepository struct {
	db *gorm.DB
}

var _ repo.MeetingRepository = (*MeetingRepository)(nil)

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// GetDB returns the underlying database handle
func (r *MeetingRepository) GetDB() *gorm.DB {
	return r.db
}

// GetByID retrieves a meeting by ID
func (r *MeetingRepository) GetByID(ctx context.Context, id int64) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

// ClaimNext selects the oldest pending meeting with FOR UPDATE SKIP LOCKED
// and marks it processing in the same transaction
func (r *MeetingRepository) ClaimNext(ctx context.Context, statuses []string) (*entities.Meeting, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	var claimed *entities.Meeting
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meeting entities.Meeting
		result := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status IN ? AND summary_state = ?", statuses, entities.SummaryStatePending).
			Order("updated_at ASC").
			Order("id ASC").
			Limit(1).
			Find(&meeting)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&entities.Meeting{}).
			Where("id = ?", meeting.ID).
			Updates(map[string]interface{}{
				"summary_state": entities.SummaryStateProcessing,
				"summary_error": nil,
				"updated_at":    now,
			}).Error; err != nil {
			return err
		}

		meeting.SummaryState = entities.SummaryStateProcessing
		meeting.SummaryError = nil
		meeting.UpdatedAt = now
		claimed = &meeting
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim meeting: %w", err)
	}
	return claimed, nil
}

// ResetStaleProcessing returns abandoned processing meetings to pending
func (r *MeetingRepository) ResetStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("summary_state = ? AND updated_at < ?", entities.SummaryStateProcessing, olderThan).
		Updates(map[string]interface{}{
			"summary_state": entities.SummaryStatePending,
			"updated_at":    time.Now(),
		})
	return result.RowsAffected, result.Error
}

// MarkState sets a terminal state and processed_at
func (r *MeetingRepository) MarkState(ctx context.Context, id int64, state entities.SummaryState) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"summary_state": state,
			"processed_at":  now,
			"updated_at":    now,
		}).Error
}

// MarkFailed sets the error state with a message
func (r *MeetingRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"summary_state": entities.SummaryStateError,
			"summary_error": reason,
			"updated_at":    time.Now(),
		}).Error
}

// SaveInsights merges the document into meeting data and marks the meeting completed
func (r *MeetingRepository) SaveInsights(ctx context.Context, id int64, doc *entities.InsightsDocument, roster string) error {
	if doc == nil {
		return errors.New("insights document cannot be nil")
	}

	patch := map[string]interface{}{entities.MeetingDataInsightsKey: doc}
	if roster != "" {
		patch[entities.MeetingDataRosterKey] = roster
	}
	b, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode insights: %w", err)
	}

	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"data":          gorm.Expr("COALESCE(data, '{}'::jsonb) || ?::jsonb", string(b)),
			"summary_state": entities.SummaryStateCompleted,
			"summary_error": nil,
			"processed_at":  now,
			"updated_at":    now,
		}).Error
}

// ResetToPending makes a meeting claimable again. Meetings in processing
// are left to their worker or the stale lease reaper.
func (r *MeetingRepository) ResetToPending(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND summary_state <> ?", id, entities.SummaryStateProcessing).
		Updates(map[string]interface{}{
			"summary_state": entities.SummaryStatePending,
			"summary_error": nil,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
