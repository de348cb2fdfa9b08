package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

type insightsRepository struct {
	db *gorm.DB
}

// NewInsightsRepository creates a new insights repository backed by GORM
func NewInsightsRepository(db *gorm.DB) repo.InsightsRepository {
	return &insightsRepository{db: db}
}

// ReplaceDerived deletes then inserts every derived row of the meeting in one transaction
func (r *insightsRepository) ReplaceDerived(ctx context.Context, meetingID int64, derived *entities.DerivedInsights) error {
	if derived == nil {
		derived = &entities.DerivedInsights{}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&entities.SpeakerHighlight{},
			&entities.ActionItem{},
			&entities.Blocker{},
			&entities.Deadline{},
			&entities.MeetingMetadata{},
		} {
			if err := tx.Where("meeting_id = ?", meetingID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear %T: %w", model, err)
			}
		}

		if derived.Metadata != nil {
			derived.Metadata.ID = 0
			derived.Metadata.MeetingID = meetingID
			if err := tx.Create(derived.Metadata).Error; err != nil {
				return fmt.Errorf("failed to save meeting metadata: %w", err)
			}
		}

		for _, h := range derived.Highlights {
			h.ID, h.MeetingID = 0, meetingID
		}
		for _, a := range derived.ActionItems {
			a.ID, a.MeetingID = 0, meetingID
		}
		for _, b := range derived.Blockers {
			b.ID, b.MeetingID = 0, meetingID
		}
		for _, d := range derived.Deadlines {
			d.ID, d.MeetingID = 0, meetingID
		}

		if len(derived.Highlights) > 0 {
			if err := tx.CreateInBatches(derived.Highlights, 100).Error; err != nil {
				return fmt.Errorf("failed to save speaker highlights: %w", err)
			}
		}
		if len(derived.ActionItems) > 0 {
			if err := tx.CreateInBatches(derived.ActionItems, 100).Error; err != nil {
				return fmt.Errorf("failed to save action items: %w", err)
			}
		}
		if len(derived.Blockers) > 0 {
			if err := tx.CreateInBatches(derived.Blockers, 100).Error; err != nil {
				return fmt.Errorf("failed to save blockers: %w", err)
			}
		}
		if len(derived.Deadlines) > 0 {
			if err := tx.CreateInBatches(derived.Deadlines, 100).Error; err != nil {
				return fmt.Errorf("failed to save deadlines: %w", err)
			}
		}
		return nil
	})
}

// ListUpcomingDeadlines returns deadlines due in [from, to)
func (r *insightsRepository) ListUpcomingDeadlines(ctx context.Context, from, to time.Time) ([]entities.Deadline, error) {
	var deadlines []entities.Deadline
	if err := r.db.WithContext(ctx).
		Where("due_date >= ? AND due_date < ?", from, to).
		Order("due_date ASC").
		Order("id ASC").
		Find(&deadlines).Error; err != nil {
		return nil, err
	}
	return deadlines, nil
}

// ListActionItems returns the action items of a meeting
func (r *insightsRepository) ListActionItems(ctx context.Context, meetingID int64) ([]entities.ActionItem, error) {
	var items []entities.ActionItem
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
