package repositories

import (
	"context"
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// MeetingRepository defines meeting lookups and the summary state machine
type MeetingRepository interface {
	// GetByID returns nil, nil when the meeting does not exist
	GetByID(ctx context.Context, id int64) (*entities.Meeting, error)

	// ClaimNext atomically moves the oldest pending meeting whose capture
	// status is in statuses to processing. Rows locked by another claimer are
	// skipped. Returns nil, nil when nothing is claimable.
	ClaimNext(ctx context.Context, statuses []string) (*entities.Meeting, error)

	// ResetStaleProcessing returns processing meetings not updated since
	// olderThan to pending. Returns the number of meetings reset.
	ResetStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error)

	// MarkState sets a terminal state and processed_at
	MarkState(ctx context.Context, id int64, state entities.SummaryState) error

	// MarkFailed sets the error state and stores the failure message
	MarkFailed(ctx context.Context, id int64, reason string) error

	// SaveInsights stores the raw document (and roster snapshot when given) in
	// the meeting data and marks the meeting completed
	SaveInsights(ctx context.Context, id int64, doc *entities.InsightsDocument, roster string) error

	// ResetToPending makes a meeting claimable again. Returns false when the
	// meeting does not exist or a worker is processing it.
	ResetToPending(ctx context.Context, id int64) (bool, error)
}

// TranscriptRepository reads captured transcript segments
type TranscriptRepository interface {
	// ListSegments returns the meeting's segments ordered by start time
	ListSegments(ctx context.Context, meetingID int64) ([]*entities.TranscriptSegment, error)
}

// InsightsRepository persists normalized rows derived from an insights document
type InsightsRepository interface {
	// ReplaceDerived deletes then inserts every derived row of the meeting
	ReplaceDerived(ctx context.Context, meetingID int64, derived *entities.DerivedInsights) error

	// ListUpcomingDeadlines returns deadlines due in [from, to) ordered by due date
	ListUpcomingDeadlines(ctx context.Context, from, to time.Time) ([]entities.Deadline, error)

	// ListActionItems returns the action items of a meeting
	ListActionItems(ctx context.Context, meetingID int64) ([]entities.ActionItem, error)
}
