package insights

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	ucerrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
)

// DefaultUpcomingDays is the deadline window when the caller gives none
const DefaultUpcomingDays = 7

// Queries serves the stored insights to the API and downstream integrations
type Queries struct {
	meetings repo.MeetingRepository
	derived  repo.InsightsRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewQueries creates the read side of the insights store
func NewQueries(meetings repo.MeetingRepository, derived repo.InsightsRepository, logger *zap.Logger) *Queries {
	return &Queries{
		meetings: meetings,
		derived:  derived,
		logger:   logger,
		now:      time.Now,
	}
}

// InsightsContext returns overview, deadlines, action items and blockers of
// a meeting. ErrMeetingNotFound or ErrInsightsUnavailable when absent.
func (q *Queries) InsightsContext(ctx context.Context, meetingID int64) (*entities.InsightsContext, error) {
	m, err := q.getMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	doc, err := m.Insights()
	if err != nil {
		if q.logger != nil {
			q.logger.Warn("⚠️ Stored insights could not be decoded",
				zap.Int64("meeting_id", meetingID),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("%w: %d", ucerrors.ErrInsightsUnavailable, meetingID)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %d", ucerrors.ErrInsightsUnavailable, meetingID)
	}
	return doc.Context(), nil
}

// ActionItems returns the normalized action items of a meeting
func (q *Queries) ActionItems(ctx context.Context, meetingID int64) ([]entities.ActionItem, error) {
	if _, err := q.getMeeting(ctx, meetingID); err != nil {
		return nil, err
	}
	items, err := q.derived.ListActionItems(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list action items: %w", err)
	}
	return items, nil
}

// UpcomingDeadlines returns deadlines due from now through the next days days
func (q *Queries) UpcomingDeadlines(ctx context.Context, days int) ([]entities.Deadline, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	from := q.now().UTC()
	to := from.AddDate(0, 0, days)
	deadlines, err := q.derived.ListUpcomingDeadlines(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list deadlines: %w", err)
	}
	return deadlines, nil
}

// Reprocess resets a meeting to pending so a worker claims it again.
// ErrMeetingBusy while a worker holds the meeting.
func (q *Queries) Reprocess(ctx context.Context, meetingID int64) error {
	ok, err := q.meetings.ResetToPending(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to reset meeting: %w", err)
	}
	if !ok {
		if _, err := q.getMeeting(ctx, meetingID); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d", ucerrors.ErrMeetingBusy, meetingID)
	}
	if q.logger != nil {
		q.logger.Info("🔁 Meeting queued for reprocessing", zap.Int64("meeting_id", meetingID))
	}
	return nil
}

func (q *Queries) getMeeting(ctx context.Context, meetingID int64) (*entities.Meeting, error) {
	m, err := q.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meeting: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %d", ucerrors.ErrMeetingNotFound, meetingID)
	}
	return m, nil
}
