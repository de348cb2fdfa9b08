package handler

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	dtoinsights "github.com/johnquangdev/meeting-insights/internal/adapter/dto/insights"
	"github.com/johnquangdev/meeting-insights/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/insights"
)

// maxUpcomingDays bounds the deadline window accepted from callers
const maxUpcomingDays = 365

// InsightsReader is the read side of the stored insights
type InsightsReader interface {
	InsightsContext(ctx context.Context, meetingID int64) (*entities.InsightsContext, error)
	ActionItems(ctx context.Context, meetingID int64) ([]entities.ActionItem, error)
	UpcomingDeadlines(ctx context.Context, days int) ([]entities.Deadline, error)
	Reprocess(ctx context.Context, meetingID int64) error
}

// MeetingController exposes extracted insights per meeting
type MeetingController struct {
	queries InsightsReader
	logger  *zap.Logger
}

// NewMeetingController creates a new meeting controller
func NewMeetingController(queries InsightsReader, logger *zap.Logger) *MeetingController {
	return &MeetingController{queries: queries, logger: logger}
}

// InsightsContext returns the condensed insights of a meeting
// @Summary      Get insights context
// @Description  Returns overview, critical deadlines, action items and blockers of a processed meeting
// @Tags         Meetings
// @Produce      json
// @Param        id   path      int  true  "Meeting ID"
// @Success      200  {object}  map[string]interface{}  "Insights context"
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found or not processed yet"
// @Router       /meetings/{id}/insights-context [get]
func (mc *MeetingController) InsightsContext(c echo.Context) error {
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}
	out, err := mc.queries.InsightsContext(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(mc.logger, c, mapUsecaseError(err, meetingID, nil))
	}
	return HandleSuccess(mc.logger, c, out)
}

// ActionItems lists the normalized action items of a meeting
// @Summary      List action items
// @Tags         Meetings
// @Produce      json
// @Param        id   path      int  true  "Meeting ID"
// @Success      200  {object}  insights.ActionItemListResponse
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id}/action-items [get]
func (mc *MeetingController) ActionItems(c echo.Context) error {
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}
	items, err := mc.queries.ActionItems(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(mc.logger, c, mapUsecaseError(err, meetingID, nil))
	}
	return HandleSuccess(mc.logger, c, presenter.ToActionItemListResponse(meetingID, items))
}

// Reprocess queues a meeting for another extraction pass
// @Summary      Reprocess meeting
// @Description  Resets the summary state to pending so a worker extracts insights again
// @Tags         Meetings
// @Produce      json
// @Param        id   path      int  true  "Meeting ID"
// @Success      200  {object}  insights.ReprocessResponse
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Failure      409  {object}  map[string]interface{}  "Meeting is being processed"
// @Router       /meetings/{id}/reprocess [post]
func (mc *MeetingController) Reprocess(c echo.Context) error {
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}
	if err := mc.queries.Reprocess(c.Request().Context(), meetingID); err != nil {
		return HandleError(mc.logger, c, mapUsecaseError(err, meetingID, nil))
	}
	return HandleSuccess(mc.logger, c, dtoinsights.ReprocessResponse{
		MeetingID:    meetingID,
		SummaryState: string(entities.SummaryStatePending),
	})
}

// UpcomingDeadlines lists deadlines due within the next N days
// @Summary      Upcoming deadlines
// @Tags         Deadlines
// @Produce      json
// @Param        days  query     int  false  "Window in days (default 7)"
// @Success      200   {object}  insights.UpcomingDeadlinesResponse
// @Failure      400   {object}  map[string]interface{}  "Invalid days"
// @Router       /deadlines/upcoming [get]
func (mc *MeetingController) UpcomingDeadlines(c echo.Context) error {
	days := insights.DefaultUpcomingDays
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxUpcomingDays {
			return HandleError(mc.logger, c, errors.ErrInvalidArgument("days must be between 1 and 365"))
		}
		days = n
	}
	deadlines, err := mc.queries.UpcomingDeadlines(c.Request().Context(), days)
	if err != nil {
		return HandleError(mc.logger, c, mapUsecaseError(err, 0, nil))
	}
	return HandleSuccess(mc.logger, c, presenter.ToUpcomingDeadlinesResponse(days, deadlines))
}
