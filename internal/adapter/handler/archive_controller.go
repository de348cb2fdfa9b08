package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/storage"
)

// archiveURLExpiry is the lifetime of a presigned archive link
const archiveURLExpiry = time.Hour

// ArchiveLocator finds archived insight documents in object storage
type ArchiveLocator interface {
	LatestObject(ctx context.Context, prefix string) (string, bool, error)
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// ArchiveController serves links to archived insight documents
type ArchiveController struct {
	store  ArchiveLocator
	logger *zap.Logger
}

// NewArchiveController creates a new archive controller
func NewArchiveController(store ArchiveLocator, logger *zap.Logger) *ArchiveController {
	return &ArchiveController{store: store, logger: logger}
}

// InsightsArchive returns a presigned URL to the latest archived document
// @Summary      Get insights archive link
// @Description  Returns a presigned URL to the most recent insights document archived for the meeting
// @Tags         Meetings
// @Produce      json
// @Param        id   path      int  true  "Meeting ID"
// @Success      200  {object}  map[string]interface{}  "object_name, url and expires_at"
// @Failure      404  {object}  map[string]interface{}  "No archive for meeting"
// @Failure      500  {object}  map[string]interface{}  "Storage failure"
// @Router       /meetings/{id}/insights-archive [get]
func (h *ArchiveController) InsightsArchive(c echo.Context) error {
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	ctx := c.Request().Context()

	objectName, ok, err := h.store.LatestObject(ctx, storage.InsightsPrefix(meetingID))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("list", err))
	}
	if !ok {
		return HandleError(h.logger, c, errors.ErrInsightsNotAvailable(meetingID))
	}

	url, err := h.store.GetFileURL(ctx, objectName, archiveURLExpiry)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("⚠️ Failed to presign archive object",
				zap.String("object_name", objectName),
				zap.Error(err))
		}
		return HandleError(h.logger, c, errors.ErrStorageFailed("presign", err))
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"meeting_id":  meetingID,
		"object_name": objectName,
		"url":         url,
		"expires_at":  time.Now().Add(archiveURLExpiry).UTC(),
	})
}
