package handler

import (
	stdErrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	ucerrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// parseMeetingID reads the :id path parameter
func parseMeetingID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ErrInvalidArgument("meeting id must be a positive integer")
	}
	return id, nil
}

// mapUsecaseError converts usecase sentinels, provider statuses and
// database failures to AppError. Unknown errors fall back to the given
// constructor.
func mapUsecaseError(err error, meetingID int64, fallback func(error) errors.AppError) errors.AppError {
	var (
		appErr    errors.AppError
		statusErr *ai.StatusError
		pgErr     *pgconn.PgError
		connErr   *pgconn.ConnectError
	)
	switch {
	case stdErrors.As(err, &appErr):
		return appErr
	case stdErrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests:
		return errors.ErrAIQuotaExceeded(err)
	case stdErrors.As(err, &statusErr) && statusErr.StatusCode >= http.StatusInternalServerError:
		return errors.ErrAIServiceUnavailable(statusErr.Provider, err)
	case stdErrors.As(err, &connErr):
		return errors.ErrDBConnectionFailed(err)
	case stdErrors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "08"):
		return errors.ErrDBConnectionFailed(err)
	case stdErrors.As(err, &pgErr):
		return errors.ErrDBQueryFailed(pgErr.Code, err)
	case stdErrors.Is(err, ucerrors.ErrMissingMeetingID):
		return errors.ErrMissingMeetingID()
	case stdErrors.Is(err, ucerrors.ErrMeetingNotFound):
		return errors.ErrMeetingNotFound(meetingID)
	case stdErrors.Is(err, ucerrors.ErrInsightsUnavailable):
		return errors.ErrInsightsNotAvailable(meetingID)
	case stdErrors.Is(err, ucerrors.ErrMeetingBusy):
		return errors.ErrMeetingBusy(meetingID)
	case stdErrors.Is(err, ucerrors.ErrInvalidInput):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, ucerrors.ErrRetrievalFailed):
		return errors.ErrRetrievalFailed(err)
	case stdErrors.Is(err, ucerrors.ErrEmbeddingFailed):
		return errors.ErrEmbeddingFailed(err)
	case stdErrors.Is(err, ucerrors.ErrExtractionFailed):
		return errors.ErrExtractionFailed(err)
	}
	if fallback == nil {
		return errors.ErrInternal(err)
	}
	return fallback(err)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code.String()),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code.String(),
			Message: appErr.Message,
			Info:    info,
			Details: appErr.Details,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL.String(),
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// HTTPErrorHandler renders errors raised by echo itself, such as unknown
// routes, in the same envelope as HandleError
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if stdErrors.As(err, &he) && he.Code == http.StatusNotFound {
			err = errors.ErrNotFound("route")
		}
		var appErr errors.AppError
		if !stdErrors.As(err, &appErr) {
			c.Echo().DefaultHTTPErrorHandler(err, c)
			return
		}
		if herr := HandleError(logger, c, appErr); herr != nil && logger != nil {
			logger.Error("http.response.write_failed", zap.Error(herr))
		}
	}
}
