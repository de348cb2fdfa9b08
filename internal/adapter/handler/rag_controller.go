package handler

import (
	"context"
	stdErrors "errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	dtorag "github.com/johnquangdev/meeting-insights/internal/adapter/dto/rag"
	"github.com/johnquangdev/meeting-insights/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	ucerrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
	"github.com/johnquangdev/meeting-insights/internal/usecase/rag"
)

// Answerer answers one RAG question
type Answerer interface {
	Answer(ctx context.Context, req rag.AnswerRequest) (*rag.Answer, error)
}

// RAGController handles question answering over meeting transcripts
type RAGController struct {
	answerer Answerer
	logger   *zap.Logger
}

// NewRAGController creates a new RAG controller
func NewRAGController(answerer Answerer, logger *zap.Logger) *RAGController {
	return &RAGController{answerer: answerer, logger: logger}
}

// Query answers a question in global or meeting mode
// @Summary      Ask a question about meetings
// @Description  Retrieves relevant transcript and insight chunks and synthesizes a grounded answer
// @Tags         RAG
// @Accept       json
// @Produce      json
// @Param        request  body      rag.QueryRequest   true  "Question, mode and filters"
// @Success      200      {object}  rag.QueryResponse  "Answer with evidence chunks"
// @Failure      400      {object}  map[string]interface{}  "Invalid payload, mode or missing meeting_id"
// @Failure      404      {object}  map[string]interface{}  "Meeting not found"
// @Failure      500      {object}  map[string]interface{}  "Answer generation failed"
// @Router       /rag/query [post]
func (rc *RAGController) Query(c echo.Context) error {
	var req dtorag.QueryRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(rc.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(rc.logger, c, errors.ErrInvalidPayload(err))
	}

	filter, err := toRetrievalFilter(req.Filters)
	if err != nil {
		return HandleError(rc.logger, c, err)
	}

	in := rag.AnswerRequest{
		Query:     req.Query,
		Mode:      rag.Mode(req.Mode),
		MeetingID: req.MeetingID,
		Filter:    filter,
	}
	for _, m := range req.Conversation {
		in.Conversation = append(in.Conversation, entities.ConversationTurn{
			Role:    entities.ConversationRole(m.Role),
			Content: m.Content,
		})
	}

	out, err := rc.answerer.Answer(c.Request().Context(), in)
	if stdErrors.Is(err, ucerrors.ErrInvalidMode) {
		return HandleError(rc.logger, c, errors.ErrInvalidMode(req.Mode))
	}
	if err != nil {
		var meetingID int64
		if req.MeetingID != nil {
			meetingID = *req.MeetingID
		}
		return HandleError(rc.logger, c, mapUsecaseError(err, meetingID, errors.ErrAnswerFailed))
	}

	return HandleSuccess(rc.logger, c, presenter.ToQueryResponse(out.Answer, out.Chunks, out.TokenUsage))
}

// toRetrievalFilter converts request filters. Dates must be ISO formatted.
func toRetrievalFilter(f *dtorag.Filters) (entities.RetrievalFilter, error) {
	var out entities.RetrievalFilter
	if f == nil {
		return out, nil
	}
	out = entities.RetrievalFilter{
		MeetingID:         f.MeetingID,
		MeetingIDs:        f.MeetingIDs,
		ExcludeMeetingIDs: f.ExcludeMeetingIDs,
		Platform:          f.Platform,
		Speaker:           f.Speaker,
		Language:          f.Language,
		ChunkType:         entities.ChunkType(f.ChunkType),
	}
	if f.DateFrom != "" {
		if out.DateFrom = entities.ParseISODateTime(f.DateFrom); out.DateFrom == nil {
			return out, errors.ErrInvalidArgument("date_from must be an ISO date")
		}
	}
	if f.DateTo != "" {
		if out.DateTo = entities.ParseISODateTime(f.DateTo); out.DateTo == nil {
			return out, errors.ErrInvalidArgument("date_to must be an ISO date")
		}
	}
	return out, nil
}
