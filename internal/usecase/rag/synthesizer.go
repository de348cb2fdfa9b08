package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	ucerrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
)

// Mode selects the retrieval scope of a question
type Mode string

const (
	ModeGlobal  Mode = "global"
	ModeMeeting Mode = "meeting"
)

// NoDataAnswer is returned without an LLM call when nothing was retrieved
const NoDataAnswer = "No relevant data found in meeting transcripts."

// Defaults used when Config leaves a value unset
const (
	DefaultGlobalTopK  = 8
	DefaultMeetingTopK = 6
	DefaultMaxHistory  = 10
)

// AnswerRequest is one question
type AnswerRequest struct {
	Query        string
	Mode         Mode
	MeetingID    *int64
	Conversation []entities.ConversationTurn
	Filter       entities.RetrievalFilter
}

// Answer is the synthesized reply with the evidence it was grounded on
type Answer struct {
	Answer     string
	Chunks     []entities.Chunk
	TokenUsage *ai.Usage
}

// ChunkFetcher retrieves ranked chunks
type ChunkFetcher interface {
	Fetch(ctx context.Context, vector []float32, filter entities.RetrievalFilter, limit int) ([]entities.Chunk, error)
}

// QueryEmbedder embeds a question
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// MeetingLookup resolves a meeting, nil when it does not exist
type MeetingLookup interface {
	GetByID(ctx context.Context, id int64) (*entities.Meeting, error)
}

// Config tunes the synthesizer
type Config struct {
	GlobalTopK  int
	MeetingTopK int
	MaxHistory  int
	Model       string
	Temperature float64
	MaxTokens   int
}

// Synthesizer answers questions from retrieved chunks. It holds no per-request
// state and is safe for concurrent use.
type Synthesizer struct {
	embedder QueryEmbedder
	fetcher  ChunkFetcher
	meetings MeetingLookup
	llm      ai.ChatModel
	cfg      Config
	logger   *zap.Logger
}

// NewSynthesizer creates a synthesizer
func NewSynthesizer(embedder QueryEmbedder, fetcher ChunkFetcher, meetings MeetingLookup, llm ai.ChatModel, cfg Config, logger *zap.Logger) *Synthesizer {
	if cfg.GlobalTopK <= 0 {
		cfg.GlobalTopK = DefaultGlobalTopK
	}
	if cfg.MeetingTopK <= 0 {
		cfg.MeetingTopK = DefaultMeetingTopK
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	return &Synthesizer{
		embedder: embedder,
		fetcher:  fetcher,
		meetings: meetings,
		llm:      llm,
		cfg:      cfg,
		logger:   logger,
	}
}

// Answer runs retrieval and generation for one question
func (s *Synthesizer) Answer(ctx context.Context, req AnswerRequest) (*Answer, error) {
	if req.Mode != ModeGlobal && req.Mode != ModeMeeting {
		return nil, fmt.Errorf("%w: %q", ucerrors.ErrInvalidMode, req.Mode)
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: query is empty", ucerrors.ErrInvalidInput)
	}

	var meeting *entities.Meeting
	filter := req.Filter
	limit := s.cfg.GlobalTopK
	if req.Mode == ModeMeeting {
		if req.MeetingID == nil {
			return nil, ucerrors.ErrMissingMeetingID
		}
		m, err := s.meetings.GetByID(ctx, *req.MeetingID)
		if err != nil {
			return nil, fmt.Errorf("failed to load meeting: %w", err)
		}
		if m == nil {
			return nil, fmt.Errorf("%w: %d", ucerrors.ErrMeetingNotFound, *req.MeetingID)
		}
		meeting = m
		filter = filter.ForMeeting(m.ID)
		limit = s.cfg.MeetingTopK
	}

	vector, err := s.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	chunks, err := s.fetcher.Fetch(ctx, vector, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ucerrors.ErrRetrievalFailed, err)
	}
	if meeting != nil {
		chunks = s.dropForeignChunks(meeting.ID, chunks)
	}

	if len(chunks) == 0 {
		if s.logger != nil {
			s.logger.Info("📭 No chunks retrieved, returning canned answer",
				zap.String("mode", string(req.Mode)),
			)
		}
		return &Answer{Answer: NoDataAnswer, Chunks: []entities.Chunk{}}, nil
	}

	history := entities.LastTurns(req.Conversation, s.cfg.MaxHistory)

	var messages []ai.Message
	if meeting != nil {
		messages = buildMeetingPrompt(req.Query, meeting, chunks, s.insightsContext(meeting), history)
	} else {
		messages = buildGlobalPrompt(req.Query, chunks, history)
	}

	completion, err := s.llm.Complete(ctx, ai.CompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Answer generation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}
	text := strings.TrimSpace(completion.Content)
	if text == "" {
		return nil, fmt.Errorf("answer generation failed: empty completion")
	}

	if s.logger != nil {
		fields := []zap.Field{
			zap.String("mode", string(req.Mode)),
			zap.Int("chunks", len(chunks)),
			zap.Int("history_turns", len(history)),
		}
		if completion.Usage != nil {
			fields = append(fields, zap.Int("total_tokens", completion.Usage.TotalTokens))
		}
		s.logger.Info("💬 Answer generated", fields...)
	}

	return &Answer{
		Answer:     text,
		Chunks:     chunks,
		TokenUsage: completion.Usage,
	}, nil
}

// dropForeignChunks removes chunks that belong to another meeting
func (s *Synthesizer) dropForeignChunks(meetingID int64, chunks []entities.Chunk) []entities.Chunk {
	kept := make([]entities.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.MeetingID != meetingID {
			if s.logger != nil {
				s.logger.Warn("⚠️ Dropping chunk from another meeting",
					zap.Int64("chunk_id", c.ID),
					zap.Int64("chunk_meeting_id", c.MeetingID),
					zap.Int64("meeting_id", meetingID),
				)
			}
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func (s *Synthesizer) insightsContext(m *entities.Meeting) *entities.InsightsContext {
	doc, err := m.Insights()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Stored insights could not be decoded",
				zap.Int64("meeting_id", m.ID),
				zap.Error(err),
			)
		}
		return nil
	}
	return doc.Context()
}
