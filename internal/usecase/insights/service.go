// Package insights extracts structured insights from meeting transcripts and
// stores the retrievable chunks derived from them.
package insights

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	ucerrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
)

// TextEmbedder embeds texts in order, all or nothing
type TextEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Options tunes extraction
type Options struct {
	SummaryModel    string
	SegmentLimit    int
	TeamRosterPath  string
	Language        string
	Temperature     float64
	MaxOutputTokens int
	HookTimeout     time.Duration
}

// Service runs extraction for one claimed meeting
type Service struct {
	meetings    repo.MeetingRepository
	transcripts repo.TranscriptRepository
	derived     repo.InsightsRepository
	chunks      repo.ChunkRepository
	llm         ai.ChatModel
	embedder    TextEmbedder
	parser      *Parser
	hooks       []Hook
	opts        Options
	logger      *zap.Logger
	now         func() time.Time
	hooksWg     sync.WaitGroup
}

// NewService creates an extraction service
func NewService(
	meetings repo.MeetingRepository,
	transcripts repo.TranscriptRepository,
	derived repo.InsightsRepository,
	chunks repo.ChunkRepository,
	llm ai.ChatModel,
	embedder TextEmbedder,
	opts Options,
	logger *zap.Logger,
) *Service {
	if opts.SegmentLimit <= 0 {
		opts.SegmentLimit = 300
	}
	if opts.HookTimeout <= 0 {
		opts.HookTimeout = 10 * time.Second
	}
	return &Service{
		meetings:    meetings,
		transcripts: transcripts,
		derived:     derived,
		chunks:      chunks,
		llm:         llm,
		embedder:    embedder,
		parser:      NewParser(),
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// AddHook registers a post-commit hook
func (s *Service) AddHook(h Hook) {
	s.hooks = append(s.hooks, h)
}

// WaitHooks blocks until every fired hook has returned
func (s *Service) WaitHooks() {
	s.hooksWg.Wait()
}

// ProcessMeeting extracts insights for a meeting already moved to processing
// and records the terminal state. On error the caller records the failure.
func (s *Service) ProcessMeeting(ctx context.Context, meeting *entities.Meeting) (entities.SummaryState, error) {
	startTime := s.now()

	segments, err := s.transcripts.ListSegments(ctx, meeting.ID)
	if err != nil {
		return entities.SummaryStateError, fmt.Errorf("failed to load transcript: %w", err)
	}

	if len(segments) == 0 {
		if s.logger != nil {
			s.logger.Info("📭 Meeting has no transcript segments",
				zap.Int64("meeting_id", meeting.ID),
			)
		}
		if err := s.meetings.MarkState(ctx, meeting.ID, entities.SummaryStateNoData); err != nil {
			return entities.SummaryStateError, fmt.Errorf("%w: %v", ucerrors.ErrNoTranscript, err)
		}
		return entities.SummaryStateNoData, nil
	}

	roster := s.loadTeamRoster()

	doc, model, err := s.extract(ctx, meeting, segments, roster)
	if err != nil {
		return entities.SummaryStateError, err
	}

	derived := BuildDerived(meeting, doc, model)
	transcriptChunks := BuildTranscriptChunks(meeting, segments)
	insightChunks := BuildInsightChunks(meeting, doc, derived.ActionItems)

	if err := s.embedChunks(ctx, meeting.ID, transcriptChunks, insightChunks); err != nil {
		return entities.SummaryStateError, err
	}

	if err := s.derived.ReplaceDerived(ctx, meeting.ID, derived); err != nil {
		return entities.SummaryStateError, fmt.Errorf("failed to persist derived insights: %w", err)
	}
	if err := s.chunks.ReplaceTranscriptChunks(ctx, meeting.ID, transcriptChunks); err != nil {
		return entities.SummaryStateError, fmt.Errorf("failed to store transcript chunks: %w", err)
	}
	if err := s.chunks.UpsertInsightChunks(ctx, meeting.ID, insightChunks); err != nil {
		return entities.SummaryStateError, fmt.Errorf("failed to store insight chunks: %w", err)
	}
	if err := s.meetings.SaveInsights(ctx, meeting.ID, doc, roster); err != nil {
		return entities.SummaryStateError, fmt.Errorf("failed to store insights document: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("✅ Meeting insights extracted",
			zap.Int64("meeting_id", meeting.ID),
			zap.Int("segments", len(segments)),
			zap.Int("transcript_chunks", len(transcriptChunks)),
			zap.Int("insight_chunks", len(insightChunks)),
			zap.Int("action_items", len(derived.ActionItems)),
			zap.Duration("duration", s.now().Sub(startTime)),
		)
	}

	s.fireHooks(ctx, CompletedEvent{
		EventID:     uuid.New(),
		MeetingID:   meeting.ID,
		NativeID:    meeting.NativeID(),
		Platform:    meeting.Platform,
		ProcessedAt: s.now().UTC(),
		ActionItems: len(derived.ActionItems),
		Deadlines:   len(derived.Deadlines),
		Blockers:    len(derived.Blockers),
		Document:    doc,
	})

	return entities.SummaryStateCompleted, nil
}

// extract runs the structured-output call and parses its answer
func (s *Service) extract(ctx context.Context, meeting *entities.Meeting, segments []*entities.TranscriptSegment, roster string) (*entities.InsightsDocument, string, error) {
	payload := BuildTranscriptPayload(meeting, segments, s.opts.SegmentLimit)
	messages := BuildMessages(meeting, payload, roster, s.opts.Language, s.opts.SegmentLimit)

	completion, err := s.llm.Complete(ctx, ai.CompletionRequest{
		Model:       s.opts.SummaryModel,
		Messages:    messages,
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxOutputTokens,
		SchemaName:  SchemaName,
		Schema:      DocumentSchema(),
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Insights model call failed",
				zap.Int64("meeting_id", meeting.ID),
				zap.Error(err),
			)
		}
		return nil, "", fmt.Errorf("%w: %v", ucerrors.ErrExtractionFailed, err)
	}

	doc, err := s.parser.Parse(completion.Content)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Insights response rejected",
				zap.Int64("meeting_id", meeting.ID),
				zap.Int("response_length", len(completion.Content)),
				zap.Error(err),
			)
		}
		return nil, "", err
	}

	model := completion.Model
	if model == "" {
		model = s.opts.SummaryModel
	}
	if model == "" {
		model = s.llm.ModelName()
	}
	return doc, model, nil
}

// embedChunks embeds transcript chunks and the insight chunks whose
// fingerprint is not stored yet. Both sets are embedded concurrently.
func (s *Service) embedChunks(ctx context.Context, meetingID int64, transcript, insight []*entities.Chunk) error {
	known, err := s.chunks.ListFingerprints(ctx, meetingID, entities.ChunkTypeInsight, entities.ChunkTypeActionItem)
	if err != nil {
		return fmt.Errorf("failed to list chunk fingerprints: %w", err)
	}

	fresh := make([]*entities.Chunk, 0, len(insight))
	for _, c := range insight {
		if _, ok := known[c.ChunkHash]; ok {
			continue
		}
		fresh = append(fresh, c)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.embedInto(gctx, transcript) })
	g.Go(func() error { return s.embedInto(gctx, fresh) })
	if err := g.Wait(); err != nil {
		if errors.Is(err, ucerrors.ErrEmbeddingFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", ucerrors.ErrEmbeddingFailed, err)
	}

	if s.logger != nil {
		s.logger.Debug("🧮 Chunks embedded",
			zap.Int64("meeting_id", meetingID),
			zap.Int("transcript", len(transcript)),
			zap.Int("insight_new", len(fresh)),
			zap.Int("insight_reused", len(insight)-len(fresh)),
		)
	}
	return nil
}

func (s *Service) embedInto(ctx context.Context, chunks []*entities.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", ucerrors.ErrEmbeddingFailed, len(vectors), len(chunks))
	}
	for i, c := range chunks {
		c.SetVector(vectors[i])
	}
	return nil
}

// loadTeamRoster reads the optional roster file. A missing file is not an error.
func (s *Service) loadTeamRoster() string {
	if s.opts.TeamRosterPath == "" {
		return ""
	}
	b, err := os.ReadFile(s.opts.TeamRosterPath)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Team roster not loaded, continuing without roster context",
				zap.String("path", s.opts.TeamRosterPath),
				zap.Error(err),
			)
		}
		return ""
	}
	return strings.TrimSpace(string(b))
}

// fireHooks runs every hook in its own goroutine with a short timeout
func (s *Service) fireHooks(ctx context.Context, event CompletedEvent) {
	base := context.WithoutCancel(ctx)
	for _, h := range s.hooks {
		s.hooksWg.Add(1)
		go func(h Hook) {
			defer s.hooksWg.Done()
			defer func() {
				if p := recover(); p != nil && s.logger != nil {
					s.logger.Error("❌ Post-commit hook panicked",
						zap.String("hook", h.Name()),
						zap.Any("panic", p),
					)
				}
			}()

			hctx, cancel := context.WithTimeout(base, s.opts.HookTimeout)
			defer cancel()

			if err := h.Fire(hctx, event); err != nil {
				if s.logger != nil {
					s.logger.Warn("⚠️ Post-commit hook failed",
						zap.String("hook", h.Name()),
						zap.Int64("meeting_id", event.MeetingID),
						zap.Error(err),
					)
				}
				return
			}
			if s.logger != nil {
				s.logger.Info("📣 Post-commit hook fired",
					zap.String("hook", h.Name()),
					zap.Int64("meeting_id", event.MeetingID),
				)
			}
		}(h)
	}
}
