package insights

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	"github.com/johnquangdev/meeting-insights/pkg/jobcontext"
)

// JobType labels extraction jobs in the job context
const JobType = "insights_extraction"

// WorkerConfig tunes the polling loop
type WorkerConfig struct {
	TargetStatuses   []string
	BatchSize        int
	PollInterval     time.Duration
	BusyPollInterval time.Duration
	ProcessTimeout   time.Duration
	ProcessingLease  time.Duration // 0 disables stale lease recovery
	ReapInterval     time.Duration
}

// Processor handles one claimed meeting
type Processor interface {
	ProcessMeeting(ctx context.Context, meeting *entities.Meeting) (entities.SummaryState, error)
}

// SleepFunc waits for d. It returns false when the loop must stop.
type SleepFunc func(ctx context.Context, d time.Duration) bool

// Worker polls for claimable meetings and runs extraction on them
type Worker struct {
	meetings  repo.MeetingRepository
	processor Processor
	cfg       WorkerConfig
	logger    *zap.Logger
	now       func() time.Time
	sleep     SleepFunc

	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewWorker creates a worker
func NewWorker(meetings repo.MeetingRepository, processor Processor, cfg WorkerConfig, logger *zap.Logger) *Worker {
	if len(cfg.TargetStatuses) == 0 {
		cfg.TargetStatuses = []string{"completed"}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.BusyPollInterval <= 0 {
		cfg.BusyPollInterval = 2 * time.Second
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = 5 * time.Minute
	}
	w := &Worker{
		meetings:       meetings,
		processor:      processor,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
		workerStopChan: make(chan struct{}),
	}
	w.sleep = w.defaultSleep
	return w
}

// WithClock replaces the time source
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now
	return w
}

// WithSleep replaces the wait between iterations
func (w *Worker) WithSleep(sleep SleepFunc) *Worker {
	w.sleep = sleep
	return w
}

// Start runs n polling loops and the stale lease reaper in the background
func (w *Worker) Start(ctx context.Context, n int) error {
	w.workerMutex.Lock()
	defer w.workerMutex.Unlock()

	if w.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}
	if n <= 0 {
		n = 1
	}

	w.isWorkerPoolRunning = true
	w.workerStopChan = make(chan struct{})

	if w.logger != nil {
		w.logger.Info("🚀 Starting insights worker pool",
			zap.Int("worker_count", n),
			zap.Strings("target_statuses", w.cfg.TargetStatuses),
			zap.Int("batch_size", w.cfg.BatchSize),
		)
	}

	for i := 0; i < n; i++ {
		w.workerWg.Add(1)
		go func(workerID int) {
			defer w.workerWg.Done()
			w.Run(ctx, workerID)
		}(i)
	}

	if w.cfg.ProcessingLease > 0 {
		w.workerWg.Add(1)
		go w.reapLoop(ctx)
	}

	return nil
}

// Stop signals every loop and waits for in-flight meetings to finish
func (w *Worker) Stop() error {
	w.workerMutex.Lock()
	defer w.workerMutex.Unlock()

	if !w.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	if w.logger != nil {
		w.logger.Info("🛑 Stopping insights worker pool...")
	}

	close(w.workerStopChan)
	w.workerWg.Wait()
	w.isWorkerPoolRunning = false

	if w.logger != nil {
		w.logger.Info("✅ Insights worker pool stopped")
	}
	return nil
}

// Run polls until ctx is done or the pool is stopped. After an iteration that
// processed something it waits BusyPollInterval, otherwise PollInterval.
func (w *Worker) Run(ctx context.Context, workerID int) {
	if w.logger != nil {
		w.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))
	}

	for {
		if ctx.Err() != nil || w.stopping() {
			break
		}

		wait := w.cfg.PollInterval
		if w.ProcessBatch(ctx, workerID) {
			wait = w.cfg.BusyPollInterval
		}

		if !w.sleep(ctx, wait) {
			break
		}
	}

	if w.logger != nil {
		w.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
	}
}

// ProcessBatch claims up to BatchSize meetings and processes each in
// isolation. Reports whether any meeting was claimed.
func (w *Worker) ProcessBatch(ctx context.Context, workerID int) bool {
	processedAny := false
	for i := 0; i < w.cfg.BatchSize; i++ {
		if ctx.Err() != nil {
			break
		}

		meeting, err := w.meetings.ClaimNext(ctx, w.cfg.TargetStatuses)
		if err != nil {
			if w.logger != nil {
				w.logger.Error("❌ Failed to claim meeting",
					zap.Int("worker_id", workerID),
					zap.Error(err),
				)
			}
			break
		}
		if meeting == nil {
			break
		}

		processedAny = true
		w.processOne(ctx, workerID, meeting)
	}
	return processedAny
}

// processOne runs one meeting under a job context and records failures
func (w *Worker) processOne(parentCtx context.Context, workerID int, meeting *entities.Meeting) {
	jobCtx, cancel := jobcontext.JobBegin(parentCtx, meeting.ID, JobType, workerID, w.cfg.ProcessTimeout)
	defer cancel()
	job := jobcontext.GetJobMetadata(jobCtx).Fields()

	if w.logger != nil {
		w.logger.Info("👷 Worker claimed meeting",
			append(job, zap.String("platform", meeting.Platform))...,
		)
	}

	var state entities.SummaryState
	err := jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
		var err error
		state, err = w.processor.ProcessMeeting(ctx, meeting)
		return err
	})

	if err != nil {
		if w.logger != nil {
			w.logger.Error("❌ Meeting extraction failed",
				append(job, zap.Error(err))...,
			)
		}
		// The job context may already be expired, record the failure on the parent.
		markCtx, markCancel := context.WithTimeout(context.WithoutCancel(parentCtx), 30*time.Second)
		defer markCancel()
		if markErr := w.meetings.MarkFailed(markCtx, meeting.ID, err.Error()); markErr != nil && w.logger != nil {
			w.logger.Error("❌ Failed to record extraction failure",
				append(job, zap.Error(markErr))...,
			)
		}
		return
	}

	if w.logger != nil {
		w.logger.Info("✅ Meeting processed",
			append(job, zap.String("summary_state", string(state)))...,
		)
	}
}

// ReapStale returns processing meetings older than the lease to pending
func (w *Worker) ReapStale(ctx context.Context) (int64, error) {
	if w.cfg.ProcessingLease <= 0 {
		return 0, nil
	}
	n, err := w.meetings.ResetStaleProcessing(ctx, w.now().Add(-w.cfg.ProcessingLease))
	if err != nil {
		return 0, err
	}
	if n > 0 && w.logger != nil {
		w.logger.Warn("🧹 Reset stale processing meetings",
			zap.Int64("count", n),
			zap.Duration("lease", w.cfg.ProcessingLease),
		)
	}
	return n, nil
}

func (w *Worker) reapLoop(ctx context.Context) {
	defer w.workerWg.Done()

	if _, err := w.ReapStale(ctx); err != nil && w.logger != nil {
		w.logger.Error("❌ Stale lease sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(w.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.workerStopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ReapStale(ctx); err != nil && w.logger != nil {
				w.logger.Error("❌ Stale lease sweep failed", zap.Error(err))
			}
		}
	}
}

func (w *Worker) stopping() bool {
	select {
	case <-w.workerStopChan:
		return true
	default:
		return false
	}
}

func (w *Worker) defaultSleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-w.workerStopChan:
		return false
	case <-timer.C:
		return true
	}
}
