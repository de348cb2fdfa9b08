package jobcontext

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KeyContext string

var (
	keyRunID        KeyContext = "run_id"
	keyMeetingID    KeyContext = "meeting_id"
	keyJobType      KeyContext = "job_type"
	keyWorkerID     KeyContext = "worker_id"
	keyJobStartTime KeyContext = "job_start_time"
)

// DefaultTimeout bounds one job when the caller passes no timeout
const DefaultTimeout = 5 * time.Minute

// JobMetadata holds metadata for a job execution
type JobMetadata struct {
	RunID     uuid.UUID
	MeetingID int64
	JobType   string
	WorkerID  int
	StartTime time.Time
}

// JobBegin derives a job context with metadata and a timeout
func JobBegin(parentCtx context.Context, meetingID int64, jobType string, workerID int, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyRunID, uuid.New())
	ctx = context.WithValue(ctx, keyMeetingID, meetingID)
	ctx = context.WithValue(ctx, keyJobType, jobType)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// JobEnd runs jobFunc once with panic recovery. A failed job is not retried;
// the meeting records the failure instead.
func JobEnd(ctx context.Context, jobFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
	}
	return jobFunc(ctx)
}

// GetRunID extracts the run id from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyRunID).(uuid.UUID)
	return id, ok
}

// GetMeetingID extracts the meeting id from context
func GetMeetingID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(keyMeetingID).(int64)
	return id, ok
}

// GetJobType extracts job type from context
func GetJobType(ctx context.Context) (string, bool) {
	jobType, ok := ctx.Value(keyJobType).(string)
	return jobType, ok
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	runID, _ := GetRunID(ctx)
	meetingID, _ := GetMeetingID(ctx)
	jobType, _ := GetJobType(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		RunID:     runID,
		MeetingID: meetingID,
		JobType:   jobType,
		WorkerID:  GetWorkerID(ctx),
		StartTime: startTime,
	}
}

// Fields returns the metadata as log fields
func (m *JobMetadata) Fields() []zap.Field {
	return []zap.Field{
		zap.String("run_id", m.RunID.String()),
		zap.Int64("meeting_id", m.MeetingID),
		zap.String("job_type", m.JobType),
		zap.Int("worker_id", m.WorkerID),
	}
}
