package insights

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/storage"
)

// CompletedEvent describes a meeting whose insights were just committed
type CompletedEvent struct {
	EventID     uuid.UUID                  `json:"event_id"`
	MeetingID   int64                      `json:"meeting_id"`
	NativeID    string                     `json:"meeting_native_id,omitempty"`
	Platform    string                     `json:"platform"`
	ProcessedAt time.Time                  `json:"processed_at"`
	ActionItems int                        `json:"action_items"`
	Deadlines   int                        `json:"deadlines"`
	Blockers    int                        `json:"blockers"`
	Document    *entities.InsightsDocument `json:"-"`
}

// Hook runs after a meeting reaches completed. Failures are logged by the
// caller and never change the meeting state.
type Hook interface {
	Name() string
	Fire(ctx context.Context, event CompletedEvent) error
}

// MeetingTrigger is an endpoint keyed by meeting id
type MeetingTrigger interface {
	Name() string
	Trigger(ctx context.Context, meetingID int64) error
}

// Publisher sends an event on a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// ObjectUploader stores a JSON object
type ObjectUploader interface {
	UploadJSON(ctx context.Context, objectName string, v interface{}) error
}

type triggerHook struct {
	trigger MeetingTrigger
}

// NewTriggerHook fires an HTTP trigger such as the email or ticket-sync endpoint
func NewTriggerHook(t MeetingTrigger) Hook {
	return &triggerHook{trigger: t}
}

func (h *triggerHook) Name() string { return h.trigger.Name() }

func (h *triggerHook) Fire(ctx context.Context, event CompletedEvent) error {
	return h.trigger.Trigger(ctx, event.MeetingID)
}

type eventHook struct {
	publisher Publisher
	subject   string
}

// NewEventHook publishes the CompletedEvent on subject
func NewEventHook(p Publisher, subject string) Hook {
	return &eventHook{publisher: p, subject: subject}
}

func (h *eventHook) Name() string { return "event:" + h.subject }

func (h *eventHook) Fire(ctx context.Context, event CompletedEvent) error {
	return h.publisher.Publish(ctx, h.subject, event)
}

type archiveHook struct {
	uploader ObjectUploader
}

// NewArchiveHook uploads the insights document to object storage
func NewArchiveHook(u ObjectUploader) Hook {
	return &archiveHook{uploader: u}
}

func (h *archiveHook) Name() string { return "archive" }

func (h *archiveHook) Fire(ctx context.Context, event CompletedEvent) error {
	if event.Document == nil {
		return nil
	}
	return h.uploader.UploadJSON(ctx, storage.InsightsObjectName(event.MeetingID, event.ProcessedAt), event.Document)
}
