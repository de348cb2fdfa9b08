package insights

import "time"

// ActionItemResponse represents a normalized action item
type ActionItemResponse struct {
	ID           int64      `json:"id"`
	MeetingID    int64      `json:"meeting_id"`
	Owner        *string    `json:"owner,omitempty"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Priority     *string    `json:"priority,omitempty"`
	ReferenceURL *string    `json:"reference_url,omitempty"`
}

// ActionItemListResponse lists the action items of a meeting
type ActionItemListResponse struct {
	MeetingID   int64                `json:"meeting_id"`
	ActionItems []ActionItemResponse `json:"action_items"`
}

// DeadlineResponse represents a deadline with its parsed due date
type DeadlineResponse struct {
	ID           int64      `json:"id"`
	MeetingID    int64      `json:"meeting_id"`
	Name         string     `json:"name"`
	Owner        *string    `json:"owner,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Risk         *string    `json:"risk,omitempty"`
	Dependencies *string    `json:"dependencies,omitempty"`
}

// UpcomingDeadlinesResponse lists deadlines inside the requested window
type UpcomingDeadlinesResponse struct {
	Days      int                `json:"days"`
	Deadlines []DeadlineResponse `json:"deadlines"`
}

// ReprocessResponse confirms a meeting was queued again
type ReprocessResponse struct {
	MeetingID    int64  `json:"meeting_id"`
	SummaryState string `json:"summary_state"`
}
