package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// SummaryState tracks insights extraction for a meeting
type SummaryState string

const (
	SummaryStatePending    SummaryState = "pending"    // Waiting for a worker to claim it
	SummaryStateProcessing SummaryState = "processing" // Claimed by a worker
	SummaryStateCompleted  SummaryState = "completed"  // Insights extracted and chunks stored
	SummaryStateNoData     SummaryState = "no_data"    // Meeting has no transcript segments
	SummaryStateError      SummaryState = "error"      // Extraction failed, waits for external reset
)

// Keys used inside Meeting.Data
const (
	MeetingDataInsightsKey = "insights"
	MeetingDataRosterKey   = "team_roster_snapshot"
)

// Meeting is a captured meeting. Capture columns are owned by the bot pipeline,
// this service only reads them and writes the summary columns.
type Meeting struct {
	ID                 int64             `json:"id" gorm:"primaryKey;autoIncrement"`
	Platform           string            `json:"platform" gorm:"type:varchar(100);not null"`
	PlatformSpecificID *string           `json:"platform_specific_id,omitempty" gorm:"type:varchar(255);index"`
	Status             string            `json:"status" gorm:"type:varchar(50);not null;index"`
	StartTime          *time.Time        `json:"start_time,omitempty"`
	EndTime            *time.Time        `json:"end_time,omitempty"`
	Data               datatypes.JSONMap `json:"data,omitempty" gorm:"type:jsonb"`
	SummaryState       SummaryState      `json:"summary_state" gorm:"type:varchar(50);not null;default:'pending'"`
	SummaryError       *string           `json:"summary_error,omitempty" gorm:"type:text"`
	ProcessedAt        *time.Time        `json:"processed_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (Meeting) TableName() string {
	return "meetings"
}

// NativeID returns the platform meeting id or an empty string
func (m *Meeting) NativeID() string {
	if m == nil || m.PlatformSpecificID == nil {
		return ""
	}
	return *m.PlatformSpecificID
}

// MeetingDate returns the calendar day the meeting started on
func (m *Meeting) MeetingDate() *time.Time {
	if m == nil || m.StartTime == nil {
		return nil
	}
	d := DayStart(*m.StartTime)
	return &d
}

// Insights decodes the stored insights document. Returns nil when none is stored.
func (m *Meeting) Insights() (*InsightsDocument, error) {
	if m == nil || m.Data == nil {
		return nil, nil
	}
	raw, ok := m.Data[MeetingDataInsightsKey]
	if !ok || raw == nil {
		return nil, nil
	}
	switch raw.(type) {
	case map[string]interface{}, *InsightsDocument, InsightsDocument:
	default:
		return nil, nil
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stored insights: %w", err)
	}
	var doc InsightsDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode stored insights: %w", err)
	}
	return &doc, nil
}
