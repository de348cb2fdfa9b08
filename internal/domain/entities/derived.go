package entities

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// MeetingMetadata holds the overview of the latest extraction, one row per meeting
type MeetingMetadata struct {
	ID         int64                                `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID  int64                                `json:"meeting_id" gorm:"not null;uniqueIndex"`
	LLMVersion string                               `json:"llm_version" gorm:"column:llm_version;type:varchar(100);not null"`
	Goal       *string                              `json:"goal,omitempty" gorm:"type:text"`
	Summary    *string                              `json:"summary,omitempty" gorm:"type:text"`
	Sentiment  *string                              `json:"sentiment,omitempty" gorm:"type:varchar(32)"`
	Blockers   datatypes.JSONSlice[InsightBlocker]  `json:"blockers" gorm:"type:jsonb;not null"`
	Deadlines  datatypes.JSONSlice[InsightDeadline] `json:"deadlines" gorm:"type:jsonb;not null"`
	CreatedAt  time.Time                            `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time                            `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (MeetingMetadata) TableName() string {
	return "meeting_metadata"
}

// Blocker is a normalized blocker row
type Blocker struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID      int64     `json:"meeting_id" gorm:"not null;index"`
	Description    string    `json:"description" gorm:"type:text;not null"`
	Owner          *string   `json:"owner,omitempty" gorm:"type:varchar(255)"`
	Impact         *string   `json:"impact,omitempty" gorm:"type:text"`
	ProposedAction *string   `json:"proposed_action,omitempty" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (Blocker) TableName() string {
	return "meeting_blockers"
}

// Deadline is a normalized deadline row. DueDate is nil when the model
// returned a date that could not be parsed, RawDate keeps the original text.
type Deadline struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID    int64      `json:"meeting_id" gorm:"not null;index"`
	Name         string     `json:"name" gorm:"type:text;not null"`
	Owner        *string    `json:"owner,omitempty" gorm:"type:varchar(255)"`
	DueDate      *time.Time `json:"due_date,omitempty" gorm:"index"`
	RawDate      *string    `json:"raw_date,omitempty" gorm:"type:varchar(64)"`
	Risk         *string    `json:"risk,omitempty" gorm:"type:text"`
	Dependencies *string    `json:"dependencies,omitempty" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (Deadline) TableName() string {
	return "meeting_deadlines"
}

// SpeakerHighlight is one highlight from a speaker digest
type SpeakerHighlight struct {
	ID                int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID         int64      `json:"meeting_id" gorm:"not null;index"`
	Speaker           *string    `json:"speaker,omitempty" gorm:"type:varchar(255)"`
	StartTime         float64    `json:"start_time" gorm:"not null"`
	EndTime           float64    `json:"end_time" gorm:"not null"`
	AbsoluteStartTime *time.Time `json:"absolute_start_time,omitempty"`
	AbsoluteEndTime   *time.Time `json:"absolute_end_time,omitempty"`
	Text              string     `json:"text" gorm:"type:text;not null"`
	Label             *string    `json:"label,omitempty" gorm:"type:varchar(100)"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (SpeakerHighlight) TableName() string {
	return "speaker_highlights"
}

// DerivedInsights is the full set of normalized rows for one meeting
type DerivedInsights struct {
	Metadata    *MeetingMetadata
	ActionItems []*ActionItem
	Blockers    []*Blocker
	Deadlines   []*Deadline
	Highlights  []*SpeakerHighlight
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISODateTime parses the ISO-8601 variants models tend to emit.
// Empty or unparseable input yields nil.
func ParseISODateTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// StringPtr returns nil for empty strings
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
