package entities

import "time"

// TranscriptSegment is one speaker turn captured by the transcription pipeline.
// Read-only for this service.
type TranscriptSegment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID int64     `json:"meeting_id" gorm:"not null;index"`
	StartTime float64   `json:"start_time" gorm:"not null"`
	EndTime   float64   `json:"end_time" gorm:"not null"`
	Speaker   *string   `json:"speaker,omitempty" gorm:"type:varchar(255)"`
	Language  *string   `json:"language,omitempty" gorm:"type:varchar(10)"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (TranscriptSegment) TableName() string {
	return "transcriptions"
}

// SpeakerName returns the speaker label or "Unknown"
func (s *TranscriptSegment) SpeakerName() string {
	if s.Speaker == nil || *s.Speaker == "" {
		return "Unknown"
	}
	return *s.Speaker
}

// AbsoluteStart resolves the segment start against the meeting start time
func (s *TranscriptSegment) AbsoluteStart(meetingStart *time.Time) *time.Time {
	return OffsetTime(meetingStart, s.StartTime)
}

// OffsetTime adds a second offset to a base time, nil when base is unknown
func OffsetTime(base *time.Time, seconds float64) *time.Time {
	if base == nil {
		return nil
	}
	t := base.Add(time.Duration(seconds * float64(time.Second)))
	return &t
}
