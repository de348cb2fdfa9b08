package entities

import "time"

// RetrievalFilter narrows a vector query. Every set field is AND-combined.
type RetrievalFilter struct {
	MeetingID         *int64     `json:"meeting_id,omitempty"`
	MeetingIDs        []int64    `json:"meeting_ids,omitempty"`
	ExcludeMeetingIDs []int64    `json:"exclude_meeting_ids,omitempty"`
	Platform          string     `json:"platform,omitempty"`
	Speaker           string     `json:"speaker,omitempty"`
	Language          string     `json:"language,omitempty"`
	ChunkType         ChunkType  `json:"chunk_type,omitempty"`
	DateFrom          *time.Time `json:"date_from,omitempty"`
	DateTo            *time.Time `json:"date_to,omitempty"`
}

// ForMeeting returns a copy of f scoped to one meeting
func (f RetrievalFilter) ForMeeting(meetingID int64) RetrievalFilter {
	id := meetingID
	f.MeetingID = &id
	return f
}

// DateFromBound returns the first instant included by DateFrom
func (f RetrievalFilter) DateFromBound() *time.Time {
	if f.DateFrom == nil {
		return nil
	}
	d := DayStart(*f.DateFrom)
	return &d
}

// DateToBound returns the first instant excluded by DateTo
func (f RetrievalFilter) DateToBound() *time.Time {
	if f.DateTo == nil {
		return nil
	}
	d := DayStart(*f.DateTo).AddDate(0, 0, 1)
	return &d
}

// Matches evaluates the filter against a chunk in memory
func (f RetrievalFilter) Matches(c *Chunk) bool {
	if c == nil {
		return false
	}
	if f.MeetingID != nil && c.MeetingID != *f.MeetingID {
		return false
	}
	if len(f.MeetingIDs) > 0 && !containsID(f.MeetingIDs, c.MeetingID) {
		return false
	}
	if len(f.ExcludeMeetingIDs) > 0 && containsID(f.ExcludeMeetingIDs, c.MeetingID) {
		return false
	}
	if f.Platform != "" && (c.Platform == nil || *c.Platform != f.Platform) {
		return false
	}
	if f.Speaker != "" && (c.Speaker == nil || *c.Speaker != f.Speaker) {
		return false
	}
	if f.Language != "" && (c.Language == nil || *c.Language != f.Language) {
		return false
	}
	if f.ChunkType != "" && c.ChunkType != f.ChunkType {
		return false
	}
	if from := f.DateFromBound(); from != nil {
		if c.MeetingDate == nil || DayStart(*c.MeetingDate).Before(*from) {
			return false
		}
	}
	if to := f.DateToBound(); to != nil {
		if c.MeetingDate == nil || !DayStart(*c.MeetingDate).Before(*to) {
			return false
		}
	}
	return true
}

// DayStart truncates t to midnight UTC of its calendar day
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
