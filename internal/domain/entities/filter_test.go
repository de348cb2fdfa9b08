package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRetrievalFilter_Matches(t *testing.T) {
	chunk := &Chunk{
		MeetingID:   5,
		ChunkType:   ChunkTypeTranscript,
		Platform:    strp("google_meet"),
		Speaker:     strp("Alice"),
		Language:    strp("en"),
		MeetingDate: day(2025, 5, 10),
	}
	meeting5 := int64(5)
	meeting6 := int64(6)

	tests := []struct {
		name   string
		filter RetrievalFilter
		want   bool
	}{
		{"empty filter", RetrievalFilter{}, true},
		{"meeting id match", RetrievalFilter{MeetingID: &meeting5}, true},
		{"meeting id mismatch", RetrievalFilter{MeetingID: &meeting6}, false},
		{"meeting set", RetrievalFilter{MeetingIDs: []int64{1, 5}}, true},
		{"meeting set miss", RetrievalFilter{MeetingIDs: []int64{1, 2}}, false},
		{"excluded", RetrievalFilter{ExcludeMeetingIDs: []int64{5}}, false},
		{"not excluded", RetrievalFilter{ExcludeMeetingIDs: []int64{6}}, true},
		{"platform", RetrievalFilter{Platform: "google_meet"}, true},
		{"platform miss", RetrievalFilter{Platform: "zoom"}, false},
		{"speaker", RetrievalFilter{Speaker: "Alice"}, true},
		{"speaker miss", RetrievalFilter{Speaker: "Bob"}, false},
		{"language miss", RetrievalFilter{Language: "ru"}, false},
		{"chunk type", RetrievalFilter{ChunkType: ChunkTypeTranscript}, true},
		{"chunk type miss", RetrievalFilter{ChunkType: ChunkTypeInsight}, false},
		{"date from inclusive", RetrievalFilter{DateFrom: day(2025, 5, 10)}, true},
		{"date from after", RetrievalFilter{DateFrom: day(2025, 5, 11)}, false},
		{"date to inclusive", RetrievalFilter{DateTo: day(2025, 5, 10)}, true},
		{"date to before", RetrievalFilter{DateTo: day(2025, 5, 9)}, false},
		{"and combined", RetrievalFilter{MeetingID: &meeting5, Speaker: "Bob"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(chunk))
		})
	}
}

func TestRetrievalFilter_DateToIncludesWholeDay(t *testing.T) {
	late := time.Date(2025, 5, 10, 23, 59, 0, 0, time.UTC)
	f := RetrievalFilter{DateTo: &late}
	chunk := &Chunk{MeetingDate: day(2025, 5, 10)}
	assert.True(t, f.Matches(chunk))
	assert.Equal(t, time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC), *f.DateToBound())
}

func TestRetrievalFilter_DateFilterRequiresMeetingDate(t *testing.T) {
	f := RetrievalFilter{DateFrom: day(2025, 1, 1)}
	assert.False(t, f.Matches(&Chunk{}))
}

func TestRetrievalFilter_ForMeetingDoesNotMutate(t *testing.T) {
	base := RetrievalFilter{Speaker: "Alice"}
	scoped := base.ForMeeting(9)
	assert.Nil(t, base.MeetingID)
	if assert.NotNil(t, scoped.MeetingID) {
		assert.Equal(t, int64(9), *scoped.MeetingID)
	}
	assert.Equal(t, "Alice", scoped.Speaker)
}
