package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestMeeting_InsightsDecodesStoredDocument(t *testing.T) {
	m := &Meeting{
		ID: 1,
		Data: datatypes.JSONMap{
			MeetingDataInsightsKey: map[string]interface{}{
				"overview": map[string]interface{}{"goal": "Plan Q3", "summary": "Roadmap agreed", "sentiment": "positive"},
				"blockers": []interface{}{
					map[string]interface{}{"description": "Vendor contract unsigned", "owner": "Dana"},
				},
			},
		},
	}

	doc, err := m.Insights()
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.NotNil(t, doc.Overview)
	assert.Equal(t, "Roadmap agreed", doc.Overview.Summary)
	require.Len(t, doc.Blockers, 1)
	assert.Equal(t, "Dana", doc.Blockers[0].Owner)

	ctx := doc.Context()
	assert.Equal(t, "Plan Q3", ctx.Overview.Goal)
	assert.NotNil(t, ctx.ActionItems)
	assert.Empty(t, ctx.ActionItems)
	assert.NotNil(t, ctx.CriticalDeadlines)
}

func TestMeeting_InsightsAbsent(t *testing.T) {
	doc, err := (&Meeting{}).Insights()
	assert.NoError(t, err)
	assert.Nil(t, doc)

	doc, err = (&Meeting{Data: datatypes.JSONMap{MeetingDataInsightsKey: "garbage"}}).Insights()
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestParseISODateTime(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Time
	}{
		{"", nil},
		{"soon", nil},
		{"2025-06-01", day(2025, 6, 1)},
		{"2025-06-01T00:00:00Z", day(2025, 6, 1)},
	}
	for _, tt := range tests {
		got := ParseISODateTime(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, tt.in)
			continue
		}
		require.NotNil(t, got, tt.in)
		assert.True(t, tt.want.Equal(*got), tt.in)
	}

	withOffset := ParseISODateTime("2025-06-01T12:00:00+03:00")
	require.NotNil(t, withOffset)
	assert.Equal(t, 9, withOffset.UTC().Hour())
}

func TestLastTurns(t *testing.T) {
	turns := make([]ConversationTurn, 15)
	for i := range turns {
		turns[i] = ConversationTurn{Role: RoleUser, Content: string(rune('a' + i))}
	}
	kept := LastTurns(turns, 10)
	require.Len(t, kept, 10)
	assert.Equal(t, "f", kept[0].Content)
	assert.Equal(t, "o", kept[9].Content)

	assert.Len(t, LastTurns(turns[:3], 10), 3)
	assert.Nil(t, LastTurns(turns, 0))
}

func TestOffsetTime(t *testing.T) {
	assert.Nil(t, OffsetTime(nil, 10))
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	got := OffsetTime(&base, 90.5)
	require.NotNil(t, got)
	assert.Equal(t, base.Add(90*time.Second+500*time.Millisecond), *got)
}
