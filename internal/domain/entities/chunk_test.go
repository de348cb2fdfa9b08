package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint(7, ChunkTypeTranscript, "We ship on Friday.")
	b := Fingerprint(7, ChunkTypeTranscript, "We ship on Friday.")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprint_SensitiveToEveryComponent(t *testing.T) {
	base := Fingerprint(7, ChunkTypeTranscript, "We ship on Friday.")

	seen := map[string]string{"base": base}
	variants := map[string]string{
		"meeting":    Fingerprint(8, ChunkTypeTranscript, "We ship on Friday."),
		"type":       Fingerprint(7, ChunkTypeInsight, "We ship on Friday."),
		"text":       Fingerprint(7, ChunkTypeTranscript, "We ship on Friday"),
		"whitespace": Fingerprint(7, ChunkTypeTranscript, "We ship on Friday. "),
	}
	for name, fp := range variants {
		for other, prev := range seen {
			assert.NotEqualf(t, prev, fp, "%s collides with %s", name, other)
		}
		seen[name] = fp
	}
}

func TestFingerprint_KnownValue(t *testing.T) {
	// sha256("1:transcript:hello")
	assert.Equal(t,
		"67a86f880d3f81adc5b6e9780fde84a67ca604e22eecc6d456a0aac2f83b184d",
		Fingerprint(1, ChunkTypeTranscript, "hello"),
	)
}

func TestChunk_VectorRoundTrip(t *testing.T) {
	c := &Chunk{MeetingID: 1, ChunkType: ChunkTypeInsight, Text: "Goal: launch"}
	assert.False(t, c.HasEmbedding())

	c.SetVector([]float32{0.1, 0.2, 0.3})
	require.True(t, c.HasEmbedding())
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, c.Vector())

	c.SetVector(nil)
	assert.Nil(t, c.Vector())
}

func TestChunk_ApplyMeeting(t *testing.T) {
	start := time.Date(2025, 3, 14, 22, 30, 0, 0, time.UTC)
	native := "abc-defg-hij"
	m := &Meeting{ID: 42, Platform: "google_meet", PlatformSpecificID: &native, StartTime: &start}

	c := &Chunk{Text: "hi"}
	c.ApplyMeeting(m)

	assert.Equal(t, int64(42), c.MeetingID)
	require.NotNil(t, c.MeetingNativeID)
	assert.Equal(t, native, *c.MeetingNativeID)
	require.NotNil(t, c.Platform)
	assert.Equal(t, "google_meet", *c.Platform)
	require.NotNil(t, c.MeetingDate)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), *c.MeetingDate)
}

func TestChunkType_Valid(t *testing.T) {
	assert.True(t, ChunkTypeTranscript.Valid())
	assert.True(t, ChunkTypeInsight.Valid())
	assert.True(t, ChunkTypeActionItem.Valid())
	assert.False(t, ChunkType("summary").Valid())
}

func TestPrepareChunkBatch_CollapsesDuplicates(t *testing.T) {
	chunks := []*Chunk{
		{ChunkType: ChunkTypeTranscript, Text: "yes"},
		{ChunkType: ChunkTypeTranscript, Text: "no"},
		{ChunkType: ChunkTypeTranscript, Text: "yes"},
	}
	out, err := PrepareChunkBatch(3, chunks, ChunkTypeTranscript)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Same(t, chunks[0], out[0])
	assert.Equal(t, int64(3), out[1].MeetingID)
	assert.Equal(t, Fingerprint(3, ChunkTypeTranscript, "no"), out[1].ChunkHash)
}

func TestPrepareChunkBatch_Rejects(t *testing.T) {
	_, err := PrepareChunkBatch(3, []*Chunk{{ChunkType: ChunkTypeInsight, Text: "x"}}, ChunkTypeTranscript)
	assert.ErrorIs(t, err, ErrInvalidChunkType)

	_, err = PrepareChunkBatch(3, []*Chunk{{ChunkType: ChunkTypeInsight, Text: ""}})
	assert.ErrorIs(t, err, ErrEmptyChunkText)

	_, err = PrepareChunkBatch(3, []*Chunk{{MeetingID: 4, ChunkType: ChunkTypeInsight, Text: "x"}})
	assert.ErrorIs(t, err, ErrChunkMeetingMismatch)
}
