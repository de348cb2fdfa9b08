package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
)

// openTestDB connects to TEST_DATABASE_URL and applies migrations. Tests are
// skipped when the variable is unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.Open(dsn, nil)
	require.NoError(t, err)
	_, err = database.Migrate(db, migrate.Up, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB(db) })
	return db
}

func createMeeting(t *testing.T, db *gorm.DB, status string) *entities.Meeting {
	t.Helper()
	start := time.Now().UTC().Truncate(time.Second)
	m := &entities.Meeting{
		Platform:     "google_meet",
		Status:       status,
		StartTime:    &start,
		Data:         datatypes.JSONMap{},
		SummaryState: entities.SummaryStatePending,
	}
	require.NoError(t, db.Create(m).Error)
	t.Cleanup(func() { db.Delete(&entities.Meeting{}, m.ID) })
	return m
}

func unitVector(i int) []float32 {
	v := make([]float32, 1536)
	v[i] = 1
	return v
}

func TestPostgres_ClaimAndStateTransitions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewMeetingRepository(db)
	m := createMeeting(t, db, "integration-claim")

	claimed, err := repo.ClaimNext(ctx, []string{"integration-claim"})
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, m.ID, claimed.ID)
	assert.Equal(t, entities.SummaryStateProcessing, claimed.SummaryState)

	again, err := repo.ClaimNext(ctx, []string{"integration-claim"})
	require.NoError(t, err)
	assert.Nil(t, again, "a processing meeting is not claimable")

	reset, err := repo.ResetToPending(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, reset, "a processing meeting is not reset")

	require.NoError(t, repo.MarkFailed(ctx, m.ID, "boom"))
	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.SummaryStateError, got.SummaryState)

	ok, err := repo.ResetToPending(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	missing, err := repo.GetByID(ctx, -1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgres_ChunkReplaceAndQuery(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	chunks := NewChunkRepository(db)
	m := createMeeting(t, db, "integration-chunks")

	build := func(text string, axis int) *entities.Chunk {
		c := &entities.Chunk{ChunkType: entities.ChunkTypeTranscript, Text: text}
		c.ApplyMeeting(m)
		c.SetVector(unitVector(axis))
		return c
	}

	require.NoError(t, chunks.ReplaceTranscriptChunks(ctx, m.ID, []*entities.Chunk{build("first", 0), build("second", 1)}))
	require.NoError(t, chunks.ReplaceTranscriptChunks(ctx, m.ID, []*entities.Chunk{build("first", 0), build("second", 1)}))

	n, err := chunks.CountByMeeting(ctx, m.ID, entities.ChunkTypeTranscript)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := chunks.QueryByVector(ctx, unitVector(1), entities.RetrievalFilter{}.ForMeeting(m.ID), 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Text)
	assert.InDelta(t, 1.0, got[0].Similarity, 1e-6)
}
