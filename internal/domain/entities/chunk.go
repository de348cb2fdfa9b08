package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// EmbeddingDimensions is the width of the meeting_chunks.embedding column
const EmbeddingDimensions = 1536

// ChunkType classifies retrievable text
type ChunkType string

const (
	ChunkTypeTranscript ChunkType = "transcript"  // One transcript segment
	ChunkTypeInsight    ChunkType = "insight"     // Overview, blocker or deadline
	ChunkTypeActionItem ChunkType = "action_item" // One action item
)

// Valid reports whether t is a known chunk type
func (t ChunkType) Valid() bool {
	switch t {
	case ChunkTypeTranscript, ChunkTypeInsight, ChunkTypeActionItem:
		return true
	}
	return false
}

// Chunk is the unit of retrieval
type Chunk struct {
	ID              int64                       `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID       int64                       `json:"meeting_id" gorm:"not null;index"`
	ChunkType       ChunkType                   `json:"chunk_type" gorm:"type:varchar(32);not null;default:'transcript'"`
	Text            string                      `json:"text" gorm:"type:text;not null"`
	SegmentStart    *float64                    `json:"segment_start,omitempty"`
	SegmentEnd      *float64                    `json:"segment_end,omitempty"`
	Timestamp       *time.Time                  `json:"timestamp,omitempty"`
	Speaker         *string                     `json:"speaker,omitempty" gorm:"type:varchar(255)"`
	Language        *string                     `json:"language,omitempty" gorm:"type:varchar(10)"`
	Topics          datatypes.JSONSlice[string] `json:"topics,omitempty" gorm:"type:jsonb"`
	Embedding       *pgvector.Vector            `json:"-" gorm:"type:vector(1536)"`
	ChunkHash       string                      `json:"chunk_hash" gorm:"column:chunk_hash;type:varchar(64);not null"`
	MeetingNativeID *string                     `json:"meeting_native_id,omitempty" gorm:"type:varchar(255)"`
	Platform        *string                     `json:"platform,omitempty" gorm:"type:varchar(100)"`
	MeetingDate     *time.Time                  `json:"meeting_date,omitempty" gorm:"type:date"`
	Similarity      float64                     `json:"similarity" gorm:"->;-:migration"`
	CreatedAt       time.Time                   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time                   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (Chunk) TableName() string {
	return "meeting_chunks"
}

// Fingerprint hashes meeting id, chunk type and the exact text
func Fingerprint(meetingID int64, chunkType ChunkType, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s:%s", meetingID, chunkType, text)))
	return hex.EncodeToString(sum[:])
}

// ComputeHash sets ChunkHash from the chunk's own fields
func (c *Chunk) ComputeHash() string {
	c.ChunkHash = Fingerprint(c.MeetingID, c.ChunkType, c.Text)
	return c.ChunkHash
}

// SetVector stores an embedding on the chunk
func (c *Chunk) SetVector(v []float32) {
	if v == nil {
		c.Embedding = nil
		return
	}
	vec := pgvector.NewVector(v)
	c.Embedding = &vec
}

// Vector returns the embedding or nil
func (c *Chunk) Vector() []float32 {
	if c.Embedding == nil {
		return nil
	}
	return c.Embedding.Slice()
}

// HasEmbedding reports whether the chunk carries a vector
func (c *Chunk) HasEmbedding() bool {
	return len(c.Vector()) > 0
}

// ApplyMeeting copies the denormalized meeting attributes onto the chunk
func (c *Chunk) ApplyMeeting(m *Meeting) {
	if m == nil {
		return
	}
	c.MeetingID = m.ID
	if native := m.NativeID(); native != "" {
		c.MeetingNativeID = &native
	}
	if m.Platform != "" {
		platform := m.Platform
		c.Platform = &platform
	}
	c.MeetingDate = m.MeetingDate()
}

// PrepareChunkBatch validates a write batch for one meeting, stamps the
// meeting id and fingerprint on every chunk and drops later chunks whose
// fingerprint repeats an earlier one. Only the listed chunk types are accepted.
func PrepareChunkBatch(meetingID int64, chunks []*Chunk, allowed ...ChunkType) ([]*Chunk, error) {
	out := make([]*Chunk, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	for i, c := range chunks {
		if err := ValidateChunk(meetingID, c); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if len(allowed) > 0 && !chunkTypeIn(c.ChunkType, allowed) {
			return nil, fmt.Errorf("chunk %d: %w: %s", i, ErrInvalidChunkType, c.ChunkType)
		}
		c.MeetingID = meetingID
		hash := c.ComputeHash()
		if _, dup := seen[hash]; dup {
			continue
		}
		seen[hash] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func chunkTypeIn(t ChunkType, allowed []ChunkType) bool {
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}
