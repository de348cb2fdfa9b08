package entities

import "errors"

// Domain errors
var (
	// Chunk errors
	ErrInvalidChunkType     = errors.New("invalid chunk type")
	ErrEmptyChunkText       = errors.New("chunk text is empty")
	ErrChunkMeetingMismatch = errors.New("chunk belongs to a different meeting")
	ErrMissingEmbedding     = errors.New("chunk has no embedding")
	ErrDimensionMismatch    = errors.New("embedding dimension mismatch")

	// Meeting errors
	ErrMeetingNotFound   = errors.New("meeting not found")
	ErrMeetingProcessing = errors.New("meeting is being processed")
)

// ValidateChunk checks the invariants every stored chunk must satisfy
func ValidateChunk(meetingID int64, c *Chunk) error {
	if c == nil {
		return ErrEmptyChunkText
	}
	if !c.ChunkType.Valid() {
		return ErrInvalidChunkType
	}
	if c.Text == "" {
		return ErrEmptyChunkText
	}
	if c.MeetingID != 0 && c.MeetingID != meetingID {
		return ErrChunkMeetingMismatch
	}
	return nil
}
