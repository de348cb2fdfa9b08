package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrInternalError = errors.New("internal server error")
)

// Insights extraction errors
var (
	ErrClaimConflict       = errors.New("meeting already claimed by another worker")
	ErrNoTranscript        = errors.New("meeting has no transcript segments")
	ErrExtractionFailed    = errors.New("insights extraction failed")
	ErrEmbeddingFailed     = errors.New("embedding generation failed")
	ErrInsightsUnavailable = errors.New("insights not available for meeting")
	ErrMeetingBusy         = errors.New("meeting is being processed by a worker")
)

// Query errors
var (
	ErrInvalidMode      = errors.New("mode must be 'global' or 'meeting'")
	ErrMissingMeetingID = errors.New("meeting_id is required for 'meeting' mode")
	ErrMeetingNotFound  = errors.New("meeting not found")
	ErrRetrievalFailed  = errors.New("chunk retrieval failed")
)
