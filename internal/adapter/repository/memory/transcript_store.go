package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// TranscriptStore keeps transcript segments per meeting
type TranscriptStore struct {
	mu       sync.RWMutex
	nextID   int64
	segments map[int64][]*entities.TranscriptSegment
}

var _ repo.TranscriptRepository = (*TranscriptStore)(nil)

// NewTranscriptStore creates an empty transcript store
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{segments: make(map[int64][]*entities.TranscriptSegment)}
}

// Add appends segments to a meeting
func (s *TranscriptStore) Add(meetingID int64, segments ...*entities.TranscriptSegment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, seg := range segments {
		cp := *seg
		s.nextID++
		cp.ID = s.nextID
		cp.MeetingID = meetingID
		s.segments[meetingID] = append(s.segments[meetingID], &cp)
	}
}

// Replace swaps every segment of a meeting
func (s *TranscriptStore) Replace(meetingID int64, segments ...*entities.TranscriptSegment) {
	s.mu.Lock()
	delete(s.segments, meetingID)
	s.mu.Unlock()
	s.Add(meetingID, segments...)
}

// ListSegments returns the meeting's segments ordered by start time
func (s *TranscriptStore) ListSegments(ctx context.Context, meetingID int64) ([]*entities.TranscriptSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.TranscriptSegment, 0, len(s.segments[meetingID]))
	for _, seg := range s.segments[meetingID] {
		cp := *seg
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
