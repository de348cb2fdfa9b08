package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// MeetingStore keeps meetings in memory. A single mutex makes ClaimNext atomic.
type MeetingStore struct {
	mu       sync.Mutex
	meetings map[int64]*entities.Meeting
	now      func() time.Time
}

var _ repo.MeetingRepository = (*MeetingStore)(nil)

// NewMeetingStore creates an empty meeting store
func NewMeetingStore() *MeetingStore {
	return &MeetingStore{
		meetings: make(map[int64]*entities.Meeting),
		now:      time.Now,
	}
}

// WithClock replaces the time source
func (s *MeetingStore) WithClock(now func() time.Time) *MeetingStore {
	s.now = now
	return s
}

// Put inserts or replaces a meeting
func (s *MeetingStore) Put(m *entities.Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneMeeting(m)
	if cp.SummaryState == "" {
		cp.SummaryState = entities.SummaryStatePending
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = s.now()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = cp.UpdatedAt
	}
	s.meetings[cp.ID] = cp
}

// GetByID returns a copy of the meeting or nil
func (s *MeetingStore) GetByID(ctx context.Context, id int64) (*entities.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[id]
	if !ok {
		return nil, nil
	}
	return cloneMeeting(m), nil
}

// ClaimNext moves the oldest eligible pending meeting to processing
func (s *MeetingStore) ClaimNext(ctx context.Context, statuses []string) (*entities.Meeting, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]*entities.Meeting, 0)
	for _, m := range s.meetings {
		if m.SummaryState == entities.SummaryStatePending && stringIn(m.Status, statuses) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].UpdatedAt.Equal(candidates[j].UpdatedAt) {
			return candidates[i].UpdatedAt.Before(candidates[j].UpdatedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})

	m := candidates[0]
	m.SummaryState = entities.SummaryStateProcessing
	m.SummaryError = nil
	m.UpdatedAt = s.now()
	return cloneMeeting(m), nil
}

// ResetStaleProcessing returns abandoned processing meetings to pending
func (s *MeetingStore) ResetStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, m := range s.meetings {
		if m.SummaryState == entities.SummaryStateProcessing && m.UpdatedAt.Before(olderThan) {
			m.SummaryState = entities.SummaryStatePending
			m.UpdatedAt = s.now()
			n++
		}
	}
	return n, nil
}

// MarkState sets a terminal state and processed_at
func (s *MeetingStore) MarkState(ctx context.Context, id int64, state entities.SummaryState) error {
	return s.update(id, func(m *entities.Meeting, now time.Time) error {
		m.SummaryState = state
		m.ProcessedAt = &now
		return nil
	})
}

// MarkFailed sets the error state with a message
func (s *MeetingStore) MarkFailed(ctx context.Context, id int64, reason string) error {
	return s.update(id, func(m *entities.Meeting, now time.Time) error {
		m.SummaryState = entities.SummaryStateError
		m.SummaryError = &reason
		return nil
	})
}

// SaveInsights merges the document into meeting data and marks the meeting completed
func (s *MeetingStore) SaveInsights(ctx context.Context, id int64, doc *entities.InsightsDocument, roster string) error {
	if doc == nil {
		return errors.New("insights document cannot be nil")
	}
	encoded, err := toJSONValue(doc)
	if err != nil {
		return fmt.Errorf("failed to encode insights: %w", err)
	}

	return s.update(id, func(m *entities.Meeting, now time.Time) error {
		if m.Data == nil {
			m.Data = datatypes.JSONMap{}
		}
		m.Data[entities.MeetingDataInsightsKey] = encoded
		if roster != "" {
			m.Data[entities.MeetingDataRosterKey] = roster
		}
		m.SummaryState = entities.SummaryStateCompleted
		m.SummaryError = nil
		m.ProcessedAt = &now
		return nil
	})
}

// ResetToPending makes a meeting claimable again unless it is processing
func (s *MeetingStore) ResetToPending(ctx context.Context, id int64) (bool, error) {
	err := s.update(id, func(m *entities.Meeting, now time.Time) error {
		if m.SummaryState == entities.SummaryStateProcessing {
			return entities.ErrMeetingProcessing
		}
		m.SummaryState = entities.SummaryStatePending
		m.SummaryError = nil
		return nil
	})
	if errors.Is(err, entities.ErrMeetingNotFound) || errors.Is(err, entities.ErrMeetingProcessing) {
		return false, nil
	}
	return err == nil, err
}

func (s *MeetingStore) update(id int64, fn func(m *entities.Meeting, now time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[id]
	if !ok {
		return entities.ErrMeetingNotFound
	}
	now := s.now()
	if err := fn(m, now); err != nil {
		return err
	}
	m.UpdatedAt = now
	return nil
}

func cloneMeeting(m *entities.Meeting) *entities.Meeting {
	cp := *m
	if m.Data != nil {
		cp.Data = make(datatypes.JSONMap, len(m.Data))
		for k, v := range m.Data {
			cp.Data[k] = v
		}
	}
	return &cp
}

// toJSONValue converts v into the generic shape a JSONB column decodes to
func toJSONValue(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func stringIn(s string, values []string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
