package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// InsightsStore keeps derived insight rows per meeting
type InsightsStore struct {
	mu      sync.RWMutex
	nextID  int64
	derived map[int64]*entities.DerivedInsights
}

var _ repo.InsightsRepository = (*InsightsStore)(nil)

// NewInsightsStore creates an empty insights store
func NewInsightsStore() *InsightsStore {
	return &InsightsStore{derived: make(map[int64]*entities.DerivedInsights)}
}

// ReplaceDerived swaps every derived row of the meeting
func (s *InsightsStore) ReplaceDerived(ctx context.Context, meetingID int64, derived *entities.DerivedInsights) error {
	if derived == nil {
		derived = &entities.DerivedInsights{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := &entities.DerivedInsights{}
	if derived.Metadata != nil {
		md := *derived.Metadata
		md.ID, md.MeetingID = s.id(), meetingID
		next.Metadata = &md
	}
	for _, h := range derived.Highlights {
		cp := *h
		cp.ID, cp.MeetingID = s.id(), meetingID
		next.Highlights = append(next.Highlights, &cp)
	}
	for _, a := range derived.ActionItems {
		cp := *a
		cp.ID, cp.MeetingID = s.id(), meetingID
		next.ActionItems = append(next.ActionItems, &cp)
	}
	for _, b := range derived.Blockers {
		cp := *b
		cp.ID, cp.MeetingID = s.id(), meetingID
		next.Blockers = append(next.Blockers, &cp)
	}
	for _, d := range derived.Deadlines {
		cp := *d
		cp.ID, cp.MeetingID = s.id(), meetingID
		next.Deadlines = append(next.Deadlines, &cp)
	}
	s.derived[meetingID] = next
	return nil
}

// Derived returns the rows stored for a meeting
func (s *InsightsStore) Derived(meetingID int64) *entities.DerivedInsights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.derived[meetingID]
}

// ListUpcomingDeadlines returns deadlines due in [from, to)
func (s *InsightsStore) ListUpcomingDeadlines(ctx context.Context, from, to time.Time) ([]entities.Deadline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Deadline, 0)
	for _, d := range s.derived {
		for _, dl := range d.Deadlines {
			if dl.DueDate == nil || dl.DueDate.Before(from) || !dl.DueDate.Before(to) {
				continue
			}
			out = append(out, *dl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(*out[j].DueDate) {
			return out[i].DueDate.Before(*out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListActionItems returns the action items of a meeting
func (s *InsightsStore) ListActionItems(ctx context.Context, meetingID int64) ([]entities.ActionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.ActionItem, 0)
	if d, ok := s.derived[meetingID]; ok {
		for _, a := range d.ActionItems {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *InsightsStore) id() int64 {
	s.nextID++
	return s.nextID
}
