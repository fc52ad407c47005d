package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Princerai504/meetingbot/services/meeting/entity"
)

var ErrMeetingNotFound = errors.New("meeting not found")

type Storage interface {
	CreateMeeting(ctx context.Context, m *entity.Meeting) (*entity.Meeting, error)
	ListMeetings(ctx context.Context, skip, limit int) ([]*entity.Meeting, error)
	GetMeeting(ctx context.Context, id int64) (*entity.Meeting, error)
	UpdateMeeting(ctx context.Context, m *entity.Meeting) error
	DeleteMeeting(ctx context.Context, id int64) (*entity.Meeting, error)
}

type memory struct {
	mu       sync.RWMutex
	meetings map[int64]*entity.Meeting
	nextID   int64
}

// New returns the in-memory store used for tests and single-process runs.
func New() Storage {
	return &memory{
		meetings: make(map[int64]*entity.Meeting),
		nextID:   1,
	}
}

func (s *memory) CreateMeeting(ctx context.Context, m *entity.Meeting) (*entity.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *m
	stored.ID = s.nextID
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}
	s.nextID++
	s.meetings[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (s *memory) ListMeetings(ctx context.Context, skip, limit int) ([]*entity.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.meetings))
	for id := range s.meetings {
		ids = append(ids, id)
	}
	// Insertion order == id order for this store.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if skip < 0 {
		skip = 0
	}
	if skip >= len(ids) {
		return nil, nil
	}
	ids = ids[skip:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}

	out := make([]*entity.Meeting, 0, len(ids))
	for _, id := range ids {
		m := *s.meetings[id]
		out = append(out, &m)
	}
	return out, nil
}

func (s *memory) GetMeeting(ctx context.Context, id int64) (*entity.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meetings[id]
	if !ok {
		return nil, ErrMeetingNotFound
	}
	out := *m
	return &out, nil
}

func (s *memory) UpdateMeeting(ctx context.Context, m *entity.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meetings[m.ID]; !ok {
		return ErrMeetingNotFound
	}
	stored := *m
	s.meetings[m.ID] = &stored
	return nil
}

func (s *memory) DeleteMeeting(ctx context.Context, id int64) (*entity.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[id]
	if !ok {
		return nil, ErrMeetingNotFound
	}
	delete(s.meetings, id)
	out := *m
	return &out, nil
}
