// README: In-memory ride store with the same CAS contract as the pg store.
package ride

import (
	"context"
	"sort"
	"sync"

	"accessride/internal/types"
)

// MemStore mirrors PgStore semantics in process memory. It backs the unit and
// race tests; the CAS in UpdateStatus holds under the store mutex.
type MemStore struct {
	mu     sync.Mutex
	rides  map[types.ID]*Ride
	events []Event
	nextID int64
}

func NewMemStore() *MemStore {
	return &MemStore{rides: make(map[types.ID]*Ride)}
}

func (s *MemStore) Create(_ context.Context, r *Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.rides[r.ID] = &cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemStore) ListByRider(_ context.Context, riderID types.ID) ([]Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Ride
	for _, r := range s.rides {
		if r.RiderID == riderID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledTime.After(out[j].ScheduledTime)
	})
	return out, nil
}

func (s *MemStore) FirstByDriver(_ context.Context, driverID types.ID, status Status) (*Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *Ride
	for _, r := range s.rides {
		if r.DriverID == nil || *r.DriverID != driverID || r.Status != status {
			continue
		}
		if best == nil ||
			r.ScheduledTime.Before(best.ScheduledTime) ||
			(r.ScheduledTime.Equal(best.ScheduledTime) && r.ID < best.ID) {
			best = r
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (s *MemStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int, driverID *types.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok || r.Status != from || r.StatusVersion != version {
		return false, nil
	}
	r.Status = to
	r.StatusVersion++
	if driverID != nil {
		d := *driverID
		r.DriverID = &d
	}
	return true, nil
}

func (s *MemStore) AppendEvent(_ context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	cp := *e
	cp.ID = s.nextID
	s.events = append(s.events, cp)
	return nil
}

// Events returns a copy of the event log in append order.
func (s *MemStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemStore) CountByPickup(_ context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int)
	for _, r := range s.rides {
		out[r.Pickup]++
	}
	return out, nil
}

func (s *MemStore) CountByStatus(_ context.Context) (map[Status]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Status]int)
	for _, r := range s.rides {
		out[r.Status]++
	}
	return out, nil
}
