// README: Ride service: scheduling pipeline and lifecycle transitions.
package ride

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"accessride/internal/modules/driver"
	"accessride/internal/modules/matching"
	"accessride/internal/routing"
	"accessride/internal/types"
)

var (
	ErrNotFound          = errors.New("ride not found")
	ErrInvalidTransition = errors.New("invalid ride state transition")
	ErrConflict          = errors.New("ride state conflict")
	ErrNoActiveRide      = errors.New("driver has no active ride")
	ErrBadRequest        = errors.New("bad request")
)

// RoutePlanner resolves a pickup/dropoff pair; see internal/routing.
type RoutePlanner interface {
	Plan(ctx context.Context, pickup, dropoff string) (routing.Route, error)
}

type Service struct {
	store   Store
	planner RoutePlanner
	matcher *matching.Matcher
	drivers matching.DriverPool
}

func NewService(store Store, planner RoutePlanner, matcher *matching.Matcher) *Service {
	var pool matching.DriverPool
	if matcher != nil {
		pool = matcher.Pool()
	}
	return &Service{store: store, planner: planner, matcher: matcher, drivers: pool}
}

type ScheduleCommand struct {
	RiderID       types.ID
	Pickup        string
	Dropoff       string
	ScheduledTime time.Time
	Requirements  driver.CapabilitySet
}

type CancelCommand struct {
	RideID    types.ID
	ActorType string // "rider", "driver", "system"
	ActorID   types.ID
}

// Schedule plans the route, creates the ride, and attempts driver assignment.
// A ride with no qualifying driver is saved as pending, which is a valid
// outcome, not an error; re-matching is triggered externally.
func (s *Service) Schedule(ctx context.Context, cmd ScheduleCommand) (*Ride, error) {
	if cmd.RiderID == "" || cmd.Pickup == "" || cmd.Dropoff == "" {
		return nil, ErrBadRequest
	}

	route, err := s.planner.Plan(ctx, cmd.Pickup, cmd.Dropoff)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	duration := route.DurationMin
	distance := route.DistanceKm
	r := &Ride{
		ID:            newID(),
		RiderID:       cmd.RiderID,
		Pickup:        cmd.Pickup,
		Dropoff:       cmd.Dropoff,
		ScheduledTime: cmd.ScheduledTime,
		Requirements:  cmd.Requirements,
		Status:        StatusPending,
		EstimatedMin:  &duration,
		DistanceKm:    &distance,
		CreatedAt:     now,
	}

	assigned, err := s.matcher.Assign(ctx, cmd.Requirements)
	switch {
	case err == nil:
		r.DriverID = &assigned.ID
		r.Status = StatusScheduled
	case errors.Is(err, matching.ErrNoAvailableDriver):
		// stays pending
	default:
		return nil, err
	}

	if err := s.store.Create(ctx, r); err != nil {
		if r.DriverID != nil {
			if rerr := s.drivers.Release(ctx, *r.DriverID); rerr != nil {
				log.Printf("ride %s: release driver %s after failed create: %v", r.ID, *r.DriverID, rerr)
			}
		}
		return nil, err
	}

	s.appendEvent(ctx, &Event{
		RideID:     r.ID,
		FromStatus: StatusNone,
		ToStatus:   r.Status,
		ActorType:  "rider",
		ActorID:    &cmd.RiderID,
		CreatedAt:  now,
	})
	return r, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

// ListByRider returns a rider's rides ordered by scheduled time, newest first.
func (s *Service) ListByRider(ctx context.Context, riderID types.ID) ([]Ride, error) {
	return s.store.ListByRider(ctx, riderID)
}

// Start moves the caller's earliest scheduled ride to in_progress. Looking the
// ride up by driver id is also the authorization check: a driver can only ever
// start a ride assigned to them.
func (s *Service) Start(ctx context.Context, driverID types.ID) (*Ride, error) {
	r, err := s.store.FirstByDriver(ctx, driverID, StatusScheduled)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoActiveRide
	}
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, r, StatusInProgress, "driver", driverID); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, r.ID)
}

// Complete finishes the caller's in_progress ride and releases the driver.
func (s *Service) Complete(ctx context.Context, driverID types.ID) (*Ride, error) {
	r, err := s.store.FirstByDriver(ctx, driverID, StatusInProgress)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoActiveRide
	}
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, r, StatusCompleted, "driver", driverID); err != nil {
		return nil, err
	}
	// The completed transition is already durable; a failed release leaves
	// the driver reserved until the next release, not the ride incomplete.
	if err := s.drivers.Release(ctx, driverID); err != nil {
		log.Printf("ride %s: release driver %s after completion: %v", r.ID, driverID, err)
	}
	return s.store.Get(ctx, r.ID)
}

// Cancel moves a ride to canceled from any non-terminal state and releases the
// assigned driver, if any.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	var actor *types.ID
	if cmd.ActorID != "" {
		actor = &cmd.ActorID
	}
	if err := s.transitionAs(ctx, r, StatusCanceled, cmd.ActorType, actor); err != nil {
		return err
	}
	if r.DriverID != nil {
		if err := s.drivers.Release(ctx, *r.DriverID); err != nil {
			log.Printf("ride %s: release driver %s after cancellation: %v", r.ID, *r.DriverID, err)
		}
	}
	return nil
}

// Stats aggregates ride counts by pickup location and by status.
func (s *Service) Stats(ctx context.Context) (map[string]int, map[Status]int, error) {
	byPickup, err := s.store.CountByPickup(ctx)
	if err != nil {
		return nil, nil, err
	}
	byStatus, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, nil, err
	}
	return byPickup, byStatus, nil
}

func (s *Service) transition(ctx context.Context, r *Ride, to Status, actorType string, actorID types.ID) error {
	return s.transitionAs(ctx, r, to, actorType, &actorID)
}

// transitionAs applies one lifecycle edge via compare-and-set. An edge missing
// from the table fails with ErrInvalidTransition; a CAS lost to a concurrent
// transition fails with ErrConflict. Either way state is unchanged.
func (s *Service) transitionAs(ctx context.Context, r *Ride, to Status, actorType string, actorID *types.ID) error {
	if !CanTransition(r.Status, to) {
		return ErrInvalidTransition
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, to, r.StatusVersion, nil)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.appendEvent(ctx, &Event{
		RideID:     r.ID,
		FromStatus: r.Status,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	})
	return nil
}

// appendEvent writes to the audit log best-effort: the state change it records
// is already committed, so a failed append is logged, never propagated.
func (s *Service) appendEvent(ctx context.Context, e *Event) {
	if err := s.store.AppendEvent(ctx, e); err != nil {
		log.Printf("ride %s: append %s -> %s event: %v", e.RideID, e.FromStatus, e.ToStatus, err)
	}
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
