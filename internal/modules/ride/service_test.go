// README: Ride service tests: scheduling pipeline, lifecycle flows, listing.
package ride

import (
	"context"
	"errors"
	"testing"
	"time"

	"accessride/internal/graph"
	"accessride/internal/modules/driver"
	"accessride/internal/modules/matching"
	"accessride/internal/routing"
	"accessride/internal/types"
)

type fixture struct {
	svc   *Service
	store *MemStore
	pool  *driver.MemPool
}

func newFixture(t *testing.T, drivers ...driver.Driver) *fixture {
	t.Helper()
	pool := driver.NewMemPool()
	base := time.Now()
	for i := range drivers {
		if drivers[i].RegisteredAt.IsZero() {
			drivers[i].RegisteredAt = base.Add(time.Duration(i) * time.Second)
		}
		if err := pool.Create(context.Background(), &drivers[i]); err != nil {
			t.Fatalf("create driver: %v", err)
		}
	}
	store := NewMemStore()
	planner := routing.NewPlanner(nil, nil, graph.DefaultNetwork(), time.Second)
	svc := NewService(store, planner, matching.NewMatcher(pool))
	return &fixture{svc: svc, store: store, pool: pool}
}

func wheelchairDriver(id types.ID) driver.Driver {
	return driver.Driver{
		ID:           id,
		Capabilities: driver.CapabilitySet{driver.CapWheelchairRamp},
		Capacity:     4,
		Available:    true,
	}
}

func assertStatus(t *testing.T, f *fixture, id types.ID, want Status) {
	t.Helper()
	r, err := f.svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if r.Status != want {
		t.Fatalf("status = %s, want %s", r.Status, want)
	}
}

// TestScheduleEndToEnd is the no-provider pipeline: Home -> Hospital over the
// 15-minute edge yields distance 7.5 km, duration 15 min, and a scheduled ride
// when a capable driver is free.
func TestScheduleEndToEnd(t *testing.T) {
	f := newFixture(t, wheelchairDriver("d1"))
	ctx := context.Background()

	r, err := f.svc.Schedule(ctx, ScheduleCommand{
		RiderID:       "user1",
		Pickup:        "Home",
		Dropoff:       "Hospital",
		ScheduledTime: time.Now().Add(2 * time.Hour),
		Requirements:  driver.CapabilitySet{driver.CapWheelchairRamp},
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if r.Status != StatusScheduled {
		t.Fatalf("status = %s, want scheduled", r.Status)
	}
	if r.DriverID == nil || *r.DriverID != "d1" {
		t.Fatalf("driver = %v, want d1", r.DriverID)
	}
	if r.EstimatedMin == nil || *r.EstimatedMin != 15 {
		t.Fatalf("estimated = %v, want 15", r.EstimatedMin)
	}
	if r.DistanceKm == nil || *r.DistanceKm != 7.5 {
		t.Fatalf("distance = %v, want 7.5", r.DistanceKm)
	}

	d1, _ := f.pool.Get(ctx, "d1")
	if d1.Available {
		t.Fatal("assigned driver still available")
	}
}

func TestScheduleNoQualifyingDriverStaysPending(t *testing.T) {
	// Only driver lacks the required capability.
	f := newFixture(t, driver.Driver{ID: "sedan", Capacity: 3, Available: true})
	ctx := context.Background()

	r, err := f.svc.Schedule(ctx, ScheduleCommand{
		RiderID:       "user1",
		Pickup:        "Home",
		Dropoff:       "Hospital",
		ScheduledTime: time.Now().Add(time.Hour),
		Requirements:  driver.CapabilitySet{driver.CapWheelchairRamp},
	})
	if err != nil {
		t.Fatalf("schedule: %v (pending is not an error)", err)
	}
	if r.Status != StatusPending {
		t.Fatalf("status = %s, want pending", r.Status)
	}
	if r.DriverID != nil {
		t.Fatalf("driver = %v, want nil", r.DriverID)
	}

	// The sedan must remain free for rides it can serve.
	d, _ := f.pool.Get(ctx, "sedan")
	if !d.Available {
		t.Fatal("non-qualifying driver was reserved")
	}
}

func TestScheduleUnknownLocation(t *testing.T) {
	f := newFixture(t, wheelchairDriver("d1"))

	_, err := f.svc.Schedule(context.Background(), ScheduleCommand{
		RiderID:       "user1",
		Pickup:        "Airport",
		Dropoff:       "Hospital",
		ScheduledTime: time.Now(),
	})
	if !errors.Is(err, routing.ErrLocationNotFound) {
		t.Fatalf("err = %v, want ErrLocationNotFound", err)
	}
}

func TestScheduleValidatesInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Schedule(context.Background(), ScheduleCommand{Pickup: "Home", Dropoff: "Mall"})
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	f := newFixture(t, wheelchairDriver("d1"))
	ctx := context.Background()

	r, err := f.svc.Schedule(ctx, ScheduleCommand{
		RiderID:       "user1",
		Pickup:        "Home",
		Dropoff:       "Hospital",
		ScheduledTime: time.Now().Add(time.Hour),
		Requirements:  driver.CapabilitySet{driver.CapWheelchairRamp},
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	assertStatus(t, f, r.ID, StatusScheduled)

	started, err := f.svc.Start(ctx, "d1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.ID != r.ID {
		t.Fatalf("started %s, want %s", started.ID, r.ID)
	}
	assertStatus(t, f, r.ID, StatusInProgress)

	completed, err := f.svc.Complete(ctx, "d1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", completed.Status)
	}

	// Completion releases the driver.
	d1, _ := f.pool.Get(ctx, "d1")
	if !d1.Available {
		t.Fatal("driver not released after completion")
	}

	// No further transitions from a terminal state.
	if err := f.svc.Cancel(ctx, CancelCommand{RideID: r.ID, ActorType: "rider"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel completed ride: err = %v, want ErrInvalidTransition", err)
	}
	assertStatus(t, f, r.ID, StatusCompleted)
}

func TestStartPicksEarliestScheduledRide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := types.ID("d1")

	// Two scheduled rides held by the same driver, inserted out of order.
	later := Ride{
		ID: "ride_later", RiderID: "u1", Pickup: "Home", Dropoff: "Mall",
		ScheduledTime: time.Now().Add(4 * time.Hour),
		Status:        StatusScheduled, DriverID: &d, CreatedAt: time.Now(),
	}
	earlier := Ride{
		ID: "ride_earlier", RiderID: "u2", Pickup: "Home", Dropoff: "Hospital",
		ScheduledTime: time.Now().Add(1 * time.Hour),
		Status:        StatusScheduled, DriverID: &d, CreatedAt: time.Now(),
	}
	for _, r := range []Ride{later, earlier} {
		r := r
		if err := f.store.Create(ctx, &r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	started, err := f.svc.Start(ctx, d)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.ID != "ride_earlier" {
		t.Fatalf("started %s, want ride_earlier", started.ID)
	}
}

func TestStartWithoutScheduledRide(t *testing.T) {
	f := newFixture(t, wheelchairDriver("d1"))
	if _, err := f.svc.Start(context.Background(), "d1"); !errors.Is(err, ErrNoActiveRide) {
		t.Fatalf("err = %v, want ErrNoActiveRide", err)
	}
}

func TestCompleteRequiresInProgress(t *testing.T) {
	f := newFixture(t, wheelchairDriver("d1"))
	ctx := context.Background()

	if _, err := f.svc.Schedule(ctx, ScheduleCommand{
		RiderID:       "user1",
		Pickup:        "Home",
		Dropoff:       "Hospital",
		ScheduledTime: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	// Ride is scheduled, not started: completing skips a state and must fail.
	if _, err := f.svc.Complete(ctx, "d1"); !errors.Is(err, ErrNoActiveRide) {
		t.Fatalf("err = %v, want ErrNoActiveRide", err)
	}
}

func TestCancelReleasesAssignedDriver(t *testing.T) {
	f := newFixture(t, wheelchairDriver("d1"))
	ctx := context.Background()

	r, err := f.svc.Schedule(ctx, ScheduleCommand{
		RiderID:       "user1",
		Pickup:        "Home",
		Dropoff:       "Hospital",
		ScheduledTime: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if err := f.svc.Cancel(ctx, CancelCommand{RideID: r.ID, ActorType: "rider", ActorID: "user1"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	assertStatus(t, f, r.ID, StatusCanceled)

	d1, _ := f.pool.Get(ctx, "d1")
	if !d1.Available {
		t.Fatal("driver not released after cancellation")
	}
}

func TestCancelPendingRide(t *testing.T) {
	f := newFixture(t) // no drivers: ride stays pending
	ctx := context.Background()

	r, err := f.svc.Schedule(ctx, ScheduleCommand{
		RiderID:       "user1",
		Pickup:        "Home",
		Dropoff:       "Mall",
		ScheduledTime: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := f.svc.Cancel(ctx, CancelCommand{RideID: r.ID, ActorType: "rider"}); err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	assertStatus(t, f, r.ID, StatusCanceled)
}

func TestListByRiderNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Now()
	for i, id := range []types.ID{"r1", "r2", "r3"} {
		r := Ride{
			ID: id, RiderID: "user1", Pickup: "Home", Dropoff: "Mall",
			ScheduledTime: base.Add(time.Duration(i) * time.Hour),
			Status:        StatusPending, CreatedAt: base,
		}
		if err := f.store.Create(ctx, &r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	other := Ride{
		ID: "other", RiderID: "user2", Pickup: "Home", Dropoff: "Park",
		ScheduledTime: base, Status: StatusPending, CreatedAt: base,
	}
	if err := f.store.Create(ctx, &other); err != nil {
		t.Fatalf("create: %v", err)
	}

	rides, err := f.svc.ListByRider(ctx, "user1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rides) != 3 {
		t.Fatalf("len = %d, want 3", len(rides))
	}
	for i := 0; i+1 < len(rides); i++ {
		if rides[i].ScheduledTime.Before(rides[i+1].ScheduledTime) {
			t.Fatalf("rides not in scheduled_time descending order: %v", rides)
		}
	}
}

func TestScheduleEmitsCreationEvent(t *testing.T) {
	f := newFixture(t, wheelchairDriver("d1"))

	r, err := f.svc.Schedule(context.Background(), ScheduleCommand{
		RiderID:       "user1",
		Pickup:        "Home",
		Dropoff:       "Hospital",
		ScheduledTime: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	events := f.store.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	e := events[0]
	if e.RideID != r.ID || e.FromStatus != StatusNone || e.ToStatus != StatusScheduled {
		t.Fatalf("event = %+v", e)
	}
}

// brokenEventStore fails every audit append while the rest of the store works.
type brokenEventStore struct {
	*MemStore
}

func (s *brokenEventStore) AppendEvent(context.Context, *Event) error {
	return errors.New("event table unavailable")
}

// brokenReleasePool fails every release while reservation still works.
type brokenReleasePool struct {
	*driver.MemPool
}

func (p *brokenReleasePool) Release(context.Context, types.ID) error {
	return errors.New("driver row locked")
}

func TestScheduleSurvivesEventLogFailure(t *testing.T) {
	pool := driver.NewMemPool()
	d := wheelchairDriver("d1")
	d.RegisteredAt = time.Now()
	if err := pool.Create(context.Background(), &d); err != nil {
		t.Fatalf("create driver: %v", err)
	}
	store := &brokenEventStore{MemStore: NewMemStore()}
	planner := routing.NewPlanner(nil, nil, graph.DefaultNetwork(), time.Second)
	svc := NewService(store, planner, matching.NewMatcher(pool))

	r, err := svc.Schedule(context.Background(), ScheduleCommand{
		RiderID:       "user1",
		Pickup:        "Home",
		Dropoff:       "Hospital",
		ScheduledTime: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v (audit log is best-effort)", err)
	}
	if r.Status != StatusScheduled {
		t.Fatalf("status = %s, want scheduled", r.Status)
	}

	// The ride itself must be durable even though its creation event was lost.
	got, err := svc.Get(context.Background(), r.ID)
	if err != nil || got.Status != StatusScheduled {
		t.Fatalf("get after schedule: %+v, %v", got, err)
	}
}

func TestCompleteSurvivesReleaseFailure(t *testing.T) {
	pool := &brokenReleasePool{MemPool: driver.NewMemPool()}
	d := wheelchairDriver("d1")
	d.RegisteredAt = time.Now()
	if err := pool.Create(context.Background(), &d); err != nil {
		t.Fatalf("create driver: %v", err)
	}
	store := NewMemStore()
	planner := routing.NewPlanner(nil, nil, graph.DefaultNetwork(), time.Second)
	svc := NewService(store, planner, matching.NewMatcher(pool))
	ctx := context.Background()

	r, err := svc.Schedule(ctx, ScheduleCommand{
		RiderID:       "user1",
		Pickup:        "Home",
		Dropoff:       "Hospital",
		ScheduledTime: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := svc.Start(ctx, "d1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// The completed transition is durable before the release runs, so a
	// failed release must not fail the ride.
	completed, err := svc.Complete(ctx, "d1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", completed.Status)
	}

	if err := svc.Cancel(ctx, CancelCommand{RideID: r.ID, ActorType: "rider"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel completed ride: err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelSurvivesReleaseFailure(t *testing.T) {
	pool := &brokenReleasePool{MemPool: driver.NewMemPool()}
	d := wheelchairDriver("d1")
	d.RegisteredAt = time.Now()
	if err := pool.Create(context.Background(), &d); err != nil {
		t.Fatalf("create driver: %v", err)
	}
	store := NewMemStore()
	planner := routing.NewPlanner(nil, nil, graph.DefaultNetwork(), time.Second)
	svc := NewService(store, planner, matching.NewMatcher(pool))
	ctx := context.Background()

	r, err := svc.Schedule(ctx, ScheduleCommand{
		RiderID:       "user1",
		Pickup:        "Home",
		Dropoff:       "Hospital",
		ScheduledTime: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if err := svc.Cancel(ctx, CancelCommand{RideID: r.ID, ActorType: "rider"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, err := svc.Get(ctx, r.ID)
	if err != nil || got.Status != StatusCanceled {
		t.Fatalf("get after cancel: %+v, %v", got, err)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t, wheelchairDriver("d1"))
	ctx := context.Background()

	for _, dropoff := range []string{"Hospital", "Mall"} {
		if _, err := f.svc.Schedule(ctx, ScheduleCommand{
			RiderID:       "user1",
			Pickup:        "Home",
			Dropoff:       dropoff,
			ScheduledTime: time.Now().Add(time.Hour),
		}); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}

	byPickup, byStatus, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if byPickup["Home"] != 2 {
		t.Fatalf("byPickup = %v, want Home: 2", byPickup)
	}
	// One driver: first ride scheduled, second pending.
	if byStatus[StatusScheduled] != 1 || byStatus[StatusPending] != 1 {
		t.Fatalf("byStatus = %v", byStatus)
	}
}
