// README: Ride store contract plus the PostgreSQL implementation.
package ride

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"accessride/internal/modules/driver"
	"accessride/internal/types"
)

// Store is the ride storage collaborator. UpdateStatus must be an atomic
// compare-and-set on (status, status_version): of concurrent transition
// attempts on one ride, exactly one sees ok = true.
type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)
	ListByRider(ctx context.Context, riderID types.ID) ([]Ride, error)
	FirstByDriver(ctx context.Context, driverID types.ID, status Status) (*Ride, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
	CountByPickup(ctx context.Context) (map[string]int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) Create(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rides (
			id, rider_id, pickup, dropoff, scheduled_time,
			requirements, status, status_version, driver_id,
			estimated_min, distance_km, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12
		)`,
		string(r.ID),
		string(r.RiderID),
		r.Pickup,
		r.Dropoff,
		r.ScheduledTime,
		r.Requirements.Strings(),
		string(r.Status),
		r.StatusVersion,
		idPtr(r.DriverID),
		r.EstimatedMin,
		r.DistanceKm,
		r.CreatedAt,
	)
	return err
}

const rideColumns = `
	id, rider_id, pickup, dropoff, scheduled_time,
	requirements, status, status_version, driver_id,
	estimated_min, distance_km, created_at`

func (s *PgStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	return scanRide(row)
}

// ListByRider returns a rider's rides, most recently scheduled first.
func (s *PgStore) ListByRider(ctx context.Context, riderID types.ID) ([]Ride, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+rideColumns+`
		FROM rides
		WHERE rider_id = $1
		ORDER BY scheduled_time DESC`, string(riderID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

// FirstByDriver returns the driver's earliest-scheduled ride in the given
// status, which is the deterministic pick when a driver holds several.
func (s *PgStore) FirstByDriver(ctx context.Context, driverID types.ID, status Status) (*Ride, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+rideColumns+`
		FROM rides
		WHERE driver_id = $1 AND status = $2
		ORDER BY scheduled_time, id
		LIMIT 1`, string(driverID), string(status),
	)
	return scanRide(row)
}

func (s *PgStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET status = $1,
		    status_version = status_version + 1,
		    driver_id = COALESCE($2, driver_id)
		WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to),
		idPtr(driverID),
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PgStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ride_state_events (
			ride_id, from_status, to_status, actor_type, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.RideID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		idPtr(e.ActorID),
		e.CreatedAt,
	)
	return err
}

func (s *PgStore) CountByPickup(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Query(ctx, `SELECT pickup, COUNT(*) FROM rides GROUP BY pickup`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var pickup string
		var n int
		if err := rows.Scan(&pickup, &n); err != nil {
			return nil, err
		}
		out[pickup] = n
	}
	return out, rows.Err()
}

func (s *PgStore) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM rides GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[Status]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[Status(st)] = n
	}
	return out, rows.Err()
}

func scanRide(row pgx.Row) (*Ride, error) {
	var r Ride
	var reqs []string
	var driverID *string
	var scheduled, created time.Time
	err := row.Scan(
		&r.ID, &r.RiderID, &r.Pickup, &r.Dropoff, &scheduled,
		&reqs, &r.Status, &r.StatusVersion, &driverID,
		&r.EstimatedMin, &r.DistanceKm, &created,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.ScheduledTime = scheduled
	r.CreatedAt = created
	r.Requirements = driver.FromStrings(reqs)
	if driverID != nil {
		d := types.ID(*driverID)
		r.DriverID = &d
	}
	return &r, nil
}

func collectRides(rows pgx.Rows) ([]Ride, error) {
	var out []Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
