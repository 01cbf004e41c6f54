// README: Driver pool backed by PostgreSQL; reserve/release are CAS updates.
package driver

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"accessride/internal/types"
)

var ErrNotFound = errors.New("driver not found")

type PgPool struct {
	db *pgxpool.Pool
}

func NewPgPool(db *pgxpool.Pool) *PgPool {
	return &PgPool{db: db}
}

func (p *PgPool) Create(ctx context.Context, d *Driver) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO drivers (id, capabilities, capacity, available, registered_at)
		VALUES ($1, $2, $3, $4, $5)`,
		string(d.ID),
		d.Capabilities.Strings(),
		d.Capacity,
		d.Available,
		d.RegisteredAt,
	)
	return err
}

func (p *PgPool) Get(ctx context.Context, id types.ID) (*Driver, error) {
	row := p.db.QueryRow(ctx, `
		SELECT id, capabilities, capacity, available, registered_at
		FROM drivers
		WHERE id = $1`, string(id),
	)
	var d Driver
	var caps []string
	err := row.Scan(&d.ID, &caps, &d.Capacity, &d.Available, &d.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.Capabilities = FromStrings(caps)
	return &d, nil
}

// ListAvailable returns available drivers in registration order, which fixes
// the first-fit iteration order for matching.
func (p *PgPool) ListAvailable(ctx context.Context) ([]Driver, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, capabilities, capacity, available, registered_at
		FROM drivers
		WHERE available
		ORDER BY registered_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Driver
	for rows.Next() {
		var d Driver
		var caps []string
		if err := rows.Scan(&d.ID, &caps, &d.Capacity, &d.Available, &d.RegisteredAt); err != nil {
			return nil, err
		}
		d.Capabilities = FromStrings(caps)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Reserve flips available true -> false for the given driver. The WHERE clause
// makes the check-and-set a single atomic statement: of any number of
// concurrent callers, exactly one sees a row affected.
func (p *PgPool) Reserve(ctx context.Context, id types.ID) (bool, error) {
	tag, err := p.db.Exec(ctx, `
		UPDATE drivers SET available = FALSE
		WHERE id = $1 AND available`, string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (p *PgPool) Release(ctx context.Context, id types.ID) error {
	_, err := p.db.Exec(ctx, `
		UPDATE drivers SET available = TRUE
		WHERE id = $1`, string(id),
	)
	return err
}
