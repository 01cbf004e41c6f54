// README: First-fit driver matching under accessibility constraints.
package matching

import (
	"context"
	"errors"

	"accessride/internal/modules/driver"
	"accessride/internal/types"
)

// ErrNoAvailableDriver means no available driver satisfies the ride's
// requirements. It is a valid pending outcome, not a failure: callers leave
// the ride in pending and re-match later.
var ErrNoAvailableDriver = errors.New("no available driver satisfies requirements")

// DriverPool is the storage collaborator the matcher selects from. Reserve
// must be an atomic check-and-set on the driver's availability: for any number
// of concurrent callers, exactly one gets true.
type DriverPool interface {
	ListAvailable(ctx context.Context) ([]driver.Driver, error)
	Reserve(ctx context.Context, id types.ID) (bool, error)
	Release(ctx context.Context, id types.ID) error
}

type Matcher struct {
	pool DriverPool
}

func NewMatcher(pool DriverPool) *Matcher {
	return &Matcher{pool: pool}
}

func (m *Matcher) Pool() DriverPool { return m.pool }

// Assign picks the first available driver, in registration order, whose
// vehicle capabilities cover every required capability, and reserves it. A
// candidate that was snatched by a concurrent assignment between the list and
// the reserve is skipped, not retried.
func (m *Matcher) Assign(ctx context.Context, required driver.CapabilitySet) (*driver.Driver, error) {
	candidates, err := m.pool.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		d := &candidates[i]
		if !d.Capabilities.HasAll(required) {
			continue
		}
		ok, err := m.pool.Reserve(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue // lost the race for this driver
		}
		d.Available = false
		return d, nil
	}
	return nil, ErrNoAvailableDriver
}
