// README: Ride aggregate, status definitions, and the lifecycle transition table.
package ride

import (
	"time"

	"accessride/internal/modules/driver"
	"accessride/internal/types"
)

type Status string

const (
	StatusNone       Status = "none" // pseudo-state for event logging only
	StatusPending    Status = "pending"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

// Ride is a rider's transport request through its whole lifecycle. A ride with
// no driver is always pending; a driver id implies the ride left pending.
// Rides are never deleted, only moved to a terminal status.
type Ride struct {
	ID            types.ID             `json:"id"`
	RiderID       types.ID             `json:"rider_id"`
	Pickup        string               `json:"pickup"`
	Dropoff       string               `json:"dropoff"`
	ScheduledTime time.Time            `json:"scheduled_time"`
	Requirements  driver.CapabilitySet `json:"requirements,omitempty"`
	Status        Status               `json:"status"`
	StatusVersion int                  `json:"status_version"`
	DriverID      *types.ID            `json:"driver_id,omitempty"`
	EstimatedMin  *int                 `json:"estimated_min,omitempty"`
	DistanceKm    *float64             `json:"distance_km,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// Event records one lifecycle transition for audit.
type Event struct {
	ID         int64
	RideID     types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string // "rider", "driver", "system"
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions is the ride state flow as code. pending and scheduled are
// entry states; completed and canceled are terminal and have no outgoing edges.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusScheduled, StatusCanceled},
	StatusScheduled:  {StatusInProgress, StatusCanceled},
	StatusInProgress: {StatusCompleted, StatusCanceled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status permits no further transitions.
func Terminal(s Status) bool {
	return len(AllowedTransitions[s]) == 0
}
