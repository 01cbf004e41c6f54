// README: Route planning: external provider first, graph fallback second.
package routing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"accessride/internal/graph"
)

var (
	// ErrLocationNotFound means a pickup or dropoff name resolved to no
	// registered location during fallback planning.
	ErrLocationNotFound = errors.New("location not found in service area")
	// ErrNoRoute means both endpoints resolved but no path connects them.
	ErrNoRoute = errors.New("no route between locations")
	// ErrRouteProvider wraps any provider transport or non-OK failure.
	ErrRouteProvider = errors.New("route provider failed")
)

// kmPerMinute converts fallback travel minutes into kilometers. The graph has
// no real geometry, so the resulting distance is a documented approximation,
// not a measurement.
const kmPerMinute = 0.5

type Route struct {
	DistanceKm  float64  `json:"distance_km"`
	DurationMin int      `json:"duration_min"`
	Steps       []string `json:"steps"`
}

// Provider is the external routing collaborator. Implementations map any
// failure (transport error, non-OK status, empty result) to an error; the
// planner wraps it as ErrRouteProvider and falls back.
type Provider interface {
	Directions(ctx context.Context, origin, destination string) (Route, error)
}

// RouteCache fronts the provider. A nil cache and a failing cache behave the
// same: every lookup is a miss and stores are dropped.
type RouteCache interface {
	Get(ctx context.Context, origin, destination string) (Route, bool)
	Put(ctx context.Context, origin, destination string, r Route)
}

type Planner struct {
	provider Provider
	cache    RouteCache
	network  *graph.Network
	timeout  time.Duration
}

// NewPlanner builds a planner. provider and cache may be nil; network must not.
func NewPlanner(provider Provider, cache RouteCache, network *graph.Network, timeout time.Duration) *Planner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Planner{provider: provider, cache: cache, network: network, timeout: timeout}
}

// Plan resolves a pickup/dropoff pair into distance, duration, and directions.
// Exactly one provider attempt (bounded by the planner timeout), then exactly
// one fallback attempt, then failure. No retries.
func (p *Planner) Plan(ctx context.Context, pickup, dropoff string) (Route, error) {
	if p.provider != nil {
		if p.cache != nil {
			if r, ok := p.cache.Get(ctx, pickup, dropoff); ok {
				return r, nil
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		r, err := p.provider.Directions(callCtx, pickup, dropoff)
		cancel()
		if err == nil {
			if p.cache != nil {
				p.cache.Put(ctx, pickup, dropoff, r)
			}
			return r, nil
		}
		// Provider failure (including timeout) triggers the fallback below.
	}
	return p.planInternal(pickup, dropoff)
}

func (p *Planner) planInternal(pickup, dropoff string) (Route, error) {
	start, ok := p.network.FindNode(pickup)
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrLocationNotFound, pickup)
	}
	end, ok := p.network.FindNode(dropoff)
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrLocationNotFound, dropoff)
	}

	path, weight := p.network.ShortestPath(start, end)
	if math.IsInf(weight, 1) {
		return Route{}, fmt.Errorf("%w: %q -> %q", ErrNoRoute, pickup, dropoff)
	}

	minutes := p.network.PathTravelTime(path)
	steps := make([]string, 0, len(path))
	for i := 0; i+1 < len(path); i++ {
		from, _ := p.network.Node(path[i])
		to, _ := p.network.Node(path[i+1])
		steps = append(steps, fmt.Sprintf("Travel from %s to %s", from.Name, to.Name))
	}

	return Route{
		DistanceKm:  minutes * kmPerMinute,
		DurationMin: int(minutes),
		Steps:       steps,
	}, nil
}
