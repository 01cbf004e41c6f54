// README: Google Maps Directions client implementing the routing provider.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"accessride/internal/routing"
)

// RouteService handles interactions with the Google Maps Directions API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a RouteService with the given API key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Directions requests a driving route and maps the first leg onto the
// planner's Route shape. Any API error or empty result is a provider failure;
// the caller falls back to the internal graph.
func (s *RouteService) Directions(ctx context.Context, origin, destination string) (routing.Route, error) {
	req := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, req)
	if err != nil {
		return routing.Route{}, fmt.Errorf("%w: %v", routing.ErrRouteProvider, err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return routing.Route{}, fmt.Errorf("%w: no route found", routing.ErrRouteProvider)
	}

	leg := routes[0].Legs[0]
	steps := make([]string, 0, len(leg.Steps))
	for _, st := range leg.Steps {
		steps = append(steps, st.HTMLInstructions)
	}

	return routing.Route{
		DistanceKm:  float64(leg.Distance.Meters) / 1000.0,
		DurationMin: int(leg.Duration.Minutes()),
		Steps:       steps,
	}, nil
}
