// README: Seeds sample drivers and rides for local development.
package main

import (
	"context"
	"log"
	"time"

	"accessride/internal/config"
	"accessride/internal/infra"
	"accessride/internal/modules/driver"
	"accessride/internal/modules/ride"
	"accessride/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	now := time.Now()
	pool := driver.NewPgPool(dbPool)
	drivers := []driver.Driver{
		{
			ID:           "driver1",
			Capabilities: driver.CapabilitySet{driver.CapWheelchairRamp},
			Capacity:     4,
			Available:    true,
			RegisteredAt: now,
		},
		{
			ID:           "driver2",
			Capabilities: nil, // plain sedan
			Capacity:     3,
			Available:    true,
			RegisteredAt: now.Add(time.Second),
		},
	}
	for i := range drivers {
		if err := pool.Create(ctx, &drivers[i]); err != nil {
			log.Fatalf("seed driver %s: %v", drivers[i].ID, err)
		}
	}

	store := ride.NewPgStore(dbPool)
	d1 := types.ID("driver1")
	est := 15
	dist := 7.5
	rides := []ride.Ride{
		{
			ID:            "ride_completed_1",
			RiderID:       "user1",
			Pickup:        "Home (123 Main St)",
			Dropoff:       "City General Hospital",
			ScheduledTime: now.Add(-24 * time.Hour),
			Requirements:  driver.CapabilitySet{driver.CapWheelchairRamp},
			Status:        ride.StatusCompleted,
			DriverID:      &d1,
			EstimatedMin:  &est,
			DistanceKm:    &dist,
			CreatedAt:     now.Add(-25 * time.Hour),
		},
		{
			ID:            "ride_scheduled_1",
			RiderID:       "user1",
			Pickup:        "City General Hospital",
			Dropoff:       "Home (123 Main St)",
			ScheduledTime: now.Add(2 * time.Hour),
			Requirements:  driver.CapabilitySet{driver.CapWheelchairRamp},
			Status:        ride.StatusScheduled,
			DriverID:      &d1,
			EstimatedMin:  &est,
			DistanceKm:    &dist,
			CreatedAt:     now,
		},
		{
			ID:            "ride_pending_1",
			RiderID:       "user2",
			Pickup:        "Senior Center",
			Dropoff:       "City Center Mall",
			ScheduledTime: now.Add(24 * time.Hour),
			Requirements:  driver.CapabilitySet{driver.CapWalkingAssistance},
			Status:        ride.StatusPending,
			CreatedAt:     now,
		},
	}
	for i := range rides {
		if err := store.Create(ctx, &rides[i]); err != nil {
			log.Fatalf("seed ride %s: %v", rides[i].ID, err)
		}
	}

	// driver1 carries the scheduled ride above, so it starts unavailable.
	if ok, err := pool.Reserve(ctx, d1); err != nil || !ok {
		log.Fatalf("reserve driver1: ok=%v err=%v", ok, err)
	}

	log.Printf("seeded %d drivers, %d rides", len(drivers), len(rides))
}
