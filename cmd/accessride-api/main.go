// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"accessride/internal/config"
	"accessride/internal/graph"
	httptransport "accessride/internal/http"
	"accessride/internal/infra"
	"accessride/internal/maps"
	"accessride/internal/modules/driver"
	"accessride/internal/modules/matching"
	"accessride/internal/modules/ride"
	"accessride/internal/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	var provider routing.Provider
	if cfg.Routing.MapsAPIKey != "" {
		routeService, err := maps.NewRouteService(cfg.Routing.MapsAPIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		provider = routeService
	} else {
		log.Print("ATS_MAPS_API_KEY not set; routing on internal graph only")
	}

	network := graph.DefaultNetwork()
	cache := routing.NewRedisCache(redisClient, cfg.Routing.CacheTTL)
	planner := routing.NewPlanner(provider, cache, network, cfg.Routing.Timeout)

	driverPool := driver.NewPgPool(dbPool)
	matcher := matching.NewMatcher(driverPool)

	rideStore := ride.NewPgStore(dbPool)
	rideSvc := ride.NewService(rideStore, planner, matcher)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: httptransport.NewRouter(rideSvc),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
