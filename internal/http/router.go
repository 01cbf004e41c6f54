// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"accessride/internal/http/handlers"
	"accessride/internal/http/middleware"
	"accessride/internal/modules/ride"
)

func NewRouter(rideService *ride.Service) http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	rideHandler := handlers.NewRideHandler(rideService)
	r.POST("/api/rides", rideHandler.Schedule)
	r.GET("/api/rides/:id", rideHandler.Get)
	r.POST("/api/rides/:id/cancel", rideHandler.Cancel)
	r.GET("/api/riders/:id/rides", rideHandler.ListByRider)
	r.GET("/api/analytics", rideHandler.Stats)

	driverHandler := handlers.NewDriverHandler(rideService)
	r.POST("/api/drivers/:id/start", driverHandler.Start)
	r.POST("/api/drivers/:id/complete", driverHandler.Complete)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
