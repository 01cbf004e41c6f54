// README: Rider-facing handlers: schedule, list, get, cancel, analytics.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"accessride/internal/modules/driver"
	"accessride/internal/modules/ride"
	"accessride/internal/types"
)

type RideHandler struct {
	rides *ride.Service
}

func NewRideHandler(svc *ride.Service) *RideHandler {
	return &RideHandler{rides: svc}
}

type scheduleRideReq struct {
	RiderID       string    `json:"rider_id"`
	Pickup        string    `json:"pickup"`
	Dropoff       string    `json:"dropoff"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Requirements  []string  `json:"requirements"`
}

func (h *RideHandler) Schedule(c *gin.Context) {
	var req scheduleRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RiderID == "" || req.Pickup == "" || req.Dropoff == "" {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	r, err := h.rides.Schedule(c.Request.Context(), ride.ScheduleCommand{
		RiderID:       types.ID(req.RiderID),
		Pickup:        req.Pickup,
		Dropoff:       req.Dropoff,
		ScheduledTime: req.ScheduledTime,
		Requirements:  driver.FromStrings(req.Requirements),
	})
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *RideHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing ride id")
		return
	}
	r, err := h.rides.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *RideHandler) ListByRider(c *gin.Context) {
	riderID := c.Param("id")
	if riderID == "" {
		writeError(c, http.StatusBadRequest, "missing rider id")
		return
	}
	rides, err := h.rides.ListByRider(c.Request.Context(), types.ID(riderID))
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"rides": rides})
}

func (h *RideHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing ride id")
		return
	}
	err := h.rides.Cancel(c.Request.Context(), ride.CancelCommand{
		RideID:    types.ID(id),
		ActorType: "rider",
	})
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"ride_id": id, "status": ride.StatusCanceled})
}

func (h *RideHandler) Stats(c *gin.Context) {
	byPickup, byStatus, err := h.rides.Stats(c.Request.Context())
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"rides_by_pickup": byPickup,
		"rides_by_status": byStatus,
	})
}
