// README: Driver-facing handlers for starting and completing rides.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"accessride/internal/modules/ride"
	"accessride/internal/types"
)

type DriverHandler struct {
	rides *ride.Service
}

func NewDriverHandler(svc *ride.Service) *DriverHandler {
	return &DriverHandler{rides: svc}
}

func (h *DriverHandler) Start(c *gin.Context) {
	driverID := c.Param("id")
	if driverID == "" {
		writeError(c, http.StatusBadRequest, "missing driver id")
		return
	}
	r, err := h.rides.Start(c.Request.Context(), types.ID(driverID))
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *DriverHandler) Complete(c *gin.Context) {
	driverID := c.Param("id")
	if driverID == "" {
		writeError(c, http.StatusBadRequest, "missing driver id")
		return
	}
	r, err := h.rides.Complete(c.Request.Context(), types.ID(driverID))
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}
