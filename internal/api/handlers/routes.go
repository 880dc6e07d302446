package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-lnkgen/internal/utils"
)

// ListRoutes returns every known route with its clock source.
func (h *Handlers) ListRoutes(c *gin.Context) {
	utils.Success(c, RouteListResponse{Data: h.scriptSvc.Routes()})
}

// GetRoute returns a single route.
func (h *Handlers) GetRoute(c *gin.Context) {
	number, ok := utils.GetIntParam(c, "route")
	if !ok {
		return
	}
	info, err := h.scriptSvc.Route(number)
	if err != nil {
		handleServiceError(c, err, "Route")
		return
	}
	utils.Success(c, info)
}
