package handlers

import (
	"github.com/oszuidwest/zwfm-lnkgen/internal/models"
	"github.com/oszuidwest/zwfm-lnkgen/internal/services"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// RouteListResponse lists the route registry.
type RouteListResponse struct {
	Data []services.RouteInfo `json:"data"`
}

// ScriptResponse is an archived script including its XML.
type ScriptResponse struct {
	models.RouteScript
	XML string `json:"xml"`
}

// PurgeResponse reports how many archived scripts were deleted.
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// CallerResponse describes the authenticated client.
type CallerResponse struct {
	Principal string `json:"principal"`
	Role      string `json:"role"`
}
