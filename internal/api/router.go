// Package api wires the HTTP router for the lnkgen service.
package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oszuidwest/zwfm-lnkgen/internal/api/handlers"
	"github.com/oszuidwest/zwfm-lnkgen/internal/auth"
	"github.com/oszuidwest/zwfm-lnkgen/internal/config"
	"github.com/oszuidwest/zwfm-lnkgen/internal/services"
	"github.com/oszuidwest/zwfm-lnkgen/internal/utils"
	"github.com/oszuidwest/zwfm-lnkgen/pkg/version"
)

// SetupRouter configures and returns the main API router with all routes and middleware.
func SetupRouter(cfg *config.Config, scriptSvc *services.ScriptService, authService *auth.Service) *gin.Engine {
	h := handlers.NewHandlers(scriptSvc)

	// Set Gin mode based on environment
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(corsMiddleware(cfg))

	v1 := r.Group("/api/v1")
	v1.Use(authService.Middleware())
	{
		v1.GET("/session", GetCurrentCaller)

		v1.GET("/routes", authService.RequirePermission(auth.ResourceRoutes, auth.ActionRead), h.ListRoutes)
		v1.GET("/routes/:route", authService.RequirePermission(auth.ResourceRoutes, auth.ActionRead), h.GetRoute)

		v1.GET("/scripts", authService.RequirePermission(auth.ResourceScripts, auth.ActionRead), h.ListScripts)
		v1.GET("/scripts/:id", authService.RequirePermission(auth.ResourceScripts, auth.ActionRead), h.GetScript)
		v1.GET("/scripts/:id/xml", authService.RequirePermission(auth.ResourceScripts, auth.ActionRead), h.GetScriptXML)
		v1.POST("/scripts", authService.RequirePermission(auth.ResourceScripts, auth.ActionGenerate), h.CreateScript)
		v1.DELETE("/scripts", authService.RequirePermission(auth.ResourceScripts, auth.ActionPurge), h.PurgeScripts)

		v1.POST("/batches", authService.RequirePermission(auth.ResourceBatches, auth.ActionGenerate), h.CreateBatch)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, handlers.HealthResponse{
			Status:  "ok",
			Service: "lnkgen-api",
			Version: version.Version,
		})
	})

	return r
}

// HeaderRequestID carries the trace ID echoed on every response and in problem bodies.
const HeaderRequestID = "X-Request-ID"

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(utils.TraceIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// If no allowed origins are configured, disable CORS (secure by default)
		if cfg.Server.AllowedOrigins == "" {
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}
			c.Next()
			return
		}

		// Check if the origin is in the allowed list
		if isAllowedOrigin(origin, cfg.Server.AllowedOrigins) {
			// Delete any existing CORS headers that might be set by proxies
			c.Writer.Header().Del("Access-Control-Allow-Origin")
			c.Writer.Header().Del("Access-Control-Allow-Headers")
			c.Writer.Header().Del("Access-Control-Allow-Methods")

			// Set our CORS headers
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-API-Key, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// isAllowedOrigin checks if the origin is in the comma-separated list of allowed origins
func isAllowedOrigin(origin string, allowedOrigins string) bool {
	if origin == "" {
		return false
	}

	for allowed := range strings.SplitSeq(allowedOrigins, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}
	return false
}
