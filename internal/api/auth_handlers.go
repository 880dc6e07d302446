package api

import (
	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-lnkgen/internal/api/handlers"
	"github.com/oszuidwest/zwfm-lnkgen/internal/auth"
	"github.com/oszuidwest/zwfm-lnkgen/internal/utils"
)

// GetCurrentCaller returns the principal and role of the authenticated key.
func GetCurrentCaller(c *gin.Context) {
	role, ok := auth.Role(c)
	if !ok {
		utils.ProblemAuthentication(c, "Authentication required")
		return
	}
	utils.Success(c, handlers.CallerResponse{Principal: auth.Principal(c), Role: role})
}
