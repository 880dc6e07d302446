package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-lnkgen/internal/auth"
	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
	"github.com/oszuidwest/zwfm-lnkgen/internal/utils"
)

// BatchRequest lists the scripts of one batch.
type BatchRequest struct {
	Jobs []ScriptRequest `json:"jobs" binding:"required,min=1,max=64,dive"`
}

// CreateBatch generates every job of the batch. Jobs fail independently;
// the response lists the outcome of each.
func (h *Handlers) CreateBatch(c *gin.Context) {
	var req BatchRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	jobs := make([]swire.Request, 0, len(req.Jobs))
	for _, j := range req.Jobs {
		jobs = append(jobs, j.toRequest())
	}

	result, err := h.scriptSvc.GenerateBatch(c.Request.Context(), jobs, auth.Principal(c))
	if err != nil {
		handleServiceError(c, err, "Batch")
		return
	}

	status := http.StatusCreated
	if result.Succeeded() == 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}
