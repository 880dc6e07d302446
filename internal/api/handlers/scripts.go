package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-lnkgen/internal/auth"
	"github.com/oszuidwest/zwfm-lnkgen/internal/services"
	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
	"github.com/oszuidwest/zwfm-lnkgen/internal/utils"
)

const scriptsPath = "/api/v1/scripts"

// ScriptRequest selects the route and stream format of one script.
type ScriptRequest struct {
	Route        int     `json:"route" binding:"required,gt=0"`
	RxRate       int     `json:"rx_rate" binding:"required,stream_rate"`
	RxWordLength int     `json:"rx_word_length" binding:"required,word_length"`
	TxRate       int     `json:"tx_rate" binding:"required,stream_rate"`
	TxWordLength int     `json:"tx_word_length" binding:"required,word_length"`
	FrameSize    float64 `json:"frame_size" binding:"required,gt=0,lte=65535"`
}

func (r ScriptRequest) toRequest() swire.Request {
	return swire.Request{
		Route: r.Route,
		Format: swire.Format{
			RxRate:       swire.SampleRate(r.RxRate),
			RxWordLength: r.RxWordLength,
			TxRate:       swire.SampleRate(r.TxRate),
			TxWordLength: r.TxWordLength,
		},
		FrameSize: r.FrameSize,
	}
}

// CreateScript generates a script, archives it and returns it with its XML.
func (h *Handlers) CreateScript(c *gin.Context) {
	var req ScriptRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	script, err := h.scriptSvc.Generate(c.Request.Context(), req.toRequest(), auth.Principal(c))
	if err != nil {
		handleServiceError(c, err, "Script")
		return
	}
	utils.CreatedWithLocation(c, script.UUID, scriptsPath, ScriptResponse{RouteScript: *script, XML: script.Content})
}

// ListScripts returns archived scripts, newest first. Supports route and
// batch_id filters.
func (h *Handlers) ListScripts(c *gin.Context) {
	route, ok := utils.GetIntQuery(c, "route")
	if !ok {
		return
	}
	limit, offset := utils.GetPagination(c)

	result, err := h.scriptSvc.List(c.Request.Context(), services.ListParams{
		Route:   route,
		BatchID: c.Query("batch_id"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		handleServiceError(c, err, "Script")
		return
	}
	utils.PaginatedResponse(c, result.Scripts, result.Total, result.Limit, result.Offset)
}

// GetScript returns the metadata of one archived script.
func (h *Handlers) GetScript(c *gin.Context) {
	script, err := h.scriptSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Script")
		return
	}
	utils.Success(c, script)
}

// GetScriptXML serves the script document as a file download.
func (h *Handlers) GetScriptXML(c *gin.Context) {
	script, err := h.scriptSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Script")
		return
	}
	utils.Attachment(c, script.FileName, "application/xml; charset=utf-8", []byte(script.Content))
}

// PurgeScripts deletes archived scripts older than the older_than duration.
func (h *Handlers) PurgeScripts(c *gin.Context) {
	age, err := time.ParseDuration(c.Query("older_than"))
	if err != nil || age <= 0 {
		utils.ProblemBadRequest(c, fmt.Sprintf("older_than must be a positive duration such as 720h, got %q", c.Query("older_than")))
		return
	}

	n, err := h.scriptSvc.PurgeOlderThan(c.Request.Context(), time.Now().Add(-age))
	if err != nil {
		handleServiceError(c, err, "Script")
		return
	}
	utils.Success(c, PurgeResponse{Deleted: n})
}
