package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xuanji/bazi-backend/internal/services"
)

type DezhuHandler struct {
	svc services.DezhuService
}

func NewDezhuHandler(svc services.DezhuService) *DezhuHandler {
	return &DezhuHandler{svc: svc}
}

type computeDezhuBody struct {
	RulesetID string `json:"ruleset_id"`
}

// POST /api/charts/:id/dezhu
func (h *DezhuHandler) Compute(c *gin.Context) {
	chartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}

	// The body is optional; an empty body means the default ruleset.
	var body computeDezhuBody
	if err := c.ShouldBindJSON(&body); err != nil && err != io.EOF {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}

	result, err := h.svc.Compute(c.Request.Context(), services.DezhuComputeRequest{
		ChartID:   chartID,
		RulesetID: body.RulesetID,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/charts/:id/dezhu
func (h *DezhuHandler) Get(c *gin.Context) {
	chartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}

	result, err := h.svc.Get(c.Request.Context(), chartID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
