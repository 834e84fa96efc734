package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xuanji/bazi-backend/internal/services"
)

type KexieHandler struct {
	svc services.KexieService
}

func NewKexieHandler(svc services.KexieService) *KexieHandler {
	return &KexieHandler{svc: svc}
}

type computeKexieBody struct {
	RulesetID   string                      `json:"ruleset_id"`
	Combination *services.CombinationSignal `json:"combination"`
}

// POST /api/charts/:id/kexie
func (h *KexieHandler) Compute(c *gin.Context) {
	chartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}

	var body computeKexieBody
	if err := c.ShouldBindJSON(&body); err != nil && err != io.EOF {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}

	result, err := h.svc.Compute(c.Request.Context(), services.KexieComputeRequest{
		ChartID:     chartID,
		RulesetID:   body.RulesetID,
		Combination: body.Combination,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/charts/:id/kexie
func (h *KexieHandler) Get(c *gin.Context) {
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
