package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xuanji/bazi-backend/internal/services"
)

type DayunHandler struct {
	svc services.DayunService
}

func NewDayunHandler(svc services.DayunService) *DayunHandler {
	return &DayunHandler{svc: svc}
}

type computeDayunBody struct {
	Gender        string                 `json:"gender" binding:"required"`
	BirthDateTime time.Time              `json:"birth_date_time" binding:"required"`
	Cycles        int                    `json:"cycles"`
	Pillars       []services.PillarInput `json:"pillars"`
}

// POST /api/charts/:id/dayun
func (h *DayunHandler) Compute(c *gin.Context) {
	chartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}

	var body computeDayunBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}

	result, err := h.svc.Compute(c.Request.Context(), services.DayunComputeRequest{
		ChartID:       chartID,
		Gender:        body.Gender,
		BirthDateTime: body.BirthDateTime,
		Cycles:        body.Cycles,
		Pillars:       body.Pillars,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/charts/:id/dayun
func (h *DayunHandler) Get(c *gin.Context) {
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
