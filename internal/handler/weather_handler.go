package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/service"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
	"github.com/noah-isme/camp-ops-api/pkg/response"
)

// WeatherHandler exposes forecast impact checks and substitution application.
type WeatherHandler struct {
	schedule *service.ScheduleService
}

// NewWeatherHandler constructs the weather handler.
func NewWeatherHandler(schedule *service.ScheduleService) *WeatherHandler {
	return &WeatherHandler{schedule: schedule}
}

// Impact godoc
// @Summary Check weather impact
// @Description Evaluate a per-day forecast against the grid and propose substitutions for incompatible slots
// @Tags Weather
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.WeatherImpactRequest true "Forecast"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/weather/impact [post]
func (h *WeatherHandler) Impact(c *gin.Context) {
	var req dto.WeatherImpactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid forecast payload"))
		return
	}
	result, err := h.schedule.WeatherImpact(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ApplySubstitutions godoc
// @Summary Apply weather substitutions
// @Description Apply a selected subset of substitution proposals atomically; any invalid selection rejects the whole batch
// @Tags Weather
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.ApplySubstitutionsRequest true "Selected substitutions"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sessions/{id}/weather/substitutions [post]
func (h *WeatherHandler) ApplySubstitutions(c *gin.Context) {
	var req dto.ApplySubstitutionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid substitutions payload"))
		return
	}
	result, failures, err := h.schedule.ApplySubstitutions(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(failures) > 0 {
		response.JSON(c, http.StatusUnprocessableEntity, gin.H{"failures": failures}, nil)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
