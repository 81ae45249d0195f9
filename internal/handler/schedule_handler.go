package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/service"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
	"github.com/noah-isme/camp-ops-api/pkg/response"
)

// ScheduleHandler exposes grid construction, solving, manual edits, and
// conflict detection for one session.
type ScheduleHandler struct {
	schedule *service.ScheduleService
}

// NewScheduleHandler constructs the schedule handler.
func NewScheduleHandler(schedule *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// BuildGrid godoc
// @Summary Build the empty slot grid
// @Description Expand a day template across the session date span into empty schedule slots
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.BuildGridRequest true "Grid build payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sessions/{id}/schedule/grid [post]
func (h *ScheduleHandler) BuildGrid(c *gin.Context) {
	var req dto.BuildGridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grid payload"))
		return
	}
	result, err := h.schedule.BuildGrid(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AutoSchedule godoc
// @Summary Run the assignment solver
// @Description Fill empty slots with activity, facility, and staff assignments; unfillable slots are reported, not errors
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.AutoScheduleRequest false "Solver options"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sessions/{id}/schedule/auto [post]
func (h *ScheduleHandler) AutoSchedule(c *gin.Context) {
	var req dto.AutoScheduleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid solver payload"))
			return
		}
	}
	result, err := h.schedule.AutoSchedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListSlots godoc
// @Summary List schedule slots
// @Description List the session grid, optionally filtered by date, group, or facility
// @Tags Schedule
// @Produce json
// @Param id path string true "Session ID"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param groupId query string false "Filter by group"
// @Param facilityId query string false "Filter by facility"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/schedule [get]
func (h *ScheduleHandler) ListSlots(c *gin.Context) {
	var filter dto.SlotFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot filter"))
		return
	}
	slots, err := h.schedule.ListSlots(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// UpdateSlot godoc
// @Summary Edit one slot manually
// @Description Set or clear the assignment on a slot; hard constraint violations are rejected
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param slotId path string true "Slot ID"
// @Param payload body dto.UpdateSlotRequest true "Slot assignment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/schedule/slots/{slotId} [put]
func (h *ScheduleHandler) UpdateSlot(c *gin.Context) {
	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	slot, err := h.schedule.UpdateSlot(c.Request.Context(), c.Param("id"), c.Param("slotId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Conflicts godoc
// @Summary Detect schedule conflicts
// @Description Run the conflict detector over the current grid and return the full report
// @Tags Schedule
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sessions/{id}/schedule/conflicts [get]
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	report, err := h.schedule.DetectConflicts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
