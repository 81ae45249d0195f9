package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/service"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
	"github.com/noah-isme/camp-ops-api/pkg/response"
)

// CatalogHandler exposes the organization resource catalog: activities,
// facilities, staff, constraints, and day templates.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs the catalog handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) organizationID(c *gin.Context) string {
	if org := c.Query("organizationId"); org != "" {
		return org
	}
	if claims := claimsFromContext(c); claims != nil {
		return claims.OrganizationID
	}
	return ""
}

// CreateActivity godoc
// @Summary Register an activity
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities [post]
func (h *CatalogHandler) CreateActivity(c *gin.Context) {
	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}
	activity, err := h.catalog.CreateActivity(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// ListActivities godoc
// @Summary List the activity catalog
// @Tags Catalog
// @Produce json
// @Param organizationId query string false "Organization (defaults to token scope)"
// @Param active query bool false "Only active entries"
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *CatalogHandler) ListActivities(c *gin.Context) {
	activities, err := h.catalog.ListActivities(c.Request.Context(), h.organizationID(c), c.Query("active") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities, nil)
}

// UpdateActivity godoc
// @Summary Edit an activity
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Activity ID"
// @Param payload body dto.UpdateActivityRequest true "Activity payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [put]
func (h *CatalogHandler) UpdateActivity(c *gin.Context) {
	var req dto.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}
	activity, err := h.catalog.UpdateActivity(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// CreateFacility godoc
// @Summary Register a facility
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateFacilityRequest true "Facility payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /facilities [post]
func (h *CatalogHandler) CreateFacility(c *gin.Context) {
	var req dto.CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid facility payload"))
		return
	}
	facility, err := h.catalog.CreateFacility(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, facility)
}

// ListFacilities godoc
// @Summary List facilities
// @Tags Catalog
// @Produce json
// @Param organizationId query string false "Organization (defaults to token scope)"
// @Param active query bool false "Only active entries"
// @Success 200 {object} response.Envelope
// @Router /facilities [get]
func (h *CatalogHandler) ListFacilities(c *gin.Context) {
	facilities, err := h.catalog.ListFacilities(c.Request.Context(), h.organizationID(c), c.Query("active") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, facilities, nil)
}

// UpdateFacility godoc
// @Summary Edit a facility
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Facility ID"
// @Param payload body dto.UpdateFacilityRequest true "Facility payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /facilities/{id} [put]
func (h *CatalogHandler) UpdateFacility(c *gin.Context) {
	var req dto.UpdateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid facility payload"))
		return
	}
	facility, err := h.catalog.UpdateFacility(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, facility, nil)
}

// CreateStaff godoc
// @Summary Register a staff member
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateStaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /staff [post]
func (h *CatalogHandler) CreateStaff(c *gin.Context) {
	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff payload"))
		return
	}
	member, err := h.catalog.CreateStaff(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// ListStaff godoc
// @Summary List staff
// @Tags Catalog
// @Produce json
// @Param organizationId query string false "Organization (defaults to token scope)"
// @Param active query bool false "Only active entries"
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *CatalogHandler) ListStaff(c *gin.Context) {
	staff, err := h.catalog.ListStaff(c.Request.Context(), h.organizationID(c), c.Query("active") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, nil)
}

// UpdateStaff godoc
// @Summary Edit a staff member
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Staff ID"
// @Param payload body dto.UpdateStaffRequest true "Staff payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /staff/{id} [put]
func (h *CatalogHandler) UpdateStaff(c *gin.Context) {
	var req dto.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff payload"))
		return
	}
	member, err := h.catalog.UpdateStaff(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// CreateConstraint godoc
// @Summary Register a scheduling constraint
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateConstraintRequest true "Constraint payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /constraints [post]
func (h *CatalogHandler) CreateConstraint(c *gin.Context) {
	var req dto.CreateConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid constraint payload"))
		return
	}
	constraint, err := h.catalog.CreateConstraint(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, constraint)
}

// ListConstraints godoc
// @Summary List scheduling constraints
// @Description Organization-wide constraints plus those scoped to the given session
// @Tags Catalog
// @Produce json
// @Param organizationId query string false "Organization (defaults to token scope)"
// @Param sessionId query string false "Include constraints scoped to this session"
// @Success 200 {object} response.Envelope
// @Router /constraints [get]
func (h *CatalogHandler) ListConstraints(c *gin.Context) {
	constraints, err := h.catalog.ListConstraints(c.Request.Context(), h.organizationID(c), c.Query("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraints, nil)
}

// UpdateConstraint godoc
// @Summary Edit a constraint
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Constraint ID"
// @Param payload body dto.UpdateConstraintRequest true "Constraint payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /constraints/{id} [put]
func (h *CatalogHandler) UpdateConstraint(c *gin.Context) {
	var req dto.UpdateConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid constraint payload"))
		return
	}
	constraint, err := h.catalog.UpdateConstraint(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraint, nil)
}

// DeleteConstraint godoc
// @Summary Remove a constraint
// @Tags Catalog
// @Param id path string true "Constraint ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /constraints/{id} [delete]
func (h *CatalogHandler) DeleteConstraint(c *gin.Context) {
	if err := h.catalog.DeleteConstraint(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateDayTemplate godoc
// @Summary Register a day template
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateDayTemplateRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /day-templates [post]
func (h *CatalogHandler) CreateDayTemplate(c *gin.Context) {
	var req dto.CreateDayTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid day template payload"))
		return
	}
	template, err := h.catalog.CreateDayTemplate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, template)
}

// GetDayTemplate godoc
// @Summary Get a day template with its ranges
// @Tags Catalog
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /day-templates/{id} [get]
func (h *CatalogHandler) GetDayTemplate(c *gin.Context) {
	template, err := h.catalog.GetDayTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template, nil)
}

// ListDayTemplates godoc
// @Summary List day templates
// @Tags Catalog
// @Produce json
// @Param organizationId query string false "Organization (defaults to token scope)"
// @Success 200 {object} response.Envelope
// @Router /day-templates [get]
func (h *CatalogHandler) ListDayTemplates(c *gin.Context) {
	templates, err := h.catalog.ListDayTemplates(c.Request.Context(), h.organizationID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, nil)
}

// DeleteDayTemplate godoc
// @Summary Remove a day template
// @Tags Catalog
// @Param id path string true "Template ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /day-templates/{id} [delete]
func (h *CatalogHandler) DeleteDayTemplate(c *gin.Context) {
	if err := h.catalog.DeleteDayTemplate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
