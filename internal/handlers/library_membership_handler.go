package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/campus-records-service/internal/services"
	"github.com/SAP-F-2025/campus-records-service/internal/utils"
	"github.com/SAP-F-2025/campus-records-service/internal/validator"
)

// LibraryMembershipHandler serves the membership nested under a student
type LibraryMembershipHandler struct {
	BaseHandler
	service services.LibraryMembershipService
}

func NewLibraryMembershipHandler(service services.LibraryMembershipService, logger utils.Logger) *LibraryMembershipHandler {
	return &LibraryMembershipHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetMembership
// @Summary Get library membership
// @Tags library-memberships
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} models.LibraryMembership
// @Failure 404 {object} ErrorResponse
// @Router /students/{studentId}/library-membership [get]
func (h *LibraryMembershipHandler) GetMembership(c *gin.Context) {
	membership, err := h.service.Get(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, membership)
}

// CreateMembership
// @Summary Create library membership
// @Tags library-memberships
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param membership body validator.LibraryMembershipCreateRequest true "Membership window"
// @Success 201 {object} models.LibraryMembership
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/{studentId}/library-membership [post]
func (h *LibraryMembershipHandler) CreateMembership(c *gin.Context) {
	studentID := c.Param("studentId")

	var req validator.LibraryMembershipCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating library membership", "student_id", studentID)

	membership, err := h.service.Create(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, membership)
}

// UpdateMembership changes the supplied dates; omitted ones keep their value
// @Summary Update library membership
// @Tags library-memberships
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param membership body validator.LibraryMembershipUpdateRequest true "Dates to change"
// @Success 200 {object} models.LibraryMembership
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/{studentId}/library-membership [patch]
func (h *LibraryMembershipHandler) UpdateMembership(c *gin.Context) {
	studentID := c.Param("studentId")

	var req validator.LibraryMembershipUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating library membership", "student_id", studentID)

	membership, err := h.service.Update(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, membership)
}

// DeleteMembership
// @Summary Delete library membership
// @Tags library-memberships
// @Param studentId path string true "Student ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/{studentId}/library-membership [delete]
func (h *LibraryMembershipHandler) DeleteMembership(c *gin.Context) {
	studentID := c.Param("studentId")
	h.LogRequest(c, "Deleting library membership", "student_id", studentID)

	if err := h.service.Delete(c.Request.Context(), studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Library membership deleted successfully"})
}
