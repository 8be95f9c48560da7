package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/campus-records-service/internal/models"
	"github.com/SAP-F-2025/campus-records-service/internal/services"
	"github.com/SAP-F-2025/campus-records-service/internal/utils"
	"github.com/SAP-F-2025/campus-records-service/internal/validator"
)

type ProfessorHandler struct {
	BaseHandler
	service services.ProfessorService
}

func NewProfessorHandler(service services.ProfessorService, logger utils.Logger) *ProfessorHandler {
	return &ProfessorHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

type ProfessorUpdatedResponse struct {
	Message   string            `json:"message"`
	Professor *models.Professor `json:"professor"`
}

// ListProfessors
// @Summary List professors
// @Tags professors
// @Produce json
// @Success 200 {array} models.Professor
// @Failure 500 {object} ErrorResponse
// @Router /professors [get]
func (h *ProfessorHandler) ListProfessors(c *gin.Context) {
	professors, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, professors)
}

// GetProfessor
// @Summary Get professor
// @Tags professors
// @Produce json
// @Param professorId path string true "Professor ID"
// @Success 200 {object} models.Professor
// @Failure 404 {object} ErrorResponse
// @Router /professors/{professorId} [get]
func (h *ProfessorHandler) GetProfessor(c *gin.Context) {
	professor, err := h.service.GetByID(c.Request.Context(), c.Param("professorId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, professor)
}

// CreateProfessor
// @Summary Create professor
// @Tags professors
// @Accept json
// @Produce json
// @Param professor body validator.ProfessorCreateRequest true "Professor data"
// @Success 201 {object} models.Professor
// @Failure 400 {object} ErrorResponse
// @Router /professors [post]
func (h *ProfessorHandler) CreateProfessor(c *gin.Context) {
	var req validator.ProfessorCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating professor")

	professor, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, professor)
}

// UpdateProfessor applies a partial update; serves both PATCH and PUT
// @Summary Update professor
// @Tags professors
// @Accept json
// @Produce json
// @Param professorId path string true "Professor ID"
// @Param professor body validator.ProfessorUpdateRequest true "Fields to change"
// @Success 200 {object} ProfessorUpdatedResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /professors/{professorId} [patch]
func (h *ProfessorHandler) UpdateProfessor(c *gin.Context) {
	id := c.Param("professorId")

	var req validator.ProfessorUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating professor", "professor_id", id)

	professor, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfessorUpdatedResponse{
		Message:   "Professor updated successfully",
		Professor: professor,
	})
}

// DeleteProfessor removes a professor; proctored students are unassigned
// @Summary Delete professor
// @Tags professors
// @Param professorId path string true "Professor ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /professors/{professorId} [delete]
func (h *ProfessorHandler) DeleteProfessor(c *gin.Context) {
	id := c.Param("professorId")
	h.LogRequest(c, "Deleting professor", "professor_id", id)

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Professor deleted successfully"})
}

// ===== PROCTORSHIP ENDPOINTS =====

// GetProctorships lists the students a professor proctors
// @Summary Get proctorships
// @Tags proctorships
// @Produce json
// @Param professorId path string true "Professor ID"
// @Success 200 {object} services.ProctorshipResponse
// @Failure 404 {object} ErrorResponse
// @Router /professors/{professorId}/proctorships [get]
func (h *ProfessorHandler) GetProctorships(c *gin.Context) {
	proctorships, err := h.service.GetProctorships(c.Request.Context(), c.Param("professorId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, proctorships)
}

// AssignProctor makes the professor the proctor of the student in the body
// @Summary Assign proctor
// @Tags proctorships
// @Accept json
// @Produce json
// @Param professorId path string true "Professor ID"
// @Param body body validator.AssignProctorRequest true "Student to assign"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /professors/{professorId}/proctorships [post]
func (h *ProfessorHandler) AssignProctor(c *gin.Context) {
	professorID := c.Param("professorId")

	var req validator.AssignProctorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Assigning proctor", "professor_id", professorID, "student_id", req.StudentID)

	if err := h.service.AssignProctor(c.Request.Context(), professorID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Proctor assigned successfully"})
}
