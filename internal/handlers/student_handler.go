package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/campus-records-service/internal/services"
	"github.com/SAP-F-2025/campus-records-service/internal/utils"
	"github.com/SAP-F-2025/campus-records-service/internal/validator"
)

type StudentHandler struct {
	BaseHandler
	service services.StudentService
}

func NewStudentHandler(service services.StudentService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// StudentUpdatedResponse wraps the updated record
type StudentUpdatedResponse struct {
	Message string                    `json:"message"`
	Student *services.StudentResponse `json:"student"`
}

// ===== STUDENT ENDPOINTS =====

// ListStudents returns the student projection
// @Summary List students
// @Tags students
// @Produce json
// @Success 200 {array} services.StudentSummary
// @Failure 500 {object} ErrorResponse
// @Router /students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

// ListStudentsEnriched returns students with their proctor and library membership embedded
// @Summary List students with relations
// @Tags students
// @Produce json
// @Success 200 {array} services.StudentResponse
// @Failure 500 {object} ErrorResponse
// @Router /students/enriched [get]
func (h *StudentHandler) ListStudentsEnriched(c *gin.Context) {
	students, err := h.service.ListEnriched(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

// GetStudent
// @Summary Get student
// @Tags students
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} services.StudentResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/{studentId} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.service.GetByID(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// CreateStudent creates a student, optionally with an inline library membership
// @Summary Create student
// @Tags students
// @Accept json
// @Produce json
// @Param student body validator.StudentCreateRequest true "Student data"
// @Success 201 {object} services.StudentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /students [post]
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req validator.StudentCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating student", "proctor_id", req.ProctorID)

	student, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, student)
}

// UpdateStudent applies a partial update; serves both PATCH and PUT
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param student body validator.StudentUpdateRequest true "Fields to change"
// @Success 200 {object} StudentUpdatedResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/{studentId} [patch]
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id := c.Param("studentId")

	var req validator.StudentUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating student", "student_id", id)

	student, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, StudentUpdatedResponse{
		Message: "Student updated successfully",
		Student: student,
	})
}

// DeleteStudent removes a student and its library membership
// @Summary Delete student
// @Tags students
// @Param studentId path string true "Student ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/{studentId} [delete]
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id := c.Param("studentId")
	h.LogRequest(c, "Deleting student", "student_id", id)

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Student deleted successfully"})
}
