package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/campus-records-service/internal/services"
	"github.com/SAP-F-2025/campus-records-service/internal/utils"
	"github.com/SAP-F-2025/campus-records-service/internal/validator"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// MessageResponse acknowledges a mutation
type MessageResponse struct {
	Message string `json:"message"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.FromContext(c.Request.Context(), h.logger)
}

// LogRequest logs an incoming operation with the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	h.requestLogger(c).Info(msg, append(args, "method", c.Request.Method, "path", c.Request.URL.Path)...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	h.requestLogger(c).Error(msg, append(args, "error", err, "path", c.Request.URL.Path)...)
}

// bindJSON decodes the body and answers 400 on malformed input.
// Decoder errors name Go types, so they are logged and never returned.
func (h *BaseHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.requestLogger(c).Warn("Rejected request payload", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"})
		return false
	}
	return true
}

// handleServiceError maps the service error taxonomy onto status codes.
// Store failures are logged and answered with a generic message.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Student not found"})
	case errors.Is(err, services.ErrProfessorNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Professor not found"})
	case errors.Is(err, services.ErrMembershipNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Library membership not found"})
	case errors.Is(err, services.ErrStudentExists):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Student already exists"})
	case errors.Is(err, services.ErrProfessorExists):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Professor already exists"})
	case errors.Is(err, services.ErrMembershipExists):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Library membership already exists"})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}
