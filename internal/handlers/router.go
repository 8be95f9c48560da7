package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/campus-records-service/internal/metrics"
	"github.com/SAP-F-2025/campus-records-service/internal/services"
	"github.com/SAP-F-2025/campus-records-service/internal/utils"
)

const serviceName = "campus-records-service"

type HandlerManager struct {
	studentHandler           *StudentHandler
	professorHandler         *ProfessorHandler
	libraryMembershipHandler *LibraryMembershipHandler
	exportHandler            *ExportHandler

	serviceManager services.ServiceManager
	metrics        *metrics.Metrics
	logger         utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	m *metrics.Metrics,
) *HandlerManager {
	return &HandlerManager{
		studentHandler:           NewStudentHandler(serviceManager.Student(), logger),
		professorHandler:         NewProfessorHandler(serviceManager.Professor(), logger),
		libraryMembershipHandler: NewLibraryMembershipHandler(serviceManager.LibraryMembership(), logger),
		exportHandler:            NewExportHandler(serviceManager.Export(), logger),
		serviceManager:           serviceManager,
		metrics:                  m,
		logger:                   logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Student routes
	students := router.Group("/students")
	{
		students.GET("", hm.studentHandler.ListStudents)
		students.GET("/enriched", hm.studentHandler.ListStudentsEnriched)
		students.POST("", hm.studentHandler.CreateStudent)
		students.GET("/:studentId", hm.studentHandler.GetStudent)
		students.PATCH("/:studentId", hm.studentHandler.UpdateStudent)
		students.PUT("/:studentId", hm.studentHandler.UpdateStudent)
		students.DELETE("/:studentId", hm.studentHandler.DeleteStudent)

		// Library membership, one per student
		students.GET("/:studentId/library-membership", hm.libraryMembershipHandler.GetMembership)
		students.POST("/:studentId/library-membership", hm.libraryMembershipHandler.CreateMembership)
		students.PATCH("/:studentId/library-membership", hm.libraryMembershipHandler.UpdateMembership)
		students.PUT("/:studentId/library-membership", hm.libraryMembershipHandler.UpdateMembership)
		students.DELETE("/:studentId/library-membership", hm.libraryMembershipHandler.DeleteMembership)
	}

	// Professor routes
	professors := router.Group("/professors")
	{
		professors.GET("", hm.professorHandler.ListProfessors)
		professors.POST("", hm.professorHandler.CreateProfessor)
		professors.GET("/:professorId", hm.professorHandler.GetProfessor)
		professors.PATCH("/:professorId", hm.professorHandler.UpdateProfessor)
		professors.PUT("/:professorId", hm.professorHandler.UpdateProfessor)
		professors.DELETE("/:professorId", hm.professorHandler.DeleteProfessor)

		// Proctorships
		professors.GET("/:professorId/proctorships", hm.professorHandler.GetProctorships)
		professors.POST("/:professorId/proctorships", hm.professorHandler.AssignProctor)
	}

	exports := router.Group("/exports")
	{
		exports.GET("/students.xlsx", hm.exportHandler.ExportStudents)
		exports.GET("/professors.xlsx", hm.exportHandler.ExportProfessors)
	}

	if hm.metrics != nil {
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}

	// Health check endpoint
	router.GET("/health", hm.health)
}

func (hm *HandlerManager) health(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		utils.FromContext(c.Request.Context(), hm.logger).Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
