package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/campus-records-service/internal/services"
	"github.com/SAP-F-2025/campus-records-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	BaseHandler
	service services.ExportService
}

func NewExportHandler(service services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ExportStudents
// @Summary Export students as XLSX
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 500 {object} ErrorResponse
// @Router /exports/students.xlsx [get]
func (h *ExportHandler) ExportStudents(c *gin.Context) {
	h.export(c, "students.xlsx", h.service.ExportStudents)
}

// ExportProfessors
// @Summary Export professors as XLSX
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 500 {object} ErrorResponse
// @Router /exports/professors.xlsx [get]
func (h *ExportHandler) ExportProfessors(c *gin.Context) {
	h.export(c, "professors.xlsx", h.service.ExportProfessors)
}

// export buffers the workbook so a failure can still produce a JSON error
func (h *ExportHandler) export(c *gin.Context, filename string, write func(context.Context, io.Writer) error) {
	h.LogRequest(c, "Exporting workbook", "file", filename)

	var buf bytes.Buffer
	if err := write(c.Request.Context(), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
