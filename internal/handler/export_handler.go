package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/service"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, query dto.TimetableQuery, format string) (*service.ExportFile, error)
}

// ExportHandler serves timetable downloads.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export godoc
// @Summary Download the published timetable of a scope
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param departmentId query string true "Department ID"
// @Param semesterId query string true "Semester ID"
// @Param sectionId query string true "Section ID"
// @Param format query string false "Export format (csv or pdf, default csv)"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /timetable/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.exports.Export(c.Request.Context(), query, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
