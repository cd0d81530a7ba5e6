package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/response"
)

type conflictService interface {
	Scan(ctx context.Context, req dto.ScanConflictsRequest) (*dto.ScanConflictsResponse, error)
	List(ctx context.Context, query dto.ConflictQuery) (*dto.ConflictListResponse, error)
	Resolve(ctx context.Context, scope models.Scope, id string) error
}

// ConflictHandler exposes conflict detection endpoints.
type ConflictHandler struct {
	conflicts conflictService
}

// NewConflictHandler builds a new handler.
func NewConflictHandler(conflicts conflictService) *ConflictHandler {
	return &ConflictHandler{conflicts: conflicts}
}

// Scan godoc
// @Summary Run a conflict scan over a scope's published timetable
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param payload body dto.ScanConflictsRequest true "Scan payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /conflicts/scan [post]
func (h *ConflictHandler) Scan(c *gin.Context) {
	var req dto.ScanConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scan payload"))
		return
	}
	result, err := h.conflicts.Scan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Queued {
		response.JSON(c, http.StatusAccepted, result, nil)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List stored conflicts for a scope
// @Tags Conflicts
// @Produce json
// @Param departmentId query string true "Department ID"
// @Param semesterId query string true "Semester ID"
// @Param sectionId query string true "Section ID"
// @Param status query string false "Filter by status (open or resolved)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /conflicts [get]
func (h *ConflictHandler) List(c *gin.Context) {
	var query dto.ConflictQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict query"))
		return
	}
	result, err := h.conflicts.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Resolve godoc
// @Summary Mark a conflict as resolved
// @Tags Conflicts
// @Produce json
// @Param id path string true "Conflict ID"
// @Param departmentId query string false "Department ID"
// @Param semesterId query string false "Semester ID"
// @Param sectionId query string false "Section ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /conflicts/{id}/resolve [post]
func (h *ConflictHandler) Resolve(c *gin.Context) {
	scope := models.Scope{
		DepartmentID: c.Query("departmentId"),
		SemesterID:   c.Query("semesterId"),
		SectionID:    c.Query("sectionId"),
	}
	if err := h.conflicts.Resolve(c.Request.Context(), scope, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
