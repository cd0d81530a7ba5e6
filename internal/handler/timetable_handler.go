package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/response"
)

type generatorService interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
}

type timetableService interface {
	Get(ctx context.Context, query dto.TimetableQuery) (*dto.TimetableView, error)
	Versions(ctx context.Context, query dto.TimetableQuery) (*dto.VersionListResponse, error)
	Replace(ctx context.Context, req dto.ReplaceTimetableRequest) (*dto.TimetableView, error)
}

// TimetableHandler exposes generation and timetable endpoints.
type TimetableHandler struct {
	generator  generatorService
	timetables timetableService
}

// NewTimetableHandler builds a new handler.
func NewTimetableHandler(generator generatorService, timetables timetableService) *TimetableHandler {
	return &TimetableHandler{generator: generator, timetables: timetables}
}

// Generate godoc
// @Summary Generate a timetable for a scope
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	// infeasible runs are still 200; the payload's status field discriminates
	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Get the published timetable of a scope
// @Tags Timetable
// @Produce json
// @Param departmentId query string true "Department ID"
// @Param semesterId query string true "Semester ID"
// @Param sectionId query string true "Section ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable query"))
		return
	}
	view, err := h.timetables.Get(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Versions godoc
// @Summary List the publication history of a scope
// @Tags Timetable
// @Produce json
// @Param departmentId query string true "Department ID"
// @Param semesterId query string true "Semester ID"
// @Param sectionId query string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/versions [get]
func (h *TimetableHandler) Versions(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable query"))
		return
	}
	history, err := h.timetables.Versions(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// Replace godoc
// @Summary Publish a manually edited timetable
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceTimetableRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetable [put]
func (h *TimetableHandler) Replace(c *gin.Context) {
	var req dto.ReplaceTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	view, err := h.timetables.Replace(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
