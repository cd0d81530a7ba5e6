package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/response"
)

type preferenceService interface {
	Get(ctx context.Context, facultyID string) (*dto.PreferenceGridResponse, error)
	Replace(ctx context.Context, facultyID string, req dto.ReplacePreferencesRequest) (*dto.PreferenceGridResponse, error)
}

// PreferenceHandler exposes faculty availability grid endpoints.
type PreferenceHandler struct {
	preferences preferenceService
}

// NewPreferenceHandler builds a new handler.
func NewPreferenceHandler(preferences preferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences}
}

// Get godoc
// @Summary Get a faculty member's availability grid
// @Tags Preferences
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{id}/preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	grid, err := h.preferences.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Replace godoc
// @Summary Replace a faculty member's availability grid
// @Tags Preferences
// @Accept json
// @Produce json
// @Param id path string true "Faculty ID"
// @Param payload body dto.ReplacePreferencesRequest true "Preference cells"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{id}/preferences [put]
func (h *PreferenceHandler) Replace(c *gin.Context) {
	var req dto.ReplacePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preferences payload"))
		return
	}
	grid, err := h.preferences.Replace(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}
