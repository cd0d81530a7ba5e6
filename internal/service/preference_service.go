package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
)

type facultyDirectory interface {
	FindFaculty(ctx context.Context, id string) (*models.Faculty, error)
	UpdateFacultyMaxHours(ctx context.Context, id string, maxHours int) error
}

// PreferenceService manages faculty availability grids. A replaced grid only
// affects future scheduling runs; published snapshots are left alone and a
// conflict scan will surface newly stale placements.
type PreferenceService struct {
	entities    facultyDirectory
	prefs       preferenceStore
	validator   *validator.Validate
	logger      *zap.Logger
	slotsPerDay int
}

// NewPreferenceService wires preference dependencies.
func NewPreferenceService(entities facultyDirectory, prefs preferenceStore, validate *validator.Validate, logger *zap.Logger, slotsPerDay int) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if slotsPerDay <= 0 {
		slotsPerDay = 7
	}
	return &PreferenceService{
		entities:    entities,
		prefs:       prefs,
		validator:   validate,
		logger:      logger,
		slotsPerDay: slotsPerDay,
	}
}

// Get returns the stored availability grid for one faculty member.
func (s *PreferenceService) Get(ctx context.Context, facultyID string) (*dto.PreferenceGridResponse, error) {
	if facultyID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "faculty id is required")
	}
	faculty, err := s.entities.FindFaculty(ctx, facultyID)
	if err != nil {
		return nil, notFoundOr(err, "faculty not found", "failed to load faculty")
	}

	prefs, err := s.prefs.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty preferences")
	}

	cells := make([]dto.PreferenceCell, 0, len(prefs))
	for _, pref := range prefs {
		cells = append(cells, dto.PreferenceCell{Day: pref.Day, Slot: pref.Slot, Kind: pref.Kind})
	}
	return &dto.PreferenceGridResponse{FacultyID: facultyID, MaxHours: faculty.MaxHours, Cells: cells}, nil
}

// Replace swaps the whole grid for one faculty member.
func (s *PreferenceService) Replace(ctx context.Context, facultyID string, req dto.ReplacePreferencesRequest) (*dto.PreferenceGridResponse, error) {
	if facultyID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "faculty id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}
	faculty, err := s.entities.FindFaculty(ctx, facultyID)
	if err != nil {
		return nil, notFoundOr(err, "faculty not found", "failed to load faculty")
	}

	seen := make(map[[2]int]bool, len(req.Cells))
	prefs := make([]models.Preference, 0, len(req.Cells))
	for _, cell := range req.Cells {
		if cell.Slot > s.slotsPerDay {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("time slot %d is outside the teaching day", cell.Slot))
		}
		key := [2]int{cell.Day, cell.Slot}
		if seen[key] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate cell day %d slot %d", cell.Day, cell.Slot))
		}
		seen[key] = true
		prefs = append(prefs, models.Preference{
			FacultyID: facultyID,
			Day:       cell.Day,
			Slot:      cell.Slot,
			Kind:      cell.Kind,
		})
	}

	if err := s.prefs.ReplaceForFaculty(ctx, facultyID, prefs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store faculty preferences")
	}

	maxHours := faculty.MaxHours
	if req.MaxHours > 0 && req.MaxHours != faculty.MaxHours {
		if err := s.entities.UpdateFacultyMaxHours(ctx, facultyID, req.MaxHours); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty max hours")
		}
		maxHours = req.MaxHours
	}

	s.logger.Info("faculty preferences replaced", zap.String("faculty_id", facultyID), zap.Int("cells", len(prefs)))
	return &dto.PreferenceGridResponse{FacultyID: facultyID, MaxHours: maxHours, Cells: req.Cells}, nil
}
