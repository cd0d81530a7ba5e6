package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
)

type scanQueuer interface {
	EnqueueScan(scope models.Scope) error
}

// TimetableService reads published snapshots and applies manual edits as new
// snapshot versions. Edits are not re-checked against hard constraints here;
// a conflict scan is queued instead so planners see what they broke.
type TimetableService struct {
	entities  entityReader
	prefs     preferenceStore
	snapshots snapshotStore
	scans     scanQueuer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService wires timetable dependencies.
func NewTimetableService(
	entities entityReader,
	prefs preferenceStore,
	snapshots snapshotStore,
	scans scanQueuer,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		entities:  entities,
		prefs:     prefs,
		snapshots: snapshots,
		scans:     scans,
		validator: validate,
		logger:    logger,
	}
}

// Get returns the ACTIVE snapshot of a scope with display-ready assignments.
func (s *TimetableService) Get(ctx context.Context, query dto.TimetableQuery) (*dto.TimetableView, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query")
	}
	scope := query.Scope()

	snapshot, err := s.snapshots.FindActive(ctx, scope)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable published for this scope")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable snapshot")
	}
	return s.buildView(ctx, snapshot)
}

// Versions returns the publication history of a scope, newest first. Archived
// versions stay listed so planners can see when a timetable was superseded.
func (s *TimetableService) Versions(ctx context.Context, query dto.TimetableQuery) (*dto.VersionListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query")
	}
	scope := query.Scope()

	snapshots, err := s.snapshots.ListVersions(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load snapshot versions")
	}

	versions := make([]dto.SnapshotVersionView, 0, len(snapshots))
	for _, snapshot := range snapshots {
		versions = append(versions, dto.SnapshotVersionView{
			SnapshotID: snapshot.ID,
			Version:    snapshot.Version,
			Status:     string(snapshot.Status),
			CreatedAt:  snapshot.CreatedAt.Format(time.RFC3339),
		})
	}
	return &dto.VersionListResponse{Scope: scope, Versions: versions}, nil
}

// Replace publishes a manually edited assignment set as the next snapshot
// version and queues a conflict scan over it.
func (s *TimetableService) Replace(ctx context.Context, req dto.ReplaceTimetableRequest) (*dto.TimetableView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	scope := req.Scope()

	seen := make(map[string]bool, len(req.Assignments))
	assignments := make([]models.Assignment, 0, len(req.Assignments))
	for _, item := range req.Assignments {
		if seen[item.ID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate assignment id %s", item.ID))
		}
		seen[item.ID] = true
		if item.SectionID != scope.SectionID {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("assignment %s belongs to another section", item.ID))
		}
		assignments = append(assignments, models.Assignment{
			ID:        item.ID,
			UnitID:    item.UnitID,
			CourseID:  item.CourseID,
			SectionID: item.SectionID,
			Day:       item.Day,
			Slot:      item.Slot,
			RoomID:    item.RoomID,
			FacultyID: item.FacultyID,
		})
	}

	snapshot, err := s.snapshots.Replace(ctx, scope, assignments, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable snapshot")
	}

	if s.scans != nil {
		if err := s.scans.EnqueueScan(scope); err != nil {
			s.logger.Warn("failed to queue conflict scan after edit", zap.String("scope", scope.Key()), zap.Error(err))
		}
	}

	return s.buildView(ctx, snapshot)
}

func (s *TimetableService) buildView(ctx context.Context, snapshot *models.Snapshot) (*dto.TimetableView, error) {
	assignments, err := s.snapshots.ListAssignments(ctx, snapshot.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load snapshot assignments")
	}

	scope := snapshot.Scope()
	units, rooms, faculty, err := s.loadViewEntities(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &dto.TimetableView{
		SnapshotID:  snapshot.ID,
		Scope:       scope,
		Version:     snapshot.Version,
		Status:      string(snapshot.Status),
		CreatedAt:   snapshot.CreatedAt.Format(time.RFC3339),
		Assignments: buildAssignmentViews(assignments, units, rooms, faculty),
	}, nil
}

func (s *TimetableService) loadViewEntities(ctx context.Context, scope models.Scope) ([]models.TeachingUnit, []models.Room, []models.Faculty, error) {
	section, err := s.entities.FindSection(ctx, scope.SectionID)
	if err != nil {
		return nil, nil, nil, notFoundOr(err, "section not found", "failed to load section")
	}
	courses, err := s.entities.ListCourses(ctx, scope.DepartmentID, scope.SemesterID)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	rooms, err := s.entities.ListRooms(ctx)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	faculty, err := s.entities.ListFaculty(ctx, scope.DepartmentID)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return deriveUnits(courses, section, faculty), rooms, faculty, nil
}
