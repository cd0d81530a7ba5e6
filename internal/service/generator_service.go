package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/engine"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/config"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
)

type entityReader interface {
	FindDepartment(ctx context.Context, id string) (*models.Department, error)
	FindSemester(ctx context.Context, id string) (*models.Semester, error)
	FindSection(ctx context.Context, id string) (*models.Section, error)
	FindFaculty(ctx context.Context, id string) (*models.Faculty, error)
	ListCourses(ctx context.Context, departmentID, semesterID string) ([]models.Course, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListFaculty(ctx context.Context, departmentID string) ([]models.Faculty, error)
	ListRules(ctx context.Context) ([]models.Rule, error)
}

type preferenceStore interface {
	ListAll(ctx context.Context) ([]models.Preference, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]models.Preference, error)
	ReplaceForFaculty(ctx context.Context, facultyID string, prefs []models.Preference) error
}

type snapshotStore interface {
	Replace(ctx context.Context, scope models.Scope, assignments []models.Assignment, meta types.JSONText) (*models.Snapshot, error)
	FindActive(ctx context.Context, scope models.Scope) (*models.Snapshot, error)
	ListVersions(ctx context.Context, scope models.Scope) ([]models.Snapshot, error)
	ListAssignments(ctx context.Context, snapshotID string) ([]models.Assignment, error)
	ListActiveAssignmentsExcept(ctx context.Context, scope models.Scope) ([]models.Assignment, error)
}

type timetableScheduler interface {
	Schedule(ctx context.Context, in engine.Input, opts engine.Options) (*engine.Result, error)
}

type runObserver interface {
	ObserveGenerateRun(status string, stats engine.Stats, duration time.Duration)
}

// GeneratorService orchestrates scheduling runs: it takes one consistent read
// of the entities, invokes the solver and atomically publishes the result.
// Runs for the same scope are serialised; on commit it re-validates against
// assignments other scopes published meanwhile and retries once before
// giving up with a concurrent modification error.
type GeneratorService struct {
	entities  entityReader
	prefs     preferenceStore
	snapshots snapshotStore
	scheduler timetableScheduler
	metrics   runObserver
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.SchedulerConfig
	locks     *scopeLocks
}

// NewGeneratorService wires generator dependencies.
func NewGeneratorService(
	entities entityReader,
	prefs preferenceStore,
	snapshots snapshotStore,
	scheduler timetableScheduler,
	metrics runObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) *GeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GeneratorService{
		entities:  entities,
		prefs:     prefs,
		snapshots: snapshots,
		scheduler: scheduler,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		locks:     newScopeLocks(),
	}
}

type runInput struct {
	section *models.Section
	courses []models.Course
	rooms   []models.Room
	faculty []models.Faculty
	prefs   []models.Preference
	rules   []models.Rule
	units   []models.TeachingUnit
}

// Generate runs the scheduler for one scope and publishes the result as the
// next snapshot version.
func (s *GeneratorService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}
	scope := req.Scope()

	unlock := s.locks.Lock(scope.Key())
	defer unlock()

	in, err := s.loadRunInput(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(in.units) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses with teaching hours for this scope")
	}

	opts := engine.Options{
		BacktrackDepth:  s.cfg.BacktrackDepth,
		BacktrackBudget: s.cfg.BacktrackBudget,
	}
	if req.Options.BacktrackBudget > 0 {
		opts.BacktrackBudget = req.Options.BacktrackBudget
	}
	timeout := s.cfg.Timeout
	if req.Options.TimeoutMs > 0 {
		timeout = time.Duration(req.Options.TimeoutMs) * time.Millisecond
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()

	occupied, err := s.snapshots.ListActiveAssignmentsExcept(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committed assignments")
	}

	var result *engine.Result
	for attempt := 0; ; attempt++ {
		result, err = s.scheduler.Schedule(runCtx, engine.Input{
			Units:       in.units,
			Rooms:       in.rooms,
			Faculty:     in.faculty,
			Preferences: in.prefs,
			Rules:       in.rules,
			Occupied:    occupied,
			Days:        s.cfg.Days,
			SlotsPerDay: s.cfg.SlotsPerDay,
		}, opts)
		if err != nil {
			var infeasible *engine.InfeasibleError
			if errors.As(err, &infeasible) {
				s.observe("infeasible", infeasible.Stats, time.Since(started))
				s.logger.Warn("scheduling run infeasible",
					zap.String("scope", scope.Key()),
					zap.Int("unplaceable", len(infeasible.Unplaceable)),
					zap.Int("backtracks", infeasible.Stats.Backtracks))
				return &dto.GenerateTimetableResponse{
					Status:      "infeasible",
					Stats:       &infeasible.Stats,
					Unplaceable: infeasible.Unplaceable,
				}, nil
			}
			if errors.Is(err, context.DeadlineExceeded) {
				s.observe("timeout", engine.Stats{}, time.Since(started))
				return nil, appErrors.Clone(appErrors.ErrInfeasible, "scheduling run timed out before a full timetable was found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "scheduling run failed")
		}

		// commit-time re-validation against snapshots other scopes may have
		// published while this run was searching
		fresh, freshErr := s.snapshots.ListActiveAssignmentsExcept(ctx, scope)
		if freshErr != nil {
			return nil, appErrors.Wrap(freshErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to re-validate committed assignments")
		}
		if !hasCommitClash(result.Assignments, fresh) {
			occupied = fresh
			break
		}
		if attempt >= 1 {
			s.observe("conflict", result.Stats, time.Since(started))
			return nil, appErrors.Clone(appErrors.ErrConcurrentModification, "")
		}
		s.logger.Info("committed assignments changed during run, retrying", zap.String("scope", scope.Key()))
		occupied = fresh
	}

	meta, err := json.Marshal(map[string]interface{}{
		"stats":      result.Stats,
		"durationMs": time.Since(started).Milliseconds(),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode run metadata")
	}

	snapshot, err := s.snapshots.Replace(ctx, scope, result.Assignments, types.JSONText(meta))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable snapshot")
	}

	s.observe("success", result.Stats, time.Since(started))
	s.logger.Info("timetable published",
		zap.String("scope", scope.Key()),
		zap.String("snapshot_id", snapshot.ID),
		zap.Int("version", snapshot.Version),
		zap.Int("sessions", result.Stats.Sessions),
		zap.Int("backtracks", result.Stats.Backtracks))

	return &dto.GenerateTimetableResponse{
		Status: "success",
		Timetable: &dto.TimetableView{
			SnapshotID:  snapshot.ID,
			Scope:       scope,
			Version:     snapshot.Version,
			Status:      string(snapshot.Status),
			CreatedAt:   snapshot.CreatedAt.Format(time.RFC3339),
			Assignments: buildAssignmentViews(result.Assignments, in.units, in.rooms, in.faculty),
		},
		Stats: &result.Stats,
	}, nil
}

func (s *GeneratorService) loadRunInput(ctx context.Context, scope models.Scope) (*runInput, error) {
	if _, err := s.entities.FindDepartment(ctx, scope.DepartmentID); err != nil {
		return nil, notFoundOr(err, "department not found", "failed to load department")
	}
	if _, err := s.entities.FindSemester(ctx, scope.SemesterID); err != nil {
		return nil, notFoundOr(err, "semester not found", "failed to load semester")
	}
	section, err := s.entities.FindSection(ctx, scope.SectionID)
	if err != nil {
		return nil, notFoundOr(err, "section not found", "failed to load section")
	}
	if section.DepartmentID != scope.DepartmentID || section.SemesterID != scope.SemesterID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section does not belong to the given department and semester")
	}

	courses, err := s.entities.ListCourses(ctx, scope.DepartmentID, scope.SemesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	rooms, err := s.entities.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	faculty, err := s.entities.ListFaculty(ctx, scope.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	prefs, err := s.prefs.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty preferences")
	}
	rules, err := s.entities.ListRules(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduling rules")
	}

	return &runInput{
		section: section,
		courses: courses,
		rooms:   rooms,
		faculty: faculty,
		prefs:   prefs,
		rules:   rules,
		units:   deriveUnits(courses, section, faculty),
	}, nil
}

func (s *GeneratorService) observe(status string, stats engine.Stats, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveGenerateRun(status, stats, duration)
}

type gridKey struct {
	day  int
	slot int
	id   string
}

// hasCommitClash reports whether any new assignment shares a room or faculty
// slot with assignments committed by other scopes.
func hasCommitClash(proposed, committed []models.Assignment) bool {
	rooms := make(map[gridKey]bool, len(committed))
	faculty := make(map[gridKey]bool, len(committed))
	for _, a := range committed {
		rooms[gridKey{a.Day, a.Slot, a.RoomID}] = true
		faculty[gridKey{a.Day, a.Slot, a.FacultyID}] = true
	}
	for _, a := range proposed {
		if rooms[gridKey{a.Day, a.Slot, a.RoomID}] || faculty[gridKey{a.Day, a.Slot, a.FacultyID}] {
			return true
		}
	}
	return false
}

func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internalMsg)
}
