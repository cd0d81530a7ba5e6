package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/engine"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/config"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/jobs"
)

type conflictStore interface {
	ReplaceForSnapshot(ctx context.Context, snapshotID string, conflicts []models.Conflict) error
	ListBySnapshot(ctx context.Context, snapshotID string, status models.ConflictStatus) ([]models.Conflict, error)
	Resolve(ctx context.Context, id string) error
}

type conflictScanner interface {
	Scan(in engine.ScanInput) []models.Conflict
}

type conflictObserver interface {
	ObserveConflicts(conflicts []models.Conflict)
}

const scanJobType = "conflict_scan"

// ConflictService runs detection passes over published timetables and serves
// the stored reports. Scans are idempotent; resolution state survives them.
// Reports are cached per scope until the next scan or resolve.
type ConflictService struct {
	entities  entityReader
	prefs     preferenceStore
	snapshots snapshotStore
	conflicts conflictStore
	detector  conflictScanner
	cache     ReportCache
	metrics   conflictObserver
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.ConflictsConfig
}

// NewConflictService wires detection dependencies. When redisCache is nil the
// service falls back to an in-process cache.
func NewConflictService(
	entities entityReader,
	prefs preferenceStore,
	snapshots snapshotStore,
	conflicts conflictStore,
	detector conflictScanner,
	cache ReportCache,
	metrics conflictObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.ConflictsConfig,
) *ConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cache == nil {
		cache = newMemoryReportCache(cfg.CacheTTL)
	}

	s := &ConflictService{
		entities:  entities,
		prefs:     prefs,
		snapshots: snapshots,
		conflicts: conflicts,
		detector:  detector,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
	s.queue = jobs.NewQueue(scanJobType, s.handleScanJob, jobs.QueueConfig{
		Workers:    cfg.ScanWorkers,
		MaxRetries: cfg.ScanRetries,
		RetryDelay: cfg.ScanRetryGap,
		Logger:     logger,
		OnExhausted: func(job jobs.Job, err error) {
			if scope, ok := job.Payload.(models.Scope); ok {
				// the stored report is stale now; drop it so the next read rescans
				s.invalidate(context.Background(), scope)
				logger.Error("conflict scan abandoned", zap.String("scope", scope.Key()), zap.Error(err))
			}
		},
	})
	return s
}

// Start launches the async scan workers.
func (s *ConflictService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the async scan workers.
func (s *ConflictService) Stop() {
	s.queue.Stop()
}

// EnqueueScan queues a detection pass for the scope.
func (s *ConflictService) EnqueueScan(scope models.Scope) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    scanJobType,
		Payload: scope,
	})
}

func (s *ConflictService) handleScanJob(ctx context.Context, job jobs.Job) error {
	scope, ok := job.Payload.(models.Scope)
	if !ok {
		s.logger.Error("scan job carries unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	_, err := s.Scan(ctx, dto.ScanConflictsRequest{
		DepartmentID: scope.DepartmentID,
		SemesterID:   scope.SemesterID,
		SectionID:    scope.SectionID,
	})
	if appErr := appErrors.FromError(err); appErr != nil && appErr.Code == appErrors.ErrNotFound.Code {
		// snapshot disappeared between enqueue and run, nothing to scan
		return nil
	}
	return err
}

// Scan runs the detector over the scope's ACTIVE snapshot and persists the
// report. With Async set the pass is queued instead.
func (s *ConflictService) Scan(ctx context.Context, req dto.ScanConflictsRequest) (*dto.ScanConflictsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scan payload")
	}
	scope := req.Scope()

	if req.Async {
		if err := s.EnqueueScan(scope); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue conflict scan")
		}
		return &dto.ScanConflictsResponse{Queued: true}, nil
	}

	snapshot, err := s.snapshots.FindActive(ctx, scope)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable published for this scope")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable snapshot")
	}

	in, err := s.loadScanInput(ctx, scope, snapshot.ID)
	if err != nil {
		return nil, err
	}

	detected := s.detector.Scan(*in)
	if s.metrics != nil {
		s.metrics.ObserveConflicts(detected)
	}
	if err := s.conflicts.ReplaceForSnapshot(ctx, snapshot.ID, detected); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store conflict report")
	}
	s.invalidate(ctx, scope)

	// re-read so resolution state preserved by the upsert is reflected
	stored, err := s.conflicts.ListBySnapshot(ctx, snapshot.ID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conflicts")
	}

	critical, warnings := tally(stored)
	s.logger.Info("conflict scan complete",
		zap.String("scope", scope.Key()),
		zap.String("snapshot_id", snapshot.ID),
		zap.Int("critical", critical),
		zap.Int("warnings", warnings))

	return &dto.ScanConflictsResponse{Conflicts: stored, Critical: critical, Warnings: warnings}, nil
}

// List serves stored conflicts for a scope, from cache when warm.
func (s *ConflictService) List(ctx context.Context, query dto.ConflictQuery) (*dto.ConflictListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict query")
	}
	scope := query.Scope()
	key := cacheKey(scope, query.Status)

	if cached, ok := s.cache.Get(ctx, key); ok {
		var resp dto.ConflictListResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
		s.cache.Delete(ctx, key)
	}

	snapshot, err := s.snapshots.FindActive(ctx, scope)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable published for this scope")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable snapshot")
	}

	stored, err := s.conflicts.ListBySnapshot(ctx, snapshot.ID, models.ConflictStatus(query.Status))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conflicts")
	}

	critical, warnings := tally(stored)
	resp := &dto.ConflictListResponse{Conflicts: stored, Critical: critical, Warnings: warnings}

	if encoded, err := json.Marshal(resp); err == nil {
		s.cache.Set(ctx, key, encoded, s.cfg.CacheTTL)
	}
	return resp, nil
}

// Resolve marks one conflict resolved. Scope, when known, is used to drop
// cached reports immediately instead of waiting out the TTL.
func (s *ConflictService) Resolve(ctx context.Context, scope models.Scope, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "conflict id is required")
	}
	if err := s.conflicts.Resolve(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "conflict not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve conflict")
	}
	if scope.DepartmentID != "" {
		s.invalidate(ctx, scope)
	}
	return nil
}

func (s *ConflictService) loadScanInput(ctx context.Context, scope models.Scope, snapshotID string) (*engine.ScanInput, error) {
	assignments, err := s.snapshots.ListAssignments(ctx, snapshotID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load snapshot assignments")
	}
	section, err := s.entities.FindSection(ctx, scope.SectionID)
	if err != nil {
		return nil, notFoundOr(err, "section not found", "failed to load section")
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

	return &engine.ScanInput{
		Assignments: assignments,
		Units:       deriveUnits(courses, section, faculty),
		Rooms:       rooms,
		Faculty:     faculty,
		Preferences: prefs,
	}, nil
}

func (s *ConflictService) invalidate(ctx context.Context, scope models.Scope) {
	s.cache.Delete(ctx,
		cacheKey(scope, ""),
		cacheKey(scope, string(models.ConflictOpen)),
		cacheKey(scope, string(models.ConflictResolved)))
}

func cacheKey(scope models.Scope, status string) string {
	return fmt.Sprintf("conflicts:%s:%s", scope.Key(), status)
}

func tally(conflicts []models.Conflict) (critical, warnings int) {
	for _, c := range conflicts {
		if c.Status != models.ConflictOpen {
			continue
		}
		switch c.Severity {
		case models.SeverityCritical:
			critical++
		case models.SeverityWarning:
			warnings++
		}
	}
	return critical, warnings
}
