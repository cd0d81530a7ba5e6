package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
)

// SnapshotRepository persists versioned timetable snapshots. A replace
// installs a new version and archives the previous one inside one
// transaction, so readers always observe a complete timetable.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Replace atomically publishes a new snapshot for the scope. The previous
// ACTIVE snapshot, if any, becomes ARCHIVED in the same transaction.
func (r *SnapshotRepository) Replace(ctx context.Context, scope models.Scope, assignments []models.Assignment, meta types.JSONText) (*models.Snapshot, error) {
	snapshot := &models.Snapshot{
		ID:           uuid.NewString(),
		DepartmentID: scope.DepartmentID,
		SemesterID:   scope.SemesterID,
		SectionID:    scope.SectionID,
		Status:       models.SnapshotStatusActive,
		Meta:         meta,
		CreatedAt:    time.Now().UTC(),
	}
	if len(snapshot.Meta) == 0 {
		snapshot.Meta = types.JSONText(`{}`)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const archiveQuery = `UPDATE timetable_snapshots SET status = $1
WHERE department_id = $2 AND semester_id = $3 AND section_id = $4 AND status = $5`
	if _, err = tx.ExecContext(ctx, archiveQuery,
		models.SnapshotStatusArchived, scope.DepartmentID, scope.SemesterID, scope.SectionID, models.SnapshotStatusActive); err != nil {
		return nil, fmt.Errorf("archive previous snapshot: %w", err)
	}

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_snapshots
WHERE department_id = $1 AND semester_id = $2 AND section_id = $3`
	if err = sqlx.GetContext(ctx, tx, &snapshot.Version, nextVersionQuery,
		scope.DepartmentID, scope.SemesterID, scope.SectionID); err != nil {
		return nil, fmt.Errorf("compute next snapshot version: %w", err)
	}

	const insertSnapshotQuery = `
INSERT INTO timetable_snapshots (id, department_id, semester_id, section_id, version, status, meta, created_at)
VALUES (:id, :department_id, :semester_id, :section_id, :version, :status, :meta, :created_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, insertSnapshotQuery, snapshot); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	const insertAssignmentQuery = `
INSERT INTO assignments (id, snapshot_id, unit_id, course_id, section_id, day_of_week, time_slot, room_id, faculty_id, created_at)
VALUES (:id, :snapshot_id, :unit_id, :course_id, :section_id, :day_of_week, :time_slot, :room_id, :faculty_id, :created_at)`
	for i := range assignments {
		assignments[i].SnapshotID = snapshot.ID
		if assignments[i].CreatedAt.IsZero() {
			assignments[i].CreatedAt = snapshot.CreatedAt
		}
		if _, err = sqlx.NamedExecContext(ctx, tx, insertAssignmentQuery, assignments[i]); err != nil {
			return nil, fmt.Errorf("insert assignment %s: %w", assignments[i].ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot replace: %w", err)
	}
	return snapshot, nil
}

// FindActive loads the current ACTIVE snapshot for a scope.
func (r *SnapshotRepository) FindActive(ctx context.Context, scope models.Scope) (*models.Snapshot, error) {
	const query = `SELECT id, department_id, semester_id, section_id, version, status, meta, created_at
FROM timetable_snapshots
WHERE department_id = $1 AND semester_id = $2 AND section_id = $3 AND status = $4
ORDER BY version DESC LIMIT 1`
	var snapshot models.Snapshot
	if err := r.db.GetContext(ctx, &snapshot, query,
		scope.DepartmentID, scope.SemesterID, scope.SectionID, models.SnapshotStatusActive); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ListVersions returns every snapshot version for a scope, newest first.
func (r *SnapshotRepository) ListVersions(ctx context.Context, scope models.Scope) ([]models.Snapshot, error) {
	const query = `SELECT id, department_id, semester_id, section_id, version, status, meta, created_at
FROM timetable_snapshots
WHERE department_id = $1 AND semester_id = $2 AND section_id = $3
ORDER BY version DESC`
	var snapshots []models.Snapshot
	if err := r.db.SelectContext(ctx, &snapshots, query,
		scope.DepartmentID, scope.SemesterID, scope.SectionID); err != nil {
		return nil, fmt.Errorf("list snapshot versions: %w", err)
	}
	return snapshots, nil
}

// ListAssignments loads the assignments of one snapshot ordered by day, slot
// and identifier.
func (r *SnapshotRepository) ListAssignments(ctx context.Context, snapshotID string) ([]models.Assignment, error) {
	const query = `SELECT id, snapshot_id, unit_id, course_id, section_id, day_of_week, time_slot, room_id, faculty_id, created_at
FROM assignments WHERE snapshot_id = $1 ORDER BY day_of_week, time_slot, id`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, snapshotID); err != nil {
		return nil, fmt.Errorf("list snapshot assignments: %w", err)
	}
	return assignments, nil
}

// ListActiveAssignmentsExcept returns all assignments from ACTIVE snapshots
// of every scope but the given one. Used to treat other scopes' bookings as
// fixed, and for the commit-time re-validation pass.
func (r *SnapshotRepository) ListActiveAssignmentsExcept(ctx context.Context, scope models.Scope) ([]models.Assignment, error) {
	const query = `SELECT a.id, a.snapshot_id, a.unit_id, a.course_id, a.section_id, a.day_of_week, a.time_slot, a.room_id, a.faculty_id, a.created_at
FROM assignments a
JOIN timetable_snapshots s ON s.id = a.snapshot_id
WHERE s.status = $1 AND NOT (s.department_id = $2 AND s.semester_id = $3 AND s.section_id = $4)
ORDER BY a.day_of_week, a.time_slot, a.id`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query,
		models.SnapshotStatusActive, scope.DepartmentID, scope.SemesterID, scope.SectionID); err != nil {
		return nil, fmt.Errorf("list active assignments: %w", err)
	}
	return assignments, nil
}
