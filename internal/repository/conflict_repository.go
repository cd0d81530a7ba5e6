package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
)

// ConflictRepository persists detected conflicts. Conflict IDs are derived
// from content, so upserts from repeated scans collapse onto the same row
// and a resolved conflict stays resolved across rescans.
type ConflictRepository struct {
	db *sqlx.DB
}

// NewConflictRepository constructs repository.
func NewConflictRepository(db *sqlx.DB) *ConflictRepository {
	return &ConflictRepository{db: db}
}

type conflictRow struct {
	ID            string                  `db:"id"`
	SnapshotID    string                  `db:"snapshot_id"`
	Type          models.ConflictType     `db:"type"`
	Severity      models.ConflictSeverity `db:"severity"`
	Description   string                  `db:"description"`
	AssignmentIDs pq.StringArray          `db:"assignment_ids"`
	Parties       pq.StringArray          `db:"parties"`
	Status        models.ConflictStatus   `db:"status"`
	DetectedAt    time.Time               `db:"detected_at"`
	ResolvedAt    *time.Time              `db:"resolved_at"`
}

func (row conflictRow) toModel() models.Conflict {
	return models.Conflict{
		ID:            row.ID,
		Type:          row.Type,
		Severity:      row.Severity,
		Description:   row.Description,
		AssignmentIDs: []string(row.AssignmentIDs),
		Parties:       []string(row.Parties),
		Status:        row.Status,
		DetectedAt:    row.DetectedAt,
		ResolvedAt:    row.ResolvedAt,
	}
}

// ReplaceForSnapshot swaps the open conflicts of a snapshot with the scan
// result. Rows whose ID already exists keep their status, so resolutions
// survive. Stale open conflicts that the scan no longer reports are removed.
func (r *ConflictRepository) ReplaceForSnapshot(ctx context.Context, snapshotID string, conflicts []models.Conflict) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin conflict replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID)
	}

	const pruneQuery = `DELETE FROM conflicts WHERE snapshot_id = $1 AND NOT (id = ANY($2))`
	if _, err = tx.ExecContext(ctx, pruneQuery, snapshotID, pq.StringArray(ids)); err != nil {
		return fmt.Errorf("prune stale conflicts: %w", err)
	}

	const upsertQuery = `
INSERT INTO conflicts (id, snapshot_id, type, severity, description, assignment_ids, parties, status, detected_at)
VALUES (:id, :snapshot_id, :type, :severity, :description, :assignment_ids, :parties, :status, :detected_at)
ON CONFLICT (id) DO UPDATE SET
	snapshot_id = EXCLUDED.snapshot_id,
	description = EXCLUDED.description,
	detected_at = EXCLUDED.detected_at`
	for _, c := range conflicts {
		row := conflictRow{
			ID:            c.ID,
			SnapshotID:    snapshotID,
			Type:          c.Type,
			Severity:      c.Severity,
			Description:   c.Description,
			AssignmentIDs: pq.StringArray(c.AssignmentIDs),
			Parties:       pq.StringArray(c.Parties),
			Status:        c.Status,
			DetectedAt:    c.DetectedAt,
		}
		if _, err = sqlx.NamedExecContext(ctx, tx, upsertQuery, row); err != nil {
			return fmt.Errorf("upsert conflict %s: %w", c.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit conflict replace: %w", err)
	}
	return nil
}

// ListBySnapshot returns conflicts of a snapshot, critical first.
func (r *ConflictRepository) ListBySnapshot(ctx context.Context, snapshotID string, status models.ConflictStatus) ([]models.Conflict, error) {
	query := `SELECT id, snapshot_id, type, severity, description, assignment_ids, parties, status, detected_at, resolved_at
FROM conflicts WHERE snapshot_id = $1`
	args := []interface{}{snapshotID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY severity, type, id`

	var rows []conflictRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list conflicts: %w", err)
	}
	conflicts := make([]models.Conflict, 0, len(rows))
	for _, row := range rows {
		conflicts = append(conflicts, row.toModel())
	}
	return conflicts, nil
}

// Resolve marks a conflict resolved. Resolving twice is a no-op.
func (r *ConflictRepository) Resolve(ctx context.Context, id string) error {
	const query = `UPDATE conflicts SET status = $1, resolved_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query,
		models.ConflictResolved, time.Now().UTC(), id, models.ConflictOpen)
	if err != nil {
		return fmt.Errorf("resolve conflict: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("conflict rows affected: %w", err)
	}
	if affected == 0 {
		var status models.ConflictStatus
		const checkQuery = `SELECT status FROM conflicts WHERE id = $1`
		if checkErr := r.db.GetContext(ctx, &status, checkQuery, id); checkErr != nil {
			return sql.ErrNoRows
		}
		// already resolved
	}
	return nil
}
