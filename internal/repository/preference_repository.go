package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
)

// PreferenceRepository persists faculty availability grids.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// ListByFaculty returns every marked cell of one faculty member's grid.
func (r *PreferenceRepository) ListByFaculty(ctx context.Context, facultyID string) ([]models.Preference, error) {
	const query = `SELECT id, faculty_id, day_of_week, time_slot, kind, created_at, updated_at
FROM faculty_preferences WHERE faculty_id = $1 ORDER BY day_of_week, time_slot`
	var prefs []models.Preference
	if err := r.db.SelectContext(ctx, &prefs, query, facultyID); err != nil {
		return nil, fmt.Errorf("list faculty preferences: %w", err)
	}
	return prefs, nil
}

// ListAll returns every preference row, used to feed scheduling runs.
func (r *PreferenceRepository) ListAll(ctx context.Context) ([]models.Preference, error) {
	const query = `SELECT id, faculty_id, day_of_week, time_slot, kind, created_at, updated_at
FROM faculty_preferences ORDER BY faculty_id, day_of_week, time_slot`
	var prefs []models.Preference
	if err := r.db.SelectContext(ctx, &prefs, query); err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return prefs, nil
}

// ReplaceForFaculty swaps a faculty member's full grid in one transaction.
func (r *PreferenceRepository) ReplaceForFaculty(ctx context.Context, facultyID string, prefs []models.Preference) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin preference replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const deleteQuery = `DELETE FROM faculty_preferences WHERE faculty_id = $1`
	if _, err = tx.ExecContext(ctx, deleteQuery, facultyID); err != nil {
		return fmt.Errorf("clear faculty preferences: %w", err)
	}

	now := time.Now().UTC()
	const insertQuery = `
INSERT INTO faculty_preferences (id, faculty_id, day_of_week, time_slot, kind, created_at, updated_at)
VALUES (:id, :faculty_id, :day_of_week, :time_slot, :kind, :created_at, :updated_at)`
	for i := range prefs {
		prefs[i].FacultyID = facultyID
		if prefs[i].ID == "" {
			prefs[i].ID = uuid.NewString()
		}
		if prefs[i].CreatedAt.IsZero() {
			prefs[i].CreatedAt = now
		}
		prefs[i].UpdatedAt = now
		if _, err = sqlx.NamedExecContext(ctx, tx, insertQuery, prefs[i]); err != nil {
			return fmt.Errorf("insert preference: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit preference replace: %w", err)
	}
	return nil
}
