package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
)

// EntityRepository serves the scheduling entities: departments, semesters,
// courses, sections, rooms, faculty and rules. Reads dominate; the only
// write is the faculty weekly-hours cap.
type EntityRepository struct {
	db *sqlx.DB
}

// NewEntityRepository constructs repository.
func NewEntityRepository(db *sqlx.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

// ListDepartments returns all departments ordered by code.
func (r *EntityRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, code, name, created_at, updated_at FROM departments ORDER BY code`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindDepartment loads a department by its identifier.
func (r *EntityRepository) FindDepartment(ctx context.Context, id string) (*models.Department, error) {
	const query = `SELECT id, code, name, created_at, updated_at FROM departments WHERE id = $1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// FindSemester loads a semester by its identifier.
func (r *EntityRepository) FindSemester(ctx context.Context, id string) (*models.Semester, error) {
	const query = `SELECT id, number, year, created_at, updated_at FROM semesters WHERE id = $1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindSection loads a section by its identifier.
func (r *EntityRepository) FindSection(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, name, department_id, semester_id, student_count, created_at, updated_at
FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// ListCourses returns courses for a department and semester ordered by code.
func (r *EntityRepository) ListCourses(ctx context.Context, departmentID, semesterID string) ([]models.Course, error) {
	const query = `SELECT id, code, name, department_id, semester_id, theory_hours, lab_hours, tutorial_hours, elective, created_at, updated_at
FROM courses WHERE department_id = $1 AND semester_id = $2 ORDER BY code`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, departmentID, semesterID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListRooms returns all rooms ordered by identifier.
func (r *EntityRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, type, capacity, features, created_at, updated_at FROM rooms ORDER BY id`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListFaculty returns teaching staff of a department ordered by identifier.
func (r *EntityRepository) ListFaculty(ctx context.Context, departmentID string) ([]models.Faculty, error) {
	const query = `SELECT id, name, department_id, max_hours, assigned_hours, created_at, updated_at
FROM faculty WHERE department_id = $1 ORDER BY id`
	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query, departmentID); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	return faculty, nil
}

// FindFaculty loads one faculty member by identifier.
func (r *EntityRepository) FindFaculty(ctx context.Context, id string) (*models.Faculty, error) {
	const query = `SELECT id, name, department_id, max_hours, assigned_hours, created_at, updated_at
FROM faculty WHERE id = $1`
	var member models.Faculty
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateFacultyMaxHours changes the weekly teaching cap of one faculty member.
func (r *EntityRepository) UpdateFacultyMaxHours(ctx context.Context, id string, maxHours int) error {
	const query = `UPDATE faculty SET max_hours = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, maxHours, id)
	if err != nil {
		return fmt.Errorf("update faculty max hours: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("faculty rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListRules returns the configured soft-constraint rules ordered by code.
func (r *EntityRepository) ListRules(ctx context.Context) ([]models.Rule, error) {
	const query = `SELECT id, code, name, description, weight, hard, active, created_at, updated_at
FROM rules ORDER BY code`
	var rules []models.Rule
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}
