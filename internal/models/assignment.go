package models

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// HourType classifies a teaching unit's session kind.
type HourType string

const (
	HourTheory   HourType = "theory"
	HourLab      HourType = "lab"
	HourTutorial HourType = "tutorial"
)

// TeachingUnit is the smallest scheduling obligation: the weekly hours of one
// kind for one course taught to one section. Derived from Course x Section,
// never persisted.
type TeachingUnit struct {
	ID           string   `json:"id"`
	CourseID     string   `json:"course_id"`
	CourseName   string   `json:"course_name"`
	SectionID    string   `json:"section_id"`
	HourType     HourType `json:"hour_type"`
	Hours        int      `json:"hours"`
	Core         bool     `json:"core"`
	StudentCount int      `json:"student_count"`
	FacultyIDs   []string `json:"faculty_ids"`
}

// Scope identifies the timetable a snapshot belongs to.
type Scope struct {
	DepartmentID string `db:"department_id" json:"department_id" form:"departmentId" validate:"required"`
	SemesterID   string `db:"semester_id" json:"semester_id" form:"semesterId" validate:"required"`
	SectionID    string `db:"section_id" json:"section_id" form:"sectionId" validate:"required"`
}

// Key renders a stable cache/lock key for the scope.
func (s Scope) Key() string {
	return fmt.Sprintf("%s:%s:%s", s.DepartmentID, s.SemesterID, s.SectionID)
}

// Assignment is the atomic scheduling decision: one teaching session pinned to
// a (day, slot, room, faculty) tuple.
type Assignment struct {
	ID         string    `db:"id" json:"id"`
	SnapshotID string    `db:"snapshot_id" json:"snapshot_id,omitempty"`
	UnitID     string    `db:"unit_id" json:"unit_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	SectionID  string    `db:"section_id" json:"section_id"`
	Day        int       `db:"day_of_week" json:"day_of_week"`
	Slot       int       `db:"time_slot" json:"time_slot"`
	RoomID     string    `db:"room_id" json:"room_id"`
	FacultyID  string    `db:"faculty_id" json:"faculty_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SnapshotStatus tracks the lifecycle of a published timetable version.
type SnapshotStatus string

const (
	SnapshotStatusActive   SnapshotStatus = "ACTIVE"
	SnapshotStatusArchived SnapshotStatus = "ARCHIVED"
)

// Snapshot is one published timetable version for a scope. Regeneration
// installs a new version and archives the previous one, never merges.
type Snapshot struct {
	ID           string         `db:"id" json:"id"`
	DepartmentID string         `db:"department_id" json:"department_id"`
	SemesterID   string         `db:"semester_id" json:"semester_id"`
	SectionID    string         `db:"section_id" json:"section_id"`
	Version      int            `db:"version" json:"version"`
	Status       SnapshotStatus `db:"status" json:"status"`
	Meta         types.JSONText `db:"meta" json:"meta,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Scope returns the snapshot's scope tuple.
func (s Snapshot) Scope() Scope {
	return Scope{DepartmentID: s.DepartmentID, SemesterID: s.SemesterID, SectionID: s.SectionID}
}
