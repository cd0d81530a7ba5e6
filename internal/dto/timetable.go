package dto

import (
	"github.com/Pranathi-N-47/timeweaver-engine/internal/engine"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
)

// GenerateOptions tunes one scheduling run. Zero values fall back to the
// configured defaults.
type GenerateOptions struct {
	BacktrackBudget int `json:"backtrackBudget" validate:"omitempty,min=1"`
	TimeoutMs       int `json:"timeoutMs" validate:"omitempty,min=100"`
}

// GenerateTimetableRequest asks for a fresh timetable for one scope.
type GenerateTimetableRequest struct {
	DepartmentID string          `json:"departmentId" validate:"required"`
	SemesterID   string          `json:"semesterId" validate:"required"`
	SectionID    string          `json:"sectionId" validate:"required"`
	Options      GenerateOptions `json:"options"`
}

// Scope extracts the scope tuple from the request.
func (r GenerateTimetableRequest) Scope() models.Scope {
	return models.Scope{DepartmentID: r.DepartmentID, SemesterID: r.SemesterID, SectionID: r.SectionID}
}

// AssignmentView is one placed session enriched with display names.
type AssignmentView struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	CourseName  string `json:"courseName"`
	SectionID   string `json:"sectionId"`
	Day         int    `json:"dayOfWeek"`
	DayName     string `json:"dayName"`
	Slot        int    `json:"timeSlot"`
	SlotLabel   string `json:"slotLabel"`
	RoomID      string `json:"roomId"`
	RoomName    string `json:"roomName"`
	FacultyID   string `json:"facultyId"`
	FacultyName string `json:"facultyName"`
	HourType    string `json:"hourType"`
}

// TimetableView is the published snapshot with its placed sessions.
type TimetableView struct {
	SnapshotID  string           `json:"snapshotId"`
	Scope       models.Scope     `json:"scope"`
	Version     int              `json:"version"`
	Status      string           `json:"status"`
	CreatedAt   string           `json:"createdAt"`
	Assignments []AssignmentView `json:"assignments"`
}

// GenerateTimetableResponse reports the run outcome. Status is "success" when
// a snapshot was published and "infeasible" when the search gave up; the
// latter carries diagnostics instead of a timetable.
type GenerateTimetableResponse struct {
	Status      string                   `json:"status"`
	Timetable   *TimetableView           `json:"timetable,omitempty"`
	Stats       *engine.Stats            `json:"stats,omitempty"`
	Unplaceable []engine.UnplaceableUnit `json:"unplaceable,omitempty"`
}

// TimetableQuery selects a scope from query parameters.
type TimetableQuery struct {
	DepartmentID string `form:"departmentId" validate:"required"`
	SemesterID   string `form:"semesterId" validate:"required"`
	SectionID    string `form:"sectionId" validate:"required"`
}

// Scope extracts the scope tuple from the query.
func (q TimetableQuery) Scope() models.Scope {
	return models.Scope{DepartmentID: q.DepartmentID, SemesterID: q.SemesterID, SectionID: q.SectionID}
}

// SnapshotVersionView is one entry of a scope's publication history.
type SnapshotVersionView struct {
	SnapshotID string `json:"snapshotId"`
	Version    int    `json:"version"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

// VersionListResponse is the publication history of a scope, newest first.
type VersionListResponse struct {
	Scope    models.Scope          `json:"scope"`
	Versions []SnapshotVersionView `json:"versions"`
}

// ReplaceAssignment is one manually edited session placement.
type ReplaceAssignment struct {
	ID        string `json:"id" validate:"required"`
	UnitID    string `json:"unitId" validate:"required"`
	CourseID  string `json:"courseId" validate:"required"`
	SectionID string `json:"sectionId" validate:"required"`
	Day       int    `json:"dayOfWeek" validate:"required,min=1,max=5"`
	Slot      int    `json:"timeSlot" validate:"required,min=1"`
	RoomID    string `json:"roomId" validate:"required"`
	FacultyID string `json:"facultyId" validate:"required"`
}

// ReplaceTimetableRequest publishes a manually edited timetable as the next
// snapshot version of the scope.
type ReplaceTimetableRequest struct {
	DepartmentID string              `json:"departmentId" validate:"required"`
	SemesterID   string              `json:"semesterId" validate:"required"`
	SectionID    string              `json:"sectionId" validate:"required"`
	Assignments  []ReplaceAssignment `json:"assignments" validate:"required,min=1,dive"`
}

// Scope extracts the scope tuple from the request.
func (r ReplaceTimetableRequest) Scope() models.Scope {
	return models.Scope{DepartmentID: r.DepartmentID, SemesterID: r.SemesterID, SectionID: r.SectionID}
}
