package dto

import "github.com/Pranathi-N-47/timeweaver-engine/internal/models"

// ConflictQuery filters stored conflicts by scope and status.
type ConflictQuery struct {
	DepartmentID string `form:"departmentId" validate:"required"`
	SemesterID   string `form:"semesterId" validate:"required"`
	SectionID    string `form:"sectionId" validate:"required"`
	Status       string `form:"status" validate:"omitempty,oneof=open resolved"`
}

// Scope extracts the scope tuple from the query.
func (q ConflictQuery) Scope() models.Scope {
	return models.Scope{DepartmentID: q.DepartmentID, SemesterID: q.SemesterID, SectionID: q.SectionID}
}

// ScanConflictsRequest triggers a detection pass over a scope's timetable.
type ScanConflictsRequest struct {
	DepartmentID string `json:"departmentId" validate:"required"`
	SemesterID   string `json:"semesterId" validate:"required"`
	SectionID    string `json:"sectionId" validate:"required"`
	Async        bool   `json:"async"`
}

// Scope extracts the scope tuple from the request.
func (r ScanConflictsRequest) Scope() models.Scope {
	return models.Scope{DepartmentID: r.DepartmentID, SemesterID: r.SemesterID, SectionID: r.SectionID}
}

// ScanConflictsResponse reports a completed or queued scan.
type ScanConflictsResponse struct {
	Queued    bool              `json:"queued"`
	Conflicts []models.Conflict `json:"conflicts,omitempty"`
	Critical  int               `json:"critical"`
	Warnings  int               `json:"warnings"`
}

// ConflictListResponse wraps stored conflicts with summary counts.
type ConflictListResponse struct {
	Conflicts []models.Conflict `json:"conflicts"`
	Critical  int               `json:"critical"`
	Warnings  int               `json:"warnings"`
}
