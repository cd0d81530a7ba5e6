package models

import "time"

// ConflictType classifies a hard or soft constraint violation found by a scan.
type ConflictType string

const (
	ConflictRoomDoubleBooking  ConflictType = "ROOM_DOUBLE_BOOKING"
	ConflictFacultyOverlap     ConflictType = "FACULTY_OVERLAP"
	ConflictFacultyUnavailable ConflictType = "FACULTY_UNAVAILABLE"
	ConflictCapacityOverflow   ConflictType = "CAPACITY_OVERFLOW"
	ConflictSectionOverlap     ConflictType = "SECTION_OVERLAP"
)

// ConflictSeverity grades how urgent a conflict is.
type ConflictSeverity string

const (
	SeverityCritical ConflictSeverity = "critical"
	SeverityWarning  ConflictSeverity = "warning"
)

// ConflictStatus tracks human triage state. Scans never resolve conflicts.
type ConflictStatus string

const (
	ConflictOpen     ConflictStatus = "open"
	ConflictResolved ConflictStatus = "resolved"
)

// Conflict is one detected violation. The ID is derived from the conflict
// type plus the sorted involved assignment IDs, so rescanning the same
// snapshot produces the same IDs and resolution survives rescans.
type Conflict struct {
	ID            string           `json:"id"`
	Type          ConflictType     `json:"type"`
	Severity      ConflictSeverity `json:"severity"`
	Description   string           `json:"description"`
	AssignmentIDs []string         `json:"assignment_ids"`
	Parties       []string         `json:"parties"`
	Status        ConflictStatus   `json:"status"`
	DetectedAt    time.Time        `json:"detected_at"`
	ResolvedAt    *time.Time       `json:"resolved_at,omitempty"`
}
