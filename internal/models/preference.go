package models

import "time"

// PreferenceKind classifies a faculty slot mark.
type PreferenceKind string

const (
	// PreferencePreferred is a soft bonus for placing the faculty here.
	PreferencePreferred PreferenceKind = "preferred"
	// PreferenceNotAvailable is a hard block on the slot.
	PreferenceNotAvailable PreferenceKind = "not_available"
)

// Preference marks one (day, slot) cell on a faculty availability grid.
type Preference struct {
	ID        string         `db:"id" json:"id"`
	FacultyID string         `db:"faculty_id" json:"faculty_id"`
	Day       int            `db:"day_of_week" json:"day_of_week"`
	Slot      int            `db:"time_slot" json:"time_slot"`
	Kind      PreferenceKind `db:"kind" json:"kind"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
