package dto

import "github.com/Pranathi-N-47/timeweaver-engine/internal/models"

// PreferenceCell marks one (day, slot) cell of a faculty availability grid.
type PreferenceCell struct {
	Day  int                   `json:"dayOfWeek" validate:"required,min=1,max=5"`
	Slot int                   `json:"timeSlot" validate:"required,min=1"`
	Kind models.PreferenceKind `json:"kind" validate:"required,oneof=preferred not_available"`
}

// ReplacePreferencesRequest swaps a faculty member's whole availability grid.
// MaxHours, when set, updates the weekly teaching cap as well.
type ReplacePreferencesRequest struct {
	Cells    []PreferenceCell `json:"cells" validate:"dive"`
	MaxHours int              `json:"maxHours" validate:"omitempty,min=1"`
}

// PreferenceGridResponse returns the stored grid for one faculty member.
type PreferenceGridResponse struct {
	FacultyID string           `json:"facultyId"`
	MaxHours  int              `json:"maxHours"`
	Cells     []PreferenceCell `json:"cells"`
}
