package models

import "time"

// Rule codes understood by the constraint model. Rows with other codes are
// ignored with a warning.
const (
	RulePreferredSlot   = "PREFERRED_SLOT"
	RuleConsecutiveCore = "CONSECUTIVE_CORE"
	RuleLoadBalance     = "LOAD_BALANCE"
)

// Rule is an externally configured soft-constraint weight.
type Rule struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Weight      float64   `db:"weight" json:"weight"`
	Hard        bool      `db:"hard" json:"hard"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
