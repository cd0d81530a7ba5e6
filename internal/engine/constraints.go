package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
)

// Hard predicate codes, used both for candidate rejection tallies and for
// infeasibility diagnostics.
const (
	ReasonRoomCapacity       = "ROOM_CAPACITY"
	ReasonRoomType           = "ROOM_TYPE"
	ReasonRoomBusy           = "ROOM_BUSY"
	ReasonFacultyBusy        = "FACULTY_BUSY"
	ReasonFacultyUnavailable = "FACULTY_UNAVAILABLE"
	ReasonFacultyOverload    = "FACULTY_OVERLOAD"
	ReasonNoFaculty          = "NO_ELIGIBLE_FACULTY"
)

// Violation reports which hard predicate rejected a candidate.
type Violation struct {
	Code   string
	Detail string
}

// Candidate is one prospective placement of a teaching session.
type Candidate struct {
	Unit    *models.TeachingUnit
	Day     int
	Slot    int
	Room    *models.Room
	Faculty *models.Faculty

	penalty float64
}

type prefKey struct {
	facultyID string
	day       int
	slot      int
}

// Evaluator applies the hard predicates and prices soft penalties for a
// candidate against the current partial timetable. Hard predicates are
// constitutive and always enforced; Rule rows only tune soft weights.
type Evaluator struct {
	weights map[string]float64
	prefs   map[prefKey]models.PreferenceKind
	logger  *zap.Logger
}

// NewEvaluator builds an evaluator from the configured rule set and faculty
// preferences. Unrecognized rule codes are logged and skipped.
func NewEvaluator(rules []models.Rule, prefs []models.Preference, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}

	weights := map[string]float64{
		models.RulePreferredSlot:   1,
		models.RuleConsecutiveCore: 2,
		models.RuleLoadBalance:     1,
	}
	for _, rule := range rules {
		switch rule.Code {
		case models.RulePreferredSlot, models.RuleConsecutiveCore, models.RuleLoadBalance:
			if !rule.Active {
				weights[rule.Code] = 0
				continue
			}
			weights[rule.Code] = rule.Weight
		default:
			logger.Warn("ignoring unrecognized scheduling rule", zap.String("code", rule.Code))
		}
	}

	index := make(map[prefKey]models.PreferenceKind, len(prefs))
	for _, pref := range prefs {
		index[prefKey{pref.FacultyID, pref.Day, pref.Slot}] = pref.Kind
	}

	return &Evaluator{weights: weights, prefs: index, logger: logger}
}

// Check returns the first violated hard predicate, or nil when the candidate
// is legal against the given state.
func (e *Evaluator) Check(c Candidate, st *state) *Violation {
	if c.Room.Capacity < c.Unit.StudentCount {
		return &Violation{
			Code:   ReasonRoomCapacity,
			Detail: fmt.Sprintf("room %s capacity %d < %d students", c.Room.ID, c.Room.Capacity, c.Unit.StudentCount),
		}
	}
	if required := RequiredRoomType(c.Unit.HourType); c.Room.Type != required {
		return &Violation{
			Code:   ReasonRoomType,
			Detail: fmt.Sprintf("room %s is %s, unit needs %s", c.Room.ID, c.Room.Type, required),
		}
	}
	if st.roomBusy[occKey{c.Day, c.Slot, c.Room.ID}] {
		return &Violation{
			Code:   ReasonRoomBusy,
			Detail: fmt.Sprintf("room %s already booked at day %d slot %d", c.Room.ID, c.Day, c.Slot),
		}
	}
	if st.facBusy[occKey{c.Day, c.Slot, c.Faculty.ID}] {
		return &Violation{
			Code:   ReasonFacultyBusy,
			Detail: fmt.Sprintf("faculty %s already teaching at day %d slot %d", c.Faculty.ID, c.Day, c.Slot),
		}
	}
	if e.prefs[prefKey{c.Faculty.ID, c.Day, c.Slot}] == models.PreferenceNotAvailable {
		return &Violation{
			Code:   ReasonFacultyUnavailable,
			Detail: fmt.Sprintf("faculty %s not available at day %d slot %d", c.Faculty.ID, c.Day, c.Slot),
		}
	}
	if c.Faculty.MaxHours > 0 {
		committed := c.Faculty.AssignedHours + st.facHours[c.Faculty.ID]
		if committed+1 > c.Faculty.MaxHours {
			return &Violation{
				Code:   ReasonFacultyOverload,
				Detail: fmt.Sprintf("faculty %s at %d/%d hours", c.Faculty.ID, committed, c.Faculty.MaxHours),
			}
		}
	}
	return nil
}

// Penalty prices the soft constraints for a legal candidate. Lower is better;
// a preferred slot yields a negative contribution.
func (e *Evaluator) Penalty(c Candidate, st *state) float64 {
	var penalty float64

	if e.prefs[prefKey{c.Faculty.ID, c.Day, c.Slot}] == models.PreferencePreferred {
		penalty -= e.weights[models.RulePreferredSlot]
	}

	if c.Unit.Core {
		if st.secCore[occKey{c.Day, c.Slot - 1, c.Unit.SectionID}] || st.secCore[occKey{c.Day, c.Slot + 1, c.Unit.SectionID}] {
			penalty += e.weights[models.RuleConsecutiveCore]
		}
	}

	if c.Faculty.MaxHours > 0 {
		after := c.Faculty.AssignedHours + st.facHours[c.Faculty.ID] + 1
		if shortfall := c.Faculty.MaxHours - after; shortfall > 0 {
			penalty += e.weights[models.RuleLoadBalance] * float64(shortfall) / float64(c.Faculty.MaxHours)
		}
	}

	return penalty
}

// RequiredRoomType maps a teaching hour type to the room type it needs.
func RequiredRoomType(hourType models.HourType) models.RoomType {
	if hourType == models.HourLab {
		return models.RoomTypeLab
	}
	return models.RoomTypeClassroom
}
