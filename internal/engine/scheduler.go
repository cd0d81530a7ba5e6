package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
)

// Input is the consistent entity snapshot one scheduling run operates on.
// Occupied carries committed assignments from other scopes; their rooms and
// faculty slots are treated as fixed capacity consumers.
type Input struct {
	Units       []models.TeachingUnit
	Rooms       []models.Room
	Faculty     []models.Faculty
	Preferences []models.Preference
	Rules       []models.Rule
	Occupied    []models.Assignment
	Days        int
	SlotsPerDay int
}

// Options bounds the backtracking search.
type Options struct {
	BacktrackDepth  int
	BacktrackBudget int
}

// DefaultBacktrackDepth and DefaultBacktrackBudget bound the search when the
// caller passes zero values.
const (
	DefaultBacktrackDepth  = 5
	DefaultBacktrackBudget = 10000
)

// Stats summarises one scheduling run.
type Stats struct {
	Sessions   int     `json:"sessions"`
	Backtracks int     `json:"backtracks"`
	Candidates int     `json:"candidates_evaluated"`
	Penalty    float64 `json:"penalty"`
	Skipped    int     `json:"entities_skipped"`
}

// Result is a complete hard-constraint-satisfying assignment set.
type Result struct {
	Assignments []models.Assignment
	Stats       Stats
}

// UnplaceableUnit explains why a teaching unit could not be scheduled.
type UnplaceableUnit struct {
	UnitID     string          `json:"unit_id"`
	CourseID   string          `json:"course_id"`
	SectionID  string          `json:"section_id"`
	HourType   models.HourType `json:"hour_type"`
	Reason     string          `json:"reason"`
	Rejections map[string]int  `json:"rejections,omitempty"`
}

// InfeasibleError reports that the search budget was exhausted before every
// unit found a legal placement.
type InfeasibleError struct {
	Unplaceable []UnplaceableUnit
	Stats       Stats
}

func (e *InfeasibleError) Error() string {
	names := make([]string, 0, len(e.Unplaceable))
	for _, u := range e.Unplaceable {
		names = append(names, u.UnitID)
	}
	return fmt.Sprintf("no feasible timetable: %d unplaceable units (%s)", len(e.Unplaceable), strings.Join(names, ", "))
}

// Scheduler assigns every teaching session to a (day, slot, room, faculty)
// tuple via most-constrained-first greedy placement with bounded backtracking.
type Scheduler struct {
	logger *zap.Logger
}

// NewScheduler constructs a scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger}
}

// session is one single-slot teaching obligation expanded from a unit.
type session struct {
	id   string
	unit *models.TeachingUnit
}

type occKey struct {
	day  int
	slot int
	id   string
}

type state struct {
	roomBusy map[occKey]bool
	facBusy  map[occKey]bool
	facHours map[string]int
	secCore  map[occKey]bool
}

type frame struct {
	candidates []Candidate
	rejections map[string]int
	next       int
	chosen     Candidate
	placed     bool
}

// Schedule produces assignments for every unit in the input or an
// *InfeasibleError naming the units that could not be placed. Two runs over
// identical input and options produce identical output; ties between equal
// penalty candidates resolve by enumeration order (day, slot, room ID,
// faculty ID ascending).
func (s *Scheduler) Schedule(ctx context.Context, in Input, opts Options) (*Result, error) {
	if opts.BacktrackDepth <= 0 {
		opts.BacktrackDepth = DefaultBacktrackDepth
	}
	if opts.BacktrackBudget <= 0 {
		opts.BacktrackBudget = DefaultBacktrackBudget
	}
	if in.Days <= 0 {
		in.Days = models.MaxDay
	}
	if in.SlotsPerDay <= 0 {
		in.SlotsPerDay = 7
	}

	stats := Stats{}
	rooms, faculty := s.sanitize(&in, &stats)
	if len(in.Units) == 0 {
		return &Result{Assignments: []models.Assignment{}, Stats: stats}, nil
	}
	if len(rooms) == 0 || len(faculty) == 0 {
		return nil, &InfeasibleError{Unplaceable: s.blanketFailure(in.Units, len(rooms) == 0), Stats: stats}
	}

	facultyByID := make(map[string]*models.Faculty, len(faculty))
	for i := range faculty {
		facultyByID[faculty[i].ID] = faculty[i]
	}

	evaluator := NewEvaluator(in.Rules, in.Preferences, s.logger)
	sessions := expandSessions(in.Units)
	stats.Sessions = len(sessions)

	st := newState(in.Occupied)
	frames := make([]*frame, len(sessions))

	i := 0
	for i < len(sessions) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if frames[i] == nil {
			frames[i] = s.buildFrame(sessions[i], rooms, facultyByID, in, evaluator, st, &stats)
		}
		f := frames[i]

		f.placed = false
		for f.next < len(f.candidates) {
			cand := f.candidates[f.next]
			f.next++
			// state may have drifted since enumeration, re-check before apply
			if evaluator.Check(cand, st) != nil {
				continue
			}
			cand.penalty = evaluator.Penalty(cand, st)
			apply(st, cand, sessions[i])
			f.chosen = cand
			f.placed = true
			break
		}
		if f.placed {
			i++
			continue
		}

		stats.Backtracks++
		if stats.Backtracks > opts.BacktrackBudget || i == 0 {
			return nil, &InfeasibleError{
				Unplaceable: s.diagnose(sessions[i:], rooms, facultyByID, in, evaluator, st, frames[i]),
				Stats:       stats,
			}
		}

		retry := i - opts.BacktrackDepth
		if retry < 0 {
			retry = 0
		}
		for k := i - 1; k >= retry; k-- {
			undo(st, frames[k].chosen, sessions[k])
		}
		for k := retry + 1; k <= i; k++ {
			frames[k] = nil
		}
		i = retry
	}

	assignments := make([]models.Assignment, 0, len(sessions))
	for idx, sess := range sessions {
		chosen := frames[idx].chosen
		stats.Penalty += chosen.penalty
		assignments = append(assignments, models.Assignment{
			ID:        sess.id,
			UnitID:    sess.unit.ID,
			CourseID:  sess.unit.CourseID,
			SectionID: sess.unit.SectionID,
			Day:       chosen.Day,
			Slot:      chosen.Slot,
			RoomID:    chosen.Room.ID,
			FacultyID: chosen.Faculty.ID,
		})
	}
	sort.Slice(assignments, func(a, b int) bool {
		if assignments[a].Day != assignments[b].Day {
			return assignments[a].Day < assignments[b].Day
		}
		if assignments[a].Slot != assignments[b].Slot {
			return assignments[a].Slot < assignments[b].Slot
		}
		return assignments[a].ID < assignments[b].ID
	})

	return &Result{Assignments: assignments, Stats: stats}, nil
}

// sanitize drops malformed entities so one bad record never aborts a run.
func (s *Scheduler) sanitize(in *Input, stats *Stats) ([]*models.Room, []*models.Faculty) {
	rooms := make([]*models.Room, 0, len(in.Rooms))
	for i := range in.Rooms {
		room := &in.Rooms[i]
		if room.Capacity <= 0 || (room.Type != models.RoomTypeClassroom && room.Type != models.RoomTypeLab) {
			s.logger.Warn("skipping malformed room", zap.String("room_id", room.ID), zap.Int("capacity", room.Capacity))
			stats.Skipped++
			continue
		}
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(a, b int) bool { return rooms[a].ID < rooms[b].ID })

	faculty := make([]*models.Faculty, 0, len(in.Faculty))
	for i := range in.Faculty {
		member := &in.Faculty[i]
		if member.MaxHours < 0 || member.AssignedHours < 0 {
			s.logger.Warn("skipping malformed faculty record", zap.String("faculty_id", member.ID))
			stats.Skipped++
			continue
		}
		faculty = append(faculty, member)
	}
	sort.Slice(faculty, func(a, b int) bool { return faculty[a].ID < faculty[b].ID })

	prefs := make([]models.Preference, 0, len(in.Preferences))
	for _, pref := range in.Preferences {
		if pref.Day < models.MinDay || pref.Day > models.MaxDay || pref.Slot < 1 || pref.Slot > in.SlotsPerDay {
			s.logger.Warn("skipping out-of-grid preference", zap.String("faculty_id", pref.FacultyID), zap.Int("day", pref.Day), zap.Int("slot", pref.Slot))
			stats.Skipped++
			continue
		}
		prefs = append(prefs, pref)
	}
	in.Preferences = prefs

	units := make([]models.TeachingUnit, 0, len(in.Units))
	for _, unit := range in.Units {
		if unit.Hours <= 0 {
			s.logger.Warn("skipping unit with no required hours", zap.String("unit_id", unit.ID))
			stats.Skipped++
			continue
		}
		units = append(units, unit)
	}
	in.Units = units

	return rooms, faculty
}

// expandSessions splits each unit into single-slot sessions ordered
// most-constrained-first: lab units, then descending hours, then descending
// section size, then unit ID for determinism.
func expandSessions(units []models.TeachingUnit) []session {
	ordered := make([]*models.TeachingUnit, len(units))
	for i := range units {
		ordered[i] = &units[i]
	}
	sort.Slice(ordered, func(a, b int) bool {
		ua, ub := ordered[a], ordered[b]
		labA, labB := ua.HourType == models.HourLab, ub.HourType == models.HourLab
		if labA != labB {
			return labA
		}
		if ua.Hours != ub.Hours {
			return ua.Hours > ub.Hours
		}
		if ua.StudentCount != ub.StudentCount {
			return ua.StudentCount > ub.StudentCount
		}
		return ua.ID < ub.ID
	})

	var sessions []session
	for _, unit := range ordered {
		for ordinal := 1; ordinal <= unit.Hours; ordinal++ {
			sessions = append(sessions, session{
				id:   fmt.Sprintf("%s#%d", unit.ID, ordinal),
				unit: unit,
			})
		}
	}
	return sessions
}

func newState(occupied []models.Assignment) *state {
	st := &state{
		roomBusy: make(map[occKey]bool),
		facBusy:  make(map[occKey]bool),
		facHours: make(map[string]int),
		secCore:  make(map[occKey]bool),
	}
	for _, a := range occupied {
		st.roomBusy[occKey{a.Day, a.Slot, a.RoomID}] = true
		st.facBusy[occKey{a.Day, a.Slot, a.FacultyID}] = true
		st.facHours[a.FacultyID]++
	}
	return st
}

func (s *Scheduler) buildFrame(
	sess session,
	rooms []*models.Room,
	facultyByID map[string]*models.Faculty,
	in Input,
	evaluator *Evaluator,
	st *state,
	stats *Stats,
) *frame {
	f := &frame{rejections: make(map[string]int)}

	eligible := make([]*models.Faculty, 0, len(sess.unit.FacultyIDs))
	ids := append([]string(nil), sess.unit.FacultyIDs...)
	sort.Strings(ids)
	for _, id := range ids {
		if member, ok := facultyByID[id]; ok {
			eligible = append(eligible, member)
		}
	}
	if len(eligible) == 0 {
		f.rejections[ReasonNoFaculty]++
		return f
	}

	for day := models.MinDay; day <= in.Days; day++ {
		for slot := 1; slot <= in.SlotsPerDay; slot++ {
			for _, room := range rooms {
				for _, member := range eligible {
					cand := Candidate{Unit: sess.unit, Day: day, Slot: slot, Room: room, Faculty: member}
					stats.Candidates++
					if v := evaluator.Check(cand, st); v != nil {
						f.rejections[v.Code]++
						continue
					}
					cand.penalty = evaluator.Penalty(cand, st)
					f.candidates = append(f.candidates, cand)
				}
			}
		}
	}

	sort.SliceStable(f.candidates, func(a, b int) bool {
		return f.candidates[a].penalty < f.candidates[b].penalty
	})
	return f
}

func apply(st *state, c Candidate, sess session) {
	st.roomBusy[occKey{c.Day, c.Slot, c.Room.ID}] = true
	st.facBusy[occKey{c.Day, c.Slot, c.Faculty.ID}] = true
	st.facHours[c.Faculty.ID]++
	if sess.unit.Core {
		st.secCore[occKey{c.Day, c.Slot, sess.unit.SectionID}] = true
	}
}

func undo(st *state, c Candidate, sess session) {
	delete(st.roomBusy, occKey{c.Day, c.Slot, c.Room.ID})
	delete(st.facBusy, occKey{c.Day, c.Slot, c.Faculty.ID})
	if st.facHours[c.Faculty.ID] > 0 {
		st.facHours[c.Faculty.ID]--
	}
	if sess.unit.Core {
		delete(st.secCore, occKey{c.Day, c.Slot, sess.unit.SectionID})
	}
}

// diagnose re-enumerates candidates for every still-unplaced unit so the
// infeasibility report names the predicate that rejected each of them.
func (s *Scheduler) diagnose(
	remaining []session,
	rooms []*models.Room,
	facultyByID map[string]*models.Faculty,
	in Input,
	evaluator *Evaluator,
	st *state,
	stuck *frame,
) []UnplaceableUnit {
	seen := make(map[string]bool)
	var result []UnplaceableUnit
	for idx, sess := range remaining {
		if seen[sess.unit.ID] {
			continue
		}
		seen[sess.unit.ID] = true

		f := stuck
		if idx > 0 || f == nil {
			f = s.buildFrame(sess, rooms, facultyByID, in, evaluator, st, &Stats{})
		}
		result = append(result, UnplaceableUnit{
			UnitID:     sess.unit.ID,
			CourseID:   sess.unit.CourseID,
			SectionID:  sess.unit.SectionID,
			HourType:   sess.unit.HourType,
			Reason:     reasonMessage(sess.unit, dominantReason(f.rejections)),
			Rejections: f.rejections,
		})
	}
	return result
}

func (s *Scheduler) blanketFailure(units []models.TeachingUnit, noRooms bool) []UnplaceableUnit {
	reason := "no viable faculty after validation"
	code := ReasonNoFaculty
	if noRooms {
		reason = "no viable rooms after validation"
		code = ReasonRoomCapacity
	}
	result := make([]UnplaceableUnit, 0, len(units))
	for _, unit := range units {
		result = append(result, UnplaceableUnit{
			UnitID:     unit.ID,
			CourseID:   unit.CourseID,
			SectionID:  unit.SectionID,
			HourType:   unit.HourType,
			Reason:     reason,
			Rejections: map[string]int{code: 1},
		})
	}
	return result
}

func dominantReason(rejections map[string]int) string {
	best := ""
	bestCount := -1
	for code, count := range rejections {
		if count > bestCount || (count == bestCount && code < best) {
			best = code
			bestCount = count
		}
	}
	return best
}

func reasonMessage(unit *models.TeachingUnit, code string) string {
	switch code {
	case ReasonRoomCapacity:
		return fmt.Sprintf("no room capacity >= %d", unit.StudentCount)
	case ReasonRoomType:
		return fmt.Sprintf("no %s room available", RequiredRoomType(unit.HourType))
	case ReasonRoomBusy:
		return "all compatible rooms are booked"
	case ReasonFacultyBusy:
		return "all eligible faculty are booked"
	case ReasonFacultyUnavailable:
		return "eligible faculty are unavailable in every open slot"
	case ReasonFacultyOverload:
		return "eligible faculty would exceed max weekly hours"
	case ReasonNoFaculty:
		return "no eligible faculty for course"
	default:
		return "no feasible placement"
	}
}
