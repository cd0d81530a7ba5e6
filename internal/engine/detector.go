package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
)

// ScanInput is the committed timetable plus the entity context needed to
// judge it. Scans are read-only over this input.
type ScanInput struct {
	Assignments []models.Assignment
	Units       []models.TeachingUnit
	Rooms       []models.Room
	Faculty     []models.Faculty
	Preferences []models.Preference
}

// Detector walks a committed timetable and reports every constraint
// violation it finds. Scanning never mutates assignments and never resolves
// anything; the same input always yields the same conflicts with the same
// IDs.
type Detector struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewDetector constructs a detector.
func NewDetector(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{logger: logger, now: time.Now}
}

// Scan runs every detection pass and returns the conflicts sorted by type
// then ID.
func (d *Detector) Scan(in ScanInput) []models.Conflict {
	roomsByID := make(map[string]*models.Room, len(in.Rooms))
	for i := range in.Rooms {
		roomsByID[in.Rooms[i].ID] = &in.Rooms[i]
	}
	facultyByID := make(map[string]*models.Faculty, len(in.Faculty))
	for i := range in.Faculty {
		facultyByID[in.Faculty[i].ID] = &in.Faculty[i]
	}
	unitsByID := make(map[string]*models.TeachingUnit, len(in.Units))
	for i := range in.Units {
		unitsByID[in.Units[i].ID] = &in.Units[i]
	}
	unavailable := make(map[prefKey]bool)
	for _, pref := range in.Preferences {
		if pref.Kind == models.PreferenceNotAvailable {
			unavailable[prefKey{pref.FacultyID, pref.Day, pref.Slot}] = true
		}
	}

	assignments := append([]models.Assignment(nil), in.Assignments...)
	sort.Slice(assignments, func(a, b int) bool { return assignments[a].ID < assignments[b].ID })

	detected := d.now()
	var conflicts []models.Conflict
	conflicts = append(conflicts, d.roomDoubleBookings(assignments, facultyByID, detected)...)
	conflicts = append(conflicts, d.facultyOverlaps(assignments, facultyByID, detected)...)
	conflicts = append(conflicts, d.facultyUnavailable(assignments, facultyByID, unavailable, detected)...)
	conflicts = append(conflicts, d.capacityOverflows(assignments, unitsByID, roomsByID, detected)...)
	conflicts = append(conflicts, d.sectionOverlaps(assignments, unitsByID, detected)...)

	sort.Slice(conflicts, func(a, b int) bool {
		if conflicts[a].Type != conflicts[b].Type {
			return conflicts[a].Type < conflicts[b].Type
		}
		return conflicts[a].ID < conflicts[b].ID
	})
	return conflicts
}

func (d *Detector) roomDoubleBookings(assignments []models.Assignment, facultyByID map[string]*models.Faculty, detected time.Time) []models.Conflict {
	groups := make(map[occKey][]models.Assignment)
	for _, a := range assignments {
		key := occKey{a.Day, a.Slot, a.RoomID}
		groups[key] = append(groups[key], a)
	}

	var conflicts []models.Conflict
	for key, group := range groups {
		if len(group) < 2 {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			ID:       conflictID(models.ConflictRoomDoubleBooking, assignmentIDs(group)),
			Type:     models.ConflictRoomDoubleBooking,
			Severity: models.SeverityCritical,
			Description: fmt.Sprintf("room %s booked %d times on %s slot %d",
				key.id, len(group), models.DayName(key.day), key.slot),
			AssignmentIDs: assignmentIDs(group),
			Parties:       facultyNames(group, facultyByID),
			Status:        models.ConflictOpen,
			DetectedAt:    detected,
		})
	}
	return conflicts
}

func (d *Detector) facultyOverlaps(assignments []models.Assignment, facultyByID map[string]*models.Faculty, detected time.Time) []models.Conflict {
	groups := make(map[occKey][]models.Assignment)
	for _, a := range assignments {
		key := occKey{a.Day, a.Slot, a.FacultyID}
		groups[key] = append(groups[key], a)
	}

	var conflicts []models.Conflict
	for key, group := range groups {
		if len(group) < 2 {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			ID:       conflictID(models.ConflictFacultyOverlap, assignmentIDs(group)),
			Type:     models.ConflictFacultyOverlap,
			Severity: models.SeverityCritical,
			Description: fmt.Sprintf("%s teaches %d sessions on %s slot %d",
				facultyName(key.id, facultyByID), len(group), models.DayName(key.day), key.slot),
			AssignmentIDs: assignmentIDs(group),
			Parties:       []string{facultyName(key.id, facultyByID)},
			Status:        models.ConflictOpen,
			DetectedAt:    detected,
		})
	}
	return conflicts
}

func (d *Detector) facultyUnavailable(assignments []models.Assignment, facultyByID map[string]*models.Faculty, unavailable map[prefKey]bool, detected time.Time) []models.Conflict {
	var conflicts []models.Conflict
	for _, a := range assignments {
		if !unavailable[prefKey{a.FacultyID, a.Day, a.Slot}] {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			ID:       conflictID(models.ConflictFacultyUnavailable, []string{a.ID}),
			Type:     models.ConflictFacultyUnavailable,
			Severity: models.SeverityCritical,
			Description: fmt.Sprintf("%s is marked not available on %s slot %d",
				facultyName(a.FacultyID, facultyByID), models.DayName(a.Day), a.Slot),
			AssignmentIDs: []string{a.ID},
			Parties:       []string{facultyName(a.FacultyID, facultyByID)},
			Status:        models.ConflictOpen,
			DetectedAt:    detected,
		})
	}
	return conflicts
}

func (d *Detector) capacityOverflows(assignments []models.Assignment, unitsByID map[string]*models.TeachingUnit, roomsByID map[string]*models.Room, detected time.Time) []models.Conflict {
	var conflicts []models.Conflict
	for _, a := range assignments {
		unit, ok := unitsByID[a.UnitID]
		if !ok {
			d.logger.Warn("assignment references unknown unit", zap.String("assignment_id", a.ID), zap.String("unit_id", a.UnitID))
			continue
		}
		room, ok := roomsByID[a.RoomID]
		if !ok {
			d.logger.Warn("assignment references unknown room", zap.String("assignment_id", a.ID), zap.String("room_id", a.RoomID))
			continue
		}
		if room.Capacity >= unit.StudentCount {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			ID:       conflictID(models.ConflictCapacityOverflow, []string{a.ID}),
			Type:     models.ConflictCapacityOverflow,
			Severity: models.SeverityWarning,
			Description: fmt.Sprintf("room %s capacity %d below %d students of %s",
				room.ID, room.Capacity, unit.StudentCount, unit.CourseName),
			AssignmentIDs: []string{a.ID},
			Parties:       []string{room.Name},
			Status:        models.ConflictOpen,
			DetectedAt:    detected,
		})
	}
	return conflicts
}

// sectionOverlaps flags back-to-back core sessions for the same section on
// the same day, a fatigue warning rather than a hard clash.
func (d *Detector) sectionOverlaps(assignments []models.Assignment, unitsByID map[string]*models.TeachingUnit, detected time.Time) []models.Conflict {
	core := make(map[occKey][]models.Assignment)
	for _, a := range assignments {
		unit, ok := unitsByID[a.UnitID]
		if !ok || !unit.Core {
			continue
		}
		key := occKey{a.Day, a.Slot, a.SectionID}
		core[key] = append(core[key], a)
	}

	var conflicts []models.Conflict
	for key, cell := range core {
		for _, a := range cell {
			for _, next := range core[occKey{key.day, key.slot + 1, key.id}] {
				pair := []string{a.ID, next.ID}
				conflicts = append(conflicts, models.Conflict{
					ID:       conflictID(models.ConflictSectionOverlap, pair),
					Type:     models.ConflictSectionOverlap,
					Severity: models.SeverityWarning,
					Description: fmt.Sprintf("section %s has consecutive core sessions on %s slots %d-%d",
						key.id, models.DayName(key.day), key.slot, key.slot+1),
					AssignmentIDs: pair,
					Parties:       []string{key.id},
					Status:        models.ConflictOpen,
					DetectedAt:    detected,
				})
			}
		}
	}
	return conflicts
}

// conflictID derives a stable identifier from the conflict type and the
// sorted assignment IDs involved, so rescans reproduce the same IDs.
func conflictID(kind models.ConflictType, ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(string(kind) + "|" + strings.Join(sorted, "|")))
	return hex.EncodeToString(sum[:8])
}

func assignmentIDs(group []models.Assignment) []string {
	ids := make([]string, 0, len(group))
	for _, a := range group {
		ids = append(ids, a.ID)
	}
	sort.Strings(ids)
	return ids
}

func facultyName(id string, facultyByID map[string]*models.Faculty) string {
	if member, ok := facultyByID[id]; ok && member.Name != "" {
		return member.Name
	}
	return id
}

func facultyNames(group []models.Assignment, facultyByID map[string]*models.Faculty) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range group {
		name := facultyName(a.FacultyID, facultyByID)
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
