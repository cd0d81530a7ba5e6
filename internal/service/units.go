package service

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
)

// deriveUnits expands each course of the section into per-hour-type teaching
// units. Eligible faculty are the course department's staff. Units are never
// persisted; two derivations over the same entities are identical.
func deriveUnits(courses []models.Course, section *models.Section, faculty []models.Faculty) []models.TeachingUnit {
	facultyIDs := make([]string, 0, len(faculty))
	for _, member := range faculty {
		facultyIDs = append(facultyIDs, member.ID)
	}
	sort.Strings(facultyIDs)

	var units []models.TeachingUnit
	add := func(course models.Course, hourType models.HourType, hours int) {
		if hours <= 0 {
			return
		}
		units = append(units, models.TeachingUnit{
			ID:           fmt.Sprintf("%s:%s:%s", course.ID, section.ID, hourType),
			CourseID:     course.ID,
			CourseName:   course.Name,
			SectionID:    section.ID,
			HourType:     hourType,
			Hours:        hours,
			Core:         !course.Elective,
			StudentCount: section.StudentCount,
			FacultyIDs:   facultyIDs,
		})
	}

	for _, course := range courses {
		add(course, models.HourTheory, course.TheoryHours)
		add(course, models.HourLab, course.LabHours)
		add(course, models.HourTutorial, course.TutorialHours)
	}

	sort.Slice(units, func(a, b int) bool { return units[a].ID < units[b].ID })
	return units
}

// buildAssignmentViews joins assignments with entity names for API output.
func buildAssignmentViews(
	assignments []models.Assignment,
	units []models.TeachingUnit,
	rooms []models.Room,
	faculty []models.Faculty,
) []dto.AssignmentView {
	unitsByID := make(map[string]models.TeachingUnit, len(units))
	for _, unit := range units {
		unitsByID[unit.ID] = unit
	}
	roomNames := make(map[string]string, len(rooms))
	for _, room := range rooms {
		roomNames[room.ID] = room.Name
	}
	facultyNames := make(map[string]string, len(faculty))
	for _, member := range faculty {
		facultyNames[member.ID] = member.Name
	}

	views := make([]dto.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		unit := unitsByID[a.UnitID]
		views = append(views, dto.AssignmentView{
			ID:          a.ID,
			CourseID:    a.CourseID,
			CourseName:  unit.CourseName,
			SectionID:   a.SectionID,
			Day:         a.Day,
			DayName:     models.DayName(a.Day),
			Slot:        a.Slot,
			SlotLabel:   models.SlotLabel(a.Slot),
			RoomID:      a.RoomID,
			RoomName:    roomNames[a.RoomID],
			FacultyID:   a.FacultyID,
			FacultyName: facultyNames[a.FacultyID],
			HourType:    string(unit.HourType),
		})
	}
	return views
}

// scopeLocks serialises scheduling runs per scope. Runs on different scopes
// proceed concurrently.
type scopeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *scopeLocks) Lock(key string) func() {
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
