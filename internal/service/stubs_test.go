package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
)

type entityStub struct {
	departments map[string]*models.Department
	semesters   map[string]*models.Semester
	sections    map[string]*models.Section
	faculty     map[string]*models.Faculty
	courses     []models.Course
	rooms       []models.Room
	facultyList []models.Faculty
	rules       []models.Rule
}

func newEntityStub() *entityStub {
	section := &models.Section{ID: "sec-a", Name: "A", DepartmentID: "dep-1", SemesterID: "sem-3", StudentCount: 40}
	faculty := []models.Faculty{
		{ID: "f1", Name: "Dr. Rao", DepartmentID: "dep-1", MaxHours: 16},
		{ID: "f2", Name: "Prof. Iyer", DepartmentID: "dep-1", MaxHours: 16},
	}
	return &entityStub{
		departments: map[string]*models.Department{"dep-1": {ID: "dep-1", Code: "CSE", Name: "Computer Science"}},
		semesters:   map[string]*models.Semester{"sem-3": {ID: "sem-3", Number: 3, Year: "2026"}},
		sections:    map[string]*models.Section{"sec-a": section},
		faculty:     map[string]*models.Faculty{"f1": &faculty[0], "f2": &faculty[1]},
		courses: []models.Course{
			{ID: "c1", Code: "CS201", Name: "Data Structures", DepartmentID: "dep-1", SemesterID: "sem-3", TheoryHours: 3, LabHours: 2},
			{ID: "c2", Code: "CS202", Name: "Discrete Math", DepartmentID: "dep-1", SemesterID: "sem-3", TheoryHours: 3, Elective: true},
		},
		rooms: []models.Room{
			{ID: "r1", Name: "LH-101", Type: models.RoomTypeClassroom, Capacity: 60},
			{ID: "r2", Name: "LAB-1", Type: models.RoomTypeLab, Capacity: 45},
		},
		facultyList: faculty,
		rules:       []models.Rule{{ID: "rule-1", Code: models.RulePreferredSlot, Weight: 1, Active: true}},
	}
}

func (s *entityStub) FindDepartment(_ context.Context, id string) (*models.Department, error) {
	if d, ok := s.departments[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func (s *entityStub) FindSemester(_ context.Context, id string) (*models.Semester, error) {
	if sem, ok := s.semesters[id]; ok {
		return sem, nil
	}
	return nil, sql.ErrNoRows
}

func (s *entityStub) FindSection(_ context.Context, id string) (*models.Section, error) {
	if sec, ok := s.sections[id]; ok {
		return sec, nil
	}
	return nil, sql.ErrNoRows
}

func (s *entityStub) FindFaculty(_ context.Context, id string) (*models.Faculty, error) {
	if f, ok := s.faculty[id]; ok {
		return f, nil
	}
	return nil, sql.ErrNoRows
}

func (s *entityStub) UpdateFacultyMaxHours(_ context.Context, id string, maxHours int) error {
	f, ok := s.faculty[id]
	if !ok {
		return sql.ErrNoRows
	}
	f.MaxHours = maxHours
	return nil
}

func (s *entityStub) ListCourses(_ context.Context, departmentID, semesterID string) ([]models.Course, error) {
	var result []models.Course
	for _, c := range s.courses {
		if c.DepartmentID == departmentID && c.SemesterID == semesterID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *entityStub) ListRooms(_ context.Context) ([]models.Room, error) {
	return append([]models.Room(nil), s.rooms...), nil
}

func (s *entityStub) ListFaculty(_ context.Context, departmentID string) ([]models.Faculty, error) {
	var result []models.Faculty
	for _, f := range s.facultyList {
		if f.DepartmentID == departmentID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (s *entityStub) ListRules(_ context.Context) ([]models.Rule, error) {
	return append([]models.Rule(nil), s.rules...), nil
}

type prefStub struct {
	mu    sync.Mutex
	items []models.Preference
}

func (s *prefStub) ListAll(_ context.Context) ([]models.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Preference(nil), s.items...), nil
}

func (s *prefStub) ListByFaculty(_ context.Context, facultyID string) ([]models.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.Preference
	for _, p := range s.items {
		if p.FacultyID == facultyID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *prefStub) ReplaceForFaculty(_ context.Context, facultyID string, prefs []models.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, p := range s.items {
		if p.FacultyID != facultyID {
			kept = append(kept, p)
		}
	}
	s.items = append(kept, prefs...)
	return nil
}

type snapshotStub struct {
	mu          sync.Mutex
	active      map[string]*models.Snapshot
	history     map[string][]models.Snapshot
	assignments map[string][]models.Assignment
	// otherScopes holds the per-call results of ListActiveAssignmentsExcept;
	// the last entry repeats once the sequence is exhausted
	otherScopes [][]models.Assignment
	calls       int
	replaceErr  error
}

func newSnapshotStub() *snapshotStub {
	return &snapshotStub{
		active:      make(map[string]*models.Snapshot),
		history:     make(map[string][]models.Snapshot),
		assignments: make(map[string][]models.Assignment),
	}
}

func (s *snapshotStub) Replace(_ context.Context, scope models.Scope, assignments []models.Assignment, meta types.JSONText) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaceErr != nil {
		return nil, s.replaceErr
	}
	version := 1
	if prev, ok := s.active[scope.Key()]; ok {
		version = prev.Version + 1
		prev.Status = models.SnapshotStatusArchived
	}
	snapshot := &models.Snapshot{
		ID:           uuid.NewString(),
		DepartmentID: scope.DepartmentID,
		SemesterID:   scope.SemesterID,
		SectionID:    scope.SectionID,
		Version:      version,
		Status:       models.SnapshotStatusActive,
		Meta:         meta,
		CreatedAt:    time.Now().UTC(),
	}
	for i := range assignments {
		assignments[i].SnapshotID = snapshot.ID
	}
	s.active[scope.Key()] = snapshot
	s.history[scope.Key()] = append(s.history[scope.Key()], *snapshot)
	s.assignments[snapshot.ID] = append([]models.Assignment(nil), assignments...)
	return snapshot, nil
}

func (s *snapshotStub) ListVersions(_ context.Context, scope models.Scope) ([]models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.history[scope.Key()]
	result := make([]models.Snapshot, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		entry := history[i]
		if active, ok := s.active[scope.Key()]; !ok || active.ID != entry.ID {
			entry.Status = models.SnapshotStatusArchived
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *snapshotStub) FindActive(_ context.Context, scope models.Scope) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot, ok := s.active[scope.Key()]; ok {
		return snapshot, nil
	}
	return nil, sql.ErrNoRows
}

func (s *snapshotStub) ListAssignments(_ context.Context, snapshotID string) ([]models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Assignment(nil), s.assignments[snapshotID]...), nil
}

func (s *snapshotStub) ListActiveAssignmentsExcept(_ context.Context, _ models.Scope) ([]models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.otherScopes) == 0 {
		return nil, nil
	}
	idx := s.calls
	if idx >= len(s.otherScopes) {
		idx = len(s.otherScopes) - 1
	}
	s.calls++
	return append([]models.Assignment(nil), s.otherScopes[idx]...), nil
}

type conflictStub struct {
	mu       sync.Mutex
	stored   map[string][]models.Conflict
	resolved map[string]bool
}

func newConflictStub() *conflictStub {
	return &conflictStub{
		stored:   make(map[string][]models.Conflict),
		resolved: make(map[string]bool),
	}
}

func (s *conflictStub) ReplaceForSnapshot(_ context.Context, snapshotID string, conflicts []models.Conflict) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]models.Conflict, 0, len(conflicts))
	for _, c := range conflicts {
		if s.resolved[c.ID] {
			c.Status = models.ConflictResolved
		}
		kept = append(kept, c)
	}
	s.stored[snapshotID] = kept
	return nil
}

func (s *conflictStub) ListBySnapshot(_ context.Context, snapshotID string, status models.ConflictStatus) ([]models.Conflict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.Conflict
	for _, c := range s.stored[snapshotID] {
		if status != "" && c.Status != status {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (s *conflictStub) Resolve(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for snapshotID, conflicts := range s.stored {
		for i := range conflicts {
			if conflicts[i].ID == id {
				conflicts[i].Status = models.ConflictResolved
				found = true
			}
		}
		s.stored[snapshotID] = conflicts
	}
	if !found {
		return sql.ErrNoRows
	}
	s.resolved[id] = true
	return nil
}

type scanQueuerStub struct {
	mu     sync.Mutex
	scopes []models.Scope
	err    error
}

func (s *scanQueuerStub) EnqueueScan(scope models.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.scopes = append(s.scopes, scope)
	return nil
}
