package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/engine"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/config"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
)

func schedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{Days: 5, SlotsPerDay: 7, BacktrackDepth: 5, BacktrackBudget: 10000}
}

func generateRequest() dto.GenerateTimetableRequest {
	return dto.GenerateTimetableRequest{DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a"}
}

func newGenerator(entities *entityStub, snapshots *snapshotStub) *GeneratorService {
	return NewGeneratorService(
		entities, &prefStub{}, snapshots,
		engine.NewScheduler(nil), nil,
		validator.New(), zap.NewNop(), schedulerConfig())
}

func TestGeneratorServiceGeneratePublishesSnapshot(t *testing.T) {
	entities := newEntityStub()
	snapshots := newSnapshotStub()
	svc := newGenerator(entities, snapshots)

	resp, err := svc.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	require.Equal(t, "success", resp.Status)
	require.NotNil(t, resp.Timetable)
	assert.Equal(t, 1, resp.Timetable.Version)
	// c1 theory 3 + lab 2, c2 theory 3
	assert.Len(t, resp.Timetable.Assignments, 8)
	assert.Equal(t, 8, resp.Stats.Sessions)

	for _, a := range resp.Timetable.Assignments {
		assert.NotEmpty(t, a.CourseName)
		assert.NotEmpty(t, a.RoomName)
		assert.NotEmpty(t, a.FacultyName)
		assert.NotEmpty(t, a.SlotLabel)
	}
}

func TestGeneratorServiceGenerateBumpsVersion(t *testing.T) {
	entities := newEntityStub()
	snapshots := newSnapshotStub()
	svc := newGenerator(entities, snapshots)

	_, err := svc.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	resp, err := svc.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Timetable.Version)
}

func TestGeneratorServiceGenerateUnknownSection(t *testing.T) {
	entities := newEntityStub()
	svc := newGenerator(entities, newSnapshotStub())

	req := generateRequest()
	req.SectionID = "ghost"
	_, err := svc.Generate(context.Background(), req)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGeneratorServiceGenerateSectionScopeMismatch(t *testing.T) {
	entities := newEntityStub()
	entities.sections["sec-x"] = &models.Section{ID: "sec-x", DepartmentID: "dep-other", SemesterID: "sem-3", StudentCount: 30}
	svc := newGenerator(entities, newSnapshotStub())

	req := generateRequest()
	req.SectionID = "sec-x"
	_, err := svc.Generate(context.Background(), req)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGeneratorServiceGenerateInfeasible(t *testing.T) {
	entities := newEntityStub()
	// every room is smaller than the section
	entities.rooms = []models.Room{
		{ID: "r1", Name: "LH-101", Type: models.RoomTypeClassroom, Capacity: 20},
		{ID: "r2", Name: "LAB-1", Type: models.RoomTypeLab, Capacity: 20},
	}
	snapshots := newSnapshotStub()
	svc := newGenerator(entities, snapshots)

	resp, err := svc.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.Equal(t, "infeasible", resp.Status)
	assert.Nil(t, resp.Timetable)
	assert.NotEmpty(t, resp.Unplaceable)
	assert.Contains(t, resp.Unplaceable[0].Reason, "no room capacity >= 40")
	assert.Empty(t, snapshots.active)
}

func TestGeneratorServiceGenerateNoCourses(t *testing.T) {
	entities := newEntityStub()
	entities.courses = nil
	svc := newGenerator(entities, newSnapshotStub())

	_, err := svc.Generate(context.Background(), generateRequest())
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestGeneratorServiceGenerateRetriesAfterConcurrentCommit(t *testing.T) {
	entities := newEntityStub()
	entities.courses = []models.Course{
		{ID: "c1", Code: "CS201", Name: "Data Structures", DepartmentID: "dep-1", SemesterID: "sem-3", TheoryHours: 1},
	}
	snapshots := newSnapshotStub()
	// another scope commits a clashing slot between the pre-run read and the
	// first commit attempt, then stays quiet
	clash := []models.Assignment{{ID: "ext#1", Day: 1, Slot: 1, RoomID: "r-ext", FacultyID: "f1"}}
	snapshots.otherScopes = [][]models.Assignment{nil, clash, clash}
	svc := newGenerator(entities, snapshots)

	resp, err := svc.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	require.Equal(t, "success", resp.Status)
	for _, a := range resp.Timetable.Assignments {
		if a.FacultyID == "f1" {
			assert.False(t, a.Day == 1 && a.Slot == 1, "clashing slot was kept")
		}
	}
}

func TestGeneratorServiceGenerateConcurrentModification(t *testing.T) {
	entities := newEntityStub()
	entities.courses = []models.Course{
		{ID: "c1", Code: "CS201", Name: "Data Structures", DepartmentID: "dep-1", SemesterID: "sem-3", TheoryHours: 1},
	}
	entities.facultyList = entities.facultyList[:1]
	snapshots := newSnapshotStub()
	// the other scope keeps landing on whatever slot this run picks: first
	// (1,1), then after the retry moves to (1,2) that one too
	snapshots.otherScopes = [][]models.Assignment{
		nil,
		{{ID: "ext#1", Day: 1, Slot: 1, RoomID: "r-ext", FacultyID: "f1"}},
		{
			{ID: "ext#1", Day: 1, Slot: 1, RoomID: "r-ext", FacultyID: "f1"},
			{ID: "ext#2", Day: 1, Slot: 2, RoomID: "r-ext", FacultyID: "f1"},
		},
	}
	svc := newGenerator(entities, snapshots)

	_, err := svc.Generate(context.Background(), generateRequest())
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrConcurrentModification.Code, appErr.Code)
	assert.Empty(t, snapshots.active)
}

func TestGeneratorServiceGenerateValidatesPayload(t *testing.T) {
	svc := newGenerator(newEntityStub(), newSnapshotStub())

	_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{DepartmentID: "dep-1"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
