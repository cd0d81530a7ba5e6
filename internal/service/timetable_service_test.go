package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
)

func newTimetableService(entities *entityStub, snapshots *snapshotStub, scans *scanQueuerStub) *TimetableService {
	return NewTimetableService(entities, &prefStub{}, snapshots, scans, validator.New(), zap.NewNop())
}

func timetableQuery() dto.TimetableQuery {
	return dto.TimetableQuery{DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a"}
}

func TestTimetableServiceGetNotPublished(t *testing.T) {
	svc := newTimetableService(newEntityStub(), newSnapshotStub(), &scanQueuerStub{})

	_, err := svc.Get(context.Background(), timetableQuery())
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTimetableServiceGetReturnsView(t *testing.T) {
	entities := newEntityStub()
	snapshots := newSnapshotStub()
	publishClashingSnapshot(t, snapshots)
	svc := newTimetableService(entities, snapshots, &scanQueuerStub{})

	view, err := svc.Get(context.Background(), timetableQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, view.Version)
	require.Len(t, view.Assignments, 2)
	assert.Equal(t, "Data Structures", view.Assignments[0].CourseName)
	assert.Equal(t, "MONDAY", view.Assignments[0].DayName)
	assert.Equal(t, "LH-101", view.Assignments[0].RoomName)
}

func TestTimetableServiceReplacePublishesAndQueuesScan(t *testing.T) {
	entities := newEntityStub()
	snapshots := newSnapshotStub()
	scans := &scanQueuerStub{}
	publishClashingSnapshot(t, snapshots)
	svc := newTimetableService(entities, snapshots, scans)

	view, err := svc.Replace(context.Background(), dto.ReplaceTimetableRequest{
		DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a",
		Assignments: []dto.ReplaceAssignment{
			{ID: "a1", UnitID: "c1:sec-a:theory", CourseID: "c1", SectionID: "sec-a", Day: 2, Slot: 3, RoomID: "r1", FacultyID: "f1"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Version)
	require.Len(t, scans.scopes, 1)
	assert.Equal(t, "sec-a", scans.scopes[0].SectionID)
}

func TestTimetableServiceVersionsAfterReplace(t *testing.T) {
	entities := newEntityStub()
	snapshots := newSnapshotStub()
	publishClashingSnapshot(t, snapshots)
	svc := newTimetableService(entities, snapshots, &scanQueuerStub{})

	_, err := svc.Replace(context.Background(), dto.ReplaceTimetableRequest{
		DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a",
		Assignments: []dto.ReplaceAssignment{
			{ID: "a1", UnitID: "c1:sec-a:theory", CourseID: "c1", SectionID: "sec-a", Day: 2, Slot: 3, RoomID: "r1", FacultyID: "f1"},
		},
	})
	require.NoError(t, err)

	history, err := svc.Versions(context.Background(), timetableQuery())
	require.NoError(t, err)
	require.Len(t, history.Versions, 2)
	assert.Equal(t, 2, history.Versions[0].Version)
	assert.Equal(t, "ACTIVE", history.Versions[0].Status)
	assert.Equal(t, 1, history.Versions[1].Version)
	assert.Equal(t, "ARCHIVED", history.Versions[1].Status)
}

func TestTimetableServiceReplaceRejectsDuplicateIDs(t *testing.T) {
	svc := newTimetableService(newEntityStub(), newSnapshotStub(), &scanQueuerStub{})

	_, err := svc.Replace(context.Background(), dto.ReplaceTimetableRequest{
		DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a",
		Assignments: []dto.ReplaceAssignment{
			{ID: "a1", UnitID: "u1", CourseID: "c1", SectionID: "sec-a", Day: 1, Slot: 1, RoomID: "r1", FacultyID: "f1"},
			{ID: "a1", UnitID: "u2", CourseID: "c2", SectionID: "sec-a", Day: 1, Slot: 2, RoomID: "r1", FacultyID: "f1"},
		},
	})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTimetableServiceReplaceRejectsForeignSection(t *testing.T) {
	svc := newTimetableService(newEntityStub(), newSnapshotStub(), &scanQueuerStub{})

	_, err := svc.Replace(context.Background(), dto.ReplaceTimetableRequest{
		DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a",
		Assignments: []dto.ReplaceAssignment{
			{ID: "a1", UnitID: "u1", CourseID: "c1", SectionID: "sec-b", Day: 1, Slot: 1, RoomID: "r1", FacultyID: "f1"},
		},
	})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTimetableServiceReplaceToleratesQueueFailure(t *testing.T) {
	entities := newEntityStub()
	snapshots := newSnapshotStub()
	scans := &scanQueuerStub{err: assert.AnError}
	svc := newTimetableService(entities, snapshots, scans)

	view, err := svc.Replace(context.Background(), dto.ReplaceTimetableRequest{
		DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a",
		Assignments: []dto.ReplaceAssignment{
			{ID: "a1", UnitID: "c1:sec-a:theory", CourseID: "c1", SectionID: "sec-a", Day: 1, Slot: 1, RoomID: "r1", FacultyID: "f1"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, view.Version)
}
