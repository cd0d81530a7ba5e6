package service

import (
	"context"
	"testing"
	"time"

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

func conflictsConfig() config.ConflictsConfig {
	return config.ConflictsConfig{CacheTTL: time.Minute, ScanWorkers: 1, ScanRetries: 1, ScanRetryGap: 10 * time.Millisecond}
}

func scanScope() models.Scope {
	return models.Scope{DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a"}
}

func newConflictService(entities *entityStub, snapshots *snapshotStub, conflicts *conflictStub) *ConflictService {
	return NewConflictService(
		entities, &prefStub{}, snapshots, conflicts,
		engine.NewDetector(nil), nil, nil,
		validator.New(), zap.NewNop(), conflictsConfig())
}

func publishClashingSnapshot(t *testing.T, snapshots *snapshotStub) *models.Snapshot {
	t.Helper()
	snapshot, err := snapshots.Replace(context.Background(), scanScope(), []models.Assignment{
		{ID: "a1", UnitID: "c1:sec-a:theory", CourseID: "c1", SectionID: "sec-a", Day: 1, Slot: 1, RoomID: "r1", FacultyID: "f1"},
		{ID: "a2", UnitID: "c2:sec-a:theory", CourseID: "c2", SectionID: "sec-a", Day: 1, Slot: 1, RoomID: "r1", FacultyID: "f2"},
	}, nil)
	require.NoError(t, err)
	return snapshot
}

func TestConflictServiceScanFindsRoomClash(t *testing.T) {
	entities := newEntityStub()
	snapshots := newSnapshotStub()
	conflicts := newConflictStub()
	publishClashingSnapshot(t, snapshots)
	svc := newConflictService(entities, snapshots, conflicts)

	resp, err := svc.Scan(context.Background(), dto.ScanConflictsRequest{
		DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a",
	})
	require.NoError(t, err)
	assert.False(t, resp.Queued)
	require.NotEmpty(t, resp.Conflicts)
	assert.Positive(t, resp.Critical)

	var clash *models.Conflict
	for i := range resp.Conflicts {
		if resp.Conflicts[i].Type == models.ConflictRoomDoubleBooking {
			clash = &resp.Conflicts[i]
		}
	}
	require.NotNil(t, clash)
	assert.ElementsMatch(t, []string{"a1", "a2"}, clash.AssignmentIDs)
}

func TestConflictServiceScanIsIdempotent(t *testing.T) {
	entities := newEntityStub()
	snapshots := newSnapshotStub()
	conflicts := newConflictStub()
	publishClashingSnapshot(t, snapshots)
	svc := newConflictService(entities, snapshots, conflicts)

	req := dto.ScanConflictsRequest{DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a"}
	first, err := svc.Scan(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Scan(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, len(first.Conflicts), len(second.Conflicts))
	for i := range first.Conflicts {
		assert.Equal(t, first.Conflicts[i].ID, second.Conflicts[i].ID)
	}
}

func TestConflictServiceResolutionSurvivesRescan(t *testing.T) {
	entities := newEntityStub()
	snapshots := newSnapshotStub()
	conflicts := newConflictStub()
	publishClashingSnapshot(t, snapshots)
	svc := newConflictService(entities, snapshots, conflicts)

	req := dto.ScanConflictsRequest{DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a"}
	first, err := svc.Scan(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, first.Conflicts)

	target := first.Conflicts[0].ID
	require.NoError(t, svc.Resolve(context.Background(), scanScope(), target))

	second, err := svc.Scan(context.Background(), req)
	require.NoError(t, err)
	for _, c := range second.Conflicts {
		if c.ID == target {
			assert.Equal(t, models.ConflictResolved, c.Status)
		}
	}
}

func TestConflictServiceListUsesCache(t *testing.T) {
	entities := newEntityStub()
	snapshots := newSnapshotStub()
	conflicts := newConflictStub()
	snapshot := publishClashingSnapshot(t, snapshots)
	svc := newConflictService(entities, snapshots, conflicts)

	req := dto.ScanConflictsRequest{DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a"}
	_, err := svc.Scan(context.Background(), req)
	require.NoError(t, err)

	query := dto.ConflictQuery{DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a"}
	first, err := svc.List(context.Background(), query)
	require.NoError(t, err)

	// mutate the store behind the cache; the cached report must win
	conflicts.stored[snapshot.ID] = nil
	second, err := svc.List(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, len(first.Conflicts), len(second.Conflicts))
}

func TestConflictServiceScanWithoutSnapshot(t *testing.T) {
	svc := newConflictService(newEntityStub(), newSnapshotStub(), newConflictStub())

	_, err := svc.Scan(context.Background(), dto.ScanConflictsRequest{
		DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a",
	})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestConflictServiceResolveUnknownConflict(t *testing.T) {
	svc := newConflictService(newEntityStub(), newSnapshotStub(), newConflictStub())

	err := svc.Resolve(context.Background(), scanScope(), "ghost")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestConflictServiceAsyncScanQueues(t *testing.T) {
	entities := newEntityStub()
	snapshots := newSnapshotStub()
	publishClashingSnapshot(t, snapshots)
	svc := newConflictService(entities, snapshots, newConflictStub())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	resp, err := svc.Scan(context.Background(), dto.ScanConflictsRequest{
		DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a", Async: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Queued)
	assert.Empty(t, resp.Conflicts)
}
