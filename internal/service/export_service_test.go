package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/config"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/export"
)

type viewerStub struct {
	view *dto.TimetableView
	err  error
}

func (s *viewerStub) Get(_ context.Context, _ dto.TimetableQuery) (*dto.TimetableView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view, nil
}

func exportView() *dto.TimetableView {
	return &dto.TimetableView{
		SnapshotID: "snap-1",
		Scope:      models.Scope{DepartmentID: "dep-1", SemesterID: "sem-3", SectionID: "sec-a"},
		Version:    2,
		Status:     string(models.SnapshotStatusActive),
		Assignments: []dto.AssignmentView{
			{
				ID: "a1", CourseID: "c1", CourseName: "Data Structures", SectionID: "sec-a",
				Day: 1, DayName: "MONDAY", Slot: 1, SlotLabel: "09:00 - 09:50",
				RoomID: "r1", RoomName: "LH-101", FacultyID: "f1", FacultyName: "Dr. Rao", HourType: "theory",
			},
		},
	}
}

func newExportService(viewer timetableViewer) *ExportService {
	return NewExportService(viewer, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop(),
		config.ExportConfig{Enabled: true, Title: "Section A Timetable"})
}

func TestExportServiceCSV(t *testing.T) {
	svc := newExportService(&viewerStub{view: exportView()})

	file, err := svc.Export(context.Background(), timetableQuery(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "timetable_sec-a_v2.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	body := string(file.Body)
	assert.True(t, strings.HasPrefix(body, "day,slot,course,section,room,faculty,hour_type"))
	assert.Contains(t, body, "MONDAY")
	assert.Contains(t, body, "Data Structures")
}

func TestExportServicePDF(t *testing.T) {
	svc := newExportService(&viewerStub{view: exportView()})

	file, err := svc.Export(context.Background(), timetableQuery(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "timetable_sec-a_v2.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Body), "%PDF"))
}

func TestExportServiceDefaultsToCSV(t *testing.T) {
	svc := newExportService(&viewerStub{view: exportView()})

	file, err := svc.Export(context.Background(), timetableQuery(), "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := newExportService(&viewerStub{view: exportView()})

	_, err := svc.Export(context.Background(), timetableQuery(), "xlsx")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportServiceDisabled(t *testing.T) {
	svc := NewExportService(&viewerStub{view: exportView()}, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop(),
		config.ExportConfig{Enabled: false})

	_, err := svc.Export(context.Background(), timetableQuery(), "csv")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestExportServicePropagatesViewerError(t *testing.T) {
	svc := newExportService(&viewerStub{err: appErrors.Clone(appErrors.ErrNotFound, "no timetable published for this scope")})

	_, err := svc.Export(context.Background(), timetableQuery(), "csv")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
