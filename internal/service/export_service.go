package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/config"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/export"
)

type timetableViewer interface {
	Get(ctx context.Context, query dto.TimetableQuery) (*dto.TimetableView, error)
}

type csvRenderer interface {
	Render(rows []export.TimetableRow) ([]byte, error)
}

type pdfRenderer interface {
	Render(rows []export.TimetableRow, title string) ([]byte, error)
}

// ExportFile is a rendered timetable document.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the published timetable of a scope as CSV or PDF.
type ExportService struct {
	timetables timetableViewer
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	cfg        config.ExportConfig
}

// NewExportService wires export dependencies.
func NewExportService(timetables timetableViewer, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger, cfg config.ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Timetable"
	}
	return &ExportService{
		timetables: timetables,
		csv:        csv,
		pdf:        pdf,
		logger:     logger,
		cfg:        cfg,
	}
}

// Export renders the scope's ACTIVE timetable in the requested format.
func (s *ExportService) Export(ctx context.Context, query dto.TimetableQuery, format string) (*ExportFile, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "timetable export is disabled")
	}

	view, err := s.timetables.Get(ctx, query)
	if err != nil {
		return nil, err
	}
	rows := exportRows(view)
	base := fmt.Sprintf("timetable_%s_v%d", view.Scope.SectionID, view.Version)

	switch format {
	case "csv", "":
		body, err := s.csv.Render(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{Filename: base + ".csv", ContentType: "text/csv", Body: body}, nil
	case "pdf":
		body, err := s.pdf.Render(rows, s.cfg.Title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func exportRows(view *dto.TimetableView) []export.TimetableRow {
	rows := make([]export.TimetableRow, 0, len(view.Assignments))
	for _, a := range view.Assignments {
		rows = append(rows, export.TimetableRow{
			Day:      a.DayName,
			Slot:     a.SlotLabel,
			Course:   a.CourseName,
			Section:  a.SectionID,
			Room:     a.RoomName,
			Faculty:  a.FacultyName,
			HourType: a.HourType,
		})
	}
	return rows
}
