package export

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

// TimetableRow is a flat export record for one scheduled session.
type TimetableRow struct {
	Day      string `csv:"day"`
	Slot     string `csv:"slot"`
	Course   string `csv:"course"`
	Section  string `csv:"section"`
	Room     string `csv:"room"`
	Faculty  string `csv:"faculty"`
	HourType string `csv:"hour_type"`
}

// CSVExporter renders timetable rows into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the rows.
func (e *CSVExporter) Render(rows []TimetableRow) ([]byte, error) {
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal timetable csv: %w", err)
	}
	return out, nil
}
