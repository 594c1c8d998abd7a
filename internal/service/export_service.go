package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/classledger/records-api/pkg/errors"
	"github.com/classledger/records-api/pkg/export"
)

// ExportFormat names a supported download format.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type summaryProvider interface {
	AttendanceSummary(ctx context.Context, startDate, endDate *time.Time) (*AttendanceSummary, error)
}

// ExportService renders aggregate reports as downloadable files.
type ExportService struct {
	reports summaryProvider
	logger  *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(reports summaryProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{reports: reports, logger: logger}
}

// AttendanceSummary renders the status breakdown in the requested format.
func (s *ExportService) AttendanceSummary(ctx context.Context, startDate, endDate *time.Time, format ExportFormat) (*ExportFile, error) {
	summary, err := s.reports.AttendanceSummary(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   "Attendance Summary",
		Headers: []string{"Status", "Count"},
	}
	for _, c := range summary.Summary {
		data.Rows = append(data.Rows, []string{string(c.Status), strconv.Itoa(c.Count)})
	}
	data.Rows = append(data.Rows,
		[]string{"Total", strconv.Itoa(summary.Total)},
		[]string{"Attendance Rate (%)", strconv.FormatFloat(summary.AttendanceRate, 'f', 2, 64)},
	)

	stamp := time.Now().UTC().Format("2006-01-02")
	switch format {
	case FormatCSV:
		body, err := export.CSV(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error rendering export")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("attendance-summary-%s.csv", stamp),
			ContentType: "text/csv",
			Body:        body,
		}, nil
	case FormatPDF:
		body, err := export.PDF(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error rendering export")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("attendance-summary-%s.pdf", stamp),
			ContentType: "application/pdf",
			Body:        body,
		}, nil
	default:
		return nil, appErrors.Validation("validation failed", []appErrors.FieldViolation{
			{Field: "format", Message: "format must be csv or pdf", Value: string(format)},
		})
	}
}
