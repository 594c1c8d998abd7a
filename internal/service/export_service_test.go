package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classledger/records-api/internal/models"
	appErrors "github.com/classledger/records-api/pkg/errors"
)

type staticSummaryProvider struct {
	summary AttendanceSummary
}

func (s *staticSummaryProvider) AttendanceSummary(ctx context.Context, startDate, endDate *time.Time) (*AttendanceSummary, error) {
	cp := s.summary
	return &cp, nil
}

func TestExportAttendanceSummaryCSV(t *testing.T) {
	provider := &staticSummaryProvider{summary: AttendanceSummary{
		Summary: []models.StatusCount{
			{Status: models.AttendancePresent, Count: 18},
			{Status: models.AttendanceLate, Count: 2},
		},
		Total:          20,
		AttendanceRate: 90,
	}}
	svc := NewExportService(provider, zap.NewNop())

	file, err := svc.AttendanceSummary(context.Background(), nil, nil, FormatCSV)

	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	body := string(file.Body)
	assert.Contains(t, body, "Status,Count")
	assert.Contains(t, body, "Present,18")
	assert.Contains(t, body, "Late,2")
	assert.Contains(t, body, "Total,20")
	assert.Contains(t, body, "Attendance Rate (%),90.00")
}

func TestExportAttendanceSummaryPDF(t *testing.T) {
	provider := &staticSummaryProvider{summary: AttendanceSummary{
		Summary: []models.StatusCount{{Status: models.AttendancePresent, Count: 5}},
		Total:   5, AttendanceRate: 100,
	}}
	svc := NewExportService(provider, zap.NewNop())

	file, err := svc.AttendanceSummary(context.Background(), nil, nil, FormatPDF)

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Body), "%PDF"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&staticSummaryProvider{}, zap.NewNop())

	_, err := svc.AttendanceSummary(context.Background(), nil, nil, ExportFormat("xlsx"))

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	require.Len(t, appErr.Violations, 1)
	assert.Equal(t, "format", appErr.Violations[0].Field)
}
