package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rajac/admission-portal/internal/models"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
	"github.com/rajac/admission-portal/pkg/export"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

const exportTitle = "Admission Applications"

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders the application list for download.
type ExportService struct {
	reviews *ReviewService
	csv     csvRenderer
	pdf     pdfRenderer
	xlsx    xlsxRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the pkg/export defaults.
func NewExportService(reviews *ReviewService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, xlsx xlsxRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{reviews: reviews, csv: csv, pdf: pdf, xlsx: xlsx, logger: logger, now: time.Now}
}

// Export renders the applications matching term in format.
func (s *ExportService) Export(ctx context.Context, format, term string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}

	apps, err := s.reviews.List(ctx)
	if err != nil {
		return nil, err
	}
	dataset := buildDataset(Filter(apps, term))

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case FormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case FormatPDF:
		payload, err = s.pdf.Render(dataset, exportTitle)
		contentType = "application/pdf"
	case FormatXLSX:
		payload, err = s.xlsx.Render(dataset, "Applications")
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("applications_%s.%s", s.now().UTC().Format("20060102_150405"), format)
	s.logger.Info("applications exported", zap.String("format", format), zap.Int("rows", len(dataset.Rows)))
	return &ExportFile{Filename: filename, ContentType: contentType, Content: payload}, nil
}

var exportHeaders = []string{
	"Submitted", "Student", "Arabic Name", "Grade", "School", "Father", "Father Phone", "Mother", "Mother Phone", "Status", "Test Date", "Test Time", "Test Result",
}

func buildDataset(apps []models.AdmissionForm) export.Dataset {
	rows := make([]map[string]string, 0, len(apps))
	for i := range apps {
		app := &apps[i]
		rows = append(rows, map[string]string{
			"Submitted":    app.CreatedAt.UTC().Format("2006-01-02"),
			"Student":      app.StudentFullName(),
			"Arabic Name":  app.StudentNameAr,
			"Grade":        app.Grade,
			"School":       app.School,
			"Father":       app.FatherName,
			"Father Phone": app.FatherPhone,
			"Mother":       app.MotherName,
			"Mother Phone": app.MotherPhone,
			"Status":       app.DisplayStatus(),
			"Test Date":    app.TestDate.String,
			"Test Time":    app.TestTime.String,
			"Test Result":  app.DisplayResult(),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
