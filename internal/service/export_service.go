package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/export"
	"github.com/classdesk/classdesk-api/pkg/storage"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// ExportResult describes a rendered report and its signed download token.
type ExportResult struct {
	JobID     string    `json:"jobId"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportService renders attendance and roster reports to files and issues
// signed download tokens for them.
type ExportService struct {
	store  store.Store
	files  *storage.LocalStorage
	signer *storage.SignedURLSigner
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	xlsx   *export.XLSXExporter
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an export service instance.
func NewExportService(st store.Store, files *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		store:  st,
		files:  files,
		signer: signer,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		xlsx:   export.NewXLSXExporter(),
		logger: logger,
		now:    time.Now,
	}
}

// AttendanceReport renders the full attendance record of one class.
func (s *ExportService) AttendanceReport(ctx context.Context, userID, classID, format string) (*ExportResult, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	class := doc.Class(classID)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	dataset := buildAttendanceDataset(class, doc.AttendanceHistory[classID])
	dataset.Title = fmt.Sprintf("Attendance - %s", class.Name)
	dataset.Subtitle = fmt.Sprintf("Generated %s", s.now().Format("2 Jan 2006"))
	dataset.Legend = export.AttendanceLegend
	return s.render(dataset, format)
}

// RosterReport renders the class roster with performance scores.
func (s *ExportService) RosterReport(ctx context.Context, userID, classID, format string) (*ExportResult, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	class := doc.Class(classID)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	dataset := export.Dataset{
		Headers: []string{"Student", "Performance"},
	}
	for _, student := range class.Students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":     student.Name,
			"Performance": strconv.Itoa(student.Performance),
		})
	}
	dataset.Title = fmt.Sprintf("Roster - %s", class.Name)
	dataset.Subtitle = fmt.Sprintf("Generated %s", s.now().Format("2 Jan 2006"))
	return s.render(dataset, format)
}

// Open resolves a signed token to a readable file handle and its name.
func (s *ExportService) Open(token string) (*storage.FileHandle, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	return &storage.FileHandle{File: file, Name: relPath}, nil
}

func (s *ExportService) render(dataset export.Dataset, format string) (*ExportResult, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case FormatCSV, "":
		format = FormatCSV
		payload, err = s.csv.Render(dataset)
	case FormatPDF:
		payload, err = s.pdf.Render(dataset)
	case FormatXLSX:
		payload, err = s.xlsx.Render(dataset, "Report")
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not render export")
	}

	jobID := uuid.NewString()
	filename := fmt.Sprintf("%s/%s.%s", s.now().Format("2006-01-02"), jobID, format)
	if _, err := s.files.Save(filename, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not store export")
	}
	token, expiresAt, err := s.signer.Generate(jobID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not sign download token")
	}
	return &ExportResult{
		JobID:     jobID,
		Filename:  filename,
		Format:    format,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// buildAttendanceDataset lays dates out as columns, students as rows.
// Unmarked days render as present, matching how the register reads them.
func buildAttendanceDataset(class *models.ClassSection, history map[string]map[string]models.AttendanceStatus) export.Dataset {
	dates := make([]string, 0, len(history))
	for dateKey := range history {
		dates = append(dates, dateKey)
	}
	sort.Strings(dates)

	headers := append([]string{"Student"}, dates...)
	dataset := export.Dataset{Headers: headers}
	for _, student := range class.Students {
		row := map[string]string{"Student": student.Name}
		key := strconv.FormatInt(student.ID, 10)
		for _, dateKey := range dates {
			status := models.StatusPresent
			if marks, ok := history[dateKey]; ok {
				if marked, ok := marks[key]; ok {
					status = marked
				}
			}
			row[dateKey] = string(status)
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset
}
