package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/export"
)

type rosterSource interface {
	Roster(ctx context.Context, caller *models.Identity, courseID string) ([]models.RosterEntry, error)
}

type courseLookup interface {
	Get(ctx context.Context, id string) (*models.Course, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes gradebook exports.
type ExportConfig struct {
	Formats    []string
	PDFTitle   string
	SheetTitle string
}

// ExportResult is a rendered file ready to stream.
type ExportResult struct {
	FileName    string
	ContentType string
	Body        []byte
}

var gradebookHeaders = []string{"Student", "Email", "Status", "Grade", "Obtained", "Possible", "Percentage"}

// ExportService renders course gradebooks. Totals come from the roster so
// exports always match the JSON view.
type ExportService struct {
	roster    rosterSource
	courses   courseLookup
	renderers map[export.Format]datasetRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService enabling cfg.Formats. An
// empty list enables every format.
func NewExportService(roster rosterSource, courses courseLookup, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	all := map[export.Format]datasetRenderer{
		export.FormatCSV:  export.NewCSVExporter(),
		export.FormatPDF:  export.NewPDFExporter(cfg.PDFTitle),
		export.FormatXLSX: export.NewXLSXExporter(cfg.SheetTitle),
	}
	renderers := all
	if len(cfg.Formats) > 0 {
		renderers = make(map[export.Format]datasetRenderer, len(cfg.Formats))
		for _, f := range cfg.Formats {
			format := export.Format(strings.ToLower(f))
			if r, ok := all[format]; ok {
				renderers[format] = r
			}
		}
	}
	return &ExportService{
		roster:    roster,
		courses:   courses,
		renderers: renderers,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Gradebook renders the roster of a course the caller teaches.
func (s *ExportService) Gradebook(ctx context.Context, caller *models.Identity, courseID, format string) (*ExportResult, error) {
	f := export.Format(strings.ToLower(format))
	if f == "" {
		f = export.FormatCSV
	}
	renderer, ok := s.renderers[f]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	entries, err := s.roster.Roster(ctx, caller, courseID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   course.Title + " gradebook",
		Headers: gradebookHeaders,
		Rows:    make([][]string, 0, len(entries)),
	}
	for _, e := range entries {
		grade := ""
		if e.Grade != nil {
			grade = *e.Grade
		}
		data.Rows = append(data.Rows, []string{
			e.Name,
			e.Email,
			string(e.Status),
			grade,
			formatMarks(e.Totals.Obtained),
			formatMarks(e.Totals.Possible),
			strconv.FormatFloat(e.Totals.Percentage, 'f', 1, 64),
		})
	}

	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render gradebook")
	}
	s.logger.Info("gradebook exported", zap.String("course_id", courseID), zap.String("format", string(f)), zap.Int("rows", len(entries)))
	return &ExportResult{
		FileName:    fmt.Sprintf("gradebook-%s-%s.%s", courseID, s.now().Format("20060102"), f),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}

func formatMarks(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
