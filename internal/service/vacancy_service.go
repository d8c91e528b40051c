package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oneaiguru/wfm-portal-api/internal/dto"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	"github.com/oneaiguru/wfm-portal-api/pkg/config"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
	"github.com/oneaiguru/wfm-portal-api/pkg/export"
	"github.com/oneaiguru/wfm-portal-api/pkg/jobs"
)

type vacancyStore interface {
	Gaps(ctx context.Context, department string) ([]models.VacancyGap, error)
	CreateReport(ctx context.Context, report *models.VacancyReport) error
	GetReport(ctx context.Context, id string) (*models.VacancyReport, error)
	ListReports(ctx context.Context, requestedBy string, limit int) ([]models.VacancyReport, error)
	MarkReportRunning(ctx context.Context, id string) error
	CompleteReport(ctx context.Context, id, filePath, fileName string, completedAt time.Time) error
	FailReport(ctx context.Context, id, message string, completedAt time.Time) error
}

type reportFileStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

var vacancyReportHeaders = []string{"Department", "Position", "Planned", "Filled", "Gap"}

// VacancyService computes staffing gaps and generates CSV/PDF reports
// asynchronously through a worker queue.
type VacancyService struct {
	repo   vacancyStore
	files  reportFileStore
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	queue  *jobs.Queue
	logger *zap.Logger
	now    func() time.Time
}

// NewVacancyService constructs the service and its report queue.
func NewVacancyService(repo vacancyStore, files reportFileStore, cfg config.VacancyConfig, logger *zap.Logger) *VacancyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &VacancyService{
		repo:   repo,
		files:  files,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
		now:    time.Now,
	}
	s.queue = jobs.NewQueue("vacancy-reports", s.generate, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the report workers.
func (s *VacancyService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the report workers.
func (s *VacancyService) Stop() {
	s.queue.Stop()
}

// Gaps returns planned-versus-filled headcount per department and position.
func (s *VacancyService) Gaps(ctx context.Context, department string, actor *models.JWTClaims) ([]models.VacancyGap, error) {
	if err := requirePlanner(actor); err != nil {
		return nil, err
	}
	gaps, err := s.repo.Gaps(ctx, strings.TrimSpace(department))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute vacancy gaps")
	}
	return gaps, nil
}

// QueueReport records a report job and hands it to the workers.
func (s *VacancyService) QueueReport(ctx context.Context, payload dto.CreateReportPayload, actor *models.JWTClaims) (*models.VacancyReport, error) {
	if err := requirePlanner(actor); err != nil {
		return nil, err
	}
	format := models.ReportFormat(strings.ToUpper(strings.TrimSpace(payload.Format)))
	if format != models.ReportFormatCSV && format != models.ReportFormatPDF {
		return nil, appErrors.Field("format", "format must be CSV or PDF")
	}

	report := &models.VacancyReport{
		Format:      format,
		Status:      models.ReportStatusQueued,
		RequestedBy: actor.UserID,
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue report")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: report.ID, Type: "vacancy_report", Payload: report.ID}); err != nil {
		s.logger.Error("failed to enqueue report job", zap.String("report_id", report.ID), zap.Error(err))
		if failErr := s.repo.FailReport(ctx, report.ID, "worker queue unavailable", s.now().UTC()); failErr != nil {
			s.logger.Warn("failed to mark report failed", zap.String("report_id", report.ID), zap.Error(failErr))
		}
		return nil, appErrors.Clone(appErrors.ErrInternal, "report workers are unavailable")
	}
	return report, nil
}

// GetReport returns a report job's state.
func (s *VacancyService) GetReport(ctx context.Context, id string, actor *models.JWTClaims) (*models.VacancyReport, error) {
	if err := requirePlanner(actor); err != nil {
		return nil, err
	}
	report, err := s.loadReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.RequestedBy != actor.UserID && actor.Role != models.RoleHRAdmin && actor.Role != models.RoleSuperAdmin {
		return nil, appErrors.ErrForbidden
	}
	return report, nil
}

// ListReports returns the caller's report jobs.
func (s *VacancyService) ListReports(ctx context.Context, actor *models.JWTClaims) ([]models.VacancyReport, error) {
	if err := requirePlanner(actor); err != nil {
		return nil, err
	}
	reports, err := s.repo.ListReports(ctx, actor.UserID, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	return reports, nil
}

// Open returns a finished report and a reader over the generated file.
func (s *VacancyService) Open(ctx context.Context, id string, actor *models.JWTClaims) (*models.VacancyReport, io.ReadCloser, error) {
	report, err := s.GetReport(ctx, id, actor)
	if err != nil {
		return nil, nil, err
	}
	if report.Status != models.ReportStatusDone || report.FilePath == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, "report is not ready")
	}
	file, err := s.files.Open(*report.FilePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report file")
	}
	return report, file, nil
}

// generate is the queue handler: it renders the gap dataset into the
// requested format and stores the file. Rendering failures mark the job
// FAILED instead of retrying; only transient claim errors retry.
func (s *VacancyService) generate(ctx context.Context, job jobs.Job) error {
	reportID, ok := job.Payload.(string)
	if !ok {
		s.logger.Error("unexpected report payload", zap.String("job_type", job.Type))
		return nil
	}
	if err := s.repo.MarkReportRunning(ctx, reportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// already claimed or finalised
			return nil
		}
		return err
	}
	report, err := s.loadReport(ctx, reportID)
	if err != nil {
		return err
	}

	gaps, err := s.repo.Gaps(ctx, "")
	if err != nil {
		s.fail(ctx, reportID, fmt.Sprintf("gap query failed: %v", err))
		return nil
	}
	dataset := buildGapDataset(gaps)

	var payload []byte
	var renderErr error
	ext := "csv"
	switch report.Format {
	case models.ReportFormatPDF:
		ext = "pdf"
		payload, renderErr = s.pdf.Render(dataset, "Vacancy gaps")
	default:
		payload, renderErr = s.csv.Render(dataset)
	}
	if renderErr != nil {
		s.fail(ctx, reportID, fmt.Sprintf("render failed: %v", renderErr))
		return nil
	}

	now := s.now().UTC()
	fileName := fmt.Sprintf("vacancy-gaps-%s.%s", now.Format("20060102-150405"), ext)
	filePath, err := s.files.Save(reportID+"-"+fileName, payload)
	if err != nil {
		s.fail(ctx, reportID, fmt.Sprintf("write failed: %v", err))
		return nil
	}
	if err := s.repo.CompleteReport(ctx, reportID, filePath, fileName, now); err != nil {
		s.logger.Error("failed to complete report", zap.String("report_id", reportID), zap.Error(err))
		return err
	}
	return nil
}

func (s *VacancyService) fail(ctx context.Context, reportID, message string) {
	if err := s.repo.FailReport(ctx, reportID, message, s.now().UTC()); err != nil {
		s.logger.Error("failed to mark report failed", zap.String("report_id", reportID), zap.Error(err))
	}
}

func (s *VacancyService) loadReport(ctx context.Context, id string) (*models.VacancyReport, error) {
	report, err := s.repo.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	return report, nil
}

func buildGapDataset(gaps []models.VacancyGap) export.Dataset {
	dataset := export.Dataset{Headers: vacancyReportHeaders}
	for _, gap := range gaps {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Department": gap.Department,
			"Position":   gap.Position,
			"Planned":    strconv.Itoa(gap.Planned),
			"Filled":     strconv.Itoa(gap.Filled),
			"Gap":        strconv.Itoa(gap.Gap),
		})
	}
	return dataset
}

func requirePlanner(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleHRAdmin, models.RoleManager:
		return nil
	}
	return appErrors.ErrForbidden
}
