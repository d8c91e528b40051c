package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oneaiguru/wfm-portal-api/internal/dto"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	"github.com/oneaiguru/wfm-portal-api/pkg/config"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
	"github.com/oneaiguru/wfm-portal-api/pkg/jobs"
	"github.com/oneaiguru/wfm-portal-api/pkg/storage"
)

type stubVacancyStore struct {
	gaps    []models.VacancyGap
	gapsErr error
	reports map[string]*models.VacancyReport
}

func newStubVacancyStore() *stubVacancyStore {
	return &stubVacancyStore{
		gaps: []models.VacancyGap{
			{Department: "Support", Position: "Operator", Planned: 10, Filled: 7, Gap: 3},
			{Department: "Support", Position: "Supervisor", Planned: 2, Filled: 2, Gap: 0},
		},
		reports: map[string]*models.VacancyReport{},
	}
}

func (s *stubVacancyStore) Gaps(_ context.Context, department string) ([]models.VacancyGap, error) {
	if s.gapsErr != nil {
		return nil, s.gapsErr
	}
	if department == "" {
		return s.gaps, nil
	}
	var result []models.VacancyGap
	for _, gap := range s.gaps {
		if gap.Department == department {
			result = append(result, gap)
		}
	}
	return result, nil
}

func (s *stubVacancyStore) CreateReport(_ context.Context, report *models.VacancyReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	report.CreatedAt = time.Now().UTC()
	clone := *report
	s.reports[report.ID] = &clone
	return nil
}

func (s *stubVacancyStore) GetReport(_ context.Context, id string) (*models.VacancyReport, error) {
	report, ok := s.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *report
	return &clone, nil
}

func (s *stubVacancyStore) ListReports(_ context.Context, requestedBy string, _ int) ([]models.VacancyReport, error) {
	var result []models.VacancyReport
	for _, report := range s.reports {
		if report.RequestedBy == requestedBy {
			result = append(result, *report)
		}
	}
	return result, nil
}

func (s *stubVacancyStore) MarkReportRunning(_ context.Context, id string) error {
	report, ok := s.reports[id]
	if !ok || report.Status != models.ReportStatusQueued {
		return sql.ErrNoRows
	}
	report.Status = models.ReportStatusRunning
	return nil
}

func (s *stubVacancyStore) CompleteReport(_ context.Context, id, filePath, fileName string, completedAt time.Time) error {
	report, ok := s.reports[id]
	if !ok {
		return sql.ErrNoRows
	}
	report.Status = models.ReportStatusDone
	report.FilePath = &filePath
	report.FileName = &fileName
	report.CompletedAt = &completedAt
	return nil
}

func (s *stubVacancyStore) FailReport(_ context.Context, id, message string, completedAt time.Time) error {
	report, ok := s.reports[id]
	if !ok {
		return sql.ErrNoRows
	}
	report.Status = models.ReportStatusFailed
	report.Error = &message
	report.CompletedAt = &completedAt
	return nil
}

func newVacancyFixture(t *testing.T) (*VacancyService, *stubVacancyStore) {
	t.Helper()
	store := newStubVacancyStore()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewVacancyService(store, files, config.VacancyConfig{
		Enabled: true,
	}, nil)
	return svc, store
}

func plannerClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-mgr", Role: models.RoleManager, EmployeeID: "emp-mgr"}
}

func TestGapsRoleGateAndFilter(t *testing.T) {
	svc, _ := newVacancyFixture(t)

	employee := &models.JWTClaims{UserID: "user-1", Role: models.RoleEmployee}
	_, err := svc.Gaps(context.Background(), "", employee)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	gaps, err := svc.Gaps(context.Background(), "Support", plannerClaims())
	require.NoError(t, err)
	require.Len(t, gaps, 2)
	require.Equal(t, 3, gaps[0].Gap)
}

func TestQueueReportValidatesFormat(t *testing.T) {
	svc, _ := newVacancyFixture(t)

	_, err := svc.QueueReport(context.Background(), dto.CreateReportPayload{Format: "XLSX"}, plannerClaims())
	require.Equal(t, "format", appErrors.FieldOf(err))
}

func TestQueueReportFailsWhenWorkersDown(t *testing.T) {
	svc, store := newVacancyFixture(t)

	// workers never started: the job cannot be handed off
	_, err := svc.QueueReport(context.Background(), dto.CreateReportPayload{Format: "CSV"}, plannerClaims())
	require.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	require.Len(t, store.reports, 1)
	for _, report := range store.reports {
		require.Equal(t, models.ReportStatusFailed, report.Status)
	}
}

func TestGenerateCSVReport(t *testing.T) {
	svc, store := newVacancyFixture(t)
	report := &models.VacancyReport{Format: models.ReportFormatCSV, Status: models.ReportStatusQueued, RequestedBy: "user-mgr"}
	require.NoError(t, store.CreateReport(context.Background(), report))

	require.NoError(t, svc.generate(context.Background(), jobs.Job{ID: report.ID, Type: "vacancy_report", Payload: report.ID}))

	done, reader, err := svc.Open(context.Background(), report.ID, plannerClaims())
	require.NoError(t, err)
	defer reader.Close()
	require.Equal(t, models.ReportStatusDone, done.Status)
	require.NotNil(t, done.FileName)
	require.True(t, strings.HasSuffix(*done.FileName, ".csv"))

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Contains(t, string(content), "Department")
	require.Contains(t, string(content), "Operator")
}

func TestGeneratePDFReport(t *testing.T) {
	svc, store := newVacancyFixture(t)
	report := &models.VacancyReport{Format: models.ReportFormatPDF, Status: models.ReportStatusQueued, RequestedBy: "user-mgr"}
	require.NoError(t, store.CreateReport(context.Background(), report))

	require.NoError(t, svc.generate(context.Background(), jobs.Job{ID: report.ID, Type: "vacancy_report", Payload: report.ID}))

	done, reader, err := svc.Open(context.Background(), report.ID, plannerClaims())
	require.NoError(t, err)
	defer reader.Close()
	require.Equal(t, models.ReportStatusDone, done.Status)

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(content), "%PDF"))
}

func TestGenerateMarksFailureOnGapError(t *testing.T) {
	svc, store := newVacancyFixture(t)
	store.gapsErr = sql.ErrConnDone
	report := &models.VacancyReport{Format: models.ReportFormatCSV, Status: models.ReportStatusQueued, RequestedBy: "user-mgr"}
	require.NoError(t, store.CreateReport(context.Background(), report))

	// a rendering-stage failure finalises the job instead of retrying
	require.NoError(t, svc.generate(context.Background(), jobs.Job{ID: report.ID, Payload: report.ID}))

	failed, err := svc.GetReport(context.Background(), report.ID, plannerClaims())
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusFailed, failed.Status)
	require.NotNil(t, failed.Error)
	require.Contains(t, *failed.Error, "gap query failed")
}

func TestGenerateSkipsAlreadyClaimedJob(t *testing.T) {
	svc, store := newVacancyFixture(t)
	report := &models.VacancyReport{Format: models.ReportFormatCSV, Status: models.ReportStatusRunning, RequestedBy: "user-mgr"}
	require.NoError(t, store.CreateReport(context.Background(), report))

	require.NoError(t, svc.generate(context.Background(), jobs.Job{ID: report.ID, Payload: report.ID}))
	require.Equal(t, models.ReportStatusRunning, store.reports[report.ID].Status)
}

func TestOpenRejectsUnfinishedReport(t *testing.T) {
	svc, store := newVacancyFixture(t)
	report := &models.VacancyReport{Format: models.ReportFormatCSV, Status: models.ReportStatusQueued, RequestedBy: "user-mgr"}
	require.NoError(t, store.CreateReport(context.Background(), report))

	_, _, err := svc.Open(context.Background(), report.ID, plannerClaims())
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReportVisibility(t *testing.T) {
	svc, store := newVacancyFixture(t)
	report := &models.VacancyReport{Format: models.ReportFormatCSV, Status: models.ReportStatusQueued, RequestedBy: "user-mgr"}
	require.NoError(t, store.CreateReport(context.Background(), report))

	other := &models.JWTClaims{UserID: "user-other", Role: models.RoleManager}
	_, err := svc.GetReport(context.Background(), report.ID, other)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	hr := &models.JWTClaims{UserID: "user-hr", Role: models.RoleHRAdmin}
	_, err = svc.GetReport(context.Background(), report.ID, hr)
	require.NoError(t, err)

	reports, err := svc.ListReports(context.Background(), plannerClaims())
	require.NoError(t, err)
	require.Len(t, reports, 1)

	reports, err = svc.ListReports(context.Background(), other)
	require.NoError(t, err)
	require.Empty(t, reports)
}
