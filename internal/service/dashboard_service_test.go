package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
)

type stubDashboardRepo struct {
	statusCounts []models.StatusCount
	typeCounts   []models.TypeCount
	upcoming     []models.UpcomingLeave
	calls        int
}

func (s *stubDashboardRepo) StatusCounts(_ context.Context, _ string) ([]models.StatusCount, error) {
	s.calls++
	return s.statusCounts, nil
}

func (s *stubDashboardRepo) TypeCounts(_ context.Context, _ string) ([]models.TypeCount, error) {
	return s.typeCounts, nil
}

func (s *stubDashboardRepo) UpcomingLeave(_ context.Context, _ string, _, _ time.Time, _ int) ([]models.UpcomingLeave, error) {
	return s.upcoming, nil
}

type stubTeamCounter struct{ team int }

func (s *stubTeamCounter) CountTeam(_ context.Context, _ string) (int, error) { return s.team, nil }

type stubPendingCounter struct{ pending int }

func (s *stubPendingCounter) CountPendingForManager(_ context.Context, _ string) (int, error) {
	return s.pending, nil
}

// memoryCacheRepo is a map-backed CacheRepository with pattern invalidation
// limited to the dashboard prefix, which is all these tests need.
type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	m.entries = map[string][]byte{}
	return nil
}

func newDashboardFixture() (*DashboardService, *stubDashboardRepo, *memoryCacheRepo) {
	repo := &stubDashboardRepo{
		statusCounts: []models.StatusCount{{Status: "SUBMITTED", Count: 2}},
		typeCounts:   []models.TypeCount{{Type: "VACATION", Count: 3}},
	}
	cacheRepo := newMemoryCacheRepo()
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewDashboardService(DashboardServiceParams{
		Repo:      repo,
		Employees: &stubTeamCounter{team: 7},
		Requests:  &stubPendingCounter{pending: 2},
		Cache:     cacheSvc,
	})
	return svc, repo, cacheRepo
}

func TestManagerDashboardComposeAndCache(t *testing.T) {
	svc, repo, _ := newDashboardFixture()
	actor := &models.JWTClaims{UserID: "user-mgr", Role: models.RoleManager, EmployeeID: "emp-mgr"}

	dashboard, hit, err := svc.Manager(context.Background(), "emp-mgr", actor)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 7, dashboard.TeamHeadcount)
	require.Equal(t, 2, dashboard.PendingApprovals)
	require.Equal(t, 1, repo.calls)

	// second read is served from cache
	cached, hit, err := svc.Manager(context.Background(), "emp-mgr", actor)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, dashboard.TeamHeadcount, cached.TeamHeadcount)
	require.Equal(t, 1, repo.calls)
}

func TestManagerDashboardInvalidationForcesRecompute(t *testing.T) {
	svc, repo, cacheRepo := newDashboardFixture()
	actor := &models.JWTClaims{UserID: "user-mgr", Role: models.RoleManager, EmployeeID: "emp-mgr"}

	_, _, err := svc.Manager(context.Background(), "emp-mgr", actor)
	require.NoError(t, err)
	require.NoError(t, cacheRepo.DeleteByPattern(context.Background(), managerDashboardPattern))

	_, hit, err := svc.Manager(context.Background(), "emp-mgr", actor)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 2, repo.calls)
}

func TestManagerDashboardAccess(t *testing.T) {
	svc, _, _ := newDashboardFixture()

	// a manager cannot read another manager's dashboard
	other := &models.JWTClaims{UserID: "user-2", Role: models.RoleManager, EmployeeID: "emp-other"}
	_, _, err := svc.Manager(context.Background(), "emp-mgr", other)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// HR may inspect any
	hr := &models.JWTClaims{UserID: "user-hr", Role: models.RoleHRAdmin}
	_, _, err = svc.Manager(context.Background(), "emp-mgr", hr)
	require.NoError(t, err)

	// employees never see dashboards
	employee := &models.JWTClaims{UserID: "user-3", Role: models.RoleEmployee, EmployeeID: "emp-3"}
	_, _, err = svc.Manager(context.Background(), "emp-3", employee)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestManagerDashboardDisabledCache(t *testing.T) {
	repo := &stubDashboardRepo{}
	svc := NewDashboardService(DashboardServiceParams{
		Repo:      repo,
		Employees: &stubTeamCounter{},
		Requests:  &stubPendingCounter{},
		Cache:     NewCacheService(nil, nil, 0, nil, false),
	})
	actor := &models.JWTClaims{UserID: "user-hr", Role: models.RoleHRAdmin}

	_, hit, err := svc.Manager(context.Background(), "emp-mgr", actor)
	require.NoError(t, err)
	require.False(t, hit)

	_, hit, err = svc.Manager(context.Background(), "emp-mgr", actor)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 2, repo.calls)
}
