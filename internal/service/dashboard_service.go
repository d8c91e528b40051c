package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
)

// managerDashboardPattern matches every cached dashboard; lifecycle
// transitions invalidate with it so managers never see stale queues.
const managerDashboardPattern = "dash:manager:*"

type dashboardReader interface {
	StatusCounts(ctx context.Context, managerID string) ([]models.StatusCount, error)
	TypeCounts(ctx context.Context, managerID string) ([]models.TypeCount, error)
	UpcomingLeave(ctx context.Context, managerID string, from, to time.Time, limit int) ([]models.UpcomingLeave, error)
}

type teamCounter interface {
	CountTeam(ctx context.Context, managerID string) (int, error)
}

type pendingCounter interface {
	CountPendingForManager(ctx context.Context, managerID string) (int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL       time.Duration
	UpcomingWindow time.Duration
	UpcomingLimit  int
}

// DashboardService composes the manager view: team size, approval queue,
// request distribution and upcoming approved absences.
type DashboardService struct {
	repo      dashboardReader
	employees teamCounter
	requests  pendingCounter
	cache     *CacheService
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Repo      dashboardReader
	Employees teamCounter
	Requests  pendingCounter
	Cache     *CacheService
	Logger    *zap.Logger
	Config    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.UpcomingWindow <= 0 {
		cfg.UpcomingWindow = 14 * 24 * time.Hour
	}
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = 10
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:      params.Repo,
		employees: params.Employees,
		requests:  params.Requests,
		cache:     params.Cache,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Manager returns the dashboard for one manager and reports cache utilisation.
// Managers only see their own dashboard; HR admins may inspect any.
func (s *DashboardService) Manager(ctx context.Context, managerID string, actor *models.JWTClaims) (*models.ManagerDashboard, bool, error) {
	if actor == nil {
		return nil, false, appErrors.ErrUnauthorized
	}
	if managerID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "managerId is required")
	}
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleHRAdmin:
	case models.RoleManager:
		if actor.EmployeeID != managerID {
			return nil, false, appErrors.Clone(appErrors.ErrForbidden, "managers can only view their own dashboard")
		}
	default:
		return nil, false, appErrors.ErrForbidden
	}

	cacheKey := fmt.Sprintf("dash:manager:%s", managerID)
	if s.cache != nil {
		var cached models.ManagerDashboard
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return &cached, true, nil
		}
	}

	dashboard, err := s.compose(ctx, managerID)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, dashboard, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return dashboard, false, nil
}

func (s *DashboardService) compose(ctx context.Context, managerID string) (*models.ManagerDashboard, error) {
	now := s.now().UTC()

	headcount, err := s.employees.CountTeam(ctx, managerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count team")
	}
	pending, err := s.requests.CountPendingForManager(ctx, managerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending approvals")
	}
	statusCounts, err := s.repo.StatusCounts(ctx, managerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load status counts")
	}
	typeCounts, err := s.repo.TypeCounts(ctx, managerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load type counts")
	}
	upcoming, err := s.repo.UpcomingLeave(ctx, managerID, now, now.Add(s.cfg.UpcomingWindow), s.cfg.UpcomingLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upcoming leave")
	}

	return &models.ManagerDashboard{
		ManagerID:        managerID,
		TeamHeadcount:    headcount,
		PendingApprovals: pending,
		StatusCounts:     statusCounts,
		TypeCounts:       typeCounts,
		UpcomingLeave:    upcoming,
		GeneratedAt:      now,
	}, nil
}
