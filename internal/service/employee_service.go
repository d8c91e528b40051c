package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/oneaiguru/wfm-portal-api/internal/dto"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
)

type employeeReader interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	Search(ctx context.Context, term string, limit int) ([]models.Employee, error)
}

// EmployeeService serves the directory: the identity source every request
// creation resolves against.
type EmployeeService struct {
	repo   employeeReader
	logger *zap.Logger
}

// NewEmployeeService constructs the service.
func NewEmployeeService(repo employeeReader, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, logger: logger}
}

// Get fetches one directory entry.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// Current resolves the directory entry linked to the acting account.
func (s *EmployeeService) Current(ctx context.Context, actor *models.JWTClaims) (*models.Employee, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.EmployeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "account is not linked to an employee")
	}
	return s.Get(ctx, actor.EmployeeID)
}

// List returns directory entries with pagination metadata.
func (s *EmployeeService) List(ctx context.Context, query dto.EmployeeQuery) ([]models.Employee, *models.Pagination, error) {
	filter := models.EmployeeFilter{
		Department: strings.TrimSpace(query.Department),
		ManagerID:  strings.TrimSpace(query.ManagerID),
		Active:     query.Active,
		Search:     strings.TrimSpace(query.Search),
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return employees, pagination, nil
}

// Search serves the typeahead used when picking an exchange counterpart.
func (s *EmployeeService) Search(ctx context.Context, term string, limit int) ([]models.Employee, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, appErrors.Field("q", "search term must be at least 2 characters")
	}
	employees, err := s.repo.Search(ctx, term, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search employees")
	}
	return employees, nil
}
