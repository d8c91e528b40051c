package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/oneaiguru/wfm-portal-api/internal/middleware"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
)

type fakeDashboardSrv struct {
	dashboard *models.ManagerDashboard
	hit       bool
	err       error
	lastID    string
}

func (f *fakeDashboardSrv) Manager(_ context.Context, managerID string, _ *models.JWTClaims) (*models.ManagerDashboard, bool, error) {
	f.lastID = managerID
	return f.dashboard, f.hit, f.err
}

func TestDashboardHandlerManagerSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{
		dashboard: &models.ManagerDashboard{ManagerID: "emp-mgr", TeamHeadcount: 7},
		hit:       true,
	}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/managers/emp-mgr/dashboard", nil)
	c.Params = gin.Params{{Key: "id", Value: "emp-mgr"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-mgr", Role: models.RoleManager, EmployeeID: "emp-mgr"})

	handler.Manager(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "emp-mgr", service.lastID)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache"])
	assert.Equal(t, "emp-mgr", envelope.Data["managerId"])
}

func TestDashboardHandlerManagerForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{err: appErrors.ErrForbidden})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/managers/emp-other/dashboard", nil)
	c.Params = gin.Params{{Key: "id", Value: "emp-other"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-mgr", Role: models.RoleManager, EmployeeID: "emp-mgr"})

	handler.Manager(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDashboardHandlerManagerRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/managers/emp-mgr/dashboard", nil)

	handler.Manager(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
