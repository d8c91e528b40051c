package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/oneaiguru/wfm-portal-api/internal/middleware"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
)

type fakeAuthSrv struct {
	loginResp   *models.LoginResponse
	loginErr    error
	refreshResp *models.RefreshTokenResponse
	logoutErr   error
	changeErr   error
	lastLogin   models.LoginRequest
	lastLogout  struct {
		token  string
		userID string
	}
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.lastLogin = req
	return f.loginResp, f.loginErr
}

func (f *fakeAuthSrv) RefreshToken(context.Context, models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	return f.refreshResp, nil
}

func (f *fakeAuthSrv) Logout(_ context.Context, refreshToken, userID string, _ models.LoginRequest) error {
	f.lastLogout.token = refreshToken
	f.lastLogout.userID = userID
	return f.logoutErr
}

func (f *fakeAuthSrv) ChangePassword(context.Context, string, models.ChangePasswordRequest) error {
	return f.changeErr
}

func TestAuthHandlerLoginCapturesClientMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeAuthSrv{loginResp: &models.LoginResponse{AccessToken: "token"}}
	handler := NewAuthHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ivan@example.com","password":"secret123"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("User-Agent", "portal-web/1.0")

	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ivan@example.com", service.lastLogin.Email)
	assert.Equal(t, "portal-web/1.0", service.lastLogin.UserAgent)
	assert.NotEmpty(t, service.lastLogin.IP)
}

func TestAuthHandlerLoginRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerLoginSurfacesInvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{loginErr: appErrors.ErrInvalidCredentials})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ivan@example.com","password":"badpassword"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error["code"])
}

func TestAuthHandlerLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeAuthSrv{}
	handler := NewAuthHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader(`{"refresh_token":"refresh-1"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1"})

	handler.Logout(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "refresh-1", service.lastLogout.token)
	assert.Equal(t, "user-1", service.lastLogout.userID)
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:     "user-1",
		Email:      "ivan@example.com",
		FullName:   "Ivan Petrov",
		Role:       models.RoleEmployee,
		EmployeeID: "emp-1",
	})

	handler.Me(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "ivan@example.com", envelope.Data["email"])
	assert.Equal(t, "emp-1", envelope.Data["employee_id"])
}

func TestAuthHandlerMeRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
