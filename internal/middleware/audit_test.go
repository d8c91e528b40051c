package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
)

type capturingRecorder struct {
	logs []*models.AuditLog
}

func (r *capturingRecorder) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func auditRouter(recorder *capturingRecorder, claims *models.JWTClaims, status int) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	})
	router.POST("/files", Audit(recorder, models.AuditActionFileUpload, "attachment"), func(c *gin.Context) {
		c.Status(status)
	})
	return router
}

func TestAuditRecordsSuccessfulRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := &capturingRecorder{}
	claims := &models.JWTClaims{UserID: "user-1", Role: models.RoleEmployee}
	router := auditRouter(recorder, claims, http.StatusCreated)

	request := httptest.NewRequest(http.MethodPost, "/files", nil)
	request.Header.Set("User-Agent", "portal-test")
	router.ServeHTTP(httptest.NewRecorder(), request)

	if len(recorder.logs) != 1 {
		t.Fatalf("expected one audit row, got %d", len(recorder.logs))
	}
	log := recorder.logs[0]
	if log.Action != models.AuditActionFileUpload || log.Resource != "attachment" {
		t.Fatalf("unexpected audit row: %s/%s", log.Action, log.Resource)
	}
	if log.UserID == nil || *log.UserID != "user-1" {
		t.Fatalf("expected audit row attributed to user-1")
	}
	if log.UserAgent != "portal-test" {
		t.Fatalf("unexpected user agent: %s", log.UserAgent)
	}
}

func TestAuditSkipsFailedRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := &capturingRecorder{}
	router := auditRouter(recorder, nil, http.StatusForbidden)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/files", nil))

	if len(recorder.logs) != 0 {
		t.Fatalf("expected no audit rows for a failed request, got %d", len(recorder.logs))
	}
}
