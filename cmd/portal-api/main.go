package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/oneaiguru/wfm-portal-api/api/swagger"
	"github.com/oneaiguru/wfm-portal-api/internal/handler"
	"github.com/oneaiguru/wfm-portal-api/internal/middleware"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
	"github.com/oneaiguru/wfm-portal-api/internal/repository"
	"github.com/oneaiguru/wfm-portal-api/internal/service"
	"github.com/oneaiguru/wfm-portal-api/pkg/cache"
	"github.com/oneaiguru/wfm-portal-api/pkg/config"
	"github.com/oneaiguru/wfm-portal-api/pkg/database"
	"github.com/oneaiguru/wfm-portal-api/pkg/logger"
	corsmiddleware "github.com/oneaiguru/wfm-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/oneaiguru/wfm-portal-api/pkg/middleware/requestid"
	"github.com/oneaiguru/wfm-portal-api/pkg/storage"
)

// @title WFM Portal API
// @version 1.0.0
// @description Workforce management portal: employee requests, approvals and staffing analysis
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	// repositories
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	vacancyRepo := repository.NewVacancyRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// services
	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.Enabled)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})

	notificationService := service.NewNotificationService(notificationRepo, userRepo, logr, cfg.Notifications)
	notificationService.Start(ctx)
	defer notificationService.Stop()

	requestService := service.NewRequestService(service.RequestServiceParams{
		Repo:      requestRepo,
		Employees: employeeRepo,
		Shifts:    shiftRepo,
		Audit:     userRepo,
		Notifier:  notificationService,
		Cache:     cacheService,
		Logger:    logr,
	})

	employeeService := service.NewEmployeeService(employeeRepo, logr)

	dashboardService := service.NewDashboardService(service.DashboardServiceParams{
		Repo:      dashboardRepo,
		Employees: employeeRepo,
		Requests:  requestRepo,
		Cache:     cacheService,
		Logger:    logr,
		Config: service.DashboardServiceConfig{
			CacheTTL: cfg.Dashboard.CacheTTL,
		},
	})

	attachmentFiles, err := storage.NewLocalStorage(cfg.Attachments.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare attachment storage", "error", err)
	}
	attachmentService := service.NewAttachmentService(attachmentRepo, requestRepo, attachmentFiles, cfg.Attachments, logr)

	reportFiles, err := storage.NewLocalStorage(cfg.Vacancy.ReportStorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
	}
	vacancyService := service.NewVacancyService(vacancyRepo, reportFiles, cfg.Vacancy, logr)
	if cfg.Vacancy.Enabled {
		vacancyService.Start(ctx)
		defer vacancyService.Stop()
	}

	// handlers
	authHandler := handler.NewAuthHandler(authService)
	requestHandler := handler.NewRequestHandler(requestService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	vacancyHandler := handler.NewVacancyHandler(vacancyService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	requests := protected.Group("/requests")
	{
		requests.POST("", requestHandler.Create)
		requests.GET("", requestHandler.List)
		requests.GET("/pending-count", middleware.RequireRoles(models.RoleManager, models.RoleHRAdmin, models.RoleSuperAdmin), requestHandler.PendingCount)
		requests.GET("/:id", requestHandler.Get)
		requests.PUT("/:id", requestHandler.Update)
		requests.POST("/:id/submit", requestHandler.Submit)
		requests.PUT("/:id/review", middleware.RequireRoles(models.RoleManager, models.RoleHRAdmin, models.RoleSuperAdmin), requestHandler.Review)
		requests.PUT("/:id/approve", middleware.RequireRoles(models.RoleManager, models.RoleHRAdmin, models.RoleSuperAdmin), requestHandler.Approve)
		requests.PUT("/:id/reject", middleware.RequireRoles(models.RoleManager, models.RoleHRAdmin, models.RoleSuperAdmin), requestHandler.Reject)
		requests.PUT("/:id/cancel", requestHandler.Cancel)
		requests.PUT("/:id/exchange", requestHandler.ExchangeReply)
		requests.GET("/:id/tracker", requestHandler.Tracker)
		requests.GET("/:id/attachments", attachmentHandler.List)
		requests.POST("/:id/attachments", middleware.Audit(userRepo, models.AuditActionFileUpload, "attachment"), attachmentHandler.Upload)
	}

	attachments := protected.Group("/attachments")
	{
		attachments.GET("/:id/download", attachmentHandler.Download)
		attachments.DELETE("/:id", middleware.Audit(userRepo, models.AuditActionFileDelete, "attachment"), attachmentHandler.Delete)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.POST("/mark-all-read", notificationHandler.MarkAllRead)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	employees := protected.Group("/employees")
	{
		employees.GET("", employeeHandler.List)
		employees.GET("/me", employeeHandler.Me)
		employees.GET("/search/query", employeeHandler.Search)
		employees.GET("/:id", employeeHandler.Get)
	}

	if cfg.Dashboard.Enabled {
		protected.GET("/managers/:id/dashboard",
			middleware.RequireRoles(models.RoleManager, models.RoleHRAdmin, models.RoleSuperAdmin),
			dashboardHandler.Manager,
		)
	}

	if cfg.Vacancy.Enabled {
		vacancy := protected.Group("/vacancy")
		vacancy.Use(middleware.RequireRoles(models.RoleManager, models.RoleHRAdmin, models.RoleSuperAdmin))
		{
			vacancy.GET("/gaps", vacancyHandler.Gaps)
			vacancy.POST("/reports", vacancyHandler.CreateReport)
			vacancy.GET("/reports", vacancyHandler.ListReports)
			vacancy.GET("/reports/:id", vacancyHandler.GetReport)
			vacancy.GET("/reports/:id/download", vacancyHandler.DownloadReport)
		}
	}

	protected.GET("/system/metrics",
		middleware.RequireRoles(models.RoleHRAdmin, models.RoleSuperAdmin),
		metricsHandler.Snapshot,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
