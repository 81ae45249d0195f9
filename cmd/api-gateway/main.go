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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/camp-ops-api/api/swagger"
	"github.com/noah-isme/camp-ops-api/internal/handler"
	"github.com/noah-isme/camp-ops-api/internal/middleware"
	"github.com/noah-isme/camp-ops-api/internal/repository"
	"github.com/noah-isme/camp-ops-api/internal/service"
	"github.com/noah-isme/camp-ops-api/pkg/cache"
	"github.com/noah-isme/camp-ops-api/pkg/config"
	"github.com/noah-isme/camp-ops-api/pkg/database"
	"github.com/noah-isme/camp-ops-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/camp-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/camp-ops-api/pkg/middleware/requestid"
	"github.com/noah-isme/camp-ops-api/pkg/storage"
)

// @title Camp Ops API
// @version 1.0.0
// @description Camp schedule construction and consistency engine
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Repositories.
	sessionRepo := repository.NewSessionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	facilityRepo := repository.NewFacilityRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	constraintRepo := repository.NewConstraintRepository(db)
	templateRepo := repository.NewDayTemplateRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Analytics.CacheTTL, logr, cfg.Analytics.Enabled)
	authService := service.NewAuthService(service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	scheduleService := service.NewScheduleService(
		sessionRepo, groupRepo, activityRepo, facilityRepo, staffRepo,
		constraintRepo, templateRepo, slotRepo, db, nil, logr,
		metricsService, cacheService,
		service.ScheduleServiceConfig{
			MaxGridDays:          cfg.Scheduler.MaxGridDays,
			MaxAttemptsPerSlot:   cfg.Scheduler.MaxAttemptsPerSlot,
			DurationToleranceMin: cfg.Weather.DurationToleranceMin,
		},
	)
	sessionService := service.NewSessionService(sessionRepo, groupRepo, db, nil, logr)
	catalogService := service.NewCatalogService(activityRepo, facilityRepo, staffRepo, constraintRepo, templateRepo, db, nil, logr)
	analyticsService := service.NewAnalyticsService(sessionRepo, groupRepo, activityRepo, facilityRepo, slotRepo, cacheService, metricsService, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportService *service.ExportService
	if cfg.Exports.Enabled {
		localStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportService = service.NewExportService(
			sessionRepo, groupRepo, activityRepo, facilityRepo, staffRepo, slotRepo,
			localStorage, signer,
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
			logr,
		)
		exportService.Start(ctx)
		defer exportService.Stop()
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	weatherHandler := handler.NewWeatherHandler(scheduleService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	metricsHandler := handler.NewMetricsHandler(metricsService)
	var exportHandler *handler.ExportHandler
	if exportService != nil {
		exportHandler = handler.NewExportHandler(exportService)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
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
	api.Use(middleware.JWT(authService))

	api.POST("/auth/tokens", middleware.RBAC("admin"), authHandler.IssueToken)
	api.GET("/auth/me", authHandler.Me)

	sessions := api.Group("/sessions")
	{
		sessions.POST("", middleware.Writers(), middleware.Audit(auditRepo, "create", "session"), sessionHandler.Create)
		sessions.GET("", middleware.Readers(), sessionHandler.List)
		sessions.GET("/:id", middleware.Readers(), sessionHandler.Get)
		sessions.PUT("/:id", middleware.Writers(), middleware.Audit(auditRepo, "update", "session"), sessionHandler.Update)
		sessions.PATCH("/:id/status", middleware.Writers(), middleware.Audit(auditRepo, "status", "session"), sessionHandler.UpdateStatus)
		sessions.DELETE("/:id", middleware.RBAC("admin"), middleware.Audit(auditRepo, "delete", "session"), sessionHandler.Delete)

		sessions.POST("/:id/groups", middleware.Writers(), middleware.Audit(auditRepo, "create", "group"), sessionHandler.CreateGroup)
		sessions.GET("/:id/groups", middleware.Readers(), sessionHandler.ListGroups)
		sessions.PUT("/:id/groups/:groupId", middleware.Writers(), middleware.Audit(auditRepo, "update", "group"), sessionHandler.UpdateGroup)
		sessions.DELETE("/:id/groups/:groupId", middleware.Writers(), middleware.Audit(auditRepo, "delete", "group"), sessionHandler.DeleteGroup)

		sessions.POST("/:id/schedule/grid", middleware.Writers(), middleware.Audit(auditRepo, "build_grid", "schedule"), scheduleHandler.BuildGrid)
		sessions.POST("/:id/schedule/auto", middleware.Writers(), middleware.Audit(auditRepo, "auto_schedule", "schedule"), scheduleHandler.AutoSchedule)
		sessions.GET("/:id/schedule", middleware.Readers(), scheduleHandler.ListSlots)
		sessions.PUT("/:id/schedule/slots/:slotId", middleware.Writers(), middleware.Audit(auditRepo, "update_slot", "schedule"), scheduleHandler.UpdateSlot)
		sessions.GET("/:id/schedule/conflicts", middleware.Readers(), scheduleHandler.Conflicts)

		sessions.POST("/:id/weather/impact", middleware.Readers(), weatherHandler.Impact)
		sessions.POST("/:id/weather/substitutions", middleware.Writers(), middleware.Audit(auditRepo, "substitute", "schedule"), weatherHandler.ApplySubstitutions)

		sessions.GET("/:id/analytics/schedule", middleware.Readers(), analyticsHandler.Schedule)

		if exportHandler != nil {
			sessions.GET("/:id/schedule/export", middleware.Readers(), exportHandler.Enqueue)
		}
	}

	api.GET("/analytics/system", middleware.Readers(), analyticsHandler.System)

	catalog := api.Group("")
	{
		catalog.POST("/activities", middleware.Writers(), middleware.Audit(auditRepo, "create", "activity"), catalogHandler.CreateActivity)
		catalog.GET("/activities", middleware.Readers(), catalogHandler.ListActivities)
		catalog.PUT("/activities/:id", middleware.Writers(), middleware.Audit(auditRepo, "update", "activity"), catalogHandler.UpdateActivity)

		catalog.POST("/facilities", middleware.Writers(), middleware.Audit(auditRepo, "create", "facility"), catalogHandler.CreateFacility)
		catalog.GET("/facilities", middleware.Readers(), catalogHandler.ListFacilities)
		catalog.PUT("/facilities/:id", middleware.Writers(), middleware.Audit(auditRepo, "update", "facility"), catalogHandler.UpdateFacility)

		catalog.POST("/staff", middleware.Writers(), middleware.Audit(auditRepo, "create", "staff"), catalogHandler.CreateStaff)
		catalog.GET("/staff", middleware.Readers(), catalogHandler.ListStaff)
		catalog.PUT("/staff/:id", middleware.Writers(), middleware.Audit(auditRepo, "update", "staff"), catalogHandler.UpdateStaff)

		catalog.POST("/constraints", middleware.Writers(), middleware.Audit(auditRepo, "create", "constraint"), catalogHandler.CreateConstraint)
		catalog.GET("/constraints", middleware.Readers(), catalogHandler.ListConstraints)
		catalog.PUT("/constraints/:id", middleware.Writers(), middleware.Audit(auditRepo, "update", "constraint"), catalogHandler.UpdateConstraint)
		catalog.DELETE("/constraints/:id", middleware.Writers(), middleware.Audit(auditRepo, "delete", "constraint"), catalogHandler.DeleteConstraint)

		catalog.POST("/day-templates", middleware.Writers(), middleware.Audit(auditRepo, "create", "day_template"), catalogHandler.CreateDayTemplate)
		catalog.GET("/day-templates", middleware.Readers(), catalogHandler.ListDayTemplates)
		catalog.GET("/day-templates/:id", middleware.Readers(), catalogHandler.GetDayTemplate)
		catalog.DELETE("/day-templates/:id", middleware.RBAC("admin"), middleware.Audit(auditRepo, "delete", "day_template"), catalogHandler.DeleteDayTemplate)
	}

	if exportHandler != nil {
		api.GET("/exports/:jobId", middleware.Readers(), exportHandler.Status)
		// Signed token downloads carry their own authorization.
		r.GET(cfg.APIPrefix+"/export/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
