package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lms-api/api/swagger"
	"github.com/noah-isme/lms-api/internal/handler"
	internalmiddleware "github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/repository"
	"github.com/noah-isme/lms-api/internal/service"
	"github.com/noah-isme/lms-api/pkg/config"
	"github.com/noah-isme/lms-api/pkg/database"
	"github.com/noah-isme/lms-api/pkg/jobs"
	"github.com/noah-isme/lms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-api/pkg/middleware/requestid"
	"github.com/noah-isme/lms-api/pkg/observability"
)

// @title LMS API
// @version 1.0
// @description Enrollment, assignment and grading backend for a learning management system.
// @BasePath /api/v1
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

	flushSentry, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Env, cfg.Release)
	if err != nil {
		logr.Warn("sentry disabled", zap.Error(err))
	}
	defer flushSentry()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB, "up"); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
		logr.Info("migrations applied")
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	tx := database.NewTransactor(db, metrics)
	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	policy := service.NewAccessPolicy(courseRepo, enrollmentRepo)
	identitySvc := service.NewIdentityService(userRepo, tx, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, userRepo, tx, validate, logr)
	moduleSvc := service.NewModuleService(moduleRepo, policy, tx, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, analyticsRepo, policy, tx, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, policy, tx, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, assignmentRepo, analyticsRepo, policy, tx, validate, logr)
	aggregationSvc := service.NewAggregationService(analyticsRepo, analyticsRepo, enrollmentRepo, courseRepo, userRepo, policy, logr)
	exportSvc := service.NewExportService(enrollmentSvc, courseSvc, service.ExportConfig{
		Formats:    cfg.Export.Formats,
		PDFTitle:   cfg.Export.PDFTitle,
		SheetTitle: cfg.Export.SheetTitle,
	}, logr)
	auditSvc := service.NewAuditService(auditRepo, logr)
	auditQueue := jobs.NewQueue[*models.AuditLog]("audit", auditSvc.Write, jobs.QueueConfig{Workers: 2, MaxRetries: 2, Logger: logr})
	auditQueue.Start(context.Background())
	defer auditQueue.Stop()
	auditSvc.UseQueue(auditQueue)
	verifier := service.NewTokenVerifier(service.TokenVerifierConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Leeway:   cfg.JWT.Leeway,
	})

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	handlers := handler.Handlers{
		Identity:   handler.NewIdentityHandler(identitySvc),
		Course:     handler.NewCourseHandler(courseSvc),
		Module:     handler.NewModuleHandler(moduleSvc),
		Enrollment: handler.NewEnrollmentHandler(enrollmentSvc, exportSvc),
		Assignment: handler.NewAssignmentHandler(assignmentSvc),
		Submission: handler.NewSubmissionHandler(submissionSvc),
		Analytics:  handler.NewAnalyticsHandler(aggregationSvc),
		Audit:      handler.NewAuditHandler(auditSvc),
		Metrics:    metricsHandler,
	}
	guards := handler.Guards{
		Authenticate: internalmiddleware.JWT(verifier),
		Resolve:      internalmiddleware.Identity(identitySvc),
		Audit: func(action, resource string) gin.HandlerFunc {
			return internalmiddleware.Audit(auditSvc, action, resource)
		},
	}

	r := gin.New()
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(gin.Recovery())
	if cfg.Metrics.Enabled {
		r.Use(internalmiddleware.Metrics(metrics))
	}
	r.Use(internalmiddleware.ErrorReporter(observability.NewReporter(nil), logr))

	handler.RegisterHealthRoutes(r, metricsHandler, cfg.Metrics.Enabled)
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handlers, guards)

	if cfg.Docs.Enabled && cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
