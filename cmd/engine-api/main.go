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

	_ "github.com/Pranathi-N-47/timeweaver-engine/api/swagger"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/engine"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/handler"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/middleware"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/repository"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/service"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/cache"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/config"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/database"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/export"
	"github.com/Pranathi-N-47/timeweaver-engine/pkg/logger"
	corsmiddleware "github.com/Pranathi-N-47/timeweaver-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/Pranathi-N-47/timeweaver-engine/pkg/middleware/requestid"
)

// @title Timeweaver Engine API
// @version 1.0.0
// @description Timetable generation, conflict detection and publishing for academic scopes
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var reportCache service.ReportCache
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		reportCache = service.NewRedisReportCache(redisClient, logr)
	}

	entityRepo := repository.NewEntityRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	conflictRepo := repository.NewConflictRepository(db)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	generatorSvc := service.NewGeneratorService(
		entityRepo, preferenceRepo, snapshotRepo,
		engine.NewScheduler(logr), metricsSvc, validate, logr, cfg.Scheduler)
	conflictSvc := service.NewConflictService(
		entityRepo, preferenceRepo, snapshotRepo, conflictRepo,
		engine.NewDetector(logr), reportCache, metricsSvc, validate, logr, cfg.Conflicts)
	timetableSvc := service.NewTimetableService(
		entityRepo, preferenceRepo, snapshotRepo, conflictSvc, validate, logr)
	preferenceSvc := service.NewPreferenceService(
		entityRepo, preferenceRepo, validate, logr, cfg.Scheduler.SlotsPerDay)
	exportSvc := service.NewExportService(
		timetableSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr, cfg.Export)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conflictSvc.Start(ctx)
	defer conflictSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	timetableHandler := handler.NewTimetableHandler(generatorSvc, timetableSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	preferenceHandler := handler.NewPreferenceHandler(preferenceSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/timetable/generate", timetableHandler.Generate)
		api.GET("/timetable", timetableHandler.Get)
		api.GET("/timetable/versions", timetableHandler.Versions)
		api.PUT("/timetable", timetableHandler.Replace)
		api.GET("/timetable/export", exportHandler.Export)

		api.POST("/conflicts/scan", conflictHandler.Scan)
		api.GET("/conflicts", conflictHandler.List)
		api.POST("/conflicts/:id/resolve", conflictHandler.Resolve)

		api.GET("/faculty/:id/preferences", preferenceHandler.Get)
		api.PUT("/faculty/:id/preferences", preferenceHandler.Replace)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}
