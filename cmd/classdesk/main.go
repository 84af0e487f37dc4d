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
	"go.uber.org/zap"

	_ "github.com/classdesk/classdesk-api/api/swagger"
	"github.com/classdesk/classdesk-api/internal/genai"
	"github.com/classdesk/classdesk-api/internal/handler"
	"github.com/classdesk/classdesk-api/internal/middleware"
	"github.com/classdesk/classdesk-api/internal/repository"
	"github.com/classdesk/classdesk-api/internal/service"
	"github.com/classdesk/classdesk-api/internal/store"
	"github.com/classdesk/classdesk-api/pkg/cache"
	"github.com/classdesk/classdesk-api/pkg/config"
	"github.com/classdesk/classdesk-api/pkg/database"
	"github.com/classdesk/classdesk-api/pkg/jobs"
	"github.com/classdesk/classdesk-api/pkg/logger"
	corsmiddleware "github.com/classdesk/classdesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classdesk/classdesk-api/pkg/middleware/requestid"
	"github.com/classdesk/classdesk-api/pkg/storage"
)

// @title ClassDesk API
// @version 1.0.0
// @description Teacher productivity dashboard backend
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	// Offline mode keeps the whole app usable with no backend at all:
	// seeded in-memory document, no assistant. It is entered explicitly
	// through config or implicitly when the database is unreachable.
	offline := cfg.Offline
	var docStore store.Store
	var pgStore *store.PostgresStore
	if !offline {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Warn("database unreachable, entering offline mode", zap.Error(err))
			offline = true
		} else {
			rdb, err := cache.NewRedis(cfg.Redis)
			if err != nil {
				logr.Warn("redis unavailable, continuing without live replication", zap.Error(err))
				rdb = nil
			}
			pgStore = store.NewPostgresStore(ctx, store.PostgresStoreParams{
				DB:     db,
				Redis:  rdb,
				Logger: logr,
				QueueConfig: jobs.QueueConfig{
					Workers:    cfg.Writer.Workers,
					MaxRetries: cfg.Writer.MaxRetries,
					RetryDelay: cfg.Writer.RetryDelay,
					Logger:     logr,
				},
				OnWriteFailure: func() { metrics.RecordDocumentWrite(true) },
			})
			docStore = pgStore
		}
	}
	if offline {
		docStore = store.NewMemoryStore(logr)
	}

	genaiCfg := genai.Config{
		APIKey:  cfg.GenAI.APIKey,
		Model:   cfg.GenAI.Model,
		BaseURL: cfg.GenAI.BaseURL,
		Timeout: cfg.GenAI.Timeout,
	}
	if offline {
		genaiCfg.APIKey = ""
	}
	assistant := genai.NewClient(genaiCfg, logr)

	var cacheRepo service.CacheRepository
	cacheEnabled := false
	if !offline && cfg.Redis.Enabled {
		if rdb, err := cache.NewRedis(cfg.Redis); err == nil {
			cacheRepo = repository.NewCacheRepository(rdb, logr)
			cacheEnabled = true
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheEnabled)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("could not prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()
	userID := cfg.Session.UserID

	xpSvc := service.NewXPService(docStore, logr)
	authSvc := service.NewAuthService(docStore, cfg.Session, validate, logr)
	classSvc := service.NewClassService(docStore, validate, xpSvc, logr)
	attendanceSvc := service.NewAttendanceService(docStore, xpSvc, logr)
	seatingSvc := service.NewSeatingService(docStore, validate, logr)
	scheduleSvc := service.NewScheduleService(docStore, validate, logr)
	curriculumSvc := service.NewCurriculumService(docStore, validate, logr)
	homeworkSvc := service.NewHomeworkService(docStore, validate, xpSvc, logr)
	todoSvc := service.NewTodoService(docStore, validate, logr)
	postSvc := service.NewPostService(docStore, validate, logr)
	termSvc := service.NewTermService(docStore, validate, logr)
	insightSvc := service.NewInsightService(docStore, assistant, attendanceSvc, xpSvc, validate, logr)
	imageSvc := service.NewImageService(docStore, cfg.Images.MaxEncodedBytes, logr)
	focusSvc := service.NewFocusService(logr)
	exportSvc := service.NewExportService(docStore, files, signer, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Store:         docStore,
		Terms:         termSvc,
		Schedule:      scheduleSvc,
		Todos:         todoSvc,
		Homework:      homeworkSvc,
		Cache:         cacheSvc,
		CacheTTL:      cfg.Dashboard.CacheTTL,
		WatchlistSize: cfg.Dashboard.WatchlistSize,
		Logger:        logr,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics, offline)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc, userID)
	api := r.Group(cfg.APIPrefix)
	api.GET("/status", metricsHandler.Status)
	api.GET("/auth/status", authHandler.Status)
	api.POST("/auth/setup", authHandler.Setup)
	api.POST("/auth/unlock", authHandler.Unlock)

	protected := api.Group("")
	protected.Use(middleware.Session(authSvc))
	protected.PUT("/auth/pin", authHandler.ChangePIN)

	classHandler := handler.NewClassHandler(classSvc, userID)
	protected.GET("/classes", classHandler.List)
	protected.POST("/classes", classHandler.Create)
	protected.POST("/classes/import", classHandler.ImportClasses)
	protected.GET("/classes/:id", classHandler.Get)
	protected.PATCH("/classes/:id", classHandler.Update)
	protected.DELETE("/classes/:id", classHandler.Delete)
	protected.POST("/classes/:id/students", classHandler.AddStudent)
	protected.POST("/classes/:id/roster/import", classHandler.ImportStudents)
	protected.POST("/classes/:id/roster/import-xlsx", classHandler.ImportRosterXLSX)
	protected.PATCH("/classes/:id/students/:studentId", classHandler.UpdateStudent)
	protected.DELETE("/classes/:id/students/:studentId", classHandler.RemoveStudent)

	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, userID)
	protected.GET("/classes/:id/attendance", attendanceHandler.Day)
	protected.POST("/classes/:id/attendance/mark-all", attendanceHandler.MarkAllPresent)
	protected.GET("/classes/:id/attendance/absentees", attendanceHandler.Absentees)
	protected.POST("/classes/:id/students/:studentId/attendance/toggle", attendanceHandler.Toggle)
	protected.GET("/classes/:id/students/:studentId/attendance/rate", attendanceHandler.Rate)

	seatingHandler := handler.NewSeatingHandler(seatingSvc, userID)
	protected.GET("/classes/:id/seating", seatingHandler.Chart)
	protected.PUT("/classes/:id/seating", seatingHandler.Save)
	protected.DELETE("/classes/:id/seating", seatingHandler.Reset)

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, userID)
	protected.GET("/schedule", scheduleHandler.Week)
	protected.GET("/schedule/today", scheduleHandler.Today)
	protected.PUT("/schedule/:day", scheduleHandler.ReplaceDay)
	protected.DELETE("/schedule/:day", scheduleHandler.ClearDay)

	curriculumHandler := handler.NewCurriculumHandler(curriculumSvc, userID)
	protected.GET("/classes/:id/curriculum", curriculumHandler.TermPlans)
	protected.GET("/classes/:id/curriculum/plan", curriculumHandler.Plan)
	protected.PUT("/classes/:id/curriculum", curriculumHandler.Save)

	homeworkHandler := handler.NewHomeworkHandler(homeworkSvc, userID)
	protected.GET("/homework", homeworkHandler.List)
	protected.POST("/homework", homeworkHandler.Create)
	protected.DELETE("/homework/:id", homeworkHandler.Delete)
	protected.GET("/homework/:id/pending", homeworkHandler.Pending)
	protected.POST("/homework/:id/completion/:studentId", homeworkHandler.ToggleCompletion)
	protected.GET("/classes/:id/homework/watchlist", homeworkHandler.Watchlist)

	todoHandler := handler.NewTodoHandler(todoSvc, userID)
	protected.GET("/todos", todoHandler.List)
	protected.POST("/todos", todoHandler.Create)
	protected.POST("/todos/:id/toggle", todoHandler.Toggle)
	protected.DELETE("/todos/:id", todoHandler.Delete)

	postHandler := handler.NewPostHandler(postSvc, userID)
	protected.GET("/posts", postHandler.List)
	protected.POST("/posts", postHandler.Create)
	protected.POST("/posts/:id/like", postHandler.ToggleLike)
	protected.DELETE("/posts/:id", postHandler.Delete)

	termHandler := handler.NewTermHandler(termSvc, userID)
	protected.GET("/terms/settings", termHandler.Settings)
	protected.PUT("/terms/settings", termHandler.Update)
	protected.GET("/terms/resolve", termHandler.Resolve)

	scoreHandler := handler.NewScoreHandler()
	protected.POST("/scores/analyze", scoreHandler.Analyze)

	insightHandler := handler.NewInsightHandler(insightSvc, userID)
	protected.GET("/journal", insightHandler.Journal)
	protected.POST("/journal", insightHandler.AddJournalEntry)
	protected.DELETE("/journal/:id", insightHandler.DeleteJournalEntry)
	protected.POST("/insights/research", insightHandler.Research)
	protected.POST("/insights/admin", insightHandler.AdminCommand)
	protected.POST("/classes/:id/students/:studentId/report", insightHandler.Report)
	protected.GET("/notes", insightHandler.QuickNotes)
	protected.PUT("/notes", insightHandler.SaveQuickNotes)

	imageHandler := handler.NewImageHandler(imageSvc, userID)
	protected.GET("/images", imageHandler.Images)
	protected.PUT("/images/:slot", imageHandler.Save)
	protected.DELETE("/images/:slot", imageHandler.Delete)

	focusHandler := handler.NewFocusHandler(focusSvc, userID)
	protected.GET("/focus", focusHandler.State)
	protected.POST("/focus/start", focusHandler.Start)
	protected.POST("/focus/pause", focusHandler.Pause)
	protected.POST("/focus/resume", focusHandler.Resume)
	protected.POST("/focus/stop", focusHandler.Stop)

	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, userID)
	protected.GET("/dashboard", dashboardHandler.Overview)
	protected.POST("/dashboard/refresh", dashboardHandler.Refresh)

	exportHandler := handler.NewExportHandler(exportSvc, userID)
	protected.POST("/classes/:id/exports/attendance", exportHandler.Attendance)
	protected.POST("/classes/:id/exports/roster", exportHandler.Roster)
	api.GET("/exports/download", exportHandler.Download)

	streamHandler := handler.NewStreamHandler(docStore, userID)
	protected.GET("/stream/document", streamHandler.Document)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "offline", offline)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("shutdown incomplete", zap.Error(err))
	}
	if pgStore != nil {
		pgStore.Stop()
	}
}
