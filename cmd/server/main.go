package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusrooms/roomwatch/internal/config"
	"github.com/campusrooms/roomwatch/internal/database"
	"github.com/campusrooms/roomwatch/internal/handler"
	"github.com/campusrooms/roomwatch/internal/libcal"
	"github.com/campusrooms/roomwatch/internal/model"
	"github.com/campusrooms/roomwatch/internal/notify"
	"github.com/campusrooms/roomwatch/internal/scheduler"
	"github.com/campusrooms/roomwatch/internal/service"
	"github.com/campusrooms/roomwatch/internal/worker"
	"github.com/campusrooms/roomwatch/pkg/middleware"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	config.InitLogger(cfg)

	slog.Info("Starting RoomWatch Booking Service", "version", version)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to MongoDB
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			slog.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	// Create indexes
	if err := database.CreateIndexes(ctx, db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	monitorRepo := database.NewMonitorRepository(db)
	userRepo := database.NewUserRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	checkRepo := database.NewCheckRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	lockRepo := database.NewLockRepository(db)

	// Initialize booking engine
	booker := service.NewBooker(libcal.Config{
		BaseURL:           cfg.LibCalBaseURL,
		LocationID:        cfg.LibCalLocationID,
		GroupID:           cfg.LibCalGroupID,
		AttestationField:  cfg.LibCalAttestationField,
		AttestationAnswer: cfg.LibCalAttestationAnswer,
	}, cfg.BookingTimeout)

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionRepo, cfg.AuthAllowedEmailDomains, cfg.AuthSessionTTL)
	monitorService := service.NewMonitorService(monitorRepo, booker)
	historyService := service.NewHistoryService(checkRepo, notificationRepo)
	asyncBooker := service.NewAsyncBooker(booker)

	// Initialize webhook dispatcher and outcome notifier
	dispatcher := notify.NewDispatcher(cfg.NotifyTimeout, model.RetryConfig{
		MaxAttempts:    cfg.NotifyMaxAttempts,
		InitialDelayMs: cfg.NotifyInitialDelayMs,
		MaxDelayMs:     cfg.NotifyMaxDelayMs,
	})
	notifier := notify.NewOutcomeNotifier(dispatcher, notificationRepo)

	// Initialize worker pool
	pool := worker.NewWorkerPool(cfg.WorkerPoolSize, cfg.MaxConcurrentJobs)

	// Initialize checker
	checker := service.NewChecker(
		monitorRepo,
		lockRepo,
		checkRepo,
		booker,
		notifier,
		pool,
		cfg.SchedulerLockTTL,
	)

	pool.SetExecutor(checker.CheckOne)
	pool.Start()

	// Initialize scheduler
	sched, err := scheduler.NewScheduler(cfg, checker, lockRepo)
	if err != nil {
		slog.Error("Invalid scheduler configuration", "schedule", cfg.SchedulerSchedule, "error", err)
		os.Exit(1)
	}
	sched.Start(ctx)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, cfg.AuthSessionTTL)
	availabilityHandler := handler.NewAvailabilityHandler(booker)
	bookingHandler := handler.NewBookingHandler(booker, asyncBooker)
	monitorHandler := handler.NewMonitorHandler(monitorService, checker)
	historyHandler := handler.NewHistoryHandler(historyService)
	healthHandler := handler.NewHealthHandler(db, version)

	// Create CORS config
	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	}

	// Create router
	router := handler.NewRouter(
		authHandler,
		availabilityHandler,
		bookingHandler,
		monitorHandler,
		historyHandler,
		healthHandler,
		corsConfig,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Received shutdown signal, initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop scheduler first (wait for the in-flight sweep)
	slog.Info("Stopping scheduler...")
	sched.Stop(shutdownCtx)

	// Shutdown HTTP server before the pool so in-flight requests can still
	// submit checks
	slog.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Stop worker pool (drain queued checks)
	slog.Info("Stopping worker pool...")
	pool.Stop()

	slog.Info("RoomWatch Booking Service stopped")
}
