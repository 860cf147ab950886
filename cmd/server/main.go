package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "srm-agent-portal/internal/api/grpc"
	httpapi "srm-agent-portal/internal/api/http"
	"srm-agent-portal/internal/config"
	"srm-agent-portal/internal/jobs"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/repository/postgres"
	"srm-agent-portal/internal/scheduler"
	"srm-agent-portal/internal/security"
	"srm-agent-portal/internal/service"
	"srm-agent-portal/internal/storage"

	_ "github.com/lib/pq"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting SRM Agent Portal...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress(), "timezone", cfg.Server.Timezone)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())

	// Initialize Storage Service
	if cfg.Storage.Type != "mock" {
		logger.Error("Unsupported storage type", "type", cfg.Storage.Type)
		log.Fatalf("Storage type '%s' not yet implemented", cfg.Storage.Type)
	}
	logger.Info("Using mock storage (local filesystem)", "upload_dir", cfg.Storage.UploadDir)
	mockStorage, err := storage.NewMockStorageService(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize mock storage", "error", err)
		log.Fatalf("Failed to initialize mock storage: %v", err)
	}

	// Initialize Services
	fileSvc := service.NewFileService(mockStorage, store.StoredFileRepository, cfg.Storage.MaxFileSize*1024*1024, cfg.Storage.AllowedTypes)
	emailSvc := service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	if cfg.Email.SendGridAPIKey == "" {
		logger.Warn("SendGrid API key not configured, booking confirmations are disabled")
	}
	gateway := service.NewBookingGateway(store.CustomerRepository, store.VehicleRepository, store.BookingRepository)
	registry := service.NewSessionRegistry(cfg.FlowIdleTimeout())
	flowSvc := service.NewBookingFlowService(registry, gateway, fileSvc, emailSvc, cfg.Location())
	authSvc := service.NewAuthService(store.AgentRepository, tokenManager)

	// Health reporting, driven by the database probe job
	healthReporter := api.NewHealthReporter()
	healthReporter.SetServing(true)

	// In-process maintenance jobs
	jobRunner := jobs.NewJobRunner(db, &jobs.Services{Flows: flowSvc, Files: fileSvc}, healthReporter, cfg)
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		logger.Error("Failed to initialize scheduler", "error", err)
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:   httpapi.NewAuthHandler(authSvc),
		Flows:  httpapi.NewFlowHandler(flowSvc),
		Files:  httpapi.NewFileHandler(fileSvc, flowSvc, mockStorage.DownloadURL),
		Health: httpapi.NewHealthHandler(healthReporter.Server()),
	}, httpapi.NewAuthMiddleware(tokenManager))

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := api.NewServer(healthReporter)

	serveErr := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		logger.Info("gRPC health server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			serveErr <- fmt.Errorf("grpc: %w", err)
		}
	}()

	cronScheduler.Start()

	// Wait for interrupt signal or a listener failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Received signal", "signal", sig.String())
	case err := <-serveErr:
		logger.Error("Server error", "error", err)
	}

	// Graceful shutdown
	logger.Info("Shutting down...")
	healthReporter.Shutdown()
	cronScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("SRM Agent Portal stopped")
}
