package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/uptpik/amanat/internal/application/service"
	"github.com/uptpik/amanat/internal/config"
	"github.com/uptpik/amanat/internal/infrastructure/persistence/repository"
	"github.com/uptpik/amanat/internal/infrastructure/persistence/sqlite"
	"github.com/uptpik/amanat/internal/infrastructure/storage"
	httpiface "github.com/uptpik/amanat/internal/interfaces/http"
	"github.com/uptpik/amanat/internal/report"
	"github.com/uptpik/amanat/pkg/database"
	"github.com/uptpik/amanat/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting correspondence tracking system",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Create attachment directory
	if err := os.MkdirAll(cfg.Storage.AttachmentDir, 0755); err != nil {
		logger.Fatal("Failed to create attachment directory", zap.Error(err))
	}

	// Initialize repositories
	txDB := sqlite.NewDB(db.DB, logger)
	incomingRepo := repository.NewIncomingLetterRepository(db.DB, logger)
	outgoingRepo := repository.NewOutgoingLetterRepository(db.DB, logger)
	trackingRepo := repository.NewTrackingRepository(db.DB, logger)
	dispositionRepo := repository.NewDispositionRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	attachmentRepo := repository.NewAttachmentRepository(db.DB, logger)

	fileStore := storage.NewLocalFileStore(cfg.Storage.AttachmentDir, logger)

	// Initialize services
	serviceLogger := &zapLoggerAdapter{logger: logger}
	letterService := service.NewLetterService(incomingRepo, outgoingRepo, trackingRepo, txDB, serviceLogger)
	dispositionService := service.NewDispositionService(
		dispositionRepo, incomingRepo, outgoingRepo, trackingRepo, userRepo, txDB, serviceLogger)
	trackingService := service.NewTrackingService(trackingRepo, incomingRepo, outgoingRepo, serviceLogger)
	dashboardService := service.NewDashboardService(incomingRepo, outgoingRepo, dispositionRepo, serviceLogger)
	attachmentService := service.NewAttachmentService(attachmentRepo, incomingRepo, outgoingRepo, fileStore, serviceLogger)
	userService := service.NewUserService(userRepo, serviceLogger)

	registerExporter := report.NewRegisterExporter(incomingRepo, outgoingRepo, cfg.Org.Name, logger)

	// Initialize HTTP server
	server := httpiface.NewServer(
		httpiface.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			MaxUploadMB:  cfg.Storage.MaxUploadMB,
		},
		letterService,
		dispositionService,
		trackingService,
		dashboardService,
		attachmentService,
		userService,
		registerExporter,
		serviceLogger,
	)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// zapLoggerAdapter adapts zap.Logger to the keysAndValues Logger interfaces
// used by the service and http packages
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
