package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hostfolio/bookpipe/internal/config"
	"github.com/hostfolio/bookpipe/internal/database"
	"github.com/hostfolio/bookpipe/internal/database/migrations"
	internalhttp "github.com/hostfolio/bookpipe/internal/http"
	"github.com/hostfolio/bookpipe/internal/http/handlers"
	"github.com/hostfolio/bookpipe/internal/importer"
	"github.com/hostfolio/bookpipe/internal/observability"
	"github.com/hostfolio/bookpipe/internal/repository"
	"github.com/hostfolio/bookpipe/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bookpipe server",
	Long: `Start the bookpipe HTTP server and API.

The server provides:
- REST API for properties, mapping templates, and import sessions
- Booking and upload history endpoints
- Health check endpoint
- OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("database", "bookpipe.db", "Database DSN (file path for sqlite)")

	mustBindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	mustBindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	mustBindPFlag("database.dsn", serveCmd.Flags().Lookup("database"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// CLI flags override config file and environment values, but only
	// when explicitly provided.
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = viper.GetString("server.host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = viper.GetInt("server.port")
	}
	if cmd.Flags().Changed("database") {
		cfg.Database.DSN = viper.GetString("database.dsn")
	}

	// Initialize database
	db, err := database.New(cfg.Database, observability.WithComponent(logger, "database"), nil)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db, logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Initialize repositories
	templateRepo := repository.NewMappingTemplateRepository(db.DB)
	propertyRepo := repository.NewPropertyRepository(db.DB)
	bookingRepo := repository.NewBookingRepository(db.DB)
	auditRepo := repository.NewBookingAuditRepository(db.DB)
	uploadRepo := repository.NewUploadRecordRepository(db.DB)

	// Initialize import service
	importService := importer.NewService(
		templateRepo,
		propertyRepo,
		bookingRepo,
		auditRepo,
		uploadRepo,
		observability.WithComponent(logger, "importer"),
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the session janitor
	janitor := importer.NewJanitor(importService, cfg.Import.PurgeCron, cfg.Import.SessionTTL).
		WithLogger(observability.WithComponent(logger, "janitor"))
	if err := janitor.Start(ctx); err != nil {
		return fmt.Errorf("starting session janitor: %w", err)
	}
	defer janitor.Stop()

	// Initialize HTTP server
	serverConfig := internalhttp.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	if cfg.Server.ReadTimeout > 0 {
		serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout > 0 {
		serverConfig.WriteTimeout = cfg.Server.WriteTimeout
	}
	if cfg.Server.ShutdownTimeout > 0 {
		serverConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		serverConfig.CORSOrigins = cfg.Server.CORSOrigins
	}
	server := internalhttp.NewServer(serverConfig, logger, version.Version)

	// Register handlers
	healthHandler := handlers.NewHealthHandler(version.Version).WithDB(db.DB)
	healthHandler.Register(server.API())

	templateHandler := handlers.NewMappingTemplateHandler(templateRepo)
	templateHandler.Register(server.API())

	propertyHandler := handlers.NewPropertyHandler(propertyRepo)
	propertyHandler.Register(server.API())

	importHandler := handlers.NewImportHandler(importService, cfg.Import.MaxUploadSize.Bytes())
	importHandler.Register(server.API())

	uploadHandler := handlers.NewUploadHandler(uploadRepo, bookingRepo)
	uploadHandler.Register(server.API())

	bookingHandler := handlers.NewBookingHandler(bookingRepo, auditRepo)
	bookingHandler.Register(server.API())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	// Start server
	logger.Info("starting bookpipe server",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.String("database_driver", db.Driver()),
		slog.String("version", version.Version),
	)

	return server.ListenAndServe(ctx)
}

func runMigrations(db *database.DB, logger *slog.Logger) error {
	migrator := migrations.NewMigrator(db.DB, logger)
	migrator.RegisterAll(migrations.AllMigrations())
	return migrator.Up(context.Background())
}
