package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "credit-approval/docs"
	"credit-approval/internal/api"
	"credit-approval/internal/batch"
	"credit-approval/internal/config"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/event"
	"credit-approval/internal/infrastructure/database/postgres"
	"credit-approval/internal/infrastructure/logging"
	"credit-approval/internal/ingest"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// @title Credit Approval API
// @version 1.0
// @description API documentation for the credit approval service: customer registration, loan eligibility checks and loan booking.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	if len(os.Args) > 1 {
		runSubcommand(os.Args[1:], cfg, logger)
		return
	}

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	publisher, closePublisher := initializePublisher(cfg, logger)
	defer closePublisher()

	loanService, customerService, loanRepo := initializeServices(dbPool, publisher, logger)

	maturityJob := batch.NewLoanMaturityJob(loanRepo, logger)

	cronScheduler := startBatchJobs(cfg, logger, maturityJob)
	router := api.SetupRouter(loanService, customerService, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func runSubcommand(args []string, cfg *config.Config, logger *slog.Logger) {
	switch args[0] {
	case "migrate":
		runMigrate(args[1:], cfg, logger)
	case "ingest":
		runIngest(cfg, logger)
	default:
		logger.Error("Unknown subcommand", "subcommand", args[0])
		fmt.Fprintf(os.Stderr, "usage: %s [migrate up|down [steps]|status | ingest]\n", os.Args[0])
		os.Exit(2)
	}
}

func runMigrate(args []string, cfg *config.Config, logger *slog.Logger) {
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}

	var err error
	switch direction {
	case "up":
		err = postgres.MigrateUp(cfg.Database.URL, logger)
	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil || steps <= 0 {
				logger.Error("Invalid number of steps", "steps", args[1])
				os.Exit(2)
			}
		}
		err = postgres.MigrateDown(cfg.Database.URL, steps, logger)
	case "status":
		err = postgres.MigrateStatus(cfg.Database.URL, logger)
	default:
		logger.Error("Unknown migrate direction", "direction", direction)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}

func runIngest(cfg *config.Config, logger *slog.Logger) {
	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	loader := ingest.NewLoader(dbPool, logger)
	if err := loader.Run(context.Background(), cfg.Ingest.CustomerFile, cfg.Ingest.LoanFile); err != nil {
		logger.Error("Ingest failed", "error", err)
		os.Exit(1)
	}
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func initializePublisher(cfg *config.Config, logger *slog.Logger) (event.Publisher, func()) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ disabled, domain events will not be published.")
		return event.NoopPublisher{}, func() {}
	}

	url := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		cfg.RabbitMQ.Username, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	conn, err := amqp.Dial(url)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ, falling back to noop publisher", "error", err)
		return event.NoopPublisher{}, func() {}
	}

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to set up RabbitMQ publisher, falling back to noop publisher", "error", err)
		conn.Close()
		return event.NoopPublisher{}, func() {}
	}

	logger.Info("RabbitMQ publisher initialized", "exchange", cfg.RabbitMQ.ExchangeName)
	return publisher, func() {
		logger.Info("Closing RabbitMQ connection...")
		conn.Close()
	}
}

func initializeServices(dbPool *pgxpool.Pool, publisher event.Publisher, logger *slog.Logger) (loan.LoanService, customer.CustomerService, loan.Repository) {
	logger.Info("Initializing application components...")
	loanRepo := postgres.NewLoanRepository(dbPool, logger)
	customerRepo := postgres.NewCustomerRepository(dbPool, logger)
	customerService := customer.NewCustomerService(customerRepo, publisher, logger)
	return loan.NewLoanService(loanRepo, customerService, publisher, logger), customerService, loanRepo
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server graceful shutdown failed", "error", err)
		}
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, maturityJob *batch.LoanMaturityJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.LoanMaturitySchedule
	if scheduleSpec == "" {
		scheduleSpec = "0 2 * * *"
		logger.Warn("Loan maturity schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.LoanMaturityTimeout
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Minute
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "LoanMaturity")
		jobLogger.Info("Cron triggered: Running loan maturity job.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := maturityJob.Run(ctx); runErr != nil {
			jobLogger.Error("Loan maturity job finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Loan maturity job finished successfully.")
		}
	}))

	if err != nil {
		logger.Error("Failed to schedule loan maturity job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled loan maturity job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}
