package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/savings-group-ledger/internal/api_gateway"
	"github.com/savings-group-ledger/internal/api_gateway/service"
	"github.com/savings-group-ledger/internal/config"
	"github.com/savings-group-ledger/internal/data/mongo"
	"github.com/savings-group-ledger/internal/data/postgres"
	"github.com/savings-group-ledger/internal/logger"
	"github.com/savings-group-ledger/internal/platform/messaging/producers"
	"github.com/savings-group-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer (publishes delinquency scan requests)
	kafkaProducer, err := producers.NewScanReqMessageProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	memberRepo := postgres.NewMemberRepository(log, postgresDB)
	savingsRepo := postgres.NewSavingsRepository(log, postgresDB)
	loanRepo := postgres.NewLoanRepository(log, postgresDB)
	groupRepo := postgres.NewGroupRepository(log, postgresDB)
	fineRepo := postgres.NewFineRepository(log, postgresDB)
	cashboxRepo := postgres.NewCashboxRepository(log, postgresDB)
	closureRepo := mongo.NewClosureRepository(log, mongoDB.Database())

	// Initialize services
	memberService := service.NewMemberService(memberRepo, groupRepo)
	savingsService := service.NewSavingsService(log, postgresDB, memberRepo, savingsRepo)
	loanService := service.NewLoanService(log, postgresDB, loanRepo, memberRepo, savingsRepo, groupRepo, cashboxRepo)
	fineService := service.NewFineService(log, postgresDB, fineRepo, memberRepo, groupRepo, cashboxRepo, cfg.Delinquency)
	groupService := service.NewGroupService(log, groupRepo, cashboxRepo)
	scanService := service.NewScanService(log, groupRepo, kafkaProducer)
	cycleService := service.NewCycleService(log, postgresDB, groupRepo, memberRepo, savingsRepo, loanRepo, fineRepo, cashboxRepo, closureRepo)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, memberService, savingsService, loanService, fineService, groupService, scanService, cycleService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server before its backing stores
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = kafkaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
