package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"nutridash/internal/amqp"
	"nutridash/internal/backend"
	"nutridash/internal/cli"
	"nutridash/internal/core"
	"nutridash/internal/dashboard"
	apphttp "nutridash/internal/http"
	"nutridash/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	// Initialize the data backend
	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(context.Background(), backend.Config{
		Type:         backend.BackendType(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		PostgresURL:  cfg.PostgresURL,
	})
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	svc := dashboard.NewService(result.Profiles, result.Meals, core.PeriodMode(cfg.PeriodMode),
		logger.With(log.FieldComponent, log.ComponentDashboard))

	srv := apphttp.NewServer(":"+cfg.Port, svc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Consume pushed meal inserts so live views stay current. The
	// push channel is optional: without AMQP_URL the dashboard serves
	// fetch-only.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}

		go func() {
			err := amqpClient.ConsumeMealInserted(ctx, func(msg *amqp.MealInsertedMessage) error {
				svc.HandleMealInserted(msg.UserID, msg.Record)
				srv.InvalidateSnapshot(msg.UserID)
				return nil
			})
			if err != nil && err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
		}()
		logger.Info("Live update channel enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Live update channel disabled - no AMQP_URL provided")
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		sctx, scancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer scancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if amqpClient != nil {
			amqpClient.Close()
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
		cancel()
	})

	logger.Info("Starting nutridash server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		log.FieldPeriodMode, cfg.PeriodMode)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
