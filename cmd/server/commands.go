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

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/gestor/internal/config"
	"github.com/jimdaga/gestor/internal/database"
	"github.com/jimdaga/gestor/internal/logging"
	"github.com/jimdaga/gestor/internal/models"
	"github.com/jimdaga/gestor/internal/notifications"
	"github.com/jimdaga/gestor/internal/server"
	"github.com/jimdaga/gestor/internal/streams"
	"github.com/jimdaga/gestor/internal/worker"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// loadConfig reads .env, the configuration and sets the default logger
func loadConfig() (*config.Config, *slog.Logger, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openDatabase connects and, when RUN_MIGRATIONS is set, migrates
func openDatabase(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected", "driver", database.DriverFor(cfg.DatabaseURL))

	if cfg.RunMigrations {
		if err := database.RunMigrations(db); err != nil {
			database.Close(db)
			return nil, err
		}
		logger.Info("Migrations applied")
	}
	return db, nil
}

// newPublisher returns nil when Redis is not configured
func newPublisher(cfg *config.Config, logger *slog.Logger) *streams.Publisher {
	if cfg.RedisURL == "" {
		return nil
	}
	publisher, err := streams.NewPublisher(cfg.RedisURL, cfg.NotificationStream)
	if err != nil {
		logger.Warn("Notification stream disabled", "error", err.Error())
		return nil
	}
	return publisher
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var opts server.Options
	var queue *worker.QueueDispatcher
	if publisher := newPublisher(cfg, logger); publisher != nil {
		defer publisher.Close()
		opts.Events = publisher
	}
	if cfg.RedisURL != "" {
		opts.WrapDispatcher = func(inline notifications.Dispatcher) notifications.Dispatcher {
			q, err := worker.NewQueueDispatcher(cfg.RedisURL, inline, logger)
			if err != nil {
				logger.Warn("Notification queue disabled, delivering inline", "error", err.Error())
				return inline
			}
			queue = q
			return q
		}
	}

	svcs, err := server.NewServices(db, logger, opts)
	if err != nil {
		return err
	}
	if queue != nil {
		defer queue.Close()
		stopWorker, err := worker.Start(cfg, svcs.Notifications, logger)
		if err != nil {
			return err
		}
		defer stopWorker()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(db, svcs, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "queue", queue != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		logger.Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Error during shutdown", "error", err.Error())
	}
	logger.Info("Server stopped gracefully")
	return nil
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RedisURL == "" {
		return errors.New("REDIS_URL is required to run the worker")
	}
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var events notifications.EventPublisher
	if publisher := newPublisher(cfg, logger); publisher != nil {
		defer publisher.Close()
		events = publisher
	}
	svc := notifications.NewService(notifications.NewRepository(db), events, logger)
	return worker.Run(cfg, svc, logger)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.RunMigrations = true
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	seed, _ := cmd.Flags().GetBool("seed")
	if seed {
		if err := database.SeedDevData(db); err != nil {
			return err
		}
		logger.Info("Development data seeded", "email", database.DevUserEmail)
	}
	return nil
}

func runSeedNotification(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || userID == 0 {
		return fmt.Errorf("invalid id_usuario %q", args[0])
	}
	message, _ := cmd.Flags().GetString("mensaje")

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var events notifications.EventPublisher
	if publisher := newPublisher(cfg, logger); publisher != nil {
		defer publisher.Close()
		events = publisher
	}
	svc := notifications.NewService(notifications.NewRepository(db), events, logger)

	link := "/dashboard"
	n, err := svc.Create(cmd.Context(), notifications.Request{
		UserID: uint(userID),
		Type:   models.NotificationTest,
		Title:  "Hola 👋",
		Body:   &message,
		Link:   &link,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Notificación creada con id=%d para usuario %d\n", n.ID, userID)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RedisURL == "" {
		return errors.New("REDIS_URL is required to watch notifications")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hostname, _ := os.Hostname()
	consumer, err := streams.NewConsumer(ctx, cfg.RedisURL, cfg.NotificationStream, "watcher-"+hostname, logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	logger.Info("Watching notification stream", "stream", cfg.NotificationStream)
	if err := consumer.Consume(ctx, streams.LogEvents(logger)); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
