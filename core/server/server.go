package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dagplanner-api/core/cache"
	"dagplanner-api/core/config"
	"dagplanner-api/core/constants"
	"dagplanner-api/core/database"
	"dagplanner-api/core/logger"
	"dagplanner-api/core/middleware"
	"dagplanner-api/core/queue"
	"dagplanner-api/core/utils"
	"dagplanner-api/modules/calendar"
	"dagplanner-api/modules/schedule"
	"dagplanner-api/modules/schedule/repository"
	syncmodule "dagplanner-api/modules/sync"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
)

// Run wires up the application and blocks until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Server.LogLevel)

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return err
	}

	c, err := cache.InitCache(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}

	redisOpt := queue.RedisOpt(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	queueClient := queue.InitClient(redisOpt)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: utils.GenerateID,
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "request_id", v.RequestID)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.NewMiddleware()

	calendarSvc := calendar.Init(e, &db, c, mw)
	enqueuer := syncmodule.NewEnqueuer()
	schedule.Init(e, &db, mw, calendarSvc, enqueuer)

	scheduleRepo := repository.NewScheduleRepository(&db)
	worker := syncmodule.NewWorker(scheduleRepo, calendarSvc)

	asynqSrv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: constants.SyncWorkerConcurrency,
		Queues: map[string]int{
			constants.SyncTaskQueue: 5,
			"default":               1,
		},
	})
	mux := asynq.NewServeMux()
	worker.Register(mux)

	go func() {
		if err := asynqSrv.Run(mux); err != nil {
			logger.Error("Task worker stopped", "error", err)
		}
	}()

	cronRunner := cron.New()
	if _, err := cronRunner.AddFunc(constants.PendingSyncSweep, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
		defer cancel()
		worker.SweepStalePending(ctx, enqueuer, constants.PendingSyncMaxAge)
	}); err != nil {
		return fmt.Errorf("schedule pending sync sweep: %w", err)
	}
	cronRunner.Start()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", "error", err)
		}
	}()

	logger.Info("Server started", "host", cfg.Server.Host, "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	cronCtx := cronRunner.Stop()
	<-cronCtx.Done()

	asynqSrv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}

	if err := queueClient.Close(); err != nil {
		logger.Error("Queue client close error", "error", err)
	}
	if err := c.Close(); err != nil {
		logger.Error("Cache close error", "error", err)
	}
	if err := db.SQLx().Close(); err != nil {
		logger.Error("Database close error", "error", err)
	}

	logger.Info("Server stopped")
	return nil
}
