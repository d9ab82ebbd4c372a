package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"LCInvestor/internal/config"
	"LCInvestor/internal/gateway"
	"LCInvestor/internal/notifier"
	"LCInvestor/internal/scheduler"
	"LCInvestor/internal/session"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load config
	cfgPath := "lcInvestor.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, logFile, err := bootstrap(logger, cfgPath, config.DefaultLog())
	defer logFile.Close()
	if err != nil {
		return 1
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw := gateway.NewLendingClub(cfg, logger)
	logger.WithField("gateway", gw.Name()).Info("marketplace gateway ready")

	var notify notifier.Notifier = notifier.NoopNotifier{}
	if cfg.Telegram.Enabled() {
		notify = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Gateway.Proxy, logger)
	}

	invest := func(ctx context.Context) error {
		summary, err := session.New(cfg, gw, logger).Run(ctx)
		if err != nil {
			logger.WithError(err).Error("investment session failed")
		}
		if nerr := notify.SendWithRetry(ctx, notifier.FormatSessionReport(summary), 3); nerr != nil {
			logger.WithError(nerr).Error("send session report")
		}
		return err
	}

	if cfg.Schedule.Cron == "" {
		if err := invest(ctx); err != nil {
			return 1
		}
		return 0
	}

	sched := scheduler.NewScheduler(ctx, func(ctx context.Context) { _ = invest(ctx) }, logger)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		logger.WithError(err).Error("register schedule")
		return 1
	}
	sched.Start()
	logger.WithField("cron", cfg.Schedule.Cron).Info("LCInvestor is running. Press Ctrl+C to stop.")

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping...")
	sched.Stop()
	logger.Info("LCInvestor stopped")
	return 0
}

// bootstrap loads the config while logging to the default file, so a config
// failure reaches disk too. On success the logger is moved to the configured
// file and level. The returned closer is never nil.
func bootstrap(logger *logrus.Logger, cfgPath string, fallback config.Log) (*config.Config, io.Closer, error) {
	logFile := setupLogging(logger, fallback)
	logger.Info("LCInvestor starting...")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.WithError(err).Error("load config")
		return nil, logFile, err
	}
	if cfg.Log == fallback {
		return cfg, logFile, nil
	}

	logFile.Close()
	return cfg, setupLogging(logger, cfg.Log), nil
}

// setupLogging sends log output to stdout and a size-rotated file.
func setupLogging(logger *logrus.Logger, cfg config.Log) io.Closer {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithError(err).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, file))
	return file
}
