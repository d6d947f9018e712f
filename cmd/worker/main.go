// Command worker drains the lead notification queue.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"couvreur_backend/internal/email"
	"couvreur_backend/internal/leads/repository"
	"couvreur_backend/internal/notification"
	"couvreur_backend/internal/scheduler"
	"couvreur_backend/platform/config"
	"couvreur_backend/platform/db"
	"couvreur_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	mailer, err := email.NewMailer(cfg)
	if err != nil {
		log.Error("failed to initialize mailer", "error", err)
		panic("failed to initialize mailer: " + err.Error())
	}
	if !cfg.IsEmailConfigured() {
		log.Warn(cfg.EmailCredentialKey() + " not configured; notifications will be skipped")
	}

	dispatcher := notification.NewDispatcher(mailer, cfg, log, nil)
	handler := scheduler.NewLeadNotifyHandler(repository.New(pool), dispatcher, log)

	worker, err := scheduler.NewWorker(cfg, handler, log)
	if err != nil {
		log.Error("failed to initialize notification worker", "error", err)
		panic("failed to initialize notification worker: " + err.Error())
	}

	log.Info("notification worker started", "queue", cfg.GetAsynqQueueName())
	worker.Run(ctx)
}
