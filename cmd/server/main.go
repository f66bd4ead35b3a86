package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vocabuddy/progress/internal/api"
	"github.com/vocabuddy/progress/internal/assistant"
	"github.com/vocabuddy/progress/internal/auth"
	"github.com/vocabuddy/progress/internal/catalog"
	"github.com/vocabuddy/progress/internal/config"
	"github.com/vocabuddy/progress/internal/db"
	"github.com/vocabuddy/progress/internal/jobs"
	"github.com/vocabuddy/progress/internal/ledger"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/repository/mysql"
	"github.com/vocabuddy/progress/internal/repository/postgres"
	"github.com/vocabuddy/progress/internal/repository/sqlite"
	"github.com/vocabuddy/progress/internal/session"
	"github.com/vocabuddy/progress/internal/stores"
	"github.com/vocabuddy/progress/internal/worker"
)

const tokenIssuer = "vocabuddy"

func openMirror(ctx context.Context, cfg config.Config) (repository.RemoteMirror, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	switch cfg.RemoteDriver {
	case config.RemotePostgres:
		return postgres.Open(ctx, cfg.RemoteDSN)
	case config.RemoteMySQL:
		return mysql.Open(ctx, cfg.RemoteDSN)
	}
	return nil, nil
}

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("Vocabuddy Progress Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("remote_driver=%s", cfg.RemoteDriver)
	log.Debug("push_worker_count=%d", cfg.PushWorkerCount)
	log.Debug("push_queue_size=%d", cfg.PushQueueSize)
	log.Debug("push_timeout=%s", cfg.PushTimeout)
	log.Debug("assistant_enabled=%t", cfg.AssistantKey != "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	local := sqlite.NewLocalStore(database.DB)
	pushLog := sqlite.NewPushLog(database.DB)

	mirror, err := openMirror(ctx, cfg)
	if err != nil {
		log.Error("failed to open remote mirror: %v", err)
		os.Exit(1)
	}
	if mirror != nil {
		defer mirror.Close()
		log.Info("remote mirror: %s", cfg.RemoteDriver)
	} else {
		log.Info("no remote mirror configured, running offline")
	}

	pushPool := worker.NewPool(cfg.PushWorkerCount, cfg.PushQueueSize)
	pushPool.Start(ctx)
	queue := jobs.NewWorkerQueue(pushPool, mirror, pushLog, cfg.PushTimeout)

	builtin, err := catalog.Exercises()
	if err != nil {
		log.Error("failed to load exercise catalog: %v", err)
		os.Exit(1)
	}

	pusher := session.NewPusher(queue)
	progress := ledger.New(local, pusher)
	words := stores.NewWordStore(local, progress, pusher)
	exercises := stores.NewExerciseStore(local, progress, pusher, builtin)
	games := stores.NewGameStore(local, progress, pusher)
	calendar := stores.NewCalendarStore(local, progress, pusher)

	sess := session.New(pusher, mirror, progress,
		[]stores.Syncable{words, exercises, games, calendar}, cfg.PushTimeout)
	events := auth.NewEvents()
	sess.Listen(ctx, events)

	var verifier *auth.Verifier
	if cfg.AuthSecret != "" {
		verifier = auth.NewVerifier(cfg.AuthSecret, tokenIssuer)
	} else {
		log.Warn("AUTH_SECRET not set, sign-in is disabled")
	}

	srv := &api.Server{
		DB:        database.DB,
		Ledger:    progress,
		Words:     words,
		Exercises: exercises,
		Games:     games,
		Calendar:  calendar,
		Session:   sess,
		Events:    events,
		Verifier:  verifier,
		PushLog:   pushLog,
		Assistant: assistant.New(cfg.AssistantURL, cfg.AssistantKey, cfg.AssistantModel),
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Pending pushes drain before the session context is cancelled.
	log.Debug("stopping push pool")
	pushPool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("Vocabuddy Progress Server Stopped")
	log.Info("===========================================")
}
