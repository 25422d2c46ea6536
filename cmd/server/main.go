package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/xrefmend/internal/api"
	"github.com/dgallion1/xrefmend/internal/config"
	"github.com/dgallion1/xrefmend/internal/parser"
	"github.com/dgallion1/xrefmend/internal/pathstore"
	"github.com/dgallion1/xrefmend/internal/pipeline"
	"github.com/dgallion1/xrefmend/internal/resolve"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var templates map[string]string
	if cfg.LabelsFile != "" {
		t, err := resolve.LoadTemplates(cfg.LabelsFile)
		if err != nil {
			log.Error("invalid label templates", "error", err)
			os.Exit(1)
		}
		templates = t
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := pipeline.NewLatencyStats(cfg.StatsWindow)
	engine := pipeline.NewEngine(pipeline.EngineOptions{
		Resolver: resolve.New(templates),
		Stats:    stats,
		Parser:   parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		Log:      log,
	})

	// Storage is optional. Interfaces stay nil when it is off.
	var (
		ps    *pathstore.Client
		store pipeline.Store
		docs  api.DocumentStore
	)
	if cfg.StoreEnabled() {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		store, docs = ps, ps
	} else {
		log.Info("pathstore disabled, results kept in memory only")
	}

	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		MaxRetries:   cfg.MaxRetries,
		JobTTL:       cfg.JobTTL,
	}, engine, store, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, api.Options{Docs: docs, Stats: stats, Templates: templates}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if ps != nil {
			ps.Close()
		}
	}()

	log.Info("starting xrefmend", "port", cfg.Port, "workers", cfg.WorkerCount, "store", cfg.StoreEnabled())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
