package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/recall/internal/agent/cache"
	"github.com/okian/recall/internal/agent/monitor"
	"github.com/okian/recall/internal/agent/proxy"
	"github.com/okian/recall/internal/agent/queue"
	agentsync "github.com/okian/recall/internal/agent/sync"
	"github.com/okian/recall/internal/config"
	"github.com/okian/recall/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// JSON output: the agent is a daemon whose logs are collected.
	if err := logger.InitJSON(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	q, err := queue.New(cfg.QueuePath, queue.WithCapacity(cfg.QueueCapacity))
	if err != nil {
		log.Error(ctx, "failed to open submission queue",
			logger.String("path", cfg.QueuePath), logger.Error(err))
		return
	}
	log.Info(ctx, "submission queue opened",
		logger.String("path", cfg.QueuePath),
		logger.Int("pending", q.Depth()))

	store := cache.New()
	// The activate step: a bumped version tag drops that partition.
	store.Activate(map[cache.Partition]string{
		cache.Static:  cfg.StaticVersion,
		cache.Dynamic: cfg.DynamicVersion,
	})

	timeout := time.Duration(cfg.RequestTimeoutMS) * time.Millisecond
	forwarder := agentsync.NewForwarder(cfg.Origin, cfg.AuthToken,
		agentsync.WithTimeout(timeout))
	reconciler := agentsync.NewReconciler(q, forwarder)

	mon := monitor.New(cfg.Origin, q, reconciler,
		monitor.WithProbeInterval(time.Duration(cfg.ProbeIntervalSeconds)*time.Second),
		monitor.WithReconcileInterval(time.Duration(cfg.ReconcileIntervalSeconds)*time.Second))
	mon.Start(ctx)
	defer mon.Stop()

	handler := proxy.New(cfg.Origin, cfg.AuthToken, store, q, mon,
		proxy.WithTimeout(timeout))

	srv := &http.Server{
		Addr:              cfg.AgentAddr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	go func() {
		log.Info(ctx, "starting agent proxy",
			logger.String("addr", cfg.AgentAddr),
			logger.String("origin", cfg.Origin))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("agent proxy failed: " + err.Error() + "\n")
			return
		}
	}()

	go warmStaticAssets(ctx, cfg)

	<-ctx.Done()
	log.Info(ctx, "shutting down agent...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "agent shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "agent stopped")
}

// warmStaticAssets pulls the configured assets through the proxy so the
// static partition is populated while the origin is reachable.
func warmStaticAssets(ctx context.Context, cfg *config.Config) {
	base := "http://127.0.0.1" + cfg.AgentAddr
	client := &http.Client{Timeout: 10 * time.Second}

	// Give the listener a moment to come up.
	time.Sleep(500 * time.Millisecond)

	for _, path := range cfg.StaticAssets {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
		if err != nil {
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			logger.Get().Debug(ctx, "static asset warmup skipped",
				logger.String("path", path), logger.Error(err))
			continue
		}
		resp.Body.Close()
	}
}
