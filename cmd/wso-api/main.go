package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lzjever/mbos-wso/internal/api"
	"github.com/lzjever/mbos-wso/internal/api/middleware"
	"github.com/lzjever/mbos-wso/internal/kube"
	"github.com/lzjever/mbos-wso/internal/lifecycle"
	"github.com/lzjever/mbos-wso/internal/meta"
	"github.com/lzjever/mbos-wso/internal/observability"
	"github.com/lzjever/mbos-wso/internal/pipeline"
	"github.com/lzjever/mbos-wso/internal/scheduler"
	"github.com/lzjever/mbos-wso/internal/spec"
)

func main() {
	var cfg api.Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, _ := observability.NewLogger(cfg.LogLevel)
	defer log.Sync()

	// Replace global logger
	zap.ReplaceGlobals(log)

	reg := prometheus.DefaultRegisterer
	observability.RegisterAll(reg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := kube.NewClientset(cfg.Kubeconfig)
	if err != nil {
		log.Fatal("cluster connect failed", zap.Error(err))
	}
	gw := kube.NewGateway(client, cfg.Namespace)
	store := meta.NewStore(gw)

	// One-time rename of name-keyed metadata records to uid keys.
	if err := store.MigrateMetaKeys(ctx, log); err != nil {
		log.Fatal("metadata migration failed", zap.Error(err))
	}

	tracker := pipeline.NewTracker()
	manager := lifecycle.NewManager(gw, store, tracker, spec.Defaults{
		Image:    cfg.DefaultImage,
		DiskSize: cfg.DiskSize,
	}, log)

	engine := scheduler.NewEngine(store, manager, cfg.ScheduleInterval, log)
	go engine.Run(ctx)

	limiter := middleware.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitRequests)
	defer limiter.Close()

	// Main API server. WriteTimeout stays unset so creation streams can
	// outlive a fixed deadline.
	apiHandler := api.NewAPI(gw, store, manager, limiter, log)
	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     apiHandler.Router(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Metrics server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: mux,
	}

	go func() {
		log.Info("metrics server starting", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		log.Info("API server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("API server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down API server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)

	log.Info("API server stopped")
}
