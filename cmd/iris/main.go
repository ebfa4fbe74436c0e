package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sfinx-hq/iris/internal/backend"
	"github.com/sfinx-hq/iris/internal/config"
	"github.com/sfinx-hq/iris/internal/httpapi"
	"github.com/sfinx-hq/iris/internal/observability"
	"github.com/sfinx-hq/iris/internal/orchestrator"
	"github.com/sfinx-hq/iris/internal/platform"
	"github.com/sfinx-hq/iris/internal/transcript"
)

func main() {
	// Local development keeps credentials in .env.local; absence is fine.
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	archive, err := transcript.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("transcript archive init failed: %v", err)
	}
	defer archive.Close()

	client := backend.NewClient(cfg.BackendURL, cfg.InternalAPIKey, cfg.BackendTimeout, metrics)

	// The managed session itself (audio, inference, turn detection) runs on
	// the platform; deployments swap in the platform SDK's provider here.
	var provider platform.SessionProvider = platform.NewMockProvider()

	orch := orchestrator.New(
		client,
		provider,
		archive,
		metrics,
		cfg.AgentName,
		cfg.Pipeline,
		cfg.TranscriptQueueSize,
		cfg.BackendTimeout,
		cfg.DrainTimeout,
	)

	api := httpapi.New(client, archive, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	workerDone := make(chan error, 1)
	if cfg.PlatformWSURL != "" {
		worker := platform.NewWorker(platform.WorkerConfig{
			URL:        cfg.PlatformWSURL,
			APIKey:     cfg.PlatformAPIKey,
			AgentName:  cfg.AgentName,
			PrewarmVAD: cfg.PrewarmVAD,
		}, orch.HandleJob, metrics)
		go func() {
			workerDone <- worker.Run(runCtx)
		}()
		log.Printf("platform worker %s connecting to %s", cfg.AgentName, cfg.PlatformWSURL)
	} else {
		log.Printf("PLATFORM_WS_URL not set; serving ops endpoints only")
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if cfg.PlatformWSURL != "" {
		select {
		case <-workerDone:
		case <-shutdownCtx.Done():
			log.Printf("worker did not stop within shutdown timeout")
		}
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
