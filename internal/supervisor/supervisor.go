// Package supervisor implements C9: it starts every worker concurrently,
// owns the C7 cycle ticker, and logs worker failures without terminating
// peers.
package supervisor

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atlasindex/atlas/internal/config"
	"github.com/atlasindex/atlas/internal/gwclient"
	"github.com/atlasindex/atlas/internal/ingest"
	"github.com/atlasindex/atlas/internal/materializer"
	"github.com/atlasindex/atlas/internal/metrics"
	"github.com/atlasindex/atlas/internal/snapshot"
	"github.com/atlasindex/atlas/internal/stats"
	"github.com/atlasindex/atlas/internal/store"
	"github.com/rs/zerolog"
)

// Supervisor owns the lifetime of every C5 worker, the C6 thread, the C7
// cycle loop, and the C8 tailer (spec §4.8).
type Supervisor struct {
	cfg    *config.Config
	client *gwclient.Client
	store  *store.Store
	logger zerolog.Logger

	wg sync.WaitGroup
}

// New builds a Supervisor. Callers must call EnsureSchema on store before
// constructing one — schema creation failure is a startup failure (spec
// §7), not something the supervisor itself retries.
func New(cfg *config.Config, client *gwclient.Client, st *store.Store, logger zerolog.Logger) *Supervisor {
	return &Supervisor{
		cfg:    cfg,
		client: client,
		store:  st,
		logger: logger.With().Str("component", "supervisor").Logger(),
	}
}

// Run spawns every enabled worker and blocks until ctx is cancelled. Each
// worker's terminal error is logged; peers are unaffected (spec §4.8,
// §7 "Store write failure").
func (sup *Supervisor) Run(ctx context.Context) {
	sup.spawnHealthServer(ctx)

	if sup.cfg.Indexers.AO {
		sup.spawnIngestWorker(ctx, ingest.ProtocolAStream(), false)
	}
	if sup.cfg.Indexers.PI {
		sup.spawnIngestWorker(ctx, ingest.ProtocolBStream(), false)
	}
	for _, t := range ingest.KnownTokenStreams() {
		sup.spawnIngestWorker(ctx, ingest.TokenWorkerStream(t), true)
	}

	if sup.cfg.Indexers.Mainnet {
		sup.spawnStatsThread(ctx)
	}
	if sup.cfg.Indexers.FLP {
		sup.spawnSnapshotCycle(ctx)
	}
	if sup.cfg.Indexers.Explorer {
		sup.spawnExplorerMaterializer(ctx)
	}

	<-ctx.Done()
	sup.logger.Info().Msg("shutdown signal received, waiting for workers to exit")
	sup.wg.Wait()
}

func (sup *Supervisor) spawnIngestWorker(ctx context.Context, stream ingest.StreamConfig, isToken bool) {
	sup.wg.Add(1)
	go func() {
		defer sup.wg.Done()
		w := ingest.NewWorker(stream, sup.client, sup.store, sup.logger, isToken)
		if err := w.Run(ctx); err != nil {
			sup.logger.Error().Err(err).Str("stream", stream.Label).Msg("ingest worker terminated")
		}
	}()
}

// spawnStatsThread runs C6. The spec models it as a dedicated OS thread
// bridging into the cooperative runtime (spec §4.5, §5, §9); in Go a
// goroutine is already scheduled onto an OS thread when it blocks, so no
// separate bridging mechanism is needed.
func (sup *Supervisor) spawnStatsThread(ctx context.Context) {
	sup.wg.Add(1)
	go func() {
		defer sup.wg.Done()
		idx := &stats.Indexer{Client: sup.client, Store: sup.store, Logger: sup.logger}
		if err := idx.Run(ctx); err != nil {
			sup.logger.Error().Err(err).Msg("stats indexer terminated")
		}
	}()
}

// spawnSnapshotCycle owns the C7 fixed-interval ticker: if an iteration
// overruns, the next tick fires immediately with no coalescing (spec
// §4.8).
func (sup *Supervisor) spawnSnapshotCycle(ctx context.Context) {
	sup.wg.Add(1)
	go func() {
		defer sup.wg.Done()
		pipeline := &snapshot.Pipeline{
			Client:      sup.client,
			Store:       sup.store,
			Logger:      sup.logger,
			Concurrency: int64(sup.cfg.DelegationConcurrency),
			Tickers:     sup.cfg.OracleTickers,
		}

		interval := sup.cfg.OracleRefreshInterval
		next := time.Now().Add(interval)

		for {
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				start := time.Now()
				pipeline.RunCycle(ctx)
				metrics.SnapshotCycleDuration.Observe(time.Since(start).Seconds())
				next = next.Add(interval)
			}
		}
	}()
}

func (sup *Supervisor) spawnExplorerMaterializer(ctx context.Context) {
	sup.wg.Add(1)
	go func() {
		defer sup.wg.Done()
		m := &materializer.Materializer{Store: sup.store, Logger: sup.logger}
		if err := m.Rebuild(ctx); err != nil {
			sup.logger.Error().Err(err).Msg("explorer rebuild failed")
			return
		}
		if err := m.Tail(ctx); err != nil {
			sup.logger.Error().Err(err).Msg("explorer tailer terminated")
		}
	}()
}

// spawnHealthServer exposes /healthz and /metrics on ATLAS_HEALTH_ADDR
// (default :8091) so an orchestrator can liveness-probe the indexer
// process without reaching into ClickHouse directly.
func (sup *Supervisor) spawnHealthServer(ctx context.Context) {
	addr := os.Getenv("ATLAS_HEALTH_ADDR")
	if addr == "" {
		addr = ":8091"
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"atlas-indexer"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: r}

	sup.wg.Add(1)
	go func() {
		defer sup.wg.Done()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sup.logger.Error().Err(err).Msg("health server failed")
		}
	}()

	sup.wg.Add(1)
	go func() {
		defer sup.wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
