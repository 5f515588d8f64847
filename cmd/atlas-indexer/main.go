// Command atlas-indexer is the supervisor entrypoint (C9): it wires
// config, logging, the column store, and the gateway client, then
// spawns every ingestion worker, the stats thread, the snapshot cycle,
// and the explorer tailer, blocking until an OS signal asks it to stop.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlasindex/atlas/internal/config"
	"github.com/atlasindex/atlas/internal/gwclient"
	"github.com/atlasindex/atlas/internal/logger"
	"github.com/atlasindex/atlas/internal/store"
	"github.com/atlasindex/atlas/internal/supervisor"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)

	log.Info().Str("component", "main").Str("env", cfg.Env).Msg("atlas indexer starting")

	st, err := store.New(store.Config{
		URL:      cfg.ClickHouseURL,
		User:     cfg.ClickHouseUser,
		Password: cfg.ClickHousePassword,
		Database: cfg.ClickHouseDatabase,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("store connection failed")
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := st.EnsureSchema(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("schema creation failed")
	}
	cancel()

	var clientOpts []gwclient.Option
	if cfg.RedisURL != "" {
		cache, err := gwclient.NewRedisCache(cfg.RedisURL, log)
		if err != nil {
			log.Warn().Err(err).Msg("redis cache init failed — continuing without it")
		} else if pingErr := cache.Ping(context.Background()); pingErr != nil {
			log.Warn().Err(pingErr).Msg("redis ping failed — continuing without cache")
		} else {
			log.Info().Msg("redis tip/timestamp cache connected")
			clientOpts = append(clientOpts, gwclient.WithCache(cache))
		}
	}
	client := gwclient.New(cfg.Gateway, log, clientOpts...)

	sup := supervisor.New(cfg, client, st, log)

	runCtx, runCancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.Run(runCtx)
		close(done)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info().Str("component", "main").Msg("shutdown signal received")
	runCancel()

	<-done
	log.Info().Str("component", "main").Msg("atlas indexer stopped")
}
