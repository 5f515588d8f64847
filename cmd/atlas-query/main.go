// Command atlas-query is the thin, out-of-core HTTP query façade
// mentioned in spec.md §1: a translator from a handful of URL parameters
// to store reads. It is deliberately minimal — the full query surface is
// not part of this repo's specified scope.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlasindex/atlas/internal/config"
	"github.com/atlasindex/atlas/internal/httpapi"
	"github.com/atlasindex/atlas/internal/logger"
	"github.com/atlasindex/atlas/internal/store"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)

	log.Info().Str("component", "main").Str("env", cfg.Env).Msg("atlas query facade starting")

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

	addr := os.Getenv("ATLAS_QUERY_ADDR")
	if addr == "" {
		addr = ":8090"
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      httpapi.NewRouter(st, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("component", "main").Str("addr", addr).Msg("query facade listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-sig
	log.Info().Str("component", "main").Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Str("component", "main").Msg("query facade stopped gracefully")
	}
}
