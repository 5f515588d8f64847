// Package store implements the Column Store and Cursor/State Repository
// (C3/C4): idempotent ClickHouse schema management, replace-on-key batch
// inserts, and the query helpers C5/C6/C7/C8 read back from.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog"
)

// Store wraps a single ClickHouse connection. It is safe for concurrent
// use by many workers; clickhouse-go/v2's driver.Conn pools connections
// internally the same way the teacher's redisclient.Client wraps a single
// shared *redis.Client.
type Store struct {
	conn   clickhouse.Conn
	logger zerolog.Logger
}

// Config carries the subset of internal/config.Config the store needs,
// kept narrow so this package does not import internal/config.
type Config struct {
	URL      string
	User     string
	Password string
	Database string
}

// New opens a ClickHouse connection and verifies it with a ping.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.URL},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout: 10 * time.Second,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: open clickhouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("store: ping clickhouse: %w", err)
	}

	return &Store{
		conn:   conn,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
