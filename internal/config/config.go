// Package config loads the atlas indexer's runtime configuration from
// environment variables, an optional .env file, and an optional TOML
// overlay named by ATLAS_CONFIG.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// IndexerToggles controls which block-ingestion workers the supervisor
// spawns, keyed the way ATLAS_CONFIG's [indexers] table names them.
type IndexerToggles struct {
	AO       bool
	PI       bool
	FLP      bool
	Explorer bool
	Mainnet  bool
}

// Config holds every value the core reads, per spec.md §6.
type Config struct {
	// Ledger gateway
	Gateway string

	// ClickHouse
	ClickHouseURL      string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseDatabase string

	// Redis (optional tip/timestamp cache; empty disables caching)
	RedisURL string

	// Snapshot pipeline (C7)
	OracleRefreshInterval time.Duration
	DelegationConcurrency int
	OracleTickers         []string

	// Indexer toggles, from ATLAS_CONFIG
	Indexers IndexerToggles

	Env string
}

// atlasFile mirrors the subset of ATLAS_CONFIG's TOML shape the core reads.
type atlasFile struct {
	PrimaryArweaveGateway string `toml:"PRIMARY_ARWEAVE_GATEWAY"`
	Indexers              struct {
		AO       bool `toml:"ao"`
		PI       bool `toml:"pi"`
		FLP      bool `toml:"flp"`
		Explorer bool `toml:"explorer"`
		Mainnet  bool `toml:"mainnet"`
	} `toml:"indexers"`
}

// Load reads configuration from the environment, an optional .env file,
// and — if ATLAS_CONFIG points at one — a TOML overlay. Env vars set
// directly in the process environment always win over .env contents;
// the TOML overlay only fills in values the environment left unset.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Gateway:               getEnv("PRIMARY_ARWEAVE_GATEWAY", "https://arweave.net"),
		ClickHouseURL:         getEnv("CLICKHOUSE_URL", "localhost:9000"),
		ClickHouseUser:        getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword:    getEnv("CLICKHOUSE_PASSWORD", ""),
		ClickHouseDatabase:    getEnv("CLICKHOUSE_DATABASE", "atlas"),
		RedisURL:              getEnv("REDIS_URL", ""),
		OracleRefreshInterval: time.Duration(getEnvInt("ORACLE_REFRESH_SECS", 300)) * time.Second,
		DelegationConcurrency: getEnvInt("DELEGATION_CONCURRENCY", 16),
		OracleTickers:         getEnvCSV("ORACLE_TICKERS", []string{"usds", "dai", "steth"}),
		Indexers: IndexerToggles{
			AO: true, PI: true, FLP: true, Explorer: true, Mainnet: true,
		},
		Env: getEnv("ENV", "development"),
	}

	if path := os.Getenv("ATLAS_CONFIG"); path != "" {
		applyTOMLOverlay(cfg, path)
	}

	return cfg
}

func applyTOMLOverlay(cfg *Config, path string) {
	var f atlasFile
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		// A malformed or missing overlay falls back to env/defaults;
		// startup failure is reserved for store schema creation per spec.md §7.
		return
	}
	if f.PrimaryArweaveGateway != "" {
		if _, ok := os.LookupEnv("PRIMARY_ARWEAVE_GATEWAY"); !ok {
			cfg.Gateway = f.PrimaryArweaveGateway
		}
	}

	// Only override a toggle when its key is actually present in the
	// overlay — an ATLAS_CONFIG file that omits [indexers] entirely (or
	// omits individual keys within it) must not silently disable every
	// worker by decoding its bools as false.
	if meta.IsDefined("indexers", "ao") {
		cfg.Indexers.AO = f.Indexers.AO
	}
	if meta.IsDefined("indexers", "pi") {
		cfg.Indexers.PI = f.Indexers.PI
	}
	if meta.IsDefined("indexers", "flp") {
		cfg.Indexers.FLP = f.Indexers.FLP
	}
	if meta.IsDefined("indexers", "explorer") {
		cfg.Indexers.Explorer = f.Indexers.Explorer
	}
	if meta.IsDefined("indexers", "mainnet") {
		cfg.Indexers.Mainnet = f.Indexers.Mainnet
	}
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvCSV(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
