package config_test

import (
	"os"
	"testing"

	"github.com/atlasindex/atlas/internal/config"
)

func TestLoadConfigFromEnv(t *testing.T) {
	os.Setenv("CLICKHOUSE_URL", "localhost:9001")
	os.Setenv("ORACLE_TICKERS", " USDS, Dai ,steth ")
	os.Setenv("DELEGATION_CONCURRENCY", "32")
	defer func() {
		os.Unsetenv("CLICKHOUSE_URL")
		os.Unsetenv("ORACLE_TICKERS")
		os.Unsetenv("DELEGATION_CONCURRENCY")
	}()

	cfg := config.Load()
	if cfg.ClickHouseURL != "localhost:9001" {
		t.Fatalf("expected CLICKHOUSE_URL to be loaded, got %s", cfg.ClickHouseURL)
	}
	if cfg.DelegationConcurrency != 32 {
		t.Fatalf("expected DELEGATION_CONCURRENCY=32, got %d", cfg.DelegationConcurrency)
	}
	want := []string{"usds", "dai", "steth"}
	if len(cfg.OracleTickers) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.OracleTickers)
	}
	for i := range want {
		if cfg.OracleTickers[i] != want[i] {
			t.Fatalf("expected ticker %q at index %d, got %q", want[i], i, cfg.OracleTickers[i])
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("ORACLE_REFRESH_SECS")
	cfg := config.Load()
	if cfg.OracleRefreshInterval.Seconds() != 300 {
		t.Fatalf("expected default refresh interval of 300s, got %v", cfg.OracleRefreshInterval)
	}
	if len(cfg.OracleTickers) != 3 {
		t.Fatalf("expected 3 default tickers, got %v", cfg.OracleTickers)
	}
}
