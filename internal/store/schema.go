package store

import (
	"context"
	"fmt"
)

// Schema DDL, one statement per table, covering every field this module
// writes or reads anywhere (spec §4.3: "declarative and idempotent ...
// covering every field used anywhere"). ReplacingMergeTree gives the
// replace-on-key semantics the data model calls for; OracleSnapshot is
// the one append-only MergeTree table.

const messagesSchema = `
CREATE TABLE IF NOT EXISTS messages (
    stream_label  LowCardinality(String),
    block_height  UInt64,
    message_id    String,
    owner         String,
    recipient     String,
    bundled_in    String,
    data_size     Int64,
    block_timestamp UInt64,
    ingest_ts     UInt64
)
ENGINE = ReplacingMergeTree(ingest_ts)
ORDER BY (stream_label, block_height, message_id);
`

const messageTagsSchema = `
CREATE TABLE IF NOT EXISTS message_tags (
    stream_label  LowCardinality(String),
    tag_key       String,
    tag_value     String,
    block_height  UInt64,
    message_id    String,
    ingest_ts     UInt64
)
ENGINE = ReplacingMergeTree(ingest_ts)
ORDER BY (stream_label, tag_key, tag_value, block_height, message_id);
`

const cursorStateSchema = `
CREATE TABLE IF NOT EXISTS cursor_state (
    stream_label        LowCardinality(String),
    last_complete_height UInt64,
    last_cursor          String,
    updated_at           UInt64
)
ENGINE = ReplacingMergeTree(updated_at)
ORDER BY stream_label;
`

const oracleSnapshotSchema = `
CREATE TABLE IF NOT EXISTS oracle_snapshots (
    ticker        LowCardinality(String),
    ingest_ts     UInt64,
    payload_tx_id String
)
ENGINE = MergeTree()
ORDER BY (ticker, ingest_ts);
`

const walletBalanceSchema = `
CREATE TABLE IF NOT EXISTS wallet_balances (
    ticker               LowCardinality(String),
    wallet               String,
    ingest_ts            UInt64,
    eoa                  String,
    amount               String,
    native_asset_balance String,
    source_tx_id         String
)
ENGINE = ReplacingMergeTree(ingest_ts)
ORDER BY (ticker, wallet, ingest_ts);
`

const walletDelegationSchema = `
CREATE TABLE IF NOT EXISTS wallet_delegations (
    wallet    String,
    ingest_ts UInt64,
    payload   String
)
ENGINE = ReplacingMergeTree(ingest_ts)
ORDER BY (wallet, ingest_ts);
`

const delegationPositionSchema = `
CREATE TABLE IF NOT EXISTS delegation_positions (
    project       LowCardinality(String),
    wallet        String,
    ingest_ts     UInt64,
    ticker        LowCardinality(String),
    eoa           String,
    factor        UInt32,
    amount        String,
    native_amount String
)
ENGINE = ReplacingMergeTree(ingest_ts)
ORDER BY (project, wallet, ingest_ts);
`

const delegationMappingSchema = `
CREATE TABLE IF NOT EXISTS delegation_mappings (
    block_height UInt64,
    batch_tx_id  String,
    wallet_from  String,
    wallet_to    String,
    factor       UInt32,
    ingest_ts    UInt64
)
ENGINE = ReplacingMergeTree(ingest_ts)
ORDER BY (block_height, batch_tx_id, wallet_from, wallet_to);
`

const explorerRowSchema = `
CREATE TABLE IF NOT EXISTS explorer_rows (
    kind               LowCardinality(String),
    height             UInt64,
    ts                 UInt64,
    tx_count           UInt32,
    eval_count         UInt32,
    transfer_count     UInt32,
    new_process_count  UInt32,
    new_module_count   UInt32,
    active_users       UInt32,
    active_processes   UInt32,
    tx_count_rolling   UInt64,
    processes_rolling  UInt64,
    modules_rolling    UInt64
)
ENGINE = ReplacingMergeTree()
ORDER BY (kind, height);
`

// allSchemas returns every DDL statement in dependency order, mirroring
// the teacher's AllSchemas() in shape.
func allSchemas() []string {
	return []string{
		messagesSchema,
		messageTagsSchema,
		cursorStateSchema,
		oracleSnapshotSchema,
		walletBalanceSchema,
		walletDelegationSchema,
		delegationPositionSchema,
		delegationMappingSchema,
		explorerRowSchema,
	}
}

// columnAddition is one additive migration applied after table creation,
// for fields introduced after a table's initial CREATE shipped.
type columnAddition struct {
	table  string
	column string
	ddl    string
}

// pendingColumns lists additive migrations in apply order. Empty today;
// new fields get appended here instead of rewriting the CREATE statement,
// so EnsureSchema stays idempotent against tables created by an older
// binary.
func pendingColumns() []columnAddition {
	return nil
}

// EnsureSchema issues every create-if-missing statement, then applies any
// pending add-column-if-missing migrations. A failure here is a startup
// failure per spec §7: the caller aborts the process.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, ddl := range allSchemas() {
		if err := s.conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	for _, c := range pendingColumns() {
		if err := s.conn.Exec(ctx, c.ddl); err != nil {
			return fmt.Errorf("store: add column %s.%s: %w", c.table, c.column, err)
		}
	}
	s.logger.Info().Int("tables", len(allSchemas())).Msg("schema ensured")
	return nil
}
