package store

import (
	"context"
	"fmt"
)

// BlockMetrics is one block's base activity counters, computed by the
// store itself from raw Messages+Tags (spec §4.3 fetch_block_metrics).
type BlockMetrics struct {
	Height          uint64
	Timestamp       uint64
	TxCount         uint32
	EvalCount       uint32
	TransferCount   uint32
	NewProcessCount uint32
	NewModuleCount  uint32
	ActiveUsers     uint32
	ActiveProcesses uint32
}

// blockMetricsQuery computes per-block activity over raw messages/tags.
// Tag predicates are matched case-insensitively per spec §4.3: Action in
// {Eval, Transfer}; Type in {Process, Module}; active_processes counts
// distinct tag values across the from-process/process/-id aliases.
const blockMetricsQuery = `
SELECT
    m.block_height AS height,
    max(m.block_timestamp) AS ts,
    count(DISTINCT m.message_id) AS tx_count,
    countIf(DISTINCT m.message_id, lower(action.tag_value) = 'eval') AS eval_count,
    countIf(DISTINCT m.message_id, lower(action.tag_value) = 'transfer') AS transfer_count,
    countIf(DISTINCT m.message_id, lower(typ.tag_value) = 'process') AS new_process_count,
    countIf(DISTINCT m.message_id, lower(typ.tag_value) = 'module') AS new_module_count,
    uniqExact(m.owner) AS active_users,
    uniqExactIf(proc.tag_value, proc.tag_value != '') AS active_processes
FROM messages AS m
LEFT JOIN message_tags AS action
    ON action.stream_label = m.stream_label AND action.block_height = m.block_height
    AND action.message_id = m.message_id AND lower(action.tag_key) = 'action'
LEFT JOIN message_tags AS typ
    ON typ.stream_label = m.stream_label AND typ.block_height = m.block_height
    AND typ.message_id = m.message_id AND lower(typ.tag_key) = 'type'
LEFT JOIN message_tags AS proc
    ON proc.stream_label = m.stream_label AND proc.block_height = m.block_height
    AND proc.message_id = m.message_id
    AND lower(proc.tag_key) IN ('from-process', 'process', 'from-process-id', 'process-id')
WHERE m.block_height > ?
GROUP BY m.block_height
ORDER BY m.block_height ASC
LIMIT ?;
`

// FetchBlockMetrics returns up to limit BlockMetrics rows for heights
// strictly greater than afterHeight, ascending (spec §4.3, §4.7).
func (s *Store) FetchBlockMetrics(ctx context.Context, afterHeight uint64, limit int) ([]BlockMetrics, error) {
	rows, err := s.conn.Query(ctx, blockMetricsQuery, afterHeight, limit)
	if err != nil {
		return nil, fmt.Errorf("store: fetch_block_metrics: %w", err)
	}
	defer rows.Close()

	var out []BlockMetrics
	for rows.Next() {
		var m BlockMetrics
		if err := rows.Scan(
			&m.Height, &m.Timestamp, &m.TxCount, &m.EvalCount, &m.TransferCount,
			&m.NewProcessCount, &m.NewModuleCount, &m.ActiveUsers, &m.ActiveProcesses,
		); err != nil {
			return nil, fmt.Errorf("store: scan block metrics: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Explorer row kinds (spec §4.3 latest_explorer_row(kind), §3 "ExplorerRows
// of the derived kind"). C6 (global stats) and C8 (explorer materializer)
// both derive ExplorerRows into the same table from independent walks;
// without a kind discriminator their heights interleave and corrupt each
// other's rolling counters.
const (
	ExplorerKindMainnet = "mainnet"
	ExplorerKindDerived = "derived"
)

// ExplorerRow is one derived per-block activity row (spec §3).
type ExplorerRow struct {
	Kind             string
	Height           uint64
	Timestamp        uint64
	TxCount          uint32
	EvalCount        uint32
	TransferCount    uint32
	NewProcessCount  uint32
	NewModuleCount   uint32
	ActiveUsers      uint32
	ActiveProcesses  uint32
	TxCountRolling   uint64
	ProcessesRolling uint64
	ModulesRolling   uint64
}

// TruncateExplorerRows clears kind's rows for the startup rebuild (spec
// §4.7). It only clears the requesting kind's rows — explorer_rows holds
// both C6's and C8's output, so a blanket TRUNCATE would also erase the
// other kind's independently-maintained rolling counters.
func (s *Store) TruncateExplorerRows(ctx context.Context, kind string) error {
	if err := s.conn.Exec(ctx, "ALTER TABLE explorer_rows DELETE WHERE kind = ?", kind); err != nil {
		return fmt.Errorf("store: truncate explorer_rows kind=%s: %w", kind, err)
	}
	return nil
}

// InsertExplorerRows batch-inserts derived ExplorerRow rows.
func (s *Store) InsertExplorerRows(ctx context.Context, rows []ExplorerRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO explorer_rows (kind, height, ts, tx_count, eval_count, transfer_count, new_process_count, new_module_count, active_users, active_processes, tx_count_rolling, processes_rolling, modules_rolling)")
	if err != nil {
		return fmt.Errorf("store: prepare explorer rows batch: %w", err)
	}
	for _, r := range rows {
		if err := batch.Append(
			r.Kind, r.Height, r.Timestamp, r.TxCount, r.EvalCount, r.TransferCount,
			r.NewProcessCount, r.NewModuleCount, r.ActiveUsers, r.ActiveProcesses,
			r.TxCountRolling, r.ProcessesRolling, r.ModulesRolling,
		); err != nil {
			return fmt.Errorf("store: append explorer row: %w", err)
		}
	}
	return batch.Send()
}

// LatestExplorerRow returns the last committed row of the given kind,
// used to seed rolling counters for both C6's walk and C8's rebuild/tail
// paths (spec §4.3 latest_explorer_row(kind), §4.7).
func (s *Store) LatestExplorerRow(ctx context.Context, kind string) (ExplorerRow, bool, error) {
	row := s.conn.QueryRow(ctx, "SELECT kind, height, ts, tx_count_rolling, processes_rolling, modules_rolling FROM explorer_rows WHERE kind = ? ORDER BY height DESC LIMIT 1", kind)
	var r ExplorerRow
	if err := row.Scan(&r.Kind, &r.Height, &r.Timestamp, &r.TxCountRolling, &r.ProcessesRolling, &r.ModulesRolling); err != nil {
		return ExplorerRow{}, false, nil
	}
	return r, true, nil
}
