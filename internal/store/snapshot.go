package store

import (
	"context"
	"fmt"
)

// HasOracle reports whether an OracleSnapshot for (ticker, txID) already
// exists — the gate C7 consults before re-processing a balance sheet it
// has already ingested (spec §4.3, §4.6, §8 invariant 6).
func (s *Store) HasOracle(ctx context.Context, ticker, txID string) (bool, error) {
	row := s.conn.QueryRow(ctx,
		"SELECT count() FROM oracle_snapshots WHERE ticker = ? AND payload_tx_id = ?",
		ticker, txID,
	)
	var n uint64
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("store: has_oracle(%s, %s): %w", ticker, txID, err)
	}
	return n > 0, nil
}

// InsertOracleSnapshot appends an OracleSnapshot row. Must be inserted
// before any WalletBalance/WalletDelegation/DelegationPosition rows for
// the same cycle, so HasOracle becomes true only once the snapshot is
// durably recorded (spec §5 ordering guarantee).
func (s *Store) InsertOracleSnapshot(ctx context.Context, ticker string, ingestTS uint64, payloadTxID string) error {
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO oracle_snapshots (ticker, ingest_ts, payload_tx_id)")
	if err != nil {
		return fmt.Errorf("store: prepare oracle snapshot batch: %w", err)
	}
	if err := batch.Append(ticker, ingestTS, payloadTxID); err != nil {
		return fmt.Errorf("store: append oracle snapshot: %w", err)
	}
	return batch.Send()
}

// WalletBalance is one holder row derived from an OracleSnapshot (spec §3).
type WalletBalance struct {
	Ticker             string
	Wallet             string
	IngestTS           uint64
	EOA                string
	Amount             string
	NativeAssetBalance string
	SourceTxID         string
}

// InsertWalletBalances batch-inserts WalletBalance rows.
func (s *Store) InsertWalletBalances(ctx context.Context, rows []WalletBalance) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO wallet_balances (ticker, wallet, ingest_ts, eoa, amount, native_asset_balance, source_tx_id)")
	if err != nil {
		return fmt.Errorf("store: prepare wallet balance batch: %w", err)
	}
	for _, r := range rows {
		if err := batch.Append(r.Ticker, r.Wallet, r.IngestTS, r.EOA, r.Amount, r.NativeAssetBalance, r.SourceTxID); err != nil {
			return fmt.Errorf("store: append wallet balance: %w", err)
		}
	}
	return batch.Send()
}

// WalletDelegation is the latest raw preference payload observed for a
// wallet (spec §3).
type WalletDelegation struct {
	Wallet   string
	IngestTS uint64
	Payload  string
}

// InsertWalletDelegations batch-inserts WalletDelegation rows.
func (s *Store) InsertWalletDelegations(ctx context.Context, rows []WalletDelegation) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO wallet_delegations (wallet, ingest_ts, payload)")
	if err != nil {
		return fmt.Errorf("store: prepare wallet delegation batch: %w", err)
	}
	for _, r := range rows {
		if err := batch.Append(r.Wallet, r.IngestTS, r.Payload); err != nil {
			return fmt.Errorf("store: append wallet delegation: %w", err)
		}
	}
	return batch.Send()
}

// DelegationPosition is one (project, wallet) fan-out row (spec §3).
type DelegationPosition struct {
	Project      string
	Wallet       string
	IngestTS     uint64
	Ticker       string
	EOA          string
	Factor       uint32
	Amount       string
	NativeAmount string
}

// InsertDelegationPositions batch-inserts DelegationPosition rows. Callers
// must have already dropped rows where both Amount and NativeAmount are
// zero (spec §3 invariant).
func (s *Store) InsertDelegationPositions(ctx context.Context, rows []DelegationPosition) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO delegation_positions (project, wallet, ingest_ts, ticker, eoa, factor, amount, native_amount)")
	if err != nil {
		return fmt.Errorf("store: prepare delegation position batch: %w", err)
	}
	for _, r := range rows {
		if err := batch.Append(r.Project, r.Wallet, r.IngestTS, r.Ticker, r.EOA, r.Factor, r.Amount, r.NativeAmount); err != nil {
			return fmt.Errorf("store: append delegation position: %w", err)
		}
	}
	return batch.Send()
}

// LatestWalletBalance returns the most recent WalletBalance row for
// (ticker, wallet), or ok=false if none has ever been written.
func (s *Store) LatestWalletBalance(ctx context.Context, ticker, wallet string) (WalletBalance, bool, error) {
	row := s.conn.QueryRow(ctx,
		"SELECT ticker, wallet, ingest_ts, eoa, amount, native_asset_balance, source_tx_id FROM wallet_balances WHERE ticker = ? AND wallet = ? ORDER BY ingest_ts DESC LIMIT 1",
		ticker, wallet,
	)
	var b WalletBalance
	if err := row.Scan(&b.Ticker, &b.Wallet, &b.IngestTS, &b.EOA, &b.Amount, &b.NativeAssetBalance, &b.SourceTxID); err != nil {
		return WalletBalance{}, false, nil
	}
	return b, true, nil
}

// HasDelegationMapping reports whether batchTxID has already been
// forward-indexed (spec §4.3, §4.4 tail).
func (s *Store) HasDelegationMapping(ctx context.Context, batchTxID string) (bool, error) {
	row := s.conn.QueryRow(ctx, "SELECT count() FROM delegation_mappings WHERE batch_tx_id = ?", batchTxID)
	var n uint64
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("store: has_delegation_mapping(%s): %w", batchTxID, err)
	}
	return n > 0, nil
}

// DelegationMapping is one (batch, wallet_from, wallet_to) broadcast row
// (spec §3).
type DelegationMapping struct {
	BlockHeight uint64
	BatchTxID   string
	WalletFrom  string
	WalletTo    string
	Factor      uint32
	IngestTS    uint64
}

// InsertDelegationMappings batch-inserts DelegationMapping rows.
func (s *Store) InsertDelegationMappings(ctx context.Context, rows []DelegationMapping) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO delegation_mappings (block_height, batch_tx_id, wallet_from, wallet_to, factor, ingest_ts)")
	if err != nil {
		return fmt.Errorf("store: prepare delegation mapping batch: %w", err)
	}
	for _, r := range rows {
		if err := batch.Append(r.BlockHeight, r.BatchTxID, r.WalletFrom, r.WalletTo, r.Factor, r.IngestTS); err != nil {
			return fmt.Errorf("store: append delegation mapping: %w", err)
		}
	}
	return batch.Send()
}
