// Package ingest implements the Block Ingestion Workers (C5): one
// long-lived state machine per stream, walking the Ledger forward and
// persisting pages into the column store.
package ingest

import "time"

// Retry/backoff constants centralized here so every stream worker shares
// one policy instead of re-deriving it (spec §4.4, §7, §6 constants).
const (
	// TipSafeGap is the reorg-safety margin below the reported tip.
	TipSafeGap = 3

	// RateLimitedBackoff is the sleep on HTTP 429 (spec §4.4 FetchPage).
	RateLimitedBackoff = 5 * time.Second

	// ProtocolTransientBackoff is the sleep on 5xx/404/timeout for
	// generic protocol streams.
	ProtocolTransientBackoff = 1 * time.Second

	// TokenTransientBackoff is the sleep on 5xx/404/timeout for
	// token-tracking streams, which hit a different, less reliable
	// sub-query path (spec §4.4).
	TokenTransientBackoff = 300 * time.Second

	// TipGuardSleep is the sleep while waiting for the tip to advance
	// past the safety gap (spec §4.4 TipGuard).
	TipGuardSleep = 60 * time.Second

	// ProtocolAdvanceSleep is the pause between iterations for
	// generic protocol streams (spec §4.4 Advance).
	ProtocolAdvanceSleep = 1 * time.Second

	// TokenPageSleep is the pause between paginated calls within a
	// single height for token streams (spec §4.4 Advance).
	TokenPageSleep = 200 * time.Millisecond
)
