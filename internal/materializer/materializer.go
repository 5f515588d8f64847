// Package materializer implements the Explorer Materializer (C8): it
// derives per-block activity rows from raw messages+tags, rebuilding
// once at startup then tailing forward indefinitely.
package materializer

import (
	"context"
	"time"

	"github.com/atlasindex/atlas/internal/store"
	"github.com/rs/zerolog"
)

// pageSize is the fetch_block_metrics page size used by both the rebuild
// and tail paths (spec §4.7).
const pageSize = 512

// tailSleep is the pause after an empty fetch_block_metrics page in tail
// mode (spec §4.7).
const tailSleep = 120 * time.Second

// Materializer owns C8's rebuild and tail loops.
type Materializer struct {
	Store  *store.Store
	Logger zerolog.Logger
}

// rollingState carries the three cumulative counters across pages and
// across the rebuild-to-tail handoff (spec §3 ExplorerRow invariant).
type rollingState struct {
	txRolling        uint64
	processesRolling uint64
	modulesRolling   uint64
}

// Rebuild truncates the derived table, then walks fetch_block_metrics in
// pages of 512, accumulating rolling counters, until a page comes back
// empty (spec §4.7).
func (m *Materializer) Rebuild(ctx context.Context) error {
	if err := m.Store.TruncateExplorerRows(ctx, store.ExplorerKindDerived); err != nil {
		return err
	}

	var last uint64
	var roll rollingState

	for {
		metrics, err := m.Store.FetchBlockMetrics(ctx, last, pageSize)
		if err != nil {
			return err
		}
		if len(metrics) == 0 {
			break
		}

		rows := make([]store.ExplorerRow, 0, len(metrics))
		for _, bm := range metrics {
			roll.txRolling += uint64(bm.TxCount)
			roll.processesRolling += uint64(bm.NewProcessCount)
			roll.modulesRolling += uint64(bm.NewModuleCount)
			rows = append(rows, toExplorerRow(bm, roll))
			last = bm.Height
		}
		if err := m.Store.InsertExplorerRows(ctx, rows); err != nil {
			return err
		}
		m.Logger.Debug().Int("rows", len(rows)).Uint64("last_height", last).Msg("rebuild page written")
	}

	m.Logger.Info().Uint64("last_height", last).Msg("explorer rebuild complete")
	return nil
}

// Tail runs forever: seed rolling counters from the latest derived row,
// then loop fetch_block_metrics/append; sleep 120s on an empty page
// (spec §4.7).
func (m *Materializer) Tail(ctx context.Context) error {
	latest, ok, err := m.Store.LatestExplorerRow(ctx, store.ExplorerKindDerived)
	if err != nil {
		return err
	}

	var last uint64
	var roll rollingState
	if ok {
		last = latest.Height
		roll = rollingState{
			txRolling:        latest.TxCountRolling,
			processesRolling: latest.ProcessesRolling,
			modulesRolling:   latest.ModulesRolling,
		}
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		metrics, err := m.Store.FetchBlockMetrics(ctx, last, pageSize)
		if err != nil {
			return err
		}
		if len(metrics) == 0 {
			if !sleepCtx(ctx, tailSleep) {
				return nil
			}
			continue
		}

		rows := make([]store.ExplorerRow, 0, len(metrics))
		for _, bm := range metrics {
			roll.txRolling += uint64(bm.TxCount)
			roll.processesRolling += uint64(bm.NewProcessCount)
			roll.modulesRolling += uint64(bm.NewModuleCount)
			rows = append(rows, toExplorerRow(bm, roll))
			last = bm.Height
		}
		if err := m.Store.InsertExplorerRows(ctx, rows); err != nil {
			return err
		}
	}
}

func toExplorerRow(bm store.BlockMetrics, roll rollingState) store.ExplorerRow {
	return store.ExplorerRow{
		Kind:             store.ExplorerKindDerived,
		Height:           bm.Height,
		Timestamp:        bm.Timestamp,
		TxCount:          bm.TxCount,
		EvalCount:        bm.EvalCount,
		TransferCount:    bm.TransferCount,
		NewProcessCount:  bm.NewProcessCount,
		NewModuleCount:   bm.NewModuleCount,
		ActiveUsers:      bm.ActiveUsers,
		ActiveProcesses:  bm.ActiveProcesses,
		TxCountRolling:   roll.txRolling,
		ProcessesRolling: roll.processesRolling,
		ModulesRolling:   roll.modulesRolling,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
