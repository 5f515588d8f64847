// Package stats implements the Global Stats Indexer (C6): a single
// dedicated loop that walks the Ledger block by block, classifying tags
// into per-block activity and bridging rows into the column store.
package stats

import (
	"context"
	"strings"
	"time"

	"github.com/atlasindex/atlas/internal/gwclient"
	"github.com/atlasindex/atlas/internal/metrics"
	"github.com/atlasindex/atlas/internal/store"
	"github.com/rs/zerolog"
)

// SeedCheckpoint is the hard-coded checkpoint C6 starts from when C3 has
// no ExplorerRow yet (spec §4.5, §8 E5): it corresponds to a published
// aggregate message, not an invented value.
var SeedCheckpoint = store.ExplorerRow{
	Kind:             store.ExplorerKindMainnet,
	Height:           1802758,
	TxCountRolling:   2771411066,
	ProcessesRolling: 540463,
	ModulesRolling:   10157,
}

// refreshPollInterval is the sleep while waiting for new blocks once the
// walk catches up to the tip (spec §4.5).
const refreshPollInterval = 10 * time.Second

// Indexer runs C6's block-by-block walk. Spec §5 models it as the single
// OS thread hosting the indexer proper; here that is simply a goroutine
// that blocks on gwclient/store calls the same way every other worker
// does — Go's scheduler multiplexes blocking goroutines onto OS threads
// without the cooperative/blocking split the spec's source runtime needs.
type Indexer struct {
	Client *gwclient.Client
	Store  *store.Store
	Logger zerolog.Logger
}

// Run walks forward from the latest seed, emitting one ExplorerRow per
// height, until ctx is cancelled.
func (idx *Indexer) Run(ctx context.Context) error {
	seed, err := idx.seed(ctx)
	if err != nil {
		return err
	}

	height := seed.Height + 1
	txRolling := seed.TxCountRolling
	processesRolling := seed.ProcessesRolling
	modulesRolling := seed.ModulesRolling

	for {
		if ctx.Err() != nil {
			return nil
		}

		tip, err := idx.Client.FetchTipHeight(ctx)
		if err != nil {
			return err
		}
		if height > tip {
			idx.Logger.Debug().Uint64("height", height).Uint64("tip", tip).Msg("caught up to tip, sleeping")
			if !sleepCtx(ctx, refreshPollInterval) {
				return nil
			}
			continue
		}

		row, err := idx.indexHeight(ctx, height)
		if err != nil {
			return err
		}
		txRolling += uint64(row.TxCount)
		processesRolling += uint64(row.NewProcessCount)
		modulesRolling += uint64(row.NewModuleCount)
		row.TxCountRolling = txRolling
		row.ProcessesRolling = processesRolling
		row.ModulesRolling = modulesRolling

		if err := idx.Store.InsertExplorerRows(ctx, []store.ExplorerRow{row}); err != nil {
			return err
		}
		metrics.ExplorerHeight.Set(float64(height))
		height++
	}
}

func (idx *Indexer) seed(ctx context.Context) (store.ExplorerRow, error) {
	latest, ok, err := idx.Store.LatestExplorerRow(ctx, store.ExplorerKindMainnet)
	if err != nil {
		return store.ExplorerRow{}, err
	}
	if ok {
		return latest, nil
	}
	return SeedCheckpoint, nil
}

// indexHeight fetches every message at height (Data-Protocol=ao, 100 per
// page, cursor-chained to completion), classifies tags, and returns one
// ExplorerRow. An empty block still yields a row of zero base counters
// (spec §4.5).
func (idx *Indexer) indexHeight(ctx context.Context, height uint64) (store.ExplorerRow, error) {
	row := store.ExplorerRow{Kind: store.ExplorerKindMainnet, Height: height}
	seenUsers := map[string]struct{}{}
	seenProcesses := map[string]struct{}{}

	cursor := ""
	for {
		page, err := idx.Client.FetchMessages(ctx, gwclient.MessageQuery{
			Variant: gwclient.VariantProtocolA,
			Height:  height,
			Cursor:  cursor,
		})
		if err != nil {
			if gwclient.Classify(err) == gwclient.OutcomeEmptyBlock {
				break
			}
			return store.ExplorerRow{}, err
		}

		for _, m := range page.Messages {
			row.TxCount++
			seenUsers[m.Owner] = struct{}{}
			classifyMessage(m, &row, seenProcesses)
		}

		if !page.HasNextPage || page.EndCursor == "" {
			break
		}
		cursor = page.EndCursor
	}

	row.ActiveUsers = uint32(len(seenUsers))
	row.ActiveProcesses = uint32(len(seenProcesses))

	ts, err := idx.Client.FetchBlockTimestamp(ctx, height)
	if err != nil {
		return store.ExplorerRow{}, err
	}
	row.Timestamp = uint64(ts)
	return row, nil
}

var processTagKeys = map[string]struct{}{
	"from-process":    {},
	"process":         {},
	"from-process-id": {},
	"process-id":      {},
}

func classifyMessage(m gwclient.Message, row *store.ExplorerRow, seenProcesses map[string]struct{}) {
	for _, t := range m.Tags {
		key := strings.ToLower(t.Name)
		switch key {
		case "action":
			switch strings.ToLower(t.Value) {
			case "eval":
				row.EvalCount++
			case "transfer":
				row.TransferCount++
			}
		case "type":
			switch strings.ToLower(t.Value) {
			case "process":
				row.NewProcessCount++
			case "module":
				row.NewModuleCount++
			}
		}
		if _, ok := processTagKeys[key]; ok && t.Value != "" {
			seenProcesses[t.Value] = struct{}{}
		}
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
