package materializer

import (
	"testing"

	"github.com/atlasindex/atlas/internal/store"
)

func TestToExplorerRowCarriesRollingCounters(t *testing.T) {
	bm := store.BlockMetrics{Height: 100, TxCount: 5, NewProcessCount: 1, NewModuleCount: 0}
	roll := rollingState{txRolling: 50, processesRolling: 10, modulesRolling: 2}

	row := toExplorerRow(bm, roll)

	if row.TxCountRolling != 50 || row.ProcessesRolling != 10 || row.ModulesRolling != 2 {
		t.Errorf("expected rolling counters to pass through unchanged into the row: %+v", row)
	}
	if row.TxCount != 5 {
		t.Errorf("expected base tx_count 5, got %d", row.TxCount)
	}
	if row.Kind != store.ExplorerKindDerived {
		t.Errorf("expected kind %q, got %q", store.ExplorerKindDerived, row.Kind)
	}
}

func TestRollingStateAccumulatesAcrossPages(t *testing.T) {
	var roll rollingState
	pages := []store.BlockMetrics{
		{Height: 1, TxCount: 3, NewProcessCount: 1},
		{Height: 2, TxCount: 7, NewModuleCount: 2},
	}
	var rows []store.ExplorerRow
	for _, bm := range pages {
		roll.txRolling += uint64(bm.TxCount)
		roll.processesRolling += uint64(bm.NewProcessCount)
		roll.modulesRolling += uint64(bm.NewModuleCount)
		rows = append(rows, toExplorerRow(bm, roll))
	}
	if rows[1].TxCountRolling != 10 {
		t.Errorf("expected cumulative tx_count_rolling 10, got %d", rows[1].TxCountRolling)
	}
	if rows[0].TxCountRolling > rows[1].TxCountRolling {
		t.Error("rolling counters must be monotonically non-decreasing across consecutive rows")
	}
}
