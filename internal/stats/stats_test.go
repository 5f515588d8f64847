package stats

import (
	"testing"

	"github.com/atlasindex/atlas/internal/gwclient"
	"github.com/atlasindex/atlas/internal/store"
)

func TestClassifyMessageCountsActionAndType(t *testing.T) {
	row := &store.ExplorerRow{}
	seen := map[string]struct{}{}

	m := gwclient.Message{
		Tags: []gwclient.Tag{
			{Name: "Action", Value: "Eval"},
			{Name: "Type", Value: "Process"},
			{Name: "From-Process", Value: "proc-a"},
		},
	}
	classifyMessage(m, row, seen)

	if row.EvalCount != 1 {
		t.Errorf("expected eval_count 1, got %d", row.EvalCount)
	}
	if row.NewProcessCount != 1 {
		t.Errorf("expected new_process_count 1, got %d", row.NewProcessCount)
	}
	if _, ok := seen["proc-a"]; !ok {
		t.Error("expected proc-a to be recorded as an active process")
	}
}

func TestClassifyMessageIsCaseInsensitive(t *testing.T) {
	row := &store.ExplorerRow{}
	seen := map[string]struct{}{}

	m := gwclient.Message{
		Tags: []gwclient.Tag{
			{Name: "action", Value: "TRANSFER"},
			{Name: "process-id", Value: "proc-b"},
		},
	}
	classifyMessage(m, row, seen)

	if row.TransferCount != 1 {
		t.Errorf("expected transfer_count 1, got %d", row.TransferCount)
	}
	if _, ok := seen["proc-b"]; !ok {
		t.Error("expected proc-b to be recorded via process-id alias")
	}
}

func TestSeedCheckpointMatchesFixture(t *testing.T) {
	if SeedCheckpoint.Height != 1802758 {
		t.Errorf("unexpected seed height: %d", SeedCheckpoint.Height)
	}
	if SeedCheckpoint.TxCountRolling != 2771411066 {
		t.Errorf("unexpected seed tx_count_rolling: %d", SeedCheckpoint.TxCountRolling)
	}
	if SeedCheckpoint.Kind != store.ExplorerKindMainnet {
		t.Errorf("expected seed kind %q, got %q", store.ExplorerKindMainnet, SeedCheckpoint.Kind)
	}
}
