package ingest

import "testing"

func TestEncodeDecodeCursorRoundTrip(t *testing.T) {
	source, cursor := decodeCursor(encodeCursor("process", "abc123"))
	if source != "process" || cursor != "abc123" {
		t.Fatalf("round trip failed: got (%q, %q)", source, cursor)
	}
}

func TestEncodeCursorEmpty(t *testing.T) {
	if got := encodeCursor("transfer", ""); got != "" {
		t.Errorf("expected empty cursor to encode to empty string, got %q", got)
	}
}

func TestDecodeCursorEmpty(t *testing.T) {
	source, cursor := decodeCursor("")
	if source != "" || cursor != "" {
		t.Errorf("expected empty decode, got (%q, %q)", source, cursor)
	}
}

func TestTokenWorkerStreamHasTwoSubQueries(t *testing.T) {
	cfg := TokenWorkerStream(TokenStream{Label: "token_test", ProcessID: "proc-id", Genesis: 100})
	if len(cfg.SubQueries) != 2 {
		t.Fatalf("expected 2 subqueries for a token stream, got %d", len(cfg.SubQueries))
	}
	if cfg.SubQueries[0].Source != "transfer" || cfg.SubQueries[1].Source != "process" {
		t.Errorf("unexpected subquery order: %+v", cfg.SubQueries)
	}
}

func TestProtocolStreamsHaveSingleSubQuery(t *testing.T) {
	if len(ProtocolAStream().SubQueries) != 1 {
		t.Error("protocol A stream should have exactly one subquery")
	}
	if len(ProtocolBStream().SubQueries) != 1 {
		t.Error("protocol B stream should have exactly one subquery")
	}
}
