package snapshot

import "testing"

func TestScaleAmountWholeNumber(t *testing.T) {
	got := scaleAmount("1000000000000000000", TickerDecimals)
	if got != "1" {
		t.Errorf("expected 1, got %s", got)
	}
}

func TestScaleAmountFraction(t *testing.T) {
	got := scaleAmount("1500000000000000000", TickerDecimals)
	if got != "1.5" {
		t.Errorf("expected 1.5, got %s", got)
	}
}

// A holder with a few thousand 18-decimal tokens has a raw balance well
// past uint64's ~1.8e19 ceiling; this is the case that silently zeroed
// out before scaleAmount moved to math/big.
func TestScaleAmountExceedsUint64(t *testing.T) {
	got := scaleAmount("123456789012345678901234", TickerDecimals)
	if got != "123456.789012345678901234" {
		t.Errorf("expected 123456.789012345678901234, got %s", got)
	}
}

func TestScaleAmountMalformed(t *testing.T) {
	if got := scaleAmount("not-a-number", TickerDecimals); got != "0" {
		t.Errorf("expected 0 for malformed input, got %s", got)
	}
}

func TestIsKnownProject(t *testing.T) {
	if !isKnownProject(PIPID) {
		t.Error("PIPID should be a known project")
	}
	if !isKnownProject(ARIOPID) {
		t.Error("ARIOPID should be a known project")
	}
	if isKnownProject("unknown-project") {
		t.Error("unknown-project should not be a known project")
	}
}
