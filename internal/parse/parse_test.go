package parse

import "testing"

func TestBalanceSheet(t *testing.T) {
	blob := []byte("wallet-a,1000000000000000000,ar-addr-a\nwallet-b,2500000000000000000,ar-addr-b\n")
	rows, err := BalanceSheet(blob)
	if err != nil {
		t.Fatalf("BalanceSheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].EOA != "wallet-a" || rows[0].RawAmount != "1000000000000000000" || rows[0].ARAddress != "ar-addr-a" {
		t.Errorf("unexpected row 0: %+v", rows[0])
	}
}

func TestBalanceSheetRejectsWrongFieldCount(t *testing.T) {
	if _, err := BalanceSheet([]byte("wallet-a,1,ar-a,extra\n")); err == nil {
		t.Fatal("expected error for malformed row, got nil")
	}
}

func TestDelegationMappings(t *testing.T) {
	blob := []byte("wallet-a,proj-a,6000\nwallet-b,proj-b,10000\n")
	rows, err := DelegationMappings(blob)
	if err != nil {
		t.Fatalf("DelegationMappings: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].WalletFrom != "wallet-a" || rows[0].WalletTo != "proj-a" || rows[0].Factor != 6000 {
		t.Errorf("unexpected row 0: %+v", rows[0])
	}
	if rows[1].Factor != 10000 {
		t.Errorf("expected row 1 factor 10000, got %d", rows[1].Factor)
	}
}

func TestDelegationMappingsRejectsNonNumericFactor(t *testing.T) {
	if _, err := DelegationMappings([]byte("wallet-a,proj-a,not-a-number\n")); err == nil {
		t.Fatal("expected error for non-numeric factor, got nil")
	}
}

func TestDelegationPreferenceComputesMissingTotalFactor(t *testing.T) {
	blob := []byte(`{"wallet":"w1","delegation_prefs":[{"wallet_to":"proj-a","factor":6000},{"wallet_to":"proj-b","factor":4000}]}`)
	p, err := DelegationPreference(blob)
	if err != nil {
		t.Fatalf("DelegationPreference: %v", err)
	}
	if p.TotalFactor != 10000 {
		t.Errorf("expected computed total_factor 10000, got %d", p.TotalFactor)
	}
	if p.Wallet != "w1" {
		t.Errorf("expected wallet w1, got %q", p.Wallet)
	}
}

func TestDelegationPreferenceRespectsExplicitTotalFactor(t *testing.T) {
	blob := []byte(`{"wallet":"w1","total_factor":9500,"delegation_prefs":[{"wallet_to":"proj-a","factor":6000}]}`)
	p, err := DelegationPreference(blob)
	if err != nil {
		t.Fatalf("DelegationPreference: %v", err)
	}
	if p.TotalFactor != 9500 {
		t.Errorf("expected explicit total_factor 9500, got %d", p.TotalFactor)
	}
}

func TestMinting(t *testing.T) {
	blob := []byte(`{"distribution_tick":42,"total_minted":"1000","total_inflow":"900","timestamp":1700000000,"ao_kept":"100","ao_exchanged_for_pi":"800"}`)
	report, err := Minting(blob)
	if err != nil {
		t.Fatalf("Minting: %v", err)
	}
	if report.DistributionTick != 42 || report.ReportID != "" {
		t.Errorf("unexpected report: %+v", report)
	}
}
