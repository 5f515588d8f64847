package parse

import (
	"encoding/json"
	"fmt"
)

// MintingReport is one periodic minting/distribution report (spec §4.2).
// ReportID is optional on older payloads.
type MintingReport struct {
	DistributionTick int64  `json:"distribution_tick"`
	TotalMinted      string `json:"total_minted"`
	TotalInflow      string `json:"total_inflow"`
	Timestamp        int64  `json:"timestamp"`
	AOKept           string `json:"ao_kept"`
	AOExchangedForPI string `json:"ao_exchanged_for_pi"`
	ReportID         string `json:"report_id,omitempty"`
}

// Minting parses one minting-report JSON blob.
func Minting(blob []byte) (MintingReport, error) {
	var report MintingReport
	if err := json.Unmarshal(blob, &report); err != nil {
		return MintingReport{}, fmt.Errorf("parse: minting report: %w", err)
	}
	return report, nil
}
