package parse

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// DelegationMappingRow is one row of a Delegation-Mappings broadcast CSV
// (wallet_from, wallet_to, factor) — distinct from BalanceSheet's
// (eoa, amount, ar_address) shape.
type DelegationMappingRow struct {
	WalletFrom string
	WalletTo   string
	Factor     uint32
}

// DelegationMappings parses a headerless CSV blob of
// {wallet_from, wallet_to, factor} rows (spec §4.4 tail).
func DelegationMappings(blob []byte) ([]DelegationMappingRow, error) {
	r := csv.NewReader(strings.NewReader(string(blob)))
	r.FieldsPerRecord = 3

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse: delegation mappings: %w", err)
	}

	rows := make([]DelegationMappingRow, 0, len(records))
	for _, rec := range records {
		factor, err := strconv.ParseUint(strings.TrimSpace(rec[2]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse: delegation mappings: factor: %w", err)
		}
		rows = append(rows, DelegationMappingRow{
			WalletFrom: strings.TrimSpace(rec[0]),
			WalletTo:   strings.TrimSpace(rec[1]),
			Factor:     uint32(factor),
		})
	}
	return rows, nil
}
