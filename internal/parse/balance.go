// Package parse decodes blob payloads fetched via gwclient.FetchBlob into
// typed records (C2): balance-sheet CSVs and delegation/minting JSON.
// Every parser here is a pure function; the caller owns retry/skip policy.
package parse

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// BalanceRow is one holder line from an oracle balance-sheet CSV.
type BalanceRow struct {
	EOA       string
	RawAmount string // big-integer string, unscaled
	ARAddress string
}

// BalanceSheet parses a headerless CSV blob of {eoa, raw_amount, ar_address}
// rows (spec §4.2). The file carries no header row, so fields are read by
// position; csv.Reader rejects any row without exactly three fields.
func BalanceSheet(blob []byte) ([]BalanceRow, error) {
	r := csv.NewReader(strings.NewReader(string(blob)))
	r.FieldsPerRecord = 3

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse: balance sheet: %w", err)
	}

	rows := make([]BalanceRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, BalanceRow{
			EOA:       strings.TrimSpace(rec[0]),
			RawAmount: strings.TrimSpace(rec[1]),
			ARAddress: strings.TrimSpace(rec[2]),
		})
	}
	return rows, nil
}
