package gwclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// arweaveInfoHost is fixed per spec §6: tip height and block timestamp
// are read from the canonical Arweave host regardless of which gateway
// mirror the rest of the client talks to.
const arweaveInfoHost = "https://arweave.net"

// FetchTipHeight returns the current Ledger height (spec §4.1, §6).
func (c *Client) FetchTipHeight(ctx context.Context) (uint64, error) {
	if c.cache != nil {
		if h, ok := c.cache.getTip(); ok {
			return h, nil
		}
	}

	body, err := c.getREST(ctx, arweaveInfoHost+"/info")
	if err != nil {
		return 0, fmt.Errorf("gwclient: fetch tip height: %w", err)
	}
	var info struct {
		Height uint64 `json:"height"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return 0, fmt.Errorf("gwclient: decode tip height: %w", err)
	}

	if c.cache != nil {
		c.cache.setTip(info.Height)
	}
	return info.Height, nil
}

// rawTimestamp accepts either a JSON number or a JSON string for the
// timestamp field, matching spec §6's "may be integer or string" note.
type rawTimestamp struct {
	Timestamp json.RawMessage `json:"timestamp"`
}

// FetchBlockTimestamp returns the unix-seconds timestamp for a height.
func (c *Client) FetchBlockTimestamp(ctx context.Context, height uint64) (int64, error) {
	if c.cache != nil {
		if ts, ok := c.cache.getTimestamp(height); ok {
			return ts, nil
		}
	}

	body, err := c.getREST(ctx, fmt.Sprintf("%s/block/height/%d", arweaveInfoHost, height))
	if err != nil {
		return 0, fmt.Errorf("gwclient: fetch block timestamp: %w", err)
	}
	var raw rawTimestamp
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("gwclient: decode block timestamp: %w", err)
	}

	var ts int64
	if err := json.Unmarshal(raw.Timestamp, &ts); err != nil {
		var s string
		if err2 := json.Unmarshal(raw.Timestamp, &s); err2 != nil {
			return 0, fmt.Errorf("gwclient: block timestamp neither int nor string: %w", err)
		}
		parsed, err3 := strconv.ParseInt(s, 10, 64)
		if err3 != nil {
			return 0, fmt.Errorf("gwclient: parse block timestamp %q: %w", s, err3)
		}
		ts = parsed
	}

	if c.cache != nil {
		c.cache.setTimestamp(height, ts)
	}
	return ts, nil
}

// FetchBlob fetches the raw transaction payload (balance CSVs or
// delegation JSON) by transaction id.
func (c *Client) FetchBlob(ctx context.Context, txID string) ([]byte, error) {
	body, err := c.getREST(ctx, c.gatewayURL+"/"+txID)
	if err != nil {
		return nil, fmt.Errorf("gwclient: fetch blob %s: %w", txID, err)
	}
	return body, nil
}

// nativeBalanceScale divides the raw wallet-balance unit down to human
// native-asset units (spec §4.1, §6).
const nativeBalanceScale = 1e12

// FetchNativeBalance returns address's native-asset balance, already
// divided by 10^12 from the gateway's raw integer-string unit.
func (c *Client) FetchNativeBalance(ctx context.Context, address string) (float64, error) {
	body, err := c.getREST(ctx, fmt.Sprintf("%s/wallet/%s/balance", c.gatewayURL, address))
	if err != nil {
		return 0, fmt.Errorf("gwclient: fetch native balance for %s: %w", address, err)
	}
	raw, err := strconv.ParseFloat(string(body), 64)
	if err != nil {
		return 0, fmt.Errorf("gwclient: parse native balance %q: %w", string(body), err)
	}
	return raw / nativeBalanceScale, nil
}
