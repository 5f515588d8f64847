// Package snapshot implements the Snapshot Pipeline (C7): a periodic
// cycle that cross-joins oracle-published balance sheets with wallet
// delegation preferences and native-asset balances.
package snapshot

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/atlasindex/atlas/internal/gwclient"
	"github.com/atlasindex/atlas/internal/ingest"
	"github.com/atlasindex/atlas/internal/parse"
	"github.com/atlasindex/atlas/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// defaultTickers is used when a Pipeline is constructed without an
// explicit Tickers list (e.g. in tests), matching config.go's default.
var defaultTickers = []string{"usds", "dai", "steth"}

// MaxFactor is the 100% delegation weight (spec §6 constants).
const MaxFactor = 10000

// TickerDecimals is the fixed decimal scale for all three known oracle
// tickers (spec §6 constants: "token decimals for all three known oracle
// tickers = 18").
const TickerDecimals = 18

// oracleProcessIDs maps each tracked ticker to the Protocol process id
// whose Set-Balances broadcasts the pipeline watches (spec §4.6,
// external-collaborator constants per §1).
var oracleProcessIDs = map[string]string{
	"usds":  "lsSdRRoaU5xIzFzqBK1bJfcz6LZYBHNhoAVNxnN0PwU",
	"dai":   "fD8D5ZJdSDcEidHzblTEOOk-IW_v01gsOYJSSjPjUkQ",
	"steth": "eFiWaKj7NKWM0i93KMjDO0z_tlRrj9TwAc8KuEcTCEY",
}

const oracleBalancesQuery = `query($owners: [String!], $tags: [TagFilter!]) {
  transactions(first: 1, sort: HEIGHT_DESC, owners: $owners, tags: $tags) {
    edges {
      node { id }
    }
  }
}`

type graphqlOracleBalancesResponse struct {
	Data struct {
		Transactions struct {
			Edges []struct {
				Node struct {
					ID string `json:"id"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"transactions"`
	} `json:"data"`
}

// Pipeline drives C7's cycle. Build it as a struct literal; call RunCycle
// every tick (the supervisor owns the ticker, spec §4.8).
type Pipeline struct {
	Client      *gwclient.Client
	Store       *store.Store
	Logger      zerolog.Logger
	Concurrency int64    // DELEGATION_CONCURRENCY, default 16
	Tickers     []string // ORACLE_TICKERS, default usds/dai/steth
}

// RunCycle runs one full iteration over every configured ticker (spec
// §4.6). Per the "log and continue" open-question resolution (spec §9a),
// a failure on one ticker is logged and the cycle proceeds to the next —
// it never aborts the whole cycle early.
func (p *Pipeline) RunCycle(ctx context.Context) {
	if err := ingest.ForwardIndexDelegationMappings(ctx, p.Client, p.Store); err != nil {
		p.Logger.Error().Err(err).Msg("delegation mapping forward index failed")
	}

	tickers := p.Tickers
	if len(tickers) == 0 {
		tickers = defaultTickers
	}

	for _, ticker := range tickers {
		if err := p.runTicker(ctx, ticker); err != nil {
			p.Logger.Error().Err(err).Str("ticker", ticker).Msg("snapshot cycle iteration failed, continuing to next ticker")
		}
	}
}

func (p *Pipeline) runTicker(ctx context.Context, ticker string) error {
	processID, ok := oracleProcessIDs[ticker]
	if !ok {
		return fmt.Errorf("snapshot: unknown ticker %s", ticker)
	}

	snapshotTxID, err := p.fetchLatestBalancesTxID(ctx, processID)
	if err != nil {
		return fmt.Errorf("fetch latest balances for %s: %w", ticker, err)
	}
	if snapshotTxID == "" {
		p.Logger.Debug().Str("ticker", ticker).Msg("no balance sheet published yet")
		return nil
	}

	has, err := p.Store.HasOracle(ctx, ticker, snapshotTxID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	ingestTS := uint64(time.Now().UnixMilli())
	if err := p.Store.InsertOracleSnapshot(ctx, ticker, ingestTS, snapshotTxID); err != nil {
		return err
	}

	blob, err := p.Client.FetchBlob(ctx, snapshotTxID)
	if err != nil {
		return fmt.Errorf("fetch balance sheet blob %s: %w", snapshotTxID, err)
	}
	holders, err := parse.BalanceSheet(blob)
	if err != nil {
		return fmt.Errorf("parse balance sheet %s: %w", snapshotTxID, err)
	}

	triples := p.fanOutEnrich(ctx, holders)

	return p.persist(ctx, ticker, ingestTS, snapshotTxID, triples)
}

func (p *Pipeline) fetchLatestBalancesTxID(ctx context.Context, processID string) (string, error) {
	var resp graphqlOracleBalancesResponse
	if err := p.Client.QueryGraphQL(ctx, oracleBalancesQuery, map[string]interface{}{
		"owners": []string{processID},
		"tags": []map[string]interface{}{
			{"name": "Action", "values": []string{"Set-Balances"}},
		},
	}, &resp); err != nil {
		return "", err
	}
	edges := resp.Data.Transactions.Edges
	if len(edges) == 0 {
		return "", nil
	}
	return edges[0].Node.ID, nil
}

// holderResult is one enriched (holder × preference) observation.
type holderResult struct {
	holder     parse.BalanceRow
	preference ResolvedPreference
	native     float64
	err        error
}

// fanOutEnrich resolves delegation preference and native balance for each
// holder with bounded concurrency (spec §4.6 step d, §5).
func (p *Pipeline) fanOutEnrich(ctx context.Context, holders []parse.BalanceRow) []holderResult {
	limit := p.Concurrency
	if limit <= 0 {
		limit = 16
	}
	sem := semaphore.NewWeighted(limit)
	results := make([]holderResult, len(holders))

	done := make(chan struct{})
	go func() {
		for i, h := range holders {
			i, h := i, h
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = holderResult{holder: h, err: err}
				continue
			}
			go func() {
				defer sem.Release(1)
				pref, err := ResolveDelegationPreference(ctx, p.Client, h.EOA)
				if err != nil {
					p.Logger.Warn().Err(err).Str("wallet", h.EOA).Msg("delegation preference unresolved, using 100% PI default")
					pref = defaultPreference()
				}
				native, err := p.Client.FetchNativeBalance(ctx, h.ARAddress)
				if err != nil {
					native = 0
				}
				results[i] = holderResult{holder: h, preference: pref, native: native}
			}()
		}
		// Drain the semaphore fully before signalling completion so
		// every goroutine above has written its result slot.
		_ = sem.Acquire(context.Background(), limit)
		close(done)
	}()
	<-done

	return results
}

func (p *Pipeline) persist(ctx context.Context, ticker string, ingestTS uint64, snapshotTxID string, results []holderResult) error {
	var balances []store.WalletBalance
	var delegations []store.WalletDelegation
	var positions []store.DelegationPosition

	for _, r := range results {
		if r.err != nil {
			p.Logger.Warn().Err(r.err).Str("wallet", r.holder.EOA).Msg("holder enrichment failed, skipping")
			continue
		}

		amount := scaleAmount(r.holder.RawAmount, TickerDecimals)
		balances = append(balances, store.WalletBalance{
			Ticker:             ticker,
			Wallet:             r.holder.EOA,
			IngestTS:           ingestTS,
			EOA:                r.holder.EOA,
			Amount:             amount,
			NativeAssetBalance: strconv.FormatFloat(r.native, 'f', -1, 64),
			SourceTxID:         snapshotTxID,
		})
		delegations = append(delegations, store.WalletDelegation{
			Wallet:   r.holder.EOA,
			IngestTS: ingestTS,
			Payload:  r.preference.RawPayload,
		})

		// amountRat carries the full precision of the big-integer-scaled
		// amount string through the factor multiplication below; a
		// float64 round-trip here would reintroduce the precision loss
		// scaleAmount's math/big rewrite exists to avoid.
		amountRat, ok := new(big.Rat).SetString(amount)
		if !ok {
			amountRat = new(big.Rat)
		}
		for _, pref := range r.preference.Prefs {
			if !isKnownProject(pref.WalletTo) {
				continue
			}
			factorRat := big.NewRat(int64(pref.Factor), MaxFactor)
			delegatedRat := new(big.Rat).Mul(amountRat, factorRat)
			delegatedNative := r.native * float64(pref.Factor) / MaxFactor
			if delegatedRat.Sign() == 0 && delegatedNative == 0 {
				continue
			}
			positions = append(positions, store.DelegationPosition{
				Project:      pref.WalletTo,
				Wallet:       r.holder.EOA,
				IngestTS:     ingestTS,
				Ticker:       ticker,
				EOA:          r.holder.EOA,
				Factor:       uint32(pref.Factor),
				Amount:       delegatedRat.FloatString(TickerDecimals),
				NativeAmount: strconv.FormatFloat(delegatedNative, 'f', -1, 64),
			})
		}
	}

	if err := p.Store.InsertWalletBalances(ctx, balances); err != nil {
		return err
	}
	if err := p.Store.InsertWalletDelegations(ctx, delegations); err != nil {
		return err
	}
	return p.Store.InsertDelegationPositions(ctx, positions)
}

// scaleAmount divides a big-integer raw amount string by 10^decimals,
// returning a decimal string. The raw amount is u128 in the upstream
// source (SetBalancesData.amount) — well beyond uint64 range for large
// holders of an 18-decimal token — so the division is done with
// math/big rather than a fixed-width integer.
func scaleAmount(raw string, decimals int) string {
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return "0"
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int), new(big.Int)
	whole.DivMod(n, scale, frac)
	if frac.Sign() == 0 {
		return whole.String()
	}
	fracStr := frac.String()
	for len(fracStr) < decimals {
		fracStr = "0" + fracStr
	}
	fracStr = strings.TrimRight(fracStr, "0")
	return whole.String() + "." + fracStr
}
