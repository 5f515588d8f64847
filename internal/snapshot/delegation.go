package snapshot

import (
	"context"
	"fmt"

	"github.com/atlasindex/atlas/internal/gwclient"
	"github.com/atlasindex/atlas/internal/parse"
)

// ResolvedPreference is the outcome of the two-hop delegation preference
// lookup (spec §4.6.1), carrying both the parsed prefs and their raw JSON
// for the WalletDelegation row.
type ResolvedPreference struct {
	Prefs      []parse.DelegationPref
	RawPayload string
}

// ResolveDelegationPreference implements the spec §4.6.1 lookup: fetch up
// to 10 Set-Delegation batches for wallet, highest block first,
// two-hop-resolve each in that order to a preference payload, and return
// the first with total_factor ≥ MAX_FACTOR, falling back to the last
// successfully parsed payload otherwise. Every returned batch is a
// candidate: batches below the highest block height are not filtered
// out. If every candidate fails, it returns an error and the caller
// substitutes the 100%-PI default (spec §4.6.1 step 4).
func ResolveDelegationPreference(ctx context.Context, client *gwclient.Client, wallet string) (ResolvedPreference, error) {
	batches, err := client.FetchLatestDelegationBatches(ctx, wallet, 10)
	if err != nil {
		return defaultPreference(), nil
	}
	if len(batches) == 1 && batches[0] == gwclient.FullPIFallback {
		return defaultPreference(), nil
	}

	var fallback *ResolvedPreference
	for _, batchID := range batches {
		preferenceMsgID, err := client.FetchDelegationPreference(ctx, batchID)
		if err != nil || preferenceMsgID == "" {
			continue
		}

		blob, err := client.FetchBlob(ctx, preferenceMsgID)
		if err != nil {
			continue
		}
		payload, err := parse.DelegationPreference(blob)
		if err != nil {
			continue
		}

		resolved := ResolvedPreference{Prefs: payload.Prefs, RawPayload: string(blob)}
		if payload.TotalFactor >= MaxFactor {
			return resolved, nil
		}
		fallback = &resolved
	}

	if fallback != nil {
		return *fallback, nil
	}
	return ResolvedPreference{}, fmt.Errorf("snapshot: no resolvable delegation preference for wallet %s", wallet)
}

func defaultPreference() ResolvedPreference {
	return ResolvedPreference{
		Prefs:      []parse.DelegationPref{{WalletTo: PIPID, Factor: MaxFactor}},
		RawPayload: `{"delegation_prefs":[{"wallet_to":"` + PIPID + `","factor":10000}]}`,
	}
}
