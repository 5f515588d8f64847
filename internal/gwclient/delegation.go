package gwclient

import (
	"context"
	"fmt"
)

// delegationPID and authority are fixed collaborator addresses the spec
// treats as external constants (§3, §4.6.1), not configuration — every
// deployment of this indexer watches the same delegation contract.
const (
	delegationPID            = "MEU1p5yq7KmW34IsnhsynVmaEfV6oqwexzEJZoNLbUk"
	delegationBatchAuthority = "FMKrFSFbqqwXJAQsu98gCgFUQo5N-R9MaupnDQaFQyU"
)

// FullPIFallback is the sentinel returned by FetchLatestDelegationBatches
// when an address has never set a delegation: "100% delegated to PI"
// (spec §4.1, §4.6.1 edge case).
const FullPIFallback = "100% PI"

type graphqlDelegationBatchResponse struct {
	Data struct {
		Transactions struct {
			Edges []struct {
				Node struct {
					ID    string `json:"id"`
					Block struct {
						Height uint64 `json:"height"`
					} `json:"block"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"transactions"`
	} `json:"data"`
}

const delegationBatchesQuery = `query($owners: [String!], $tags: [TagFilter!], $limit: Int!) {
  transactions(first: $limit, sort: HEIGHT_DESC, owners: $owners, tags: $tags) {
    edges {
      node {
        id
        block { height }
      }
    }
  }
}`

// FetchLatestDelegationBatches returns up to limit Set-Delegation message
// ids owned by address, highest block first (spec §4.1). If address has
// never set a delegation, returns a single-element slice containing the
// "100% PI" fallback rather than an empty slice, per §4.6.1.
func (c *Client) FetchLatestDelegationBatches(ctx context.Context, address string, limit int) ([]string, error) {
	variables := map[string]interface{}{
		"owners": []string{address},
		"tags": []map[string]interface{}{
			{"name": "Action", "values": []string{"Set-Delegation"}},
		},
		"limit": limit,
	}

	var resp graphqlDelegationBatchResponse
	if err := c.postGraphQL(ctx, delegationBatchesQuery, variables, &resp); err != nil {
		return nil, fmt.Errorf("gwclient: fetch delegation batches for %s: %w", address, err)
	}

	edges := resp.Data.Transactions.Edges
	if len(edges) == 0 {
		return []string{FullPIFallback}, nil
	}

	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Node.ID)
	}
	return ids, nil
}

type graphqlDelegationPreferenceResponse struct {
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

const delegationPreferenceQuery = `query($owners: [String!], $tags: [TagFilter!]) {
  transactions(first: 1, sort: HEIGHT_DESC, owners: $owners, tags: $tags) {
    edges {
      node { id }
    }
  }
}`

// FetchDelegationPreference resolves the two-hop lookup spec §4.6.1
// describes: given the message id of a batch a wallet delegated into,
// find the message the delegation contract itself emitted in response —
// tagged From-Process=<delegationPID>, Pushed-For=<lastBatchID>, owned
// by the batch authority — and return its message id. Returns "" with
// no error if the contract has not yet processed that batch.
func (c *Client) FetchDelegationPreference(ctx context.Context, lastBatchID string) (string, error) {
	if lastBatchID == FullPIFallback {
		return FullPIFallback, nil
	}

	variables := map[string]interface{}{
		"owners": []string{delegationBatchAuthority},
		"tags": []map[string]interface{}{
			{"name": "From-Process", "values": []string{delegationPID}},
			{"name": "Pushed-For", "values": []string{lastBatchID}},
		},
	}

	var resp graphqlDelegationPreferenceResponse
	if err := c.postGraphQL(ctx, delegationPreferenceQuery, variables, &resp); err != nil {
		return "", fmt.Errorf("gwclient: fetch delegation preference for batch %s: %w", lastBatchID, err)
	}

	edges := resp.Data.Transactions.Edges
	if len(edges) == 0 {
		return "", nil
	}
	return edges[0].Node.ID, nil
}
