package ingest

import (
	"context"
	"fmt"

	"github.com/atlasindex/atlas/internal/gwclient"
	"github.com/atlasindex/atlas/internal/parse"
	"github.com/atlasindex/atlas/internal/store"
)

// delegationMappingAuthority is the address whose Action=Delegation-Mappings
// broadcasts this indexer forward-indexes (spec §4.4 tail, §6 glossary
// Authority).
const delegationMappingAuthority = "FMKrFSFbqqwXJAQsu98gCgFUQo5N-R9MaupnDQaFQyU"

const latestMappingQuery = `query($owners: [String!], $tags: [TagFilter!]) {
  transactions(first: 1, sort: HEIGHT_DESC, owners: $owners, tags: $tags) {
    edges {
      node {
        id
        block { height }
      }
    }
  }
}`

type graphqlLatestMappingResponse struct {
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

// ForwardIndexDelegationMappings runs once per snapshot cycle (spec §4.4,
// §4.6 step 1): find the newest Delegation-Mappings broadcast, and if it
// has not already been indexed, fetch and parse its CSV blob and insert
// the mapping rows.
func ForwardIndexDelegationMappings(ctx context.Context, client *gwclient.Client, st *store.Store) error {
	// GraphQL lookup for the latest broadcast is hand-rolled here rather
	// than through gwclient.FetchMessages because it needs a raw
	// postGraphQL-shaped query the message-page API doesn't expose;
	// adapted from gwclient's own query-building idiom instead.
	batchID, height, err := fetchLatestMappingBatch(ctx, client)
	if err != nil {
		return fmt.Errorf("ingest: forward index delegation mappings: %w", err)
	}
	if batchID == "" {
		return nil
	}

	already, err := st.HasDelegationMapping(ctx, batchID)
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	blob, err := client.FetchBlob(ctx, batchID)
	if err != nil {
		return fmt.Errorf("ingest: fetch delegation mapping blob %s: %w", batchID, err)
	}
	rows, err := parse.DelegationMappings(blob)
	if err != nil {
		return fmt.Errorf("ingest: parse delegation mapping blob %s: %w", batchID, err)
	}

	mappings := make([]store.DelegationMapping, 0, len(rows))
	ts := nowMillis()
	for _, r := range rows {
		mappings = append(mappings, store.DelegationMapping{
			BlockHeight: height,
			BatchTxID:   batchID,
			WalletFrom:  r.WalletFrom,
			WalletTo:    r.WalletTo,
			Factor:      r.Factor,
			IngestTS:    ts,
		})
	}
	return st.InsertDelegationMappings(ctx, mappings)
}

func fetchLatestMappingBatch(ctx context.Context, client *gwclient.Client) (batchID string, height uint64, err error) {
	var resp graphqlLatestMappingResponse
	if err := client.QueryGraphQL(ctx, latestMappingQuery, map[string]interface{}{
		"owners": []string{delegationMappingAuthority},
		"tags": []map[string]interface{}{
			{"name": "Action", "values": []string{"Delegation-Mappings"}},
		},
	}, &resp); err != nil {
		return "", 0, err
	}
	edges := resp.Data.Transactions.Edges
	if len(edges) == 0 {
		return "", 0, nil
	}
	return edges[0].Node.ID, edges[0].Node.Block.Height, nil
}
