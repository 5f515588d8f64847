package ingest

import "github.com/atlasindex/atlas/internal/gwclient"

// Authority and per-token process ids are external collaborator
// constants (spec §1 "per-entity constants ... are treated as external
// collaborators"); fixed here as the indexer's only deployment target.
const authorityAddress = "FMKrFSFbqqwXJAQsu98gCgFUQo5N-R9MaupnDQaFQyU"

// TokenStream describes one tracked token's process id and stream label.
type TokenStream struct {
	Label     string
	ProcessID string
	Genesis   uint64
}

// KnownTokenStreams lists the token streams C5 spawns a worker for,
// in addition to the two generic protocol variants.
func KnownTokenStreams() []TokenStream {
	return []TokenStream{
		{Label: "token_ao", ProcessID: "0syT13r0s0tgPmIed95bJnuSqaD29HQNN8D3ElLSrsc", Genesis: 1594020},
	}
}

// ProtocolAStream is the generic protocol-A stream (lowercase tag keys,
// spec §6 start height ≈ 1,594,020).
func ProtocolAStream() StreamConfig {
	return StreamConfig{
		Label:   "protocol_a",
		Genesis: 1594020,
		SubQueries: []SubQuery{
			{
				Source: "",
				Build: func(height uint64, cursor string) gwclient.MessageQuery {
					return gwclient.MessageQuery{
						Variant: gwclient.VariantProtocolA,
						Height:  height,
						Cursor:  cursor,
					}
				},
			},
		},
	}
}

// ProtocolBStream is the generic protocol-B stream (header-case tag keys,
// spec §6 start height ≈ 1,616,999).
func ProtocolBStream() StreamConfig {
	return StreamConfig{
		Label:   "protocol_b",
		Genesis: 1616999,
		SubQueries: []SubQuery{
			{
				Source: "",
				Build: func(height uint64, cursor string) gwclient.MessageQuery {
					return gwclient.MessageQuery{
						Variant: gwclient.VariantProtocolB,
						Height:  height,
						Cursor:  cursor,
					}
				},
			},
		},
	}
}

// TokenWorkerStream builds the two-subquery stream config for one tracked
// token (spec §4.4: "pass a 'source' discriminator (transfer vs process)
// through two back-to-back sub-queries per height").
func TokenWorkerStream(t TokenStream) StreamConfig {
	return StreamConfig{
		Label:   t.Label,
		Genesis: t.Genesis,
		SubQueries: []SubQuery{
			{
				Source: "transfer",
				Build: func(height uint64, cursor string) gwclient.MessageQuery {
					return gwclient.MessageQuery{
						Variant:    gwclient.VariantTokenTransfer,
						Height:     height,
						Cursor:     cursor,
						Owners:     []string{authorityAddress},
						Recipients: []string{t.ProcessID},
						ExtraTags: []gwclient.TagPredicate{
							{Name: "action", Values: []string{"Transfer"}},
						},
					}
				},
			},
			{
				Source: "process",
				Build: func(height uint64, cursor string) gwclient.MessageQuery {
					return gwclient.MessageQuery{
						Variant: gwclient.VariantTokenProcess,
						Height:  height,
						Cursor:  cursor,
						Owners:  []string{authorityAddress},
						ExtraTags: []gwclient.TagPredicate{
							{Name: "from-process", Values: []string{t.ProcessID}},
						},
					}
				},
			},
		},
	}
}
