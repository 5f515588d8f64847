package gwclient

import "strings"

// Variant selects the tag predicate and casing used to build a GraphQL
// query. Protocol-A uses lowercase tag keys, Protocol-B header-case;
// token streams additionally discriminate on "transfer" vs "process".
type Variant int

const (
	VariantProtocolA Variant = iota
	VariantProtocolB
	VariantTokenTransfer
	VariantTokenProcess
)

// usesHeaderCase reports whether this variant renders tag keys as
// "From-Process" rather than "from-process".
func (v Variant) usesHeaderCase() bool {
	return v == VariantProtocolB || v == VariantTokenTransfer || v == VariantTokenProcess
}

// tagKey renders a canonical lowercase-hyphenated key (e.g. "from-process")
// into the casing this variant's Protocol messages use on the wire.
func (v Variant) tagKey(key string) string {
	if !v.usesHeaderCase() {
		return strings.ToLower(key)
	}
	parts := strings.Split(key, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "-")
}

// Message is a single Protocol message observed in a Ledger block,
// decoded from the GraphQL response edge (spec §3 Message, §6).
type Message struct {
	ID             string
	Owner          string
	Recipient      string
	BundledIn      string
	DataSize       int64
	BlockHeight    uint64
	BlockTimestamp int64 // unix seconds
	Tags           []Tag
}

// Tag is one name/value pair attached to a Message, preserved in the
// exact case the gateway returned it in (spec §3 MessageTag).
type Tag struct {
	Name  string
	Value string
}

// Get returns the first tag value matching name, case-insensitively,
// mirroring the "accept either casing" posture spec §9 calls for.
func (m Message) Get(name string) (string, bool) {
	for _, t := range m.Tags {
		if strings.EqualFold(t.Name, name) {
			return t.Value, true
		}
	}
	return "", false
}

// Page is one paginated GraphQL response (spec §4.1): at most 100
// messages, whether another page follows, and the cursor to resume from.
type Page struct {
	Messages    []Message
	HasNextPage bool
	EndCursor   string
}
