package ingest

import (
	"strings"

	"github.com/atlasindex/atlas/internal/gwclient"
)

// SubQuery is one paginated GraphQL call a height requires before its
// cursor can advance. Generic protocol streams have exactly one; token
// streams have two ("transfer" and "process", spec §4.4).
type SubQuery struct {
	Source string // "" for generic protocol streams
	Build  func(height uint64, cursor string) gwclient.MessageQuery
}

// StreamConfig describes one C5 worker (spec §4.4).
type StreamConfig struct {
	Label      string
	Genesis    uint64
	SubQueries []SubQuery
}

// encodeCursor packs which sub-query a mid-height resume belongs to
// alongside its gateway pagination cursor, so a single CursorState.last_cursor
// column can represent progress through a multi-subquery height.
func encodeCursor(source, cursor string) string {
	if cursor == "" {
		return ""
	}
	return source + "\x1f" + cursor
}

func decodeCursor(encoded string) (source, cursor string) {
	if encoded == "" {
		return "", ""
	}
	parts := strings.SplitN(encoded, "\x1f", 2)
	if len(parts) != 2 {
		return "", encoded
	}
	return parts[0], parts[1]
}
