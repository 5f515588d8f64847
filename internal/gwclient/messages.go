package gwclient

import (
	"context"
	"fmt"
)

// TagPredicate is one {name, values} constraint rendered into the
// GraphQL `tags` argument. Name is given in canonical lowercase-hyphen
// form (e.g. "from-process") and is re-cased per the query's Variant.
type TagPredicate struct {
	Name   string
	Values []string
}

// MessageQuery describes one fetch_messages call (spec §4.1). Owners and
// Recipients are left to the caller — they are per-entity constants
// (AUTHORITY, TOKEN_PID) the spec treats as an external collaborator.
type MessageQuery struct {
	Variant    Variant
	Height     uint64
	Cursor     string
	Owners     []string
	Recipients []string
	ExtraTags  []TagPredicate
}

const messagesQueryTemplate = `query($tags: [TagFilter!], $owners: [String!], $recipients: [String!], $min: Int!, $max: Int!, $after: String) {
  transactions(first: 100, sort: HEIGHT_ASC, tags: $tags, owners: $owners, recipients: $recipients, block: {min: $min, max: $max}, after: $after) {
    pageInfo { hasNextPage }
    edges {
      cursor
      node {
        id
        owner { address }
        recipient
        tags { name value }
        block { id height timestamp }
        bundledIn { id }
        data { size }
      }
    }
  }
}`

type graphqlMessagesResponse struct {
	Data struct {
		Transactions struct {
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
			Edges []struct {
				Cursor string `json:"cursor"`
				Node   struct {
					ID    string `json:"id"`
					Owner struct {
						Address string `json:"address"`
					} `json:"owner"`
					Recipient string `json:"recipient"`
					Tags      []struct {
						Name  string `json:"name"`
						Value string `json:"value"`
					} `json:"tags"`
					Block struct {
						ID        string `json:"id"`
						Height    uint64 `json:"height"`
						Timestamp int64  `json:"timestamp"`
					} `json:"block"`
					BundledIn struct {
						ID string `json:"id"`
					} `json:"bundledIn"`
					Data struct {
						Size int64 `json:"size,string"`
					} `json:"data"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"transactions"`
	} `json:"data"`
}

// FetchMessages fetches one page of messages at the given (height, cursor)
// per spec §4.1. The Data-Protocol=ao base tag is always included; the
// caller layers on owners/recipients/extra tags for token-stream variants.
func (c *Client) FetchMessages(ctx context.Context, q MessageQuery) (Page, error) {
	tags := []map[string]interface{}{
		{"name": q.Variant.tagKey("data-protocol"), "values": []string{"ao"}},
	}
	for _, t := range q.ExtraTags {
		tags = append(tags, map[string]interface{}{
			"name":   q.Variant.tagKey(t.Name),
			"values": t.Values,
		})
	}

	variables := map[string]interface{}{
		"tags":  tags,
		"min":   q.Height,
		"max":   q.Height,
		"after": nil,
	}
	if q.Cursor != "" {
		variables["after"] = q.Cursor
	}
	if len(q.Owners) > 0 {
		variables["owners"] = q.Owners
	}
	if len(q.Recipients) > 0 {
		variables["recipients"] = q.Recipients
	}

	var resp graphqlMessagesResponse
	if err := c.postGraphQL(ctx, messagesQueryTemplate, variables, &resp); err != nil {
		return Page{}, err
	}

	edges := resp.Data.Transactions.Edges
	if len(edges) == 0 {
		return Page{}, &EmptyBlockError{Height: q.Height}
	}

	page := Page{
		Messages:    make([]Message, 0, len(edges)),
		HasNextPage: resp.Data.Transactions.PageInfo.HasNextPage,
	}
	for _, e := range edges {
		tags := make([]Tag, 0, len(e.Node.Tags))
		for _, t := range e.Node.Tags {
			tags = append(tags, Tag{Name: t.Name, Value: t.Value})
		}
		page.Messages = append(page.Messages, Message{
			ID:             e.Node.ID,
			Owner:          e.Node.Owner.Address,
			Recipient:      e.Node.Recipient,
			BundledIn:      e.Node.BundledIn.ID,
			DataSize:       e.Node.Data.Size,
			BlockHeight:    e.Node.Block.Height,
			BlockTimestamp: e.Node.Block.Timestamp,
			Tags:           tags,
		})
		page.EndCursor = e.Cursor
	}
	if !page.HasNextPage {
		page.EndCursor = ""
	}
	return page, nil
}

// String renders a one-line page summary (message count, has_next and
// end cursor) for ingest log lines.
func (p Page) String() string {
	return fmt.Sprintf("page(messages=%d, has_next=%v, cursor=%q)", len(p.Messages), p.HasNextPage, p.EndCursor)
}
