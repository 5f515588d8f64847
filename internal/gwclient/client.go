// Package gwclient implements the Gateway Client (C1): it issues GraphQL
// and REST calls against the Ledger gateway and surfaces typed errors so
// callers can classify transient vs. permanent failures per spec §4.4/§7.
package gwclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Client is stateless with respect to Protocol semantics; it only knows
// how to talk to the Ledger gateway. It is cheap to share across workers —
// all state lives in the underlying *http.Client's connection pool.
type Client struct {
	gatewayURL string
	httpClient *http.Client
	logger     zerolog.Logger
	cache      *tipCache // nil when REDIS_URL is unset
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithCache attaches a Redis-backed short-TTL cache for tip height and
// block timestamp lookups (see cache.go). Passing a nil cache disables it.
func WithCache(c *tipCache) Option {
	return func(cl *Client) { cl.cache = c }
}

// New builds a Client against gatewayURL using connection-pool settings
// tuned the way the teacher's provider.PoolConfig tunes outbound
// transports for upstream LLM providers — translated here to a single
// long-lived upstream (the Ledger gateway) instead of many.
func New(gatewayURL string, logger zerolog.Logger, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   64,
		MaxConnsPerHost:       128,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		ForceAttemptHTTP2: true,
	}

	c := &Client{
		gatewayURL: gatewayURL,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
		},
		logger: logger.With().Str("component", "gwclient").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// graphqlRequest is the envelope every GraphQL POST uses.
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// postGraphQL issues a GraphQL POST against {gateway}/graphql and decodes
// the response body into out. HTTP-layer failures are returned as
// *HTTPStatusError (status preserved) or wrapped network errors so
// callers can classify them per spec §4.4.
func (c *Client) postGraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("gwclient: marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gwclient: build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gwclient: graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gwclient: read graphql response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{Code: resp.StatusCode, Body: string(payload)}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("gwclient: decode graphql response: %w", err)
	}
	return nil
}

// QueryGraphQL issues an arbitrary GraphQL query against the gateway and
// decodes the response into out. Exported for callers (such as the
// delegation-mapping forward indexer) whose query shape doesn't fit the
// FetchMessages/FetchLatestDelegationBatches helpers.
func (c *Client) QueryGraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	return c.postGraphQL(ctx, query, variables, out)
}

// getREST issues a GET against the full url given and returns the raw body.
func (c *Client) getREST(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("gwclient: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gwclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gwclient: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{Code: resp.StatusCode, Body: string(payload)}
	}
	return payload, nil
}
