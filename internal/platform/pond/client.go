// Package pond is the REST client for the settlement-metadata API: market
// listings enriched with on-chain initialization state, and the token-mint
// lookup the trade flow depends on.
package pond

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/swipebet/swipebet/internal/domain"
)

// Client is the settlement-metadata API client. The API key is optional;
// unauthenticated clients get lower rate limits.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new settlement-metadata client.
//
// baseURL is the API root, e.g. "https://api.pond.dflow.net".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMarkets returns one page of markets from the offset-paginated listing.
func (c *Client) GetMarkets(ctx context.Context, limit, offset int) ([]APIMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("status", "active")

	body, err := c.doGet(ctx, "/api/v1/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("pond: get markets: %w", err)
	}

	var resp struct {
		Markets []APIMarket `json:"markets"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("pond: decode markets: %w", domain.ErrMalformedRecord)
	}

	return resp.Markets, nil
}

// GetEvents returns one page of events with nested markets.
func (c *Client) GetEvents(ctx context.Context, limit, offset int) ([]APIEvent, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	body, err := c.doGet(ctx, "/api/v1/events?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("pond: get events: %w", err)
	}

	var resp struct {
		Events []APIEvent `json:"events"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("pond: decode events: %w", domain.ErrMalformedRecord)
	}

	return resp.Events, nil
}

// GetMarketTokens fetches the outcome-token ledgers for one market. The
// caller (token cache) owns retry and stale-fallback policy; this method does
// a single attempt and maps status codes to domain sentinels.
func (c *Client) GetMarketTokens(ctx context.Context, marketID string) (domain.MarketTokenInfo, error) {
	path := fmt.Sprintf("/api/v1/market/%s", url.PathEscape(marketID))

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.MarketTokenInfo{}, fmt.Errorf("pond: get market tokens %s: %w", marketID, err)
	}

	var resp MarketTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.MarketTokenInfo{}, fmt.Errorf("pond: decode market tokens %s: %w", marketID, domain.ErrMalformedRecord)
	}

	info, ok := resp.ResolveTokens()
	if !ok {
		return domain.MarketTokenInfo{}, fmt.Errorf("pond: market %s has no complete token ledger: %w", marketID, domain.ErrMalformedRecord)
	}
	if info.MarketID == "" {
		info.MarketID = marketID
	}

	return info, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("HTTP 429: %w", domain.ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("HTTP 404: %w", domain.ErrNotFound)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("HTTP %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	default:
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
}
