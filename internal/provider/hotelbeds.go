package provider

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client talks to a HotelBeds-style inventory API: JSON over REST with an
// Api-key header and an X-Signature of SHA-256(key+secret+unix timestamp).
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

var _ Searcher = (*Client)(nil)

func (c *Client) SearchHotels(ctx context.Context, q HotelQuery) ([]Result, error) {
	if v := q.Validate(); !v.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, v)
	}
	return c.search(ctx, "/hotels/search", q)
}

func (c *Client) SearchActivities(ctx context.Context, q ActivityQuery) ([]Result, error) {
	if v := q.Validate(); !v.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, v)
	}
	return c.search(ctx, "/activities/search", q)
}

func (c *Client) SearchTransfers(ctx context.Context, q TransferQuery) ([]Result, error) {
	if v := q.Validate(); !v.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, v)
	}
	return c.search(ctx, "/transfers/search", q)
}

type searchResponse struct {
	Results []Result `json:"results"`
}

func (c *Client) search(ctx context.Context, path string, payload any) ([]Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Api-key", c.apiKey)
	req.Header.Set("X-Signature", c.signature())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("provider %s: status %d: %s", path, resp.StatusCode, snippet)
	}
	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	return parsed.Results, nil
}

func (c *Client) signature() string {
	ts := strconv.FormatInt(c.now().Unix(), 10)
	sum := sha256.Sum256([]byte(c.apiKey + c.apiSecret + ts))
	return hex.EncodeToString(sum[:])
}
