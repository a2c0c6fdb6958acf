// Package sheets is a thin authenticated client for the spreadsheet values
// API. It attaches the current bearer token to each call, speaks the
// values/append/update endpoints, and decodes the API's JSON error envelope
// into a uniform APIError. It performs no retries; retry policy belongs to
// callers.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/creativeops/matrixsync/internal/auth"
)

// TokenSource supplies bearer tokens for outbound calls. *auth.Issuer
// satisfies it.
type TokenSource interface {
	Token(ctx context.Context) (*auth.Token, error)
}

// Client calls the values API of a single spreadsheet.
type Client struct {
	baseURL       string
	spreadsheetID string
	tokens        TokenSource
	httpClient    *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

func NewClient(baseURL, spreadsheetID string, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       baseURL,
		spreadsheetID: spreadsheetID,
		tokens:        tokens,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// valueRange mirrors the API's wire format for reads and writes. Rows are
// string cells only; the matrix sheets never carry other value types.
type valueRange struct {
	Range  string     `json:"range,omitempty"`
	Values [][]string `json:"values"`
}

// Values reads the full contents of a sheet (range A:Z), header row
// included.
func (c *Client) Values(ctx context.Context, sheet string) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s", c.baseURL, c.spreadsheetID, url.PathEscape(sheet+"!A:Z"))

	var vr valueRange
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &vr); err != nil {
		return nil, err
	}
	return vr.Values, nil
}

// Update overwrites the given range (e.g. "messages!A1:O1") with rows.
func (c *Client) Update(ctx context.Context, rng string, rows [][]string) error {
	endpoint := fmt.Sprintf("%s/%s/values/%s?valueInputOption=USER_ENTERED",
		c.baseURL, c.spreadsheetID, url.PathEscape(rng))
	return c.do(ctx, http.MethodPut, endpoint, &valueRange{Range: rng, Values: rows}, nil)
}

// Append appends rows after the last data row of the sheet.
func (c *Client) Append(ctx context.Context, sheet string, rows [][]string) error {
	endpoint := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		c.baseURL, c.spreadsheetID, url.PathEscape(sheet))
	return c.do(ctx, http.MethodPost, endpoint, &valueRange{Values: rows}, nil)
}

// Ping performs a cheap metadata read to probe connectivity and
// authorization.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/%s?fields=spreadsheetId", c.baseURL, c.spreadsheetID)
	return c.do(ctx, http.MethodGet, endpoint, nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
