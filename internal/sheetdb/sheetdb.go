// Package sheetdb implements the second-generation remote backend: a SheetDB
// REST gateway in front of a spreadsheet, storing each user's collection as a
// single JSON blob cell.
package sheetdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"pokerledger/internal/core"
	"pokerledger/internal/store"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ store.Backend = (*Client)(nil)

// New creates a SheetDB client for the given API endpoint, e.g.
// https://sheetdb.io/api/v1/<id>.
func New(baseURL, apiKey string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("missing SheetDB API URL")
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: newHTTPClientWithPooling(),
	}, nil
}

// NewFromEnv creates a client from SHEETDB_API_URL and optional SHEETDB_API_KEY.
func NewFromEnv() (*Client, error) {
	return New(os.Getenv("SHEETDB_API_URL"), os.Getenv("SHEETDB_API_KEY"))
}

// newHTTPClientWithPooling creates an HTTP client with connection pooling
// tuned for a single upstream host.
func newHTTPClientWithPooling() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

// Name implements store.Backend.
func (c *Client) Name() string { return "sheetdb" }

// userRow is the wire shape of one row in the Users table.
type userRow struct {
	Username    string `json:"username"`
	Tournaments string `json:"tournaments"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Load implements store.Backend. Users without a row get an empty collection.
func (c *Client) Load(ctx context.Context, username string) ([]core.Tournament, int64, error) {
	rows, err := c.search(ctx, username)
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 || strings.TrimSpace(rows[0].Tournaments) == "" {
		return nil, 1, nil
	}

	doc, err := store.DecodeDocument([]byte(rows[0].Tournaments))
	if err != nil {
		return nil, 0, fmt.Errorf("decode collection for %s: %w", username, err)
	}
	return doc.Records, doc.NextID, nil
}

// Save implements store.Backend: PATCH the user's row when it exists, POST a
// new one otherwise.
func (c *Client) Save(ctx context.Context, username string, records []core.Tournament, nextID int64) error {
	blob, err := store.EncodeDocument(store.Document{Records: records, NextID: nextID})
	if err != nil {
		return fmt.Errorf("encode collection for %s: %w", username, err)
	}

	rows, err := c.search(ctx, username)
	if err != nil {
		return err
	}

	row := userRow{
		Username:    username,
		Tournaments: string(blob),
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if len(rows) == 0 {
		err = c.create(ctx, row)
	} else {
		err = c.update(ctx, row)
	}
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Collection saved to SheetDB",
		"username", username, "records", len(records), "bytes", len(blob))
	return nil
}

func (c *Client) search(ctx context.Context, username string) ([]userRow, error) {
	endpoint := c.baseURL + "/search?username=" + url.QueryEscape(username)
	body, status, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", username, err)
	}
	// SheetDB answers 404 for an empty search result on some plans.
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("search %s: unexpected status %d", username, status)
	}

	var rows []userRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("search %s: decode response: %w", username, err)
	}
	return rows, nil
}

func (c *Client) create(ctx context.Context, row userRow) error {
	payload, err := json.Marshal(map[string]any{"data": []userRow{row}})
	if err != nil {
		return fmt.Errorf("encode create payload: %w", err)
	}
	_, status, err := c.do(ctx, http.MethodPost, c.baseURL, payload)
	if err != nil {
		return fmt.Errorf("create row for %s: %w", row.Username, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("create row for %s: unexpected status %d", row.Username, status)
	}
	return nil
}

func (c *Client) update(ctx context.Context, row userRow) error {
	payload, err := json.Marshal(map[string]any{"data": row})
	if err != nil {
		return fmt.Errorf("encode update payload: %w", err)
	}
	endpoint := c.baseURL + "/username/" + url.PathEscape(row.Username)
	_, status, err := c.do(ctx, http.MethodPatch, endpoint, payload)
	if err != nil {
		return fmt.Errorf("update row for %s: %w", row.Username, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("update row for %s: unexpected status %d", row.Username, status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return data, resp.StatusCode, nil
}
