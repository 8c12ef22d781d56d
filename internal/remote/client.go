package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a thin typed client for a hosted relational store speaking the
// PostgREST dialect (Supabase-style): row-level CRUD over HTTP plus a
// websocket change feed (see realtime.go).
//
// The remote side is an optional capability. A nil *Client is the supported
// "unconfigured" mode; every method on it is unreachable because callers gate
// on Configured() first.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// The original client had no timeout at all; a call that never
		// returned left the reload pending forever. Bound it here.
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// Select fetches all rows of table ordered by order (e.g. "id.asc",
// "created_at.desc") and decodes them into dest, which must be a pointer to a
// slice of row structs.
func (c *Client) Select(ctx context.Context, table, order string, dest any) error {
	q := url.Values{"select": {"*"}}
	if order != "" {
		q.Set("order", order)
	}
	return c.do(ctx, http.MethodGet, c.tableURL(table, q), nil, "", dest)
}

// SelectIDs fetches only the identity column of table.
func (c *Client) SelectIDs(ctx context.Context, table string) ([]int64, error) {
	q := url.Values{"select": {"id"}}
	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodGet, c.tableURL(table, q), nil, "", &rows); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// Upsert inserts or replaces rows by their identity column.
func (c *Client) Upsert(ctx context.Context, table string, rows any) error {
	return c.do(ctx, http.MethodPost, c.tableURL(table, nil), rows, "resolution=merge-duplicates", nil)
}

// Insert appends a single row.
func (c *Client) Insert(ctx context.Context, table string, row any) error {
	return c.do(ctx, http.MethodPost, c.tableURL(table, nil), row, "", nil)
}

// DeleteIn removes every row whose column value is in ids. A no-op when ids
// is empty.
func (c *Client) DeleteIn(ctx context.Context, table, column string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	q := url.Values{column: {"in.(" + strings.Join(parts, ",") + ")"}}
	return c.do(ctx, http.MethodDelete, c.tableURL(table, q), nil, "", nil)
}

func (c *Client) tableURL(table string, q url.Values) string {
	u := c.baseURL + "/rest/v1/" + table
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, rawURL string, body any, prefer string, dest any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("remote %s %s: status %d: %s", method, rawURL, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
