// Package supabase talks to a hosted Supabase project: PostgREST for
// records, Storage for blobs and GoTrue for admin sign-in.
package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/lehmann314159/recipes/internal/store"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
	// ContentRange is set on 416 responses, which still carry the total.
	ContentRange string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	key     string
	http    *http.Client
}

func NewClient(baseURL, key string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		key:     key,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Select(ctx context.Context, q store.Select) (store.Result, error) {
	params := url.Values{}
	if len(q.Columns) > 0 {
		params.Set("select", strings.Join(q.Columns, ","))
	} else {
		params.Set("select", "*")
	}
	for _, f := range q.Filters {
		params.Add(f.Field, filterValue(f))
	}
	if q.OrderBy != "" {
		params.Set("order", q.OrderBy+".asc")
	}

	header := http.Header{}
	if q.Count {
		header.Set("Prefer", "count=exact")
	}
	if q.Range != nil {
		header.Set("Range-Unit", "items")
		header.Set("Range", fmt.Sprintf("%d-%d", q.Range.Offset, q.Range.Last()))
	}

	resp, err := c.do(ctx, http.MethodGet, "/rest/v1/"+q.Table+"?"+params.Encode(), header, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusRequestedRangeNotSatisfiable {
		return pastLastRow(q, apiErr.ContentRange)
	}
	if err != nil {
		return store.Result{}, err
	}
	defer resp.Body.Close()

	rows, err := decodeRows(resp.Body)
	if err != nil {
		return store.Result{}, fmt.Errorf("select %s: %w", q.Table, err)
	}

	result := store.Result{Rows: rows, Count: -1}
	if q.Count {
		if result.Count, err = parseContentRange(resp.Header.Get("Content-Range")); err != nil {
			return store.Result{}, fmt.Errorf("select %s: %w", q.Table, err)
		}
	}
	return result, nil
}

// pastLastRow answers a range that starts beyond the last row. PostgREST
// rejects it with 416 but still reports the total.
func pastLastRow(q store.Select, contentRange string) (store.Result, error) {
	result := store.Result{Rows: []store.Row{}, Count: -1}
	if q.Count {
		n, err := parseContentRange(contentRange)
		if err != nil {
			return store.Result{}, fmt.Errorf("select %s: %w", q.Table, err)
		}
		result.Count = n
	}
	return result, nil
}

func (c *Client) Insert(ctx context.Context, table string, row store.Row) ([]store.Row, error) {
	body, err := json.Marshal([]store.Row{row})
	if err != nil {
		return nil, err
	}
	header := http.Header{"Prefer": {"return=representation"}}
	resp, err := c.do(ctx, http.MethodPost, "/rest/v1/"+table, header, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeRows(resp.Body)
}

func (c *Client) Update(ctx context.Context, table string, patch store.Row, match store.Filter) ([]store.Row, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	params := url.Values{match.Field: {filterValue(match)}}
	header := http.Header{"Prefer": {"return=representation"}}
	resp, err := c.do(ctx, http.MethodPatch, "/rest/v1/"+table+"?"+params.Encode(), header, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeRows(resp.Body)
}

func (c *Client) Delete(ctx context.Context, table string, match store.Filter) error {
	params := url.Values{match.Field: {filterValue(match)}}
	resp, err := c.do(ctx, http.MethodDelete, "/rest/v1/"+table+"?"+params.Encode(), nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body []byte) (*http.Response, error) {
	return c.doWithToken(ctx, method, path, header, body, c.key)
}

func (c *Client) doWithToken(ctx context.Context, method, path string, header http.Header, body []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeRows(r io.Reader) ([]store.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var rows []store.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, ContentRange: resp.Header.Get("Content-Range")}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var payload struct {
		Code             any    `json:"code"`
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Code != nil {
			apiErr.Code = fmt.Sprint(payload.Code)
		}
		for _, m := range []string{payload.Message, payload.Msg, payload.ErrorDescription, payload.Error} {
			if m != "" {
				apiErr.Message = m
				break
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

// filterValue renders a filter in PostgREST syntax. PostgREST turns every *
// in a like pattern into %, so unescaped % becomes * and a literal * can
// only be sent as the single character wildcard _. Escaped characters pass
// through for Postgres to read with its default backslash escape.
func filterValue(f store.Filter) string {
	v := fmt.Sprint(f.Value)
	if f.Op != store.OpILike {
		return string(f.Op) + "." + v
	}
	var b strings.Builder
	escaped := false
	for _, r := range v {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			b.WriteRune(r)
			escaped = true
		case r == '%':
			b.WriteByte('*')
		case r == '*':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return string(f.Op) + "." + b.String()
}

// parseContentRange reads the total from "0-4/23" or "*/0".
func parseContentRange(h string) (int, error) {
	i := strings.LastIndexByte(h, '/')
	if i < 0 {
		return 0, fmt.Errorf("missing total in content range %q", h)
	}
	total := h[i+1:]
	if total == "*" {
		return 0, fmt.Errorf("server did not report an exact count")
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("bad content range %q: %w", h, err)
	}
	return n, nil
}
