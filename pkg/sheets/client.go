// Package sheets reads cell values from the Google Sheets v4 values API.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/towerdash/internal/resilience"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Client fetches a values response from a fully built URL. The URL may point
// at the API directly or at a relay wrapping it.
type Client interface {
	GetValues(ctx context.Context, rawURL string) (*ValuesResponse, error)
}

// ValuesResponse is the body returned by spreadsheets.values.get.
type ValuesResponse struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`

	// StatusCode is the HTTP status of the response that produced the body.
	StatusCode int `json:"-"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return "sheets: unexpected status " + strconv.Itoa(e.StatusCode) + ": " + e.Body
}

// StatusCode extracts the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// ValuesURL builds the values endpoint for one tab. refresh is appended as
// the _t query parameter so relays and browsers cannot serve a stale copy.
func ValuesURL(baseURL, sheetID, tab, apiKey string, refresh time.Time) string {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	q := url.Values{}
	q.Set("key", apiKey)
	q.Set("_t", strconv.FormatInt(refresh.UnixMilli(), 10))
	return baseURL + "/spreadsheets/" + url.PathEscape(sheetID) + "/values/" + url.PathEscape(tab) + "?" + q.Encode()
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithMaxBodyBytes caps the size of a response body.
func WithMaxBodyBytes(n int64) Option {
	return func(c *httpClient) {
		c.maxBody = n
	}
}

type httpClient struct {
	http    *http.Client
	maxBody int64
}

// NewClient creates a values API client. Request deadlines come from the
// caller's context.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		http:    &http.Client{},
		maxBody: 10 << 20,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) GetValues(ctx context.Context, rawURL string) (*ValuesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Expires", "0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, eris.Wrap(err, "sheets: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 256)}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(serr, resp.StatusCode)
		}
		return nil, serr
	}

	var result ValuesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "sheets: unmarshal response")
	}
	result.StatusCode = resp.StatusCode
	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
