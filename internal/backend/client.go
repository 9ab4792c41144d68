// Package backend is the HTTP client for the expense-tracker backend
// API. Upstream failures never surface as Go errors: they are folded
// into an error-shaped core.FetchResult so callers can always render
// something for the user.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"fincoach/internal/core"
)

// Client fetches expense records with a per-user bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	group      singleflight.Group
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchAnnual fetches all expenses recorded in the given year. A year
// of zero or less means the current calendar year.
func (c *Client) FetchAnnual(ctx context.Context, token string, year int) core.FetchResult {
	if year <= 0 {
		year = time.Now().Year()
	}
	url := fmt.Sprintf("%s/api/expenses/annual/%d", c.baseURL, year)
	return c.fetch(ctx, token, url)
}

// FetchMonth fetches the expenses of a single month (0-11).
func (c *Client) FetchMonth(ctx context.Context, token string, year, month int) core.FetchResult {
	url := fmt.Sprintf("%s/api/expenses/%d/%d", c.baseURL, year, month)
	return c.fetch(ctx, token, url)
}

// fetch performs a single attempt against the backend; no retries, no
// backoff. Concurrent identical requests (same token and URL) are
// collapsed into one upstream call. The upstream call runs detached
// from the first caller's cancellation so a cancelled request cannot
// poison the shared result; the HTTP client timeout still bounds it.
func (c *Client) fetch(ctx context.Context, token, url string) core.FetchResult {
	v, _, _ := c.group.Do(token+"|"+url, func() (any, error) {
		return c.doFetch(context.WithoutCancel(ctx), token, url), nil
	})
	return v.(core.FetchResult)
}

func (c *Client) doFetch(ctx context.Context, token, url string) core.FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.ErrorResult("API call failed: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "Expense backend request failed", "url", url, "error", err)
		return core.ErrorResult("API call failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "Expense backend returned non-success status",
			"url", url, "status", resp.StatusCode)
		return core.ErrorResult("Failed to fetch data: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.ErrorResult("API call failed: %v", err)
	}

	return decodeDataset(ctx, body)
}

// decodeDataset parses a backend payload. The backend answers with
// either a month-keyed record collection or an error envelope
// {"error": "..."}; the two shapes are mutually exclusive.
func decodeDataset(ctx context.Context, body []byte) core.FetchResult {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return core.ErrorResult("API call failed: malformed response: %v", err)
	}

	if msg, ok := raw["error"]; ok {
		var errText string
		if err := json.Unmarshal(msg, &errText); err != nil {
			errText = string(msg)
		}
		return core.ErrorResult("%s", errText)
	}

	data := make(core.Dataset, len(raw))
	for key, value := range raw {
		var records []core.ExpenseRecord
		if err := json.Unmarshal(value, &records); err != nil {
			// Non-list values (metadata fields etc.) are ignored, the
			// same way the analyzer only consumes record sequences.
			slog.WarnContext(ctx, "Skipping non-list month entry in expense payload", "key", key)
			continue
		}
		data[key] = records
	}
	return core.DataResult(data)
}
