package loyverse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
)

// ErrRateLimited marks a throttled response; the paginator retries the same
// page when it sees this error.
var ErrRateLimited = errors.New("loyverse: rate limited")

// APIError is any other non-success response from Loyverse. It aborts the
// extraction entirely.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("loyverse: API request failed: %d - %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, token string, logger *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// ListItems fetches one page of items
func (c *Client) ListItems(ctx context.Context, limit int, cursor string) (*ItemsResponse, error) {
	var page ItemsResponse
	params := map[string]string{}
	if cursor != "" {
		params["cursor"] = cursor
	}
	if err := c.get(ctx, "/items", limit, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListCategories fetches one page of the categories listing, filtered to the
// given category ids.
func (c *Client) ListCategories(ctx context.Context, ids []string, limit int, cursor string) (*CategoriesResponse, error) {
	var page CategoriesResponse
	params := map[string]string{
		"categories_ids": strings.Join(ids, ","),
	}
	if cursor != "" {
		params["cursor"] = cursor
	}
	if err := c.get(ctx, "/categories", limit, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) get(ctx context.Context, path string, limit int, params map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	q.Set("limit", fmt.Sprintf("%d", limit))
	for k, v := range params {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
