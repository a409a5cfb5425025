package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	coreconfig "github.com/Growstale/RequestHandlerWebServer/core/config"
	"github.com/Growstale/RequestHandlerWebServer/core/logger"
	"log/slog"
)

const (
	apiKeyHeader = "X-API-KEY"
	maxBodyBytes = 1 << 20
)

// Client is the HTTP gateway to the request-handling backend.
// Every call is authenticated with the shared API key and bounded
// by the configured timeout.
type Client struct {
	baseURL      string
	apiKey       string
	listPageSize int
	http         *http.Client
}

// NewClient builds a Client from backend configuration.
func NewClient(cfg coreconfig.BackendConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pageSize := cfg.ListPageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		listPageSize: pageSize,
		http:         &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		logger.LogEvent(ctx, logger.API, slog.LevelWarn, "api.request", attrs...)
		return nil, err
	}
	attrs = append(attrs,
		slog.String("status", "ok"),
		slog.Int("http_code", resp.StatusCode),
	)
	logger.LogEvent(ctx, logger.API, slog.LevelDebug, "api.request", attrs...)
	return resp, nil
}

// getJSON performs a GET and decodes a 2xx JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend: %s returned %s", path, resp.Status)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s: %w", path, err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
}

// UserByTelegramID resolves the backend account linked to a Telegram user.
// Unknown users and backend failures both yield a nil user.
func (c *Client) UserByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	var u User
	if err := c.getJSON(ctx, fmt.Sprintf("/api/bot/user/telegram/%d", telegramID), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChatByTelegramID resolves the shop/contractor association of a group chat.
func (c *Client) ChatByTelegramID(ctx context.Context, chatID int64) (*ChatAssociation, error) {
	var a ChatAssociation
	if err := c.getJSON(ctx, fmt.Sprintf("/api/bot/chat/%d", chatID), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

type shopItem struct {
	ShopID   int64  `json:"shopID"`
	ShopName string `json:"shopName"`
}

type contractorItem struct {
	UserID int64  `json:"userID"`
	Login  string `json:"login"`
}

type workCategoryItem struct {
	WorkCategoryID   int64  `json:"workCategoryID"`
	WorkCategoryName string `json:"workCategoryName"`
}

type urgencyItem struct {
	UrgencyID   int64  `json:"urgencyID"`
	UrgencyName string `json:"urgencyName"`
}

// Shops lists all shops as selectable options.
func (c *Client) Shops(ctx context.Context) ([]Option, error) {
	var page struct {
		Content []shopItem `json:"content"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/shops?size=%d", c.listPageSize), &page); err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(page.Content))
	for _, it := range page.Content {
		opts = append(opts, Option{ID: it.ShopID, Label: it.ShopName})
	}
	return opts, nil
}

// Contractors lists contractor accounts as selectable options.
func (c *Client) Contractors(ctx context.Context) ([]Option, error) {
	var items []contractorItem
	if err := c.getJSON(ctx, "/api/user/contractors", &items); err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(items))
	for _, it := range items {
		opts = append(opts, Option{ID: it.UserID, Label: it.Login})
	}
	return opts, nil
}

// WorkCategories lists work categories as selectable options.
func (c *Client) WorkCategories(ctx context.Context) ([]Option, error) {
	var page struct {
		Content []workCategoryItem `json:"content"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/work-categories?size=%d", c.listPageSize), &page); err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(page.Content))
	for _, it := range page.Content {
		opts = append(opts, Option{ID: it.WorkCategoryID, Label: it.WorkCategoryName})
	}
	return opts, nil
}

// UrgencyCategories lists urgency levels as selectable options.
func (c *Client) UrgencyCategories(ctx context.Context) ([]Option, error) {
	var items []urgencyItem
	if err := c.getJSON(ctx, "/api/urgency-categories", &items); err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(items))
	for _, it := range items {
		opts = append(opts, Option{ID: it.UrgencyID, Label: it.UrgencyName})
	}
	return opts, nil
}

// CreateRequest submits a new service request and returns its identifier.
func (c *Client) CreateRequest(ctx context.Context, in CreateRequestInput) (*CreateResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/bot/requests", in)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("backend: create request returned %s", resp.Status)
	}
	var out CreateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("backend: decode create response: %w", err)
	}
	if out.RequestID == 0 {
		return nil, fmt.Errorf("backend: create response missing request id")
	}
	return &out, nil
}

// Health probes backend availability and classifies the outcome.
// Transport errors are reported as HealthUnreachable, not returned.
func (c *Client) Health(ctx context.Context) HealthResult {
	resp, err := c.do(ctx, http.MethodGet, "/api/bot/health", nil)
	if err != nil {
		return HealthResult{Status: HealthUnreachable, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	excerpt := logger.SanitizeLimit(string(body), 512)

	switch {
	case resp.StatusCode == http.StatusOK:
		return HealthResult{Status: HealthOK, Code: resp.StatusCode, Body: excerpt}
	case resp.StatusCode == http.StatusUnauthorized:
		return HealthResult{Status: HealthUnauthorized, Code: resp.StatusCode, Body: excerpt}
	case resp.StatusCode == http.StatusForbidden:
		return HealthResult{Status: HealthForbidden, Code: resp.StatusCode, Body: excerpt}
	default:
		return HealthResult{Status: HealthStatusError, Code: resp.StatusCode, Body: excerpt}
	}
}
