package client

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

	"ar-model-dashboard/models"
	"ar-model-dashboard/utils"
)

// maxQueryIDs is the largest id list sent in the query string; larger lookups use the body form
const maxQueryIDs = 200

// HTTPError is a non-success answer of the dashboard backend
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("dashboard API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("dashboard API error: status %d: %s", e.StatusCode, e.Message)
}

// Permanent reports whether repeating the request cannot succeed
func (e *HTTPError) Permanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// APIClient talks to the dashboard backend endpoints
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new APIClient for the backend at baseURL
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Ensure APIClient serves both the dashboard refresh and the status cache writes
var (
	_ CatalogAPI    = (*APIClient)(nil)
	_ VariantWriter = (*APIClient)(nil)
)

// FetchCatalog returns one normalized catalog page
func (c *APIClient) FetchCatalog(ctx context.Context, page, pageSize int) (models.CatalogPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var catalog models.CatalogPage
	if err := c.do(ctx, http.MethodGet, "/catalog?"+q.Encode(), nil, &catalog); err != nil {
		return models.CatalogPage{}, fmt.Errorf("failed to fetch catalog page %d: %w", page, err)
	}
	return catalog, nil
}

// SyncVariants posts the canonical catalog to the synchronization endpoint
func (c *APIClient) SyncVariants(ctx context.Context, groups []models.CatalogGroup) (models.SyncStats, error) {
	if groups == nil {
		groups = []models.CatalogGroup{}
	}

	var resp models.OKResponse
	if err := c.do(ctx, http.MethodPost, "/variant-sync", models.VariantSyncRequest{Data: groups}, &resp); err != nil {
		return models.SyncStats{}, fmt.Errorf("failed to sync variants: %w", err)
	}
	if resp.Stats == nil {
		return models.SyncStats{}, nil
	}
	return *resp.Stats, nil
}

// FetchVariantState returns the curated state of the ids that have a row
func (c *APIClient) FetchVariantState(ctx context.Context, ids []int64) (map[int64]models.VariantStateView, error) {
	ids = utils.UniqueIDs(ids)
	if len(ids) == 0 {
		return map[int64]models.VariantStateView{}, nil
	}

	var (
		raw map[string]models.VariantStateView
		err error
	)
	if len(ids) <= maxQueryIDs {
		err = c.do(ctx, http.MethodGet, "/variant-state?ids="+utils.JoinIDs(ids), nil, &raw)
	} else {
		err = c.do(ctx, http.MethodPost, "/variant-state", models.VariantStateRequest{VariantIDs: ids}, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch variant state: %w", err)
	}

	out := make(map[int64]models.VariantStateView, len(raw))
	for key, view := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		out[id] = view
	}
	return out, nil
}

// UpdateVariant sends a curated field update
func (c *APIClient) UpdateVariant(ctx context.Context, req models.VariantUpdateRequest) error {
	if err := c.do(ctx, http.MethodPatch, "/variant-update", req, nil); err != nil {
		return fmt.Errorf("failed to update variant: %w", err)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr models.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) != nil {
			apiErr.Error = strings.TrimSpace(string(data))
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
