package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"ar-model-dashboard/config"
)

// maxUpstreamBody caps the size of a catalog page read from the backend
const maxUpstreamBody = 32 << 20

// StrapiClient fetches raw catalog pages from the Strapi backend
// Implements CatalogSourceInterface
type StrapiClient struct {
	endpoint   string
	locale     string
	v4Response bool
	apiToken   string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewStrapiClient creates a new StrapiClient
func NewStrapiClient(cfg config.Catalog) *StrapiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}

	return &StrapiClient{
		endpoint:   cfg.URL,
		locale:     cfg.Locale,
		v4Response: cfg.V4Response,
		apiToken:   cfg.APIToken,
		timeout:    timeout,
		httpClient: &http.Client{},
		limiter:    limiter,
	}
}

// Ensure StrapiClient implements CatalogSourceInterface
var _ CatalogSourceInterface = (*StrapiClient)(nil)

// FetchPage requests one page of published var-products with their children and media
func (c *StrapiClient) FetchPage(ctx context.Context, page, pageSize int) ([]byte, error) {
	if c.endpoint == "" {
		return nil, &UpstreamFetchError{Err: fmt.Errorf("STRAPI_URL is not configured")}
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &UpstreamFetchError{Err: fmt.Errorf("invalid STRAPI_URL: %w", err)}
	}
	u.RawQuery = c.pageQuery(u.Query(), page, pageSize).Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &UpstreamFetchError{Err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &UpstreamFetchError{Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	// Without the v4 header Strapi 5 answers flat records carrying documentId
	if c.v4Response {
		req.Header.Set("Strapi-Response-Format", "v4")
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	log.Printf("📡 Fetching catalog page from Strapi: page=%d pageSize=%d", page, pageSize)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamFetchError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamFetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("strapi API error: %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, &UpstreamFetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	return body, nil
}

func (c *StrapiClient) pageQuery(q url.Values, page, pageSize int) url.Values {
	q.Set("pagination[page]", strconv.Itoa(page))
	q.Set("pagination[pageSize]", strconv.Itoa(pageSize))
	if c.locale != "" {
		q.Set("locale", c.locale)
	}
	// Published records only (draft & publish)
	q.Set("publicationState", "live")
	q.Set("fields[0]", "name")
	q.Set("populate[childrens][fields][0]", "name")
	q.Set("populate[childrens][fields][1]", "slug_item")
	q.Set("populate[childrens][fields][2]", "in_stock")
	q.Set("populate[childrens][populate][hero_image][fields][0]", "url")
	q.Set("populate[childrens][populate][ar_model_ios][fields][0]", "url")
	q.Set("populate[childrens][populate][ar_model_and][fields][0]", "url")
	return q
}
