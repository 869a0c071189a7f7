package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/localshelf/backend/internal/domain"
	"golang.org/x/time/rate"
)

// productResponse is the envelope returned by /api/v0/product/{code}.json.
// status is 0 when the barcode is unknown.
type productResponse struct {
	Status  int                        `json:"status"`
	Product *domain.ExternalProductRaw `json:"product"`
}

// searchResponse is the envelope returned by /cgi/search.pl.
type searchResponse struct {
	Count    int                         `json:"count"`
	Products []domain.ExternalProductRaw `json:"products"`
}

// ClientOptions configures the Open Food Facts client
type ClientOptions struct {
	Timeout   time.Duration
	PageSize  int
	UserAgent string
	CacheTTL  time.Duration
}

// Client handles communication with the Open Food Facts API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	pageSize    int
	userAgent   string
	cache       domain.CacheRepository
	cacheTTL    time.Duration
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Open Food Facts client. The cache is optional; when
// set, search responses are served from it before the network is touched.
func NewClient(baseURL string, cache domain.CacheRepository, opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = 50
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "LocalShelf/1.0"
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	// Open Food Facts is a community-run API; stay well under their
	// documented limit of 10 searches per minute.
	limiter := rate.NewLimiter(rate.Limit(0.15), 3)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		pageSize:    pageSize,
		userAgent:   userAgent,
		cache:       cache,
		cacheTTL:    cacheTTL,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the sleep duration before the given retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return 500 * time.Millisecond << (attempt - 1)
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	if c.debug {
		log.Printf("[OFF] GET %s", reqURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	return resp, nil
}

// GetByCode retrieves a single product by its barcode.
func (c *Client) GetByCode(ctx context.Context, code string) (*domain.ExternalProductRaw, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(code))

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrCatalogUnavailable, resp.StatusCode, string(body))
	}

	var pr productResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if pr.Status == 0 || pr.Product == nil {
		return nil, domain.ErrProductNotFound
	}
	if pr.Product.Code == "" {
		pr.Product.Code = code
	}

	return pr.Product, nil
}

// SearchBroadFood performs the unconstrained food-products sweep used when the
// caller supplied almost no discriminating information.
func (c *Client) SearchBroadFood(ctx context.Context) ([]domain.ExternalProductRaw, error) {
	params := url.Values{}
	params.Add("action", "process")
	params.Add("tagtype_0", "categories")
	params.Add("tag_contains_0", "contains")
	params.Add("tag_0", "foods")

	return c.search(ctx, "off:search:broad", params)
}

// SearchSimilar performs a targeted similarity query built from the criteria's
// category and tags. Only the fields that are actually set become query
// parameters; absent fields are left out entirely.
func (c *Client) SearchSimilar(ctx context.Context, criteria domain.SearchCriteria) ([]domain.ExternalProductRaw, error) {
	params := url.Values{}
	params.Add("action", "process")

	if criteria.Category != "" {
		params.Add("tagtype_0", "categories")
		params.Add("tag_contains_0", "contains")
		params.Add("tag_0", strings.ToLower(criteria.Category))
	}
	if len(criteria.Tags) > 0 {
		params.Add("search_terms", strings.Join(criteria.Tags, " "))
	}

	cacheKey := fmt.Sprintf("off:search:similar:%s:%s",
		strings.ToLower(criteria.Category), strings.ToLower(strings.Join(criteria.Tags, ",")))

	return c.search(ctx, cacheKey, params)
}

// search runs one /cgi/search.pl query, consulting the cache first and
// retrying transient failures with backoff.
func (c *Client) search(ctx context.Context, cacheKey string, params url.Values) ([]domain.ExternalProductRaw, error) {
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey); err == nil {
			if products, ok := cached.([]domain.ExternalProductRaw); ok {
				if c.debug {
					log.Printf("[OFF] cache hit for %s (%d products)", cacheKey, len(products))
				}
				return products, nil
			}
		}
	}

	params.Add("json", "1")
	params.Add("page_size", fmt.Sprintf("%d", c.pageSize))
	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Printf("[OFF] request error (attempt %d): %v", attempt, err)
			lastErr = err
			if attempt < 3 {
				time.Sleep(exponentialBackoff(attempt))
			}
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Printf("[OFF] API error (attempt %d) - status %d", attempt, resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
			if attempt < 3 {
				time.Sleep(exponentialBackoff(attempt))
			}
			continue
		}

		var sr searchResponse
		if err := json.Unmarshal(body, &sr); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		if c.cache != nil {
			if err := c.cache.Set(ctx, cacheKey, sr.Products, c.cacheTTL); err != nil {
				log.Printf("[OFF] failed to cache %s: %v", cacheKey, err)
			}
		}

		if c.debug {
			log.Printf("[OFF] %d products for %s", len(sr.Products), cacheKey)
		}
		return sr.Products, nil
	}

	return nil, lastErr
}
