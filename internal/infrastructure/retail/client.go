package retail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/ingredientlens/backend/internal/domain"
	"github.com/ingredientlens/backend/pkg/logger"
)

const (
	searchPath = "/api/v2/catalog/search/"

	// maxBodySize caps how much of an upstream response is read
	maxBodySize = 10 << 20

	// pageStateSelector locates the embedded page JSON on a detail page
	pageStateSelector = `script#linkStore[type="text/json"]`
	pageStateComp     = "PageJSON"
)

// ClientConfig configures a retail Client
type ClientConfig struct {
	BaseURL     string
	MinInterval time.Duration
	Timeout     time.Duration
	UserAgent   string
	Logger      zerolog.Logger
}

// Client retrieves products from the retail site's catalog search API and
// product detail pages.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	spacer     *RequestSpacer
	breaker    *gobreaker.CircuitBreaker
	log        zerolog.Logger
}

// statusError is a non-2xx upstream response
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// NewClient creates a new retail client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	log := logger.Component(cfg.Logger, "retail")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "retail-upstream",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		spacer:     NewRequestSpacer(cfg.MinInterval),
		breaker:    breaker,
		log:        log,
	}
}

// SearchProducts runs a keyword search and returns the best match.
// The first hit's detail page is fetched; when that fails the hit's own
// shallow fields are used and the result's Tier is TierShallow.
func (c *Client) SearchProducts(ctx context.Context, query string, page, pageSize int) (*domain.FetchResult, error) {
	c.log.Info().Str("query", query).Int("page", page).Int("pageSize", pageSize).Msg("searching catalog")

	params := url.Values{}
	params.Set("type", "keyword")
	params.Set("q", query)
	params.Set("includeEDD", "true")
	params.Set("content", "true")
	params.Set("includeRegionsMap", "true")
	params.Set("page", strconv.Itoa(pageSize))
	params.Set("currentPage", strconv.Itoa(page))
	params.Set("loc", "en-US")
	params.Set("ch", "rwd")
	params.Set("countryCode", "US")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, searchPath, params.Encode())

	body, err := c.get(ctx, reqURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		c.log.Error().Err(err).Str("query", query).Msg("catalog search failed")
		return nil, classifyError(err, domain.CodeSearchError, "Failed to search products")
	}

	var searchResp domain.CatalogSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, domain.NewFetchError(domain.CodeSearchError, http.StatusInternalServerError,
			"failed to decode search response", err)
	}

	if searchResp.Products == nil {
		return nil, domain.NewFetchError(domain.CodeNoProductsFound, http.StatusNotFound,
			"No products found in search results", nil)
	}
	if len(*searchResp.Products) == 0 {
		c.log.Info().Str("query", query).Msg("no products found")
		return nil, domain.NewFetchError(domain.CodeNoProductsFound, http.StatusNotFound,
			"No products found for the given search query", nil)
	}

	first := (*searchResp.Products)[0]

	detailed, detailErr := c.fetchFirstHitDetails(ctx, &first)
	if detailErr == nil {
		return &domain.FetchResult{
			Products: []domain.Product{*detailed},
			Tier:     domain.TierDetailed,
		}, nil
	}

	c.log.Warn().Err(detailErr).Str("productId", first.ID).Msg("detail fetch failed, using search result")

	if first.ID == "" || first.Name == "" {
		return nil, domain.NewFetchError(domain.CodeInvalidProductData, http.StatusInternalServerError,
			"Invalid product data in search results", detailErr)
	}

	shallow := MapSearchHitToProduct(&first)
	if first.TargetURL != "" {
		shallow.URL = c.resolveURL(first.TargetURL)
	}

	return &domain.FetchResult{
		Products:  []domain.Product{shallow},
		Tier:      domain.TierShallow,
		DetailErr: detailErr,
	}, nil
}

func (c *Client) fetchFirstHitDetails(ctx context.Context, hit *domain.CatalogProduct) (*domain.Product, error) {
	if hit.TargetURL == "" {
		return nil, domain.NewFetchError(domain.CodeProductDataNotFound, http.StatusNotFound,
			"search result has no product URL", nil)
	}
	return c.GetProductDetails(ctx, c.resolveURL(hit.TargetURL))
}

// GetProductDetails fetches a product detail page and builds a Product from
// its embedded page state.
func (c *Client) GetProductDetails(ctx context.Context, productURL string) (*domain.Product, error) {
	headers := map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
	}

	body, err := c.get(ctx, productURL, headers)
	if err != nil {
		return nil, classifyError(err, domain.CodeProductDetailsError, "Failed to get product details")
	}

	sku, err := extractCurrentSku(body)
	if err != nil {
		return nil, err
	}

	product := MapSkuToProduct(sku, productURL)
	c.log.Debug().Str("skuId", product.ID).Int("ingredients", len(product.Ingredients)).Msg("parsed product details")

	return &product, nil
}

// extractCurrentSku locates the page state script and decodes page.product.currentSku
func extractCurrentSku(body []byte) (*domain.CurrentSku, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewFetchError(domain.CodeProductDetailsError, http.StatusInternalServerError,
			"failed to parse product page", err)
	}

	script := doc.Find(pageStateSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.AttrOr("data-comp", "")) == pageStateComp
	}).First()

	raw := strings.TrimSpace(script.Text())
	if script.Length() == 0 || raw == "" {
		return nil, domain.NewFetchError(domain.CodeProductDataNotFound, http.StatusNotFound,
			"Product data not found in page", nil)
	}

	var state domain.PageState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, domain.NewFetchError(domain.CodeInvalidProductData, http.StatusInternalServerError,
			"Invalid product data format", err)
	}

	if state.Page == nil || state.Page.Product == nil || state.Page.Product.CurrentSku == nil {
		return nil, domain.NewFetchError(domain.CodeProductDataNotFound, http.StatusNotFound,
			"Product data not found in parsed JSON", nil)
	}

	sku := state.Page.Product.CurrentSku
	if sku.SkuID == "" || sku.ProductName == "" {
		return nil, domain.NewFetchError(domain.CodeInvalidProductData, http.StatusInternalServerError,
			"Invalid product data structure", nil)
	}

	return sku, nil
}

// get waits for the request spacer, then performs a GET through the circuit breaker.
// Non-2xx responses come back as *statusError.
func (c *Client) get(ctx context.Context, reqURL string, headers map[string]string) ([]byte, error) {
	if err := c.spacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		body, status, err := c.doRequest(ctx, reqURL, headers)
		if err != nil {
			return nil, err
		}
		if status >= http.StatusInternalServerError {
			return nil, &statusError{StatusCode: status, Body: string(body)}
		}
		if status != http.StatusOK {
			// client-side statuses do not count against the breaker
			return &statusError{StatusCode: status, Body: string(body)}, nil
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	if se, ok := result.(*statusError); ok {
		c.log.Warn().Int("status", se.StatusCode).Str("url", reqURL).Msg("upstream returned non-OK status")
		return nil, se
	}

	return result.([]byte), nil
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodySize)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func (c *Client) resolveURL(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return c.baseURL + target
}

// classifyError maps transport and status failures onto the fetch error taxonomy.
// Anything unrecognized becomes fallbackCode with a 500 status.
func classifyError(err error, fallbackCode, fallbackMsg string) error {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr
	}

	var se *statusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusNotFound:
			return domain.NewFetchError(domain.CodeProductNotFound, http.StatusNotFound, "Product not found", err)
		case http.StatusTooManyRequests:
			return domain.NewFetchError(domain.CodeRateLimitExceeded, http.StatusTooManyRequests,
				"Too many requests. Please try again later", err)
		}
	}

	if isConnectionError(err) {
		return domain.NewFetchError(domain.CodeConnectionError, http.StatusServiceUnavailable,
			"Failed to connect to the retail site. Please try again later", err)
	}

	return domain.NewFetchError(fallbackCode, http.StatusInternalServerError, fallbackMsg, err)
}

func isConnectionError(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
