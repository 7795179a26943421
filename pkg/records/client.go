package records

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"arcade/pkg/logger"
	"arcade/pkg/metrics"

	"go.uber.org/zap"
)

// Sort describes a server-side sort on a list call.
type Sort struct {
	Field     string
	Direction string // "asc" or "desc"; anything else means desc
}

// ListOptions carries the parameters of a single list call.
type ListOptions struct {
	Filter   string
	Sort     []Sort
	PageSize int
	Offset   string
}

// Page is one page of a collection plus an opaque continuation cursor.
// An empty Offset means the collection is exhausted.
type Page struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// Store is the remote collection query endpoint. Implementations issue one
// bounded-size page request per call.
type Store interface {
	List(ctx context.Context, collection string, opts ListOptions) (Page, error)
}

// HTTPConfig holds the settings for the hosted record store.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	BaseID  string
	Timeout time.Duration
}

// HTTPClient implements Store against the hosted record store's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	baseID  string
	client  *http.Client
	logger  *logger.Logger
}

// NewHTTPClient creates a new HTTPClient instance
func NewHTTPClient(cfg HTTPConfig, l *logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		baseID:  cfg.BaseID,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  l,
	}
}

// List fetches a single page from the named collection.
func (c *HTTPClient) List(ctx context.Context, collection string, opts ListOptions) (Page, error) {
	params := url.Values{}
	if opts.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Offset != "" {
		params.Set("offset", opts.Offset)
	}
	if opts.Filter != "" {
		params.Set("filterByFormula", opts.Filter)
	}
	for i, s := range opts.Sort {
		if s.Field == "" {
			continue
		}
		dir := "desc"
		if s.Direction == "asc" {
			dir = "asc"
		}
		params.Set(fmt.Sprintf("sort[%d][field]", i), s.Field)
		params.Set(fmt.Sprintf("sort[%d][direction]", i), dir)
	}

	u := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.baseID, url.PathEscape(collection), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to build list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.StoreFetchErrorsTotal.WithLabelValues(collection).Inc()
		return Page{}, fmt.Errorf("list %s failed: %w", collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.StoreFetchErrorsTotal.WithLabelValues(collection).Inc()
		return Page{}, fmt.Errorf("list %s returned status %d: %s", collection, resp.StatusCode, string(body))
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		metrics.StoreFetchErrorsTotal.WithLabelValues(collection).Inc()
		return Page{}, fmt.Errorf("failed to decode %s page: %w", collection, err)
	}

	metrics.StorePagesFetchedTotal.WithLabelValues(collection).Inc()
	c.logger.Debug("fetched page",
		zap.String("collection", collection),
		zap.Int("records", len(page.Records)),
		zap.Bool("more", page.Offset != ""))

	return page, nil
}

// EscapeFormula escapes a value for interpolation into a server-side filter
// expression.
func EscapeFormula(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
