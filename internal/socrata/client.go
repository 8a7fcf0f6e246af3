// ABOUTME: HTTP client for the Socrata Open Data API
// ABOUTME: Query, catalog search, metadata, and the derived NL/analysis calls
package socrata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/analysis"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/soql"
)

// Defaults applied by NewClient and the operations.
const (
	DefaultTimeout     = 60 * time.Second
	DefaultUserAgent   = "socrata-mcp/0.1.0"
	DefaultQueryLimit  = 1000
	DefaultSearchLimit = 20

	// TokenHeader carries the optional application token.
	TokenHeader = "X-App-Token"
)

// Client issues requests against Socrata domains. It is safe for sequential
// use by one caller at a time and holds a single connection pool.
type Client struct {
	httpClient *http.Client
	scheme     string
	appToken   string
	userAgent  string
	limiter    *rate.Limiter
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAppToken sets the X-App-Token header value. Empty disables the header.
func WithAppToken(token string) Option {
	return func(c *Client) {
		c.appToken = strings.TrimSpace(token)
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithScheme sets the URL scheme, "https" by default.
func WithScheme(scheme string) Option {
	return func(c *Client) {
		c.scheme = scheme
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit caps outbound requests per second. Zero means unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client with default settings.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		scheme:    "https",
		userAgent: DefaultUserAgent,
		logger:    log.New(io.Discard),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// HasToken reports whether requests carry an application token.
func (c *Client) HasToken() bool {
	return c.appToken != ""
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Query runs a SoQL query against a dataset. The query is cleaned and, unless
// it already limits itself, limited to limit rows.
func (c *Client) Query(ctx context.Context, domain, datasetID, query string, limit int, format string) (*QueryResult, error) {
	const op = "query dataset"

	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if format == "" {
		format = FormatJSON
	}
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	host, err := normalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(datasetID) == "" {
		return nil, errors.New("dataset id is required")
	}

	query = soql.WithLimit(soql.Clean(query, datasetID), limit)

	start := time.Now()
	endpoint := c.url(host, "resource", url.PathEscape(datasetID)+"."+format)
	c.logger.Info("executing query", "domain", host, "dataset", datasetID, "query", query)

	body, err := c.get(ctx, op, endpoint, url.Values{"$query": {query}})
	if err != nil {
		return nil, err
	}

	result := &QueryResult{
		Query:           query,
		Format:          format,
		ExecutionTimeMS: float64(time.Since(start).Microseconds()) / 1000,
	}

	if format != FormatJSON {
		result.Raw = string(body)
		return result, nil
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	result.Data = rows
	result.TotalRows = len(rows)
	return result, nil
}

// SearchDatasets searches the catalog of domain. Only hits whose permalink
// contains domain are returned, at most limit of them.
func (c *Client) SearchDatasets(ctx context.Context, domain, query string, limit int) ([]DatasetSummary, error) {
	const op = "search datasets"

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	host, err := normalizeDomain(domain)
	if err != nil {
		return nil, err
	}

	c.logger.Info("searching datasets", "domain", host, "query", query, "limit", limit)

	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
		"only":  {"datasets"},
	}
	body, err := c.get(ctx, op, c.url(host, "api", "catalog", "v1"), params)
	if err != nil {
		return nil, err
	}

	var catalog catalogResponse
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	all := make([]DatasetSummary, 0, len(catalog.Results))
	for _, hit := range catalog.Results {
		all = append(all, shapeSummary(hit))
	}

	datasets := filterDomain(all, host)
	c.logger.Info("search filtered", "domain", host, "total", len(all), "kept", len(datasets))
	if len(datasets) == 0 && len(all) > 0 {
		c.logger.Warn("no datasets on requested domain; dropping results from other domains",
			"domain", host, "query", query, "dropped", len(all))
	}

	if len(datasets) > limit {
		datasets = datasets[:limit]
	}
	return datasets, nil
}

// GetDatasetInfo fetches the metadata of a dataset.
func (c *Client) GetDatasetInfo(ctx context.Context, domain, datasetID string) (*DatasetInfo, error) {
	const op = "get dataset info"

	host, err := normalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(datasetID) == "" {
		return nil, errors.New("dataset id is required")
	}

	c.logger.Info("fetching dataset info", "domain", host, "dataset", datasetID)

	body, err := c.get(ctx, op, c.url(host, "api", "views", url.PathEscape(datasetID)+".json"), nil)
	if err != nil {
		return nil, err
	}

	var meta viewMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return shapeInfo(meta), nil
}

// NaturalLanguageQuery translates question into SoQL using the dataset's
// columns and, when execute is set, runs it.
func (c *Client) NaturalLanguageQuery(ctx context.Context, domain, datasetID, question string, execute bool) (*NLQueryResult, error) {
	info, err := c.GetDatasetInfo(ctx, domain, datasetID)
	if err != nil {
		return nil, err
	}

	cols := make([]soql.Column, len(info.Columns))
	names := make([]string, len(info.Columns))
	for i, col := range info.Columns {
		cols[i] = soql.Column{Name: col.Name, DataType: col.DataType}
		names[i] = col.Name
	}

	result := &NLQueryResult{
		Question:       question,
		GeneratedQuery: soql.Translate(cols, question),
		DatasetColumns: names,
	}
	c.logger.Debug("generated query", "question", question, "query", result.GeneratedQuery)

	if execute {
		qr, err := c.Query(ctx, domain, datasetID, result.GeneratedQuery, DefaultQueryLimit, FormatJSON)
		if err != nil {
			return nil, err
		}
		result.Results = qr
	}
	return result, nil
}

// AnalyzeData runs query and computes descriptive statistics over the rows.
func (c *Client) AnalyzeData(ctx context.Context, domain, datasetID, query string, kind analysis.Kind) (*analysis.Report, error) {
	if _, err := analysis.ParseKind(string(kind)); err != nil {
		return nil, err
	}

	qr, err := c.Query(ctx, domain, datasetID, query, DefaultQueryLimit, FormatJSON)
	if err != nil {
		return nil, err
	}

	report, err := analysis.Analyze(qr.Data, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze data: %w", err)
	}
	return report, nil
}

func (c *Client) url(host string, segments ...string) string {
	return c.scheme + "://" + host + "/" + strings.Join(segments, "/")
}

// get performs one GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, op, endpoint string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			// Wait refuses up front when the next token lands past the deadline.
			if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
				return nil, &TimeoutError{Op: op, Err: err}
			}
			return nil, classify(ctx, op, err)
		}
	}

	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: build request: %w", op, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.appToken != "" {
		req.Header.Set(TokenHeader, c.appToken)
	}

	c.logger.Debug("GET", "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed", "op", op, "error", err)
		return nil, classify(ctx, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
		c.logger.Error("request rejected", "op", op, "status", resp.StatusCode)
		return nil, reqErr
	}

	return body, nil
}

// normalizeDomain accepts a bare host or a portal URL and returns the host.
func normalizeDomain(domain string) (string, error) {
	d := strings.TrimSpace(domain)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimRight(d, "/")
	if d == "" || strings.ContainsAny(d, "/?# ") {
		return "", fmt.Errorf("invalid domain %q", domain)
	}
	return d, nil
}

func checkFormat(format string) error {
	for _, f := range Formats() {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q: want one of %s", format, strings.Join(Formats(), ", "))
}
