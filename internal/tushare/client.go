package tushare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Tushare Pro HTTP endpoint.
	DefaultBaseURL = "http://api.tushare.pro"

	// DefaultTimeout bounds every provider call.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 3
)

// Client is a Tushare Pro API client.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the per-call deadline.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			return
		}
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// NewClient creates a new Tushare Pro client.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type request struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

// Query calls one Tushare API and returns its rows. An empty result is not an error.
func (c *Client) Query(ctx context.Context, apiName string, params Params, fields ...string) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.classify(ctx, apiName, err)
	}

	body, err := json.Marshal(request{
		APIName: apiName,
		Token:   c.token,
		Params:  params.values(),
		Fields:  joinFields(fields),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.logger != nil {
		c.logger.Debug().
			Str("api_name", apiName).
			Str("trace_id", common.TraceID(ctx)).
			Msg("Tushare API request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, apiName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, apiName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, common.ProviderFailure("行情数据服务请求失败", &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(raw),
			APIName:    apiName,
		})
	}

	rows, err := parseResponse(apiName, raw)
	if err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("api_name", apiName).
			Int("rows", len(rows)).
			Dur("duration", time.Since(start)).
			Msg("Tushare API response")
	}

	return rows, nil
}

// classify maps transport failures onto the provider error kinds.
func (c *Client) classify(ctx context.Context, apiName string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return common.ProviderTimeout("行情数据服务请求超时", fmt.Errorf("%s: %w", apiName, err))
	}
	return common.ProviderFailure("行情数据服务请求失败", fmt.Errorf("%s: %w", apiName, err))
}

// parseResponse reads {"code","msg","data":{"fields","items"}} without binding to a schema.
func parseResponse(apiName string, raw []byte) ([]Row, error) {
	if !gjson.ValidBytes(raw) {
		return nil, common.ProviderFailure("行情数据服务返回格式错误", fmt.Errorf("%s: invalid JSON", apiName))
	}
	doc := gjson.ParseBytes(raw)

	if code := doc.Get("code").Int(); code != 0 {
		return nil, common.ProviderFailure("行情数据服务返回错误", &APIError{
			Code:    code,
			Message: doc.Get("msg").String(),
			APIName: apiName,
		})
	}

	fields := doc.Get("data.fields").Array()
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.String()] = i
	}

	items := doc.Get("data.items").Array()
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, Row{index: index, values: item.Array()})
	}
	return rows, nil
}
