package pulseone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/internal/metrics"
	"github.com/pulseone/pulse-admin/internal/metrics/metricsTypes"
	"github.com/pulseone/pulse-admin/internal/version"
	"go.uber.org/zap"
)

const RequestIdHeader = "X-Request-Id"

type ClientConfig struct {
	BaseUrl string
	Token   string
	Timeout time.Duration
	Retries int

	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

type Client struct {
	httpClient *http.Client
	config     *ClientConfig
	metrics    *metrics.MetricsSink
	logger     *zap.Logger
}

func NewClient(cfg *ClientConfig, hc *http.Client, ms *metrics.MetricsSink, l *zap.Logger) *Client {
	if ms == nil {
		ms = metrics.NewNoopMetricsSink()
	}
	cfg.BaseUrl = strings.TrimRight(cfg.BaseUrl, "/")
	return &Client{
		httpClient: hc,
		config:     cfg,
		metrics:    ms,
		logger:     l,
	}
}

type leveledLogger struct {
	l *zap.SugaredLogger
}

func (ll *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	ll.l.Errorw(msg, keysAndValues...)
}

func (ll *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	ll.l.Debugw(msg, keysAndValues...)
}

func (ll *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	ll.l.Debugw(msg, keysAndValues...)
}

func (ll *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	ll.l.Warnw(msg, keysAndValues...)
}

// NewRetryableHttpClient builds an *http.Client that retries connection errors, 429s and 5xx
// responses. After the last attempt the final response is returned as-is so the envelope can
// still be decoded. A nil transport uses the default pooled transport.
func NewRetryableHttpClient(cfg *ClientConfig, transport http.RoundTripper, l *zap.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Retries
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = &leveledLogger{l: l.Sugar()}
	if transport != nil {
		rc.HTTPClient.Transport = transport
	}

	hc := rc.StandardClient()
	hc.Timeout = cfg.Timeout
	return hc
}

func (c *Client) buildUrl(path string, q interface{}) (string, error) {
	u := c.config.BaseUrl + path
	if q == nil {
		return u, nil
	}
	values, err := query.Values(q)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode query parameters")
	}
	if encoded := values.Encode(); encoded != "" {
		u = u + "?" + encoded
	}
	return u, nil
}

func (c *Client) newRequest(ctx context.Context, method string, path string, q interface{}, body interface{}) (*http.Request, error) {
	fullUrl, err := c.buildUrl(path, q)
	if err != nil {
		return nil, err
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request body")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullUrl, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s request for %s", method, path)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("pulse-admin/%s", version.GetVersion()))
	req.Header.Set(RequestIdHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	res, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	methodLabel := metricsTypes.MetricsLabel{Name: "method", Value: req.Method}
	_ = c.metrics.Timing(metricsTypes.Metric_Timing_ApiDuration, elapsed, []metricsTypes.MetricsLabel{methodLabel})

	if err != nil {
		_ = c.metrics.Incr(metricsTypes.Metric_Incr_ApiRequestError, []metricsTypes.MetricsLabel{methodLabel}, 1)
		c.logger.Sugar().Errorw("Failed to perform the PulseOne HTTP request",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.String("requestId", req.Header.Get(RequestIdHeader)),
			zap.Error(err),
		)
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}

	_ = c.metrics.Incr(metricsTypes.Metric_Incr_ApiRequest, []metricsTypes.MetricsLabel{
		methodLabel,
		{Name: "status", Value: strconv.Itoa(res.StatusCode)},
	}, 1)
	c.logger.Sugar().Debugw("PulseOne request complete",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

// call performs a request and decodes the envelope's data into out when out is non-nil.
func (c *Client) call(ctx context.Context, method string, path string, q interface{}, body interface{}, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	res, err := c.do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read response for %s %s", method, path)
	}

	env := &Envelope{}
	decodeErr := json.Unmarshal(bodyBytes, env)

	if res.StatusCode >= http.StatusBadRequest {
		apiErr := &ApiError{StatusCode: res.StatusCode, Method: method, Path: path}
		if decodeErr == nil {
			apiErr.Message = env.errorMessage()
		}
		return apiErr
	}
	if decodeErr != nil {
		c.logger.Sugar().Errorw("Failed to parse the PulseOne response envelope",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(decodeErr),
		)
		return errors.Wrapf(decodeErr, "failed to decode response for %s %s", method, path)
	}
	if !env.Success {
		return &ApiError{StatusCode: res.StatusCode, Method: method, Path: path, Message: env.errorMessage()}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrapf(err, "failed to decode data for %s %s", method, path)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, q interface{}, out interface{}) error {
	return c.call(ctx, http.MethodGet, path, q, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.call(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.call(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.call(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.call(ctx, http.MethodDelete, path, nil, nil, out)
}

// Stream performs a GET and hands back the raw body for non-JSON payloads such as export files.
// The caller must close the returned body. The returned size is -1 when unknown.
func (c *Client) Stream(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "*/*")

	res, err := c.do(req)
	if err != nil {
		return nil, 0, err
	}
	if res.StatusCode >= http.StatusBadRequest {
		defer res.Body.Close()
		apiErr := &ApiError{StatusCode: res.StatusCode, Method: http.MethodGet, Path: path}
		env := &Envelope{}
		if b, err := io.ReadAll(res.Body); err == nil && json.Unmarshal(b, env) == nil {
			apiErr.Message = env.errorMessage()
		}
		return nil, 0, apiErr
	}
	return res.Body, res.ContentLength, nil
}

// GetList fetches one page of a list endpoint.
func GetList[T any](ctx context.Context, c *Client, path string, q interface{}) (*ListResponse[T], error) {
	res := &ListResponse[T]{}
	if err := c.Get(ctx, path, q, res); err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = make([]T, 0)
	}
	return res, nil
}
