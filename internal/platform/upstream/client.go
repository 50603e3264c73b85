// Package upstream is the shared HTTP client behind every service adapter.
// It owns status-to-kind mapping, response envelope unwrapping, the
// per-service circuit breaker, tracing and upstream metrics.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"onecore/internal/platform/metrics"
	"onecore/internal/platform/tracer"
	"onecore/pkg/platform/circuit"
	"onecore/pkg/requestcontext"
)

const maxResponseBytes = 16 << 20

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	Service    string
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	Breaker    *circuit.Breaker
	Tracer     tracer.Tracer
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Client talks to one upstream service.
type Client struct {
	service string
	baseURL string
	apiKey  string
	timeout time.Duration
	http    HTTPDoer
	breaker *circuit.Breaker
	tracer  tracer.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Breaker == nil {
		cfg.Breaker = circuit.New(cfg.Service)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = tracer.NewNoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		service: cfg.Service,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
		breaker: cfg.Breaker,
		tracer:  cfg.Tracer,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

func (c *Client) Service() string {
	return c.service
}

// Request describes one upstream call. Path must already be escaped; use
// PathJoin for user supplied segments.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        io.Reader
	ContentType string
}

// Response is a successful (2xx) upstream reply.
type Response struct {
	Status int
	Body   []byte
}

// Content returns the payload, unwrapping a {"content": ...} envelope when
// the upstream uses one.
func (r *Response) Content() gjson.Result {
	if !gjson.ValidBytes(r.Body) {
		return gjson.Result{}
	}
	if content := gjson.GetBytes(r.Body, "content"); content.Exists() {
		return content
	}
	return gjson.ParseBytes(r.Body)
}

// TotalRecords reads _meta.totalRecords from a paginated upstream reply.
func (r *Response) TotalRecords() (int, bool) {
	total := gjson.GetBytes(r.Body, "_meta.totalRecords")
	if !total.Exists() {
		return 0, false
	}
	return int(total.Int()), true
}

// Decode unmarshals the unwrapped content into out.
func (r *Response) Decode(out any) error {
	content := r.Content()
	if !content.Exists() {
		return errors.New("empty or invalid JSON body")
	}
	return json.Unmarshal([]byte(content.Raw), out)
}

// PathJoin escapes each segment and joins them under a leading slash.
func PathJoin(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// Do performs req and classifies the outcome. Non-2xx replies and transport
// failures come back as *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanUpstreamCall,
		tracer.String(tracer.AttrService, c.service),
		tracer.String(tracer.AttrMethod, req.Method),
		tracer.String(tracer.AttrPath, req.Path),
	)
	start := time.Now()

	resp, err := c.do(ctx, req)

	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		span.SetAttributes(tracer.String(tracer.AttrErrorKind, outcome))
	}
	if resp != nil {
		span.SetAttributes(tracer.Int(tracer.AttrStatus, resp.Status))
	}
	c.metrics.ObserveUpstream(c.service, outcome, time.Since(start).Seconds())
	span.End(err)
	return resp, err
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, req.Body)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Service: c.service, Message: "build request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}
	if id := requestcontext.RequestID(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}

	if !c.breaker.Allow() {
		return nil, &Error{Kind: KindUnknown, Service: c.service, Message: "circuit open"}
	}
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.recordFailure(ctx)
		msg := "request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "request timeout"
		}
		return nil, &Error{Kind: KindUnknown, Service: c.service, Message: msg, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		c.recordFailure(ctx)
		return nil, &Error{Kind: KindUnknown, Service: c.service, Status: httpResp.StatusCode, Message: "read response", Err: err}
	}

	if httpResp.StatusCode >= 500 {
		c.recordFailure(ctx)
	} else {
		c.recordSuccess(ctx)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &Error{
			Kind:    KindFromStatus(httpResp.StatusCode),
			Service: c.service,
			Status:  httpResp.StatusCode,
			Message: errorMessage(body),
		}
	}
	return &Response{Status: httpResp.StatusCode, Body: body}, nil
}

// errorMessage pulls a human readable reason out of an upstream error body.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"error_description", "message", "error.message", "error", "reason"} {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

func (c *Client) recordFailure(ctx context.Context) {
	if c.breaker.Failure() {
		c.metrics.SetCircuitOpen(c.service, true)
		c.logger.WarnContext(ctx, "upstream circuit opened",
			"service", c.service,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if c.breaker.Success() {
		c.metrics.SetCircuitOpen(c.service, false)
		c.logger.InfoContext(ctx, "upstream circuit closed", "service", c.service)
	}
}

// GetJSON fetches path and decodes the unwrapped content into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

// GetPage is GetJSON for paginated listings; it also returns the upstream's
// total record count, falling back to len(content) when absent.
func (c *Client) GetPage(ctx context.Context, path string, query url.Values, out any) (int, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return 0, err
	}
	if err := c.decode(resp, out); err != nil {
		return 0, err
	}
	if total, ok := resp.TotalRecords(); ok {
		return total, nil
	}
	content := resp.Content()
	if content.IsArray() {
		return len(content.Array()), nil
	}
	return 0, nil
}

// SendJSON encodes in as the request body. out may be nil when the reply is
// not needed.
func (c *Client) SendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindBadRequest, Service: c.service, Message: "encode request", Err: err}
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	resp, err := c.Do(ctx, Request{Method: method, Path: path, Body: body, ContentType: contentType})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return c.decode(resp, out)
}

func (c *Client) decode(resp *Response, out any) error {
	if err := resp.Decode(out); err != nil {
		return &Error{Kind: KindUnknown, Service: c.service, Status: resp.Status, Message: "decode response", Err: err}
	}
	return nil
}

// Health calls the upstream's GET /health. It bypasses the breaker so
// readiness reflects the service and not our view of it.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", c.service, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s unhealthy: status %d", c.service, resp.StatusCode)
	}
	return nil
}

// PageQuery builds the page/limit query forwarded to paginated upstreams.
func PageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
