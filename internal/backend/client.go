package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/metrics"
)

const (
	tracerName        = "github.com/niltonmoura/lexmoura-atendimento-inicial/internal/backend"
	placeholderPrefix = "COLE_AQUI"
)

// Response is the envelope every backend reply carries.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Client talks to the automation web app. Every call is a single attempt:
// no retries and no deadline beyond what the http.Client carries.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{},
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured reports whether endpoint is set to something other than the
// shipped placeholder.
func IsConfigured(endpoint string) bool {
	endpoint = strings.TrimSpace(endpoint)
	return endpoint != "" && !strings.HasPrefix(endpoint, placeholderPrefix)
}

func (c *Client) Configured() bool {
	return IsConfigured(c.endpoint)
}

// Send performs req and returns the normalized envelope. Local and transport
// failures become {success:false, error:<message>}; backend replies pass
// through untouched.
func (c *Client) Send(ctx context.Context, req Request) Response {
	resp, err := c.call(ctx, req)
	if err != nil && KindOf(err) != KindDomain {
		return Response{Success: false, Error: err.Error()}
	}
	return resp
}

// call returns the decoded envelope and, when it is not a success, the
// matching *Error. For domain errors the envelope is returned as well.
func (c *Client) call(ctx context.Context, req Request) (Response, error) {
	action := req.Action()
	if !c.Configured() {
		return Response{}, notConfigured(action)
	}
	if err := req.validate(); err != nil {
		return Response{}, err
	}

	ctx, span := c.tracer.Start(ctx, "backend."+string(action),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("backend.action", string(action))),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.roundTrip(ctx, req)
	if err == nil && !resp.Success {
		err = domainError(action, resp)
	}

	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("backend call failed", "action", action, "kind", outcome, "error", err)
	}
	c.metrics.ObserveBackend(string(action), outcome, time.Since(start).Seconds())

	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, req Request) (Response, error) {
	action := req.Action()

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return Response{}, transportError(action, err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, transportError(action, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, transportError(action, fmt.Errorf("read backend response: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return Response{}, httpStatusError(action, httpResp.StatusCode, string(body))
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Response{}, transportError(action, fmt.Errorf("decode backend response: %w", err))
	}
	return resp, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	payload := req.body()
	if payload == nil {
		u, err := url.Parse(c.endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse backend url: %w", err)
		}
		q := u.Query()
		q.Set("action", string(req.Action()))
		for key, values := range req.query() {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", req.Action(), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}
