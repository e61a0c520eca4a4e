package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/angelmondragon/farmstore/pkg/config"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
	"github.com/angelmondragon/farmstore/pkg/logger"
	"github.com/angelmondragon/farmstore/pkg/metrics"
	"github.com/angelmondragon/farmstore/pkg/types"
)

const (
	requestIDHeader = "X-Request-Id"
	breakerName     = "storefront-backend"
	defaultTimeout  = 15 * time.Second
)

var errServerStatus = errors.New("backend returned a server error")

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client talks to the storefront REST backend. Every call is bounded by
// the configured timeout and runs through a circuit breaker; nothing is
// retried automatically.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	tokens  TokenSource
	metrics *metrics.BackendMetrics
	logg    *logger.Logger
	timeout time.Duration

	httpClient *http.Client
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTokenSource attaches a bearer token source.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithMetrics records request metrics.
func WithMetrics(m *metrics.BackendMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for breaker transitions and failures.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// NewClient builds the backend client from the API configuration.
func NewClient(cfg config.APIConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "backend base url is required")
	}

	c := &Client{
		timeout: cfg.Timeout,
		logg:    logger.Nop(),
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.httpClient != nil {
		c.http = resty.NewWithClient(c.httpClient)
	} else {
		c.http = resty.New()
	}
	c.http.
		SetBaseURL(baseURL).
		SetTimeout(c.timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	c.breaker = gobreaker.NewCircuitBreaker(breakerSettings(cfg, c.logg, c.metrics))
	c.metrics.SetBreakerState(breakerName, 0)

	return c, nil
}

// Ping reports whether the breaker lets requests through. It makes no
// network call.
func (c *Client) Ping(context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend circuit open")
	}
	return nil
}

func breakerSettings(cfg config.APIConfig, logg *logger.Logger, m *metrics.BackendMetrics) gobreaker.Settings {
	minRequests := cfg.BreakerMinRequests
	if minRequests == 0 {
		minRequests = 5
	}
	return gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.SetBreakerState(name, breakerStateValue(to))
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "backend.breaker.state_changed")
		},
	}
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	}
	return 0
}

type request struct {
	endpoint string
	method   string
	path     string
	body     any
}

func (r request) describe() string {
	return fmt.Sprintf("%s %s", r.method, r.path)
}

// send executes the request and returns the decoded envelope with the
// HTTP status. Transport problems come back as typed errors; backend
// refusals come back as an envelope with Success=false.
func (c *Client) send(ctx context.Context, req request) (types.BackendEnvelope, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	r := c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, uuid.NewString())
	if c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return types.BackendEnvelope{}, 0, err
		}
		if token != "" {
			r.SetAuthToken(token)
		}
	}
	if req.body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.body)
	}

	start := time.Now()
	raw, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := r.Execute(req.method, req.path)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})

	resp, _ := raw.(*resty.Response)
	if err != nil && (resp == nil || !errors.Is(err, errServerStatus)) {
		typed := transportError(req, err)
		c.metrics.ObserveRequest(req.endpoint, string(typed.Code()), time.Since(start))
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{
			"endpoint": req.endpoint,
			"error":    err.Error(),
		}), "backend.request.failed")
		return types.BackendEnvelope{}, 0, typed
	}

	status := resp.StatusCode()
	env, typed := decodeEnvelope(req, status, resp.Body())
	outcome := "ok"
	switch {
	case typed != nil:
		outcome = string(typed.Code())
	case !env.Success:
		outcome = "rejected"
	}
	c.metrics.ObserveRequest(req.endpoint, outcome, time.Since(start))
	if typed != nil {
		return types.BackendEnvelope{}, status, typed
	}
	return env, status, nil
}

func decodeEnvelope(req request, status int, body []byte) (types.BackendEnvelope, *pkgerrors.Error) {
	var env types.BackendEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
			return types.BackendEnvelope{Success: false}, nil
		}
		return env, pkgerrors.Wrap(pkgerrors.CodeDependency, err, req.describe()+" returned an unreadable response").
			WithDetails(pkgerrors.BackendDetails{Status: status, Path: req.path})
	}
	if status >= http.StatusBadRequest {
		env.Success = false
	}
	return env, nil
}

func transportError(req request, err error) *pkgerrors.Error {
	details := pkgerrors.BackendDetails{Path: req.path}
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend temporarily unavailable").WithDetails(details)
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, req.describe()+" timed out").WithDetails(details)
	case errors.Is(err, context.Canceled):
		return pkgerrors.Wrap(pkgerrors.CodeCanceled, err, req.describe()+" canceled").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, req.describe()+" failed").WithDetails(details)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// call sends req and unwraps the envelope into T.
func call[T any](ctx context.Context, c *Client, req request) (T, error) {
	result, err := fetch[T](ctx, c, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return result.Unwrap()
}

// fetch sends req and returns the tagged result for callers that want to
// branch on Ok/Err themselves.
func fetch[T any](ctx context.Context, c *Client, req request) (Result[T], error) {
	if c == nil {
		return Result[T]{}, pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}
	env, status, err := c.send(ctx, req)
	if err != nil {
		return Result[T]{}, err
	}
	return ResultFrom[T](env, status)
}
