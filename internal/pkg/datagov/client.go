// Package datagov is a client for the data.gov.in resource API serving the
// district-wise employment scheme dataset.
package datagov

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"nregastats/internal/logging"
	"nregastats/internal/metrics"
	"nregastats/internal/pkg/retry"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultResourceID is "District-wise MGNREGA Data at a Glance".
	DefaultResourceID = "ee03643a-ee4c-48c2-ac30-9f2ff26ab722"

	defaultBaseURL  = "https://api.data.gov.in"
	defaultTimeout  = 15 * time.Second
	defaultPageSize = 100
	defaultCooldown = time.Minute
	healthTimeout   = 5 * time.Second
	maxBodyBytes    = 32 << 20
	maxErrorBody    = 512
)

type Config struct {
	BaseURL    string
	APIKey     string
	ResourceID string
	Timeout    time.Duration // hard limit for a single attempt
	PageSize   int
	Retry      retry.Policy

	// RateLimit caps attempts per second; 0 means unlimited.
	RateLimit float64
	// BreakerThreshold is the number of consecutive exhausted fetches that
	// opens the circuit for BreakerCooldown. 0 disables the breaker.
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
}

type Client struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*Payload]
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ResourceID == "" {
		cfg.ResourceID = DefaultResourceID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = defaultCooldown
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: limiter,
		breaker: newBreaker(cfg),
	}
}

func newBreaker(cfg Config) *gobreaker.CircuitBreaker[*Payload] {
	if cfg.BreakerThreshold == 0 {
		return nil
	}

	return gobreaker.NewCircuitBreaker[*Payload](gobreaker.Settings{
		Name:        "datagov",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		// only upstream unavailability counts; bad requests and cancellations do not
		IsSuccessful: func(err error) bool {
			var fe *FetchError
			return err == nil || !errors.As(err, &fe) || !fe.Retryable
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				metrics.UpstreamCircuitOpen.Set(1)
			} else {
				metrics.UpstreamCircuitOpen.Set(0)
			}
			logging.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("datagov circuit breaker state changed")
		},
	})
}

// UseDefaultClient switches to http.DefaultClient so tests can swap its transport.
func (c *Client) UseDefaultClient() {
	c.client = http.DefaultClient
}

// Fetch requests one page of the resource, retrying transport failures, 429 and 5xx
// under the configured policy. Terminal failures are returned as *FetchError.
// While the breaker is open the upstream is not contacted and the error wraps ErrCircuitOpen.
func (c *Client) Fetch(ctx context.Context, q Query) (*Payload, error) {
	u, err := c.resourceURL(q)
	if err != nil {
		return nil, &FetchError{Attempts: 0, Err: err}
	}

	if c.breaker == nil {
		return c.fetch(ctx, q, u)
	}

	payload, err := c.breaker.Execute(func() (*Payload, error) {
		return c.fetch(ctx, q, u)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.UpstreamRequests.WithLabelValues("circuit_open").Inc()
		return nil, &FetchError{Attempts: 0, Retryable: true, Err: ErrCircuitOpen}
	}
	return payload, err
}

func (c *Client) fetch(ctx context.Context, q Query, u string) (*Payload, error) {
	policy := c.cfg.Retry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		metrics.UpstreamRetries.Inc()
		logging.Warn().Err(err).Int("attempt", attempt+1).Dur("delay", delay).Msg("datagov request failed, retrying")
	}

	payload, out, err := retry.Do(ctx, policy, IsRetryable, func(ctx context.Context, attempt int) (*Payload, error) {
		logging.Debug().Int("attempt", attempt+1).Interface("filters", q.Filters).Int("offset", q.Offset).Msg("datagov request")
		return c.attempt(ctx, u)
	})
	if err != nil {
		return nil, &FetchError{Attempts: out.Attempts, Retryable: IsRetryable(err), Err: err}
	}

	return payload, nil
}

// FetchStatePeriod returns every record the resource holds for state in period,
// following offset/limit pages until a short page or the reported total.
func (c *Client) FetchStatePeriod(ctx context.Context, state string, p Period) ([]RawRecord, error) {
	filters := map[string]string{"state_name": state}
	if p.Year > 0 {
		filters["fin_year"] = p.FinYear()
	}
	if name := p.MonthName(); name != "" {
		filters["month"] = name
	}

	var records []RawRecord
	offset := 0
	for {
		page, err := c.Fetch(ctx, Query{Filters: filters, Offset: offset, Limit: c.cfg.PageSize})
		if err != nil {
			return nil, err
		}

		records = append(records, page.Records...)

		// the server may cap limit below what was asked for
		limit := c.cfg.PageSize
		if served, ok := fieldInt(page.Limit); ok && served > 0 && served < limit {
			limit = served
		}

		total, hasTotal := fieldInt(page.Total)
		if len(page.Records) == 0 || len(page.Records) < limit || (hasTotal && len(records) >= total) {
			break
		}

		offset += len(page.Records)
		logging.Debug().Int("offset", offset).Int("total", total).Msg("datagov fetching next page")
	}

	logging.Info().Str("state", state).Stringer("period", p).Int("records", len(records)).Msg("datagov records fetched")

	return records, nil
}

// CheckHealth reports whether the API base URL answers with a 2xx.
func (c *Client) CheckHealth(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, http.NoBody)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		logging.Warn().Err(err).Msg("datagov health check failed")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) resourceURL(q Query) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL + "/resource/" + c.cfg.ResourceID)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	v := url.Values{}
	v.Set("api-key", c.cfg.APIKey)
	v.Set("format", "json")
	for k, val := range q.Filters {
		v.Set("filters["+k+"]", val)
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	u.RawQuery = v.Encode()

	return u.String(), nil
}

// attempt performs one request under the hard per-request timeout. Waiting for
// the rate limiter happens before that timeout starts.
func (c *Client) attempt(ctx context.Context, u string) (*Payload, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	started := time.Now()
	defer func() { metrics.UpstreamRequestDuration.Observe(time.Since(started).Seconds()) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("transport_error").Inc()
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("transport_error").Inc()
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ue := &UpstreamError{StatusCode: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
		if ue.Retryable() {
			metrics.UpstreamRequests.WithLabelValues("retryable_status").Inc()
		} else {
			metrics.UpstreamRequests.WithLabelValues("fatal_status").Inc()
		}
		return nil, ue
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.UpstreamRequests.WithLabelValues("decode_error").Inc()
		return nil, &DecodeError{Err: err}
	}

	metrics.UpstreamRequests.WithLabelValues("ok").Inc()
	return &payload, nil
}

func fieldInt(f Field) (int, bool) {
	if !f.Present() {
		return 0, false
	}
	n, err := strconv.Atoi(f.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
