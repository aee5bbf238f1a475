// Package arsip provides the client for the upstream academic-records API
// (Django REST, token auth). All response-shape and error normalization
// happens here so the rest of the gateway sees one consistent surface.
package arsip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/infra/observability"
	"github.com/arsipak/admin-bff-go/internal/infra/resilience"
)

var tracer = otel.Tracer("arsip")

// Client wraps HTTP calls to the academic-records API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewClient creates an upstream client. The retry policy is narrowed so
// only transport failures and 5xx responses are retried; the bulkhead
// bounds concurrent upstream calls during multi-page fetches.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, bh *resilience.Bulkhead, logger *zap.Logger, metrics *observability.Metrics) *Client {
	cfg.Retryable = isTransient
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
		bulkhead:   bh,
		logger:     logger,
		metrics:    metrics,
	}
}

// isTransient reports whether an error is worth another attempt.
func isTransient(err error) bool {
	var up *domain.ErrUpstream
	if errors.As(err, &up) {
		return up.Status == 0 || up.Status >= 500
	}
	var nf *domain.ErrNotFound
	var unauth *domain.ErrUnauthorized
	var forbidden *domain.ErrForbidden
	var fields *domain.ErrFieldErrors
	var validation *domain.ErrValidation
	if errors.As(err, &nf) || errors.As(err, &unauth) || errors.As(err, &forbidden) ||
		errors.As(err, &fields) || errors.As(err, &validation) {
		return false
	}
	return true
}

// do executes one authenticated request and returns the raw response body.
// Non-2xx responses are normalized into the domain error taxonomy.
func (c *Client) do(ctx context.Context, method, path, token string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("arsip: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, &domain.ErrUpstream{Op: method + " " + path, Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ErrUpstream{Op: method + " " + path, Status: resp.StatusCode, Message: "read body: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("arsip: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, normalizeError(method+" "+path, resp.StatusCode, raw)
	}

	c.logger.Debug("arsip: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return raw, nil
}

// execute runs fn behind the circuit breaker with retries. Only reads go
// through here; writes use executeWrite.
func (c *Client) execute(ctx context.Context, endpoint string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
	})
	return c.finish(endpoint, err)
}

// executeWrite runs fn exactly once behind the circuit breaker. A
// timed-out write may have landed upstream, so resending it could
// duplicate the record; the caller gets the error and decides.
func (c *Client) executeWrite(ctx context.Context, endpoint string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fn()
	})
	return c.finish(endpoint, err)
}

func (c *Client) finish(endpoint string, err error) error {
	if err != nil {
		c.metrics.IncrUpstreamError(endpoint)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &domain.ErrCircuitOpen{Service: "arsip/" + endpoint}
		}
	}
	return err
}

// normalizeError maps a non-2xx upstream response onto the domain error
// taxonomy. The backend answers errors as {"detail": "..."}, {"error": "..."}
// or as a per-field map {"field": ["msg", ...]}; field messages are kept
// verbatim so screens can show them next to the offending inputs.
func normalizeError(op string, status int, raw []byte) error {
	detail := extractDetail(raw)

	switch {
	case status == http.StatusUnauthorized:
		if detail == "" {
			detail = "invalid or expired token"
		}
		return &domain.ErrUnauthorized{Message: detail}
	case status == http.StatusForbidden:
		return &domain.ErrForbidden{Permission: detail}
	case status == http.StatusNotFound:
		return &domain.ErrNotFound{Resource: op, ID: ""}
	case status == http.StatusBadRequest:
		if fields := extractFieldErrors(raw); len(fields) > 0 {
			return &domain.ErrFieldErrors{Fields: fields}
		}
		if detail == "" {
			detail = "invalid request"
		}
		return &domain.ErrValidation{Message: detail}
	case status == http.StatusConflict:
		return &domain.ErrConflict{Message: detail}
	}
	if detail == "" {
		detail = strings.TrimSpace(string(raw))
	}
	return &domain.ErrUpstream{Op: op, Status: status, Message: detail}
}

// extractDetail pulls a human message out of the common error envelopes.
func extractDetail(raw []byte) string {
	var envelope struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	switch {
	case envelope.Detail != "":
		return envelope.Detail
	case envelope.Error != "":
		return envelope.Error
	}
	return envelope.Message
}

// extractFieldErrors parses the DRF per-field validation map. Values may be
// a single string or a list of strings.
func extractFieldErrors(raw []byte) map[string][]string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}

	fields := make(map[string][]string)
	for key, val := range m {
		switch key {
		case "detail", "error", "message":
			continue
		}
		var list []string
		if err := json.Unmarshal(val, &list); err == nil {
			fields[key] = list
			continue
		}
		var single string
		if err := json.Unmarshal(val, &single); err == nil {
			fields[key] = []string{single}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// listEnvelope matches the paginated and wrapped list shapes the backend
// uses. Exactly one of the shapes populates it.
type listEnvelope struct {
	Results json.RawMessage `json:"results"`
	Count   *int            `json:"count"`
	Next    *string         `json:"next"`
	Data    *struct {
		Results json.RawMessage `json:"results"`
		Count   *int            `json:"count"`
		Next    *string         `json:"next"`
	} `json:"data"`
}

// decodeList collapses the three upstream list shapes (bare array,
// {results,count,next}, {data:{results}}) into one slice plus total and a
// has-more flag.
func decodeList[T any](raw []byte) (items []T, total int, hasNext bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err = json.Unmarshal(trimmed, &items); err != nil {
			return nil, 0, false, fmt.Errorf("decode list: %w", err)
		}
		return items, len(items), false, nil
	}

	var env listEnvelope
	if err = json.Unmarshal(trimmed, &env); err != nil {
		return nil, 0, false, fmt.Errorf("decode list envelope: %w", err)
	}

	results, count, next := env.Results, env.Count, env.Next
	if results == nil && env.Data != nil {
		results, count, next = env.Data.Results, env.Data.Count, env.Data.Next
	}
	if results == nil {
		return nil, 0, false, errors.New("decode list: no recognizable list shape")
	}

	if err = json.Unmarshal(results, &items); err != nil {
		return nil, 0, false, fmt.Errorf("decode list results: %w", err)
	}
	total = len(items)
	if count != nil {
		total = *count
	}
	hasNext = next != nil && *next != ""
	return items, total, hasNext, nil
}
