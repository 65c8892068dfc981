package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("client")

// StatusError is a non-2xx answer from an upstream API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// request describes one upstream call.
type request struct {
	method   string
	url      string
	body     any
	headers  map[string]string
	notFound *domain.ErrNotFound
	decode   func(resp *http.Response) error
}

// base holds what every upstream client shares.
type base struct {
	service    string
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// execute runs req under the circuit breaker with retry and maps the
// failure to a domain error.
func (b *base) execute(ctx context.Context, req request) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, b.cfg, func() error {
			return b.do(ctx, req)
		})
	})
	if err == nil {
		return nil
	}

	var nf *domain.ErrNotFound
	if errors.As(err, &nf) {
		return nf
	}
	if resilience.IsBreakerOpen(err) {
		return &domain.ErrCircuitOpen{Service: b.service}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.ErrTimeout{Operation: b.service + " " + req.method + " " + req.url}
	}
	ext := &domain.ErrExternalService{Service: b.service, Err: err}
	var se *StatusError
	if errors.As(err, &se) {
		ext.StatusCode = se.StatusCode
	}
	return ext
}

func (b *base) do(ctx context.Context, req request) error {
	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return resilience.Permanent(err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return resilience.Permanent(err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && req.notFound != nil:
		return resilience.Permanent(req.notFound)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if req.decode == nil {
			return nil
		}
		return req.decode(resp)
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	se := &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return resilience.Permanent(se)
	}
	return se
}

func decodeInto(v any) func(*http.Response) error {
	return func(resp *http.Response) error {
		return json.NewDecoder(resp.Body).Decode(v)
	}
}
