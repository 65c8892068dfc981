package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// AmendmentClient submits amendments to the Amendments API.
type AmendmentClient struct {
	base
}

// NewAmendmentClient creates a new AmendmentClient.
func NewAmendmentClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *AmendmentClient {
	return &AmendmentClient{base: base{
		service:    "amendments",
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}}
}

// pendingResponse is the 202 body: the amendment is parked until the legal
// limit breach is confirmed.
type pendingResponse struct {
	PendingID string                  `json:"pendingId"`
	Alert     *domain.LegalLimitAlert `json:"legalLimitAlert"`
}

type confirmRequest struct {
	Justification string `json:"justification"`
}

// Submit creates an amendment. Retries reuse the idempotency key, so a
// request the API already processed is not applied twice.
func (c *AmendmentClient) Submit(ctx context.Context, req *domain.SubmissionRequest) (*domain.SubmissionResult, error) {
	ctx, span := tracer.Start(ctx, "AmendmentClient.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("contract.id", req.Draft.ContractID),
		attribute.String("idempotency.key", req.IdempotencyKey),
	)

	var result domain.SubmissionResult
	err := c.execute(ctx, request{
		method:  http.MethodPost,
		url:     fmt.Sprintf("%s/v1/contracts/%s/amendments", c.baseURL, url.PathEscape(req.Draft.ContractID)),
		body:    req,
		headers: map[string]string{"Idempotency-Key": req.IdempotencyKey},
		decode: func(resp *http.Response) error {
			result = domain.SubmissionResult{}
			if resp.StatusCode == http.StatusAccepted {
				var pending pendingResponse
				if err := json.NewDecoder(resp.Body).Decode(&pending); err != nil {
					return err
				}
				alert := pending.Alert
				if alert == nil {
					alert = &domain.LegalLimitAlert{}
				}
				alert.PendingID = pending.PendingID
				result.Alert = alert
				return nil
			}
			var amendment domain.SubmittedAmendment
			if err := json.NewDecoder(resp.Body).Decode(&amendment); err != nil {
				return err
			}
			result.Amendment = &amendment
			return nil
		},
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("legal_limit.alert", result.Alert != nil))
	return &result, nil
}

// Confirm accepts a parked amendment.
func (c *AmendmentClient) Confirm(ctx context.Context, pendingID, justification, idempotencyKey string) (*domain.SubmittedAmendment, error) {
	ctx, span := tracer.Start(ctx, "AmendmentClient.Confirm")
	defer span.End()
	span.SetAttributes(attribute.String("amendment.pending_id", pendingID))

	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey + ":confirm"
	}

	var amendment domain.SubmittedAmendment
	err := c.execute(ctx, request{
		method:   http.MethodPost,
		url:      fmt.Sprintf("%s/v1/amendments/pending/%s/confirm", c.baseURL, url.PathEscape(pendingID)),
		body:     confirmRequest{Justification: justification},
		headers:  headers,
		notFound: &domain.ErrNotFound{Resource: "pending amendment", ID: pendingID},
		decode:   decodeInto(&amendment),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &amendment, nil
}

// Cancel discards a parked amendment. An already discarded one is not an error.
func (c *AmendmentClient) Cancel(ctx context.Context, pendingID string) error {
	ctx, span := tracer.Start(ctx, "AmendmentClient.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("amendment.pending_id", pendingID))

	err := c.execute(ctx, request{
		method: http.MethodDelete,
		url:    fmt.Sprintf("%s/v1/amendments/pending/%s", c.baseURL, url.PathEscape(pendingID)),
	})
	var ext *domain.ErrExternalService
	if errors.As(err, &ext) && ext.StatusCode == http.StatusNotFound {
		return nil
	}
	if err != nil {
		span.RecordError(err)
	}
	return err
}
