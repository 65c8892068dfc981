package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// ContractClient reads contract data from the Contracts API.
type ContractClient struct {
	base
}

// NewContractClient creates a new ContractClient.
func NewContractClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *ContractClient {
	return &ContractClient{base: base{
		service:    "contracts",
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}}
}

// GetFinancials fetches the financial snapshot of a contract.
func (c *ContractClient) GetFinancials(ctx context.Context, contractID string) (*domain.ContractFinancials, error) {
	var out domain.ContractFinancials
	if err := c.get(ctx, "GetFinancials", contractID, "financials", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTerms fetches the validity period of a contract.
func (c *ContractClient) GetTerms(ctx context.Context, contractID string) (*domain.ContractTerms, error) {
	var out domain.ContractTerms
	if err := c.get(ctx, "GetTerms", contractID, "terms", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSuppliers fetches the suppliers linked to a contract.
func (c *ContractClient) GetSuppliers(ctx context.Context, contractID string) (*domain.ContractSuppliers, error) {
	var out domain.ContractSuppliers
	if err := c.get(ctx, "GetSuppliers", contractID, "suppliers", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUnits fetches the health units linked to a contract.
func (c *ContractClient) GetUnits(ctx context.Context, contractID string) (*domain.ContractUnits, error) {
	var out domain.ContractUnits
	if err := c.get(ctx, "GetUnits", contractID, "units", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ContractClient) get(ctx context.Context, op, contractID, resource string, out any) error {
	ctx, span := tracer.Start(ctx, "ContractClient."+op)
	defer span.End()
	span.SetAttributes(attribute.String("contract.id", contractID))

	err := c.execute(ctx, request{
		method:   http.MethodGet,
		url:      fmt.Sprintf("%s/v1/contracts/%s/%s", c.baseURL, url.PathEscape(contractID), resource),
		notFound: &domain.ErrNotFound{Resource: "contract " + resource, ID: contractID},
		decode:   decodeInto(out),
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}
