// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
)

// ContractContextFetcher reads the contract data an amendment is computed
// against. Each slice is fetched independently so one failure does not hide
// the others.
type ContractContextFetcher interface {
	GetFinancials(ctx context.Context, contractID string) (*domain.ContractFinancials, error)
	GetTerms(ctx context.Context, contractID string) (*domain.ContractTerms, error)
	GetSuppliers(ctx context.Context, contractID string) (*domain.ContractSuppliers, error)
	GetUnits(ctx context.Context, contractID string) (*domain.ContractUnits, error)
}

// AmendmentSubmitter talks to the Amendments API.
type AmendmentSubmitter interface {
	// Submit creates the amendment. A result carrying an Alert means the
	// amendment was parked pending legal-limit confirmation.
	Submit(ctx context.Context, req *domain.SubmissionRequest) (*domain.SubmissionResult, error)
	// Confirm accepts a parked amendment with a justification.
	Confirm(ctx context.Context, pendingID, justification, idempotencyKey string) (*domain.SubmittedAmendment, error)
	// Cancel discards a parked amendment.
	Cancel(ctx context.Context, pendingID string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// SessionStore is a Cache whose entries expire when idle.
type SessionStore[T any] interface {
	Cache[T]
	// Touch extends the lifetime of a live entry.
	Touch(key string) bool
	// Len counts live entries.
	Len() int
}
