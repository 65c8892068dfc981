package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the BFA.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrForbidden indicates the user lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict indicates the operation does not fit the current state
// (e.g. confirming when no alert is pending).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrNotSubmittable indicates the draft still has validation errors or an
// unconfirmed legal limit alert.
type ErrNotSubmittable struct {
	Errors         ValidationErrors
	AlertPending   bool
	AlreadySending bool
}

func (e *ErrNotSubmittable) Error() string {
	var reasons []string
	if len(e.Errors) > 0 {
		reasons = append(reasons, fmt.Sprintf("%d pendência(s) no formulário", len(e.Errors)))
	}
	if e.AlertPending {
		reasons = append(reasons, "limite legal aguardando confirmação")
	}
	if e.AlreadySending {
		reasons = append(reasons, "envio em andamento")
	}
	if len(reasons) == 0 {
		return "alteração não pode ser enviada"
	}
	return "alteração não pode ser enviada: " + strings.Join(reasons, "; ")
}

// ErrSubmissionFailed indicates the Amendments API rejected or failed the
// submission. The draft is kept and the user may retry.
type ErrSubmissionFailed struct {
	Err error
}

func (e *ErrSubmissionFailed) Error() string {
	return fmt.Sprintf("falha ao enviar a alteração, tente novamente: %v", e.Err)
}

func (e *ErrSubmissionFailed) Unwrap() error {
	return e.Err
}
