// Package wizard drives the four-step amendment flow and the submission,
// confirmation and cancellation calls against the Amendments API.
package wizard

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/blocks"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/form"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/port"
)

// Step is one screen of the wizard.
type Step string

const (
	StepTypes  Step = "tipos"
	StepInfo   Step = "informacoes"
	StepBlocks Step = "blocos"
	StepReview Step = "revisao"
)

// Steps lists the wizard steps in order.
var Steps = []Step{StepTypes, StepInfo, StepBlocks, StepReview}

// ParseStep validates a step name.
func ParseStep(s string) (Step, error) {
	for _, st := range Steps {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &domain.ErrValidation{Field: "step", Message: "etapa desconhecida: " + s}
}

func (s Step) index() int {
	for i, st := range Steps {
		if st == s {
			return i
		}
	}
	return -1
}

// owns reports whether a validation error key is shown on step s.
func (s Step) owns(key string) bool {
	switch s {
	case StepTypes:
		return key == form.FieldSelectedTypes
	case StepInfo:
		return strings.HasPrefix(key, "basicInfo.") || key == form.FieldEffectiveDate
	case StepBlocks:
		return strings.HasPrefix(key, "blocks.")
	case StepReview:
		return true
	}
	return false
}

// Wizard wraps a form with step navigation and the submission workflow.
// Like form.Form it is not safe for concurrent use.
type Wizard struct {
	form      *form.Form
	orch      *blocks.Orchestrator
	submitter port.AmendmentSubmitter
	step      Step
	idemKey   string
	submitted *domain.SubmittedAmendment
}

// New creates a wizard at the first step.
func New(f *form.Form, submitter port.AmendmentSubmitter) *Wizard {
	return &Wizard{
		form:      f,
		orch:      blocks.NewOrchestrator(),
		submitter: submitter,
		step:      StepTypes,
	}
}

// Form returns the underlying draft aggregate.
func (w *Wizard) Form() *form.Form { return w.form }

// Orchestrator returns the block expand/collapse state.
func (w *Wizard) Orchestrator() *blocks.Orchestrator { return w.orch }

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Submitted returns the created amendment once the submission succeeded.
func (w *Wizard) Submitted() *domain.SubmittedAmendment { return w.submitted }

// StepErrors returns the validation errors owned by step s.
func (w *Wizard) StepErrors(s Step) domain.ValidationErrors {
	out := domain.ValidationErrors{}
	for k, v := range form.Validate(w.form.Draft()) {
		if s.owns(k) {
			out[k] = v
		}
	}
	return out
}

// CanAdvance reports whether the current step has no validation errors.
func (w *Wizard) CanAdvance() bool {
	return w.step != StepReview && len(w.StepErrors(w.step)) == 0
}

// Next moves forward one step. When the current step has errors the form
// error map is refreshed and an ErrNotSubmittable listing them is returned.
func (w *Wizard) Next() (Step, error) {
	if w.step == StepReview {
		return w.step, nil
	}
	if errs := w.StepErrors(w.step); len(errs) > 0 {
		w.form.ValidateNow()
		return w.step, &domain.ErrNotSubmittable{Errors: errs}
	}
	w.step = Steps[w.step.index()+1]
	return w.step, nil
}

// Back moves one step backwards; it stays on the first step.
func (w *Wizard) Back() Step {
	if i := w.step.index(); i > 0 {
		w.step = Steps[i-1]
	}
	return w.step
}

// GoTo jumps to a step. Moving backwards is always allowed; moving forward
// requires every step before the target to be valid.
func (w *Wizard) GoTo(s Step) error {
	target := s.index()
	if target < 0 {
		return &domain.ErrValidation{Field: "step", Message: "etapa desconhecida: " + string(s)}
	}
	if target > w.step.index() {
		for _, st := range Steps[:target] {
			if errs := w.StepErrors(st); len(errs) > 0 {
				w.form.ValidateNow()
				return &domain.ErrNotSubmittable{Errors: errs}
			}
		}
	}
	w.step = s
	return nil
}

// Submit sends the draft. It requires form.CanSubmit; the status goes to
// AwaitingApproval while the call is in flight and returns to Draft when the
// API parks the amendment behind a legal-limit alert or the call fails.
func (w *Wizard) Submit(ctx context.Context) (*domain.SubmissionResult, error) {
	if err := w.checkNotSubmitted(); err != nil {
		return nil, err
	}
	if !w.form.CanSubmit() {
		w.form.ValidateNow()
		return nil, w.form.Blockers()
	}

	w.form.SetSubmitting(true)
	defer w.form.SetSubmitting(false)
	w.form.SetStatus(domain.StatusAwaitingApproval)

	w.idemKey = uuid.NewString()
	req := &domain.SubmissionRequest{
		IdempotencyKey:            w.idemKey,
		Draft:                     w.form.SubmissionDraft(),
		LimitConfirmed:            w.form.Confirmation() == form.ConfirmationConfirmed,
		ConfirmationJustification: w.form.ConfirmationJustification(),
	}

	res, err := w.submitter.Submit(ctx, req)
	if err != nil {
		w.form.SetStatus(domain.StatusDraft)
		return nil, &domain.ErrSubmissionFailed{Err: err}
	}
	if res.Alert != nil {
		w.form.SetStatus(domain.StatusDraft)
		w.form.RaiseAlert(res.Alert)
		return res, nil
	}
	w.submitted = res.Amendment
	return res, nil
}

// Confirm accepts the pending legal-limit alert. A client-side alert is
// confirmed locally and travels with the next Submit; a server-side alert is
// confirmed against the API, which creates the amendment.
func (w *Wizard) Confirm(ctx context.Context, justification string) (*domain.SubmittedAmendment, error) {
	if err := w.checkNotSubmitted(); err != nil {
		return nil, err
	}
	if w.form.AlertSource() != form.AlertFromServer {
		return nil, w.form.Confirm(justification)
	}
	if w.form.Confirmation() != form.ConfirmationPending {
		return nil, &domain.ErrConflict{Message: "não há alerta de limite legal pendente de confirmação"}
	}
	if err := form.CheckConfirmation(justification); err != nil {
		return nil, err
	}

	alert := w.form.Alert()
	w.form.SetSubmitting(true)
	defer w.form.SetSubmitting(false)

	amendment, err := w.submitter.Confirm(ctx, alert.PendingID, strings.TrimSpace(justification), w.idemKey)
	if err != nil {
		return nil, &domain.ErrSubmissionFailed{Err: err}
	}
	if err := w.form.Confirm(justification); err != nil {
		return nil, err
	}
	w.form.SetStatus(domain.StatusAwaitingApproval)
	w.submitted = amendment
	return amendment, nil
}

// Cancel aborts the pending alert, discarding the parked amendment on the
// API when there is one. With resetDraft the form returns to its initial
// state and the wizard to the first step.
func (w *Wizard) Cancel(ctx context.Context, resetDraft bool) error {
	if w.form.AlertSource() == form.AlertFromServer {
		if alert := w.form.Alert(); alert != nil && alert.PendingID != "" {
			if err := w.submitter.Cancel(ctx, alert.PendingID); err != nil {
				return err
			}
		}
	}
	w.form.CancelAlert()
	w.idemKey = ""
	if resetDraft {
		w.form.Reset()
		w.step = StepTypes
	}
	return nil
}

// checkNotSubmitted refuses a second submission of the same draft; only
// Reset starts a new one.
func (w *Wizard) checkNotSubmitted() error {
	if w.submitted != nil || w.form.Locked() {
		return &domain.ErrConflict{Message: "a alteração já foi enviada"}
	}
	return nil
}

// Reset clears the draft and returns to the first step.
func (w *Wizard) Reset() {
	w.form.Reset()
	w.step = StepTypes
	w.idemKey = ""
	w.submitted = nil
}
