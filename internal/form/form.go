package form

import (
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/calc"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/catalog"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
)

// RefreshKind names the contract context slice a refresh signal targets.
type RefreshKind string

const (
	RefreshUnits     RefreshKind = "units"
	RefreshSuppliers RefreshKind = "suppliers"
)

// RefreshSignal asks the owner to reload part of the contract context after
// the user changed the matching block.
type RefreshSignal struct {
	Kind       RefreshKind `json:"kind"`
	ContractID string      `json:"contractId"`
}

// State is a read-only snapshot of a form.
type State struct {
	Draft        domain.AmendmentDraft   `json:"draft"`
	Errors       domain.ValidationErrors `json:"errors"`
	Warnings     domain.ValidationErrors `json:"warnings"`
	CanSubmit    bool                    `json:"canSubmit"`
	Submitting   bool                    `json:"isSubmitting"`
	Confirmation ConfirmationState       `json:"confirmation"`
	Alert        *domain.LegalLimitAlert `json:"legalLimitAlert,omitempty"`
	AlertSource  AlertSource             `json:"alertSource,omitempty"`
	Context      *domain.ContractContext `json:"contractContext,omitempty"`
}

// Form owns one amendment draft. It is not safe for concurrent use; callers
// serialize access (see service.DraftService).
type Form struct {
	initial    domain.AmendmentDraft
	draft      domain.AmendmentDraft
	errors     domain.ValidationErrors
	ctx        *domain.ContractContext
	conf       confirmation
	submitting bool
	signals    []RefreshSignal
}

// New creates a form for contractID, optionally seeded from an initial draft.
// The contract id of the seed is always overwritten and the status starts
// as Draft.
func New(contractID string, initial *domain.AmendmentDraft) *Form {
	var d domain.AmendmentDraft
	if initial != nil {
		d = initial.Clone()
		d.SelectedTypes = dedupe(d.SelectedTypes)
	}
	d.ContractID = contractID
	d.Status = domain.StatusDraft
	if d.SelectedTypes == nil {
		d.SelectedTypes = []domain.AmendmentType{}
	}

	f := &Form{
		initial: d.Clone(),
		draft:   d,
		errors:  domain.ValidationErrors{},
		conf:    confirmation{state: ConfirmationNone},
	}
	f.recomputeClientAlert()
	return f
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() domain.AmendmentDraft { return f.draft.Clone() }

// ContractID returns the immutable contract id.
func (f *Form) ContractID() string { return f.draft.ContractID }

// Errors returns a copy of the error map produced by the last validation.
// It stays empty until the first patch or explicit validation.
func (f *Form) Errors() domain.ValidationErrors {
	out := make(domain.ValidationErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Context returns the contract context in use, or nil.
func (f *Form) Context() *domain.ContractContext { return f.ctx }

// Apply merges a patch, re-validates the whole draft and recomputes the
// client-side legal-limit alert. An unknown amendment type or block kind
// rejects the patch without changing anything, and so does a draft that
// already left the Draft status.
func (f *Form) Apply(p Patch) error {
	if f.Locked() {
		return &domain.ErrConflict{Message: "a alteração já foi enviada; reinicie o rascunho para editar"}
	}
	if err := p.check(); err != nil {
		return err
	}
	next := f.draft.Clone()
	p.applyTo(&next)
	f.draft = next
	f.errors = Validate(f.draft)
	f.recomputeClientAlert()

	for _, kind := range p.touched() {
		switch kind {
		case domain.BlockUnits:
			f.signal(RefreshUnits)
		case domain.BlockSuppliers:
			f.signal(RefreshSuppliers)
		}
	}
	return nil
}

// ValidateNow runs the validator explicitly, stores and returns the result.
func (f *Form) ValidateNow() domain.ValidationErrors {
	f.errors = Validate(f.draft)
	return f.Errors()
}

// Locked reports whether the draft was handed over to the Amendments API.
func (f *Form) Locked() bool { return f.draft.Status != domain.StatusDraft }

// SetContext replaces the contract context used by the calculators.
func (f *Form) SetContext(ctx *domain.ContractContext) {
	f.ctx = ctx
	f.recomputeClientAlert()
}

// SetStatus moves the draft through its lifecycle.
func (f *Form) SetStatus(s domain.AmendmentStatus) { f.draft.Status = s }

// SetSubmitting flags an in-flight submission.
func (f *Form) SetSubmitting(v bool) { f.submitting = v }

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool { return f.submitting }

// CanSubmit reports whether the draft is valid, any alert is confirmed and no
// submission is in flight.
func (f *Form) CanSubmit() bool {
	if f.submitting || f.Locked() || len(Validate(f.draft)) > 0 {
		return false
	}
	return f.conf.alert == nil || f.conf.state == ConfirmationConfirmed
}

// Blockers explains why CanSubmit is false.
func (f *Form) Blockers() *domain.ErrNotSubmittable {
	errs := Validate(f.draft)
	pending := f.conf.alert != nil && f.conf.state != ConfirmationConfirmed
	if len(errs) == 0 && !pending && !f.submitting {
		return nil
	}
	return &domain.ErrNotSubmittable{Errors: errs, AlertPending: pending, AlreadySending: f.submitting}
}

// Reset restores the initial draft and clears errors, signals and the
// legal-limit workflow. The contract context is kept.
func (f *Form) Reset() {
	f.draft = f.initial.Clone()
	f.errors = domain.ValidationErrors{}
	f.conf = confirmation{state: ConfirmationNone}
	f.submitting = false
	f.signals = nil
	f.recomputeClientAlert()
}

// DrainSignals returns the pending refresh signals and clears them.
func (f *Form) DrainSignals() []RefreshSignal {
	out := f.signals
	f.signals = nil
	return out
}

func (f *Form) signal(kind RefreshKind) {
	for _, s := range f.signals {
		if s.Kind == kind {
			return
		}
	}
	f.signals = append(f.signals, RefreshSignal{Kind: kind, ContractID: f.draft.ContractID})
}

// Warnings returns advisory messages that never block submission.
func (f *Form) Warnings() domain.ValidationErrors {
	w := domain.ValidationErrors{}
	relevant := catalog.MandatoryBlocks(f.draft.SelectedTypes).Union(catalog.OptionalBlocks(f.draft.SelectedTypes))

	if f.conf.alert != nil && trimmedLen(f.draft.BasicInfo.Justification) < MinConfirmationLength {
		w[FieldJustification] = "Alterações acima do limite legal pedem uma justificativa detalhada (50 caracteres ou mais)."
	}
	if relevant.Contains(domain.BlockUnits) && f.draft.Blocks.Units != nil && f.ctx.TotalValue() > 0 {
		switch calc.UnitsFromBlock(f.draft.Blocks.Units, f.ctx).Status {
		case calc.DistributionIncomplete:
			w[BlockField(domain.BlockUnits)] = "O valor do contrato ainda não está totalmente distribuído entre as unidades."
		case calc.DistributionExceeded:
			w[BlockField(domain.BlockUnits)] = "A soma distribuída entre as unidades excede o valor do contrato."
		}
	}
	if relevant.Contains(domain.BlockSuppliers) && f.draft.Blocks.Suppliers != nil {
		s := calc.Suppliers(f.draft.Blocks.Suppliers)
		if s.Linked > 0 && !s.ParticipationFull {
			w[BlockField(domain.BlockSuppliers)] = "A participação dos fornecedores vinculados não soma 100%."
		}
	}
	if f.ctx != nil && len(f.ctx.Missing) > 0 {
		w["contractContext"] = "Alguns dados do contrato não puderam ser carregados; os cálculos podem estar incompletos."
	}
	return w
}

// SubmissionDraft returns the draft to send, without blocks that no selected
// type allows.
func (f *Form) SubmissionDraft() domain.AmendmentDraft {
	d := f.draft.Clone()
	relevant := catalog.MandatoryBlocks(d.SelectedTypes).Union(catalog.OptionalBlocks(d.SelectedTypes))
	for _, k := range domain.BlockOrder {
		if !relevant.Contains(k) {
			d.Blocks.Clear(k)
		}
	}
	return d
}

// State returns a snapshot of the form.
func (f *Form) State() State {
	return State{
		Draft:        f.Draft(),
		Errors:       f.Errors(),
		Warnings:     f.Warnings(),
		CanSubmit:    f.CanSubmit(),
		Submitting:   f.submitting,
		Confirmation: f.conf.state,
		Alert:        f.Alert(),
		AlertSource:  f.conf.source,
		Context:      f.ctx,
	}
}
