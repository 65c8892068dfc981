package form

import (
	"strings"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/calc"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/catalog"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/money"
)

// ConfirmationState is the legal-limit confirmation workflow state.
type ConfirmationState string

const (
	ConfirmationNone      ConfirmationState = "none"
	ConfirmationPending   ConfirmationState = "pending"
	ConfirmationConfirmed ConfirmationState = "confirmed"
)

// AlertSource tells who raised the current alert.
type AlertSource string

const (
	AlertFromClient AlertSource = "client"
	AlertFromServer AlertSource = "server"
)

const (
	limitKindValue = "valor"
	limitKindTerm  = "prazo"

	basisMaxTerm = "Lei 14.133/2021, art. 107: os contratos de serviços e fornecimentos contínuos poderão ser prorrogados sucessivamente, respeitada a vigência máxima decenal."

	// a breach beyond this multiple of the limit is graded critical
	criticalFactor = 1.5
)

type confirmation struct {
	state         ConfirmationState
	alert         *domain.LegalLimitAlert
	source        AlertSource
	justification string
}

// RaiseAlert records an alert returned by the amendments API. It stays
// pending until confirmed, cancelled or the form is reset.
func (f *Form) RaiseAlert(alert *domain.LegalLimitAlert) {
	if alert == nil {
		return
	}
	a := *alert
	a.Limits = append([]domain.LimitEntry(nil), alert.Limits...)
	f.conf = confirmation{state: ConfirmationPending, alert: &a, source: AlertFromServer}
}

// Confirm acknowledges the pending alert. The justification must have at
// least MinConfirmationLength characters after trimming.
func (f *Form) Confirm(justification string) error {
	if f.conf.state != ConfirmationPending {
		return &domain.ErrConflict{Message: "não há alerta de limite legal pendente de confirmação"}
	}
	if err := CheckConfirmation(justification); err != nil {
		return err
	}
	f.conf.state = ConfirmationConfirmed
	f.conf.justification = strings.TrimSpace(justification)
	return nil
}

// CheckConfirmation validates a confirmation justification on its own.
func CheckConfirmation(justification string) error {
	if trimmedLen(justification) < MinConfirmationLength {
		return &domain.ErrValidation{
			Field:   FieldConfirmation,
			Message: "a justificativa da confirmação deve ter no mínimo 50 caracteres",
		}
	}
	return nil
}

// CancelAlert drops the current alert and aborts the submission attempt.
// A breach still present in the draft raises a fresh client alert.
func (f *Form) CancelAlert() {
	f.conf = confirmation{state: ConfirmationNone}
	f.recomputeClientAlert()
}

// Confirmation returns the workflow state.
func (f *Form) Confirmation() ConfirmationState { return f.conf.state }

// Alert returns a copy of the current alert, or nil.
func (f *Form) Alert() *domain.LegalLimitAlert {
	if f.conf.alert == nil {
		return nil
	}
	a := *f.conf.alert
	a.Limits = append([]domain.LimitEntry(nil), f.conf.alert.Limits...)
	return &a
}

// AlertSource returns who raised the current alert, or "" when there is none.
func (f *Form) AlertSource() AlertSource { return f.conf.source }

// ConfirmationJustification returns the accepted confirmation text.
func (f *Form) ConfirmationJustification() string { return f.conf.justification }

// recomputeClientAlert re-derives the alert from the draft. Server alerts are
// left alone; a changed client alert reverts a confirmation to pending.
func (f *Form) recomputeClientAlert() {
	if f.conf.source == AlertFromServer {
		return
	}
	next := ClientAlert(f.draft, f.ctx)
	switch {
	case next == nil:
		f.conf = confirmation{state: ConfirmationNone}
	case !next.Equal(f.conf.alert):
		f.conf = confirmation{state: ConfirmationPending, alert: next, source: AlertFromClient}
	}
}

// ClientAlert computes the legal-limit breaches visible from the draft and the
// contract context, or nil when nothing is exceeded. Only blocks relevant to
// the selected types are considered.
func ClientAlert(d domain.AmendmentDraft, ctx *domain.ContractContext) *domain.LegalLimitAlert {
	relevant := catalog.MandatoryBlocks(d.SelectedTypes).Union(catalog.OptionalBlocks(d.SelectedTypes))

	var (
		limits []domain.LimitEntry
		basis  []string
	)
	if relevant.Contains(domain.BlockValue) && d.Blocks.Value != nil {
		limit, by := catalog.LegalLimitFor(d.SelectedTypes)
		if limit > 0 {
			v := calc.ValueFromBlock(d.Blocks.Value, ctx.TotalValue(), limit)
			if v.ExceedsLimit {
				limits = append(limits, domain.LimitEntry{
					Kind:              limitKindValue,
					LegalLimitPercent: limit,
					CurrentPercent:    v.ImpactPercent,
					Severity:          severity(v.ImpactPercent, limit),
					Notes:             "Impacto de " + money.FormatPercent(v.ImpactPercent) + " sobre " + money.Format(ctx.TotalValue()),
				})
				if cfg, ok := catalog.Config(by); ok && cfg.LegalBasis != "" {
					basis = append(basis, cfg.LegalBasis)
				}
			}
		}
	}
	if relevant.Contains(domain.BlockTerm) && d.Blocks.Term != nil {
		t := calc.TermFromBlock(d.Blocks.Term, ctx.EndDate(), ctx.StartDate(), catalog.MaxTermYears)
		if t.ExceedsMaxTerm {
			limits = append(limits, domain.LimitEntry{
				Kind:              limitKindTerm,
				LegalLimitPercent: 100,
				CurrentPercent:    t.DurationPct,
				Severity:          severity(t.DurationPct, 100),
				Notes:             "Vigência total até " + t.NewEndDate,
			})
			basis = append(basis, basisMaxTerm)
		}
	}
	if len(limits) == 0 {
		return nil
	}
	return &domain.LegalLimitAlert{Limits: limits, LegalBasisText: strings.Join(basis, "\n")}
}

func severity(current, limit float64) domain.LimitSeverity {
	if current > limit*criticalFactor {
		return domain.SeverityCritical
	}
	return domain.SeverityWarning
}
