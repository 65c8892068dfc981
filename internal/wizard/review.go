package wizard

import (
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/blocks"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/calc"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/catalog"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/form"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/money"
)

// TypeView is a selected amendment type as shown on the review step.
type TypeView struct {
	Type  domain.AmendmentType `json:"type"`
	Label string               `json:"label"`
}

// Review is the payload of the final review step.
type Review struct {
	Step              Step                       `json:"step"`
	Draft             domain.AmendmentDraft      `json:"draft"`
	Types             []TypeView                 `json:"types"`
	Blocks            []blocks.Summary           `json:"blocks"`
	CurrentTotal      string                     `json:"currentTotal,omitempty"`
	NewTotal          string                     `json:"newTotal,omitempty"`
	CurrentEndDate    string                     `json:"currentEndDate,omitempty"`
	NewEndDate        string                     `json:"newEndDate,omitempty"`
	LegalLimitPercent float64                    `json:"legalLimitPercent,omitempty"`
	Errors            domain.ValidationErrors    `json:"errors"`
	Warnings          domain.ValidationErrors    `json:"warnings"`
	Alert             *domain.LegalLimitAlert    `json:"legalLimitAlert,omitempty"`
	Confirmation      form.ConfirmationState     `json:"confirmation"`
	CanSubmit         bool                       `json:"canSubmit"`
	Submitted         *domain.SubmittedAmendment `json:"submitted,omitempty"`
}

// Review builds the review payload from the current draft and context.
func (w *Wizard) Review() Review {
	d := w.form.Draft()
	ctx := w.form.Context()

	r := Review{
		Step:              w.step,
		Draft:             d,
		Types:             make([]TypeView, 0, len(d.SelectedTypes)),
		Blocks:            w.orch.View(d.SelectedTypes, d.Blocks, ctx),
		LegalLimitPercent: catalog.LegalLimit(d.SelectedTypes),
		Errors:            form.Validate(d),
		Warnings:          w.form.Warnings(),
		Alert:             w.form.Alert(),
		Confirmation:      w.form.Confirmation(),
		CanSubmit:         w.form.CanSubmit(),
		Submitted:         w.submitted,
	}
	for _, t := range d.SelectedTypes {
		label := string(t)
		if cfg, ok := catalog.Config(t); ok {
			label = cfg.Label
		}
		r.Types = append(r.Types, TypeView{Type: t, Label: label})
	}

	if total := ctx.TotalValue(); total > 0 {
		r.CurrentTotal = money.Format(total)
		if v := calc.ValueFromBlock(d.Blocks.Value, total, r.LegalLimitPercent); v.Computed {
			r.NewTotal = money.Format(v.NewTotalValue)
		}
	}
	r.CurrentEndDate = ctx.EndDate()
	if t := calc.TermFromBlock(d.Blocks.Term, ctx.EndDate(), ctx.StartDate(), catalog.MaxTermYears); t.Computed {
		r.NewEndDate = t.NewEndDate
	}
	return r
}
