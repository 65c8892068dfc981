// Package blocks decides which block sub-forms an amendment shows, summarizes
// each one and routes sub-form edits back into the draft aggregate.
package blocks

import (
	"fmt"
	"time"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/calc"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/catalog"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/form"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/money"
)

// Slot is one block shown for the selected types.
type Slot struct {
	Kind      domain.BlockKind `json:"kind"`
	Label     string           `json:"label"`
	Mandatory bool             `json:"mandatory"`
}

// Progress counts the filled parts of a block.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Summary is the collapsed-header view of a block.
type Summary struct {
	Kind        domain.BlockKind `json:"kind"`
	Label       string           `json:"label"`
	Mandatory   bool             `json:"mandatory"`
	Configured  bool             `json:"configured"`
	Progress    Progress         `json:"progress"`
	SummaryText string           `json:"summary"`
	IsComplete  bool             `json:"isComplete"`
	Expanded    bool             `json:"expanded"`
}

// Resolve lists the blocks of the selected types in display order, mandatory
// blocks flagged. No kind appears twice.
func Resolve(types []domain.AmendmentType) []Slot {
	mandatory := catalog.MandatoryBlocks(types)
	all := mandatory.Union(catalog.OptionalBlocks(types))

	out := make([]Slot, 0, all.Cardinality())
	for _, k := range catalog.Ordered(all) {
		out = append(out, Slot{Kind: k, Label: form.BlockLabel(k), Mandatory: mandatory.Contains(k)})
	}
	return out
}

// Summarize builds the header of every resolved block. Expanded is false;
// the Orchestrator fills it in.
func Summarize(types []domain.AmendmentType, b domain.Blocks, ctx *domain.ContractContext) []Summary {
	slots := Resolve(types)
	out := make([]Summary, 0, len(slots))
	for _, s := range slots {
		sum := Summary{Kind: s.Kind, Label: s.Label, Mandatory: s.Mandatory, Configured: b.Has(s.Kind)}
		switch s.Kind {
		case domain.BlockTerm:
			summarizeTerm(&sum, b.Term, ctx)
		case domain.BlockValue:
			summarizeValue(&sum, b.Value, types, ctx)
		case domain.BlockSuppliers:
			summarizeSuppliers(&sum, b.Suppliers)
		case domain.BlockUnits:
			summarizeUnits(&sum, b.Units, ctx)
		case domain.BlockClauses:
			summarizeClauses(&sum, b.Clauses)
		}
		out = append(out, sum)
	}
	return out
}

func summarizeTerm(sum *Summary, t *domain.TermBlockData, ctx *domain.ContractContext) {
	sum.Progress.Total = 2
	if t == nil {
		sum.SummaryText = "Não configurado"
		return
	}
	if t.Operation != "" {
		sum.Progress.Current++
	}
	switch t.Operation {
	case domain.TermSuspendIndefinite:
		sum.Progress.Current++
		sum.IsComplete = true
		sum.SummaryText = "Suspensão por prazo indeterminado"
		return
	case domain.TermSuspendFixed:
		if t.TimeValue != nil && *t.TimeValue > 0 && t.TimeUnit != "" {
			sum.Progress.Current++
			sum.IsComplete = true
			sum.SummaryText = fmt.Sprintf("Suspensão por %d %s", *t.TimeValue, t.TimeUnit)
			return
		}
		sum.SummaryText = "Suspensão por prazo determinado"
		return
	}

	r := calc.TermFromBlock(t, ctx.EndDate(), ctx.StartDate(), catalog.MaxTermYears)
	if !r.Computed {
		if t.Operation == "" {
			sum.SummaryText = "Selecione a operação"
		} else {
			sum.SummaryText = "Informe o período"
		}
		return
	}
	sum.Progress.Current++
	sum.IsComplete = true
	sum.SummaryText = "Nova data de término: " + displayDate(r.NewEndDate)
	if r.DeltaDays != 0 {
		sum.SummaryText += fmt.Sprintf(" (%+d dias)", r.DeltaDays)
	}
}

func summarizeValue(sum *Summary, v *domain.ValueBlockData, types []domain.AmendmentType, ctx *domain.ContractContext) {
	sum.Progress.Total = 2
	if v == nil {
		sum.SummaryText = "Não configurado"
		return
	}
	if v.Operation != "" {
		sum.Progress.Current++
	}
	r := calc.ValueFromBlock(v, ctx.TotalValue(), catalog.LegalLimit(types))
	if !r.Computed {
		sum.SummaryText = "Informe o valor da alteração"
		if v.Operation == "" {
			sum.SummaryText = "Selecione a operação"
		}
		return
	}
	sum.Progress.Current++
	sum.IsComplete = true
	sum.SummaryText = fmt.Sprintf("%s (%s) → %s",
		money.Format(r.AdjustmentAmount), money.FormatPercent(r.AdjustmentPercent), money.Format(r.NewTotalValue))
	if r.ExceedsLimit {
		sum.SummaryText += " · acima do limite legal"
	}
}

func summarizeSuppliers(sum *Summary, b *domain.SuppliersBlockData) {
	sum.Progress.Total = 1
	r := calc.Suppliers(b)
	if !r.HasEntries {
		sum.SummaryText = "Nenhuma alteração de fornecedor"
		return
	}
	sum.Progress.Current = 1
	sum.IsComplete = true
	sum.SummaryText = fmt.Sprintf("%d vinculado(s), %d desvinculado(s)", r.Linked, r.Unlinked)
	if r.ReplacesPrimary {
		sum.SummaryText += ", novo fornecedor principal"
	}
}

func summarizeUnits(sum *Summary, b *domain.UnitsBlockData, ctx *domain.ContractContext) {
	sum.Progress.Total = 2
	if b == nil || (len(b.LinkedUnits) == 0 && len(b.UnlinkedUnitIDs) == 0) {
		sum.SummaryText = "Nenhuma alteração de unidade"
		return
	}
	sum.Progress.Current = 1
	sum.IsComplete = true
	r := calc.UnitsFromBlock(b, ctx)
	if r.IsComplete {
		sum.Progress.Current = 2
	}
	sum.SummaryText = fmt.Sprintf("%d vinculada(s), %d desvinculada(s) · %s distribuído",
		len(b.LinkedUnits), len(b.UnlinkedUnitIDs), money.FormatPercent(r.PercentDistributed))
}

func summarizeClauses(sum *Summary, b *domain.ClausesBlockData) {
	r := calc.Clauses(b)
	sum.Progress = Progress{Current: r.Filled, Total: r.Total}
	sum.IsComplete = r.HasAmended
	if r.Filled == 0 {
		sum.SummaryText = "Nenhuma cláusula informada"
		return
	}
	sum.SummaryText = fmt.Sprintf("%d de %d campos preenchidos", r.Filled, r.Total)
}

func displayDate(s string) string {
	t, err := time.Parse(calc.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}
