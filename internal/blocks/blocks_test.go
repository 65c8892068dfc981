package blocks_test

import (
	"testing"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/blocks"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }
func n(v int) *int { return &v }

func ctx() *domain.ContractContext {
	return &domain.ContractContext{
		Financials: &domain.ContractFinancials{TotalValue: 1000},
		Terms:      &domain.ContractTerms{StartDate: "2023-01-31", EndDate: "2024-01-31"},
		Units:      &domain.ContractUnits{LinkedUnits: []domain.HealthUnit{{ID: "u-1", CurrentValue: 600}}},
	}
}

func kinds(slots []blocks.Slot) []domain.BlockKind {
	out := make([]domain.BlockKind, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Kind)
	}
	return out
}

func TestResolve(t *testing.T) {
	slots := blocks.Resolve([]domain.AmendmentType{domain.AmendmentTermExtension})

	assert.Equal(t, []domain.BlockKind{domain.BlockClauses, domain.BlockTerm, domain.BlockValue}, kinds(slots))
	assert.False(t, slots[0].Mandatory)
	assert.True(t, slots[1].Mandatory)
	assert.Equal(t, "Prazo", slots[1].Label)
}

func TestResolve_MandatoryWinsOverOptional(t *testing.T) {
	slots := blocks.Resolve([]domain.AmendmentType{domain.AmendmentTermExtension, domain.AmendmentReadjustment})

	require.Len(t, slots, 3)
	assert.Equal(t, domain.BlockValue, slots[2].Kind)
	assert.True(t, slots[2].Mandatory)
}

func TestResolve_Empty(t *testing.T) {
	assert.Empty(t, blocks.Resolve(nil))
	assert.Empty(t, blocks.Resolve([]domain.AmendmentType{"desconhecido"}))

	for _, s := range blocks.Resolve([]domain.AmendmentType{domain.AmendmentApostille}) {
		assert.False(t, s.Mandatory, "apostille has no mandatory block")
	}
}

func TestResolve_NoDuplicatesProperty(t *testing.T) {
	all := []domain.AmendmentType{
		domain.AmendmentTermExtension, domain.AmendmentQuantityIncrease, domain.AmendmentQualitativeChange,
		domain.AmendmentQuantityReduction, domain.AmendmentReadjustment, domain.AmendmentRepactuation,
		domain.AmendmentRebalancing, domain.AmendmentApostille, domain.AmendmentSupplierChange,
		domain.AmendmentUnitsChange, domain.AmendmentClausesChange, domain.AmendmentSuspension,
		domain.AmendmentRenovationIncrease,
	}
	properties := gopter.NewProperties(nil)
	properties.Property("each kind appears once", prop.ForAll(
		func(idx []int) bool {
			types := make([]domain.AmendmentType, 0, len(idx))
			for _, i := range idx {
				types = append(types, all[i])
			}
			seen := map[domain.BlockKind]bool{}
			for _, s := range blocks.Resolve(types) {
				if seen[s.Kind] {
					return false
				}
				seen[s.Kind] = true
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, len(all)-1)),
	))
	properties.TestingRun(t)
}

func TestSummarize(t *testing.T) {
	b := domain.Blocks{
		Term:  &domain.TermBlockData{Operation: domain.TermAdd, TimeValue: n(1), TimeUnit: domain.UnitMonths},
		Value: &domain.ValueBlockData{Operation: domain.ValueAdd, AdjustmentPercent: f(15)},
	}
	sums := blocks.Summarize([]domain.AmendmentType{domain.AmendmentTermExtension}, b, ctx())
	require.Len(t, sums, 3)

	clauses, term, value := sums[0], sums[1], sums[2]

	assert.False(t, clauses.Configured)
	assert.Equal(t, blocks.Progress{Current: 0, Total: 3}, clauses.Progress)
	assert.False(t, clauses.IsComplete)

	assert.True(t, term.IsComplete)
	assert.Equal(t, blocks.Progress{Current: 2, Total: 2}, term.Progress)
	assert.Equal(t, "Nova data de término: 02/03/2024 (+31 dias)", term.SummaryText)

	assert.True(t, value.IsComplete)
	assert.Equal(t, "R$ 150,00 (15,00%) → R$ 1.150,00", value.SummaryText)
}

func TestSummarize_Partial(t *testing.T) {
	b := domain.Blocks{
		Term:  &domain.TermBlockData{Operation: domain.TermAdd},
		Value: &domain.ValueBlockData{},
	}
	sums := blocks.Summarize([]domain.AmendmentType{domain.AmendmentTermExtension}, b, ctx())

	assert.Equal(t, blocks.Progress{Current: 1, Total: 2}, sums[1].Progress)
	assert.False(t, sums[1].IsComplete)
	assert.Equal(t, blocks.Progress{Current: 0, Total: 2}, sums[2].Progress)
	assert.Equal(t, "Selecione a operação", sums[2].SummaryText)
}

func TestSummarize_UnitsAndSuppliers(t *testing.T) {
	b := domain.Blocks{
		Units: &domain.UnitsBlockData{LinkedUnits: []domain.LinkedUnit{{HealthUnitID: "u-2", AssignedValue: 400}}},
		Suppliers: &domain.SuppliersBlockData{
			UnlinkedSupplierIDs:  []string{"s-1"},
			NewPrimarySupplierID: "s-2",
		},
	}
	sums := blocks.Summarize([]domain.AmendmentType{domain.AmendmentSupplierChange, domain.AmendmentUnitsChange}, b, ctx())
	require.Len(t, sums, 3)

	suppliers, units := sums[1], sums[2]
	assert.Equal(t, "0 vinculado(s), 1 desvinculado(s), novo fornecedor principal", suppliers.SummaryText)
	assert.True(t, suppliers.IsComplete)

	assert.Equal(t, blocks.Progress{Current: 2, Total: 2}, units.Progress)
	assert.Equal(t, "1 vinculada(s), 0 desvinculada(s) · 100,00% distribuído", units.SummaryText)
}

func TestSummarize_Suspension(t *testing.T) {
	b := domain.Blocks{Term: &domain.TermBlockData{Operation: domain.TermSuspendIndefinite, IsIndefinite: true}}
	sums := blocks.Summarize([]domain.AmendmentType{domain.AmendmentSuspension}, b, ctx())

	assert.True(t, sums[1].IsComplete)
	assert.Equal(t, "Suspensão por prazo indeterminado", sums[1].SummaryText)
}

func TestOrchestrator_SeedsOnce(t *testing.T) {
	o := blocks.NewOrchestrator()

	o.Sync(nil)
	assert.False(t, o.Expanded(domain.BlockTerm), "empty slot list does not seed")

	view := o.View([]domain.AmendmentType{domain.AmendmentTermExtension}, domain.Blocks{}, nil)
	require.Len(t, view, 3)
	assert.False(t, view[0].Expanded)
	assert.True(t, view[1].Expanded)
	assert.False(t, view[2].Expanded)

	assert.False(t, o.Toggle(domain.BlockTerm))
	assert.True(t, o.Toggle(domain.BlockClauses))

	// new types later do not reseed
	view = o.View([]domain.AmendmentType{domain.AmendmentTermExtension, domain.AmendmentSupplierChange}, domain.Blocks{}, nil)
	byKind := map[domain.BlockKind]bool{}
	for _, s := range view {
		byKind[s.Kind] = s.Expanded
	}
	assert.True(t, byKind[domain.BlockClauses])
	assert.False(t, byKind[domain.BlockTerm])
	assert.False(t, byKind[domain.BlockSuppliers])
}

func TestOrchestrator_Route(t *testing.T) {
	o := blocks.NewOrchestrator()

	p, err := o.Route(domain.BlockValue, &domain.ValueBlockData{Operation: domain.ValueReplace, NewTotalValue: f(2000)})
	require.NoError(t, err)
	require.NotNil(t, p.Blocks)
	assert.Equal(t, 2000.0, *p.Blocks.Value.NewTotalValue)

	_, err = o.Route(domain.BlockUnits, &domain.TermBlockData{})
	var ve *domain.ErrValidation
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "blocks.units", ve.Field)
}
