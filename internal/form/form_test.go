package form_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/form"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }
func n(v int) *int { return &v }
func s(v string) *string { return &v }

func types(t ...domain.AmendmentType) *[]domain.AmendmentType { return &t }

var longConfirmation = strings.Repeat("acréscimo necessário ", 4)

func contractCtx() *domain.ContractContext {
	return &domain.ContractContext{
		ContractID: "c-1",
		Financials: &domain.ContractFinancials{TotalValue: 100000},
		Terms:      &domain.ContractTerms{StartDate: "2020-01-01", EndDate: "2025-01-01", IsActive: true},
		Units: &domain.ContractUnits{LinkedUnits: []domain.HealthUnit{
			{ID: "u-1", Name: "UBS Centro", CurrentValue: 40000},
		}},
	}
}

// validQuantity returns a form with a complete quantity-increase draft.
func validQuantity(t *testing.T, pct float64) *form.Form {
	t.Helper()
	fm := form.New("c-1", nil)
	fm.SetContext(contractCtx())
	err := fm.Apply(form.Patch{
		SelectedTypes: types(domain.AmendmentQuantityIncrease),
		BasicInfo:     &form.BasicInfoPatch{Justification: s("Aumento da demanda nas unidades")},
		EffectiveDate: s("2024-06-01"),
		Blocks: &form.BlocksPatch{Value: &domain.ValueBlockData{
			Operation:         domain.ValueAdd,
			AdjustmentPercent: f(pct),
		}},
	})
	require.NoError(t, err)
	return fm
}

// --- Validate ---

func TestValidate_EmptyDraft(t *testing.T) {
	errs := form.Validate(domain.AmendmentDraft{})

	assert.Contains(t, errs, form.FieldSelectedTypes)
	assert.Contains(t, errs, form.FieldJustification)
	assert.Contains(t, errs, form.FieldEffectiveDate)
	assert.Len(t, errs, 3)
}

func TestValidate_Justification(t *testing.T) {
	d := domain.AmendmentDraft{BasicInfo: domain.BasicInfo{Justification: "short"}}
	assert.Contains(t, form.Validate(d), form.FieldJustification)

	d.BasicInfo.Justification = "   ten chars   "
	assert.Contains(t, form.Validate(d), form.FieldJustification, "surrounding spaces do not count")

	d.BasicInfo.Justification = "0123456789"
	assert.NotContains(t, form.Validate(d), form.FieldJustification)

	d.BasicInfo.Justification = "çãõéíúâêôà"
	assert.NotContains(t, form.Validate(d), form.FieldJustification, "length counts characters, not bytes")
}

func TestValidate_CompleteTermDraft(t *testing.T) {
	d := domain.AmendmentDraft{
		SelectedTypes: []domain.AmendmentType{domain.AmendmentTermExtension},
		BasicInfo:     domain.BasicInfo{Justification: "Prorrogação necessária"},
		EffectiveDate: "2024-01-01",
		Blocks: domain.Blocks{Term: &domain.TermBlockData{
			Operation: domain.TermAdd,
			TimeValue: n(1),
			TimeUnit:  domain.UnitDays,
		}},
	}
	assert.Empty(t, form.Validate(d))
}

func TestValidate_MissingMandatoryBlock(t *testing.T) {
	d := domain.AmendmentDraft{
		SelectedTypes: []domain.AmendmentType{domain.AmendmentTermExtension, domain.AmendmentSupplierChange},
		BasicInfo:     domain.BasicInfo{Justification: "Prorrogação necessária"},
		EffectiveDate: "2024-01-01",
	}
	errs := form.Validate(d)

	assert.Contains(t, errs, "blocks.term")
	assert.Contains(t, errs, "blocks.suppliers")
	assert.NotContains(t, errs, "blocks.value", "value is only optional for these types")
}

func TestValidate_BlockRules(t *testing.T) {
	base := domain.AmendmentDraft{
		BasicInfo:     domain.BasicInfo{Justification: "Justificativa válida"},
		EffectiveDate: "2024-01-01",
	}
	tests := []struct {
		name  string
		types []domain.AmendmentType
		block domain.Blocks
		field string
	}{
		{
			name:  "term without operation",
			types: []domain.AmendmentType{domain.AmendmentTermExtension},
			block: domain.Blocks{Term: &domain.TermBlockData{}},
			field: form.FieldTermOperation,
		},
		{
			name:  "term replace without date",
			types: []domain.AmendmentType{domain.AmendmentTermExtension},
			block: domain.Blocks{Term: &domain.TermBlockData{Operation: domain.TermReplace}},
			field: form.FieldTermNewEndDate,
		},
		{
			name:  "indefinite flag outside indefinite suspension",
			types: []domain.AmendmentType{domain.AmendmentSuspension},
			block: domain.Blocks{Term: &domain.TermBlockData{Operation: domain.TermSuspendFixed, IsIndefinite: true}},
			field: form.FieldTermIndefinite,
		},
		{
			name:  "indefinite suspension with a period",
			types: []domain.AmendmentType{domain.AmendmentSuspension},
			block: domain.Blocks{Term: &domain.TermBlockData{Operation: domain.TermSuspendIndefinite, TimeValue: n(3), TimeUnit: domain.UnitMonths}},
			field: form.FieldTermIndefinite,
		},
		{
			name:  "value without operation",
			types: []domain.AmendmentType{domain.AmendmentReadjustment},
			block: domain.Blocks{Value: &domain.ValueBlockData{}},
			field: form.FieldValueOperation,
		},
		{
			name:  "value replace without total",
			types: []domain.AmendmentType{domain.AmendmentReadjustment},
			block: domain.Blocks{Value: &domain.ValueBlockData{Operation: domain.ValueReplace}},
			field: form.FieldValueNewTotal,
		},
		{
			name:  "value add without amount or percent",
			types: []domain.AmendmentType{domain.AmendmentReadjustment},
			block: domain.Blocks{Value: &domain.ValueBlockData{Operation: domain.ValueAdd}},
			field: form.FieldValueAdjust,
		},
		{
			name:  "empty suppliers block",
			types: []domain.AmendmentType{domain.AmendmentSupplierChange},
			block: domain.Blocks{Suppliers: &domain.SuppliersBlockData{}},
			field: "blocks.suppliers",
		},
		{
			name:  "empty units block",
			types: []domain.AmendmentType{domain.AmendmentUnitsChange},
			block: domain.Blocks{Units: &domain.UnitsBlockData{}},
			field: "blocks.units",
		},
		{
			name:  "clauses without amended text",
			types: []domain.AmendmentType{domain.AmendmentClausesChange},
			block: domain.Blocks{Clauses: &domain.ClausesBlockData{IncludedClauses: "Cláusula 12"}},
			field: form.FieldAmendedClauses,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			d.SelectedTypes = tt.types
			d.Blocks = tt.block
			errs := form.Validate(d)
			assert.Contains(t, errs, tt.field)
			assert.Len(t, errs, 1)
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	d := domain.AmendmentDraft{
		SelectedTypes: []domain.AmendmentType{domain.AmendmentQuantityIncrease, domain.AmendmentUnitsChange},
		BasicInfo:     domain.BasicInfo{Justification: "curta"},
	}
	assert.Equal(t, form.Validate(d), form.Validate(d))
}

// --- Form ---

func TestForm_NewStartsWithoutErrors(t *testing.T) {
	fm := form.New("c-1", nil)

	assert.Empty(t, fm.Errors())
	assert.False(t, fm.CanSubmit())
	assert.Equal(t, domain.StatusDraft, fm.Draft().Status)
	assert.Equal(t, "c-1", fm.ContractID())
}

func TestForm_NewOverridesSeedContract(t *testing.T) {
	seed := &domain.AmendmentDraft{
		ContractID:    "other",
		SelectedTypes: []domain.AmendmentType{domain.AmendmentTermExtension, domain.AmendmentTermExtension},
	}
	fm := form.New("c-1", seed)

	assert.Equal(t, "c-1", fm.Draft().ContractID)
	assert.Equal(t, []domain.AmendmentType{domain.AmendmentTermExtension}, fm.Draft().SelectedTypes)
	assert.Equal(t, "other", seed.ContractID, "seed must not be mutated")
}

func TestForm_ApplyValidatesWholeDraft(t *testing.T) {
	fm := form.New("c-1", nil)
	require.NoError(t, fm.Apply(form.Patch{BasicInfo: &form.BasicInfoPatch{Justification: s("short")}}))

	errs := fm.Errors()
	assert.Equal(t, "A justificativa deve ter no mínimo 10 caracteres.", errs[form.FieldJustification])
	assert.Contains(t, errs, form.FieldSelectedTypes)

	require.NoError(t, fm.Apply(form.Patch{BasicInfo: &form.BasicInfoPatch{Justification: s("Justificativa completa")}}))
	assert.NotContains(t, fm.Errors(), form.FieldJustification)
}

func TestForm_ApplyRejectsUnknownType(t *testing.T) {
	fm := form.New("c-1", nil)
	err := fm.Apply(form.Patch{SelectedTypes: types("desconhecido")})

	var ve *domain.ErrValidation
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, form.FieldSelectedTypes, ve.Field)
	assert.Empty(t, fm.Draft().SelectedTypes)
}

func TestForm_ApplyDedupesTypes(t *testing.T) {
	fm := form.New("c-1", nil)
	require.NoError(t, fm.Apply(form.Patch{SelectedTypes: types(
		domain.AmendmentTermExtension, domain.AmendmentClausesChange, domain.AmendmentTermExtension,
	)}))

	assert.Equal(t, []domain.AmendmentType{domain.AmendmentTermExtension, domain.AmendmentClausesChange}, fm.Draft().SelectedTypes)
}

func TestForm_DraftIsACopy(t *testing.T) {
	fm := validQuantity(t, 10)
	d := fm.Draft()
	*d.Blocks.Value.AdjustmentPercent = 99

	assert.Equal(t, 10.0, *fm.Draft().Blocks.Value.AdjustmentPercent)
}

func TestForm_CanSubmitWithinLimit(t *testing.T) {
	fm := validQuantity(t, 10)

	assert.Empty(t, fm.Errors())
	assert.Equal(t, form.ConfirmationNone, fm.Confirmation())
	assert.True(t, fm.CanSubmit())
	assert.Nil(t, fm.Blockers())

	fm.SetSubmitting(true)
	assert.False(t, fm.CanSubmit())
	assert.True(t, fm.Blockers().AlreadySending)
}

func TestForm_ClientAlertLifecycle(t *testing.T) {
	fm := validQuantity(t, 30)

	require.Equal(t, form.ConfirmationPending, fm.Confirmation())
	alert := fm.Alert()
	require.NotNil(t, alert)
	require.Len(t, alert.Limits, 1)
	assert.Equal(t, "valor", alert.Limits[0].Kind)
	assert.Equal(t, 25.0, alert.Limits[0].LegalLimitPercent)
	assert.Equal(t, 30.0, alert.Limits[0].CurrentPercent)
	assert.Equal(t, domain.SeverityWarning, alert.Limits[0].Severity)
	assert.False(t, fm.CanSubmit())
	assert.True(t, fm.Blockers().AlertPending)

	err := fm.Confirm("curta demais")
	var ve *domain.ErrValidation
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, form.FieldConfirmation, ve.Field)
	assert.Equal(t, form.ConfirmationPending, fm.Confirmation())

	require.NoError(t, fm.Confirm(longConfirmation))
	assert.Equal(t, form.ConfirmationConfirmed, fm.Confirmation())
	assert.True(t, fm.CanSubmit())

	// same breach, confirmation survives unrelated edits
	require.NoError(t, fm.Apply(form.Patch{BasicInfo: &form.BasicInfoPatch{Notes: s("obs")}}))
	assert.Equal(t, form.ConfirmationConfirmed, fm.Confirmation())

	// a different breach needs a new confirmation
	require.NoError(t, fm.Apply(form.Patch{Blocks: &form.BlocksPatch{Value: &domain.ValueBlockData{
		Operation: domain.ValueAdd, AdjustmentPercent: f(60),
	}}}))
	assert.Equal(t, form.ConfirmationPending, fm.Confirmation())
	assert.Equal(t, domain.SeverityCritical, fm.Alert().Limits[0].Severity)
	assert.Empty(t, fm.ConfirmationJustification())

	// back within the limit clears the workflow
	require.NoError(t, fm.Apply(form.Patch{Blocks: &form.BlocksPatch{Value: &domain.ValueBlockData{
		Operation: domain.ValueAdd, AdjustmentPercent: f(20),
	}}}))
	assert.Equal(t, form.ConfirmationNone, fm.Confirmation())
	assert.Nil(t, fm.Alert())
}

func TestForm_ConfirmWithoutPendingAlert(t *testing.T) {
	fm := validQuantity(t, 10)

	var ce *domain.ErrConflict
	assert.True(t, errors.As(fm.Confirm(longConfirmation), &ce))
}

func TestForm_ServerAlertPersistsUntilCancel(t *testing.T) {
	fm := validQuantity(t, 10)
	fm.RaiseAlert(&domain.LegalLimitAlert{
		Limits:    []domain.LimitEntry{{Kind: "valor", LegalLimitPercent: 25, CurrentPercent: 26, Severity: domain.SeverityWarning}},
		PendingID: "p-1",
	})

	assert.Equal(t, form.ConfirmationPending, fm.Confirmation())
	assert.Equal(t, form.AlertFromServer, fm.AlertSource())

	// edits do not clear a server alert
	require.NoError(t, fm.Apply(form.Patch{BasicInfo: &form.BasicInfoPatch{Notes: s("obs")}}))
	assert.Equal(t, form.ConfirmationPending, fm.Confirmation())
	assert.Equal(t, "p-1", fm.Alert().PendingID)

	fm.CancelAlert()
	assert.Equal(t, form.ConfirmationNone, fm.Confirmation())
	assert.Nil(t, fm.Alert())
	assert.True(t, fm.CanSubmit())
}

func TestForm_CancelKeepsClientBreach(t *testing.T) {
	fm := validQuantity(t, 30)
	fm.CancelAlert()

	assert.Equal(t, form.ConfirmationPending, fm.Confirmation(), "the draft still exceeds the limit")
	assert.False(t, fm.CanSubmit())
}

func TestForm_TermBeyondMaximumDuration(t *testing.T) {
	fm := form.New("c-1", nil)
	fm.SetContext(contractCtx())
	require.NoError(t, fm.Apply(form.Patch{
		SelectedTypes: types(domain.AmendmentTermExtension),
		Blocks: &form.BlocksPatch{Term: &domain.TermBlockData{
			Operation: domain.TermAdd, TimeValue: n(6), TimeUnit: domain.UnitYears,
		}},
	}))

	alert := fm.Alert()
	require.NotNil(t, alert)
	assert.Equal(t, "prazo", alert.Limits[0].Kind)
	assert.Contains(t, alert.LegalBasisText, "art. 107")
}

func TestForm_ContextArrivalRaisesAlert(t *testing.T) {
	fm := form.New("c-1", nil)
	require.NoError(t, fm.Apply(form.Patch{
		SelectedTypes: types(domain.AmendmentQuantityIncrease),
		Blocks:        &form.BlocksPatch{Value: &domain.ValueBlockData{Operation: domain.ValueAdd, AdjustmentAmount: f(30000)}},
	}))
	assert.Equal(t, form.ConfirmationNone, fm.Confirmation(), "no base value yet")

	fm.SetContext(contractCtx())
	assert.Equal(t, form.ConfirmationPending, fm.Confirmation())
}

func TestForm_IrrelevantBlocksIgnored(t *testing.T) {
	fm := validQuantity(t, 10)
	require.NoError(t, fm.Apply(form.Patch{Blocks: &form.BlocksPatch{Suppliers: &domain.SuppliersBlockData{
		UnlinkedSupplierIDs: []string{"s-1"},
	}}}))

	assert.NotNil(t, fm.Draft().Blocks.Suppliers, "data is kept while editing")
	assert.Nil(t, fm.SubmissionDraft().Blocks.Suppliers)
	assert.NotNil(t, fm.SubmissionDraft().Blocks.Value)
}

func TestForm_RefreshSignals(t *testing.T) {
	fm := form.New("c-1", nil)
	require.NoError(t, fm.Apply(form.Patch{Blocks: &form.BlocksPatch{
		Units:     &domain.UnitsBlockData{UnlinkedUnitIDs: []string{"u-1"}},
		Suppliers: &domain.SuppliersBlockData{NewPrimarySupplierID: "s-2"},
	}}))
	require.NoError(t, fm.Apply(form.Patch{Blocks: &form.BlocksPatch{Remove: []domain.BlockKind{domain.BlockUnits}}}))

	signals := fm.DrainSignals()
	assert.ElementsMatch(t, []form.RefreshSignal{
		{Kind: form.RefreshUnits, ContractID: "c-1"},
		{Kind: form.RefreshSuppliers, ContractID: "c-1"},
	}, signals)
	assert.Empty(t, fm.DrainSignals())
	assert.Nil(t, fm.Draft().Blocks.Units)
}

func TestForm_Warnings(t *testing.T) {
	fm := form.New("c-1", nil)
	fm.SetContext(contractCtx())
	require.NoError(t, fm.Apply(form.Patch{
		SelectedTypes: types(domain.AmendmentUnitsChange, domain.AmendmentSupplierChange),
		Blocks: &form.BlocksPatch{
			Units: &domain.UnitsBlockData{LinkedUnits: []domain.LinkedUnit{{HealthUnitID: "u-2", AssignedValue: 10000}}},
			Suppliers: &domain.SuppliersBlockData{LinkedSuppliers: []domain.LinkedSupplier{
				{CompanyID: "s-1", ParticipationPercent: 60},
			}},
		},
	}))

	w := fm.Warnings()
	assert.Contains(t, w, "blocks.units")
	assert.Contains(t, w, "blocks.suppliers")
	assert.NotContains(t, fm.Errors(), "blocks.units", "distribution is advisory")
}

func TestForm_Reset(t *testing.T) {
	seed := &domain.AmendmentDraft{SelectedTypes: []domain.AmendmentType{domain.AmendmentQuantityIncrease}}
	fm := form.New("c-1", seed)
	fm.SetContext(contractCtx())
	require.NoError(t, fm.Apply(form.Patch{
		BasicInfo: &form.BasicInfoPatch{Justification: s("x")},
		Blocks:    &form.BlocksPatch{Value: &domain.ValueBlockData{Operation: domain.ValueAdd, AdjustmentPercent: f(40)}},
	}))
	require.NotEmpty(t, fm.Errors())
	require.Equal(t, form.ConfirmationPending, fm.Confirmation())
	fm.SetSubmitting(true)

	fm.Reset()

	assert.Empty(t, fm.Errors())
	assert.Equal(t, form.ConfirmationNone, fm.Confirmation())
	assert.False(t, fm.Submitting())
	assert.Nil(t, fm.Draft().Blocks.Value)
	assert.Equal(t, []domain.AmendmentType{domain.AmendmentQuantityIncrease}, fm.Draft().SelectedTypes)
	assert.NotNil(t, fm.Context(), "contract context survives a reset")
}

func TestBlockPatch(t *testing.T) {
	p, ok := form.BlockPatch(domain.BlockTerm, &domain.TermBlockData{Operation: domain.TermAdd})
	require.True(t, ok)
	require.NotNil(t, p.Blocks.Term)

	_, ok = form.BlockPatch(domain.BlockTerm, &domain.ValueBlockData{})
	assert.False(t, ok, "mismatched payload")
}

func TestForm_LockedAfterHandover(t *testing.T) {
	fm := form.New("c-1", &domain.AmendmentDraft{Status: domain.StatusActive})
	require.Equal(t, domain.StatusDraft, fm.Draft().Status, "an editing session always starts as a draft")

	types := []domain.AmendmentType{domain.AmendmentTermExtension}
	require.NoError(t, fm.Apply(form.Patch{SelectedTypes: &types}))

	fm.SetStatus(domain.StatusAwaitingApproval)
	assert.True(t, fm.Locked())
	assert.False(t, fm.CanSubmit())

	err := fm.Apply(form.Patch{EffectiveDate: s("2024-02-01")})
	var conflict *domain.ErrConflict
	require.ErrorAs(t, err, &conflict)
	assert.Empty(t, fm.Draft().EffectiveDate)

	fm.Reset()
	assert.False(t, fm.Locked())
	require.NoError(t, fm.Apply(form.Patch{EffectiveDate: s("2024-02-01")}))
}
