// Package form holds the amendment draft aggregate: a single-owner container
// that applies merge patches, re-validates the whole draft after each one and
// tracks the legal-limit confirmation workflow.
package form

import (
	"strings"
	"unicode/utf8"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/calc"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/catalog"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
)

const (
	// MinJustificationLength is the hard minimum of basicInfo.justification.
	MinJustificationLength = 10
	// MinConfirmationLength is the hard minimum of the legal-limit confirmation text.
	MinConfirmationLength = 50
)

// Field keys of the validation error map.
const (
	FieldSelectedTypes  = "selectedTypes"
	FieldJustification  = "basicInfo.justification"
	FieldEffectiveDate  = "effectiveDate"
	FieldTermOperation  = "blocks.term.operation"
	FieldTermNewEndDate = "blocks.term.newEndDate"
	FieldTermIndefinite = "blocks.term.isIndefinite"
	FieldValueOperation = "blocks.value.operation"
	FieldValueNewTotal  = "blocks.value.newTotalValue"
	FieldValueAdjust    = "blocks.value.adjustmentAmount"
	FieldAmendedClauses = "blocks.clauses.amendedClauses"
	FieldConfirmation   = "confirmation.justification"
)

var blockLabels = map[domain.BlockKind]string{
	domain.BlockClauses:   "Cláusulas",
	domain.BlockTerm:      "Prazo",
	domain.BlockValue:     "Valor",
	domain.BlockSuppliers: "Fornecedores",
	domain.BlockUnits:     "Unidades",
}

// BlockField is the error key reported when a mandatory block is missing or empty.
func BlockField(kind domain.BlockKind) string {
	return "blocks." + string(kind)
}

// BlockLabel returns the display name of a block.
func BlockLabel(kind domain.BlockKind) string {
	return blockLabels[kind]
}

// Validate checks a draft and returns every problem keyed by field path.
// It is pure: the same draft always yields the same map.
func Validate(d domain.AmendmentDraft) domain.ValidationErrors {
	errs := domain.ValidationErrors{}

	if len(d.SelectedTypes) == 0 {
		errs[FieldSelectedTypes] = "Selecione pelo menos um tipo de alteração."
	}
	if trimmedLen(d.BasicInfo.Justification) < MinJustificationLength {
		errs[FieldJustification] = "A justificativa deve ter no mínimo 10 caracteres."
	}
	if strings.TrimSpace(d.EffectiveDate) == "" {
		errs[FieldEffectiveDate] = "Informe a data de início dos efeitos da alteração."
	}

	for _, kind := range catalog.Ordered(catalog.MandatoryBlocks(d.SelectedTypes)) {
		if !d.Blocks.Has(kind) {
			errs[BlockField(kind)] = "O bloco " + BlockLabel(kind) + " é obrigatório para os tipos selecionados."
			continue
		}
		switch kind {
		case domain.BlockTerm:
			validateTerm(d.Blocks.Term, errs)
		case domain.BlockValue:
			validateValue(d.Blocks.Value, errs)
		case domain.BlockSuppliers:
			if !calc.Suppliers(d.Blocks.Suppliers).HasEntries {
				errs[BlockField(kind)] = "Vincule, desvincule ou substitua pelo menos um fornecedor."
			}
		case domain.BlockUnits:
			u := d.Blocks.Units
			if len(u.LinkedUnits) == 0 && len(u.UnlinkedUnitIDs) == 0 {
				errs[BlockField(kind)] = "Vincule ou desvincule pelo menos uma unidade."
			}
		case domain.BlockClauses:
			// excluded/included clauses alone do not satisfy the block
			if strings.TrimSpace(d.Blocks.Clauses.AmendedClauses) == "" {
				errs[FieldAmendedClauses] = "Descreva as cláusulas alteradas."
			}
		}
	}

	return errs
}

func validateTerm(t *domain.TermBlockData, errs domain.ValidationErrors) {
	switch t.Operation {
	case "":
		errs[FieldTermOperation] = "Selecione a operação de prazo."
	case domain.TermReplace:
		if strings.TrimSpace(t.NewEndDate) == "" {
			errs[FieldTermNewEndDate] = "Informe a nova data de término."
		}
	case domain.TermSuspendIndefinite:
		if t.TimeValue != nil || t.TimeUnit != "" || t.NewEndDate != "" {
			errs[FieldTermIndefinite] = "Suspensão por prazo indeterminado não aceita período nem data."
		}
	case domain.TermAdd, domain.TermSubtract, domain.TermSuspendFixed:
	default:
		errs[FieldTermOperation] = "Operação de prazo inválida."
	}
	if t.IsIndefinite && t.Operation != domain.TermSuspendIndefinite {
		errs[FieldTermIndefinite] = "Prazo indeterminado só é permitido na suspensão por prazo indeterminado."
	}
}

func validateValue(v *domain.ValueBlockData, errs domain.ValidationErrors) {
	switch v.Operation {
	case "":
		errs[FieldValueOperation] = "Selecione a operação de valor."
	case domain.ValueReplace:
		if v.NewTotalValue == nil || *v.NewTotalValue <= 0 {
			errs[FieldValueNewTotal] = "Informe o novo valor total do contrato."
		}
	case domain.ValueAdd, domain.ValueSubtract:
		if !(v.AdjustmentAmount != nil && *v.AdjustmentAmount > 0) && !(v.AdjustmentPercent != nil && *v.AdjustmentPercent > 0) {
			errs[FieldValueAdjust] = "Informe o valor ou o percentual do ajuste."
		}
	default:
		errs[FieldValueOperation] = "Operação de valor inválida."
	}
}

func trimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
