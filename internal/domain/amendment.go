package domain

import "fmt"

// ============================================================
// Amendment types (Tipos de Alteração Contratual)
// ============================================================

// AmendmentType identifies one category of contractual amendment.
// Values are catalog keys; they are never created at runtime.
type AmendmentType string

const (
	AmendmentTermExtension      AmendmentType = "aditivo_prazo"
	AmendmentQuantityIncrease   AmendmentType = "aditivo_quantidade"
	AmendmentQualitativeChange  AmendmentType = "aditivo_qualitativo"
	AmendmentQuantityReduction  AmendmentType = "supressao"
	AmendmentReadjustment       AmendmentType = "reajuste"
	AmendmentRepactuation       AmendmentType = "repactuacao"
	AmendmentRebalancing        AmendmentType = "reequilibrio"
	AmendmentApostille          AmendmentType = "apostilamento"
	AmendmentSupplierChange     AmendmentType = "alteracao_fornecedor"
	AmendmentUnitsChange        AmendmentType = "alteracao_unidades"
	AmendmentClausesChange      AmendmentType = "alteracao_clausulas"
	AmendmentSuspension         AmendmentType = "suspensao"
	AmendmentRenovationIncrease AmendmentType = "aditivo_reforma"
)

// ============================================================
// Blocks (sub-forms)
// ============================================================

// BlockKind is the identity of one of the five amendment sub-forms.
type BlockKind string

const (
	BlockClauses   BlockKind = "clauses"
	BlockTerm      BlockKind = "term"
	BlockValue     BlockKind = "value"
	BlockSuppliers BlockKind = "suppliers"
	BlockUnits     BlockKind = "units"
)

// BlockOrder is the display order of the blocks.
var BlockOrder = []BlockKind{BlockClauses, BlockTerm, BlockValue, BlockSuppliers, BlockUnits}

// ParseBlockKind validates a block identifier coming from the wire.
func ParseBlockKind(s string) (BlockKind, error) {
	switch k := BlockKind(s); k {
	case BlockClauses, BlockTerm, BlockValue, BlockSuppliers, BlockUnits:
		return k, nil
	}
	return "", &ErrValidation{Field: "block", Message: fmt.Sprintf("bloco desconhecido: %q", s)}
}

// ValueOperation is how the value block changes the contract total.
type ValueOperation string

const (
	ValueAdd      ValueOperation = "acrescentar"
	ValueSubtract ValueOperation = "diminuir"
	ValueReplace  ValueOperation = "substituir"
)

// TermOperation is how the term block changes the contract end date.
type TermOperation string

const (
	TermAdd               TermOperation = "acrescentar"
	TermSubtract          TermOperation = "diminuir"
	TermReplace           TermOperation = "substituir"
	TermSuspendFixed      TermOperation = "suspender_determinado"
	TermSuspendIndefinite TermOperation = "suspender_indeterminado"
)

// TimeUnit is the unit of a term delta.
type TimeUnit string

const (
	UnitDays   TimeUnit = "dias"
	UnitMonths TimeUnit = "meses"
	UnitYears  TimeUnit = "anos"
)

// ValueBlockData is the value (valor) sub-form.
// When Operation is Replace, NewTotalValue drives the computation;
// otherwise AdjustmentAmount wins over AdjustmentPercent when both are set.
type ValueBlockData struct {
	Operation         ValueOperation `json:"operation"`
	AdjustmentAmount  *float64       `json:"adjustmentAmount,omitempty"`
	AdjustmentPercent *float64       `json:"adjustmentPercent,omitempty"`
	NewTotalValue     *float64       `json:"newTotalValue,omitempty"`
	AutoCalculated    bool           `json:"autoCalculated"`
	Notes             string         `json:"notes,omitempty"`
}

// TermBlockData is the term (prazo) sub-form.
type TermBlockData struct {
	Operation    TermOperation `json:"operation"`
	TimeValue    *int          `json:"timeValue,omitempty"`
	TimeUnit     TimeUnit      `json:"timeUnit,omitempty"`
	NewEndDate   string        `json:"newEndDate,omitempty"` // YYYY-MM-DD
	IsIndefinite bool          `json:"isIndefinite"`
	Notes        string        `json:"notes,omitempty"`
}

// LinkedSupplier is a supplier added to the contract by the amendment.
type LinkedSupplier struct {
	CompanyID            string  `json:"companyId"`
	ParticipationPercent float64 `json:"participationPercent"`
	AssignedValue        float64 `json:"assignedValue"`
	Notes                string  `json:"notes,omitempty"`
}

// SuppliersBlockData is the suppliers (fornecedores) sub-form.
type SuppliersBlockData struct {
	LinkedSuppliers      []LinkedSupplier `json:"linkedSuppliers"`
	UnlinkedSupplierIDs  []string         `json:"unlinkedSupplierIds"`
	NewPrimarySupplierID string           `json:"newPrimarySupplierId,omitempty"`
	Notes                string           `json:"notes,omitempty"`
}

// LinkedUnit is a health unit linked to the contract by the amendment.
type LinkedUnit struct {
	HealthUnitID  string  `json:"healthUnitId"`
	AssignedValue float64 `json:"assignedValue"`
	Notes         string  `json:"notes,omitempty"`
}

// UnitsBlockData is the units (unidades de saúde) sub-form.
type UnitsBlockData struct {
	LinkedUnits     []LinkedUnit `json:"linkedUnits"`
	UnlinkedUnitIDs []string     `json:"unlinkedUnitIds"`
	Notes           string       `json:"notes,omitempty"`
}

// ClausesBlockData is the clauses (cláusulas) sub-form.
type ClausesBlockData struct {
	ExcludedClauses string `json:"excludedClauses,omitempty"`
	IncludedClauses string `json:"includedClauses,omitempty"`
	AmendedClauses  string `json:"amendedClauses,omitempty"`
}

// Blocks holds the configured sub-forms. A nil entry means "not yet configured".
type Blocks struct {
	Clauses   *ClausesBlockData   `json:"clauses,omitempty"`
	Term      *TermBlockData      `json:"term,omitempty"`
	Value     *ValueBlockData     `json:"value,omitempty"`
	Suppliers *SuppliersBlockData `json:"suppliers,omitempty"`
	Units     *UnitsBlockData     `json:"units,omitempty"`
}

// Has reports whether the block of the given kind is configured. An unknown
// kind is never configured.
func (b Blocks) Has(kind BlockKind) bool {
	switch kind {
	case BlockClauses:
		return b.Clauses != nil
	case BlockTerm:
		return b.Term != nil
	case BlockValue:
		return b.Value != nil
	case BlockSuppliers:
		return b.Suppliers != nil
	case BlockUnits:
		return b.Units != nil
	}
	return false
}

// Clear removes the block of the given kind. Unknown kinds are ignored.
func (b *Blocks) Clear(kind BlockKind) {
	switch kind {
	case BlockClauses:
		b.Clauses = nil
	case BlockTerm:
		b.Term = nil
	case BlockValue:
		b.Value = nil
	case BlockSuppliers:
		b.Suppliers = nil
	case BlockUnits:
		b.Units = nil
	}
}

// Clone returns a deep copy so callers cannot mutate a draft through a snapshot.
func (b Blocks) Clone() Blocks {
	out := Blocks{}
	if b.Clauses != nil {
		c := *b.Clauses
		out.Clauses = &c
	}
	if b.Term != nil {
		t := *b.Term
		t.TimeValue = cloneInt(b.Term.TimeValue)
		out.Term = &t
	}
	if b.Value != nil {
		v := *b.Value
		v.AdjustmentAmount = cloneFloat(b.Value.AdjustmentAmount)
		v.AdjustmentPercent = cloneFloat(b.Value.AdjustmentPercent)
		v.NewTotalValue = cloneFloat(b.Value.NewTotalValue)
		out.Value = &v
	}
	if b.Suppliers != nil {
		s := *b.Suppliers
		s.LinkedSuppliers = append([]LinkedSupplier(nil), b.Suppliers.LinkedSuppliers...)
		s.UnlinkedSupplierIDs = append([]string(nil), b.Suppliers.UnlinkedSupplierIDs...)
		out.Suppliers = &s
	}
	if b.Units != nil {
		u := *b.Units
		u.LinkedUnits = append([]LinkedUnit(nil), b.Units.LinkedUnits...)
		u.UnlinkedUnitIDs = append([]string(nil), b.Units.UnlinkedUnitIDs...)
		out.Units = &u
	}
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ============================================================
// Draft (aggregate root)
// ============================================================

// AmendmentStatus is the lifecycle status of an amendment.
// The client only ever writes Draft and AwaitingApproval.
type AmendmentStatus string

const (
	StatusDraft            AmendmentStatus = "rascunho"
	StatusAwaitingApproval AmendmentStatus = "aguardando_aprovacao"
	StatusActive           AmendmentStatus = "vigente"
	StatusRejected         AmendmentStatus = "rejeitada"
	StatusCancelled        AmendmentStatus = "cancelada"
)

// BasicInfo holds the free-text part of the draft.
type BasicInfo struct {
	Justification      string `json:"justification"`
	LegalBasisDocument string `json:"legalBasisDocument"`
	Notes              string `json:"notes"`
}

// AmendmentDraft is the amendment being edited.
type AmendmentDraft struct {
	ContractID    string          `json:"contractId"`
	SelectedTypes []AmendmentType `json:"selectedTypes"`
	BasicInfo     BasicInfo       `json:"basicInfo"`
	EffectiveDate string          `json:"effectiveDate"` // YYYY-MM-DD
	Blocks        Blocks          `json:"blocks"`
	Status        AmendmentStatus `json:"status"`
}

// Clone returns a deep copy of the draft.
func (d AmendmentDraft) Clone() AmendmentDraft {
	out := d
	out.SelectedTypes = append([]AmendmentType(nil), d.SelectedTypes...)
	out.Blocks = d.Blocks.Clone()
	return out
}

// ValidationErrors maps a dotted field path to a human-readable message.
type ValidationErrors map[string]string
