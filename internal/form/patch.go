package form

import (
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/catalog"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
)

// Patch is a partial update of a draft. Nil fields are left untouched.
// Blocks are replaced whole; Remove clears blocks after the replacements.
type Patch struct {
	SelectedTypes *[]domain.AmendmentType `json:"selectedTypes,omitempty"`
	BasicInfo     *BasicInfoPatch         `json:"basicInfo,omitempty"`
	EffectiveDate *string                 `json:"effectiveDate,omitempty"`
	Blocks        *BlocksPatch            `json:"blocks,omitempty"`
}

// BasicInfoPatch updates individual text fields of the draft.
type BasicInfoPatch struct {
	Justification      *string `json:"justification,omitempty"`
	LegalBasisDocument *string `json:"legalBasisDocument,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// BlocksPatch replaces or removes block sub-forms.
type BlocksPatch struct {
	Clauses   *domain.ClausesBlockData   `json:"clauses,omitempty"`
	Term      *domain.TermBlockData      `json:"term,omitempty"`
	Value     *domain.ValueBlockData     `json:"value,omitempty"`
	Suppliers *domain.SuppliersBlockData `json:"suppliers,omitempty"`
	Units     *domain.UnitsBlockData     `json:"units,omitempty"`
	Remove    []domain.BlockKind         `json:"remove,omitempty"`
}

// BlockPatch builds a patch replacing a single block.
// data must be the pointer type matching kind.
func BlockPatch(kind domain.BlockKind, data any) (Patch, bool) {
	bp := &BlocksPatch{}
	switch kind {
	case domain.BlockClauses:
		v, ok := data.(*domain.ClausesBlockData)
		if !ok || v == nil {
			return Patch{}, false
		}
		bp.Clauses = v
	case domain.BlockTerm:
		v, ok := data.(*domain.TermBlockData)
		if !ok || v == nil {
			return Patch{}, false
		}
		bp.Term = v
	case domain.BlockValue:
		v, ok := data.(*domain.ValueBlockData)
		if !ok || v == nil {
			return Patch{}, false
		}
		bp.Value = v
	case domain.BlockSuppliers:
		v, ok := data.(*domain.SuppliersBlockData)
		if !ok || v == nil {
			return Patch{}, false
		}
		bp.Suppliers = v
	case domain.BlockUnits:
		v, ok := data.(*domain.UnitsBlockData)
		if !ok || v == nil {
			return Patch{}, false
		}
		bp.Units = v
	default:
		return Patch{}, false
	}
	return Patch{Blocks: bp}, true
}

// check rejects payloads that cannot be represented in a draft.
func (p Patch) check() error {
	if p.SelectedTypes != nil {
		for _, t := range *p.SelectedTypes {
			if !catalog.Known(t) {
				return &domain.ErrValidation{Field: FieldSelectedTypes, Message: "tipo de alteração desconhecido: " + string(t)}
			}
		}
	}
	if p.Blocks != nil {
		for _, k := range p.Blocks.Remove {
			if _, err := domain.ParseBlockKind(string(k)); err != nil {
				return err
			}
		}
	}
	return nil
}

// touched lists the blocks the patch replaces or removes.
func (p Patch) touched() []domain.BlockKind {
	if p.Blocks == nil {
		return nil
	}
	b := p.Blocks
	var out []domain.BlockKind
	if b.Clauses != nil {
		out = append(out, domain.BlockClauses)
	}
	if b.Term != nil {
		out = append(out, domain.BlockTerm)
	}
	if b.Value != nil {
		out = append(out, domain.BlockValue)
	}
	if b.Suppliers != nil {
		out = append(out, domain.BlockSuppliers)
	}
	if b.Units != nil {
		out = append(out, domain.BlockUnits)
	}
	return append(out, b.Remove...)
}

// applyTo merges the patch into d. The patch values are copied so the caller
// keeps no alias into the draft.
func (p Patch) applyTo(d *domain.AmendmentDraft) {
	if p.SelectedTypes != nil {
		d.SelectedTypes = dedupe(*p.SelectedTypes)
	}
	if bi := p.BasicInfo; bi != nil {
		if bi.Justification != nil {
			d.BasicInfo.Justification = *bi.Justification
		}
		if bi.LegalBasisDocument != nil {
			d.BasicInfo.LegalBasisDocument = *bi.LegalBasisDocument
		}
		if bi.Notes != nil {
			d.BasicInfo.Notes = *bi.Notes
		}
	}
	if p.EffectiveDate != nil {
		d.EffectiveDate = *p.EffectiveDate
	}
	if b := p.Blocks; b != nil {
		incoming := domain.Blocks{
			Clauses:   b.Clauses,
			Term:      b.Term,
			Value:     b.Value,
			Suppliers: b.Suppliers,
			Units:     b.Units,
		}.Clone()
		if incoming.Clauses != nil {
			d.Blocks.Clauses = incoming.Clauses
		}
		if incoming.Term != nil {
			d.Blocks.Term = incoming.Term
		}
		if incoming.Value != nil {
			d.Blocks.Value = incoming.Value
		}
		if incoming.Suppliers != nil {
			d.Blocks.Suppliers = incoming.Suppliers
		}
		if incoming.Units != nil {
			d.Blocks.Units = incoming.Units
		}
		for _, k := range b.Remove {
			d.Blocks.Clear(k)
		}
	}
}

func dedupe(types []domain.AmendmentType) []domain.AmendmentType {
	seen := make(map[domain.AmendmentType]struct{}, len(types))
	out := make([]domain.AmendmentType, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
