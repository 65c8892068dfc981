package blocks

import (
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/form"
)

// Orchestrator keeps the expand/collapse state of the block list.
// The state is seeded once, the first time a non-empty slot list is seen,
// with every mandatory block expanded. Later type changes never reset it.
type Orchestrator struct {
	seeded   bool
	expanded map[domain.BlockKind]bool
}

// NewOrchestrator returns an unseeded orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{expanded: make(map[domain.BlockKind]bool)}
}

// Sync seeds the expand state from the current slots if not done yet.
func (o *Orchestrator) Sync(slots []Slot) {
	if o.seeded || len(slots) == 0 {
		return
	}
	for _, s := range slots {
		o.expanded[s.Kind] = s.Mandatory
	}
	o.seeded = true
}

// Toggle flips the expand state of a block and returns the new state.
func (o *Orchestrator) Toggle(kind domain.BlockKind) bool {
	o.expanded[kind] = !o.expanded[kind]
	return o.expanded[kind]
}

// Expanded reports whether a block is expanded.
func (o *Orchestrator) Expanded(kind domain.BlockKind) bool { return o.expanded[kind] }

// View resolves the slots of the selected types and returns their summaries
// with the expand state applied.
func (o *Orchestrator) View(types []domain.AmendmentType, b domain.Blocks, ctx *domain.ContractContext) []Summary {
	o.Sync(Resolve(types))
	out := Summarize(types, b, ctx)
	for i := range out {
		out[i].Expanded = o.expanded[out[i].Kind]
	}
	return out
}

// Route turns a sub-form edit into a draft patch. data must be the block
// payload pointer matching kind.
func (o *Orchestrator) Route(kind domain.BlockKind, data any) (form.Patch, error) {
	p, ok := form.BlockPatch(kind, data)
	if !ok {
		return form.Patch{}, &domain.ErrValidation{Field: form.BlockField(kind), Message: "dados do bloco incompatíveis com o tipo"}
	}
	return p, nil
}
