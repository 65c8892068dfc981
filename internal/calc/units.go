package calc

import (
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/money"

	"github.com/shopspring/decimal"
)

// DistributionStatus is the advisory banner state of the units block.
type DistributionStatus string

const (
	DistributionIncomplete DistributionStatus = "incomplete" // must distribute more
	DistributionExceeded   DistributionStatus = "exceeded"   // exceeds contract value
	DistributionComplete   DistributionStatus = "complete"
)

// UnitsInput feeds the units distribution calculator.
type UnitsInput struct {
	ContractTotalValue float64             `json:"contractTotalValue"`
	AlreadyLinked      []domain.HealthUnit `json:"alreadyLinkedUnits"`
	LinkedUnits        []domain.LinkedUnit `json:"linkedUnits"`
	UnlinkedUnitIDs    []string            `json:"unlinkedUnitIds"`
}

// UnitsResult is the outcome of the units distribution calculator.
type UnitsResult struct {
	AlreadyLinkedTotal float64            `json:"alreadyLinkedTotal"` // every unit linked before the amendment
	RetainedTotal      float64            `json:"retainedTotal"`      // already linked minus the unlinked ones
	NewlyLinkedTotal   float64            `json:"newlyLinkedTotal"`
	UnlinkedValue      float64            `json:"unlinkedValue"`
	TotalDistributed   float64            `json:"totalDistributed"`
	PercentDistributed float64            `json:"percentDistributed"`
	Remaining          float64            `json:"remaining"`
	IsComplete         bool               `json:"isComplete"`
	Status             DistributionStatus `json:"status"`
}

// Units checks how much of the contract value is distributed across units.
// The result is advisory; it never blocks submission on its own.
func Units(in UnitsInput) UnitsResult {
	unlinked := make(map[string]struct{}, len(in.UnlinkedUnitIDs))
	for _, id := range in.UnlinkedUnitIDs {
		unlinked[id] = struct{}{}
	}

	var alreadyAll, unlinkedValue, newly decimal.Decimal
	for _, u := range in.AlreadyLinked {
		v := decimal.NewFromFloat(u.CurrentValue)
		alreadyAll = alreadyAll.Add(v)
		if _, ok := unlinked[u.ID]; ok {
			unlinkedValue = unlinkedValue.Add(v)
		}
	}
	for _, u := range in.LinkedUnits {
		newly = newly.Add(decimal.NewFromFloat(u.AssignedValue))
	}

	contract := decimal.NewFromFloat(in.ContractTotalValue)
	distributed := alreadyAll.Add(newly).Sub(unlinkedValue)
	remaining := contract.Sub(distributed)

	var pct decimal.Decimal
	if contract.IsPositive() {
		pct = distributed.Div(contract).Mul(hundred).Round(2)
	}

	complete := remaining.Abs().LessThan(decimal.NewFromFloat(money.Tolerance))
	status := DistributionComplete
	switch {
	case complete:
	case remaining.IsPositive():
		status = DistributionIncomplete
	default:
		status = DistributionExceeded
	}

	return UnitsResult{
		AlreadyLinkedTotal: alreadyAll.InexactFloat64(),
		RetainedTotal:      alreadyAll.Sub(unlinkedValue).InexactFloat64(),
		NewlyLinkedTotal:   newly.InexactFloat64(),
		UnlinkedValue:      unlinkedValue.InexactFloat64(),
		TotalDistributed:   distributed.InexactFloat64(),
		PercentDistributed: pct.InexactFloat64(),
		Remaining:          remaining.InexactFloat64(),
		IsComplete:         complete,
		Status:             status,
	}
}

// UnitsFromBlock runs Units over a configured units block and the contract context.
func UnitsFromBlock(b *domain.UnitsBlockData, ctx *domain.ContractContext) UnitsResult {
	in := UnitsInput{
		ContractTotalValue: ctx.TotalValue(),
		AlreadyLinked:      ctx.LinkedUnits(),
	}
	if b != nil {
		in.LinkedUnits = b.LinkedUnits
		in.UnlinkedUnitIDs = b.UnlinkedUnitIDs
	}
	return Units(in)
}
