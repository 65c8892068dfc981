// Package calc holds the per-block calculators of the amendment form.
// Every function is pure and never fails: insufficient or malformed input
// produces a zero result with Computed set to false.
package calc

import (
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ValueInput feeds the value block calculator.
// Amount takes precedence over Percent; NewTotal is only read for Replace.
type ValueInput struct {
	Operation         domain.ValueOperation `json:"operation"`
	BaseValue         float64               `json:"baseValue"`
	Amount            *float64              `json:"adjustmentAmount,omitempty"`
	Percent           *float64              `json:"adjustmentPercent,omitempty"`
	NewTotal          *float64              `json:"newTotalValue,omitempty"`
	LegalLimitPercent float64               `json:"legalLimitPercent"`
}

// ValueResult is the outcome of the value block calculator.
// For Replace, AdjustmentAmount and AdjustmentPercent are signed.
type ValueResult struct {
	AdjustmentAmount  float64 `json:"adjustmentAmount"`
	AdjustmentPercent float64 `json:"adjustmentPercent"`
	NewTotalValue     float64 `json:"newTotalValue"`
	ImpactPercent     float64 `json:"impactPercent"`
	ExceedsLimit      bool    `json:"exceedsLimit"`
	Computed          bool    `json:"computed"`
}

// Value computes the adjustment, percentage and new total of a value change.
func Value(in ValueInput) ValueResult {
	if in.BaseValue <= 0 {
		return ValueResult{}
	}
	base := decimal.NewFromFloat(in.BaseValue)

	var amount, pct, total decimal.Decimal
	switch in.Operation {
	case domain.ValueAdd, domain.ValueSubtract:
		switch {
		case positive(in.Amount):
			amount = decimal.NewFromFloat(*in.Amount).Round(2)
			pct = amount.Div(base).Mul(hundred)
		case positive(in.Percent):
			pct = decimal.NewFromFloat(*in.Percent)
			amount = base.Mul(pct).Div(hundred).Round(2)
		default:
			return ValueResult{}
		}
		if in.Operation == domain.ValueAdd {
			total = base.Add(amount)
		} else {
			total = base.Sub(amount)
		}
	case domain.ValueReplace:
		if !positive(in.NewTotal) {
			return ValueResult{}
		}
		total = decimal.NewFromFloat(*in.NewTotal).Round(2)
		amount = total.Sub(base)
		pct = amount.Div(base).Mul(hundred)
	default:
		return ValueResult{}
	}

	impact := pct.Abs()
	limit := decimal.NewFromFloat(in.LegalLimitPercent)
	return ValueResult{
		AdjustmentAmount:  amount.InexactFloat64(),
		AdjustmentPercent: pct.Round(4).InexactFloat64(),
		NewTotalValue:     total.InexactFloat64(),
		ImpactPercent:     impact.Round(4).InexactFloat64(),
		ExceedsLimit:      limit.IsPositive() && impact.GreaterThan(limit),
		Computed:          true,
	}
}

// ValueFromBlock runs Value over a configured value block.
func ValueFromBlock(b *domain.ValueBlockData, baseValue, legalLimit float64) ValueResult {
	if b == nil {
		return ValueResult{}
	}
	return Value(ValueInput{
		Operation:         b.Operation,
		BaseValue:         baseValue,
		Amount:            b.AdjustmentAmount,
		Percent:           b.AdjustmentPercent,
		NewTotal:          b.NewTotalValue,
		LegalLimitPercent: legalLimit,
	})
}

func positive(p *float64) bool {
	return p != nil && *p > 0
}
