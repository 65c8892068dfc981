package calc

import (
	"strings"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/money"

	"github.com/shopspring/decimal"
)

// SuppliersResult summarizes the suppliers block.
type SuppliersResult struct {
	Linked             int     `json:"linked"`
	Unlinked           int     `json:"unlinked"`
	ReplacesPrimary    bool    `json:"replacesPrimary"`
	ParticipationTotal float64 `json:"participationTotal"`
	AssignedTotal      float64 `json:"assignedTotal"`
	HasEntries         bool    `json:"hasEntries"`
	ParticipationFull  bool    `json:"participationFull"`
}

// Suppliers counts the changes of the suppliers block.
func Suppliers(b *domain.SuppliersBlockData) SuppliersResult {
	if b == nil {
		return SuppliersResult{}
	}
	var pct, assigned decimal.Decimal
	for _, s := range b.LinkedSuppliers {
		pct = pct.Add(decimal.NewFromFloat(s.ParticipationPercent))
		assigned = assigned.Add(decimal.NewFromFloat(s.AssignedValue))
	}
	res := SuppliersResult{
		Linked:             len(b.LinkedSuppliers),
		Unlinked:           len(b.UnlinkedSupplierIDs),
		ReplacesPrimary:    strings.TrimSpace(b.NewPrimarySupplierID) != "",
		ParticipationTotal: pct.InexactFloat64(),
		AssignedTotal:      assigned.InexactFloat64(),
	}
	res.HasEntries = res.Linked > 0 || res.Unlinked > 0 || res.ReplacesPrimary
	res.ParticipationFull = res.Linked > 0 && money.Equal(res.ParticipationTotal, 100)
	return res
}

// ClausesResult summarizes the clauses block.
type ClausesResult struct {
	Filled     int  `json:"filled"`
	Total      int  `json:"total"`
	HasAmended bool `json:"hasAmended"`
}

// Clauses counts the filled text areas of the clauses block.
func Clauses(b *domain.ClausesBlockData) ClausesResult {
	res := ClausesResult{Total: 3}
	if b == nil {
		return res
	}
	for _, text := range []string{b.ExcludedClauses, b.IncludedClauses, b.AmendedClauses} {
		if strings.TrimSpace(text) != "" {
			res.Filled++
		}
	}
	res.HasAmended = strings.TrimSpace(b.AmendedClauses) != ""
	return res
}
