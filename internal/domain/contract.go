package domain

// ============================================================
// Contract context (read-only data supplied by the Contracts API)
// ============================================================

// ContractFinancials is the financial snapshot of a contract.
type ContractFinancials struct {
	TotalValue         float64 `json:"totalValue"`
	CurrentBalance     float64 `json:"currentBalance"`
	ExecutedPercentage float64 `json:"executedPercentage"`
}

// ContractTerms holds the contract validity period.
type ContractTerms struct {
	StartDate string `json:"startDate"` // YYYY-MM-DD
	EndDate   string `json:"endDate"`   // YYYY-MM-DD
	IsActive  bool   `json:"isActive"`
}

// Supplier is a company linked to a contract.
type Supplier struct {
	CompanyID            string  `json:"companyId"`
	Name                 string  `json:"name"`
	Document             string  `json:"document"` // CNPJ
	ParticipationPercent float64 `json:"participationPercent"`
}

// ContractSuppliers lists the suppliers of a contract.
type ContractSuppliers struct {
	MainSupplier *Supplier  `json:"mainSupplier,omitempty"`
	Suppliers    []Supplier `json:"suppliers"`
}

// HealthUnit is a health facility already linked to a contract.
type HealthUnit struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CurrentValue float64 `json:"currentValue"`
}

// ContractUnits lists the units of a contract.
type ContractUnits struct {
	DemandingUnit *HealthUnit  `json:"demandingUnit,omitempty"`
	ManagingUnit  *HealthUnit  `json:"managingUnit,omitempty"`
	LinkedUnits   []HealthUnit `json:"linkedUnits"`
}

// ContractContext aggregates everything the amendment engine reads about a contract.
// Any part may be nil while it is loading or after its fetch failed.
type ContractContext struct {
	ContractID string              `json:"contractId"`
	Financials *ContractFinancials `json:"financials,omitempty"`
	Terms      *ContractTerms      `json:"terms,omitempty"`
	Suppliers  *ContractSuppliers  `json:"suppliers,omitempty"`
	Units      *ContractUnits      `json:"units,omitempty"`
	IsLoading  bool                `json:"isLoading"`
	Missing    []string            `json:"missing,omitempty"`
}

// TotalValue returns the contract total, or 0 when financials are unavailable.
func (c *ContractContext) TotalValue() float64 {
	if c == nil || c.Financials == nil {
		return 0
	}
	return c.Financials.TotalValue
}

// EndDate returns the current contract end date, or "" when unknown.
func (c *ContractContext) EndDate() string {
	if c == nil || c.Terms == nil {
		return ""
	}
	return c.Terms.EndDate
}

// StartDate returns the contract start date, or "" when unknown.
func (c *ContractContext) StartDate() string {
	if c == nil || c.Terms == nil {
		return ""
	}
	return c.Terms.StartDate
}

// LinkedUnits returns the units already linked to the contract.
func (c *ContractContext) LinkedUnits() []HealthUnit {
	if c == nil || c.Units == nil {
		return nil
	}
	return c.Units.LinkedUnits
}

// ============================================================
// Legal limit alerts
// ============================================================

// LimitSeverity grades a legal limit breach.
type LimitSeverity string

const (
	SeverityWarning  LimitSeverity = "warning"
	SeverityCritical LimitSeverity = "critical"
)

// LimitEntry describes one breached legal limit.
type LimitEntry struct {
	Kind              string        `json:"kind"` // valor, prazo
	LegalLimitPercent float64       `json:"legalLimitPercent"`
	CurrentPercent    float64       `json:"currentPercent"`
	Severity          LimitSeverity `json:"severity"`
	Notes             string        `json:"notes,omitempty"`
}

// LegalLimitAlert is produced when an amendment exceeds a legal threshold and
// must be explicitly confirmed before submission.
type LegalLimitAlert struct {
	Limits         []LimitEntry `json:"limits"`
	LegalBasisText string       `json:"legalBasisText,omitempty"`
	PendingID      string       `json:"pendingId,omitempty"` // server-side pending amendment, when raised by the API
}

// Equal reports whether two alerts describe the same breaches.
func (a *LegalLimitAlert) Equal(b *LegalLimitAlert) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Limits) != len(b.Limits) || a.PendingID != b.PendingID {
		return false
	}
	for i := range a.Limits {
		if a.Limits[i] != b.Limits[i] {
			return false
		}
	}
	return true
}

// ============================================================
// Submission API
// ============================================================

// SubmissionResult is returned by the Amendments API on submit or confirm.
// Exactly one of Amendment or Alert is set.
type SubmissionResult struct {
	Amendment *SubmittedAmendment `json:"amendment,omitempty"`
	Alert     *LegalLimitAlert    `json:"alert,omitempty"`
}

// SubmittedAmendment identifies an amendment accepted by the API.
type SubmittedAmendment struct {
	ID     string          `json:"id"`
	Status AmendmentStatus `json:"status"`
}

// SubmissionRequest is the wire payload sent to the Amendments API.
type SubmissionRequest struct {
	IdempotencyKey            string         `json:"idempotencyKey"`
	Draft                     AmendmentDraft `json:"draft"`
	LimitConfirmed            bool           `json:"limitConfirmed"`
	ConfirmationJustification string         `json:"confirmationJustification,omitempty"`
}
