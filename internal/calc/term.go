package calc

import (
	"math"
	"time"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
)

// DateLayout is the wire format of every date in the amendment form.
const DateLayout = "2006-01-02"

// TermInput feeds the term block calculator.
type TermInput struct {
	Operation   domain.TermOperation `json:"operation"`
	BaseEndDate string               `json:"baseEndDate"`
	StartDate   string               `json:"startDate,omitempty"`
	TimeValue   *int                 `json:"timeValue,omitempty"`
	TimeUnit    domain.TimeUnit      `json:"timeUnit,omitempty"`
	NewEndDate  string               `json:"newEndDate,omitempty"` // Replace only
	MaxYears    int                  `json:"maxYears,omitempty"`   // 0 disables the duration check
}

// TermResult is the outcome of the term block calculator.
type TermResult struct {
	NewEndDate     string  `json:"newEndDate,omitempty"`
	DeltaDays      int     `json:"deltaDays"`
	DurationYears  float64 `json:"durationYears,omitempty"`
	DurationPct    float64 `json:"durationPercentOfMax,omitempty"`
	ExceedsMaxTerm bool    `json:"exceedsMaxTerm"`
	Computed       bool    `json:"computed"`
}

// Term computes the new end date of a term change.
//
// Months and years use time.AddDate normalization: adding one month to
// January 31 yields March 3 (March 2 in leap years). Replace echoes the
// explicit date; both suspension operations produce no date.
func Term(in TermInput) TermResult {
	var end time.Time
	switch in.Operation {
	case domain.TermAdd, domain.TermSubtract:
		base, ok := parseDate(in.BaseEndDate)
		if !ok || in.TimeValue == nil || *in.TimeValue <= 0 {
			return TermResult{}
		}
		n := *in.TimeValue
		if in.Operation == domain.TermSubtract {
			n = -n
		}
		switch in.TimeUnit {
		case domain.UnitDays:
			end = base.AddDate(0, 0, n)
		case domain.UnitMonths:
			end = base.AddDate(0, n, 0)
		case domain.UnitYears:
			end = base.AddDate(n, 0, 0)
		default:
			return TermResult{}
		}
	case domain.TermReplace:
		d, ok := parseDate(in.NewEndDate)
		if !ok {
			return TermResult{}
		}
		end = d
	case domain.TermSuspendFixed, domain.TermSuspendIndefinite:
		return TermResult{}
	default:
		return TermResult{}
	}

	res := TermResult{NewEndDate: end.Format(DateLayout), Computed: true}
	if base, ok := parseDate(in.BaseEndDate); ok {
		res.DeltaDays = daysBetween(base, end)
	}
	if start, ok := parseDate(in.StartDate); ok && in.MaxYears > 0 {
		maxEnd := start.AddDate(in.MaxYears, 0, 0)
		days := daysBetween(start, end)
		maxDays := daysBetween(start, maxEnd)
		res.DurationYears = math.Round(float64(days)/365.25*100) / 100
		if maxDays > 0 {
			res.DurationPct = math.Round(float64(days)/float64(maxDays)*10000) / 100
		}
		res.ExceedsMaxTerm = end.After(maxEnd)
	}
	return res
}

// TermFromBlock runs Term over a configured term block.
func TermFromBlock(b *domain.TermBlockData, baseEndDate, startDate string, maxYears int) TermResult {
	if b == nil {
		return TermResult{}
	}
	return Term(TermInput{
		Operation:   b.Operation,
		BaseEndDate: baseEndDate,
		StartDate:   startDate,
		TimeValue:   b.TimeValue,
		TimeUnit:    b.TimeUnit,
		NewEndDate:  b.NewEndDate,
		MaxYears:    maxYears,
	})
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		// the contracts API sometimes sends full timestamps
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, false
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return t, true
}

func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
