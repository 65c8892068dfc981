// Package money parses and formats Brazilian currency text (R$ 1.234,56).
//
// Parsing never fails loudly: malformed, empty or negative input is reported
// as absent so the form validator can flag the field as missing.
package money

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Tolerance is the largest difference still considered equal between two amounts.
const Tolerance = 0.01

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Parse converts Brazilian-formatted text into a non-negative amount.
//
// A comma marks the decimal part and every dot before it is a thousands
// separator ("33.333,33"). Without a comma, several dots or a final dot
// followed by more than two digits are thousands separators ("1.000",
// "1.234.567"); a single dot with at most two trailing digits is a decimal
// point ("123.45"). A decimal separator needs digits on both sides.
func Parse(text string) (float64, bool) {
	d, ok := ParseDecimal(text)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParseDecimal is Parse returning the exact decimal value.
func ParseDecimal(text string) (decimal.Decimal, bool) {
	s := clean(text)
	if s == "" || strings.HasPrefix(s, "-") {
		return decimal.Zero, false
	}

	var (
		intPart, fracPart string
		decimalSep        bool
	)
	if i := strings.LastIndex(s, ","); i >= 0 {
		intPart = strings.ReplaceAll(s[:i], ".", "")
		fracPart = s[i+1:]
		decimalSep = true
	} else {
		dots := strings.Count(s, ".")
		switch {
		case dots == 0:
			intPart = s
		case dots > 1:
			intPart = strings.ReplaceAll(s, ".", "")
		default:
			i := strings.Index(s, ".")
			if len(s)-i-1 > 2 {
				intPart = s[:i] + s[i+1:]
			} else {
				intPart, fracPart = s[:i], s[i+1:]
				decimalSep = true
			}
		}
	}

	if !digitsOnly(intPart) || !digitsOnly(fracPart) || intPart == "" {
		return decimal.Zero, false
	}
	// "12," and ",50" are half-typed amounts
	if decimalSep && fracPart == "" {
		return decimal.Zero, false
	}
	normalized := intPart
	if fracPart != "" {
		normalized += "." + fracPart
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseField decodes an optional JSON amount that may arrive either as a
// number or as Brazilian-formatted text. Null, malformed and negative values
// yield nil.
func ParseField(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		v, ok := Parse(text)
		if !ok {
			return nil
		}
		return &v
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || v < 0 {
		return nil
	}
	return &v
}

// Round rounds to cents, half away from zero.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Equal reports whether two amounts differ by less than one cent.
func Equal(a, b float64) bool {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().LessThan(decimal.NewFromFloat(Tolerance))
}

// Format renders an amount as "R$ 1.234,56".
func Format(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "R$ " + printer.Sprint(number.Decimal(Round(v), number.Scale(2)))
}

// FormatPercent renders a percentage as "12,50%".
func FormatPercent(v float64) string {
	return printer.Sprint(number.Decimal(v, number.Scale(2))) + "%"
}

func clean(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "R$")
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\t':
			return -1
		}
		return r
	}, s)
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
