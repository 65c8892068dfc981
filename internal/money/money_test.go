package money_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/money"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"thousands and decimal", "33.333,33", 33333.33, true},
		{"plain integer", "33333", 33333, true},
		{"decimal point", "123.45", 123.45, true},
		{"single decimal digit after dot", "10.5", 10.5, true},
		{"dot as thousands", "1.000", 1000, true},
		{"several dots", "1.234.567", 1234567, true},
		{"comma decimal only", "0,99", 0.99, true},
		{"leading comma", ",50", 0, false},
		{"currency prefix", "R$ 1.234,56", 1234.56, true},
		{"non breaking space", "R$ 10,00", 10, true},
		{"trailing comma", "12,", 0, false},
		{"trailing dot", "12.", 0, false},
		{"leading dot", ".5", 0, false},
		{"thousands without decimals", "1.234,", 0, false},
		{"empty", "", 0, false},
		{"only prefix", "R$ ", 0, false},
		{"negative", "-10,00", 0, false},
		{"letters", "abc", 0, false},
		{"exponent", "1e5", 0, false},
		{"two commas", "1,234,56", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := money.Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestParseField(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"number", `1500.5`, ptr(1500.5)},
		{"brazilian text", `"1.500,50"`, ptr(1500.5)},
		{"null", `null`, nil},
		{"empty", ``, nil},
		{"negative number", `-3`, nil},
		{"garbage text", `"dez reais"`, nil},
		{"object", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := money.ParseField(json.RawMessage(tt.raw))
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.0001)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", money.Format(1234.56))
	assert.Equal(t, "R$ 0,00", money.Format(0))
	assert.Equal(t, "R$ 1.000.000,00", money.Format(1_000_000))
	assert.Equal(t, "-R$ 150,00", money.Format(-150))
	assert.Equal(t, "25,00%", money.FormatPercent(25))
}

func TestRoundAndEqual(t *testing.T) {
	assert.Equal(t, 10.13, money.Round(10.125))
	assert.Equal(t, 0.0, money.Round(0.004))
	assert.True(t, money.Equal(100, 100.009))
	assert.False(t, money.Equal(100, 100.02))
}

func TestFormatParseRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("parse(format(a)) == a within one cent", prop.ForAll(
		func(a float64) bool {
			got, ok := money.Parse(money.Format(a))
			return ok && math.Abs(got-a) <= money.Tolerance
		},
		gen.Float64Range(0, 1e10),
	))

	properties.TestingRun(t)
}

func ptr(v float64) *float64 { return &v }
