package ratetable

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func dp(v string) *decimal.Decimal {
	dec := decimal.RequireFromString(v)
	return &dec
}

func TestCovers_HalfOpenWindow(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	table := RateTable{EffectiveFrom: from, EffectiveTo: &to}

	assert.False(t, table.Covers(from.AddDate(0, 0, -1)))
	assert.True(t, table.Covers(from))
	assert.True(t, table.Covers(to.AddDate(0, 0, -1)))
	// EffectiveTo is exclusive.
	assert.False(t, table.Covers(to))

	open := RateTable{EffectiveFrom: from}
	assert.True(t, open.Covers(time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)))
}

func TestEmployeeShare_RateAndCap(t *testing.T) {
	table := RateTable{
		EmployeeRate: d("0.06"),
		EmployeeCap:  dp("1800"),
	}

	// Below the cap the rate applies rounded to centavos.
	assert.True(t, table.EmployeeShare(d("20000")).Equal(d("1200")))
	// 6% of 32000 = 1920, capped at 1800.
	assert.True(t, table.EmployeeShare(d("32000")).Equal(d("1800")))

	uncapped := RateTable{EmployeeRate: d("0.06")}
	assert.True(t, uncapped.EmployeeShare(d("32000")).Equal(d("1920")))
}

func TestEmployerShare_IndependentCap(t *testing.T) {
	table := RateTable{
		EmployeeRate: d("0.06"),
		EmployerRate: d("0.085"),
		EmployeeCap:  dp("1800"),
		EmployerCap:  dp("2550"),
	}

	assert.True(t, table.EmployerShare(d("20000")).Equal(d("1700")))
	assert.True(t, table.EmployerShare(d("32000")).Equal(d("2550")))
}

func TestTaxFor_ProgressiveBrackets(t *testing.T) {
	table := RateTable{
		Kind: KindTaxBrackets,
		Brackets: []Bracket{
			{Over: d("0"), UpTo: dp("20833"), BaseTax: d("0"), Rate: d("0")},
			{Over: d("20833"), UpTo: dp("33332"), BaseTax: d("0"), Rate: d("0.15")},
			{Over: d("33332"), UpTo: dp("66666"), BaseTax: d("1874.85"), Rate: d("0.20")},
			{Over: d("66666"), UpTo: nil, BaseTax: d("8541.65"), Rate: d("0.25")},
		},
	}

	tests := []struct {
		income string
		want   string
	}{
		{"0", "0"},
		{"15000", "0"},
		{"20833", "0"},
		{"28200", "1105.05"}, // (28200 - 20833) * 0.15
		{"33332", "1874.85"},
		{"50000", "5208.45"},  // 1874.85 + (50000 - 33332) * 0.20
		{"100000", "16875.15"}, // 8541.65 + (100000 - 66666) * 0.25
	}
	for _, tt := range tests {
		got := table.TaxFor(d(tt.income))
		assert.True(t, got.Equal(d(tt.want)), "income %s: got %s want %s", tt.income, got, tt.want)
	}

	// Negative taxable income never yields a refund.
	assert.True(t, table.TaxFor(d("-500")).IsZero())
}
