package metrics

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d = decimal.RequireFromString

func TestAmortizedPaymentZeroRateIsPlainDivision(t *testing.T) {
	for _, p := range []int64{1000, 50000, 500000} {
		for _, n := range []int{12, 60, 180} {
			principal := decimal.NewFromInt(p)
			got := AmortizedPayment(principal, decimal.Zero, n)
			require.True(t, got.Computable)
			assert.True(t, got.Value.Equal(principal.Div(decimal.NewFromInt(int64(n)))), "P=%d N=%d got %s", p, n, got.Value)
		}
	}
}

func TestAmortizedPaymentTextbookValue(t *testing.T) {
	got := AmortizedPayment(d("500000"), d("6.0"), 120)
	require.True(t, got.Computable)
	assert.Equal(t, "5551.03", got.Rounded(2).Value.StringFixed(2))
	assert.True(t, got.Value.Sub(d("5551.025097")).Abs().LessThan(d("0.000001")), "got %s", got.Value)

	// one month repays principal plus one month of interest
	got = AmortizedPayment(d("1200"), d("12"), 1)
	require.True(t, got.Computable)
	assert.Equal(t, "1212.00", got.Rounded(2).Value.StringFixed(2))
}

func TestAmortizedPaymentNotComputable(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		months    int
	}{
		{"zero principal", decimal.Zero, d("6"), 120},
		{"negative principal", d("-1000"), d("6"), 120},
		{"zero term", d("1000"), d("6"), 0},
		{"negative term", d("1000"), decimal.Zero, -12},
		{"negative rate", d("1000"), d("-1"), 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmortizedPayment(tt.principal, tt.rate, tt.months)
			assert.False(t, got.Computable)
			assert.NotEmpty(t, got.Reason)
			assert.Equal(t, KindAmortizedPayment, got.Kind)
		})
	}
}

func TestUnitCostRequiresPositiveQuantity(t *testing.T) {
	for _, q := range []string{"0", "-1", "-320.5"} {
		for _, a := range []string{"0", "-50", "1600"} {
			got := UnitCost(d(a), d(q))
			assert.False(t, got.Computable, "amount %s quantity %s", a, q)
		}
	}

	got := UnitCost(d("1600"), d("320"))
	require.True(t, got.Computable)
	assert.Equal(t, "5.00", got.Rounded(2).Value.StringFixed(2))
}

func TestAveragePerPeriod(t *testing.T) {
	got := AveragePerPeriod(d("320"), d("30"))
	require.True(t, got.Computable)
	assert.Equal(t, "10.67", got.Rounded(2).Value.String())

	assert.False(t, AveragePerPeriod(d("320"), decimal.Zero).Computable)
}

func TestSystemSizeUsesInjectedConstants(t *testing.T) {
	c := DefaultConstants()

	got := SystemSize(d("320"), c)
	require.True(t, got.Computable)
	assert.Equal(t, "2.5", got.Value.String())

	c.SunHoursPerDay = d("4")
	c.Efficiency = d("1")
	c.Granularity = d("1")
	got = SystemSize(d("320"), c)
	require.True(t, got.Computable)
	assert.Equal(t, "3", got.Value.String())

	c.Granularity = d("0.25")
	got = SystemSize(d("300"), c)
	require.True(t, got.Computable)
	assert.Equal(t, "2.5", got.Value.String())

	assert.False(t, SystemSize(decimal.Zero, DefaultConstants()).Computable)
}

func TestSolarFollowOns(t *testing.T) {
	c := DefaultConstants()
	size := d("2.5")

	panels := PanelCount(size, c.PanelWatts)
	require.True(t, panels.Computable)
	assert.Equal(t, "8", panels.Value.String())

	cost := InvestmentCost(size, c.CostPerKW)
	require.True(t, cost.Computable)
	assert.Equal(t, "200000", cost.Value.String())

	production := MonthlyProduction(size, c)
	require.True(t, production.Computable)
	assert.Equal(t, "350.625", production.Value.String())

	assert.False(t, PanelCount(decimal.Zero, c.PanelWatts).Computable)
}

func TestEmissions(t *testing.T) {
	c := DefaultConstants()

	monthly := MonthlyCO2(d("320"), c.CO2PerKWh)
	require.True(t, monthly.Computable)
	assert.Equal(t, "252.8", monthly.Value.String())

	annual := AnnualCO2(d("320"), c.CO2PerKWh)
	require.True(t, annual.Computable)
	assert.Equal(t, "3033.6", annual.Value.String())

	trees := TreesToOffset(annual.Value, c.TreeCO2PerYear)
	require.True(t, trees.Computable)
	assert.Equal(t, "145", trees.Value.String())
}

func TestBillCosts(t *testing.T) {
	assert.Equal(t, "19200", AnnualCost(d("1600")).Value.String())
	assert.Equal(t, "53.33", DailyCost(d("1600"), d("30")).Rounded(2).Value.String())

	metered := MeteredConsumption(d("12345"), d("12665"))
	require.True(t, metered.Computable)
	assert.Equal(t, "320", metered.Value.String())

	assert.False(t, MeteredConsumption(d("12665"), d("12345")).Computable)
}

func TestMaxLoanAmount(t *testing.T) {
	got := MaxLoanAmount(d("45000"), d("5"))
	require.True(t, got.Computable)
	assert.Equal(t, "225000", got.Value.String())

	assert.False(t, MaxLoanAmount(decimal.Zero, d("5")).Computable)
}

func TestResultRoundedHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "2.35", computed(KindUnitCost, d("2.345")).Rounded(2).Value.String())
	assert.Equal(t, "-2.35", computed(KindUnitCost, d("-2.345")).Rounded(2).Value.String())

	nc := notComputable(KindUnitCost, "quantity must be positive")
	assert.Equal(t, nc, nc.Rounded(2))
}

func TestResultMarshalJSON(t *testing.T) {
	data, err := json.Marshal(computed(KindUnitCost, d("5")).Rounded(2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind": "unit_cost", "value": "5.00", "computable": true}`, string(data))

	data, err = json.Marshal(notComputable(KindUnitCost, "quantity must be positive"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind": "unit_cost", "value": null, "computable": false, "reason": "quantity must be positive"}`, string(data))
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("carbon_credits")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}
