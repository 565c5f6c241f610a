package metrics

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	monthsPerYear = 12
	// ratePrecision bounds the digits carried by the monthly rate and its
	// compound growth factor.
	ratePrecision = 32
)

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(monthsPerYear)
	hundred = decimal.NewFromInt(100)
	wattsKW = decimal.NewFromInt(1000)
)

// AveragePerPeriod is quantity / periodDays.
func AveragePerPeriod(quantity, periodDays decimal.Decimal) Result {
	if !periodDays.IsPositive() {
		return notComputable(KindAverageDailyConsumption, "period length must be positive")
	}
	return computed(KindAverageDailyConsumption, quantity.Div(periodDays))
}

// UnitCost is amount / quantity, defined only for a strictly positive quantity.
func UnitCost(amount, quantity decimal.Decimal) Result {
	if !quantity.IsPositive() {
		return notComputable(KindUnitCost, "quantity must be positive")
	}
	return computed(KindUnitCost, amount.Div(quantity))
}

func DailyCost(amount, periodDays decimal.Decimal) Result {
	if !periodDays.IsPositive() {
		return notComputable(KindDailyCost, "period length must be positive")
	}
	return computed(KindDailyCost, amount.Div(periodDays))
}

// AnnualCost projects one bill over twelve months.
func AnnualCost(amount decimal.Decimal) Result {
	return computed(KindAnnualCost, amount.Mul(twelve))
}

// MeteredConsumption is current - previous. A meter running backwards means
// one of the readings was misread.
func MeteredConsumption(previous, current decimal.Decimal) Result {
	diff := current.Sub(previous)
	if diff.IsNegative() {
		return notComputable(KindMeteredConsumption, "current reading is below previous reading")
	}
	return computed(KindMeteredConsumption, diff)
}

// SystemSize is quantity / (sun hours * days * efficiency), rounded to the
// nearest multiple of c.Granularity.
func SystemSize(quantity decimal.Decimal, c Constants) Result {
	if !quantity.IsPositive() {
		return notComputable(KindSolarSystemSize, "consumption must be positive")
	}
	yield := c.SunHoursPerDay.Mul(c.DaysPerPeriod).Mul(c.Efficiency)
	if !yield.IsPositive() || !c.Granularity.IsPositive() {
		return notComputable(KindSolarSystemSize, "sizing constants must be positive")
	}
	raw := quantity.Div(yield)
	return computed(KindSolarSystemSize, raw.Div(c.Granularity).Round(0).Mul(c.Granularity))
}

// PanelCount is the number of whole panels reaching sizeKW.
func PanelCount(sizeKW, panelWatts decimal.Decimal) Result {
	if !sizeKW.IsPositive() {
		return notComputable(KindSolarPanelCount, "system size must be positive")
	}
	if !panelWatts.IsPositive() {
		return notComputable(KindSolarPanelCount, "panel wattage must be positive")
	}
	return computed(KindSolarPanelCount, sizeKW.Mul(wattsKW).Div(panelWatts).Ceil())
}

func InvestmentCost(sizeKW, costPerKW decimal.Decimal) Result {
	if !sizeKW.IsPositive() {
		return notComputable(KindSolarInvestmentCost, "system size must be positive")
	}
	return computed(KindSolarInvestmentCost, sizeKW.Mul(costPerKW))
}

// MonthlyProduction is the energy a system of sizeKW yields in one period.
func MonthlyProduction(sizeKW decimal.Decimal, c Constants) Result {
	if !sizeKW.IsPositive() {
		return notComputable(KindMonthlySolarProduction, "system size must be positive")
	}
	return computed(KindMonthlySolarProduction, sizeKW.Mul(c.SunHoursPerDay).Mul(c.DaysPerPeriod).Mul(c.Efficiency))
}

func MonthlyCO2(quantity, kgPerKWh decimal.Decimal) Result {
	if quantity.IsNegative() {
		return notComputable(KindMonthlyCO2, "consumption must not be negative")
	}
	return computed(KindMonthlyCO2, quantity.Mul(kgPerKWh))
}

func AnnualCO2(quantity, kgPerKWh decimal.Decimal) Result {
	if quantity.IsNegative() {
		return notComputable(KindAnnualCO2, "consumption must not be negative")
	}
	return computed(KindAnnualCO2, quantity.Mul(kgPerKWh).Mul(twelve))
}

// TreesToOffset is the whole number of trees absorbing annualKg in a year.
func TreesToOffset(annualKg, kgPerTree decimal.Decimal) Result {
	if annualKg.IsNegative() {
		return notComputable(KindTreesToOffset, "emissions must not be negative")
	}
	if !kgPerTree.IsPositive() {
		return notComputable(KindTreesToOffset, "absorption per tree must be positive")
	}
	return computed(KindTreesToOffset, annualKg.Div(kgPerTree).Ceil())
}

func MaxLoanAmount(salary, multiple decimal.Decimal) Result {
	if !salary.IsPositive() {
		return notComputable(KindMaxLoanAmount, "salary must be positive")
	}
	return computed(KindMaxLoanAmount, salary.Mul(multiple))
}

// AmortizedPayment is the fixed monthly payment repaying principal over
// months at annualRate percent:
//
//	P * r * (1+r)^N / ((1+r)^N - 1), r = R / 100 / 12
//
// A zero rate degrades to P / N.
func AmortizedPayment(principal, annualRate decimal.Decimal, months int) Result {
	switch {
	case !principal.IsPositive():
		return notComputable(KindAmortizedPayment, "principal must be positive")
	case months <= 0:
		return notComputable(KindAmortizedPayment, "term must be at least one month")
	case months > math.MaxInt32:
		return notComputable(KindAmortizedPayment, "term is too long")
	case annualRate.IsNegative():
		return notComputable(KindAmortizedPayment, "rate must not be negative")
	}

	n := decimal.NewFromInt(int64(months))
	if annualRate.IsZero() {
		return computed(KindAmortizedPayment, principal.Div(n))
	}

	r := annualRate.DivRound(hundred.Mul(twelve), ratePrecision)
	growth, err := one.Add(r).PowInt32(int32(months))
	if err != nil {
		return notComputable(KindAmortizedPayment, err.Error())
	}
	growth = growth.Round(ratePrecision)

	payment := principal.Mul(r).Mul(growth).Div(growth.Sub(one))
	return computed(KindAmortizedPayment, payment)
}
