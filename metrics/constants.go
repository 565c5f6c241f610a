package metrics

import (
	"errors"
	"fmt"

	"github.com/Aashish23092/ocr-green-finance/extractor"
	"github.com/shopspring/decimal"
)

// Bindings names the record fields each metric reads.
type Bindings struct {
	Quantity        extractor.FieldID
	Amount          extractor.FieldID
	Salary          extractor.FieldID
	PeriodDays      extractor.FieldID
	PreviousReading extractor.FieldID
	CurrentReading  extractor.FieldID
}

// Constants are the environmental and financial inputs the formulas take
// besides the record itself.
type Constants struct {
	SunHoursPerDay     decimal.Decimal
	DaysPerPeriod      decimal.Decimal
	Efficiency         decimal.Decimal
	Granularity        decimal.Decimal // kW
	PanelWatts         decimal.Decimal
	CostPerKW          decimal.Decimal
	CO2PerKWh          decimal.Decimal // kg
	TreeCO2PerYear     decimal.Decimal // kg absorbed by one tree
	BillingCycleDays   decimal.Decimal
	LoanSalaryMultiple decimal.Decimal

	// Precision is the number of decimals results are presented with.
	Precision int32

	Fields Bindings
}

var ErrInvalidConstants = errors.New("invalid metric constants")

// DefaultConstants returns the Mauritius grid and solar figures.
func DefaultConstants() Constants {
	return Constants{
		SunHoursPerDay:     decimal.RequireFromString("5.5"),
		DaysPerPeriod:      decimal.NewFromInt(30),
		Efficiency:         decimal.RequireFromString("0.85"),
		Granularity:        decimal.RequireFromString("0.5"),
		PanelWatts:         decimal.NewFromInt(350),
		CostPerKW:          decimal.NewFromInt(80000),
		CO2PerKWh:          decimal.RequireFromString("0.79"),
		TreeCO2PerYear:     decimal.NewFromInt(21),
		BillingCycleDays:   decimal.NewFromInt(30),
		LoanSalaryMultiple: decimal.NewFromInt(5),
		Precision:          2,
		Fields: Bindings{
			Quantity:        "kwh_consumption",
			Amount:          "total_amount",
			Salary:          "monthly_salary",
			PeriodDays:      "billing_days",
			PreviousReading: "previous_reading",
			CurrentReading:  "current_reading",
		},
	}
}

func (c Constants) Validate() error {
	positive := []struct {
		name string
		v    decimal.Decimal
	}{
		{"sun hours per day", c.SunHoursPerDay},
		{"days per period", c.DaysPerPeriod},
		{"efficiency", c.Efficiency},
		{"granularity", c.Granularity},
		{"panel watts", c.PanelWatts},
		{"cost per kW", c.CostPerKW},
		{"CO2 per kWh", c.CO2PerKWh},
		{"CO2 per tree", c.TreeCO2PerYear},
		{"billing cycle days", c.BillingCycleDays},
		{"loan salary multiple", c.LoanSalaryMultiple},
	}
	for _, p := range positive {
		if !p.v.IsPositive() {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidConstants, p.name, p.v)
		}
	}
	if c.Efficiency.GreaterThan(one) {
		return fmt.Errorf("%w: efficiency %s is above 1", ErrInvalidConstants, c.Efficiency)
	}
	if c.Precision < 0 || c.Precision > 16 {
		return fmt.Errorf("%w: precision %d outside 0..16", ErrInvalidConstants, c.Precision)
	}

	b := c.Fields
	for name, id := range map[string]extractor.FieldID{
		"quantity":         b.Quantity,
		"amount":           b.Amount,
		"salary":           b.Salary,
		"period days":      b.PeriodDays,
		"previous reading": b.PreviousReading,
		"current reading":  b.CurrentReading,
	} {
		if id == "" {
			return fmt.Errorf("%w: no field bound for %s", ErrInvalidConstants, name)
		}
	}
	return nil
}
