package metrics

import (
	"fmt"

	"github.com/Aashish23092/ocr-green-finance/extractor"
	"github.com/shopspring/decimal"
)

// Params carries loan inputs a document cannot provide. A missing Principal
// falls back to the maximum loan the record's salary supports.
type Params struct {
	Principal  decimal.NullDecimal
	AnnualRate decimal.NullDecimal // percent
	TermMonths int
}

// Engine evaluates metrics against records with one fixed set of constants.
type Engine struct {
	consts Constants
}

func NewEngine(c Constants) (*Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Engine{consts: c}, nil
}

func (e *Engine) Constants() Constants {
	return e.consts
}

// Compute evaluates one metric. Missing fields and unmet preconditions give
// a not-computable Result; only an unknown kind is an error.
func (e *Engine) Compute(kind Kind, record extractor.DocumentRecord, params Params) (Result, error) {
	c := e.consts
	f := c.Fields

	switch kind {
	case KindAverageDailyConsumption:
		q, ok := record.Amount(f.Quantity)
		if !ok {
			return missing(kind, record, f.Quantity), nil
		}
		return AveragePerPeriod(q, e.periodDays(record)), nil

	case KindUnitCost:
		q, ok := record.Amount(f.Quantity)
		if !ok {
			return missing(kind, record, f.Quantity), nil
		}
		a, ok := record.Amount(f.Amount)
		if !ok {
			return missing(kind, record, f.Amount), nil
		}
		return UnitCost(a, q), nil

	case KindDailyCost:
		a, ok := record.Amount(f.Amount)
		if !ok {
			return missing(kind, record, f.Amount), nil
		}
		return DailyCost(a, e.periodDays(record)), nil

	case KindAnnualCost:
		a, ok := record.Amount(f.Amount)
		if !ok {
			return missing(kind, record, f.Amount), nil
		}
		return AnnualCost(a), nil

	case KindMeteredConsumption:
		prev, ok := record.Amount(f.PreviousReading)
		if !ok {
			return missing(kind, record, f.PreviousReading), nil
		}
		cur, ok := record.Amount(f.CurrentReading)
		if !ok {
			return missing(kind, record, f.CurrentReading), nil
		}
		return MeteredConsumption(prev, cur), nil

	case KindSolarSystemSize, KindSolarPanelCount, KindSolarInvestmentCost, KindMonthlySolarProduction:
		q, ok := record.Amount(f.Quantity)
		if !ok {
			return missing(kind, record, f.Quantity), nil
		}
		size := SystemSize(q, c)
		if !size.Computable {
			return notComputable(kind, size.Reason), nil
		}
		switch kind {
		case KindSolarPanelCount:
			return PanelCount(size.Value, c.PanelWatts), nil
		case KindSolarInvestmentCost:
			return InvestmentCost(size.Value, c.CostPerKW), nil
		case KindMonthlySolarProduction:
			return MonthlyProduction(size.Value, c), nil
		}
		return size, nil

	case KindMonthlyCO2, KindAnnualCO2, KindTreesToOffset:
		q, ok := record.Amount(f.Quantity)
		if !ok {
			return missing(kind, record, f.Quantity), nil
		}
		switch kind {
		case KindMonthlyCO2:
			return MonthlyCO2(q, c.CO2PerKWh), nil
		case KindAnnualCO2:
			return AnnualCO2(q, c.CO2PerKWh), nil
		}
		annual := AnnualCO2(q, c.CO2PerKWh)
		if !annual.Computable {
			return notComputable(kind, annual.Reason), nil
		}
		return TreesToOffset(annual.Value, c.TreeCO2PerYear), nil

	case KindMaxLoanAmount:
		s, ok := record.Amount(f.Salary)
		if !ok {
			return missing(kind, record, f.Salary), nil
		}
		return MaxLoanAmount(s, c.LoanSalaryMultiple), nil

	case KindAmortizedPayment:
		principal := params.Principal.Decimal
		if !params.Principal.Valid {
			s, ok := record.Amount(f.Salary)
			if !ok {
				return notComputable(kind, fmt.Sprintf("no principal given and field %s is absent", f.Salary)), nil
			}
			ceiling := MaxLoanAmount(s, c.LoanSalaryMultiple)
			if !ceiling.Computable {
				return notComputable(kind, ceiling.Reason), nil
			}
			principal = ceiling.Value
		}
		if !params.AnnualRate.Valid {
			return notComputable(kind, "annual rate not given"), nil
		}
		return AmortizedPayment(principal, params.AnnualRate.Decimal, params.TermMonths), nil
	}

	return Result{}, fmt.Errorf("%w: %q", ErrUnknownMetric, kind)
}

// ComputeAll evaluates every known metric in Kinds order.
func (e *Engine) ComputeAll(record extractor.DocumentRecord, params Params) []Result {
	out := make([]Result, 0, len(allKinds))
	for _, k := range allKinds {
		r, err := e.Compute(k, record, params)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Present rounds a result to the configured precision.
func (e *Engine) Present(r Result) Result {
	return r.Rounded(e.consts.Precision)
}

// periodDays prefers the period printed on the document over the default
// billing cycle.
func (e *Engine) periodDays(record extractor.DocumentRecord) decimal.Decimal {
	if d, ok := record.Amount(e.consts.Fields.PeriodDays); ok && d.IsPositive() {
		return d
	}
	return e.consts.BillingCycleDays
}

func missing(kind Kind, record extractor.DocumentRecord, id extractor.FieldID) Result {
	if record.Has(id) {
		return notComputable(kind, fmt.Sprintf("field %s is not numeric", id))
	}
	return notComputable(kind, fmt.Sprintf("field %s is absent", id))
}
