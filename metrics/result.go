package metrics

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind names a derived metric.
type Kind string

const (
	KindAverageDailyConsumption Kind = "average_daily_consumption"
	KindUnitCost                Kind = "unit_cost"
	KindDailyCost               Kind = "daily_cost"
	KindAnnualCost              Kind = "annual_cost"
	KindMeteredConsumption      Kind = "metered_consumption"
	KindSolarSystemSize         Kind = "solar_system_size"
	KindSolarPanelCount         Kind = "solar_panel_count"
	KindSolarInvestmentCost     Kind = "solar_investment_cost"
	KindMonthlySolarProduction  Kind = "monthly_solar_production"
	KindMonthlyCO2              Kind = "monthly_co2_kg"
	KindAnnualCO2               Kind = "annual_co2_kg"
	KindTreesToOffset           Kind = "trees_to_offset"
	KindMaxLoanAmount           Kind = "max_loan_amount"
	KindAmortizedPayment        Kind = "amortized_payment"
)

var allKinds = []Kind{
	KindAverageDailyConsumption,
	KindUnitCost,
	KindDailyCost,
	KindAnnualCost,
	KindMeteredConsumption,
	KindSolarSystemSize,
	KindSolarPanelCount,
	KindSolarInvestmentCost,
	KindMonthlySolarProduction,
	KindMonthlyCO2,
	KindAnnualCO2,
	KindTreesToOffset,
	KindMaxLoanAmount,
	KindAmortizedPayment,
}

var ErrUnknownMetric = errors.New("unknown metric")

// Kinds lists every metric in a fixed order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

func ParseKind(s string) (Kind, error) {
	for _, k := range allKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// Result is either a value or an explicit not-computable outcome. A result
// that is not computable never carries a usable Value.
type Result struct {
	Kind       Kind
	Value      decimal.Decimal
	Computable bool
	Reason     string

	places int32
	fixed  bool
}

func computed(kind Kind, v decimal.Decimal) Result {
	return Result{Kind: kind, Value: v, Computable: true}
}

func notComputable(kind Kind, reason string) Result {
	return Result{Kind: kind, Reason: reason}
}

// Rounded returns the result rounded half away from zero to places decimals.
// Its JSON form then always shows exactly that many decimals.
func (r Result) Rounded(places int32) Result {
	if !r.Computable {
		return r
	}
	r.Value = r.Value.Round(places)
	r.places = places
	r.fixed = true
	return r
}

type resultJSON struct {
	Kind       Kind    `json:"kind"`
	Value      *string `json:"value"`
	Computable bool    `json:"computable"`
	Reason     string  `json:"reason,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Kind: r.Kind, Computable: r.Computable, Reason: r.Reason}
	if r.Computable {
		s := r.Value.String()
		if r.fixed {
			s = r.Value.StringFixed(r.places)
		}
		out.Value = &s
	}
	return json.Marshal(out)
}
