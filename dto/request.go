package dto

import (
	"github.com/shopspring/decimal"
)

// LoanParams are the inputs to the amortized payment metric. Principal
// defaults to the largest loan the extracted salary supports.
type LoanParams struct {
	Principal  *decimal.Decimal `json:"principal"`
	AnnualRate *decimal.Decimal `json:"annual_rate"`
	TermMonths int              `json:"term_months" binding:"omitempty,min=1,max=1200"`
}

// RecordRequest asks for the record of one text block. Empty Metrics means
// every metric.
type RecordRequest struct {
	Text    string      `json:"text" binding:"required"`
	Profile string      `json:"profile"`
	Metrics []string    `json:"metrics"`
	Loan    *LoanParams `json:"loan"`
}

type BatchRecordRequest struct {
	Documents []RecordRequest `json:"documents" binding:"required,min=1,max=100,dive"`
}

type MetricsRequest struct {
	Text    string      `json:"text" binding:"required"`
	Profile string      `json:"profile"`
	Kinds   []string    `json:"kinds" binding:"required,min=1"`
	Loan    *LoanParams `json:"loan"`
}
