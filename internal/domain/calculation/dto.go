package calculation

import (
	"time"

	"github.com/shopspring/decimal"
)

type RunResponse struct {
	ID          string     `json:"id"`
	PeriodID    string     `json:"period_id"`
	RunNumber   int        `json:"run_number"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	TriggeredBy string     `json:"triggered_by"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// PayslipView is the read-only projection consumed by payslip and bank-file
// renderers. It never exposes intermediate run bookkeeping.
type PayslipView struct {
	EmployeeID      string          `json:"employee_id"`
	PeriodID        string          `json:"period_id"`
	RunNumber       int             `json:"run_number"`
	LineItems       []LineItem      `json:"line_items"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
}

type ResultResponse struct {
	ID              string          `json:"id"`
	RunID           string          `json:"run_id"`
	EmployeeID      string          `json:"employee_id"`
	LineItems       []LineItem      `json:"line_items"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
	Status          string          `json:"status"`
	ErrorReason     *string         `json:"error_reason,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
}
