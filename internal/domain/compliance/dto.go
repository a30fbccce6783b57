package compliance

import (
	"github.com/shopspring/decimal"
)

type ReportResponse struct {
	ID                string          `json:"id"`
	PeriodID          string          `json:"period_id"`
	Agency            string          `json:"agency"`
	ReportType        string          `json:"report_type"`
	EmployeeShare     decimal.Decimal `json:"employee_share"`
	EmployerShare     decimal.Decimal `json:"employer_share"`
	TotalContribution decimal.Decimal `json:"total_contribution"`
	EmployeeCount     int             `json:"employee_count"`
	Status            string          `json:"status"`
	SubmissionDate    *string         `json:"submission_date,omitempty"`
	DueDate           string          `json:"due_date"`
}
