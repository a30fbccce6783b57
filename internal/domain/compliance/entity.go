package compliance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enum
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReady     Status = "ready"
	StatusSubmitted Status = "submitted"
	StatusAccepted  Status = "accepted"
)

// Report - one agency remittance summary for one period. Regeneration
// supersedes a draft/ready report; submitted and accepted reports are never
// altered.
type Report struct {
	ID                string
	PeriodID          string
	CompanyID         string
	Agency            string
	ReportType        string
	EmployeeShare     decimal.Decimal
	EmployerShare     decimal.Decimal
	TotalContribution decimal.Decimal
	EmployeeCount     int
	Status            Status
	SubmissionDate    *time.Time
	DueDate           time.Time
	GeneratedAt       time.Time
}

// Mutable reports whether the report may still be regenerated.
func (r Report) Mutable() bool {
	return r.Status == StatusDraft || r.Status == StatusReady
}
