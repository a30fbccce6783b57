package calculation

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus enum
type RunStatus string

const (
	RunStatusPending RunStatus = "pending"
	RunStatusSuccess RunStatus = "success"
	RunStatusPartial RunStatus = "partial"
	RunStatusError   RunStatus = "error"
)

// ResultStatus enum - per-employee outcome inside a run
type ResultStatus string

const (
	ResultStatusPending ResultStatus = "pending"
	ResultStatusSuccess ResultStatus = "success"
	ResultStatusError   ResultStatus = "error"
)

// Run - one complete calculation attempt over a period. Runs are append-only:
// a re-calculation always creates a new run with the next run number.
type Run struct {
	ID          string
	PeriodID    string
	CompanyID   string
	RunNumber   int
	Status      RunStatus
	Total       int
	Succeeded   int
	Failed      int
	TriggeredBy string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// LineItem - one computed component amount within an employee result.
type LineItem struct {
	ComponentCode string          `json:"component_code"`
	ComponentType string          `json:"component_type"`
	Agency        *string         `json:"agency,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	EmployerShare decimal.Decimal `json:"employer_share"`
	Basis         decimal.Decimal `json:"basis"`
	Taxable       bool            `json:"taxable"`
}

// EmployeeResult - the full computed pay of one employee in one run.
// Immutable after creation.
type EmployeeResult struct {
	ID              string
	RunID           string
	EmployeeID      string
	LineItems       []LineItem
	GrossPay        decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
	Status          ResultStatus
	ErrorReason     *string
	Warnings        []string
	CreatedAt       time.Time
}

// Summary - the outcome of one engine invocation.
type Summary struct {
	RunID     string `json:"run_id"`
	RunNumber int    `json:"run_number"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}
