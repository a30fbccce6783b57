package audit

import "time"

// Entry - one append-only forensic record. Entries are written for rejected
// transition attempts as well as successful ones.
type Entry struct {
	ID         string
	CompanyID  string
	EntityType string
	EntityID   string
	Action     string
	ActorID    string
	OldValues  map[string]any
	NewValues  map[string]any
	Timestamp  time.Time
}

// Common entity types
const (
	EntityPeriod     = "payroll_period"
	EntityRun        = "calculation_run"
	EntityAdjustment = "adjustment"
	EntityComponent  = "salary_component"
	EntityReport     = "compliance_report"
	EntityRateTable  = "rate_table"
)
