package compliance

import "errors"

var (
	ErrReportNotFound         = errors.New("compliance report not found")
	ErrPeriodNotReady         = errors.New("period must be approved or finalized before building reports")
	ErrReportAlreadySubmitted = errors.New("submitted reports cannot be regenerated or modified")
	ErrInvalidReportState     = errors.New("operation not allowed in current report status")
	ErrUnknownAgency          = errors.New("no remittance configuration for agency")
	ErrNothingToReport        = errors.New("no contribution line items for agency in this period")
)
