package calculation

import "errors"

var (
	ErrRunNotFound          = errors.New("calculation run not found")
	ErrResultNotFound       = errors.New("employee calculation result not found")
	ErrRunAlreadyInProgress = errors.New("a calculation run is already in progress for this period")
	ErrNoSuccessfulRun      = errors.New("period has no successful calculation run")
	ErrRunCancelled         = errors.New("calculation run cancelled")
)
