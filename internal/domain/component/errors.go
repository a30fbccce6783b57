package component

import "errors"

var (
	ErrComponentNotFound     = errors.New("salary component not found")
	ErrComponentCodeExists   = errors.New("salary component code already exists")
	ErrComponentReferenced   = errors.New("component referenced by a finalized calculation, create a new code instead")
	ErrComponentCycle        = errors.New("component basis references form a cycle")
	ErrInvalidBasisOrder     = errors.New("component basis may only reference earlier evaluation classes")
	ErrAssignmentNotFound    = errors.New("employee component assignment not found")
	ErrOverlappingAssignment = errors.New("assignment window overlaps an existing assignment for this component")
	ErrEmployeeNotFound      = errors.New("employee not found")
)
