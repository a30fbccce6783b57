package component

import "context"

type ComponentService interface {
	Create(ctx context.Context, req CreateComponentRequest) (ComponentResponse, error)
	Get(ctx context.Context, id string) (ComponentResponse, error)
	List(ctx context.Context, activeOnly bool) ([]ComponentResponse, error)
	Deactivate(ctx context.Context, id string) error

	Assign(ctx context.Context, req AssignComponentRequest) (AssignmentResponse, error)
	EmployeeAssignments(ctx context.Context, employeeID string) ([]AssignmentResponse, error)
	EndAssignment(ctx context.Context, id string, endDate string) error
}
