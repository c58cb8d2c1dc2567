package assign_employees

// AssignEmployeesRequest HTTP request model
type AssignEmployeesRequest struct {
	EmployeeIDs []int64 `json:"employeeIds"`
}
