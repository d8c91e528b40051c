package dto

// EmployeeQuery mirrors directory listing filters.
type EmployeeQuery struct {
	Department string
	ManagerID  string
	Active     *bool
	Search     string
	Page       int
	PageSize   int
}
