package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAPILogin  = "/api/login"
	RouteAPISignup = "/api/signup"
	RouteAPILogout = "/api/logout"

	// CRM Routes
	RouteAPILeads          = "/api/leads"
	RouteAPILeadsCount     = "/api/leads/count"
	RouteAPIEmployees      = "/api/employees"
	RouteAPIEmployeesCount = "/api/employees/count"

	RouteHealth = "/health"
)

// Count cache keys
const (
	countLeads     = "leads"
	countEmployees = "employees"
)
