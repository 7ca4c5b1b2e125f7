package apiclient

import "encoding/json"

// Route paths served by the CRM API
const (
	PathLogin          = "/api/login"
	PathSignup         = "/api/signup"
	PathLogout         = "/api/logout"
	PathLeads          = "/api/leads"
	PathLeadsCount     = "/api/leads/count"
	PathEmployees      = "/api/employees"
	PathEmployeesCount = "/api/employees/count"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful login. The access token field is
// capitalised on the wire.
type LoginResponse struct {
	AccessToken  string          `json:"AccessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         json.RawMessage `json:"user"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResponse struct {
	Message string          `json:"message"`
	User    json.RawMessage `json:"user"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type LeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
	Status  string `json:"status,omitempty"`
}

type EmployeeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
