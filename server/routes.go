package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAPILogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPISignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPILogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Dashboard counts
	s.RegisterRouteHandler("GET "+RouteAPILeadsCount, ChainMiddleware(s.LeadsCountHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIEmployeesCount, ChainMiddleware(s.EmployeesCountHandler(), s.APIMiddleware()...))

	// Records (require a valid access token)
	s.RegisterRouteHandler("POST "+RouteAPILeads, ChainMiddleware(s.CreateLeadHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteAPIEmployees, ChainMiddleware(s.CreateEmployeeHandler(), s.APIMiddleware(s.RequireAuth())...))

	// CORS preflight for every route
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))
}
