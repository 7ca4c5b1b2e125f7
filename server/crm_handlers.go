package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-crm/apiclient"
	"github.com/jrsteele09/go-crm/crm"
	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"github.com/rs/zerolog/log"
)

func (s *Server) LeadsCountHandler() http.HandlerFunc {
	return s.countHandler(countLeads, s.repos.Leads.Count)
}

func (s *Server) EmployeesCountHandler() http.HandlerFunc {
	return s.countHandler(countEmployees, s.repos.Employees.Count)
}

func (s *Server) countHandler(name string, load func(context.Context) (int64, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := s.counts.Count(r.Context(), name, load)
		if err != nil {
			log.Err(err).Str("count", name).Msg("Failed to count records")
			writeJSONMessage(w, http.StatusInternalServerError, msgCountFailed)
			return
		}
		writeJSON(w, http.StatusOK, apiclient.CountResponse{Count: int(n)})
	}
}

// CreateLeadHandler stores a lead owned by the authenticated user
func (s *Server) CreateLeadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apiclient.LeadRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			writeJSONMessage(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		userID, _ := UserIDFromContext(r.Context())
		lead := &crm.Lead{
			Name:      req.Name,
			Email:     req.Email,
			Company:   req.Company,
			Status:    crm.LeadStatus(req.Status),
			OwnerID:   userID,
			CreatedAt: time.Now().UTC(),
		}
		if err := lead.Validate(); err != nil {
			writeJSONMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.repos.Leads.Insert(r.Context(), lead); err != nil {
			log.Err(err).Msg("Failed to insert lead")
			writeJSONMessage(w, http.StatusInternalServerError, msgServerError)
			return
		}
		s.invalidateCount(r.Context(), countLeads)
		writeJSON(w, http.StatusCreated, lead)
	}
}

func (s *Server) CreateEmployeeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apiclient.EmployeeRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			writeJSONMessage(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		employee := &crm.Employee{
			Name:      req.Name,
			Email:     req.Email,
			Role:      req.Role,
			CreatedAt: time.Now().UTC(),
		}
		if err := employee.Validate(); err != nil {
			writeJSONMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.repos.Employees.Insert(r.Context(), employee); err != nil {
			log.Err(err).Msg("Failed to insert employee")
			writeJSONMessage(w, http.StatusInternalServerError, msgServerError)
			return
		}
		s.invalidateCount(r.Context(), countEmployees)
		writeJSON(w, http.StatusCreated, employee)
	}
}

func (s *Server) invalidateCount(ctx context.Context, name string) {
	if err := s.counts.Invalidate(ctx, name); err != nil && !crmerrors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("count", name).Msg("Failed to invalidate cached count")
	}
}
