package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-crm/apiclient"
	"github.com/jrsteele09/go-crm/auth"
	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"github.com/rs/zerolog/log"
)

// LoginHandler checks credentials and returns the token pair with the user profile
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apiclient.LoginRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			writeJSONMessage(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		result, err := s.accounts.Login(r.Context(), req.Email, req.Password)
		if crmerrors.Is(err, crmerrors.ErrInvalidCredentials) {
			writeJSONMessage(w, http.StatusUnauthorized, msgInvalidCreds)
			return
		}
		if err != nil {
			log.Err(err).Msg("Login failed")
			writeJSONMessage(w, http.StatusInternalServerError, msgServerError)
			return
		}

		user, err := json.Marshal(result.User.Profile())
		if err != nil {
			log.Err(err).Msg("Failed to encode user profile")
			writeJSONMessage(w, http.StatusInternalServerError, msgServerError)
			return
		}

		writeJSON(w, http.StatusOK, apiclient.LoginResponse{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
			User:         user,
		})
	}
}

// SignupHandler registers a new account
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apiclient.SignupRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		created, err := s.accounts.Signup(r.Context(), req.Name, req.Email, req.Password)
		var validationErr *auth.ValidationError
		switch {
		case crmerrors.As(err, &validationErr):
			writeJSONError(w, http.StatusBadRequest, validationErr.Error())
			return
		case crmerrors.Is(err, crmerrors.ErrUserExists):
			writeJSONError(w, http.StatusConflict, msgUserExists)
			return
		case err != nil:
			log.Err(err).Msg("Signup failed")
			writeJSONError(w, http.StatusInternalServerError, msgServerError)
			return
		}

		user, err := json.Marshal(created.Profile())
		if err != nil {
			log.Err(err).Msg("Failed to encode user profile")
			writeJSONError(w, http.StatusInternalServerError, msgServerError)
			return
		}

		writeJSON(w, http.StatusCreated, apiclient.SignupResponse{
			Message: msgSignupOK,
			User:    user,
		})
	}
}

// LogoutHandler revokes the caller's refresh token
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			writeJSONMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		var req apiclient.LogoutRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			writeJSONMessage(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		err := s.accounts.Logout(r.Context(), userID, req.RefreshToken)
		if crmerrors.Is(err, crmerrors.ErrInvalidRefreshToken) {
			writeJSONMessage(w, http.StatusForbidden, "Refresh token does not belong to this user")
			return
		}
		if err != nil {
			log.Err(err).Str("user_id", userID).Msg("Logout failed")
			writeJSONMessage(w, http.StatusInternalServerError, msgServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
