package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 20

	msgInvalidBody  = "Invalid request body"
	msgServerError  = "Internal server error"
	msgInvalidCreds = "Invalid credentials"
	msgUserExists   = "User already exists"
	msgCountFailed  = "Failed to fetch count"
	msgSignupOK     = "User registered successfully"
)

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

// writeJSONMessage writes {"message": ...}, the shape login and the CRM routes use.
func writeJSONMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

// writeJSONError writes {"error": ...}, the shape signup failures use.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
