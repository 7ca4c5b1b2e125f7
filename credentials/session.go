package credentials

import (
	"bytes"
	"encoding/json"
)

// Persisted entry names. They match the keys the web client kept in localStorage.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Keys lists every entry a stored session occupies.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// Session is the authenticated identity held by the client after login.
// User is the profile payload exactly as the server returned it.
type Session struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         json.RawMessage `json:"user"`
}

// Complete reports whether all three parts of the session are populated.
func (s Session) Complete() bool {
	return s.AccessToken != "" && s.RefreshToken != "" && len(bytes.TrimSpace(s.User)) > 0
}

// DecodeUser unmarshals the profile payload into v.
func (s Session) DecodeUser(v any) error {
	return json.Unmarshal(s.User, v)
}
