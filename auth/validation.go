package auth

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-crm/users"
)

const maxNameLength = 100

// ValidateUserCredentials validates login credentials
func ValidateUserCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	// Basic email format validation
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return fmt.Errorf("invalid email format")
	}

	if password == "" {
		return fmt.Errorf("password is required")
	}

	return nil
}

// ValidateSignup validates a registration request
func ValidateSignup(name, email, password string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name must be at most %d characters", maxNameLength)
	}
	if err := users.ValidateEmail(email); err != nil {
		return err
	}
	return users.ValidatePasswordStrength(password)
}
