package auth

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Email validation regex (RFC 5322 simplified)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	maxEmailLength = 254
)

// LoginRequest is the login form body, accepted as JSON or form fields
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// FieldError describes one invalid form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field of a form
type ValidationErrors struct {
	Fields []FieldError
}

func (e *ValidationErrors) Error() string {
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Error()
	}
	return strings.Join(messages, "; ")
}

// ValidateLoginRequest checks the login form before any request is sent.
// Password strength is the backend's concern; only presence is checked here.
func ValidateLoginRequest(req *LoginRequest) error {
	var fields []FieldError

	switch {
	case strings.TrimSpace(req.Email) == "":
		fields = append(fields, FieldError{Field: "email", Message: "Email is required"})
	case !IsValidEmail(req.Email):
		fields = append(fields, FieldError{Field: "email", Message: "Email format is invalid"})
	}

	if req.Password == "" {
		fields = append(fields, FieldError{Field: "password", Message: "Password is required"})
	}

	if len(fields) > 0 {
		return &ValidationErrors{Fields: fields}
	}
	return nil
}

// IsValidEmail checks if an email address is valid
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if len(email) > maxEmailLength {
		return false
	}
	return emailRegex.MatchString(email)
}

// SanitizeEmail normalizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
