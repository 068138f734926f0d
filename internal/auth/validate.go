package auth

import (
	"strings"

	"github.com/Veraticus/finchat/internal/common"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// Form validation messages.
const (
	MissingFieldsMessage    = "Por favor completa todos los campos"
	PasswordMismatchMessage = "Las contraseñas no coinciden"
	PasswordTooShortMessage = "La contraseña debe tener al menos 6 caracteres"
)

// ValidateRegistration checks a registration form before it is sent.
func ValidateRegistration(displayName, email, password, confirm string) error {
	if blank(displayName) || blank(email) || password == "" || confirm == "" {
		return &common.ValidationError{Message: MissingFieldsMessage}
	}
	if password != confirm {
		return &common.ValidationError{Field: "confirm", Message: PasswordMismatchMessage}
	}
	if len([]rune(password)) < MinPasswordLength {
		return &common.ValidationError{Field: "password", Message: PasswordTooShortMessage}
	}
	return nil
}

// ValidateLogin checks a login form before it is sent.
func ValidateLogin(email, password string) error {
	if blank(email) || password == "" {
		return &common.ValidationError{Message: MissingFieldsMessage}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
