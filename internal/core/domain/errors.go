package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailInUse          = errors.New("email already in use")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrAlreadyVerified     = errors.New("verification has already been passed")
	ErrUnauthorized        = errors.New("not authorized")
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrAvatarExtension     = errors.New("avatar file name has no extension")
	ErrMailDelivery        = errors.New("mail delivery failed")
)

// ValidationError carries a client-facing description of a rejected payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}
