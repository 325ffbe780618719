package identity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("wrong password")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrUserDisabled       = errors.New("user disabled")
)

// providerCodes maps fragments of provider error strings to sentinels. Both
// the REST error codes and the SDK wording are listed.
var providerCodes = []struct {
	fragment string
	err      error
}{
	{"EMAIL_EXISTS", ErrEmailInUse},
	{"email-already-exists", ErrEmailInUse},
	{"email-already-in-use", ErrEmailInUse},
	{"WEAK_PASSWORD", ErrWeakPassword},
	{"weak-password", ErrWeakPassword},
	{"at least 6 characters", ErrWeakPassword},
	{"INVALID_EMAIL", ErrInvalidEmail},
	{"invalid-email", ErrInvalidEmail},
	{"malformed email", ErrInvalidEmail},
	{"EMAIL_NOT_FOUND", ErrUserNotFound},
	{"user-not-found", ErrUserNotFound},
	{"INVALID_PASSWORD", ErrWrongPassword},
	{"wrong-password", ErrWrongPassword},
	{"INVALID_LOGIN_CREDENTIALS", ErrInvalidCredentials},
	{"TOO_MANY_ATTEMPTS_TRY_LATER", ErrTooManyRequests},
	{"too-many-requests", ErrTooManyRequests},
	{"USER_DISABLED", ErrUserDisabled},
}

// Translate turns a provider error into one wrapping a package sentinel.
// Unknown errors are returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, c := range providerCodes {
		if strings.Contains(msg, c.fragment) {
			return fmt.Errorf("%w: %v", c.err, err)
		}
	}
	return err
}

// Message is the text shown to the person using the app.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrEmailInUse):
		return "This email is already in use. Sign in or use another email."
	case errors.Is(err, ErrWeakPassword):
		return "The password is too weak. Use a stronger password."
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email. Check the email format."
	case errors.Is(err, ErrUserNotFound):
		return "User not found. Check your email."
	case errors.Is(err, ErrWrongPassword), errors.Is(err, ErrInvalidCredentials):
		return "Wrong email or password. Try again."
	case errors.Is(err, ErrTooManyRequests):
		return "Too many sign-in attempts. Try again later."
	case errors.Is(err, ErrUserDisabled):
		return "This account has been disabled."
	default:
		return "Authentication failed. Try again."
	}
}
