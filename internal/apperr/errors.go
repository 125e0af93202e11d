package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the common shape for all service errors. Code is the HTTP status
// the boundary should surface; Kind is a stable machine-readable tag used in
// logs and metrics.
type Error struct {
	Kind    string
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation and conflict errors (client side).

func InvalidEmail() *Error {
	return &Error{Kind: "invalid_email", Code: http.StatusBadRequest, Message: "invalid email format"}
}

func InvalidPassword() *Error {
	return &Error{Kind: "invalid_password", Code: http.StatusUnauthorized, Message: "invalid password"}
}

// WeakPassword carries the violated policy rule in the message. Rule text is
// user-safe by construction.
func WeakPassword(reason error) *Error {
	return &Error{Kind: "invalid_password", Code: http.StatusUnauthorized, Message: reason.Error()}
}

func InvalidRole(role string) *Error {
	return &Error{Kind: "invalid_role", Code: http.StatusBadRequest, Message: fmt.Sprintf("invalid role %q", role)}
}

func UserAlreadyExists(email string) *Error {
	return &Error{Kind: "user_already_exists", Code: http.StatusConflict, Message: "user already exists"}
}

func PlanLimit(message string) *Error {
	return &Error{Kind: "plan_limit_reached", Code: http.StatusForbidden, Message: message}
}

func UserNotFound() *Error {
	return &Error{Kind: "user_not_found", Code: http.StatusNotFound, Message: "user not found"}
}

func TenantNotFound() *Error {
	return &Error{Kind: "tenant_not_found", Code: http.StatusNotFound, Message: "tenant not found"}
}

// Server-side errors.

func UserCreation(err error) *Error {
	return &Error{Kind: "user_creation_failed", Code: http.StatusInternalServerError, Message: "user creation failed", Err: err}
}

func TenantResolution(err error) *Error {
	return &Error{Kind: "tenant_resolution_failed", Code: http.StatusInternalServerError, Message: "tenant resolution failed", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: "internal_error", Code: http.StatusInternalServerError, Message: "internal error", Err: err}
}

// Authn/authz errors.

func Credentials() *Error {
	return &Error{Kind: "invalid_credentials", Code: http.StatusUnauthorized, Message: "could not validate credentials"}
}

func InvalidToken(err error) *Error {
	return &Error{Kind: "invalid_token", Code: http.StatusUnauthorized, Message: "invalid or expired token", Err: err}
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "not enough permissions"
	}
	return &Error{Kind: "forbidden", Code: http.StatusForbidden, Message: message}
}

// Status returns the HTTP status for err, defaulting to 500 for anything
// outside the taxonomy so no failure ever maps to a success class.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

// Kind returns the machine-readable tag for err, or "internal_error".
func Kind(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return "internal_error"
}

// Message returns the user-safe message for err. Wrapped causes are never
// included, so internal detail cannot leak to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// IsKind reports whether err belongs to the given taxonomy kind.
func IsKind(err error, kind string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
