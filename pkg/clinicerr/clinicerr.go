// Package clinicerr defines the typed error taxonomy shared by all domain
// services. Handlers map kinds to HTTP status codes; services never retry.
package clinicerr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindValidation marks a malformed or missing required field.
	KindValidation Kind = iota
	// KindPermission marks an actor whose role lacks rights for the operation.
	KindPermission
	// KindConflict marks a lost concurrent transition or a duplicate active record.
	KindConflict
	// KindNotFound marks an unknown record identifier.
	KindNotFound
	// KindStorage marks a persistence failure surfaced from the repository layer.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Error is a typed domain error. Field is optional field-level detail for
// validation failures.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a field-level validation error.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

// Validationf is Validation with a formatted message.
func Validationf(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Permission returns a permission error.
func Permission(msg string) *Error {
	return &Error{Kind: KindPermission, Msg: msg}
}

// Conflict returns a conflict error.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// Conflictf is Conflict with a formatted message.
func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// NotFound returns a not-found error for the named record.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Msg: what + " not found"}
}

// Storage wraps a repository failure.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Msg: "storage failure", Err: err}
}

// IsKind reports whether err is a clinicerr.Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == k
	}
	return false
}

// HTTPStatus maps an error to its HTTP status code. Unclassified errors map
// to 500.
func HTTPStatus(err error) int {
	var ce *Error
	if !errors.As(err, &ce) {
		return http.StatusInternalServerError
	}
	switch ce.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts a domain error into an echo.HTTPError carrying field-level
// detail where present.
func ToHTTP(err error) error {
	var ce *Error
	if !errors.As(err, &ce) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	body := map[string]string{"error": ce.Msg, "kind": ce.Kind.String()}
	if ce.Field != "" {
		body["field"] = ce.Field
	}
	return echo.NewHTTPError(HTTPStatus(err), body)
}
