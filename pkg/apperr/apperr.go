package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure that the HTTP boundary knows how to
// translate into a status code and response envelope.
type Kind string

const (
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindForbidden        Kind = "FORBIDDEN"
	KindValidation       Kind = "VALIDATION_FAILED"
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindImmutableBuiltin Kind = "IMMUTABLE_BUILTIN"
	KindInUse            Kind = "IN_USE"
	KindTenantNotFound   Kind = "TENANT_NOT_FOUND"
	KindTenantInactive   Kind = "TENANT_INACTIVE"
	KindNotImpersonating Kind = "NOT_IMPERSONATING"
	KindInternal         Kind = "INTERNAL_ERROR"
)

// Error is the typed error carried from services up to the handler boundary.
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending field for validation errors.
	Field string
	// Count carries the blocking reference count for IN_USE errors.
	Count int64
	// Entity and ID identify the missing resource for NOT_FOUND errors.
	Entity string
	ID     string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches the underlying error for server-side logging. The cause
// is never rendered to the caller.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Unauthorized creates an UNAUTHORIZED error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "authentication required"
	}
	return New(KindUnauthorized, message)
}

// Forbidden creates a FORBIDDEN error naming the missing capability.
func Forbidden(capability string) *Error {
	return New(KindForbidden, fmt.Sprintf("missing required permission: %s", capability))
}

// Validation creates a VALIDATION_FAILED error naming the offending field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// NotFound creates a NOT_FOUND error for an entity kind and id.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Entity:  entity,
		ID:      id,
	}
}

// Conflict creates a CONFLICT error (duplicate slug, name or domain).
func Conflict(reason string) *Error {
	return New(KindConflict, reason)
}

// ImmutableBuiltin creates an IMMUTABLE_BUILTIN error.
func ImmutableBuiltin(name string) *Error {
	return New(KindImmutableBuiltin, fmt.Sprintf("built-in %q cannot be modified or deleted", name))
}

// InUse creates an IN_USE error carrying the blocking reference count.
func InUse(entity string, count int64) *Error {
	return &Error{
		Kind:    KindInUse,
		Message: fmt.Sprintf("%s is referenced by %d item(s)", entity, count),
		Count:   count,
		Entity:  entity,
	}
}

// TenantNotFound creates a TENANT_NOT_FOUND error.
func TenantNotFound(id string) *Error {
	return &Error{Kind: KindTenantNotFound, Message: "tenant not found", ID: id}
}

// TenantInactive creates a TENANT_INACTIVE error.
func TenantInactive(id string) *Error {
	return &Error{Kind: KindTenantInactive, Message: "tenant is inactive", ID: id}
}

// NotImpersonating creates a NOT_IMPERSONATING error.
func NotImpersonating() *Error {
	return New(KindNotImpersonating, "current session is not impersonating another user")
}

// Internal wraps an unexpected failure without leaking detail to the caller.
func Internal(err error) *Error {
	return (&Error{Kind: KindInternal, Message: "an internal error occurred"}).WithCause(err)
}

// KindOf extracts the Kind from err, or KindInternal for unrecognized errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extracts a typed *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
