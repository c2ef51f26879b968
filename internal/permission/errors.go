package permission

import (
	"errors"
	"fmt"
)

// ValidationErrorCode categorizes permission-literal validation failures.
type ValidationErrorCode string

const (
	// ErrCodeInvalidPermissionCode indicates a code outside the
	// enumeration valid for the entity kind.
	ErrCodeInvalidPermissionCode ValidationErrorCode = "INVALID_PERMISSION_CODE"

	// ErrCodeInconsistentCodeAndLabel indicates a numeric code and a
	// symbolic name that map to different codes.
	ErrCodeInconsistentCodeAndLabel ValidationErrorCode = "INCONSISTENT_CODE_AND_LABEL"

	// ErrCodeMissingPrincipal indicates an entry with no principal
	// reference.
	ErrCodeMissingPrincipal ValidationErrorCode = "MISSING_PRINCIPAL"

	// ErrCodeDuplicatePrincipal indicates the same principal appearing
	// more than once.
	ErrCodeDuplicatePrincipal ValidationErrorCode = "DUPLICATE_PRINCIPAL"

	// ErrCodeEmptyPermissionSet indicates zero entries with none
	// defaulted from project configuration.
	ErrCodeEmptyPermissionSet ValidationErrorCode = "EMPTY_PERMISSION_SET"
)

// ValidationError reports an invalid permission literal. Fatal: rejected
// before any mutation reaches the store.
type ValidationError struct {
	Code    ValidationErrorCode
	Message string

	// Token is the offending wire token, when one can be named.
	Token string
}

func (e *ValidationError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s (%q)", e.Code, e.Message, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError reports whether err is a permission-literal
// validation failure. Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DeniedError reports an access-denied outcome. Fatal; never silently
// downgraded. Carries enough context for an actionable message.
type DeniedError struct {
	// Entity is the IRI of the guarded resource or value.
	Entity string

	// Required is the code the operation needs.
	Required Code

	// Granted is the principal's effective code; HasGranted is false
	// when no entry applied at all.
	Granted    Code
	HasGranted bool

	// Kind selects the enumeration Required and Granted belong to.
	Kind Kind
}

func (e *DeniedError) Error() string {
	if !e.HasGranted {
		return fmt.Sprintf("insufficient permission on <%s>: requires %s, none granted",
			e.Entity, Token(e.Kind, e.Required))
	}
	return fmt.Sprintf("insufficient permission on <%s>: requires %s, granted %s",
		e.Entity, Token(e.Kind, e.Required), Token(e.Kind, e.Granted))
}

// IsDenied reports whether err is an access-denied outcome.
func IsDenied(err error) bool {
	var de *DeniedError
	return errors.As(err, &de)
}
