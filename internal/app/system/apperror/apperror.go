// internal/app/system/apperror/apperror.go
//
// Package apperror defines the error taxonomy shared by the core
// operations. Every failure an operation can report carries a Kind (the
// broad HTTP-mappable category) and a Code (the stable machine-readable
// sub-kind), so "no such workspace" stays distinguishable from "exists
// but you're not in it" all the way into logs and tests.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is the broad failure category.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindUnauthorized
	KindBadRequest
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Stable error codes surfaced to clients and asserted by tests.
const (
	CodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	CodeRoleNotFound        = "ROLE_NOT_FOUND"
	CodeNotAMember          = "ACCESS_UNAUTHORIZED_NOT_A_MEMBER"
	CodeAccessUnauthorized  = "ACCESS_UNAUTHORIZED"
	CodeInvalidCredentials  = "AUTH_INVALID_CREDENTIALS"
	CodeEmailAlreadyExists  = "AUTH_EMAIL_ALREADY_EXISTS"
	CodeAlreadyMember       = "ALREADY_MEMBER"
	CodeNotWorkspaceOwner   = "NOT_WORKSPACE_OWNER"
	CodeDuplicateKey        = "DUPLICATE_KEY"
	CodeValidation          = "VALIDATION_ERROR"
	CodeIdentityPolicyClash = "IDENTITY_POLICY_CONFLICT"
)

// Error is the structured failure returned by core operations.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two apperrors by kind and code, so sentinel
// instances can be used as targets.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

// NotFound reports a referenced entity as absent.
func NotFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

// Unauthorized reports missing membership or missing permission.
func Unauthorized(code, msg string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: msg}
}

// BadRequest reports a client-caused precondition violation.
func BadRequest(code, msg string) *Error {
	return &Error{Kind: KindBadRequest, Code: code, Message: msg}
}

// Conflict reports a storage-level uniqueness violation from a race.
func Conflict(code, msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg, Err: cause}
}

// KindOf extracts the Kind from err, or 0 if err is not an apperror.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// CodeOf extracts the Code from err, or "" if err is not an apperror.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
