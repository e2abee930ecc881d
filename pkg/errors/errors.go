package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeIdempotency  Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"

	CodeInvalidCredentials      Code = "INVALID_CREDENTIALS"
	CodeProfileNotFound         Code = "PROFILE_NOT_FOUND"
	CodeRoleMismatch            Code = "ROLE_MISMATCH"
	CodeIdentityExists          Code = "IDENTITY_ALREADY_EXISTS"
	CodeAdminProvisioned        Code = "ADMIN_ALREADY_PROVISIONED"
	CodeBackendUnavailable      Code = "BACKEND_UNAVAILABLE"
	CodeOracleUnavailable       Code = "ORACLE_UNAVAILABLE"
	CodePaymentInitiationFailed Code = "PAYMENT_INITIATION_FAILED"
)

// Metadata is how a code renders on the wire. ExposeMessage lets the
// error's own message replace PublicMessage; it is set only for codes whose
// messages are written for end users.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	ExposeMessage  bool
}

var metadataByCode = map[Code]Metadata{
	// caller mistakes
	CodeValidation:   {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true, ExposeMessage: true},
	CodeUnauthorized: {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication required", ExposeMessage: true},
	CodeForbidden:    {HTTPStatus: http.StatusForbidden, PublicMessage: "access denied", ExposeMessage: true},
	CodeNotFound:     {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found", ExposeMessage: true},
	CodeConflict:     {HTTPStatus: http.StatusConflict, PublicMessage: "conflict detected", ExposeMessage: true},
	CodeIdempotency:  {HTTPStatus: http.StatusConflict, PublicMessage: "idempotency key reused", DetailsAllowed: true, ExposeMessage: true},

	// authorization gate outcomes keep fixed wording so they leak nothing
	CodeInvalidCredentials: {HTTPStatus: http.StatusUnauthorized, PublicMessage: "invalid email or password"},
	CodeProfileNotFound:    {HTTPStatus: http.StatusUnauthorized, PublicMessage: "no profile exists for this account"},
	CodeRoleMismatch:       {HTTPStatus: http.StatusForbidden, PublicMessage: "account is not permitted to sign in with this role"},
	CodeIdentityExists:     {HTTPStatus: http.StatusConflict, PublicMessage: "an account with this email already exists"},
	CodeAdminProvisioned:   {HTTPStatus: http.StatusConflict, PublicMessage: "admin account already provisioned"},

	// our side or an upstream failed
	CodeInternal:                {HTTPStatus: http.StatusInternalServerError, Retryable: true, PublicMessage: "internal server error"},
	CodeDependency:              {HTTPStatus: http.StatusBadGateway, Retryable: true, PublicMessage: "dependency unavailable", DetailsAllowed: true},
	CodeBackendUnavailable:      {HTTPStatus: http.StatusServiceUnavailable, Retryable: true, PublicMessage: "storage backend unavailable"},
	CodeOracleUnavailable:       {HTTPStatus: http.StatusServiceUnavailable, Retryable: true, PublicMessage: "delivery check unavailable"},
	CodePaymentInitiationFailed: {HTTPStatus: http.StatusBadGateway, Retryable: true, PublicMessage: "payment could not be initiated", DetailsAllowed: true, ExposeMessage: true},
}

// MetadataFor falls back to INTERNAL_ERROR for codes it does not know.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// PublicMessage is the message a client sees for e.
func PublicMessage(e *Error) string {
	meta := MetadataFor(e.Code())
	if meta.ExposeMessage && e.Message() != "" {
		return e.Message()
	}
	return meta.PublicMessage
}

// Error is the typed error every service returns; responses render it through
// the code's metadata.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

// Error includes the cause so logs carry the whole story; clients only ever
// see PublicMessage.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
