package walletpay

import (
	"fmt"
	"strings"
)

// Code identifies a class of payment-session failure. Backend-declared error
// codes flow through verbatim, so the set below is not closed.
type Code string

const (
	CodeConfigMissing Code = "config-missing"
	CodeConfigInvalid Code = "config-invalid"
	CodeNotSupported  Code = "not-supported"
	CodeNotAvailable  Code = "not-available"
	CodeInitError     Code = "init-error"
	CodeLoadError     Code = "load-error"
	CodeAuthError     Code = "auth-error"
	CodeAPIError      Code = "api-error"
)

// Error is the coded error used across the session layer.
type Error struct {
	Code    Code
	Message string

	// Opt names the missing or offending option for configuration errors.
	Opt string
	// Allowed carries the backend-declared allowed set for config-invalid.
	Allowed []string
	// Vendor names the external library for load errors.
	Vendor string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Opt != "" {
		fmt.Fprintf(&b, " (opt: %s)", e.Opt)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func configMissingError(opt string) *Error {
	return &Error{
		Code:    CodeConfigMissing,
		Message: "a required configuration option is missing",
		Opt:     opt,
	}
}

func configInvalidError(opt string, allowed []string) *Error {
	return &Error{
		Code:    CodeConfigInvalid,
		Message: "a configuration option is not in the allowed set",
		Opt:     opt,
		Allowed: allowed,
	}
}

func notSupportedError() *Error {
	return &Error{
		Code:    CodeNotSupported,
		Message: "the payment sheet API version required is not supported by this host",
	}
}

func notAvailableError() *Error {
	return &Error{
		Code:    CodeNotAvailable,
		Message: "the host reports payments cannot currently be made",
	}
}

func initError(cause error) *Error {
	return &Error{
		Code:    CodeInitError,
		Message: "the session failed to initialize",
		Err:     cause,
	}
}

func loadError(vendor string, cause error) *Error {
	return &Error{
		Code:    CodeLoadError,
		Message: "a required external library failed to load",
		Vendor:  vendor,
		Err:     cause,
	}
}

func authError(cause error) *Error {
	return &Error{
		Code:    CodeAuthError,
		Message: "merchant validation failed",
		Err:     cause,
	}
}

// APIError builds an error from a structured backend error body. The
// backend-provided code and message are carried verbatim.
func APIError(code, message string) *Error {
	if code == "" {
		code = string(CodeAPIError)
	}
	return &Error{Code: Code(code), Message: message}
}

// asSessionError coerces any error into a coded *Error, wrapping foreign
// errors as api-error so callers always observe the taxonomy.
func asSessionError(err error) *Error {
	if err == nil {
		return nil
	}
	if coded, ok := err.(*Error); ok {
		return coded
	}
	return &Error{Code: CodeAPIError, Message: err.Error(), Err: err}
}
