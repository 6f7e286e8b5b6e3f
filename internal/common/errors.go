package common

import (
	"errors"
)

// Error kinds. Match them with errors.Is; the user-facing text lives on ServiceError.
var (
	ErrInvalidFormat    = errors.New("invalid stock code format")
	ErrUnsupportedCode  = errors.New("unsupported stock code")
	ErrDataUnavailable  = errors.New("data unavailable")
	ErrProviderTimeout  = errors.New("market data provider timeout")
	ErrProviderFailure  = errors.New("market data provider failure")
	ErrGeneratorTimeout = errors.New("text generator timeout")
	ErrGeneratorFailure = errors.New("text generator failure")
)

// ServiceError pairs an error kind with the message shown to callers.
type ServiceError struct {
	Kind    error
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *ServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newServiceError(kind error, msg string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Message: msg, Err: err}
}

func InvalidFormat(msg string) error   { return newServiceError(ErrInvalidFormat, msg, nil) }
func UnsupportedCode(msg string) error { return newServiceError(ErrUnsupportedCode, msg, nil) }
func DataUnavailable(msg string) error { return newServiceError(ErrDataUnavailable, msg, nil) }

func ProviderTimeout(msg string, err error) error {
	return newServiceError(ErrProviderTimeout, msg, err)
}

func ProviderFailure(msg string, err error) error {
	return newServiceError(ErrProviderFailure, msg, err)
}

func GeneratorTimeout(msg string, err error) error {
	return newServiceError(ErrGeneratorTimeout, msg, err)
}

func GeneratorFailure(msg string, err error) error {
	return newServiceError(ErrGeneratorFailure, msg, err)
}

// ErrorMessage returns the text placed in an {"error": ...} payload.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Error()
	}
	return err.Error()
}
