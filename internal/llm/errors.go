package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// FailureMarker prefixes every user-facing provider failure.
const FailureMarker = "❌"

const warningMarker = "⚠️"

var ErrNoAPIKey = errors.New("chat provider api key not configured")

type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindTimeout
	KindConnection
	KindAuth
	KindAPI
	KindNotConfigured
	KindCanceled
)

// ProviderError is the single failure type returned across the provider boundary.
type ProviderError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("chat provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Message is the text shown to the user for this failure.
func (e *ProviderError) Message() string {
	switch e.Kind {
	case KindNotConfigured:
		return warningMarker + " Please set your chat API key in the .env file"
	case KindTimeout:
		return FailureMarker + " Request timeout. Please try again."
	case KindConnection:
		return FailureMarker + " Connection error. Please check your internet connection."
	case KindAuth:
		return FailureMarker + fmt.Sprintf(" API Error %d: authentication failed, check your API key.", e.StatusCode)
	case KindAPI:
		return FailureMarker + fmt.Sprintf(" API Error %d: %v", e.StatusCode, apiMessage(e.Err))
	case KindCanceled:
		return FailureMarker + " Request canceled."
	default:
		return FailureMarker + fmt.Sprintf(" Unexpected error: %v", e.Err)
	}
}

func apiMessage(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Error()
	}
	return err.Error()
}

// Classify wraps err into a ProviderError. It returns nil for nil.
func Classify(err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	switch {
	case errors.Is(err, ErrNoAPIKey):
		return &ProviderError{Kind: KindNotConfigured, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &ProviderError{Kind: KindTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return &ProviderError{Kind: KindCanceled, Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ProviderError{Kind: KindTimeout, Err: err}
	}
	var urlErr *url.Error
	var opErr *net.OpError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) {
		return &ProviderError{Kind: KindConnection, Err: err}
	}
	return &ProviderError{Kind: KindUnexpected, Err: err}
}

func statusError(status int, err error) *ProviderError {
	if status == 401 || status == 403 {
		return &ProviderError{Kind: KindAuth, StatusCode: status, Err: err}
	}
	return &ProviderError{Kind: KindAPI, StatusCode: status, Err: err}
}

// Describe renders err for the user; nil renders empty.
func Describe(err error) string {
	if pe := Classify(err); pe != nil {
		return pe.Message()
	}
	return ""
}

// IsFailure reports whether a response string is a rendered provider failure.
func IsFailure(s string) bool {
	return strings.HasPrefix(s, FailureMarker) || strings.HasPrefix(s, warningMarker)
}
