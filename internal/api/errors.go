package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/zeebo/errs"
)

// Error is the class of every error returned by this package.
var Error = errs.Class("rickmorty api")

// Kind classifies a transport failure.
type Kind string

const (
	KindCanceled   Kind = "canceled"
	KindNetwork    Kind = "network"
	KindTimeout    Kind = "timeout"
	KindClient     Kind = "client"
	KindServer     Kind = "server"
	KindDecode     Kind = "decode"
	KindUnexpected Kind = "unexpected"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
	// Message is the API's {"error": "..."} text, when present.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Client reports a 4xx status.
func (e *StatusError) Client() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Server reports a 5xx status.
func (e *StatusError) Server() bool {
	return e.StatusCode >= 500
}

// DecodeError is returned when a response body is not the expected JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Errors not produced by a request are KindUnexpected.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var se *StatusError
	if errors.As(err, &se) {
		if se.Server() {
			return KindServer
		}
		return KindClient
	}

	var de *DecodeError
	if errors.As(err, &de) {
		return KindDecode
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	var urlErr *url.Error
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) || errors.As(err, &urlErr) {
		return KindNetwork
	}

	return KindUnexpected
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

type errorBody struct {
	Error string `json:"error"`
}

func parseErrorBody(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return eb.Error
}
