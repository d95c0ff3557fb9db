// ABOUTME: Typed errors returned by the Gateway client
// ABOUTME: Separates transport failures, HTTP status failures and script integrity failures

package client

import (
	"errors"
	"fmt"
	"net"
)

const maxErrorBody = 512

// StatusError is returned when the Gateway answers with a non-200 status
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	if body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, body)
}

// TransportError is returned when no HTTP response was received
type TransportError struct {
	Method   string
	Path     string
	Gateway  string
	Canceled bool
	Timeout  bool
	Err      error
}

func (e *TransportError) Error() string {
	switch {
	case e.Canceled:
		return "request canceled"
	case e.Timeout:
		return "request timed out"
	default:
		return fmt.Sprintf("cannot connect to gateway at %s: %v", e.Gateway, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ScriptError names the script a load, save or delete failed for
type ScriptError struct {
	Op   string
	Name string
	Err  error
}

func (e *ScriptError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to %s script: %s", e.Op, e.Name)
	}
	return fmt.Sprintf("failed to %s script: %s: %v", e.Op, e.Name, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// ErrMissingScript marks a load response without a script object
var ErrMissingScript = errors.New("response has no script object")

// ErrScriptExists marks a rename onto a name already taken on the Gateway
var ErrScriptExists = errors.New("a script with that name already exists")

// ErrNotAcknowledged marks a write response whose success flag is absent or false
var ErrNotAcknowledged = errors.New("gateway did not acknowledge the request")

// IsNotFound reports whether err carries an HTTP 404 from the Gateway
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == 404
}

// IsConnectivity reports whether err is a transport or status failure
// rather than an application-level one
func IsConnectivity(err error) bool {
	var te *TransportError
	var se *StatusError
	return errors.As(err, &te) || errors.As(err, &se)
}

func asNetError(err error, target *net.Error) bool {
	return errors.As(err, target)
}
