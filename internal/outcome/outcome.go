// SPDX-License-Identifier: MIT

// Package outcome classifies the result of a single issued request.
//
// The trichotomy is exhaustive and the sole classification rule: a 5xx
// status is a server-error finding, any other status is good, and a
// transport failure that is not connection-level is attributed to the
// server. Connection-level failures are not outcomes at all; they are
// pipeline errors handled by the caller.
package outcome

import (
	"errors"
	"net"
	"os"
	"strconv"
	"syscall"

	"github.com/ManuGH/shakedown/internal/target"
)

// Kind discriminates the outcome classes.
type Kind int

const (
	// Good: the server produced a non-5xx response.
	Good Kind = iota
	// BadServerError: the server responded with a 5xx status.
	BadServerError
	// BadTransport: the exchange failed below HTTP in a way the server
	// is held responsible for (malformed response, premature close).
	BadTransport
)

func (k Kind) String() string {
	switch k {
	case Good:
		return "good"
	case BadServerError:
		return "server_error"
	case BadTransport:
		return "transport_error"
	}
	return "unknown"
}

// Outcome is the classified result of one trial. It is created once per
// issued request and consumed exactly once by the recorder.
type Outcome struct {
	Method target.Method
	URI    string
	Kind   Kind

	Status int    // set for Good and BadServerError
	Body   []byte // captured response body, BadServerError only
	Err    error  // set for BadTransport
}

// FromStatus classifies a completed HTTP exchange by status code.
func FromStatus(method target.Method, uri string, status int, body []byte) Outcome {
	o := Outcome{Method: method, URI: uri, Status: status}
	if status >= 500 {
		o.Kind = BadServerError
		o.Body = body
	}
	return o
}

// FromTransportError wraps a non-connection transport failure as a
// server-caused outcome.
func FromTransportError(method target.Method, uri string, err error) Outcome {
	return Outcome{Method: method, URI: uri, Kind: BadTransport, Err: err}
}

// Reason is the stringified cause recorded in the failure log: the status
// code for server errors, the transport error text otherwise.
func (o Outcome) Reason() string {
	if o.Kind == BadTransport {
		return o.Err.Error()
	}
	return strconv.Itoa(o.Status)
}

// IsConnectionError reports whether err is a connection-level transport
// failure (refused, reset, DNS, dial timeout). Such failures are the
// pipeline's problem, not the server's, and must not become outcomes.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var sysErr *os.SyscallError
	return errors.As(err, &sysErr) && sysErr.Syscall == "connect"
}
