// SPDX-License-Identifier: MIT

package pipeline

import (
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	tcpDialTimeout        = 5 * time.Second
	tcpKeepAliveInterval  = 30 * time.Second
	tlsHandshakeTimeout   = 5 * time.Second
	idleConnTimeout       = 90 * time.Second
	expectContinueTimeout = 1 * time.Second

	defaultRequestTimeout = 30 * time.Second
)

// ClientOptions configures the shared HTTP client used for all trials.
type ClientOptions struct {
	// Timeout bounds one whole exchange (dial, write, read). Zero
	// means the default of 30s.
	Timeout time.Duration
	// Tracing wraps the transport with OpenTelemetry instrumentation.
	Tracing bool
}

// NewClient builds the pooled HTTP client shared by all in-flight
// trials. Concurrency is bounded by the worker pool, not here; the
// transport just reuses connections across trials against the same
// server.
func NewClient(opts ClientOptions) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   tcpDialTimeout,
			KeepAlive: tcpKeepAliveInterval,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
	}

	var rt http.RoundTripper = transport
	if opts.Tracing {
		rt = otelhttp.NewTransport(transport)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &http.Client{
		Transport: rt,
		Timeout:   timeout,
	}
}
