// SPDX-License-Identifier: MIT

package target

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"
)

// InvalidURIError reports that a sampled URI failed to parse. This is
// always a configuration or generator-output problem, never transient.
type InvalidURIError struct {
	URI string
	Err error
}

func (e *InvalidURIError) Error() string {
	return fmt.Sprintf("invalid request URI %q: %v", e.URI, e.Err)
}

func (e *InvalidURIError) Unwrap() error { return e.Err }

type uriBuilder struct {
	path  strings.Builder
	query strings.Builder
}

// Sample assembles one randomized request URI for the target: base URL,
// exactly one separating "/", the endpoint template verbatim, then every
// argument in declaration order. The concatenation must parse as an
// absolute URI; a parse failure is the only error path.
func (t *Target) Sample(baseURL string, rng *rand.Rand) (string, error) {
	var b uriBuilder
	b.path.WriteString(strings.TrimSuffix(baseURL, "/"))
	if !strings.HasPrefix(t.Endpoint, "/") {
		b.path.WriteByte('/')
	}
	b.path.WriteString(t.Endpoint)

	for _, arg := range t.Args {
		arg.apply(&b, rng)
	}

	uri := b.path.String() + b.query.String()
	if _, err := url.ParseRequestURI(uri); err != nil {
		return "", &InvalidURIError{URI: uri, Err: err}
	}
	return uri, nil
}
