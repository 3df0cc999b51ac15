// SPDX-License-Identifier: MIT

// Package target models the declarative test targets of a fuzzing run: an
// endpoint template, an HTTP method and an ordered list of randomized
// argument placements.
package target

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ManuGH/shakedown/internal/gen"
)

// Method is the HTTP method of a test target.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPut    Method = "PUT"
	MethodPost   Method = "POST"
	MethodDelete Method = "DELETE"
)

// Methods lists every supported method, in wildcard expansion order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(s) {
	case "GET":
		return MethodGet, nil
	case "PUT":
		return MethodPut, nil
	case "POST":
		return MethodPost, nil
	case "DELETE":
		return MethodDelete, nil
	}
	return "", fmt.Errorf("invalid method %q", s)
}

func (m Method) String() string { return string(m) }

// Arg is one randomized argument placement within a target. Exactly two
// placements exist: path segments and query parameters. Declaration order
// is significant and preserved by the sampler.
type Arg interface {
	// apply appends the sampled argument to the URI under construction.
	apply(b *uriBuilder, rng *rand.Rand)
}

// PathArg appends "/" plus a sampled value to the request path.
type PathArg struct {
	Gen gen.Generator
}

func (a PathArg) apply(b *uriBuilder, rng *rand.Rand) {
	b.path.WriteByte('/')
	b.path.WriteString(a.Gen.Sample(rng))
}

// QueryArg appends a sampled name/value pair to the query string. A pair
// whose sampled value is empty is emitted as a bare name without "=".
type QueryArg struct {
	Name  gen.Generator
	Value gen.Generator
}

func (a QueryArg) apply(b *uriBuilder, rng *rand.Rand) {
	if b.query.Len() == 0 {
		b.query.WriteByte('?')
	} else {
		b.query.WriteByte('&')
	}
	b.query.WriteString(a.Name.Sample(rng))
	if v := a.Value.Sample(rng); v != "" {
		b.query.WriteByte('=')
		b.query.WriteString(v)
	}
}

// Target describes one endpoint+method to be fuzz-tested. Targets are
// constructed once at load time and shared read-only across trials.
type Target struct {
	Endpoint string
	Method   Method
	Args     []Arg
}

// Label returns a short "METHOD /endpoint" label for logs.
func (t *Target) Label() string {
	ep := t.Endpoint
	if !strings.HasPrefix(ep, "/") {
		ep = "/" + ep
	}
	return string(t.Method) + " " + ep
}
