// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ManuGH/shakedown/internal/gen"
	xglog "github.com/ManuGH/shakedown/internal/log"
	"github.com/ManuGH/shakedown/internal/target"
)

// LoadRoutes derives test targets from a Play-style routes file. Each
// non-comment, non-blank line of the form "<METHOD|*> <uri-pattern>"
// yields one target per method; "*" expands to all four. A malformed
// route (wildcard component) is reported and dropped without failing
// the overall load.
func LoadRoutes(path string) ([]target.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	return parseRoutes(string(data)), nil
}

func parseRoutes(text string) []target.Target {
	logger := xglog.WithComponent("config")

	var targets []target.Target
	for _, line := range strings.Split(text, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		var methods []target.Method
		switch fields[0] {
		case "*":
			methods = target.Methods
		case "GET", "POST", "PUT", "DELETE":
			methods = []target.Method{target.Method(fields[0])}
		default:
			// Not a route declaration; routes files carry other
			// line shapes that are none of our business.
			continue
		}

		endpoint, args, err := parseRouteURI(fields[1])
		if err != nil {
			logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "config.route_dropped").
				Str(xglog.FieldEndpoint, fields[1]).
				Msg("ignoring route")
			continue
		}

		for _, m := range methods {
			targets = append(targets, target.Target{
				Endpoint: endpoint,
				Method:   m,
				Args:     cloneArgs(args),
			})
		}
	}
	return targets
}

// parseRouteURI splits a route pattern into the literal endpoint prefix
// and the argument list. Every component before the first ":param"
// placeholder joins the endpoint; placeholders become Magic path
// segments; literal components after a placeholder become fixed path
// segments. Wildcard components are not supported.
func parseRouteURI(uri string) (string, []target.Arg, error) {
	var endpoint strings.Builder
	var args []target.Arg
	sawParam := false

	for _, component := range strings.Split(uri, "/") {
		if component == "" {
			continue
		}
		switch {
		case strings.Contains(component, "*"):
			return "", nil, fmt.Errorf("could not read URI %q: routes with wildcard '*' are not supported", uri)
		case strings.HasPrefix(component, ":"):
			args = append(args, target.PathArg{Gen: gen.Magic{}})
			sawParam = true
		case sawParam:
			args = append(args, target.PathArg{Gen: gen.Fixed{Value: component}})
		default:
			endpoint.WriteByte('/')
			endpoint.WriteString(component)
		}
	}

	ep := endpoint.String()
	if ep == "" {
		ep = "/"
	}
	return ep, args, nil
}

func cloneArgs(args []target.Arg) []target.Arg {
	if len(args) == 0 {
		return nil
	}
	out := make([]target.Arg, len(args))
	copy(out, args)
	return out
}
