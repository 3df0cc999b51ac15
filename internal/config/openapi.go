// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ManuGH/shakedown/internal/gen"
	xglog "github.com/ManuGH/shakedown/internal/log"
	"github.com/ManuGH/shakedown/internal/target"
	"github.com/getkin/kin-openapi/openapi3"
)

// LoadOpenAPI derives test targets from an OpenAPI 3 document. Every
// documented operation with a supported method becomes one target;
// "{param}" path segments become Magic path arguments with the same
// prefix/suffix rules as the routes dialect, and declared query
// parameters become query arguments with Magic values.
func LoadOpenAPI(path string) ([]target.Target, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load OpenAPI document: %w", err)
	}
	if doc.Paths == nil {
		return nil, nil
	}

	logger := xglog.WithComponent("config")

	// Map iteration order is random; keep target order stable.
	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var targets []target.Target
	for _, p := range paths {
		item := pathMap[p]
		endpoint, pathArgs, err := parseTemplatePath(p)
		if err != nil {
			logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "config.openapi_path_dropped").
				Str(xglog.FieldEndpoint, p).
				Msg("ignoring path")
			continue
		}

		for _, m := range target.Methods {
			op := item.GetOperation(string(m))
			if op == nil {
				continue
			}
			args := cloneArgs(pathArgs)
			for _, ref := range op.Parameters {
				if ref.Value == nil || ref.Value.In != openapi3.ParameterInQuery {
					continue
				}
				args = append(args, target.QueryArg{
					Name:  gen.Fixed{Value: ref.Value.Name},
					Value: gen.Magic{},
				})
			}
			targets = append(targets, target.Target{
				Endpoint: endpoint,
				Method:   m,
				Args:     args,
			})
		}
	}
	return targets, nil
}

// parseTemplatePath is parseRouteURI for OpenAPI "{param}" placeholders.
func parseTemplatePath(p string) (string, []target.Arg, error) {
	var endpoint strings.Builder
	var args []target.Arg
	sawParam := false

	for _, component := range strings.Split(p, "/") {
		if component == "" {
			continue
		}
		switch {
		case strings.Contains(component, "*"):
			return "", nil, fmt.Errorf("could not read path %q: wildcard components are not supported", p)
		case strings.HasPrefix(component, "{") && strings.HasSuffix(component, "}"):
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
