// SPDX-License-Identifier: MIT

// Package config loads test-target definitions from declarative
// configuration: a JSON or YAML targets document, a Play-style routes
// file, or an OpenAPI 3 document.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/shakedown/internal/gen"
	"github.com/ManuGH/shakedown/internal/target"
	"gopkg.in/yaml.v3"
)

// Document is the top-level shape of a JSON/YAML targets file.
type Document struct {
	Targets []TargetSpec `json:"targets" yaml:"targets"`
}

// TargetSpec is the declarative form of one test target.
type TargetSpec struct {
	Endpoint string    `json:"endpoint" yaml:"endpoint"`
	Method   string    `json:"method" yaml:"method"`
	Args     []ArgSpec `json:"args,omitempty" yaml:"args,omitempty"`
}

// ArgSpec is the declarative form of one argument placement. Type is
// "path" or "query". Generator specs left nil default to Magic.
type ArgSpec struct {
	Type      string    `json:"type" yaml:"type"`
	Generator *gen.Spec `json:"generator,omitempty" yaml:"generator,omitempty"`
	Name      *gen.Spec `json:"name,omitempty" yaml:"name,omitempty"`
	Value     *gen.Spec `json:"value,omitempty" yaml:"value,omitempty"`
}

// Load reads test targets from the file at path, dispatching on the file
// name: a file named "routes" uses the routes dialect, an *.openapi.*
// file is read as an OpenAPI 3 document, and .json/.yml/.yaml files are
// decoded as targets documents. Any load error here is a configuration
// error and fails the run before a single request is issued.
func Load(path string) ([]target.Target, error) {
	base := filepath.Base(path)
	switch {
	case base == "routes":
		return LoadRoutes(path)
	case strings.HasSuffix(base, ".openapi.json"),
		strings.HasSuffix(base, ".openapi.yaml"),
		strings.HasSuffix(base, ".openapi.yml"):
		return LoadOpenAPI(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var doc Document
	switch filepath.Ext(base) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", base, err)
		}
	case ".yml", ".yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", base, err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration file %q (must be .json, .yml/.yaml, an *.openapi.* document, or a file named \"routes\")", base)
	}

	return buildTargets(doc)
}

func buildTargets(doc Document) ([]target.Target, error) {
	targets := make([]target.Target, 0, len(doc.Targets))
	for i, spec := range doc.Targets {
		t, err := buildTarget(spec)
		if err != nil {
			return nil, fmt.Errorf("target %d (%s): %w", i, spec.Endpoint, err)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func buildTarget(spec TargetSpec) (target.Target, error) {
	method, err := target.ParseMethod(spec.Method)
	if err != nil {
		return target.Target{}, err
	}

	args := make([]target.Arg, 0, len(spec.Args))
	for i, as := range spec.Args {
		arg, err := buildArg(as)
		if err != nil {
			return target.Target{}, fmt.Errorf("arg %d: %w", i, err)
		}
		args = append(args, arg)
	}

	return target.Target{Endpoint: spec.Endpoint, Method: method, Args: args}, nil
}

func buildArg(spec ArgSpec) (target.Arg, error) {
	switch spec.Type {
	case "path":
		g, err := buildGen(spec.Generator)
		if err != nil {
			return nil, fmt.Errorf("generator: %w", err)
		}
		return target.PathArg{Gen: g}, nil
	case "query":
		name, err := buildGen(spec.Name)
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		value, err := buildGen(spec.Value)
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		return target.QueryArg{Name: name, Value: value}, nil
	}
	return nil, fmt.Errorf("unknown arg type %q (must be \"path\" or \"query\")", spec.Type)
}

// buildGen builds a generator from an optional spec; absence means Magic.
func buildGen(spec *gen.Spec) (gen.Generator, error) {
	if spec == nil {
		return gen.Magic{}, nil
	}
	return spec.Build()
}
