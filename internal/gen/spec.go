// SPDX-License-Identifier: MIT

package gen

import "fmt"

// Spec is the declarative form of a Generator as it appears in JSON or YAML
// configuration. The "type" field discriminates the variant; an absent or
// empty spec builds the Magic generator.
type Spec struct {
	Type       string   `json:"type,omitempty" yaml:"type,omitempty"`
	Value      string   `json:"value,omitempty" yaml:"value,omitempty"`
	Values     []string `json:"values,omitempty" yaml:"values,omitempty"`
	Low        int64    `json:"low,omitempty" yaml:"low,omitempty"`
	High       int64    `json:"high,omitempty" yaml:"high,omitempty"`
	Len        int      `json:"len,omitempty" yaml:"len,omitempty"`
	Generators []Spec   `json:"generators,omitempty" yaml:"generators,omitempty"`
}

// Build constructs and validates the generator tree described by the spec.
// Invalid specs (unknown type, low > high, negative length) are load-time
// errors; a built tree never fails at sample time.
func (s Spec) Build() (Generator, error) {
	var g Generator
	switch s.Type {
	case "", "magic":
		g = Magic{}
	case "fixed":
		g = Fixed{Value: s.Value}
	case "choice":
		g = Choice{Values: s.Values}
	case "range":
		g = IntRange{Low: s.Low, High: s.High}
	case "numeric":
		g = Numeric{Len: s.Len}
	case "alphanumeric":
		g = AlphaNumeric{Len: s.Len}
	case "union":
		members := make([]Generator, 0, len(s.Generators))
		for i, ms := range s.Generators {
			m, err := ms.Build()
			if err != nil {
				return nil, fmt.Errorf("union member %d: %w", i, err)
			}
			members = append(members, m)
		}
		g = Union{Generators: members}
	default:
		return nil, fmt.Errorf("unknown generator type %q", s.Type)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
