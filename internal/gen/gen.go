// SPDX-License-Identifier: MIT

// Package gen implements the randomized argument generator algebra.
//
// A Generator is an immutable value tree loaded once from configuration and
// shared read-only across all sampling trials. Sampling is total: given any
// valid tree and a random source it always yields a string, never an error.
package gen

import (
	"fmt"
	"math/rand"
	"strconv"
)

// Generator produces a randomized string value.
type Generator interface {
	// Sample draws one value. It is pure given the state of rng and
	// bottoms out in at most one recursive call per tree level.
	Sample(rng *rand.Rand) string

	// Validate rejects configurations that would make sampling
	// ill-defined. It is called once at load time; Sample assumes a
	// validated tree.
	Validate() error
}

// Fixed always yields the same value.
type Fixed struct {
	Value string
}

func (g Fixed) Sample(*rand.Rand) string { return g.Value }

func (g Fixed) Validate() error { return nil }

// Choice yields one of its values, chosen uniformly at random.
// An empty value list degrades to the empty string.
type Choice struct {
	Values []string
}

func (g Choice) Sample(rng *rand.Rand) string {
	if len(g.Values) == 0 {
		return ""
	}
	return g.Values[rng.Intn(len(g.Values))]
}

func (g Choice) Validate() error { return nil }

// IntRange yields a uniformly random integer in [Low, High] inclusive,
// stringified in base 10.
type IntRange struct {
	Low  int64
	High int64
}

func (g IntRange) Sample(rng *rand.Rand) string {
	// Width arithmetic in uint64 so that the full int64 span is safe.
	delta := uint64(g.High - g.Low)
	var off uint64
	if delta == ^uint64(0) {
		off = rng.Uint64()
	} else {
		off = rng.Uint64() % (delta + 1)
	}
	return strconv.FormatInt(g.Low+int64(off), 10)
}

func (g IntRange) Validate() error {
	if g.Low > g.High {
		return fmt.Errorf("invalid integer range: low %d > high %d", g.Low, g.High)
	}
	return nil
}

// Numeric yields a string of exactly Len random decimal digits.
type Numeric struct {
	Len int
}

func (g Numeric) Sample(rng *rand.Rand) string {
	buf := make([]byte, g.Len)
	for i := range buf {
		buf[i] = byte('0' + rng.Intn(10))
	}
	return string(buf)
}

func (g Numeric) Validate() error {
	if g.Len < 0 {
		return fmt.Errorf("numeric generator length must be >= 0 (got %d)", g.Len)
	}
	return nil
}

const alphanumerics = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// AlphaNumeric yields a string of exactly Len random alphanumeric characters.
type AlphaNumeric struct {
	Len int
}

func (g AlphaNumeric) Sample(rng *rand.Rand) string {
	buf := make([]byte, g.Len)
	for i := range buf {
		buf[i] = alphanumerics[rng.Intn(len(alphanumerics))]
	}
	return string(buf)
}

func (g AlphaNumeric) Validate() error {
	if g.Len < 0 {
		return fmt.Errorf("alphanumeric generator length must be >= 0 (got %d)", g.Len)
	}
	return nil
}

// Union yields the result of sampling one of its members, chosen uniformly
// at random. An empty member list degrades to the empty string.
type Union struct {
	Generators []Generator
}

func (g Union) Sample(rng *rand.Rand) string {
	if len(g.Generators) == 0 {
		return ""
	}
	return g.Generators[rng.Intn(len(g.Generators))].Sample(rng)
}

func (g Union) Validate() error {
	for _, m := range g.Generators {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Magic is the default generator used when a configuration leaves the
// generator unspecified. It multiplexes over a fixed internal set of
// edge-case-oriented generators. The set is versioned: changing it changes
// fuzzing coverage, not semantics.
type Magic struct{}

var magicSet = []Generator{
	Choice{Values: []string{"", "false", "true", "null", "undefined", "NaN", "%20", "%27"}},
	AlphaNumeric{Len: 16},
	IntRange{Low: -100000, High: 100000},
}

func (Magic) Sample(rng *rand.Rand) string {
	return magicSet[rng.Intn(len(magicSet))].Sample(rng)
}

func (Magic) Validate() error { return nil }
