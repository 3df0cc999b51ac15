// SPDX-License-Identifier: MIT
package gen

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestFixedAlwaysYieldsValue(t *testing.T) {
	g := Fixed{Value: "42"}
	rng := newRng(1)
	for i := 0; i < 100; i++ {
		assert.Equal(t, "42", g.Sample(rng))
	}
}

func TestChoiceUniformMembership(t *testing.T) {
	values := []string{"a", "b", "c"}
	g := Choice{Values: values}
	rng := newRng(7)
	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		seen[g.Sample(rng)]++
	}
	for _, v := range values {
		assert.Greater(t, seen[v], 0, "value %q never drawn", v)
	}
	assert.Len(t, seen, len(values))
}

func TestChoiceEmptyYieldsEmptyString(t *testing.T) {
	g := Choice{}
	rng := newRng(1)
	for i := 0; i < 10; i++ {
		assert.Equal(t, "", g.Sample(rng))
	}
}

func TestIntRangeBounds(t *testing.T) {
	tests := []struct {
		name      string
		low, high int64
	}{
		{name: "small range", low: -3, high: 3},
		{name: "single value", low: 5, high: 5},
		{name: "negative only", low: -10, high: -5},
		{name: "magic range", low: -100000, high: 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := IntRange{Low: tt.low, High: tt.high}
			require.NoError(t, g.Validate())
			rng := newRng(99)
			for i := 0; i < 2000; i++ {
				v, err := strconv.ParseInt(g.Sample(rng), 10, 64)
				require.NoError(t, err)
				require.GreaterOrEqual(t, v, tt.low)
				require.LessOrEqual(t, v, tt.high)
			}
		})
	}
}

func TestIntRangeBoundariesReachable(t *testing.T) {
	g := IntRange{Low: 0, High: 3}
	rng := newRng(3)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		seen[g.Sample(rng)] = true
	}
	assert.True(t, seen["0"], "low boundary never drawn")
	assert.True(t, seen["3"], "high boundary never drawn")
}

func TestIntRangeInvalid(t *testing.T) {
	g := IntRange{Low: 10, High: 9}
	require.Error(t, g.Validate())
}

func TestNumericLengthAndCharset(t *testing.T) {
	for _, length := range []int{0, 1, 8, 64} {
		g := Numeric{Len: length}
		rng := newRng(11)
		for i := 0; i < 50; i++ {
			s := g.Sample(rng)
			require.Len(t, s, length)
			for _, c := range s {
				require.True(t, c >= '0' && c <= '9', "non-digit %q in %q", c, s)
			}
		}
	}
}

func TestAlphaNumericLengthAndCharset(t *testing.T) {
	for _, length := range []int{0, 1, 16, 64} {
		g := AlphaNumeric{Len: length}
		rng := newRng(13)
		for i := 0; i < 50; i++ {
			s := g.Sample(rng)
			require.Len(t, s, length)
			for _, c := range s {
				require.True(t, strings.ContainsRune(alphanumerics, c), "unexpected char %q in %q", c, s)
			}
		}
	}
}

func TestNegativeLengthRejected(t *testing.T) {
	require.Error(t, Numeric{Len: -1}.Validate())
	require.Error(t, AlphaNumeric{Len: -1}.Validate())
}

func TestUnionSamplesMembers(t *testing.T) {
	g := Union{Generators: []Generator{
		Fixed{Value: "left"},
		Fixed{Value: "right"},
	}}
	rng := newRng(17)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[g.Sample(rng)] = true
	}
	assert.True(t, seen["left"])
	assert.True(t, seen["right"])
	assert.Len(t, seen, 2)
}

func TestUnionEmptyYieldsEmptyString(t *testing.T) {
	g := Union{}
	rng := newRng(1)
	assert.Equal(t, "", g.Sample(rng))
}

func TestUnionValidatesMembers(t *testing.T) {
	g := Union{Generators: []Generator{IntRange{Low: 2, High: 1}}}
	require.Error(t, g.Validate())
}

func TestNestedUnionSampling(t *testing.T) {
	g := Union{Generators: []Generator{
		Union{Generators: []Generator{Fixed{Value: "deep"}}},
	}}
	rng := newRng(5)
	assert.Equal(t, "deep", g.Sample(rng))
}

func TestMagicIsTotal(t *testing.T) {
	g := Magic{}
	rng := newRng(23)
	// Every draw must come from one of the three internal classes:
	// an edge-case token, a 16-char alphanumeric, or an integer.
	tokens := map[string]bool{
		"": true, "false": true, "true": true, "null": true,
		"undefined": true, "NaN": true, "%20": true, "%27": true,
	}
	classes := map[string]bool{}
	for i := 0; i < 500; i++ {
		s := g.Sample(rng)
		switch {
		case tokens[s]:
			classes["token"] = true
		case len(s) == 16 && isAlnum(s):
			classes["alphanumeric"] = true
		default:
			v, err := strconv.ParseInt(s, 10, 64)
			require.NoError(t, err, "unexpected magic sample %q", s)
			require.GreaterOrEqual(t, v, int64(-100000))
			require.LessOrEqual(t, v, int64(100000))
			classes["range"] = true
		}
	}
	assert.Len(t, classes, 3, "all magic classes should be reachable")
}

func TestSamplingIsDeterministicGivenSeed(t *testing.T) {
	g := Union{Generators: []Generator{
		Magic{},
		Numeric{Len: 4},
		Choice{Values: []string{"x", "y"}},
	}}
	a := newRng(42)
	b := newRng(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, g.Sample(a), g.Sample(b))
	}
}

func isAlnum(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune(alphanumerics, c) {
			return false
		}
	}
	return true
}
