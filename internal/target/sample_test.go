// SPDX-License-Identifier: MIT
package target

import (
	"math/rand"
	"testing"

	"github.com/ManuGH/shakedown/internal/gen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestSampleFixedPathSegment(t *testing.T) {
	tgt := &Target{
		Endpoint: "/users",
		Method:   MethodGet,
		Args:     []Arg{PathArg{Gen: gen.Fixed{Value: "42"}}},
	}
	uri, err := tgt.Sample("http://x", newRng(1))
	require.NoError(t, err)
	assert.Equal(t, "http://x/users/42", uri)
}

func TestSampleSeparatorHandling(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		endpoint string
		want     string
	}{
		{name: "bare base, slashed endpoint", baseURL: "http://x", endpoint: "/users", want: "http://x/users"},
		{name: "bare base, bare endpoint", baseURL: "http://x", endpoint: "users", want: "http://x/users"},
		{name: "slashed base, slashed endpoint", baseURL: "http://x/", endpoint: "/users", want: "http://x/users"},
		{name: "slashed base, bare endpoint", baseURL: "http://x/", endpoint: "users", want: "http://x/users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt := &Target{Endpoint: tt.endpoint, Method: MethodGet}
			uri, err := tgt.Sample(tt.baseURL, newRng(1))
			require.NoError(t, err)
			assert.Equal(t, tt.want, uri)
		})
	}
}

func TestSampleQueryParams(t *testing.T) {
	tgt := &Target{
		Endpoint: "/search",
		Method:   MethodGet,
		Args: []Arg{
			QueryArg{Name: gen.Fixed{Value: "q"}, Value: gen.Fixed{Value: "abc"}},
			QueryArg{Name: gen.Fixed{Value: "page"}, Value: gen.Fixed{Value: "2"}},
		},
	}
	uri, err := tgt.Sample("http://x", newRng(1))
	require.NoError(t, err)
	assert.Equal(t, "http://x/search?q=abc&page=2", uri)
}

func TestSampleBareQueryNameWhenValueEmpty(t *testing.T) {
	tgt := &Target{
		Endpoint: "/search",
		Method:   MethodGet,
		Args: []Arg{
			QueryArg{Name: gen.Fixed{Value: "q"}, Value: gen.Fixed{Value: ""}},
		},
	}
	uri, err := tgt.Sample("http://x", newRng(1))
	require.NoError(t, err)
	assert.Equal(t, "http://x/search?q", uri)
}

func TestSampleArgOrderPreserved(t *testing.T) {
	tgt := &Target{
		Endpoint: "/a",
		Method:   MethodPost,
		Args: []Arg{
			PathArg{Gen: gen.Fixed{Value: "b"}},
			QueryArg{Name: gen.Fixed{Value: "x"}, Value: gen.Fixed{Value: "1"}},
			PathArg{Gen: gen.Fixed{Value: "c"}},
			QueryArg{Name: gen.Fixed{Value: "y"}, Value: gen.Fixed{Value: "2"}},
		},
	}
	uri, err := tgt.Sample("http://x", newRng(1))
	require.NoError(t, err)
	// Path segments accumulate in order; query params accumulate in order,
	// after the whole path.
	assert.Equal(t, "http://x/a/b/c?x=1&y=2", uri)
}

func TestSampleDeterministicGivenSeed(t *testing.T) {
	tgt := &Target{
		Endpoint: "/items",
		Method:   MethodGet,
		Args: []Arg{
			PathArg{Gen: gen.Magic{}},
			QueryArg{Name: gen.AlphaNumeric{Len: 4}, Value: gen.Magic{}},
		},
	}
	a, err := tgt.Sample("http://x", newRng(77))
	require.NoError(t, err)
	b, err := tgt.Sample("http://x", newRng(77))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSampleInvalidURI(t *testing.T) {
	// A control character in the sampled output breaks URI parsing.
	tgt := &Target{
		Endpoint: "/items",
		Method:   MethodGet,
		Args:     []Arg{PathArg{Gen: gen.Fixed{Value: "\x7f\x01"}}},
	}
	_, err := tgt.Sample("http://x", newRng(1))
	require.Error(t, err)
	var invalid *InvalidURIError
	require.ErrorAs(t, err, &invalid)
}

func TestSampleMagicAlwaysParses(t *testing.T) {
	// Magic outputs only URL-safe tokens, so sampling never fails.
	tgt := &Target{
		Endpoint: "/items",
		Method:   MethodGet,
		Args: []Arg{
			PathArg{Gen: gen.Magic{}},
			QueryArg{Name: gen.Fixed{Value: "v"}, Value: gen.Magic{}},
		},
	}
	rng := newRng(9)
	for i := 0; i < 500; i++ {
		_, err := tgt.Sample("http://x", rng)
		require.NoError(t, err)
	}
}
