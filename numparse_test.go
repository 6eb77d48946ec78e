package basic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipWS(t *testing.T) {
	assert.Equal(t, "A", SkipWS("   A"))
	assert.Equal(t, "", SkipWS("   "))
	assert.Equal(t, "\tA", SkipWS("\tA"), "tabs are not stripped")
}

func TestParseUint16(t *testing.T) {
	for _, tc := range []struct {
		name    string
		in      string
		rest    string
		val     uint16
		wantErr bool
		notFound bool
	}{
		{name: "simple", in: "123", rest: "", val: 123},
		{name: "embedded spaces", in: "1 2 3x", rest: "x", val: 123},
		{name: "max", in: "65535", rest: "", val: 65535},
		{name: "overflow", in: "65536", wantErr: true},
		{name: "no digits", in: "ABC", wantErr: true, notFound: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rest, val, err := ParseUint16(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				if tc.notFound {
					assert.True(t, isNotFound(err))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.rest, rest)
			assert.Equal(t, tc.val, val)
		})
	}
}

func TestParseFloat(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		rest string
		val  float32
	}{
		{name: "integer", in: "42", rest: "", val: 42},
		{name: "decimal", in: "3.5", rest: "", val: 3.5},
		{name: "trailing", in: "3.5+1", rest: "+1", val: 3.5},
		{name: "exponent", in: "1E2", rest: "", val: 100},
		{name: "negative exponent", in: "1E" + string(byte(KwMinus)) + "2", rest: "", val: 0.01},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rest, val, err := ParseFloat(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.rest, rest)
			assert.InDelta(t, float64(tc.val), float64(val), 1e-6)
		})
	}
}

func TestParseVarName(t *testing.T) {
	rest, name, err := ParseVarName("A1)")
	require.NoError(t, err)
	assert.Equal(t, ")", rest)
	assert.Equal(t, PackVarName('A', '1'), name)

	rest, name, err = ParseVarName("Z rest")
	require.NoError(t, err)
	assert.Equal(t, "rest", rest)
	assert.Equal(t, PackVarName('Z', 0), name)

	_, _, err = ParseVarName("1A")
	assert.Equal(t, Syntax, CodeOf(err))
}

func TestVarNameString(t *testing.T) {
	assert.Equal(t, "A", PackVarName('A', 0).String())
	assert.Equal(t, "A1", PackVarName('A', '1').String())
	assert.Equal(t, "Z9", PackVarName('Z', '9').String())
}
