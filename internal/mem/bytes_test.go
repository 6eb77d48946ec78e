package mem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybasic/internal/mem"
)

func TestBytesGrowAndStor(t *testing.T) {
	var m mem.Bytes
	require.NoError(t, m.Stor(3, 42))
	assert.Equal(t, uint(4), m.Len())

	v, err := m.Load(3)
	require.NoError(t, err)
	assert.Equal(t, byte(42), v)

	v, err = m.Load(100)
	require.NoError(t, err)
	assert.Equal(t, byte(0), v, "reading past the live buffer yields 0")
}

func TestBytesLimit(t *testing.T) {
	m := mem.Bytes{Limit: 8}
	require.NoError(t, m.Grow(8))
	err := m.Grow(9)
	require.Error(t, err)
	var lim mem.LimitError
	require.ErrorAs(t, err, &lim)
	assert.Equal(t, uint(9), lim.Addr)
}

func TestBytesReset(t *testing.T) {
	var m mem.Bytes
	require.NoError(t, m.Stor(2, 9))
	require.NoError(t, m.Reset(16))
	assert.Equal(t, uint(16), m.Len())
	v, err := m.Load(2)
	require.NoError(t, err)
	assert.Equal(t, byte(0), v, "Reset zero-fills")
}
