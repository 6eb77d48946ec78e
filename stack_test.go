package basic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStack(t *testing.T, size uint) *Stack {
	t.Helper()
	a := &Arena{}
	require.NoError(t, a.Init(size))
	return &Stack{a: a}
}

func TestStackForPushLookup(t *testing.T) {
	s := newTestStack(t, 256)
	frame := ForFrame{Var: PackVarName('I', 0), Limit: 10, Step: 1, ResumeLine: 20, ResumeOff: 3}
	require.True(t, s.PushFor(frame))

	got, ok := s.LookupFor(PackVarName('I', 0))
	require.True(t, ok)
	assert.Equal(t, frame, got)

	_, ok = s.LookupFor(PackVarName('I', 0))
	assert.False(t, ok, "LookupFor consumes the frame it finds")
}

func TestStackForNestedReplacement(t *testing.T) {
	s := newTestStack(t, 256)
	outer := ForFrame{Var: PackVarName('I', 0), Limit: 10, Step: 1}
	inner := ForFrame{Var: PackVarName('J', 0), Limit: 5, Step: 1}
	require.True(t, s.PushFor(outer))
	require.True(t, s.PushFor(inner))

	// Re-entering FOR I drops J's now-abandoned inner loop along with it.
	got, ok := s.LookupFor(PackVarName('I', 0))
	require.True(t, ok)
	assert.Equal(t, outer, got)

	_, ok = s.LookupFor(PackVarName('J', 0))
	assert.False(t, ok)
}

func TestStackGosubReturnAcrossFor(t *testing.T) {
	s := newTestStack(t, 256)
	require.True(t, s.PushGosub(GosubFrame{ResumeLine: 5, ResumeOff: 1}))
	require.True(t, s.PushFor(ForFrame{Var: PackVarName('I', 0), Limit: 10, Step: 1}))

	frame, ok := s.PopGosub()
	require.True(t, ok, "RETURN must pop through open FOR frames")
	assert.Equal(t, uint16(5), frame.ResumeLine)

	_, ok = s.LookupFor(PackVarName('I', 0))
	assert.False(t, ok, "the FOR frame was discarded on the way to RETURN")
}

func TestStackLookupForStopsAtGosub(t *testing.T) {
	s := newTestStack(t, 256)
	require.True(t, s.PushFor(ForFrame{Var: PackVarName('I', 0), Limit: 10, Step: 1}))
	require.True(t, s.PushGosub(GosubFrame{ResumeLine: 5, ResumeOff: 1}))

	_, ok := s.LookupFor(PackVarName('I', 0))
	assert.False(t, ok, "a loop var can't be reached back through a GOSUB boundary")
}

func TestStackPushForOutOfMemory(t *testing.T) {
	s := newTestStack(t, sentinelSize+4)
	ok := s.PushFor(ForFrame{Var: PackVarName('I', 0), Limit: 10, Step: 1})
	assert.False(t, ok)
}

func TestStackMarkRestore(t *testing.T) {
	s := newTestStack(t, 256)
	mark := s.Mark()
	require.True(t, s.PushGosub(GosubFrame{ResumeLine: 1, ResumeOff: 1}))
	s.Restore(mark)
	assert.Equal(t, mark, s.Mark())
	_, ok := s.PopGosub()
	assert.False(t, ok, "Restore discards whatever was pushed after the mark")
}
