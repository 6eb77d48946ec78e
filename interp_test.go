package basic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingWriter always errors, exercising the haltError/panicerr.Recover
// path on a broken host output stream.
type failingWriter struct{ err error }

func (w failingWriter) Write(p []byte) (int, error) { return 0, w.err }
func (w failingWriter) Flush() error                { return nil }

func TestRunHaltsOnWriteFailure(t *testing.T) {
	writeErr := errors.New("broken pipe")
	it, err := New(WithOutput(failingWriter{err: writeErr}), WithInput(&fakeLineReader{}))
	require.NoError(t, err)

	runErr := it.Run(context.Background())
	require.Error(t, runErr)
	assert.True(t, errors.Is(runErr, writeErr))
}

func TestRunCleanEOF(t *testing.T) {
	it, err := New(WithInput(&fakeLineReader{}))
	require.NoError(t, err)
	assert.NoError(t, it.Run(context.Background()))
}

func TestRunRespectsContextDeadline(t *testing.T) {
	it, err := New(WithInput(&blockingLineReader{}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	runErr := it.Run(ctx)
	assert.True(t, errors.Is(runErr, context.DeadlineExceeded))
}

// blockingLineReader always reports a line available, for exercising a
// deadline that must still cut execution off.
type blockingLineReader struct{}

func (blockingLineReader) ReadLine() (string, bool) { return "PRINT 1", true }

func TestProcessLineStoresAndDeletesLines(t *testing.T) {
	it, err := New()
	require.NoError(t, err)

	out, printOK := it.ProcessLine("10 PRINT 1")
	assert.Equal(t, "", out)
	assert.False(t, printOK)

	_, ok := it.prog.Get(10)
	assert.True(t, ok)

	out, printOK = it.ProcessLine("10")
	assert.Equal(t, "", out)
	assert.False(t, printOK)
	_, ok = it.prog.Get(10)
	assert.False(t, ok, "storing an empty body deletes the line")
}

func TestProcessLineBlankLineIsNoop(t *testing.T) {
	it, err := New()
	require.NoError(t, err)
	out, printOK := it.ProcessLine("   ")
	assert.Equal(t, "", out)
	assert.True(t, printOK)
}
