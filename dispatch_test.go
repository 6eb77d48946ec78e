package basic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybasic/internal/flushio"
)

// runLines feeds each line through ProcessLine in turn and returns the
// concatenation of every line's output.
func runLines(t *testing.T, it *Interp, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	for _, l := range lines {
		s, _ := it.ProcessLine(l)
		out.WriteString(s)
	}
	return out.String()
}

func newTestInterp(t *testing.T, arenaSize uint) (*Interp, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	it, err := New(WithArenaSize(arenaSize), WithOutput(flushio.NewWriteFlusher(&buf)))
	require.NoError(t, err)
	return it, &buf
}

func TestScenarioDirectForNext(t *testing.T) {
	it, buf := newTestInterp(t, 4096)
	runLines(t, it,
		"10 FOR I=1 TO 5",
		"30 PRINT I",
		"50 NEXT I",
		"RUN",
	)
	assert.Equal(t, "1 \n2 \n3 \n4 \n5 \n", buf.String())
}

func TestScenarioListRoundTrip(t *testing.T) {
	it, buf := newTestInterp(t, 4096)
	runLines(t, it,
		"  3 0 END",
		"1 0FOR I=1 TO 20 STEP 4: PRINT A: NEXT I",
		" 20 PRINT E",
		"LIST",
	)
	assert.Equal(t, "10 FOR I=1 TO 20 STEP 4: PRINT A: NEXT I\n20 PRINT E\n30 END\n", buf.String())
}

func TestListWithStartLineListsToEndOfChain(t *testing.T) {
	it, buf := newTestInterp(t, 4096)
	runLines(t, it,
		"10 PRINT 1",
		"20 PRINT 2",
		"30 PRINT 3",
	)
	runLines(t, it, "LIST 20")
	assert.Equal(t, "20 PRINT 2\n30 PRINT 3\n", buf.String())
}

func TestListWithGapStartLineListsFromNextHigherLine(t *testing.T) {
	it, buf := newTestInterp(t, 4096)
	runLines(t, it,
		"10 PRINT 1",
		"20 PRINT 2",
		"30 PRINT 3",
	)
	runLines(t, it, "LIST 25")
	assert.Equal(t, "30 PRINT 3\n", buf.String())
}

func TestScenarioReadDataExpressions(t *testing.T) {
	it, buf := newTestInterp(t, 4096)
	runLines(t, it,
		"10 DATA 3+5  , D+1 , 7",
		"20 DATA /0",
	)
	runLines(t, it, "RESTORE: READ A,B: READ C: PRINT A,B,C")
	assert.Equal(t, "8 \t1 \t7 \n", buf.String())

	out := runLines(t, it, "READ D")
	assert.Equal(t, "Syntax error in line 20\n", out)
}

func TestScenarioRecursionFreeDepth(t *testing.T) {
	it, _ := newTestInterp(t, 512)
	runLines(t, it, "10 GOSUB 10")
	out := runLines(t, it, "RUN")
	assert.Equal(t, "Out of memory error in line 10\n", out)
}

func TestScenarioForGosubInteraction(t *testing.T) {
	it, buf := newTestInterp(t, 4096)
	runLines(t, it,
		"10 FOR I=1 TO 2",
		"20 GOSUB 100",
		"30 PRINT I",
		"40 NEXT I",
		"50 END",
		"100 FOR J=1 TO 3",
		"110 RETURN",
	)
	runLines(t, it, "RUN")
	assert.Equal(t, "1 \n2 \n", buf.String())
}

func TestScenarioExpressionArenaTightnessEndToEnd(t *testing.T) {
	it, buf := newTestInterp(t, sentinelSize+9)
	runLines(t, it, "PRINT 2+3*4")
	assert.Equal(t, "14 \n", buf.String())
}

func TestBoundaryUint16Parse(t *testing.T) {
	_, _, err := ParseUint16("65535")
	assert.NoError(t, err)
	_, _, err = ParseUint16("65536")
	assert.Equal(t, Syntax, CodeOf(err))
}

func TestBoundaryDimOutOfMemory(t *testing.T) {
	it, _ := newTestInterp(t, sentinelSize+16)
	out := runLines(t, it, "DIM E(32767)")
	assert.Equal(t, "Out of memory error\n", out)
}

func TestBoundaryPrintTabNegative(t *testing.T) {
	it, _ := newTestInterp(t, 4096)
	out := runLines(t, it, `PRINT TAB(-1)"x"`)
	assert.Equal(t, "Parameter error\n", out)
}

func TestBoundaryPrintTab(t *testing.T) {
	it, buf := newTestInterp(t, 4096)
	runLines(t, it, `PRINT TAB(5)"HI"`)
	assert.Equal(t, "\033[6GHI\n", buf.String())
}

func TestBoundaryPrintOverflow(t *testing.T) {
	it, _ := newTestInterp(t, 4096)
	out := runLines(t, it, "PRINT 1e39")
	assert.Equal(t, "Overflow error\n", out)
}

func TestIfThenGoto(t *testing.T) {
	it, buf := newTestInterp(t, 4096)
	runLines(t, it,
		"10 LET A=5",
		"20 IF A>3 THEN 40",
		"30 PRINT 0",
		"40 PRINT 1",
	)
	runLines(t, it, "RUN")
	assert.Equal(t, "1 \n", buf.String())
}

func TestIfFalseFallsThrough(t *testing.T) {
	it, buf := newTestInterp(t, 4096)
	runLines(t, it,
		"10 IF 1>2 THEN 30",
		"20 PRINT 1",
		"30 PRINT 2",
	)
	runLines(t, it, "RUN")
	assert.Equal(t, "1 \n2 \n", buf.String())
}

func TestGotoNoSuchLine(t *testing.T) {
	it, _ := newTestInterp(t, 4096)
	out := runLines(t, it, "GOTO 999")
	assert.Equal(t, "No such line error\n", out)
}

func TestNextWithoutFor(t *testing.T) {
	it, _ := newTestInterp(t, 4096)
	out := runLines(t, it, "NEXT I")
	assert.Equal(t, "NEXT without FOR error\n", out)
}

func TestReturnWithoutGosub(t *testing.T) {
	it, _ := newTestInterp(t, 4096)
	out := runLines(t, it, "RETURN")
	assert.Equal(t, "RETURN without GOSUB error\n", out)
}

func TestClearWipesVariablesButNotProgram(t *testing.T) {
	it, buf := newTestInterp(t, 4096)
	runLines(t, it, "10 PRINT A")
	runLines(t, it, "LET A=5")
	runLines(t, it, "CLEAR: PRINT A")
	assert.Equal(t, "0 \n", buf.String())
	body, ok := it.prog.Get(10)
	assert.True(t, ok)
	assert.Equal(t, Tokenize("PRINT A"), body)
}

func TestNewWipesProgramAndVariables(t *testing.T) {
	it, _ := newTestInterp(t, 4096)
	runLines(t, it, "10 PRINT A")
	out := runLines(t, it, "NEW")
	assert.Equal(t, "", out, "NEW itself produces no output")
	_, ok := it.prog.Get(10)
	assert.False(t, ok)

	out = runLines(t, it, "LIST")
	assert.Equal(t, "", out, "an empty program lists nothing")
}

func TestProcessLineSuppressesOKAfterLineStorage(t *testing.T) {
	it, _ := newTestInterp(t, 4096)
	_, printOK := it.ProcessLine("10 PRINT A")
	assert.False(t, printOK, "storing a program line suppresses the OK prompt")

	_, printOK = it.ProcessLine("PRINT 1")
	assert.True(t, printOK, "direct-mode statements get the usual OK prompt")
}

func TestInputRepromptRequiresLeadingComma(t *testing.T) {
	// Running out of values on the current input line triggers a "?? "
	// reprompt, but the continuation line must itself start with a comma:
	// a documented quirk of this dialect's INPUT (see readinput.go).
	it, buf := newTestInterp(t, 4096)
	it.in = &fakeLineReader{lines: []string{"1", ",2"}}
	runLines(t, it, "10 INPUT A,B")
	out := runLines(t, it, "RUN")
	assert.Equal(t, "? ?? ", buf.String())
	assert.Equal(t, "", out)
}

func TestInputRepromptWithoutLeadingCommaFails(t *testing.T) {
	it, buf := newTestInterp(t, 4096)
	it.in = &fakeLineReader{lines: []string{"1", "2"}}
	runLines(t, it, "10 INPUT A,B")
	out := runLines(t, it, "RUN")
	assert.Equal(t, "? ?? ", buf.String())
	assert.Equal(t, "Syntax error in line 10\n", out)
}

type fakeLineReader struct {
	lines []string
	i     int
}

func (f *fakeLineReader) ReadLine() (string, bool) {
	if f.i >= len(f.lines) {
		return "", false
	}
	l := f.lines[f.i]
	f.i++
	return l, true
}
