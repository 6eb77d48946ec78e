package basic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"

	"tinybasic/internal/flushio"
	"tinybasic/internal/panicerr"
)

// noLine marks "no program running" (interactive/direct mode), the Go
// analogue of the host dialect's UINT_MAX sentinel for current_line.
const noLine = -1

// defaultArenaSize is used when WithArenaSize is not given. It comfortably
// holds a small program, its variables, and the FOR/GOSUB/expression
// stack.
const defaultArenaSize = 4096

// LineReader supplies whole lines of input, used both for INPUT statements
// and the interactive prompt.
type LineReader interface {
	ReadLine() (line string, ok bool)
}

// Interp is one instance of the interpreter: its arena-backed program,
// variables, and stack, plus the host hooks it was configured with.
type Interp struct {
	arena Arena
	prog  Program
	vars  Vars
	stack Stack
	rng   *rand.Rand

	out       flushio.WriteFlusher
	in        LineReader
	breakPoll func() bool
	logf      func(format string, args ...interface{})

	currentLine int32
	parsePtr    string

	dataLine    uint16
	dataPtr     string
	errorInData bool

	inputBuf string
}

// Option configures a new Interp, following the functional-options style
// used throughout this codebase.
type Option func(*config)

type config struct {
	arenaSize uint
	out       flushio.WriteFlusher
	in        LineReader
	breakPoll func() bool
	logf      func(string, ...interface{})
	rng       *rand.Rand
}

// WithArenaSize overrides the interpreter's total memory budget.
func WithArenaSize(n uint) Option { return func(c *config) { c.arenaSize = n } }

// WithOutput directs PRINT/LIST/error output through a flush-on-demand
// writer.
func WithOutput(w flushio.WriteFlusher) Option { return func(c *config) { c.out = w } }

// WithInput supplies the line source for INPUT and the interactive prompt.
func WithInput(in LineReader) Option { return func(c *config) { c.in = in } }

// WithBreakPoll installs a callback exec_line consults between statements;
// returning true aborts the running program with a STOP, mirroring the
// host's break-key check.
func WithBreakPoll(f func() bool) Option { return func(c *config) { c.breakPoll = f } }

// WithLogf installs a trace logger, called for every statement dispatched
// when non-nil.
func WithLogf(f func(string, ...interface{})) Option { return func(c *config) { c.logf = f } }

// WithRand overrides the random source RND draws from. Interpreters never
// touch the global math/rand source, so two Interps with the same seed
// produce identical RND sequences.
func WithRand(r *rand.Rand) Option { return func(c *config) { c.rng = r } }

// New builds a ready-to-use interpreter.
func New(opts ...Option) (*Interp, error) {
	c := config{arenaSize: defaultArenaSize}
	for _, opt := range opts {
		opt(&c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(1))
	}

	it := &Interp{
		rng:         c.rng,
		out:         c.out,
		in:          c.in,
		breakPoll:   c.breakPoll,
		logf:        c.logf,
		currentLine: noLine,
	}
	if err := it.arena.Init(c.arenaSize); err != nil {
		return nil, err
	}
	it.prog.a = &it.arena
	it.vars.a = &it.arena
	it.stack.a = &it.arena
	it.restoreData()
	return it, nil
}

func (it *Interp) tracef(format string, args ...interface{}) {
	if it.logf != nil {
		it.logf(format, args...)
	}
}

func (it *Interp) print(s string) {
	if _, err := io.WriteString(it.writer(), s); err != nil {
		it.halt(err)
	}
}

// writer returns the configured output, or an io.Discard stand-in if none
// was given, so print paths never need a nil check of their own.
func (it *Interp) writer() io.Writer {
	if it.out == nil {
		return io.Discard
	}
	return it.out
}

// restoreData resets the DATA search cursor to just before the program's
// first line, the effect of RESTORE, RUN, and NEW. Leaving dataPtr empty
// rather than seeding it with the first line's body makes the next
// READ's forward hunt do the work of skipping to the first actual DATA
// statement, wherever it is.
func (it *Interp) restoreData() {
	it.dataLine = 0
	it.dataPtr = ""
}

// gotoLine points execution at lineNo, requiring it to exist unless
// mustExist is false (RUN with no argument is allowed to start at
// whatever the first stored line is).
func (it *Interp) gotoLine(lineNo uint16, mustExist bool) error {
	c, ok := it.prog.At(lineNo)
	if !ok {
		if mustExist {
			return Err(NoSuchLine)
		}
		c = it.prog.First()
	}
	if c.Done() {
		it.currentLine = noLine
		it.parsePtr = ""
		return nil
	}
	lno, body := c.Line()
	it.currentLine = int32(lno)
	it.parsePtr = body
	return nil
}

// ProcessLine tokenizes and processes one line of input: a leading line
// number stores, replaces, or (given nothing after it) deletes that program
// line; anything else runs immediately in direct mode. The returned string
// is the rendered error message, if any (PRINT and LIST write directly to
// the configured output, not to this string), and printOK reports whether
// the caller's "OK\n" prompt should appear before the next read — it does
// not, right after a program line is stored, matching the host dialect's
// quieter editing mode.
func (it *Interp) ProcessLine(str string) (output string, printOK bool) {
	it.errorInData = false
	it.currentLine = noLine

	p := SkipWS(str)
	if len(p) == 0 {
		return "", true
	}
	p = Tokenize(p)

	rest, line, err := ParseUint16(p)
	if err != nil && !isNotFound(err) {
		return RenderError(err, 0, false), true
	}

	if err == nil {
		it.vars.Clear()
		if serr := it.prog.StoreLine(line, rest); serr != nil {
			return RenderError(serr, 0, false), false
		}
		it.restoreData()
		return "", false
	}

	it.parsePtr = p
	eerr := it.execLine()
	errLine := uint16(0)
	lineKnown := false
	if it.currentLine != noLine {
		errLine = uint16(it.currentLine)
		lineKnown = true
	}
	if it.errorInData {
		errLine = it.dataLine
		lineKnown = true
	}
	return RenderError(eerr, errLine, lineKnown), true
}

// haltError marks a host I/O failure (a broken output stream) that aborts
// a running interpreter outright, as distinct from the ordinary BASIC
// Status errors a statement can fail with and keep going from.
type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}

func (err haltError) Unwrap() error { return err.error }

// halt flushes whatever output made it out, then panics with a haltError,
// to be recovered at Run's single boundary.
func (it *Interp) halt(err error) {
	func() {
		defer func() { recover() }()
		if it.out != nil {
			it.out.Flush()
		}
	}()
	panic(haltError{err})
}

// Run drives the interactive prompt: print "OK", read a line, process it,
// repeat, until the input source is exhausted or ctx is done. Host I/O
// failures panic internally (see halt) and are recovered here, translated
// back into a plain error return; reaching end of input is not an error.
func (it *Interp) Run(ctx context.Context) error {
	err := panicerr.Recover("basic", func() error {
		return it.run(ctx)
	})
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var he haltError
	if errors.As(err, &he) {
		err = he.error
	}
	return err
}

func (it *Interp) run(ctx context.Context) error {
	printOK := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if printOK {
			it.print("OK\n")
		}
		line, ok := it.in.ReadLine()
		if !ok {
			return nil
		}
		output, next := it.ProcessLine(line)
		it.print(output)
		if it.out != nil {
			if ferr := it.out.Flush(); ferr != nil {
				it.halt(ferr)
			}
		}
		printOK = next
	}
}
