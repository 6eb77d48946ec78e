package basic

import (
	"errors"
	"fmt"
)

// Code enumerates the BASIC error taxonomy of spec §7, in the stable order
// the C original assigns them.
type Code int

const (
	OK Code = iota
	NextWithoutFor
	Syntax
	ReturnWithoutGosub
	OutOfData
	Parameter
	Overflow
	OutOfMemory
	NoSuchLine
	Subscript
	Redimension
	DivisionByZero
	InProgramOnly
	Stop
	Internal

	numCodes
)

var codeText = [numCodes]string{
	OK:                 "OK",
	NextWithoutFor:     "NEXT without FOR",
	Syntax:             "Syntax",
	ReturnWithoutGosub: "RETURN without GOSUB",
	OutOfData:          "Out of DATA",
	Parameter:          "Parameter",
	Overflow:           "Overflow",
	OutOfMemory:        "Out of memory",
	NoSuchLine:         "No such line",
	Subscript:          "Subscript",
	Redimension:        "Redimension",
	DivisionByZero:     "Division by 0",
	InProgramOnly:      "In program only",
	Stop:               "STOP",
	Internal:           "Internal",
}

func (c Code) String() string {
	if c < 0 || c >= numCodes {
		return fmt.Sprintf("Code(%d)", int(c))
	}
	return codeText[c]
}

// Status is the error value every statement handler, parser, and evaluator
// step returns. A nil error (not a Status with Code OK) means success;
// Status only ever wraps a non-OK code.
type Status struct {
	Code Code
}

func (s Status) Error() string {
	if s.Code == Stop {
		return "STOP"
	}
	return s.Code.String() + " error"
}

// Err constructs an error for a non-OK code. Err(OK) returns nil.
func Err(c Code) error {
	if c == OK {
		return nil
	}
	return Status{c}
}

// CodeOf extracts the Code from err, defaulting to Internal for any error
// that isn't a Status (a host I/O failure surfacing through the wrong
// path, for instance).
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var s Status
	if errors.As(err, &s) {
		return s.Code
	}
	return Internal
}

// errNotFound is a parser-only sentinel (spec §7's NOT_FOUND): it signals
// "nothing matched here" and must never reach the dispatcher's caller.
// Parsers that require a value convert it to Syntax.
var errNotFound = errors.New("not found")

func isNotFound(err error) bool { return errors.Is(err, errNotFound) }

// RenderError formats an error the way the interactive prompt and RUN both
// do (spec §6/§7): "<text> error" (bare "STOP" for Stop), with an
// " in line N" suffix when a line is known, terminated with a newline.
func RenderError(err error, line uint16, lineKnown bool) string {
	if err == nil {
		return ""
	}
	var s Status
	if !errors.As(err, &s) {
		s = Status{Internal}
	}
	msg := s.Error()
	if lineKnown {
		msg = fmt.Sprintf("%s in line %d", msg, line)
	}
	return msg + "\n"
}
