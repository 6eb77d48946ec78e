package basic

import (
	"fmt"

	"tinybasic/internal/runeio"
)

// handlerPrint executes a PRINT statement. Items are separated by ',' (a
// literal tab) or ';' (no output at all, just a separator); a trailing ';'
// with nothing after it suppresses the usual closing newline. String
// literals are copied through verbatim, with the closing quote optional;
// TAB(n) emits an ANSI cursor-column escape instead of a character.
func (it *Interp) handlerPrint() error {
	p := it.parsePtr
	suppressNewline := false

	for {
		p = SkipWS(p)
		if len(p) == 0 || p[0] == ':' {
			break
		}
		suppressNewline = false

		switch {
		case p[0] == '"':
			p = p[1:]
			for len(p) > 0 && p[0] != '"' {
				it.writeANSIRune(rune(p[0]))
				p = p[1:]
			}
			if len(p) > 0 {
				p = p[1:] // closing quote
			}

		case Keyword(p[0]) == KwTab:
			rest, val, err := Eval(p[1:], &it.vars, &it.stack, it.rng)
			if err != nil {
				if isNotFound(err) {
					return Err(Syntax)
				}
				return err
			}
			rest = SkipWS(rest)
			if len(rest) == 0 || rest[0] != ')' {
				return Err(Syntax)
			}
			if val < 0 {
				return Err(Parameter)
			}
			p = rest[1:]
			it.writeANSIString(fmt.Sprintf("\033[%dG", int(val)+1))

		case p[0] == ',':
			it.writeANSIRune('\t')
			p = p[1:]
			continue

		case p[0] == ';':
			suppressNewline = true
			p = p[1:]
			continue

		default:
			rest, val, err := Eval(p, &it.vars, &it.stack, it.rng)
			if err != nil {
				if isNotFound(err) {
					return Err(Syntax)
				}
				return err
			}
			p = rest
			it.writeANSIString(fmt.Sprintf("%G ", val))
		}
	}

	it.parsePtr = p
	if !suppressNewline {
		it.writeANSIRune('\n')
	}
	return nil
}

func (it *Interp) writeANSIRune(r rune) {
	if _, err := runeio.WriteANSIRune(it.writer(), r); err != nil {
		it.halt(err)
	}
}

func (it *Interp) writeANSIString(s string) {
	if _, err := runeio.WriteANSIString(it.writer(), s); err != nil {
		it.halt(err)
	}
}
