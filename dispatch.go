package basic

// kwGeneralBegin and kwGeneralEnd bound the keyword range that may open a
// statement: END is the first, NEW the last. Anything beyond NEW (a
// function, an operator, TO/THEN/STEP) can never start a statement.
const kwGeneralBegin = KwEnd
const kwGeneralEnd = KwNew

// execLine runs statements starting at it.parsePtr, advancing across
// program lines (via NextAfter) as long as a program is running
// (it.currentLine != noLine); in direct mode it stops after one line.
func (it *Interp) execLine() error {
	for {
		for len(it.parsePtr) > 0 {
			it.errorInData = false

			if it.breakPoll != nil && it.breakPoll() {
				return Err(Stop)
			}

			c := Keyword(it.parsePtr[0])
			if c > kwGeneralEnd {
				return Err(Syntax)
			}
			if c >= kwGeneralBegin {
				it.parsePtr = it.parsePtr[1:]
			} else {
				c = KwLet
			}
			it.parsePtr = SkipWS(it.parsePtr)

			it.tracef("exec %v: %q", c, it.parsePtr)
			err := it.dispatch(c)
			if err != nil {
				return err
			}
			if c == KwEnd || c == KwNew {
				return nil
			}

			// IF continues straight into its THEN branch, and GOTO, GOSUB and
			// RUN leave parsePtr at the start of the target line's body, so
			// no ':' separator follows any of them.
			noSeparator := c == KwIf || c == KwGoto || c == KwGosub || c == KwRun
			if len(it.parsePtr) > 0 {
				if !noSeparator {
					if it.parsePtr[0] != ':' {
						return Err(Syntax)
					}
					it.parsePtr = it.parsePtr[1:]
				}
				it.parsePtr = SkipWS(it.parsePtr)
			}
		}

		if it.currentLine == noLine {
			break
		}
		lno, body, ok := it.prog.NextAfter(uint16(it.currentLine))
		if !ok {
			it.currentLine = noLine
			break
		}
		it.currentLine = int32(lno)
		it.parsePtr = body
	}
	return nil
}

func (it *Interp) dispatch(c Keyword) error {
	switch c {
	case KwEnd:
		return it.handlerEnd()
	case KwFor:
		return it.handlerFor()
	case KwNext:
		return it.handlerNext()
	case KwData:
		return it.handlerData()
	case KwInput:
		return it.handlerInput()
	case KwDim:
		return it.handlerDim()
	case KwRead:
		return it.handlerRead()
	case KwLet:
		_, err := it.letForCommon()
		return err
	case KwGoto:
		return it.handlerGoto()
	case KwRun:
		return it.handlerRun()
	case KwIf:
		return it.handlerIf()
	case KwRestore:
		return it.handlerRestore()
	case KwGosub:
		return it.handlerGosub()
	case KwReturn:
		return it.handlerReturn()
	case KwRem:
		return it.handlerRem()
	case KwStop:
		return it.handlerStop()
	case KwPrint:
		return it.handlerPrint()
	case KwList:
		return it.handlerList()
	case KwClear:
		return it.handlerClear()
	case KwNew:
		return it.handlerNew()
	}
	return Err(Internal)
}

// requireEndOfStatement rejects any statement (END, STOP, CLEAR, NEW,
// RETURN) that takes no arguments but has trailing text before the next
// ':' or end of line.
func requireEndOfStatement(p string) error {
	if len(p) > 0 && p[0] != ':' {
		return Err(Syntax)
	}
	return nil
}

func (it *Interp) handlerEnd() error { return requireEndOfStatement(it.parsePtr) }

func (it *Interp) handlerStop() error {
	if err := requireEndOfStatement(it.parsePtr); err != nil {
		return err
	}
	return Err(Stop)
}

func (it *Interp) handlerRem() error {
	it.parsePtr = ""
	return nil
}

func (it *Interp) handlerData() error {
	it.parsePtr = SkipToEndStatement(it.parsePtr)
	return nil
}

func (it *Interp) handlerRead() error { return readInputCommon(it, true) }

func (it *Interp) handlerInput() error {
	if it.currentLine == noLine {
		return Err(InProgramOnly)
	}
	it.print("? ")
	line, ok := it.in.ReadLine()
	if !ok {
		return Err(Stop)
	}
	it.inputBuf = line
	return readInputCommon(it, false)
}

func (it *Interp) handlerDim() error {
	p := it.parsePtr
	for {
		rest, _, _, err := it.vars.ResolveRef(p, &it.stack, it.rng, true)
		if err != nil {
			if isNotFound(err) {
				return Err(Syntax)
			}
			return err
		}
		p = rest
		if len(p) > 0 && p[0] == ',' {
			p = SkipWS(p[1:])
			continue
		}
		it.parsePtr = p
		return nil
	}
}

// letForCommon parses a variable reference, the assignment operator, and
// an expression, storing the result. It is shared by LET and FOR, which
// both need the resolved variable name (FOR, to tag its stack frame).
func (it *Interp) letForCommon() (VarName, error) {
	rest, name, offset, err := it.vars.ResolveRef(it.parsePtr, &it.stack, it.rng, false)
	if err != nil {
		if isNotFound(err) {
			return 0, Err(Syntax)
		}
		return 0, err
	}
	rest = SkipWS(rest)
	if len(rest) == 0 || Keyword(rest[0]) != KwEquals {
		return 0, Err(Syntax)
	}
	rest = rest[1:]
	rest, val, everr := Eval(rest, &it.vars, &it.stack, it.rng)
	if everr != nil {
		if isNotFound(everr) {
			return 0, Err(Syntax)
		}
		return 0, everr
	}
	it.arena.setF32At(offset, val)
	it.parsePtr = rest
	return name, nil
}

func (it *Interp) handlerFor() error {
	if it.currentLine == noLine {
		return Err(InProgramOnly)
	}
	name, err := it.letForCommon()
	if err != nil {
		return err
	}
	// Drop any FOR loop already open for this variable, and any inner
	// loops nested inside it.
	it.stack.LookupFor(name)

	p := SkipWS(it.parsePtr)
	if len(p) == 0 || Keyword(p[0]) != KwTo {
		return Err(Syntax)
	}
	p = SkipWS(p[1:])
	rest, limit, everr := Eval(p, &it.vars, &it.stack, it.rng)
	if everr != nil {
		if isNotFound(everr) {
			return Err(Syntax)
		}
		return everr
	}
	p = rest

	step := float32(1)
	if len(p) > 0 && Keyword(p[0]) == KwStep {
		p = SkipWS(p[1:])
		rest, sv, serr := Eval(p, &it.vars, &it.stack, it.rng)
		if serr != nil {
			if isNotFound(serr) {
				return Err(Syntax)
			}
			return serr
		}
		p = rest
		step = sv
	}

	it.parsePtr = p
	resumeOff, rerr := it.resumeOffset(uint16(it.currentLine), it.parsePtr)
	if rerr != nil {
		return rerr
	}
	frame := ForFrame{
		Var:        name,
		Limit:      limit,
		Step:       step,
		ResumeLine: uint16(it.currentLine),
		ResumeOff:  resumeOff,
	}
	if !it.stack.PushFor(frame) {
		return Err(OutOfMemory)
	}
	return nil
}

func (it *Interp) handlerNext() error {
	rest, name, err := ParseVarName(it.parsePtr)
	if err != nil {
		return Err(Syntax)
	}
	it.parsePtr = rest

	frame, ok := it.stack.LookupFor(name)
	if !ok {
		return Err(NextWithoutFor)
	}
	val := it.vars.Read(frame.Var)
	if (frame.Step > 0 && val < frame.Limit) || (frame.Step < 0 && val > frame.Limit) {
		if !it.stack.PushFor(frame) {
			return Err(OutOfMemory)
		}
		if serr := it.vars.Set(frame.Var, val+frame.Step); serr != nil {
			return serr
		}
		resume, rerr := it.resumeAt(frame.ResumeLine, frame.ResumeOff)
		if rerr != nil {
			return rerr
		}
		it.currentLine = int32(frame.ResumeLine)
		it.parsePtr = resume
	}
	return nil
}

// resumeOffset computes the byte offset of remaining within lineNo's
// stored body, for saving on the FOR/GOSUB stack. resumeAt reverses it.
func (it *Interp) resumeOffset(lineNo uint16, remaining string) (uint16, error) {
	body, ok := it.prog.Get(lineNo)
	if !ok || len(remaining) > len(body) {
		return 0, Err(Internal)
	}
	return uint16(len(body) - len(remaining)), nil
}

func (it *Interp) resumeAt(lineNo uint16, offset uint16) (string, error) {
	body, ok := it.prog.Get(lineNo)
	if !ok || int(offset) > len(body) {
		return "", Err(Internal)
	}
	return body[offset:], nil
}

func (it *Interp) gotoRunCommon(line uint16, mustExist bool) error {
	return it.gotoLine(line, mustExist)
}

func (it *Interp) handlerGoto() error {
	rest, line, err := ParseUint16(it.parsePtr)
	if err != nil {
		return Err(Syntax)
	}
	it.parsePtr = rest
	return it.gotoRunCommon(line, true)
}

func (it *Interp) handlerRun() error {
	rest, line, err := ParseUint16(it.parsePtr)
	mustExist := err == nil
	if err != nil && !isNotFound(err) {
		return Err(Syntax)
	}
	if err == nil {
		it.parsePtr = rest
	}
	it.vars.Clear()
	it.restoreData()
	return it.gotoRunCommon(line, mustExist)
}

func (it *Interp) handlerRestore() error {
	it.restoreData()
	return nil
}

func (it *Interp) handlerGosub() error {
	if it.currentLine == noLine {
		return Err(InProgramOnly)
	}
	rest, line, err := ParseUint16(it.parsePtr)
	if err != nil {
		return Err(Syntax)
	}
	resumeOff, rerr := it.resumeOffset(uint16(it.currentLine), rest)
	if rerr != nil {
		return rerr
	}
	frame := GosubFrame{ResumeLine: uint16(it.currentLine), ResumeOff: resumeOff}
	if !it.stack.PushGosub(frame) {
		return Err(OutOfMemory)
	}
	return it.gotoRunCommon(line, true)
}

func (it *Interp) handlerReturn() error {
	if err := requireEndOfStatement(it.parsePtr); err != nil {
		return err
	}
	frame, ok := it.stack.PopGosub()
	if !ok {
		return Err(ReturnWithoutGosub)
	}
	resume, rerr := it.resumeAt(frame.ResumeLine, frame.ResumeOff)
	if rerr != nil {
		return rerr
	}
	it.currentLine = int32(frame.ResumeLine)
	it.parsePtr = resume
	return nil
}

func (it *Interp) handlerClear() error {
	if err := requireEndOfStatement(it.parsePtr); err != nil {
		return err
	}
	it.vars.Clear()
	return nil
}

func (it *Interp) handlerNew() error {
	if err := requireEndOfStatement(it.parsePtr); err != nil {
		return err
	}
	it.prog.Clear()
	it.restoreData()
	return nil
}

func (it *Interp) handlerList() error {
	rest, line, err := ParseUint16(it.parsePtr)
	hasLine := err == nil
	if err != nil && !isNotFound(err) {
		return err
	}
	if hasLine {
		it.parsePtr = rest
		it.prog.ListFrom(line, it.print)
		return nil
	}
	it.prog.List(it.print)
	return nil
}

func (it *Interp) handlerIf() error {
	p := it.parsePtr
	rest, lhs, err := Eval(p, &it.vars, &it.stack, it.rng)
	if err != nil {
		if isNotFound(err) {
			return Err(Syntax)
		}
		return err
	}
	p = rest

	var opBitmap byte
	for {
		p = SkipWS(p)
		if len(p) == 0 {
			break
		}
		c := Keyword(p[0])
		if c < KwGreater || c > KwLess {
			break
		}
		opBitmap |= 1 << uint(c-KwGreater)
		p = p[1:]
	}
	if opBitmap == 0 {
		return Err(Syntax)
	}

	rest, rhs, err := Eval(p, &it.vars, &it.stack, it.rng)
	if err != nil {
		if isNotFound(err) {
			return Err(Syntax)
		}
		return err
	}
	p = SkipWS(rest)
	if len(p) == 0 || Keyword(p[0]) != KwThen {
		return Err(Syntax)
	}
	p = p[1:]
	it.parsePtr = p

	var cmpBitmap byte
	if lhs > rhs {
		cmpBitmap |= 1 << uint(KwGreater-KwGreater)
	}
	if lhs == rhs {
		cmpBitmap |= 1 << uint(KwEquals-KwGreater)
	}
	if lhs < rhs {
		cmpBitmap |= 1 << uint(KwLess-KwGreater)
	}

	if opBitmap&cmpBitmap == 0 {
		it.parsePtr = ""
		return nil
	}

	rest, line, lerr := ParseUint16(it.parsePtr)
	if lerr == nil {
		it.parsePtr = rest
		return it.gotoRunCommon(line, true)
	}
	return nil
}
