package basic

// readInputCommon is shared by READ and INPUT: both walk a
// "variable, variable, ..." list on the left against a "value, value, ..."
// source on the right, gated by independent leading-comma rules on each
// side. READ's source is the DATA statements scattered through the
// program, found by hunting forward from the last DATA position reached;
// INPUT's source is whatever the host supplies a line at a time, with a
// "?? " reprompt whenever more values are needed than the current line
// holds.
//
// firstData tracks whether the next value is the first taken from the
// current DATA statement or input line (no leading comma required) or a
// continuation (comma required). It starts false for READ: a fresh READ
// statement resumes mid-list exactly where the last one left off, so a
// leading comma is expected unless the forward hunt just landed on a new
// DATA statement (which resets it to true). It starts true for INPUT. A
// reprompt that pulls in a fresh input line deliberately does not reset
// firstData back to true: this matches a documented quirk of the dialect
// this interpreter follows, where continuing onto a second line still
// demands a leading comma.
func readInputCommon(it *Interp, read bool) error {
	firstInput := true
	firstData := !read

	for {
		for {
			var empty, atSep bool
			if read {
				empty = len(it.dataPtr) == 0
				atSep = !empty && it.dataPtr[0] == ':'
			} else {
				empty = len(it.inputBuf) == 0
			}
			if !empty && !atSep {
				break
			}

			if read {
				if empty {
					lno, body, ok := it.prog.NextAfter(it.dataLine)
					if !ok {
						return Err(OutOfData)
					}
					it.dataLine = lno
					it.dataPtr = body
				} else {
					it.dataPtr = it.dataPtr[1:]
				}
				it.dataPtr = SkipWS(it.dataPtr)
				if len(it.dataPtr) > 0 && Keyword(it.dataPtr[0]) == KwData {
					it.dataPtr = SkipWS(it.dataPtr[1:])
					firstData = true
				} else {
					it.dataPtr = SkipToEndStatement(it.dataPtr)
				}
				continue
			}

			it.print("?? ")
			line, ok := it.in.ReadLine()
			if !ok {
				return Err(Stop)
			}
			it.inputBuf = line
			// firstData is deliberately left untouched here.
		}

		if firstInput {
			firstInput = false
		} else {
			it.parsePtr = SkipWS(it.parsePtr)
			if len(it.parsePtr) == 0 || it.parsePtr[0] != ',' {
				return Err(Syntax)
			}
			it.parsePtr = SkipWS(it.parsePtr[1:])
		}

		src := &it.inputBuf
		if read {
			src = &it.dataPtr
		}

		if firstData {
			firstData = false
		} else {
			if len(*src) == 0 || (*src)[0] != ',' {
				if read {
					it.errorInData = true
				}
				return Err(Syntax)
			}
			*src = (*src)[1:]
		}

		rest, val, everr := Eval(*src, &it.vars, &it.stack, it.rng)
		if everr != nil {
			if read {
				it.errorInData = true
			}
			if isNotFound(everr) {
				return Err(Syntax)
			}
			return everr
		}
		*src = SkipWS(rest)

		it.parsePtr = SkipWS(it.parsePtr)
		restp, _, offset, rerr := it.vars.ResolveRef(it.parsePtr, &it.stack, it.rng, false)
		if rerr != nil {
			if isNotFound(rerr) {
				return Err(Syntax)
			}
			return rerr
		}
		it.parsePtr = restp
		it.arena.setF32At(offset, val)

		if len(it.parsePtr) == 0 || it.parsePtr[0] == ':' {
			break
		}
	}

	return nil
}
