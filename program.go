package basic

import "fmt"

// Program is the sorted, singly-linked chain of stored lines living in the
// Arena's lowest region, [0, vars_idx). Offsets [0, sentinelSize) hold the
// fixed header ClearProgram writes (a sentinel byte and a zero u16); the
// chain itself starts right after it, at offset 3. Each record is laid out as
// next_off (u16LE, the absolute offset of the following record, or 0 at the
// end of the chain), line_no (u16LE), then the line's tokenized body,
// NUL-terminated.
type Program struct {
	a *Arena
}

const progRecordHead = 4 // next_off + line_no
const progFirst = sentinelSize

// bodyLen returns the length, excluding the NUL, of the body stored at off.
func (a *Arena) bodyLen(off uint) uint {
	buf := a.raw()
	n := uint(0)
	for buf[off+n] != 0 {
		n++
	}
	return n
}

// recordLen returns the full on-disk size (header + body + NUL) of the
// record starting at off.
func (a *Arena) recordLen(off uint) uint {
	return progRecordHead + a.bodyLen(off+progRecordHead) + 1
}

// findLine walks the chain looking for lineNo. If present, it returns the
// record's offset, true, and its on-disk length. If absent, it returns the
// offset at which a new record for lineNo belongs (the first record whose
// line number exceeds lineNo, or vars_idx to append at the end) and false.
func (p *Program) findLine(lineNo uint16) (off uint, found bool, recLen uint) {
	cur := uint(progFirst)
	for cur < p.a.varsIdx {
		next := p.a.u16At(cur)
		lno := p.a.u16At(cur + 2)
		switch {
		case lno == lineNo:
			return cur, true, p.a.recordLen(cur)
		case lno > lineNo:
			return cur, false, 0
		}
		if next == 0 {
			cur = p.a.varsIdx
		} else {
			cur = uint(next)
		}
	}
	return p.a.varsIdx, false, 0
}

// shiftAfter moves everything in [off, free_idx) by delta bytes (positive
// grows, negative shrinks), updating the three cursors that live above the
// program region. delta must keep every cursor non-negative and, for a
// growth, space must already be reserved by the caller via CheckSpace.
func (a *Arena) shiftAfter(off uint, delta int) {
	if delta == 0 {
		return
	}
	if delta > 0 {
		d := uint(delta)
		a.memmoveUp(off, a.freeIdx, off+d)
		a.varsIdx += d
		a.arrayIdx += d
		a.freeIdx += d
	} else {
		d := uint(-delta)
		a.memmoveDown(off, a.freeIdx, off-d)
		a.varsIdx -= d
		a.arrayIdx -= d
		a.freeIdx -= d
	}
}

// rebuildChain recomputes every record's next_off by scanning body NUL
// terminators rather than trusting previously stored pointers, matching the
// host dialect's approach to keeping the chain consistent after any
// insertion or deletion shifts bytes underneath it.
func (p *Program) rebuildChain() {
	off := uint(progFirst)
	for off < p.a.varsIdx {
		n := p.a.recordLen(off)
		next := off + n
		if next >= p.a.varsIdx {
			p.a.setU16At(off, 0)
			break
		}
		p.a.setU16At(off, uint16(next))
		off = next
	}
}

// StoreLine inserts, replaces, or (given an empty body) deletes the record
// for lineNo. The chain is kept sorted by ascending line number and
// rebuilt after any change.
func (p *Program) StoreLine(lineNo uint16, body string) error {
	off, found, recLen := p.findLine(lineNo)
	if found {
		p.a.shiftAfter(off+recLen, -int(recLen))
	}
	if body == "" {
		if found {
			p.rebuildChain()
		}
		return nil
	}

	newLen := uint(progRecordHead + len(body) + 1)
	if !p.a.CheckSpace(newLen) {
		return Err(OutOfMemory)
	}
	p.a.shiftAfter(off, int(newLen))
	p.a.setU16At(off, 0xffff) // placeholder, fixed by rebuildChain
	p.a.setU16At(off+2, lineNo)
	buf := p.a.raw()
	copy(buf[off+progRecordHead:], body)
	buf[off+progRecordHead+uint(len(body))] = 0

	p.rebuildChain()
	return nil
}

// Get returns the body stored for lineNo.
func (p *Program) Get(lineNo uint16) (string, bool) {
	off, found, _ := p.findLine(lineNo)
	if !found {
		return "", false
	}
	n := p.a.bodyLen(off + progRecordHead)
	return string(p.a.raw()[off+progRecordHead : off+progRecordHead+n]), true
}

// Cursor walks the chain in ascending line-number order, used by RUN and by
// GOTO/GOSUB's target lookup.
type Cursor struct {
	p   *Program
	off uint
}

// First returns a cursor positioned at the lowest-numbered line, or a
// cursor with Done()==true if the program is empty.
func (p *Program) First() Cursor {
	return Cursor{p: p, off: progFirst}
}

// At returns a cursor positioned at lineNo. ok is false if no such line
// exists.
func (p *Program) At(lineNo uint16) (Cursor, bool) {
	off, found, _ := p.findLine(lineNo)
	if !found {
		return Cursor{}, false
	}
	return Cursor{p: p, off: off}, true
}

// Done reports whether the cursor has run off the end of the program.
func (c Cursor) Done() bool { return c.p == nil || c.off >= c.p.a.varsIdx }

// Line returns the current record's line number and tokenized body.
func (c Cursor) Line() (uint16, string) {
	lno := c.p.a.u16At(c.off + 2)
	n := c.p.a.bodyLen(c.off + progRecordHead)
	return lno, string(c.p.a.raw()[c.off+progRecordHead : c.off+progRecordHead+n])
}

// Next advances to the following record.
func (c Cursor) Next() Cursor {
	next := c.p.a.u16At(c.off)
	if next == 0 {
		return Cursor{p: c.p, off: c.p.a.varsIdx}
	}
	return Cursor{p: c.p, off: uint(next)}
}

// NextAfter returns the line number and body of the first stored line with
// a line number strictly greater than lineNo, or ok=false if none exists.
// Unlike At, lineNo itself need not be a stored line: passing 0 finds the
// first stored line numbered above 0, which is how DATA's forward search
// seeds itself after RESTORE. A stored line numbered 0 is never returned.
func (p *Program) NextAfter(lineNo uint16) (uint16, string, bool) {
	cur := uint(progFirst)
	for cur < p.a.varsIdx {
		lno := p.a.u16At(cur + 2)
		if lno > lineNo {
			n := p.a.bodyLen(cur + progRecordHead)
			body := string(p.a.raw()[cur+progRecordHead : cur+progRecordHead+n])
			return lno, body, true
		}
		next := p.a.u16At(cur)
		if next == 0 {
			break
		}
		cur = uint(next)
	}
	return 0, "", false
}

// List renders every stored line through w, detokenized, in the classic
// "<line number> <body>" form.
func (p *Program) List(w func(string)) {
	for c := p.First(); !c.Done(); c = c.Next() {
		lno, body := c.Line()
		w(fmt.Sprintf("%d %s\n", lno, Detokenize(body)))
	}
}

// ListFrom renders every stored line from find_line(lineNo) onward through
// w, detokenized. lineNo need not be a stored line: the first stored line
// with a line number >= lineNo starts the listing, matching LIST's
// optional-start-line form.
func (p *Program) ListFrom(lineNo uint16, w func(string)) {
	off, _, _ := p.findLine(lineNo)
	for c := (Cursor{p: p, off: off}); !c.Done(); c = c.Next() {
		lno, body := c.Line()
		w(fmt.Sprintf("%d %s\n", lno, Detokenize(body)))
	}
}

// Clear discards all stored lines (and, per the arena's invariants,
// variables and the stack along with them).
func (p *Program) Clear() { p.a.ClearProgram() }
