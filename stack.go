package basic

import "math"

// Stack is the downward-growing FOR/GOSUB/expression stack occupying
// [stktop_idx, max_idx) of the arena, top at the low end. FOR and GOSUB
// frames carry a one-byte tag ahead of their payload so the stack can be
// scanned without separate bookkeeping; expression frames are pushed
// untagged (the evaluator always knows exactly what it pushed and pops in
// strict LIFO order) to save the byte.
type Stack struct {
	a *Arena
}

const (
	tagFor   = 0
	tagGosub = 1
)

// ForFrame is a FOR loop's saved state: the loop variable, its limit and
// step, and the line number and body offset of the statement to resume at
// on NEXT.
type ForFrame struct {
	Var        VarName
	Limit      float32
	Step       float32
	ResumeLine uint16
	ResumeOff  uint16 // offset into the line's body to resume parsing from
}

const forFrameSize = 2 + 4 + 4 + 2 + 2 // 14 bytes

// GosubFrame is a GOSUB's saved return point.
type GosubFrame struct {
	ResumeLine uint16
	ResumeOff  uint16
}

const gosubFrameSize = 2 + 2 // 4 bytes

func (a *Arena) pushTagged(tag byte, payload []byte) bool {
	n := uint(len(payload)) + 1
	if a.stktopIdx-a.freeIdx < n {
		return false
	}
	a.stktopIdx -= n
	buf := a.raw()
	buf[a.stktopIdx] = tag
	copy(buf[a.stktopIdx+1:], payload)
	return true
}

// PushFor pushes a FOR frame. ok is false if the stack has no room, in
// which case the caller reports OUT_OF_MEMORY.
func (s *Stack) PushFor(f ForFrame) bool {
	var b [forFrameSize]byte
	putU16(b[0:2], uint16(f.Var))
	putF32(b[2:6], f.Limit)
	putF32(b[6:10], f.Step)
	putU16(b[10:12], f.ResumeLine)
	putU16(b[12:14], f.ResumeOff)
	return s.a.pushTagged(tagFor, b[:])
}

// PushGosub pushes a GOSUB return frame.
func (s *Stack) PushGosub(f GosubFrame) bool {
	var b [gosubFrameSize]byte
	putU16(b[0:2], f.ResumeLine)
	putU16(b[2:4], f.ResumeOff)
	return s.a.pushTagged(tagGosub, b[:])
}

func decodeFor(b []byte) ForFrame {
	return ForFrame{
		Var:        VarName(getU16(b[0:2])),
		Limit:      getF32(b[2:6]),
		Step:       getF32(b[6:10]),
		ResumeLine: getU16(b[10:12]),
		ResumeOff:  getU16(b[12:14]),
	}
}

func decodeGosub(b []byte) GosubFrame {
	return GosubFrame{ResumeLine: getU16(b[0:2]), ResumeOff: getU16(b[2:4])}
}

// PopGosub discards FOR frames above the stack until it finds a GOSUB
// frame, returning it. This is how RETURN breaks out of any FOR loops
// still open inside the called subroutine. ok is false if the stack runs
// out (or is malformed) before a GOSUB frame turns up, in which case the
// stack is left untouched.
func (s *Stack) PopGosub() (GosubFrame, bool) {
	buf := s.a.raw()
	idx := s.a.stktopIdx
	for idx < s.a.maxIdx {
		tag := buf[idx]
		switch tag {
		case tagGosub:
			if idx+1+gosubFrameSize > s.a.maxIdx {
				return GosubFrame{}, false
			}
			f := decodeGosub(buf[idx+1 : idx+1+gosubFrameSize])
			s.a.stktopIdx = idx + 1 + gosubFrameSize
			return f, true
		case tagFor:
			if idx+1+forFrameSize > s.a.maxIdx {
				return GosubFrame{}, false
			}
			idx += 1 + forFrameSize
		default:
			return GosubFrame{}, false
		}
	}
	return GosubFrame{}, false
}

// LookupFor scans FOR frames from the top of the stack for one matching
// name, popping it and every frame above it (the inner, now-abandoned
// loops) on a match. It stops and fails without touching the stack if it
// reaches a GOSUB frame first: a loop variable can't be reached through a
// subroutine boundary.
func (s *Stack) LookupFor(name VarName) (ForFrame, bool) {
	buf := s.a.raw()
	idx := s.a.stktopIdx
	for idx < s.a.maxIdx {
		if idx+1+forFrameSize > s.a.maxIdx {
			return ForFrame{}, false
		}
		tag := buf[idx]
		if tag != tagFor {
			return ForFrame{}, false
		}
		f := decodeFor(buf[idx+1 : idx+1+forFrameSize])
		if f.Var == name {
			s.a.stktopIdx = idx + 1 + forFrameSize
			return f, true
		}
		idx += 1 + forFrameSize
	}
	return ForFrame{}, false
}

// PushExpr pushes an untagged fixed-size expression frame.
func (s *Stack) PushExpr(b []byte) bool {
	n := uint(len(b))
	if s.a.stktopIdx-s.a.freeIdx < n {
		return false
	}
	s.a.stktopIdx -= n
	copy(s.a.raw()[s.a.stktopIdx:], b)
	return true
}

// PopExpr pops an untagged fixed-size expression frame into b.
func (s *Stack) PopExpr(b []byte) {
	n := uint(len(b))
	copy(b, s.a.raw()[s.a.stktopIdx:s.a.stktopIdx+n])
	s.a.stktopIdx += n
}

// Mark returns a watermark for the current stack top, to Restore to on a
// parse or evaluation error so partially-pushed expression frames don't
// leak.
func (s *Stack) Mark() uint { return s.a.stktopIdx }

// Restore resets the stack top to a previously taken Mark.
func (s *Stack) Restore(mark uint) { s.a.stktopIdx = mark }

func putU16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func getU16(b []byte) uint16    { return uint16(b[0]) | uint16(b[1])<<8 }

func putF32(b []byte, v float32) {
	bits := math.Float32bits(v)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}

func getF32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
