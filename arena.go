package basic

import (
	"encoding/binary"
	"math"

	"tinybasic/internal/mem"
)

// Arena is the single contiguous buffer backing every piece of mutable
// interpreter state: program text, scalar and array variables, and the
// downward-growing FOR/GOSUB/expression stack. Five cursors divide it into
// the regions described in spec §3; every higher layer (Program, Vars,
// Stack) addresses memory as offsets into this one buffer so that a memmove
// anywhere above it never invalidates anyone else's view.
type Arena struct {
	store mem.Bytes

	varsIdx   uint // end of program text
	arrayIdx  uint // end of scalar variables, start of arrays
	freeIdx   uint // end of arrays, start of the free gap
	stktopIdx uint // top of the downward stack
	maxIdx    uint // RAM top
}

// sentinelSize is the minimum arena footprint: the program header of one
// sentinel byte at offset 0 plus a zero u16 at offset 1. Program records
// start right after it (see Program).
const sentinelSize = 3

// ErrArenaTooSmall is returned by Init when size cannot even hold an empty
// program.
type ErrArenaTooSmall uint

func (sz ErrArenaTooSmall) Error() string {
	return "arena too small to hold an empty program"
}

// Init (re)initializes the arena to size bytes, discarding program text,
// variables, and the stack.
func (a *Arena) Init(size uint) error {
	if size < sentinelSize {
		return ErrArenaTooSmall(size)
	}
	if err := a.store.Reset(size); err != nil {
		return err
	}
	a.maxIdx = size
	a.ClearProgram()
	return nil
}

// CheckSpace reports whether n bytes are available for a stack push.
func (a *Arena) CheckSpace(n uint) bool {
	return a.stktopIdx-a.freeIdx >= n
}

// ClearProgram resets program text to empty and, per invariant 3, forces
// variables and the stack back to a consistent empty state.
func (a *Arena) ClearProgram() {
	buf := a.store.Bytes()
	buf[0] = 0
	binary.LittleEndian.PutUint16(buf[1:3], 0)
	a.varsIdx = sentinelSize
	a.ClearVariables()
}

// ClearVariables discards scalars and arrays, leaving program text intact.
func (a *Arena) ClearVariables() {
	a.arrayIdx = a.varsIdx
	a.freeIdx = a.varsIdx
	a.ClearStack()
}

// ClearStack discards the FOR/GOSUB/expression stack.
func (a *Arena) ClearStack() {
	a.stktopIdx = a.maxIdx
}

// raw exposes the live backing slice for memmove-style region shuffles.
// Never retain the returned slice across a call that can grow the store.
func (a *Arena) raw() []byte { return a.store.Bytes() }

func (a *Arena) byteAt(off uint) byte { return a.raw()[off] }

func (a *Arena) setByteAt(off uint, v byte) { a.raw()[off] = v }

func (a *Arena) u16At(off uint) uint16 {
	return binary.LittleEndian.Uint16(a.raw()[off : off+2])
}

func (a *Arena) setU16At(off uint, v uint16) {
	binary.LittleEndian.PutUint16(a.raw()[off:off+2], v)
}

func (a *Arena) f32At(off uint) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(a.raw()[off : off+4]))
}

func (a *Arena) setF32At(off uint, v float32) {
	binary.LittleEndian.PutUint32(a.raw()[off:off+4], math.Float32bits(v))
}

// memmoveUp shifts the region [src, srcEnd) so that it starts at dst. It
// never grows the buffer: the caller must have checked that the moved
// region still fits. It is safe for overlapping forward shifts (dst > src).
func (a *Arena) memmoveUp(src, srcEnd, dst uint) {
	n := srcEnd - src
	buf := a.raw()
	for i := int(n) - 1; i >= 0; i-- {
		buf[dst+uint(i)] = buf[src+uint(i)]
	}
}

// memmoveDown shifts the region [src, srcEnd) down so that it starts at
// dst (dst < src), used to close a gap left by a deletion.
func (a *Arena) memmoveDown(src, srcEnd, dst uint) {
	n := srcEnd - src
	buf := a.raw()
	for i := uint(0); i < n; i++ {
		buf[dst+i] = buf[src+i]
	}
}

// Size returns the configured arena size (max_idx).
func (a *Arena) Size() uint { return a.maxIdx }

// FreeSpace returns the bytes available for a stack push.
func (a *Arena) FreeSpace() uint {
	if a.stktopIdx < a.freeIdx {
		return 0
	}
	return a.stktopIdx - a.freeIdx
}
