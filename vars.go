package basic

import "math/rand"

// VarName is a packed scalar/array name: one letter, optionally
// followed by one digit (spec §4.3's variable names). Packing shifts the
// letter in first and the digit (if any) in second, so a bare letter packs
// as just its byte value and a letter+digit name packs with the letter in
// the high byte — asymmetric, but it keeps the two forms from ever
// colliding since a digit byte is never zero.
type VarName uint16

// PackVarName packs a letter and optional digit (0 if none) into a
// VarName.
func PackVarName(letter byte, digit byte) VarName {
	vn := VarName(letter)
	if digit != 0 {
		vn = vn<<8 | VarName(digit)
	}
	return vn
}

// String renders a packed name back to its source form, e.g. "A" or "A1".
func (n VarName) String() string {
	if n > 0xff {
		letter := byte(n >> 8)
		digit := byte(n)
		return string(letter) + string(digit)
	}
	return string(byte(n))
}

const (
	scalarEntrySize = 6 // name(2) + value(4)
	arrayHeaderSize = 4 // name(2) + block_size(2)
	valueSize       = 4
	defaultArrayLen = 10 // elements 0..10, i.e. 11 slots
)

// Vars is the scalar and array variable store occupying [vars_idx,
// free_idx) of the arena: scalars grow upward from vars_idx, arrays
// (header + contiguous float32 elements) grow upward from array_idx.
type Vars struct {
	a *Arena
}

// lookupScalar returns the byte offset of var's value field, or false.
func (v *Vars) lookupScalar(name VarName) (uint, bool) {
	idx := v.a.varsIdx
	for idx < v.a.arrayIdx {
		if VarName(v.a.u16At(idx)) == name {
			return idx + 2, true
		}
		idx += scalarEntrySize
	}
	return 0, false
}

// Read returns a scalar's value, 0 if it has never been assigned.
func (v *Vars) Read(name VarName) float32 {
	off, ok := v.lookupScalar(name)
	if !ok {
		return 0
	}
	return v.a.f32At(off)
}

// EnsureScalar returns the arena offset of var's value field, creating the
// scalar (at value 0) if this is its first use. Creating a scalar shifts
// the array region up by one entry to keep scalars and arrays each
// contiguous.
func (v *Vars) EnsureScalar(name VarName) (uint, error) {
	if off, ok := v.lookupScalar(name); ok {
		return off, nil
	}
	if !v.a.CheckSpace(scalarEntrySize) {
		return 0, Err(OutOfMemory)
	}
	at := v.a.arrayIdx
	if v.a.arrayIdx != v.a.freeIdx {
		v.a.memmoveUp(v.a.arrayIdx, v.a.freeIdx, v.a.arrayIdx+scalarEntrySize)
	}
	v.a.setU16At(at, uint16(name))
	v.a.setF32At(at+2, 0)
	v.a.arrayIdx += scalarEntrySize
	v.a.freeIdx += scalarEntrySize
	return at + 2, nil
}

// Set assigns a scalar, creating it if this is its first use.
func (v *Vars) Set(name VarName, val float32) error {
	off, err := v.EnsureScalar(name)
	if err != nil {
		return err
	}
	v.a.setF32At(off, val)
	return nil
}

// lookupArray returns the offset of the array's header, its element
// capacity, and whether it exists.
func (v *Vars) lookupArray(name VarName) (hdrOff uint, elems uint16, ok bool) {
	idx := v.a.arrayIdx
	for idx+arrayHeaderSize <= v.a.freeIdx {
		n := VarName(v.a.u16At(idx))
		blockSize := v.a.u16At(idx + 2)
		if n == name {
			return idx, blockSize / valueSize, true
		}
		idx += arrayHeaderSize + uint(blockSize)
	}
	return 0, 0, false
}

// ArrayElement resolves the arena offset of array name's element at
// subscript, creating the array (at its default 11-element size) on first
// reference if it does not exist yet. dim requests an explicit DIM(n)
// allocation instead, with subscript doubling as the requested size n: it
// is an error if the array already exists. The offset ArrayElement returns
// for a dim call is one past the array's last element and is never read
// back by the caller.
func (v *Vars) ArrayElement(name VarName, subscript uint, dim bool) (uint, error) {
	hdrOff, elems, ok := v.lookupArray(name)
	if ok {
		if dim {
			return 0, Err(Redimension)
		}
		if subscript >= uint(elems) {
			return 0, Err(Subscript)
		}
		return hdrOff + arrayHeaderSize + subscript*valueSize, nil
	}

	var blockElems uint
	if dim {
		blockElems = subscript
	} else {
		if subscript > defaultArrayLen {
			return 0, Err(Subscript)
		}
		blockElems = defaultArrayLen
	}
	blockSize := (blockElems + 1) * valueSize
	total := blockSize + arrayHeaderSize
	if !v.a.CheckSpace(total) {
		return 0, Err(OutOfMemory)
	}

	at := v.a.freeIdx
	v.a.setU16At(at, uint16(name))
	v.a.setU16At(at+2, uint16(blockSize))
	buf := v.a.raw()
	for i := uint(0); i < blockSize; i++ {
		buf[at+arrayHeaderSize+i] = 0
	}
	v.a.freeIdx += total
	// DIM's own reference point is one past the last element and is never
	// read back; ordinary first-reference allocation returns the element.
	return at + arrayHeaderSize + subscript*valueSize, nil
}

// Clear discards all scalars and arrays (and, per the arena's invariants,
// the stack).
func (v *Vars) Clear() { v.a.ClearVariables() }

// ResolveRef parses a variable reference — a bare name or a name followed
// by a parenthesized subscript expression — and returns the arena offset
// of its value (scalar slot or array element), creating the variable on
// first reference. dim is true only for DIM's own variable list, where the
// subscript is instead the requested array size.
func (v *Vars) ResolveRef(s string, stack *Stack, rng *rand.Rand, dim bool) (rest string, name VarName, offset uint, err error) {
	rest, name, err = ParseVarName(s)
	if err != nil {
		return s, 0, 0, err
	}
	if len(rest) > 0 && rest[0] == '(' {
		rest2, subscript, ierr := ParseArrayIndex(rest, v, stack, rng)
		if ierr != nil {
			return s, 0, 0, ierr
		}
		off, aerr := v.ArrayElement(name, subscript, dim)
		if aerr != nil {
			return s, 0, 0, aerr
		}
		return SkipWS(rest2), name, off, nil
	}
	if dim {
		// A bare name in a DIM list (no subscript) is accepted but allocates
		// nothing, matching the host dialect's own DIM A quirk.
		return SkipWS(rest), name, 0, nil
	}
	off, serr := v.EnsureScalar(name)
	if serr != nil {
		return s, 0, 0, serr
	}
	return SkipWS(rest), name, off, nil
}
