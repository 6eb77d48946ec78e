package basic

import (
	"fmt"
	"io"
)

// Dumper prints a snapshot of an interpreter's arena, grouped by region,
// for the -dump debug flag. It mirrors the host dialect's section-by-
// section memory dump, adapted from word/code listings to line/variable
// listings.
type Dumper struct {
	it  *Interp
	out io.Writer
}

// NewDumper builds a Dumper that writes to out.
func NewDumper(it *Interp, out io.Writer) Dumper { return Dumper{it: it, out: out} }

// Dump writes the full snapshot: arena cursor layout, the stored program,
// every scalar and array variable, and the FOR/GOSUB stack depth.
func (d Dumper) Dump() {
	a := &d.it.arena
	fmt.Fprintf(d.out, "# Interpreter Dump\n")
	fmt.Fprintf(d.out, "  arena: size=%d vars=%d arrays=%d free=%d stack=%d\n",
		a.maxIdx, a.varsIdx, a.arrayIdx, a.freeIdx, a.stktopIdx)

	fmt.Fprintf(d.out, "  program:\n")
	d.it.prog.List(func(s string) { fmt.Fprint(d.out, "    ", s) })

	d.dumpScalars()
	d.dumpArrays()

	fmt.Fprintf(d.out, "  data: line=%d ptr=%q\n", d.it.dataLine, d.it.dataPtr)
	fmt.Fprintf(d.out, "  stack bytes in use: %d\n", a.maxIdx-a.stktopIdx)
}

func (d Dumper) dumpScalars() {
	a := &d.it.arena
	fmt.Fprintf(d.out, "  scalars:\n")
	for off := a.varsIdx; off < a.arrayIdx; off += scalarEntrySize {
		name := VarName(a.u16At(off))
		val := a.f32At(off + 2)
		fmt.Fprintf(d.out, "    %v = %G\n", name, val)
	}
}

func (d Dumper) dumpArrays() {
	a := &d.it.arena
	fmt.Fprintf(d.out, "  arrays:\n")
	for off := a.arrayIdx; off+arrayHeaderSize <= a.freeIdx; {
		name := VarName(a.u16At(off))
		blockSize := a.u16At(off + 2)
		elems := blockSize / valueSize
		vals := make([]float32, elems)
		for i := uint16(0); i < elems; i++ {
			vals[i] = a.f32At(off + arrayHeaderSize + uint(i)*valueSize)
		}
		fmt.Fprintf(d.out, "    %v(%d) = %v\n", name, elems-1, vals)
		off += arrayHeaderSize + uint(blockSize)
	}
}
