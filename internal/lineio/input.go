// Package lineio implements a queued multi-source line reader. The
// interpreter's host reads whole lines (see basic.LineReader); this package
// supplies the default CLI implementation, generalized from a simple single
// stream to a queue so that a preloaded program file and the interactive
// stream can be read through one interface without the caller needing to
// know when one ends and the next begins.
package lineio

import (
	"bytes"
	"fmt"
	"io"

	"tinybasic/internal/runeio"
)

// Location names a line in one of the queued input streams.
type Location struct {
	Name string
	Line int
}

// Line combines a Location along with a bytes.Buffer for handling it.
type Line struct {
	Location
	bytes.Buffer
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }
func (il Line) String() string      { return fmt.Sprintf("%v %q", il.Location, il.Buffer.String()) }

// Queue implements sequential line reading through a queue of one or more
// input streams. Both the current and last-read lines are tracked to
// facilitate user-facing "while reading X" diagnostics.
type Queue struct {
	rr    io.RuneReader
	In    []io.Reader
	Last  Line
	Scan  Line
}

// ReadLine reads up to and including the next line feed, returning the line
// with any trailing "\n" (and "\r") stripped. ok is false at end of all
// queued input.
func (q *Queue) ReadLine() (line string, ok bool) {
	var sb bytes.Buffer
	for {
		r, _, err := q.readRune()
		if err != nil {
			if sb.Len() > 0 {
				return sb.String(), true
			}
			return "", false
		}
		if r == '\n' {
			return trimCR(sb.String()), true
		}
		sb.WriteRune(r)
	}
}

func trimCR(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\r' {
		return s[:n-1]
	}
	return s
}

func (q *Queue) readRune() (rune, int, error) {
	if q.rr == nil && !q.nextIn() {
		return 0, 0, io.EOF
	}

	r, n, err := q.rr.ReadRune()
	if r == '\n' {
		q.nextLine()
	} else {
		q.Scan.WriteRune(r)
	}

	if r != 0 {
		return r, n, nil
	}
	if err == io.EOF && q.nextIn() {
		err = nil
	}
	return 0, n, err
}

func (q *Queue) nextLine() {
	q.Last.Reset()
	q.Last.Name = q.Scan.Name
	q.Last.Line = q.Scan.Line
	q.Last.Write(q.Scan.Bytes())
	q.Scan.Reset()
	q.Scan.Line++
}

func (q *Queue) nextIn() bool {
	q.nextLine()
	if q.rr != nil {
		if cl, ok := q.rr.(io.Closer); ok {
			cl.Close()
		}
		q.rr = nil
	}
	if len(q.In) > 0 {
		r := q.In[0]
		q.In = q.In[1:]
		q.rr = runeio.NewReader(r)
		q.Scan.Name = nameOf(r)
		q.Scan.Line = 1
	}
	return q.rr != nil
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
