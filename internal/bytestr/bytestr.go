// Package bytestr gives the "owned mutable byte buffer" spec §3 describes
// its idiomatic Go shape: there is no manual allocation/destroy pair to get
// wrong, just a []byte a Buffer owns and grows as needed. Go's garbage
// collector retires the "explicit destroy call" spec §3's design notes say
// isn't needed here.
package bytestr

// Buffer is a growable, owned byte buffer, used where the interpreter
// accumulates text across several reads before it is complete (the
// interactive front end's pending-continuation-line input, here-document
// bodies being assembled line by line).
type Buffer struct {
	data []byte
}

// Append appends s to the buffer's contents.
func (b *Buffer) Append(s string) {
	b.data = append(b.data, s...)
}

// AppendBytes appends p to the buffer's contents.
func (b *Buffer) AppendBytes(p []byte) {
	b.data = append(b.data, p...)
}

// String returns the buffer's contents as a string.
func (b *Buffer) String() string {
	return string(b.data)
}

// Len reports the number of bytes currently held.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Reset empties the buffer without releasing its backing array, so the next
// round of accumulation reuses the capacity already grown.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// Clone returns a Buffer holding an independent copy of b's contents.
func (b *Buffer) Clone() *Buffer {
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return &Buffer{data: cp}
}
