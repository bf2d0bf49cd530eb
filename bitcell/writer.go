package bitcell

// Writer appends bitcells to a Buffer starting at bit 0.
type Writer struct {
	buf   *Buffer
	count uint64
}

// NewWriter creates a Writer positioned at the start of buf.
func NewWriter(buf *Buffer) *Writer {
	return &Writer{buf: buf}
}

// WriteBit appends one bitcell.
func (w *Writer) WriteBit(bit bool) {
	w.buf.SetBit(w.count, bit)
	w.count++
}

// WriteZeros appends n empty bitcells.
func (w *Writer) WriteZeros(n int) {
	for ; n > 0; n-- {
		w.WriteBit(false)
	}
}

// WriteCell appends a cell of n bitcells ending with a flux transition:
// n-1 zeros followed by a one. Nothing is written for n <= 0.
func (w *Writer) WriteCell(n int) {
	if n <= 0 {
		return
	}
	w.WriteZeros(n - 1)
	w.WriteBit(true)
}

// Count returns the number of bitcells written so far.
func (w *Writer) Count() uint64 {
	return w.count
}
