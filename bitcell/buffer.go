// Package bitcell provides the fixed-capacity circular bit store that
// decoders write recovered bitcells into.
//
// Bits are packed into 32-bit words in stream order: bitcell n lives in word
// n/32, and the first bitcell of a word is its most significant bit.
// Addressing wraps through a power-of-two mask, so writers never fail on a
// bounds check; a run is expected to call CheckCount once decoding is done.
package bitcell

import (
	"errors"
	"fmt"
)

// DefaultSize is the default buffer capacity in bytes.
const DefaultSize = 2 * 1024 * 1024

var (
	// ErrBufferSize is returned when a buffer capacity is not a power of two.
	ErrBufferSize = errors.New("buffer size must be a power of two of at least 4 bytes")

	// ErrBufferOverflow is returned when more bitcells were decoded than the buffer holds.
	ErrBufferOverflow = errors.New("decoded more bitcells than buffer space")
)

// Buffer is a circular store of bitcells.
type Buffer struct {
	words []uint32
	mask  uint32 // word index mask
}

// New allocates a zeroed buffer of sizeBytes bytes.
func New(sizeBytes int) (*Buffer, error) {
	if sizeBytes < 4 || sizeBytes&(sizeBytes-1) != 0 || uint64(sizeBytes/4) > 1<<32 {
		return nil, fmt.Errorf("%w: %d", ErrBufferSize, sizeBytes)
	}
	numWords := sizeBytes / 4
	return &Buffer{
		words: make([]uint32, numWords),
		mask:  uint32(numWords - 1),
	}, nil
}

// Size returns the buffer capacity in bytes.
func (b *Buffer) Size() int {
	return len(b.words) * 4
}

// Mask returns the word index mask.
func (b *Buffer) Mask() uint32 {
	return b.mask
}

// Word returns the word at index i, wrapping around the buffer.
func (b *Buffer) Word(i uint32) uint32 {
	return b.words[i&b.mask]
}

// Bit returns bitcell n, wrapping around the buffer.
func (b *Buffer) Bit(n uint64) bool {
	word := uint32(n>>5) & b.mask
	return b.words[word]&(1<<(31-(n&31))) != 0
}

// SetBit stores bitcell n, wrapping around the buffer.
func (b *Buffer) SetBit(n uint64, bit bool) {
	word := uint32(n>>5) & b.mask
	m := uint32(1) << (31 - (n & 31))
	if bit {
		b.words[word] |= m
	} else {
		b.words[word] &^= m
	}
}

// CheckCount verifies that bitCount decoded bitcells fit the buffer.
// The byte-rounded size must be strictly less than the capacity.
func (b *Buffer) CheckCount(bitCount uint64) error {
	numBytes := (bitCount + 7) / 8
	if numBytes >= uint64(b.Size()) {
		return fmt.Errorf("%w: %d bitcells need %d bytes, buffer holds %d",
			ErrBufferOverflow, bitCount, numBytes, b.Size())
	}
	return nil
}
