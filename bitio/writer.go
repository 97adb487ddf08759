/*

Writer implementation.

*/

package bitio

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Writer is the bit writer.
// Must be closed (or flushed) in order to write out cached data.
type Writer struct {
	out io.Writer

	block []byte // block buffer, pending bytes are block[:n]
	n     int

	cache uint64 // unwritten bits are stored here, highest bits first
	bits  byte   // number of unwritten bits in cache

	count  uint64 // number of bits written by the caller
	closed bool
}

// NewWriter returns a new Writer using the specified io.Writer as the output.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out, block: make([]byte, blockSize)}
}

// WriteBits writes out the n lowest bits of r.
// Bits of r at positions higher than n-1 (zero indexed) are ignored.
// n must be in [1, 32], else ErrBitCount is returned.
func (w *Writer) WriteBits(r uint64, n byte) (err error) {
	if w.closed {
		return ErrClosed
	}
	if err = checkBitCount(n); err != nil {
		return err
	}
	r &= 1<<n - 1

	free := 64 - w.bits
	if n < free {
		// r fits into cache, nothing goes to the block buffer
		w.cache |= r << (free - n)
		w.bits += n
		w.count += uint64(n)
		return nil
	}

	// cache gets filled: put the high bits of r into it and empty it
	rest := n - free
	w.cache |= r >> rest
	if err = w.emptyCache(); err != nil {
		return err
	}
	if rest > 0 {
		w.cache, w.bits = r<<(64-rest), rest
	}
	w.count += uint64(n)
	return nil
}

// WriteBool writes one bit: 1 if param is true, 0 otherwise.
func (w *Writer) WriteBool(b bool) (err error) {
	if b {
		return w.WriteBits(1, 1)
	}
	return w.WriteBits(0, 1)
}

// WriteByte writes 8 bits.
// WriteByte implements io.ByteWriter.
func (w *Writer) WriteByte(b byte) (err error) {
	return w.WriteBits(uint64(b), 8)
}

// BitsWritten returns the number of bits written so far, not counting padding.
func (w *Writer) BitsWritten() uint64 {
	return w.count
}

// emptyCache moves the full cache (8 bytes) into the block buffer,
// writing the block out if it gets full.
func (w *Writer) emptyCache() error {
	binary.BigEndian.PutUint64(w.block[w.n:], w.cache)
	w.n += 8
	w.cache, w.bits = 0, 0
	if w.n == len(w.block) {
		return w.emptyBlock()
	}
	return nil
}

// emptyBlock writes the pending bytes of the block buffer to the output.
func (w *Writer) emptyBlock() error {
	if w.n == 0 {
		return nil
	}
	n, err := w.out.Write(w.block[:w.n])
	if err == nil && n < w.n {
		err = io.ErrShortWrite
	}
	w.n = 0
	return errors.WithStack(err)
}

// Flush writes out all cached bits. The last partial byte is padded with zero bits,
// so the stream is aligned to a byte boundary afterwards.
// Only bytes that hold written bits are output.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	return w.flush()
}

func (w *Writer) flush() error {
	for nbytes := (w.bits + 7) / 8; nbytes > 0; nbytes-- {
		if w.n == len(w.block) {
			if err := w.emptyBlock(); err != nil {
				return err
			}
		}
		w.block[w.n] = byte(w.cache >> 56)
		w.cache <<= 8
		w.n++
	}
	w.cache, w.bits = 0, 0
	return w.emptyBlock()
}

// Close flushes the Writer and releases its buffers. Subsequent writes return ErrClosed.
// Closing a closed Writer is a no-op.
// It does not close the underlying io.Writer.
func (w *Writer) Close() (err error) {
	if w.closed {
		return nil
	}
	err = w.flush()
	w.closed = true
	w.block = nil
	return err
}
