/*

Reader implementation.

*/

package bitio

import (
	"io"

	"github.com/pkg/errors"
)

// maxEmptyReads is the number of consecutive empty reads tolerated from the source
// before giving up with io.ErrNoProgress.
const maxEmptyReads = 100

// Reader is the bit reader.
// Bits are delivered highest-bits-first from the bytes of the source.
type Reader struct {
	in     io.Reader
	seeker io.Seeker // nil if in is not seekable
	start  int64     // offset of in when the Reader was created

	block []byte // block buffer, unread bytes are block[pos:end]
	pos   int
	end   int
	eof   bool  // source reported io.EOF
	err   error // source error, reported once the block is consumed

	cache uint64 // unread bits are stored here, right aligned
	bits  byte   // number of unread bits in cache

	count  uint64 // number of bits delivered
	closed bool
}

// NewReader returns a new Reader using the specified io.Reader as the input (source).
// If in is also an io.Seeker, its current offset is recorded so Reset can return to it.
func NewReader(in io.Reader) *Reader {
	r := &Reader{in: in, block: make([]byte, blockSize)}
	if s, ok := in.(io.Seeker); ok {
		if off, err := s.Seek(0, io.SeekCurrent); err == nil {
			r.seeker, r.start = s, off
		}
	}
	return r
}

// ReadBits reads n bits and returns them as the lowest n bits of u.
// n must be in [1, 32], else ErrBitCount is returned.
//
// io.EOF is returned if the source is exhausted and less than n bits remain;
// in that case no bits are consumed.
func (r *Reader) ReadBits(n byte) (u uint64, err error) {
	if r.closed {
		return 0, ErrClosed
	}
	if err = checkBitCount(n); err != nil {
		return 0, err
	}

	if n > r.bits {
		// cache is not enough, top it up from the block buffer
		if err = r.fillCache(n); err != nil {
			return 0, err
		}
	}

	r.bits -= n
	u = r.cache >> r.bits
	r.cache &= 1<<r.bits - 1
	r.count += uint64(n)
	return u, nil
}

// ReadBool reads the next bit, and returns true if it is 1.
func (r *Reader) ReadBool() (b bool, err error) {
	u, err := r.ReadBits(1)
	return u == 1, err
}

// ReadByte reads the next 8 bits and returns them as a byte.
// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (b byte, err error) {
	u, err := r.ReadBits(8)
	return byte(u), err
}

// BitsRead returns the number of bits delivered so far.
func (r *Reader) BitsRead() uint64 {
	return r.count
}

// fillCache moves whole bytes from the block buffer into the cache until
// it holds at least n bits, refilling the block buffer when it runs dry.
func (r *Reader) fillCache(n byte) error {
	for r.bits < n {
		if r.pos == r.end {
			if err := r.fillBlock(); err != nil {
				return err
			}
		}
		// Note: r.bits <= 56, so the byte fits and no set bits are shifted out
		for r.bits <= 56 && r.pos < r.end {
			r.cache = r.cache<<8 | uint64(r.block[r.pos])
			r.pos++
			r.bits += 8
		}
	}
	return nil
}

// fillBlock reads the next block from the source.
// Returns io.EOF if the source has no more bytes.
// A source error is returned after the bytes read along with it are delivered.
func (r *Reader) fillBlock() error {
	if r.err != nil {
		return r.err
	}
	if r.eof {
		return io.EOF
	}
	for i := 0; i < maxEmptyReads; i++ {
		n, err := r.in.Read(r.block)
		r.pos, r.end = 0, n
		switch {
		case err == io.EOF:
			r.eof = true
		case err != nil:
			r.err = errors.WithStack(err)
		}
		if n > 0 {
			return nil
		}
		if r.err != nil {
			return r.err
		}
		if r.eof {
			return io.EOF
		}
	}
	return io.ErrNoProgress
}

// Reset rewinds the source to where it was when the Reader was created,
// and restores the Reader to its just-created state.
// Returns ErrNotResettable if the source is not an io.Seeker.
func (r *Reader) Reset() error {
	if r.closed {
		return ErrClosed
	}
	if r.seeker == nil {
		return ErrNotResettable
	}
	if _, err := r.seeker.Seek(r.start, io.SeekStart); err != nil {
		return errors.Wrap(err, "bitio: reset")
	}

	r.pos, r.end, r.eof, r.err = 0, 0, false, nil
	r.cache, r.bits = 0, 0
	r.count = 0
	return nil
}

// Close releases the buffers of the Reader. Subsequent reads return ErrClosed.
// It does not close the underlying io.Reader.
func (r *Reader) Close() error {
	r.closed = true
	r.block = nil
	r.pos, r.end = 0, 0
	r.cache, r.bits = 0, 0
	return nil
}
