package bitio

import (
	"github.com/pkg/errors"
)

const (
	// MaxBits is the maximum number of bits that can be read or written in one call.
	MaxBits = 32

	// blockSize is the size of the block buffer between the bit accumulator and the stream.
	blockSize = 8192
)

var (
	// ErrBitCount is returned when the requested number of bits is not in [1, MaxBits].
	ErrBitCount = errors.New("bitio: bit count must be in [1, 32]")

	// ErrClosed is returned when reading from a closed Reader or writing to a closed Writer.
	ErrClosed = errors.New("bitio: use of closed stream")

	// ErrNotResettable is returned by Reader.Reset if the source is not an io.Seeker.
	ErrNotResettable = errors.New("bitio: source is not seekable, cannot reset")
)

func checkBitCount(n byte) error {
	if n < 1 || n > MaxBits {
		return ErrBitCount
	}
	return nil
}
