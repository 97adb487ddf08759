/*

Package huffman implements a lossless compressor using a Huffman code built
from the byte frequencies of the input.

The compressed format is:

    magic    32 bits, 0xface8201
    tree     pre-order: 0 + left + right for internal nodes, 1 + 9-bit symbol for leaves
    payload  the code of each input byte, in input order
    end      the code of the Terminator symbol
    padding  zero bits up to the next byte boundary

Compression reads the input twice (counting, then encoding), so the input
Reader must be resettable.

*/
package huffman

import (
	"bytes"
	"io"

	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/icza/huff/bitio"
)

var log = logging.MustGetLogger("huff/huffman")

const (
	// BitsPerInt is the width of the magic number.
	BitsPerInt = 32

	// Magic identifies the tree-header Huffman format.
	Magic = 0xface8200 | 1
)

var (
	// ErrBadMagic is returned when the input does not start with Magic.
	ErrBadMagic = errors.New("huffman: not a recognized compressed file (bad magic number)")

	// ErrMalformedTree is returned when the serialized tree is truncated or invalid.
	ErrMalformedTree = errors.New("huffman: malformed tree")

	// ErrMissingTerminator is returned when the input ends before the Terminator code.
	ErrMissingTerminator = errors.New("huffman: input ended without terminator")

	// ErrInconsistentTree is returned when a built tree cannot be serialized.
	ErrInconsistentTree = errors.New("huffman: inconsistent tree")

	// ErrMissingCode is returned when an input byte has no code in the encoding table.
	ErrMissingCode = errors.New("huffman: missing code")
)

// Compress compresses all data of in into out, and closes out.
// in is read twice: it is reset after counting the byte frequencies.
func Compress(in *bitio.Reader, out *bitio.Writer) error {
	freqs, err := countFrequencies(in)
	if err != nil {
		return err
	}
	root := BuildTree(freqs)
	if log.IsEnabledFor(logging.DEBUG) {
		leaves, depth := root.stats()
		log.Debugf("compress: %d input bits, tree of %d leaves, depth %d", in.BitsRead(), leaves, depth)
	}

	if err = in.Reset(); err != nil {
		return errors.Wrap(err, "huffman: rewinding input")
	}

	if err = out.WriteBits(Magic, BitsPerInt); err != nil {
		return errors.Wrap(err, "huffman: writing magic")
	}
	if err = writeTree(root, out); err != nil {
		return errors.Wrap(err, "huffman: writing tree")
	}

	codes := CodeTable(root)
	for {
		b, err := in.ReadBits(BitsPerWord)
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "huffman: encoding")
		}
		code := &codes[b]
		if code.Len == 0 {
			return errors.Wrapf(ErrMissingCode, "byte 0x%02x", b)
		}
		if err = code.write(out); err != nil {
			return errors.Wrap(err, "huffman: encoding")
		}
	}

	code := &codes[Terminator]
	if code.Len == 0 {
		return errors.Wrap(ErrMissingCode, "terminator")
	}
	if err = code.write(out); err != nil {
		return errors.Wrap(err, "huffman: writing terminator")
	}

	if err = out.Close(); err != nil {
		return errors.Wrap(err, "huffman: closing output")
	}
	log.Debugf("compress: %d bits written", out.BitsWritten())
	return nil
}

// Decompress decompresses in into out, and closes out.
//
// Nothing is written to out if in does not start with Magic.
// If an error is returned, the data written to out so far is incomplete and should be discarded.
func Decompress(in *bitio.Reader, out *bitio.Writer) error {
	magic, err := in.ReadBits(BitsPerInt)
	if err == io.EOF {
		return errors.Wrap(ErrBadMagic, "input too short")
	}
	if err != nil {
		return errors.Wrap(err, "huffman: reading magic")
	}
	if magic != Magic {
		return errors.Wrapf(ErrBadMagic, "got 0x%08x", magic)
	}

	root, err := readTree(in, 0)
	if err != nil {
		return err
	}
	if log.IsEnabledFor(logging.DEBUG) {
		leaves, depth := root.stats()
		log.Debugf("decompress: tree of %d leaves, depth %d", leaves, depth)
	}

	for node := root; ; {
		right, err := in.ReadBool()
		if err == io.EOF {
			return ErrMissingTerminator
		}
		if err != nil {
			return errors.Wrap(err, "huffman: decoding")
		}

		// a single-leaf tree has no branches: each bit selects the root
		if !node.IsLeaf() {
			if right {
				node = node.Right
			} else {
				node = node.Left
			}
		}
		if !node.IsLeaf() {
			continue
		}

		if node.Symbol == Terminator {
			break
		}
		if err = out.WriteBits(uint64(node.Symbol), BitsPerWord); err != nil {
			return errors.Wrap(err, "huffman: decoding")
		}
		node = root
	}

	if err = out.Close(); err != nil {
		return errors.Wrap(err, "huffman: closing output")
	}
	log.Debugf("decompress: %d bits read, %d bits written", in.BitsRead(), out.BitsWritten())
	return nil
}

// CompressBytes compresses data in memory.
func CompressBytes(data []byte) ([]byte, error) {
	in := bitio.NewReader(bytes.NewReader(data))
	defer in.Close()

	buf := &bytes.Buffer{}
	if err := Compress(in, bitio.NewWriter(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressBytes decompresses data in memory.
func DecompressBytes(data []byte) ([]byte, error) {
	in := bitio.NewReader(bytes.NewReader(data))
	defer in.Close()

	buf := &bytes.Buffer{}
	if err := Decompress(in, bitio.NewWriter(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
