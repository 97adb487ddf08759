package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/icza/huff/bitio"
	"github.com/icza/huff/huffman"
)

// stats holds the figures reported after an operation.
type stats struct {
	inName, outName   string
	inBits, outBits   int64 // file sizes
	bitsRead, written uint64
	elapsed           time.Duration
}

func fileBits(f *os.File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return 8 * fi.Size(), nil
}

// errSameFile is returned when the output would overwrite the input.
var errSameFile = errors.New("input and output are the same file")

// checkDistinct returns errSameFile if the file at output is the open input file.
func checkDistinct(in *os.File, output string) error {
	ofi, err := os.Stat(output)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.WithStack(err)
	}
	ifi, err := in.Stat()
	if err != nil {
		return errors.WithStack(err)
	}
	if os.SameFile(ifi, ofi) {
		return errors.Wrapf(errSameFile, "%s and %s", in.Name(), output)
	}
	return nil
}

// runFile opens input and creates output, and runs op on bit streams over them.
// The output is deleted if op fails and remove is true.
func runFile(input, output string, remove bool, op func(*bitio.Reader, *bitio.Writer) error) (s stats, err error) {
	s.inName, s.outName = input, output

	inf, err := os.Open(input)
	if err != nil {
		return s, errors.WithStack(err)
	}
	defer inf.Close()

	if err = checkDistinct(inf, output); err != nil {
		return s, err
	}

	outf, err := os.Create(output)
	if err != nil {
		return s, errors.WithStack(err)
	}
	defer func() {
		if cerr := outf.Close(); err == nil && cerr != nil {
			err = errors.WithStack(cerr)
		}
		if err != nil && remove {
			if rerr := os.Remove(output); rerr == nil {
				log.Warningf("deleted file %s", output)
			}
		}
	}()

	in := bitio.NewReader(inf)
	defer in.Close()
	out := bitio.NewWriter(outf)
	defer out.Close()

	before := time.Now()
	if err = op(in, out); err != nil {
		return s, err
	}
	s.elapsed = time.Since(before)
	s.bitsRead, s.written = in.BitsRead(), out.BitsWritten()

	if s.inBits, err = fileBits(inf); err != nil {
		return s, err
	}
	s.outBits, err = fileBits(outf)
	return s, err
}

func runCompress(w io.Writer, input, output string) error {
	s, err := runFile(input, output, false, huffman.Compress)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "compress from %s to %s\n", s.inName, s.outName)
	fmt.Fprintf(w, "file: %d bits to %d bits\n", s.inBits, s.outBits)
	fmt.Fprintf(w, "read %d bits, wrote %d bits\n", s.bitsRead, s.written)
	fmt.Fprintf(w, "bits saved = %d\n", int64(s.bitsRead)-int64(s.written))
	fmt.Fprintf(w, "compress took %d milliseconds\n", s.elapsed.Milliseconds())
	return nil
}

func runDecompress(w io.Writer, input, output string) error {
	s, err := runFile(input, output, true, huffman.Decompress)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "uncompress from %s to %s\n", s.inName, s.outName)
	fmt.Fprintf(w, "file: %d bits to %d bits\n", s.inBits, s.outBits)
	fmt.Fprintf(w, "read %d bits, wrote %d bits\n", s.bitsRead, s.written)
	fmt.Fprintf(w, "%d compared to %d\n", s.outBits-s.inBits, int64(s.written)-int64(s.bitsRead))
	fmt.Fprintf(w, "decompress took %d milliseconds\n", s.elapsed.Milliseconds())
	return nil
}

// runVerify round trips input in memory and compares the digests of the original and the result.
func runVerify(w io.Writer, input string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return errors.WithStack(err)
	}

	before := time.Now()
	compressed, err := huffman.CompressBytes(data)
	if err != nil {
		return err
	}
	restored, err := huffman.DecompressBytes(compressed)
	if err != nil {
		return err
	}
	elapsed := time.Since(before)

	if err = checkRoundTrip(input, data, restored); err != nil {
		return err
	}
	exp := xxhash.Sum64(data)

	ratio := 1.0
	if len(data) > 0 {
		ratio = float64(len(compressed)) / float64(len(data))
	}
	fmt.Fprintf(w, "verify %s: ok, digest %016x\n", input, exp)
	fmt.Fprintf(w, "%d bytes to %d bytes (%.1f%%)\n", len(data), len(compressed), 100*ratio)
	fmt.Fprintf(w, "round trip took %d milliseconds\n", elapsed.Milliseconds())
	return nil
}

// checkRoundTrip returns an error if restored differs from data.
func checkRoundTrip(input string, data, restored []byte) error {
	exp, got := xxhash.Sum64(data), xxhash.Sum64(restored)
	log.Debugf("verify: %d bytes, digest %016x, restored %d bytes, digest %016x", len(data), exp, len(restored), got)
	if !bytes.Equal(data, restored) {
		return errors.Errorf("verify %s: round trip mismatch: %d bytes, digest %016x, restored %d bytes, digest %016x",
			input, len(data), exp, len(restored), got)
	}
	return nil
}
