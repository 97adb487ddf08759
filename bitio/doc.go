/*

Package bitio provides a buffered bit-level Reader and Writer.

You can use Reader.ReadBits() to read 1 to 32 bits from an io.Reader
and return them as an uint64, and Writer.WriteBits() to write 1 to 32 bits
of an uint64 value to an io.Writer.

Both Reader and Writer keep a large block buffer (8 KiB) between the bit
operations and the underlying stream, and a 64-bit accumulator between the
block buffer and the caller. This makes them suitable for Huffman coding,
where deciding whether to step left or right in the tree (Reader.ReadBool())
is the most frequent operation.

A Reader over an io.Seeker can be rewound to where it started with Reset(),
so the same source can be processed in two passes.

Bit order

The highest-bits-first order is used. So for example if the input provides the bytes 0x8f and 0x55:

    HEXA    8    f     5    5
    BINARY  1100 1111  0101 0101
            aaaa bbbc  ccdd dddd

Then ReadBits will return the following values:

    r := NewReader(bytes.NewReader([]byte{0x8f, 0x55}))
    a, err := r.ReadBits(4) //   1100 = 0x08
    b, err := r.ReadBits(3) //    111 = 0x07
    c, err := r.ReadBits(3) //    101 = 0x05
    d, err := r.ReadBits(6) // 010101 = 0x15

Writing the above values would result in the same sequence of bytes:

    b := &bytes.Buffer{}
    w := NewWriter(b)
    err := w.WriteBits(0x08, 4)
    err = w.WriteBits(0x07, 3)
    err = w.WriteBits(0x05, 3)
    err = w.WriteBits(0x15, 6)
    err = w.Close()
    // b will hold the bytes: 0x8f and 0x55

Padding

Writer.Flush() and Writer.Close() pad the last partial byte with zero bits.
No other bytes are ever added, so the output always ends on a byte boundary.

Neither Reader nor Writer is safe for concurrent use.

*/
package bitio
