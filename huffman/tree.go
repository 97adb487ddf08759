package huffman

import (
	"container/heap"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/icza/huff/bitio"
)

const (
	// BitsPerWord is the width of an input symbol (a byte).
	BitsPerWord = 8

	// AlphabetSize is the number of byte values.
	AlphabetSize = 1 << BitsPerWord

	// Terminator is the symbol marking the end of the encoded data.
	// It cannot appear in the input, as it does not fit into a byte.
	Terminator = AlphabetSize

	// NumSymbols is the number of symbols a tree may hold: all byte values and the Terminator.
	NumSymbols = AlphabetSize + 1

	// NoSymbol is the symbol of internal nodes.
	NoSymbol = -1

	// symbolBits is the width of a leaf's symbol in the serialized tree.
	symbolBits = BitsPerWord + 1

	// maxDepth is the maximum depth of a tree with NumSymbols leaves.
	maxDepth = NumSymbols - 1
)

// Node is a node of the Huffman tree.
// Leaves hold a symbol, internal nodes hold NoSymbol and exactly 2 children.
type Node struct {
	Symbol int
	Weight uint64
	Left   *Node
	Right  *Node

	seq int // arrival order in the priority queue, breaks weight ties
}

// IsLeaf tells if the node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// stats returns the number of leaves and the depth of the tree rooted at n.
func (n *Node) stats() (leaves, depth int) {
	if n.IsLeaf() {
		return 1, 0
	}
	ll, ld := n.Left.stats()
	rl, rd := n.Right.stats()
	if rd > ld {
		ld = rd
	}
	return ll + rl, ld + 1
}

// nodeHeap is a min-heap of nodes ordered by weight, then by arrival order.
type nodeHeap []*Node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].Weight != h[j].Weight {
		return h[i].Weight < h[j].Weight
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) {
	*h = append(*h, x.(*Node))
}
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

// Frequencies holds the occurrence count of each symbol.
type Frequencies [NumSymbols]uint64

// countFrequencies reads all bytes of in and counts them.
// The count of the Terminator is set to 1.
func countFrequencies(in *bitio.Reader) (*Frequencies, error) {
	freqs := &Frequencies{}
	for {
		b, err := in.ReadBits(BitsPerWord)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "huffman: counting symbols")
		}
		freqs[b]++
	}
	freqs[Terminator] = 1
	return freqs, nil
}

// BuildTree builds the Huffman tree of the symbols having a positive count.
// Leaves enter the priority queue in symbol order, merged nodes after them in creation order;
// nodes of equal weight are taken in this arrival order, so the tree is deterministic.
//
// If only one symbol has a positive count, the tree is a single leaf.
// Returns nil if no symbol has a positive count.
func BuildTree(freqs *Frequencies) *Node {
	var h nodeHeap
	seq := 0
	for sym, count := range freqs {
		if count > 0 {
			h = append(h, &Node{Symbol: sym, Weight: count, seq: seq})
			seq++
		}
	}
	if len(h) == 0 {
		return nil
	}

	heap.Init(&h)
	for h.Len() > 1 {
		left := heap.Pop(&h).(*Node)
		right := heap.Pop(&h).(*Node)
		heap.Push(&h, &Node{
			Symbol: NoSymbol,
			Weight: left.Weight + right.Weight,
			Left:   left,
			Right:  right,
			seq:    seq,
		})
		seq++
	}
	return heap.Pop(&h).(*Node)
}

// Code is the bit string of a symbol: 0 steps left, 1 steps right from the root.
// Bits are packed highest-bits-first into 32-bit words; the last word holds the
// remaining Len%32 bits (or 32) in its lowest bits.
type Code struct {
	words []uint32
	Len   int
}

// newCode packs the path (of 0 and 1 values).
func newCode(path []byte) Code {
	c := Code{Len: len(path), words: make([]uint32, 0, (len(path)+31)/32)}
	for i := 0; i < len(path); i += 32 {
		var word uint32
		for _, bit := range path[i:min(i+32, len(path))] {
			word = word<<1 | uint32(bit)
		}
		c.words = append(c.words, word)
	}
	return c
}

// write writes the code in chunks of at most 32 bits.
func (c *Code) write(w *bitio.Writer) error {
	for i, word := range c.words {
		n := c.Len - 32*i
		if n > 32 {
			n = 32
		}
		if err := w.WriteBits(uint64(word), byte(n)); err != nil {
			return err
		}
	}
	return nil
}

// String returns the code as a string of '0' and '1' characters.
func (c Code) String() string {
	var sb strings.Builder
	for i, word := range c.words {
		n := c.Len - 32*i
		if n > 32 {
			n = 32
		}
		for j := n - 1; j >= 0; j-- {
			sb.WriteByte('0' + byte(word>>uint(j)&1))
		}
	}
	return sb.String()
}

// Codes is the encoding table: the code of each symbol, indexed by symbol.
// Symbols not in the tree have a zero-length code.
type Codes [NumSymbols]Code

// CodeTable derives the code of each leaf of the tree.
// A single-leaf tree has no branches; its symbol gets the code "0".
func CodeTable(root *Node) *Codes {
	codes := &Codes{}
	if root == nil {
		return codes
	}
	if root.IsLeaf() {
		codes[root.Symbol] = newCode([]byte{0})
		return codes
	}

	path := make([]byte, 0, maxDepth)
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			codes[n.Symbol] = newCode(path)
			return
		}
		path = append(path, 0)
		walk(n.Left)
		path[len(path)-1] = 1
		walk(n.Right)
		path = path[:len(path)-1]
	}
	walk(root)
	return codes
}

// writeTree serializes the tree in pre-order:
// 0 for an internal node followed by its left and right subtrees,
// 1 for a leaf followed by its symbol on 9 bits.
func writeTree(n *Node, w *bitio.Writer) error {
	if n == nil {
		return errors.Wrap(ErrInconsistentTree, "nil node")
	}
	if n.IsLeaf() {
		if n.Symbol < 0 || n.Symbol > Terminator {
			return errors.Wrapf(ErrInconsistentTree, "leaf with symbol %d", n.Symbol)
		}
		if err := w.WriteBits(1, 1); err != nil {
			return err
		}
		return w.WriteBits(uint64(n.Symbol), symbolBits)
	}
	if n.Left == nil || n.Right == nil {
		return errors.Wrap(ErrInconsistentTree, "internal node with 1 child")
	}

	if err := w.WriteBits(0, 1); err != nil {
		return err
	}
	if err := writeTree(n.Left, w); err != nil {
		return err
	}
	return writeTree(n.Right, w)
}

// readTree deserializes a tree written by writeTree.
// depth is the depth of the node to be read.
func readTree(r *bitio.Reader, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, errors.Wrapf(ErrMalformedTree, "deeper than %d", maxDepth)
	}

	bit, err := r.ReadBits(1)
	if err == io.EOF {
		return nil, errors.Wrap(ErrMalformedTree, "unexpected end of tree")
	}
	if err != nil {
		return nil, errors.Wrap(err, "huffman: reading tree")
	}

	if bit == 0 {
		left, err := readTree(r, depth+1)
		if err != nil {
			return nil, err
		}
		right, err := readTree(r, depth+1)
		if err != nil {
			return nil, err
		}
		return &Node{Symbol: NoSymbol, Left: left, Right: right}, nil
	}

	sym, err := r.ReadBits(symbolBits)
	if err == io.EOF {
		return nil, errors.Wrap(ErrMalformedTree, "unexpected end of leaf")
	}
	if err != nil {
		return nil, errors.Wrap(err, "huffman: reading tree")
	}
	if sym > Terminator {
		return nil, errors.Wrapf(ErrMalformedTree, "leaf with symbol %d", sym)
	}
	return &Node{Symbol: int(sym)}, nil
}
