package huffman

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/icza/mighty"
	"github.com/pkg/errors"

	"github.com/icza/huff/bitio"
)

func TestCountFrequencies(t *testing.T) {
	eq := mighty.Eq(t)

	freqs, err := countFrequencies(bitio.NewReader(strings.NewReader("abracadabra")))
	eq(nil, err)
	eq(uint64(5), freqs['a'])
	eq(uint64(2), freqs['b'])
	eq(uint64(2), freqs['r'])
	eq(uint64(1), freqs['c'])
	eq(uint64(1), freqs['d'])
	eq(uint64(1), freqs[Terminator])

	var sum uint64
	for _, c := range freqs {
		sum += c
	}
	eq(uint64(12), sum)

	freqs, err = countFrequencies(bitio.NewReader(strings.NewReader("")))
	eq(nil, err)
	eq(uint64(1), freqs[Terminator])
}

func TestBuildTreeTieBreak(t *testing.T) {
	eq := mighty.Eq(t)

	freqs := &Frequencies{}
	freqs['a'], freqs['b'], freqs['c'], freqs[Terminator] = 1, 1, 1, 1

	codes := CodeTable(BuildTree(freqs))
	eq("00", codes['a'].String())
	eq("01", codes['b'].String())
	eq("10", codes['c'].String())
	eq("11", codes[Terminator].String())
	eq(0, codes['d'].Len)
}

func TestBuildTreeWeights(t *testing.T) {
	eq := mighty.Eq(t)

	freqs := &Frequencies{}
	freqs['A'], freqs['B'], freqs['C'], freqs[Terminator] = 100, 10, 2, 1

	root := BuildTree(freqs)
	eq(uint64(113), root.Weight)
	eq(NoSymbol, root.Symbol)

	codes := CodeTable(root)
	eq("1", codes['A'].String())
	eq("01", codes['B'].String())
	eq("001", codes['C'].String())
	eq("000", codes[Terminator].String())
}

func TestBuildTreeSingleLeaf(t *testing.T) {
	eq := mighty.Eq(t)

	freqs := &Frequencies{}
	freqs[Terminator] = 1

	root := BuildTree(freqs)
	eq(true, root.IsLeaf())
	eq(Terminator, root.Symbol)

	codes := CodeTable(root)
	eq("0", codes[Terminator].String())

	eq((*Node)(nil), BuildTree(&Frequencies{}))
}

func TestPrefixCodes(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for round := 0; round < 200; round++ {
		freqs := &Frequencies{}
		present := 0
		for sym := range freqs {
			if rnd.Intn(3) == 0 {
				continue
			}
			freqs[sym] = uint64(rnd.Int63n(1 << uint(rnd.Intn(40))))
			if freqs[sym] > 0 {
				present++
			}
		}
		if freqs[Terminator] == 0 {
			freqs[Terminator] = 1
			present++
		}

		root := BuildTree(freqs)
		leaves, _ := root.stats()
		if leaves != present {
			t.Fatalf("[%d] Got %d leaves, want %d", round, leaves, present)
		}
		checkStrict(t, root)

		codes := CodeTable(root)
		var strs []string
		for sym, c := range codes {
			if (freqs[sym] > 0) != (c.Len > 0) {
				t.Fatalf("[%d] Symbol %d: count %d, code length %d", round, sym, freqs[sym], c.Len)
			}
			if c.Len > 0 {
				strs = append(strs, c.String())
			}
		}
		for i, a := range strs {
			for j, b := range strs {
				if i != j && strings.HasPrefix(b, a) {
					t.Fatalf("[%d] Code %q is a prefix of %q", round, a, b)
				}
			}
		}
	}
}

func checkStrict(t *testing.T, n *Node) {
	t.Helper()
	if n.IsLeaf() {
		if n.Symbol < 0 || n.Symbol > Terminator {
			t.Fatalf("Leaf with symbol %d", n.Symbol)
		}
		return
	}
	if n.Left == nil || n.Right == nil {
		t.Fatalf("Internal node with 1 child")
	}
	if n.Weight != n.Left.Weight+n.Right.Weight {
		t.Fatalf("Internal node weight %d, children: %d + %d", n.Weight, n.Left.Weight, n.Right.Weight)
	}
	checkStrict(t, n.Left)
	checkStrict(t, n.Right)
}

func TestCodeString(t *testing.T) {
	eq := mighty.Eq(t)

	eq("101", newCode([]byte{1, 0, 1}).String())
	eq("", newCode(nil).String())

	path := make([]byte, 70)
	for i := range path {
		path[i] = byte(i % 3 % 2)
	}
	c := newCode(path)
	eq(70, c.Len)
	eq(3, len(c.words))
	eq(strings.Repeat("010", 23)+"0", c.String())
}

// fibFrequencies returns frequencies which result in a maximally skewed tree.
func fibFrequencies(n int) *Frequencies {
	freqs := &Frequencies{}
	a, b := uint64(1), uint64(2)
	for sym := 0; sym < n; sym++ {
		freqs[sym] = a
		a, b = b, a+b
	}
	freqs[Terminator] = 1
	return freqs
}

func TestLongCodes(t *testing.T) {
	eq := mighty.Eq(t)

	root := BuildTree(fibFrequencies(80))
	_, depth := root.stats()
	if depth <= 2*32 {
		t.Fatalf("Got depth %d, want more than 64", depth)
	}

	codes := CodeTable(root)
	symbols := []int{0, 1, 79, 2, Terminator, 0, 30, 59}

	b := &bytes.Buffer{}
	w := bitio.NewWriter(b)
	var total uint64
	for _, sym := range symbols {
		eq(nil, codes[sym].write(w))
		total += uint64(codes[sym].Len)
	}
	eq(total, w.BitsWritten())
	eq(nil, w.Close())

	// decode by walking the tree
	r := bitio.NewReader(bytes.NewReader(b.Bytes()))
	for i, sym := range symbols {
		node := root
		for !node.IsLeaf() {
			right, err := r.ReadBool()
			if err != nil {
				t.Fatalf("[%d] Got error: %v", i, err)
			}
			if right {
				node = node.Right
			} else {
				node = node.Left
			}
		}
		eq(sym, node.Symbol)
	}
}

func TestTreeSerialization(t *testing.T) {
	eq := mighty.Eq(t)

	freqs := &Frequencies{}
	freqs['A'], freqs['B'], freqs[Terminator] = 3, 1, 1
	root := BuildTree(freqs)

	b := &bytes.Buffer{}
	w := bitio.NewWriter(b)
	eq(nil, writeTree(root, w))
	// 2 internal nodes, 3 leaves
	eq(uint64(2+3*(1+symbolBits)), w.BitsWritten())
	eq(nil, w.Close())

	got, err := readTree(bitio.NewReader(bytes.NewReader(b.Bytes())), 0)
	eq(nil, err)
	exp, codes := CodeTable(root), CodeTable(got)
	for sym := range exp {
		eq(exp[sym].String(), codes[sym].String())
	}
}

func TestWriteTreeInconsistent(t *testing.T) {
	eq := mighty.Eq(t)

	w := bitio.NewWriter(&bytes.Buffer{})

	trees := []*Node{
		nil,
		{Symbol: NoSymbol},
		{Symbol: Terminator + 1},
		{Symbol: NoSymbol, Left: &Node{Symbol: 'a'}},
		{Symbol: NoSymbol, Left: &Node{Symbol: 'a'}, Right: &Node{Symbol: NoSymbol}},
	}
	for _, root := range trees {
		eq(ErrInconsistentTree, errors.Cause(writeTree(root, w)))
	}
}

func TestReadTreeMalformed(t *testing.T) {
	inputs := map[string][]byte{
		"empty":         {},
		"truncated":     {0x00},           // internal nodes only
		"short leaf":    {0x40},           // 0, then a leaf with 6 of its 9 bits
		"bad symbol":    {0xc0, 0x40},     // 1 + 100000001 (257)
		"too deep":      make([]byte, 40), // 320 internal nodes on the left spine
		"missing right": {0x60, 0x00},     // 0 + leaf(256), then internal nodes until EOF
	}
	for name, data := range inputs {
		_, err := readTree(bitio.NewReader(bytes.NewReader(data)), 0)
		if errors.Cause(err) != ErrMalformedTree {
			t.Errorf("[%s] Got error: %v, want: %v", name, err, ErrMalformedTree)
		}
	}
}
