package chem

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/chemforge/smiclean/pkg/errors"
)

// WriteSMILES renders the molecule as a SMILES string using a deterministic
// depth-first traversal from the first atom of each fragment.  The output is
// not a canonical form; it is a stable textual form for this exact graph.
func WriteSMILES(m *Mol) (string, error) {
	return writeSMILES(m, nil)
}

// WriteRandomSMILES renders the molecule with a randomized atom traversal,
// producing an equivalent but differently-written SMILES string.  Used for
// dataset augmentation (randomize_smiles).
func WriteRandomSMILES(m *Mol, rng *rand.Rand) (string, error) {
	return writeSMILES(m, rng)
}

type smilesWriter struct {
	m   *Mol
	adj [][]int
	rng *rand.Rand

	visited  []bool
	usedBond []bool

	// closures[atom] lists the closure bonds whose digits are written after
	// that atom, in discovery order.
	closures map[int][]int

	// openNums maps a closure bond to its number between the two endpoint
	// emissions; ringNums tracks which numbers are currently open.  A number
	// is freed when its bond closes, so digits are reused and the %99
	// ceiling applies to simultaneously open closures only.
	openNums map[int]int
	ringNums map[int]bool

	sb strings.Builder
}

func writeSMILES(m *Mol, rng *rand.Rand) (string, error) {
	if len(m.Atoms) == 0 {
		return "", errors.New(errors.ErrCodeChemWriteFailed, "molecule has no atoms")
	}
	w := &smilesWriter{
		m:        m,
		adj:      m.adjacency(),
		rng:      rng,
		visited:  make([]bool, len(m.Atoms)),
		usedBond: make([]bool, len(m.Bonds)),
		closures: make(map[int][]int),
		openNums: make(map[int]int),
		ringNums: make(map[int]bool),
	}

	starts := make([]int, len(m.Atoms))
	for i := range starts {
		starts[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(starts), func(i, j int) { starts[i], starts[j] = starts[j], starts[i] })
	}

	first := true
	for _, start := range starts {
		if w.visited[start] {
			continue
		}
		if !first {
			w.sb.WriteByte('.')
		}
		first = false
		// Classify bonds of this fragment into tree and closure edges.
		w.classify(start)
		if err := w.emit(start, -1); err != nil {
			return "", err
		}
	}
	return w.sb.String(), nil
}

// classify walks the fragment rooted at start, marking every bond that
// connects two already-reached atoms as a ring closure.  Numbers are assigned
// later, at emission time, so a digit freed by a closed ring can be reused.
func (w *smilesWriter) classify(start int) {
	reached := make(map[int]bool)
	reached[start] = true
	processed := make(map[int]bool)
	stack := []int{start}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, bi := range w.neighbors(u) {
			if processed[bi] {
				continue
			}
			processed[bi] = true
			v := w.m.Bonds[bi].other(u)
			if reached[v] {
				// Back edge: emit skips it and writes closure digits instead.
				w.usedBond[bi] = true
				w.closures[u] = append(w.closures[u], bi)
				w.closures[v] = append(w.closures[v], bi)
				continue
			}
			reached[v] = true
			stack = append(stack, v)
		}
	}
}

func (w *smilesWriter) allocRingNum() (int, error) {
	for n := 1; n <= 99; n++ {
		if !w.ringNums[n] {
			w.ringNums[n] = true
			return n, nil
		}
	}
	return 0, errors.New(errors.ErrCodeChemWriteFailed, "more than 99 simultaneously open ring closures")
}

// neighbors returns the bond indices around atom u, deterministically sorted
// or shuffled depending on the writer mode.
func (w *smilesWriter) neighbors(u int) []int {
	out := make([]int, len(w.adj[u]))
	copy(out, w.adj[u])
	if w.rng != nil {
		w.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	} else {
		sort.Ints(out)
	}
	return out
}

// emit writes atom u and its subtree.  fromBond is the tree bond that led
// here, -1 at fragment roots.
func (w *smilesWriter) emit(u, fromBond int) error {
	w.visited[u] = true
	w.sb.WriteString(w.atomText(u))

	// Ring-closure digits directly after the atom.  The first endpoint opens
	// the closure (bond symbol plus a freshly allocated number); the second
	// closes it and frees the number for reuse.
	for _, bi := range w.closures[u] {
		if num, open := w.openNums[bi]; open {
			delete(w.openNums, bi)
			delete(w.ringNums, num)
			w.sb.WriteString(ringNumText(num))
			continue
		}
		num, err := w.allocRingNum()
		if err != nil {
			return err
		}
		w.openNums[bi] = num
		w.sb.WriteString(w.bondText(w.m.Bonds[bi]))
		w.sb.WriteString(ringNumText(num))
	}

	// Tree children.
	var children []int
	for _, bi := range w.neighbors(u) {
		if bi == fromBond || w.usedBond[bi] {
			continue
		}
		v := w.m.Bonds[bi].other(u)
		if w.visited[v] {
			continue
		}
		children = append(children, bi)
	}
	for idx, bi := range children {
		v := w.m.Bonds[bi].other(u)
		last := idx == len(children)-1
		if !last {
			w.sb.WriteByte('(')
		}
		w.sb.WriteString(w.bondText(w.m.Bonds[bi]))
		if err := w.emit(v, bi); err != nil {
			return err
		}
		if !last {
			w.sb.WriteByte(')')
		}
	}
	return nil
}

// bondText renders a bond symbol, empty for implicit single and aromatic
// bonds.  A single bond between two aromatic atoms (e.g. biphenyl) must be
// written explicitly so it does not read back as aromatic.
func (w *smilesWriter) bondText(b Bond) string {
	if b.Symbol == '/' || b.Symbol == '\\' {
		return string(b.Symbol)
	}
	if b.Aromatic {
		return ""
	}
	switch b.Order {
	case 2:
		return "="
	case 3:
		return "#"
	case 4:
		return "$"
	}
	if w.m.Atoms[b.From].Aromatic && w.m.Atoms[b.To].Aromatic {
		return "-"
	}
	return ""
}

func ringNumText(n int) string {
	if n <= 9 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%%%02d", n)
}

// atomText renders a single atom, bracketing it whenever any attribute
// cannot be expressed bare.
func (w *smilesWriter) atomText(i int) string {
	a := w.m.Atoms[i]

	sym := a.Symbol
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}

	needBracket := a.Bracket || a.Isotope != 0 || a.Charge != 0 ||
		a.Chirality != "" || a.Class != 0 || !organicSubset[a.Symbol] ||
		(a.Aromatic && !AromaticCapable(a.Symbol))
	if !needBracket {
		return sym
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope != 0 {
		fmt.Fprintf(&sb, "%d", a.Isotope)
	}
	sb.WriteString(sym)
	sb.WriteString(a.Chirality)
	h := a.HCount
	if h < 0 {
		h = w.m.implicitHCount(i, w.adj)
	}
	switch {
	case h == 1:
		sb.WriteByte('H')
	case h > 1:
		fmt.Fprintf(&sb, "H%d", h)
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		fmt.Fprintf(&sb, "+%d", a.Charge)
	case a.Charge < -1:
		fmt.Fprintf(&sb, "-%d", -a.Charge)
	}
	if a.Class != 0 {
		fmt.Fprintf(&sb, ":%d", a.Class)
	}
	sb.WriteByte(']')
	return sb.String()
}
