// Package chem provides SmiClean's chemistry oracle boundary: SMILES parsing
// into a molecular graph, standardization operations, property computation,
// and SMILES writing.  The built-in oracle is a lightweight pure-Go
// implementation; production deployments that need full aromaticity and
// valence models swap in an RDKit-backed oracle behind the same interface.
package chem

import (
	"math"

	"github.com/chemforge/smiclean/pkg/errors"
)

// Atom is a single node of the molecular graph.
type Atom struct {
	// Symbol is the element symbol in canonical case ("Cl", "N", "*").
	Symbol string

	// Aromatic marks atoms written in lowercase aromatic form.
	Aromatic bool

	// Charge is the formal charge.
	Charge int

	// Isotope is the mass number from a bracket atom, 0 when unspecified.
	Isotope int

	// HCount is the explicit hydrogen count of a bracket atom.
	// -1 means implicit (unbracketed atoms only).
	HCount int

	// Chirality is "", "@" or "@@".
	Chirality string

	// Class is the atom-map class from a bracket atom, 0 when absent.
	Class int

	// Bracket records whether the atom was written in brackets.  Invariant:
	// Bracket implies HCount >= 0.
	Bracket bool
}

// Bond is an edge of the molecular graph.
type Bond struct {
	From, To int

	// Order is 1, 2, 3 or 4.  Aromatic bonds carry Order 1 with Aromatic set.
	Order    int
	Aromatic bool

	// Symbol preserves a directional bond symbol ('/' or '\\'), 0 otherwise.
	Symbol byte

	// Closure marks bonds created by ring-closure digits.  The number of
	// closure bonds equals the ring count of the molecule.
	Closure bool
}

// Mol is a parsed molecule.  It is treated as immutable by the pipeline:
// standardization operations return a new Mol.
type Mol struct {
	Atoms []Atom
	Bonds []Bond

	// smiles is the textual form this Mol was parsed from or last written
	// to.  Standardization ops that modify the graph regenerate it.
	smiles string
}

// SMILES returns the textual form of the molecule.
func (m *Mol) SMILES() string { return m.smiles }

// Properties is the derived attribute set of a molecule record, computed
// once post-standardization and evaluated against filter criteria.
type Properties struct {
	HeavyAtoms  int
	MolWeight   float64
	RingCount   int
	MaxRingSize int
	NumCarbons  int

	// Elements is the multiset of element symbols present, including
	// explicit bracket hydrogens but not implicit ones.
	Elements map[string]int

	HasStereo  bool
	HasIsotope bool
}

// adjacency returns, per atom, the list of incident bond indices.
func (m *Mol) adjacency() [][]int {
	adj := make([][]int, len(m.Atoms))
	for i, b := range m.Bonds {
		adj[b.From] = append(adj[b.From], i)
		adj[b.To] = append(adj[b.To], i)
	}
	return adj
}

// other returns the opposite endpoint of bond b relative to atom a.
func (b Bond) other(a int) int {
	if b.From == a {
		return b.To
	}
	return b.From
}

// bondOrderSum sums bond orders around atom i, counting aromatic bonds as 1.5.
func (m *Mol) bondOrderSum(i int, adj [][]int) float64 {
	var sum float64
	for _, bi := range adj[i] {
		b := m.Bonds[bi]
		if b.Aromatic {
			sum += 1.5
		} else {
			sum += float64(b.Order)
		}
	}
	return sum
}

// implicitHCount computes the implicit hydrogen count of atom i.  Bracket
// atoms carry their hydrogens explicitly; unbracketed atoms fill up to the
// smallest permitted valence.
func (m *Mol) implicitHCount(i int, adj [][]int) int {
	a := m.Atoms[i]
	if a.HCount >= 0 {
		return a.HCount
	}
	valences, ok := defaultValences[a.Symbol]
	if !ok {
		return 0
	}
	sum := int(math.Ceil(m.bondOrderSum(i, adj)))
	for _, v := range valences {
		if sum <= v {
			return v - sum
		}
	}
	return 0
}

// computeProperties derives the full property set of a molecule.
func computeProperties(m *Mol) Properties {
	adj := m.adjacency()

	props := Properties{Elements: make(map[string]int)}
	var weight float64

	for i, a := range m.Atoms {
		props.Elements[a.Symbol]++
		if a.Symbol != "H" {
			props.HeavyAtoms++
		}
		if a.Symbol == "C" {
			props.NumCarbons++
		}
		if a.Chirality != "" {
			props.HasStereo = true
		}
		if a.Isotope != 0 {
			props.HasIsotope = true
			weight += float64(a.Isotope)
		} else {
			weight += atomicMass[a.Symbol]
		}
		weight += float64(m.implicitHCount(i, adj)) * atomicMass["H"]
	}

	for _, b := range m.Bonds {
		if b.Symbol == '/' || b.Symbol == '\\' {
			props.HasStereo = true
		}
		if b.Closure {
			props.RingCount++
		}
	}

	props.MolWeight = weight
	props.MaxRingSize = maxRingSize(m, adj)
	return props
}

// maxRingSize returns the size of the largest ring among the rings formed by
// the molecule's closure bonds.  For each closure bond the smallest cycle
// through it is the shortest path between its endpoints avoiding the bond
// itself, plus the bond.  Returns 0 for acyclic molecules.
func maxRingSize(m *Mol, adj [][]int) int {
	largest := 0
	for bi, b := range m.Bonds {
		if !b.Closure {
			continue
		}
		if d := shortestPath(m, adj, b.From, b.To, bi); d > 0 && d+1 > largest {
			largest = d + 1
		}
	}
	return largest
}

// shortestPath returns the number of edges on the shortest path from src to
// dst avoiding bond skipBond, or -1 when unreachable.
func shortestPath(m *Mol, adj [][]int, src, dst, skipBond int) int {
	dist := make([]int, len(m.Atoms))
	for i := range dist {
		dist[i] = -1
	}
	dist[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u == dst {
			return dist[u]
		}
		for _, bi := range adj[u] {
			if bi == skipBond {
				continue
			}
			v := m.Bonds[bi].other(u)
			if dist[v] == -1 {
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return -1
}

// components returns the connected components of the molecule as atom-index
// slices, in first-seen order.
func (m *Mol) components() [][]int {
	adj := m.adjacency()
	seen := make([]bool, len(m.Atoms))
	var comps [][]int
	for start := range m.Atoms {
		if seen[start] {
			continue
		}
		var comp []int
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, u)
			for _, bi := range adj[u] {
				v := m.Bonds[bi].other(u)
				if !seen[v] {
					seen[v] = true
					stack = append(stack, v)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// subMol extracts the induced sub-molecule over the given atom indices and
// regenerates its SMILES.
func (m *Mol) subMol(atoms []int) (*Mol, error) {
	remap := make(map[int]int, len(atoms))
	out := &Mol{Atoms: make([]Atom, 0, len(atoms))}
	for newIdx, oldIdx := range atoms {
		remap[oldIdx] = newIdx
		out.Atoms = append(out.Atoms, m.Atoms[oldIdx])
	}
	for _, b := range m.Bonds {
		from, okF := remap[b.From]
		to, okT := remap[b.To]
		if okF != okT {
			return nil, errors.New(errors.ErrCodeInternal, "bond crosses fragment boundary")
		}
		if okF && okT {
			nb := b
			nb.From, nb.To = from, to
			out.Bonds = append(out.Bonds, nb)
		}
	}
	s, err := WriteSMILES(out)
	if err != nil {
		return nil, err
	}
	out.smiles = s
	return out, nil
}
