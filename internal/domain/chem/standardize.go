package chem

import (
	"github.com/chemforge/smiclean/pkg/errors"
)

// Flags selects the standardization operations applied to a parsed molecule.
// Each operation is optional and independently toggled; the combination is
// applied exactly once per molecule, upstream of property computation,
// tokenization and every downstream consumer.
type Flags struct {
	// LargestFragment keeps only the fragment with the most heavy atoms,
	// discarding salts and solvents written as dot-separated components.
	LargestFragment bool

	// Uncharge neutralizes formal charges by adding or removing protons
	// where possible.
	Uncharge bool

	// Kekulize rewrites aromatic ring systems into alternating single and
	// double bonds.  Failure to find a valid assignment is a per-molecule
	// standardization error, not a pipeline fault.
	Kekulize bool
}

// Any reports whether any operation is enabled.
func (f Flags) Any() bool { return f.LargestFragment || f.Uncharge || f.Kekulize }

// standardize applies the selected operations in a fixed order: fragment
// selection, uncharging, kekulization.  When nothing changes the input Mol
// is returned as-is, preserving its original textual form; otherwise the
// SMILES is regenerated from the modified graph.
func standardize(m *Mol, f Flags) (*Mol, error) {
	changed := false
	cur := m

	if f.LargestFragment {
		next, didChange, err := largestFragment(cur)
		if err != nil {
			return nil, err
		}
		if didChange {
			cur, changed = next, true
		}
	}

	if f.Uncharge {
		if cur == m {
			cur = cloneMol(m)
		}
		if uncharge(cur) {
			changed = true
		}
	}

	if f.Kekulize {
		if cur == m {
			cur = cloneMol(m)
		}
		didChange, err := kekulize(cur)
		if err != nil {
			return nil, err
		}
		if didChange {
			changed = true
		}
	}

	if !changed {
		return m, nil
	}
	s, err := WriteSMILES(cur)
	if err != nil {
		return nil, err
	}
	cur.smiles = s
	return cur, nil
}

func cloneMol(m *Mol) *Mol {
	out := &Mol{
		Atoms:  make([]Atom, len(m.Atoms)),
		Bonds:  make([]Bond, len(m.Bonds)),
		smiles: m.smiles,
	}
	copy(out.Atoms, m.Atoms)
	copy(out.Bonds, m.Bonds)
	return out
}

// largestFragment selects the component with the most heavy atoms.  Ties go
// to the first-seen component so results are reproducible.
func largestFragment(m *Mol) (*Mol, bool, error) {
	comps := m.components()
	if len(comps) <= 1 {
		return m, false, nil
	}
	best := 0
	bestHeavy := -1
	for i, comp := range comps {
		heavy := 0
		for _, ai := range comp {
			if m.Atoms[ai].Symbol != "H" {
				heavy++
			}
		}
		if heavy > bestHeavy {
			best, bestHeavy = i, heavy
		}
	}
	sub, err := m.subMol(comps[best])
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

// uncharge neutralizes formal charges in place by protonating anions and
// deprotonating cations that carry hydrogens.  Charges that cannot be
// neutralized this way (e.g. quaternary nitrogen) are left alone.  Atoms
// whose bracket becomes redundant after neutralization are unbracketed.
func uncharge(m *Mol) bool {
	adj := m.adjacency()
	changed := false
	for i := range m.Atoms {
		a := &m.Atoms[i]
		touched := false
		switch {
		case a.Charge < 0:
			a.HCount += -a.Charge
			a.Charge = 0
			touched = true
		case a.Charge > 0 && a.HCount >= a.Charge:
			a.HCount -= a.Charge
			a.Charge = 0
			touched = true
		}
		if touched {
			maybeUnbracket(m, i, adj)
			changed = true
		}
	}
	return changed
}

// maybeUnbracket drops the brackets of atom i when every bracket-only
// attribute is gone and the explicit hydrogen count matches what the bare
// atom would get implicitly.
func maybeUnbracket(m *Mol, i int, adj [][]int) {
	a := &m.Atoms[i]
	if !a.Bracket || a.Isotope != 0 || a.Charge != 0 || a.Chirality != "" || a.Class != 0 {
		return
	}
	if !organicSubset[a.Symbol] {
		return
	}
	if a.Aromatic && !AromaticCapable(a.Symbol) {
		return
	}
	explicit := a.HCount
	a.HCount = -1
	a.Bracket = false
	if m.implicitHCount(i, adj) != explicit {
		// Hydrogen count is load-bearing; keep the bracket.
		a.HCount = explicit
		a.Bracket = true
	}
}

// kekulize converts aromatic ring systems into alternating bonds.  Every
// aromatic atom that contributes a π bond (carbon, boron, and N/P without an
// explicit hydrogen) must be paired with exactly one aromatic neighbor via a
// double bond; atoms contributing a lone pair (O, S, Se, Te, pyrrole-type
// [nH]) stay single-bonded.  A backtracking matching over the aromatic
// subgraph finds the assignment; if none exists the molecule is rejected as
// unkekulizable.
func kekulize(m *Mol) (bool, error) {
	needs := make([]bool, len(m.Atoms))
	anyAromatic := false
	for i, a := range m.Atoms {
		if !a.Aromatic {
			continue
		}
		anyAromatic = true
		switch a.Symbol {
		case "C", "B":
			needs[i] = true
		case "N", "P", "As":
			h := a.HCount
			if h < 0 {
				h = 0
			}
			needs[i] = h == 0
		default: // O, S, Se, Te contribute lone pairs.
			needs[i] = false
		}
	}
	if !anyAromatic {
		return false, nil
	}

	// Aromatic adjacency restricted to atoms needing a double bond.
	arAdj := make(map[int][]int)
	for bi, b := range m.Bonds {
		if !b.Aromatic {
			continue
		}
		if needs[b.From] && needs[b.To] {
			arAdj[b.From] = append(arAdj[b.From], bi)
			arAdj[b.To] = append(arAdj[b.To], bi)
		}
	}

	match := make([]int, len(m.Atoms))
	for i := range match {
		match[i] = -1
	}

	var solve func(i int) bool
	solve = func(i int) bool {
		for ; i < len(m.Atoms); i++ {
			if needs[i] && match[i] == -1 {
				break
			}
		}
		if i >= len(m.Atoms) {
			return true
		}
		for _, bi := range arAdj[i] {
			j := m.Bonds[bi].other(i)
			if match[j] != -1 {
				continue
			}
			match[i], match[j] = j, i
			if solve(i + 1) {
				return true
			}
			match[i], match[j] = -1, -1
		}
		return false
	}

	if !solve(0) {
		return false, errors.New(errors.ErrCodeChemKekulizeFailed,
			"no alternating bond assignment exists for aromatic system")
	}

	for bi := range m.Bonds {
		b := &m.Bonds[bi]
		if !b.Aromatic {
			continue
		}
		b.Aromatic = false
		if match[b.From] == b.To {
			b.Order = 2
			// Consume the pairing so fused systems don't double-assign.
			match[b.From], match[b.To] = -1, -1
		} else {
			b.Order = 1
		}
	}
	for i := range m.Atoms {
		m.Atoms[i].Aromatic = false
	}
	return true, nil
}
