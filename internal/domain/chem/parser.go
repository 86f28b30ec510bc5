package chem

import (
	"strings"

	"github.com/chemforge/smiclean/pkg/errors"
)

// pendingBond carries a bond symbol seen before its second atom.
type pendingBond struct {
	set      bool
	order    int
	aromatic bool
	symbol   byte
}

// ringOpening records the first endpoint of a ring-closure digit.
type ringOpening struct {
	atom int
	bond pendingBond
}

// ParseSMILES parses a SMILES string into a molecular graph.  The parser
// accepts the common grammar: organic-subset atoms, bracket atoms with
// isotope/chirality/hydrogen-count/charge/class, bond symbols including
// directional bonds, branches, dot-separated fragments, and ring closures in
// single-digit and %NN form.  All failures are CHEM_001 parse errors except
// unknown element symbols, which are CHEM_002.
func ParseSMILES(s string) (*Mol, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New(errors.ErrCodeChemParseFailed, "empty SMILES string")
	}

	m := &Mol{smiles: s}
	prev := -1
	var stack []int
	var pending pendingBond
	rings := make(map[int]ringOpening)

	addAtom := func(a Atom) error {
		m.Atoms = append(m.Atoms, a)
		cur := len(m.Atoms) - 1
		if prev >= 0 {
			m.Bonds = append(m.Bonds, resolveBond(m, prev, cur, pending, pendingBond{}, false))
		} else if pending.set {
			return errors.New(errors.ErrCodeChemParseFailed, "bond symbol with no preceding atom")
		}
		pending = pendingBond{}
		prev = cur
		return nil
	}

	closeRing := func(num, pos int) error {
		if prev < 0 {
			return errors.Newf(errors.ErrCodeChemParseFailed, "ring closure %d before any atom at position %d", num, pos)
		}
		open, ok := rings[num]
		if !ok {
			rings[num] = ringOpening{atom: prev, bond: pending}
			pending = pendingBond{}
			return nil
		}
		if open.atom == prev {
			return errors.Newf(errors.ErrCodeChemParseFailed, "ring closure %d bonds atom to itself", num)
		}
		if open.bond.set && pending.set && (open.bond.order != pending.order || open.bond.aromatic != pending.aromatic) {
			return errors.Newf(errors.ErrCodeChemParseFailed, "conflicting bond symbols on ring closure %d", num)
		}
		b := resolveBond(m, open.atom, prev, pending, open.bond, true)
		m.Bonds = append(m.Bonds, b)
		delete(rings, num)
		pending = pendingBond{}
		return nil
	}

	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '[':
			atom, next, err := parseBracketAtom(s, i)
			if err != nil {
				return nil, err
			}
			if err := addAtom(atom); err != nil {
				return nil, err
			}
			i = next

		case c == '(':
			if prev < 0 {
				return nil, errors.Newf(errors.ErrCodeChemParseFailed, "branch opened before any atom at position %d", i)
			}
			stack = append(stack, prev)
			i++

		case c == ')':
			if len(stack) == 0 {
				return nil, errors.Newf(errors.ErrCodeChemParseFailed, "unmatched ')' at position %d", i)
			}
			prev = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			i++

		case c == '.':
			if pending.set {
				return nil, errors.Newf(errors.ErrCodeChemParseFailed, "bond symbol before fragment separator at position %d", i)
			}
			prev = -1
			i++

		case c == '%':
			if i+2 >= len(s) || !isDigit(s[i+1]) || !isDigit(s[i+2]) {
				return nil, errors.Newf(errors.ErrCodeChemParseFailed, "%%-ring closure needs two digits at position %d", i)
			}
			num := int(s[i+1]-'0')*10 + int(s[i+2]-'0')
			if err := closeRing(num, i); err != nil {
				return nil, err
			}
			i += 3

		case isDigit(c):
			if err := closeRing(int(c-'0'), i); err != nil {
				return nil, err
			}
			i++

		case c == '-' || c == '=' || c == '#' || c == '$' || c == ':' || c == '/' || c == '\\':
			if pending.set {
				return nil, errors.Newf(errors.ErrCodeChemParseFailed, "consecutive bond symbols at position %d", i)
			}
			pending = bondSymbolToPending(c)
			i++

		default:
			atom, next, err := parseOrganicAtom(s, i)
			if err != nil {
				return nil, err
			}
			if err := addAtom(atom); err != nil {
				return nil, err
			}
			i = next
		}
	}

	if len(stack) > 0 {
		return nil, errors.New(errors.ErrCodeChemParseFailed, "unclosed branch")
	}
	if pending.set {
		return nil, errors.New(errors.ErrCodeChemParseFailed, "dangling bond symbol at end of input")
	}
	for num := range rings {
		return nil, errors.Newf(errors.ErrCodeChemParseFailed, "unclosed ring closure %d", num)
	}
	return m, nil
}

func bondSymbolToPending(c byte) pendingBond {
	switch c {
	case '=':
		return pendingBond{set: true, order: 2}
	case '#':
		return pendingBond{set: true, order: 3}
	case '$':
		return pendingBond{set: true, order: 4}
	case ':':
		return pendingBond{set: true, order: 1, aromatic: true}
	case '/', '\\':
		return pendingBond{set: true, order: 1, symbol: c}
	default: // '-'
		return pendingBond{set: true, order: 1}
	}
}

// resolveBond combines up to two bond annotations (the one at the closing
// site and the one recorded when a ring was opened) with the aromaticity of
// the endpoints.  An unannotated bond between two aromatic atoms is aromatic.
func resolveBond(m *Mol, from, to int, a, b pendingBond, closure bool) Bond {
	eff := a
	if !eff.set {
		eff = b
	}
	bond := Bond{From: from, To: to, Order: 1, Closure: closure}
	if eff.set {
		bond.Order = eff.order
		bond.Aromatic = eff.aromatic
		bond.Symbol = eff.symbol
	} else if m.Atoms[from].Aromatic && m.Atoms[to].Aromatic {
		bond.Aromatic = true
	}
	return bond
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool  { return c >= 'a' && c <= 'z' }

// readNumber parses a decimal number starting at i, returning the value, the
// index after it, and whether any digit was consumed.
func readNumber(s string, i int) (int, int, bool) {
	start := i
	n := 0
	for i < len(s) && isDigit(s[i]) {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, i, i > start
}

// parseOrganicAtom parses an unbracketed organic-subset atom at position i.
func parseOrganicAtom(s string, i int) (Atom, int, error) {
	// Two-letter symbols first so "Cl" never parses as carbon.
	if i+1 < len(s) {
		two := s[i : i+2]
		if two == "Cl" || two == "Br" {
			return Atom{Symbol: two, HCount: -1}, i + 2, nil
		}
	}
	c := s[i]
	switch {
	case isUpper(c) || c == '*':
		sym := string(c)
		if !organicSubset[sym] {
			if KnownElement(sym) {
				return Atom{}, 0, errors.Newf(errors.ErrCodeChemParseFailed,
					"element %q must be written in brackets at position %d", sym, i)
			}
			return Atom{}, 0, errors.Newf(errors.ErrCodeChemUnknownElement,
				"unknown element %q at position %d", sym, i)
		}
		return Atom{Symbol: sym, HCount: -1}, i + 1, nil

	case isLower(c):
		sym := strings.ToUpper(string(c))
		if !organicSubset[sym] || !AromaticCapable(sym) {
			return Atom{}, 0, errors.Newf(errors.ErrCodeChemParseFailed,
				"invalid aromatic atom %q at position %d", string(c), i)
		}
		return Atom{Symbol: sym, Aromatic: true, HCount: -1}, i + 1, nil
	}
	return Atom{}, 0, errors.Newf(errors.ErrCodeChemParseFailed,
		"unexpected character %q at position %d", string(c), i)
}

// parseBracketAtom parses a bracket atom starting at the '[' at position i.
// Grammar: [isotope? symbol chiral? hcount? charge? (:class)?]
func parseBracketAtom(s string, i int) (Atom, int, error) {
	start := i
	j := i + 1
	atom := Atom{Bracket: true, HCount: 0}

	// Isotope.
	if n, next, ok := readNumber(s, j); ok {
		atom.Isotope = n
		j = next
	}

	// Element symbol.
	if j >= len(s) {
		return Atom{}, 0, errors.Newf(errors.ErrCodeChemParseFailed, "unterminated bracket atom at position %d", start)
	}
	switch {
	case s[j] == '*':
		atom.Symbol = "*"
		j++
	case isLower(s[j]):
		// Aromatic atom; two-letter lowercase forms first ("se", "as", "te").
		sym := strings.ToUpper(string(s[j]))
		width := 1
		if j+1 < len(s) && isLower(s[j+1]) {
			two := strings.ToUpper(string(s[j])) + string(s[j+1])
			if AromaticCapable(two) && KnownElement(two) {
				sym = two
				width = 2
			}
		}
		if !AromaticCapable(sym) {
			return Atom{}, 0, errors.Newf(errors.ErrCodeChemParseFailed,
				"element %q cannot be aromatic at position %d", sym, j)
		}
		atom.Symbol = sym
		atom.Aromatic = true
		j += width
	case isUpper(s[j]):
		sym := string(s[j])
		width := 1
		// 'H' never starts a two-letter symbol here: [NH..] hydrogen counts
		// would otherwise swallow the next letter.
		if j+1 < len(s) && isLower(s[j+1]) {
			two := sym + string(s[j+1])
			if KnownElement(two) {
				sym = two
				width = 2
			}
		}
		if !KnownElement(sym) {
			return Atom{}, 0, errors.Newf(errors.ErrCodeChemUnknownElement,
				"unknown element %q at position %d", sym, j)
		}
		atom.Symbol = sym
		j += width
	default:
		return Atom{}, 0, errors.Newf(errors.ErrCodeChemParseFailed,
			"expected element symbol at position %d", j)
	}

	// Chirality.
	if j < len(s) && s[j] == '@' {
		atom.Chirality = "@"
		j++
		if j < len(s) && s[j] == '@' {
			atom.Chirality = "@@"
			j++
		}
	}

	// Explicit hydrogens.
	if j < len(s) && s[j] == 'H' {
		j++
		atom.HCount = 1
		if n, next, ok := readNumber(s, j); ok {
			atom.HCount = n
			j = next
		}
	}

	// Charge: "+", "-", repeated, or followed by a count.
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		sign := 1
		if s[j] == '-' {
			sign = -1
		}
		mark := s[j]
		count := 1
		j++
		if n, next, ok := readNumber(s, j); ok {
			count = n
			j = next
		} else {
			for j < len(s) && s[j] == mark {
				count++
				j++
			}
		}
		atom.Charge = sign * count
	}

	// Atom-map class.
	if j < len(s) && s[j] == ':' {
		j++
		n, next, ok := readNumber(s, j)
		if !ok {
			return Atom{}, 0, errors.Newf(errors.ErrCodeChemParseFailed,
				"expected atom class number at position %d", j)
		}
		atom.Class = n
		j = next
	}

	if j >= len(s) || s[j] != ']' {
		return Atom{}, 0, errors.Newf(errors.ErrCodeChemParseFailed,
			"unterminated bracket atom at position %d", start)
	}
	return atom, j + 1, nil
}
