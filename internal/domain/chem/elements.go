package chem

// atomicMass maps element symbols to standard atomic weights.  Covers the
// elements that occur in drug-like and materials datasets; parsing a symbol
// absent from this table is an unknown-element error, not a silent skip.
var atomicMass = map[string]float64{
	"H": 1.008, "He": 4.003,
	"Li": 6.941, "Be": 9.012, "B": 10.811, "C": 12.011, "N": 14.007,
	"O": 15.999, "F": 18.998, "Ne": 20.180,
	"Na": 22.990, "Mg": 24.305, "Al": 26.982, "Si": 28.086, "P": 30.974,
	"S": 32.065, "Cl": 35.453, "Ar": 39.948,
	"K": 39.098, "Ca": 40.078, "Sc": 44.956, "Ti": 47.867, "V": 50.942,
	"Cr": 51.996, "Mn": 54.938, "Fe": 55.845, "Co": 58.933, "Ni": 58.693,
	"Cu": 63.546, "Zn": 65.38, "Ga": 69.723, "Ge": 72.64, "As": 74.922,
	"Se": 78.96, "Br": 79.904, "Kr": 83.798,
	"Rb": 85.468, "Sr": 87.62, "Y": 88.906, "Zr": 91.224, "Nb": 92.906,
	"Mo": 95.96, "Ru": 101.07, "Rh": 102.906, "Pd": 106.42, "Ag": 107.868,
	"Cd": 112.411, "In": 114.818, "Sn": 118.710, "Sb": 121.760,
	"Te": 127.60, "I": 126.904, "Xe": 131.293,
	"Cs": 132.905, "Ba": 137.327, "La": 138.905, "W": 183.84,
	"Re": 186.207, "Os": 190.23, "Ir": 192.217, "Pt": 195.084,
	"Au": 196.967, "Hg": 200.59, "Tl": 204.383, "Pb": 207.2, "Bi": 208.980,
	// Wildcard atom has no mass contribution.
	"*": 0,
}

// defaultValences lists the permitted valences per element used for implicit
// hydrogen counting, smallest first.  The implicit H count of an unbracketed
// atom is the smallest listed valence not below its bond-order sum, minus
// that sum.  Elements absent from this table get no implicit hydrogens.
var defaultValences = map[string][]int{
	"B":  {3},
	"C":  {4},
	"N":  {3, 5},
	"O":  {2},
	"P":  {3, 5},
	"S":  {2, 4, 6},
	"F":  {1},
	"Cl": {1},
	"Br": {1},
	"I":  {1},
}

// organicSubset lists the elements the SMILES grammar permits outside
// brackets.  This is fixed by the notation itself; which elements the
// tokenizer recognizes is a separate, configuration-driven concern.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true, "*": true,
}

// aromaticSubset lists the elements that may be written as lowercase
// aromatic atoms.
var aromaticSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"Se": true, "As": true, "Te": true, "Si": true,
}

// KnownElement reports whether symbol is in the supported periodic table.
func KnownElement(symbol string) bool {
	_, ok := atomicMass[symbol]
	return ok
}

// AromaticCapable reports whether symbol may appear in lowercase aromatic form.
func AromaticCapable(symbol string) bool {
	return aromaticSubset[symbol]
}
